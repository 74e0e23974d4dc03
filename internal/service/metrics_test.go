package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/testing/fixtures"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.observeOp("create", nil)
	m.addMoney("fee", 10)
}

func TestMetrics_Operations(t *testing.T) {
	t.Parallel()
	m := NewMetrics(prometheus.NewRegistry())

	m.observeOp("create", nil)
	m.observeOp("create", nil)
	m.observeOp("create", ErrNameTaken)
	m.addMoney("transfer", 300)
	m.addMoney("transfer", 0)

	if got := testutil.ToFloat64(m.ops.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("create ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ops.WithLabelValues("create", "conflict")); got != 1 {
		t.Errorf("create conflict = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.money.WithLabelValues("transfer")); got != 300 {
		t.Errorf("money transfer = %v, want 300", got)
	}
}

func TestMetrics_ShopPurchase(t *testing.T) {
	t.Parallel()
	m := NewMetrics(prometheus.NewRegistry())
	shop := NewShopService(newLedgerWith(t, map[string]int64{"kim": 10000}), mustCatalog(t), nil, enText, m)

	_, _ = shop.Purchase(context.Background(), "machine", &model.PurchaseRequest{Player: "kim", Item: "hopper", Quantity: 1})
	_, _ = shop.Purchase(context.Background(), "machine", &model.PurchaseRequest{Player: "kim", Item: "hopper", Quantity: 99})

	if got := testutil.ToFloat64(m.ops.WithLabelValues("purchase", "ok")); got != 1 {
		t.Errorf("purchase ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ops.WithLabelValues("purchase", "invalid")); got != 1 {
		t.Errorf("purchase invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.money.WithLabelValues("shop_machine")); got != 5000 {
		t.Errorf("money shop_machine = %v, want 5000", got)
	}
}

func TestRegistryCollector(t *testing.T) {
	t.Parallel()
	reg := fixtures.NewRegistry()
	fixtures.AddGuild(reg, "Alpha", "kim", fixtures.WithMembers("lee"), fixtures.WithRequests("park", "choi"))
	fixtures.AddGuild(reg, "Beta", "bob")
	store := &mockGuildStore{loadFunc: func(ctx context.Context) (model.Registry, error) { return reg, nil }}

	c := NewRegistryCollector(store)
	if n := testutil.CollectAndCount(c); n != 4 {
		t.Errorf("CollectAndCount() = %d, want 4", n)
	}

	want := `
# HELP guildhall_guild_members Number of players belonging to a guild
# TYPE guildhall_guild_members gauge
guildhall_guild_members 3
# HELP guildhall_guilds Number of guilds in the registry
# TYPE guildhall_guilds gauge
guildhall_guilds 2
# HELP guildhall_join_requests Number of pending join requests
# TYPE guildhall_join_requests gauge
guildhall_join_requests 2
# HELP guildhall_registry_corrupt 1 while the stored registry cannot be loaded
# TYPE guildhall_registry_corrupt gauge
guildhall_registry_corrupt{backend="mock"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

func TestRegistryCollector_Corrupt(t *testing.T) {
	t.Parallel()
	store := &mockGuildStore{loadFunc: func(ctx context.Context) (model.Registry, error) {
		return nil, errors.Join(ErrCorruptState, errors.New("bad json"))
	}}

	want := `
# HELP guildhall_registry_corrupt 1 while the stored registry cannot be loaded
# TYPE guildhall_registry_corrupt gauge
guildhall_registry_corrupt{backend="mock"} 1
`
	if err := testutil.CollectAndCompare(NewRegistryCollector(store), strings.NewReader(want)); err != nil {
		t.Errorf("CollectAndCompare() error = %v", err)
	}
}

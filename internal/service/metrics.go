package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts service operations. A nil *Metrics records nothing.
type Metrics struct {
	ops          *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	money        *prometheus.CounterVec
}

// NewMetrics creates the service metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildhall",
			Name:      "operations_total",
			Help:      "Service operations by name and result kind",
		}, []string{"op", "result"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "guildhall",
			Name:      "registry_unit_seconds",
			Help:      "Time spent in one load-mutate-save unit, lock wait included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		money: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildhall",
			Name:      "money_moved_total",
			Help:      "Currency moved through the ledger by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.ops, m.unitDuration, m.money)
	return m
}

func (m *Metrics) observeOp(op string, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, KindOf(err).String()).Inc()
}

func (m *Metrics) observeUnit(backend string, start time.Time) {
	if m == nil {
		return
	}
	m.unitDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

func (m *Metrics) addMoney(reason string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.money.WithLabelValues(reason).Add(float64(amount))
}

var (
	guildsDesc = prometheus.NewDesc(
		"guildhall_guilds",
		"Number of guilds in the registry",
		nil, nil,
	)
	membersDesc = prometheus.NewDesc(
		"guildhall_guild_members",
		"Number of players belonging to a guild",
		nil, nil,
	)
	pendingDesc = prometheus.NewDesc(
		"guildhall_join_requests",
		"Number of pending join requests",
		nil, nil,
	)
	corruptDesc = prometheus.NewDesc(
		"guildhall_registry_corrupt",
		"1 while the stored registry cannot be loaded",
		[]string{"backend"}, nil,
	)
)

// RegistryCollector reports registry sizes by loading the store on scrape
type RegistryCollector struct {
	store GuildStore
}

// NewRegistryCollector creates a collector over store
func NewRegistryCollector(store GuildStore) *RegistryCollector {
	return &RegistryCollector{store: store}
}

func (c *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- guildsDesc
	ch <- membersDesc
	ch <- pendingDesc
	ch <- corruptDesc
}

func (c *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := c.store.Load(ctx)
	corrupt := 0.0
	if KindOf(err) == KindCorruptState {
		corrupt = 1
	}
	ch <- prometheus.MustNewConstMetric(corruptDesc, prometheus.GaugeValue, corrupt, c.store.Backend())
	if err != nil {
		slog.Debug("registry collector load failed", slog.String("error", err.Error()))
		return
	}

	members, pending := 0, 0
	for _, rec := range reg {
		members += len(rec.Members)
		pending += len(rec.JoinRequests)
	}
	ch <- prometheus.MustNewConstMetric(guildsDesc, prometheus.GaugeValue, float64(len(reg)))
	ch <- prometheus.MustNewConstMetric(membersDesc, prometheus.GaugeValue, float64(members))
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(pending))
}

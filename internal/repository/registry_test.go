package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/guildhall/internal/model"
)

type failingSlot struct {
	readErr  error
	writeErr error
}

func (f *failingSlot) Read(ctx context.Context) ([]byte, error) { return nil, f.readErr }
func (f *failingSlot) Write(ctx context.Context, data []byte) error { return f.writeErr }
func (f *failingSlot) Backend() string { return "failing" }

func sampleRegistry() model.Registry {
	return model.Registry{
		"Alpha": {Leader: "kim", Description: "first", Members: []string{"kim", "lee"}, JoinRequests: []string{"park"}},
		"Beta":  {Leader: "choi", Members: []string{"choi"}, JoinRequests: []string{"park"}},
	}
}

func TestRegistryStore_EmptySlot(t *testing.T) {
	t.Parallel()

	store, _ := NewMemoryRegistryStore()
	reg, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, reg)
	assert.NotNil(t, reg)
}

func TestRegistryStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, slot := NewMemoryRegistryStore()
	require.NoError(t, store.Save(ctx, sampleRegistry()))
	assert.Equal(t, 1, slot.Writes())

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRegistry(), got)
}

func TestRegistryStore_SaveRefusesInvalid(t *testing.T) {
	t.Parallel()

	store, slot := NewMemoryRegistryStore()
	bad := model.Registry{"A": {Leader: "kim", Members: []string{"lee"}}}

	err := store.Save(t.Context(), bad)
	require.Error(t, err)
	assert.Equal(t, 0, slot.Writes(), "invalid registry must not reach the slot")
}

func TestRegistryStore_LegacyMigratesOnSave(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, slot := NewMemoryRegistryStore()
	slot.Seed([]byte(`{"Alpha":{"leader":"kim","description":"old","members":["kim"]}}`))

	reg, err := store.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, reg, "Alpha")

	require.NoError(t, store.Save(ctx, reg))
	raw, _ := slot.Raw()
	assert.JSONEq(t, `{"version":1,"guilds":{"Alpha":{"leader":"kim","description":"old","members":["kim"],"joinRequests":[]}}}`, string(raw))
}

func TestRegistryStore_CorruptIsReportedAndRecovers(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, slot := NewMemoryRegistryStore()
	slot.Seed([]byte(`not json`))

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, model.ErrCorruptState)
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, model.ErrCorruptState)

	// Operator repair
	require.NoError(t, store.Save(ctx, sampleRegistry()))
	_, err = store.Load(ctx)
	require.NoError(t, err)
}

func TestRegistryStore_SlotErrors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("disk gone")
	store := NewRegistryStore(&failingSlot{readErr: readErr, writeErr: readErr})

	_, err := store.Load(t.Context())
	require.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, model.ErrCorruptState)

	err = store.Save(t.Context(), sampleRegistry())
	require.ErrorIs(t, err, readErr)
	assert.Equal(t, "failing", store.Backend())
}

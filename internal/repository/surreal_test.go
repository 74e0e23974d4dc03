package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/guildhall/internal/database"
	"github.com/forgo/guildhall/internal/testing/testdb"
)

// ============================================================================
// Stub Database
// ============================================================================

type stubDB struct {
	queryOneFunc func(query string, vars map[string]interface{}) (interface{}, error)
	executeFunc  func(query string, vars map[string]interface{}) error
}

func (s *stubDB) Connect(ctx context.Context) error { return nil }
func (s *stubDB) Close() error                      { return nil }
func (s *stubDB) Ping(ctx context.Context) error    { return nil }

func (s *stubDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	return nil, errors.New("not implemented")
}

func (s *stubDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	return s.queryOneFunc(query, vars)
}

func (s *stubDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	return s.executeFunc(query, vars)
}

func TestSurrealSlot_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		result  interface{}
		err     error
		want    string
		wantErr error
	}{
		{
			name:   "statement wrapper",
			result: map[string]interface{}{"status": "OK", "result": []interface{}{map[string]interface{}{"payload": `{"version":1}`}}},
			want:   `{"version":1}`,
		},
		{name: "bare row", result: map[string]interface{}{"payload": "{}"}, want: "{}"},
		{name: "no record", err: database.ErrNotFound, wantErr: ErrSlotEmpty},
		{name: "empty result", result: []interface{}{}, wantErr: ErrSlotEmpty},
		{name: "connection lost", err: database.ErrConnection, wantErr: database.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotID interface{}
			slot := NewSurrealSlot(&stubDB{queryOneFunc: func(_ string, vars map[string]interface{}) (interface{}, error) {
				gotID = vars["id"]
				return tt.result, tt.err
			}}, "guilds")

			data, err := slot.Read(t.Context())
			assert.Equal(t, "registry_slot:guilds", gotID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestSurrealSlot_ReadRejectsNonStringPayload(t *testing.T) {
	t.Parallel()
	slot := NewSurrealSlot(&stubDB{queryOneFunc: func(string, map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"payload": 42}, nil
	}}, "guilds")

	_, err := slot.Read(t.Context())
	assert.ErrorContains(t, err, "payload is int")
}

func TestSurrealSlot_Write(t *testing.T) {
	t.Parallel()
	var vars map[string]interface{}
	slot := NewSurrealSlot(&stubDB{executeFunc: func(_ string, v map[string]interface{}) error {
		vars = v
		return nil
	}}, "guilds")

	require.NoError(t, slot.Write(t.Context(), []byte(`{"version":1}`)))
	assert.Equal(t, "registry_slot:guilds", vars["id"])
	assert.Equal(t, `{"version":1}`, vars["payload"])
	assert.Equal(t, "surrealdb", slot.Backend())
}

func TestSurrealSlot_UpdatedOn(t *testing.T) {
	t.Parallel()
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	slot := NewSurrealSlot(&stubDB{queryOneFunc: func(string, map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"updated_on": stamp.Format(time.RFC3339Nano)}, nil
	}}, "guilds")

	got, err := slot.UpdatedOn(t.Context())
	require.NoError(t, err)
	assert.True(t, got.Equal(stamp))
}

// ============================================================================
// Live SurrealDB
// ============================================================================

func TestSurrealSlot_Live(t *testing.T) {
	tdb := testdb.New(t)
	ctx := tdb.Ctx()

	store := NewRegistryStore(NewSurrealSlot(tdb.DB, "guilds"))
	reg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, reg)

	require.NoError(t, store.Save(ctx, sampleRegistry()))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRegistry(), got)

	rows := tdb.MustQuery("SELECT * FROM registry_slot", nil)
	assert.NotEmpty(t, rows)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/guildhall/internal/database"
)

// SurrealSlot stores the registry as a single registry_slot record
type SurrealSlot struct {
	db database.Database
	id string
}

// NewSurrealSlot creates a slot for registry_slot:<key>
func NewSurrealSlot(db database.Database, key string) *SurrealSlot {
	return &SurrealSlot{db: db, id: "registry_slot:" + key}
}

func (s *SurrealSlot) Read(ctx context.Context) ([]byte, error) {
	query := `SELECT payload, updated_on FROM type::record($id)`
	vars := map[string]interface{}{"id": s.id}

	result, err := s.db.QueryOne(ctx, query, vars)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	row, err := database.FirstRow(result)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	payload, ok := row["payload"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: payload is %T, want string", s.id, row["payload"])
	}
	return []byte(payload), nil
}

func (s *SurrealSlot) Write(ctx context.Context, data []byte) error {
	query := `
		UPSERT type::record($id) CONTENT {
			payload: $payload,
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"id":      s.id,
		"payload": string(data),
	}
	return s.db.Execute(ctx, query, vars)
}

func (s *SurrealSlot) Backend() string { return "surrealdb" }

// UpdatedOn reports when the slot was last written
func (s *SurrealSlot) UpdatedOn(ctx context.Context) (time.Time, error) {
	result, err := s.db.QueryOne(ctx, `SELECT updated_on FROM type::record($id)`, map[string]interface{}{"id": s.id})
	if err != nil {
		return time.Time{}, err
	}
	row, err := database.FirstRow(result)
	if err != nil {
		return time.Time{}, err
	}
	return slotTime(row["updated_on"]), nil
}

// slotTime reads updated_on in either form the driver decodes it to
func slotTime(v interface{}) time.Time {
	switch t := v.(type) {
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	case time.Time:
		return t
	case string:
		parsed, _ := time.Parse(time.RFC3339Nano, t)
		return parsed
	}
	return time.Time{}
}

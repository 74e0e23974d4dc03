package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/forgo/guildhall/internal/model"
)

// ErrSlotEmpty is returned by a Slot that has never been written
var ErrSlotEmpty = errors.New("registry slot is empty")

// Slot is the raw key-value cell the registry lives in. Implementations read
// and write the whole encoded document in one operation.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Backend names the storage for logs and error messages
	Backend() string
}

// CorruptStateError reports a registry that could not be decoded or that
// violates its invariants. It unwraps to model.ErrCorruptState.
type CorruptStateError struct {
	Backend string
	Err     error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("%s: %s backend: %v", model.ErrCorruptState, e.Backend, e.Err)
}

// Unwrap lets errors.Is match both the sentinel and the cause
func (e *CorruptStateError) Unwrap() []error {
	return []error{model.ErrCorruptState, e.Err}
}

// RegistryStore loads and saves the guild registry through a Slot
type RegistryStore struct {
	slot Slot

	mu       sync.Mutex
	reported string
}

// NewRegistryStore creates a registry store over the given slot
func NewRegistryStore(slot Slot) *RegistryStore {
	return &RegistryStore{slot: slot}
}

// Backend names the underlying storage
func (s *RegistryStore) Backend() string {
	return s.slot.Backend()
}

// Load returns the whole registry. A slot that was never written yields an
// empty registry. Undecodable or inconsistent contents yield a
// *CorruptStateError and are logged once per distinct cause.
func (s *RegistryStore) Load(ctx context.Context) (model.Registry, error) {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return model.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry from %s: %w", s.slot.Backend(), err)
	}

	reg, _, err := Decode(data)
	if err != nil {
		corrupt := &CorruptStateError{Backend: s.slot.Backend(), Err: err}
		s.report(corrupt)
		return nil, corrupt
	}
	s.clearReport()
	return reg, nil
}

// Save replaces the whole registry. A registry that violates its invariants
// is refused rather than written.
func (s *RegistryStore) Save(ctx context.Context, reg model.Registry) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	data, err := Encode(reg)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("write registry to %s: %w", s.slot.Backend(), err)
	}
	return nil
}

func (s *RegistryStore) report(err *CorruptStateError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := err.Err.Error()
	if s.reported == msg {
		return
	}
	s.reported = msg
	slog.Error("guild registry is corrupt; operator repair required",
		slog.String("backend", err.Backend),
		slog.String("error", msg),
	)
}

func (s *RegistryStore) clearReport() {
	s.mu.Lock()
	s.reported = ""
	s.mu.Unlock()
}

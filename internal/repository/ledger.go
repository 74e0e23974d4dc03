package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for zero or negative amounts
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Ledger holds player money balances. Players never seen before start with
// the configured starting balance.
type Ledger interface {
	Balance(ctx context.Context, player string) (int64, error)
	Credit(ctx context.Context, player string, amount int64) (int64, error)
	Debit(ctx context.Context, player string, amount int64) (int64, error)
	// Transfer moves amount from one player to another atomically and
	// returns both resulting balances
	Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error)
}

// MemoryLedger is an in-process Ledger
type MemoryLedger struct {
	mu       sync.Mutex
	start    int64
	balances map[string]int64
}

// NewMemoryLedger creates a ledger where new players start with start
func NewMemoryLedger(start int64) *MemoryLedger {
	return &MemoryLedger{start: start, balances: make(map[string]int64)}
}

func (l *MemoryLedger) get(player string) int64 {
	bal, ok := l.balances[player]
	if !ok {
		bal = l.start
		l.balances[player] = bal
	}
	return bal
}

func (l *MemoryLedger) Balance(ctx context.Context, player string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(player), nil
}

func (l *MemoryLedger) Credit(ctx context.Context, player string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.get(player) + amount
	l.balances[player] = bal
	return bal, nil
}

func (l *MemoryLedger) Debit(ctx context.Context, player string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.get(player)
	if bal < amount {
		return bal, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, player, bal, amount)
	}
	bal -= amount
	l.balances[player] = bal
	return bal, nil
}

func (l *MemoryLedger) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBal := l.get(from)
	toBal := l.get(to)
	if fromBal < amount {
		return fromBal, toBal, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, fromBal, amount)
	}
	l.balances[from] = fromBal - amount
	l.balances[to] = toBal + amount
	return fromBal - amount, toBal + amount, nil
}

// Set overwrites a balance; used by the admin seeder and tests
func (l *MemoryLedger) Set(player string, amount int64) {
	l.mu.Lock()
	l.balances[player] = amount
	l.mu.Unlock()
}

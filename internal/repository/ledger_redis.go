package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	balancesKey      = "guildhall:balances"
	ledgerMaxRetries = 16
)

var errLedgerContended = errors.New("ledger update kept conflicting")

// RedisLedger keeps balances in a single redis hash. Multi-key updates use
// WATCH/MULTI so a transfer never moves money half way.
type RedisLedger struct {
	client redis.UniversalClient
	start  int64
}

// NewRedisLedger creates a redis-backed ledger
func NewRedisLedger(client redis.UniversalClient, start int64) *RedisLedger {
	return &RedisLedger{client: client, start: start}
}

func (l *RedisLedger) read(ctx context.Context, tx *redis.Tx, player string) (int64, error) {
	raw, err := tx.HGet(ctx, balancesKey, player).Result()
	if errors.Is(err, redis.Nil) {
		return l.start, nil
	}
	if err != nil {
		return 0, err
	}
	bal, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("balance of %s is not a number: %w", player, err)
	}
	return bal, nil
}

func (l *RedisLedger) Balance(ctx context.Context, player string) (int64, error) {
	// Seed untouched players so later HINCRBY calls start from the right base
	if err := l.client.HSetNX(ctx, balancesKey, player, l.start).Err(); err != nil {
		return 0, err
	}
	raw, err := l.client.HGet(ctx, balancesKey, player).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (l *RedisLedger) Credit(ctx context.Context, player string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if err := l.client.HSetNX(ctx, balancesKey, player, l.start).Err(); err != nil {
		return 0, err
	}
	return l.client.HIncrBy(ctx, balancesKey, player, amount).Result()
}

func (l *RedisLedger) Debit(ctx context.Context, player string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var result int64
	err := l.retry(ctx, func(tx *redis.Tx) error {
		bal, err := l.read(ctx, tx, player)
		if err != nil {
			return err
		}
		if bal < amount {
			result = bal
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, player, bal, amount)
		}
		result = bal - amount
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, balancesKey, player, result)
			return nil
		})
		return err
	})
	return result, err
}

func (l *RedisLedger) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	var fromBal, toBal int64
	err := l.retry(ctx, func(tx *redis.Tx) error {
		var err error
		if fromBal, err = l.read(ctx, tx, from); err != nil {
			return err
		}
		if toBal, err = l.read(ctx, tx, to); err != nil {
			return err
		}
		if fromBal < amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, fromBal, amount)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, balancesKey, from, fromBal-amount, to, toBal+amount)
			return nil
		})
		if err == nil {
			fromBal -= amount
			toBal += amount
		}
		return err
	})
	return fromBal, toBal, err
}

func (l *RedisLedger) retry(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for i := 0; i < ledgerMaxRetries; i++ {
		err := l.client.Watch(ctx, fn, balancesKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errLedgerContended
}

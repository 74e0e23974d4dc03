package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
)

// ErrLockNotObtained is returned when the registry lock stays held by
// another process past the retry budget
var ErrLockNotObtained = errors.New("registry lock not obtained")

const (
	lockBackoff    = 100 * time.Millisecond
	lockMaxRetries = 10
)

// RedisOptions configures the shared redis client
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// NewRedisClient creates a client and checks it answers PING
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

func registryKey(key string) string {
	return "guildhall:registry:" + key
}

// RedisSlot stores the registry under one string key
type RedisSlot struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSlot creates a slot stored at guildhall:registry:<key>
func NewRedisSlot(client redis.UniversalClient, key string) *RedisSlot {
	return &RedisSlot{client: client, key: registryKey(key)}
}

func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisSlot) Write(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSlot) Backend() string { return "redis" }

// Locker serializes registry units of work across processes
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// LocalLocker is a no-op Locker for single-process deployments, where the
// service mutex already serializes units of work
type LocalLocker struct{}

func (LocalLocker) Lock(ctx context.Context) (func(), error) {
	return func() {}, nil
}

// RedisLocker guards the registry key with a redislock lease
type RedisLocker struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
}

// NewRedisLocker creates a locker for the registry stored at key
func NewRedisLocker(client redis.UniversalClient, key string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{
		locker: redislock.New(client),
		key:    registryKey(key) + ":lock",
		ttl:    ttl,
	}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	lock, err := l.locker.Obtain(ctx, l.key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockBackoff), lockMaxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", l.key, err)
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the lease
		_ = lock.Release(context.Background())
	}, nil
}

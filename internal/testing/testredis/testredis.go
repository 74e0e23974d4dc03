package testredis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// TestRedis is a connection plus the names one test created
type TestRedis struct {
	Client *redis.Client
	prefix string

	mu     sync.Mutex
	keys   []string
	hashes map[string][]string
	t      *testing.T
}

var (
	counterMu sync.Mutex
	counter   int64
)

func uniquePrefix() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New connects to TEST_REDIS_ADDR or skips the test
func New(t *testing.T) *TestRedis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("testredis: TEST_REDIS_ADDR not set")
	}
	db := 15
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			t.Fatalf("testredis: TEST_REDIS_DB: %v", err)
		}
		db = n
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("TEST_REDIS_PASSWORD"),
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("testredis: failed to connect: %v", err)
	}

	tr := &TestRedis{
		Client: client,
		prefix: uniquePrefix(),
		hashes: make(map[string][]string),
		t:      t,
	}
	t.Cleanup(tr.Close)
	return tr
}

// Key returns a name unique to this test. Keys derived from it by the
// caller (suffixes such as ":lock") are removed with Forget.
func (tr *TestRedis) Key(name string) string {
	return tr.prefix + ":" + name
}

// Forget removes key on cleanup
func (tr *TestRedis) Forget(keys ...string) {
	tr.mu.Lock()
	tr.keys = append(tr.keys, keys...)
	tr.mu.Unlock()
}

// Player returns a player name unique to this test whose field in hash is
// removed on cleanup
func (tr *TestRedis) Player(hash, name string) string {
	player := tr.prefix + "_" + name
	tr.mu.Lock()
	tr.hashes[hash] = append(tr.hashes[hash], player)
	tr.mu.Unlock()
	return player
}

// Ctx returns a context bounded by the test's lifetime
func (tr *TestRedis) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tr.t.Cleanup(cancel)
	return ctx
}

// Close removes everything the test created and closes the client
func (tr *TestRedis) Close() {
	if tr.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.keys) > 0 {
		_ = tr.Client.Del(ctx, tr.keys...).Err()
	}
	for hash, fields := range tr.hashes {
		_ = tr.Client.HDel(ctx, hash, fields...).Err()
	}
	_ = tr.Client.Close()
	tr.Client = nil
}

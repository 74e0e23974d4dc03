package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestIdempotencyStore(t *testing.T) *IdempotencyStore {
	t.Helper()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Minute, Cleanup: time.Hour})
	t.Cleanup(store.Stop)
	return store
}

// countingHandler charges once per call and echoes the call number
func countingHandler(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"call":` + string(rune('0'+n)) + `}`))
	})
}

func purchase(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/shops/machine/purchase", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestIdempotency_ReplaysSameRequest(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	handler := Idempotency(newTestIdempotencyStore(t))(countingHandler(&calls, http.StatusOK))

	first := purchase(handler, "k1", `{"player":"kim","item":"hopper","quantity":1}`)
	second := purchase(handler, "k1", `{"player":"kim","item":"hopper","quantity":1}`)

	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replay header missing")
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Errorf("replayed Content-Type = %q", second.Header().Get("Content-Type"))
	}
}

func TestIdempotency_DifferentBodyOrNoKey(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	handler := Idempotency(newTestIdempotencyStore(t))(countingHandler(&calls, http.StatusOK))

	purchase(handler, "k1", `{"quantity":1}`)
	purchase(handler, "k1", `{"quantity":2}`)
	purchase(handler, "", `{"quantity":1}`)
	purchase(handler, "", `{"quantity":1}`)

	if calls.Load() != 4 {
		t.Errorf("handler calls = %d, want 4", calls.Load())
	}
}

func TestIdempotency_ServerErrorsAreRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	handler := Idempotency(newTestIdempotencyStore(t))(countingHandler(&calls, http.StatusServiceUnavailable))

	purchase(handler, "k1", `{}`)
	purchase(handler, "k1", `{}`)

	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestIdempotency_ClientErrorsAreStored(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	handler := Idempotency(newTestIdempotencyStore(t))(countingHandler(&calls, http.StatusPaymentRequired))

	purchase(handler, "k1", `{}`)
	rr := purchase(handler, "k1", `{}`)

	if calls.Load() != 1 || rr.Code != http.StatusPaymentRequired {
		t.Errorf("calls = %d status = %d", calls.Load(), rr.Code)
	}
}

func TestIdempotency_ConcurrentDuplicatesRunOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.WriteHeader(http.StatusCreated)
	})
	handler := Idempotency(newTestIdempotencyStore(t))(slow)

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = purchase(handler, "k1", `{}`).Code
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
	for i, code := range codes {
		if code != http.StatusCreated {
			t.Errorf("request %d status = %d", i, code)
		}
	}
}

func TestIdempotency_GetPassesThrough(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	handler := Idempotency(newTestIdempotencyStore(t))(countingHandler(&calls, http.StatusOK))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/shops", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestIdempotencyStore_Cleanup(t *testing.T) {
	t.Parallel()
	store := newTestIdempotencyStore(t)
	handler := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	purchase(handler, "k1", `{}`)

	store.mu.Lock()
	for _, e := range store.entries {
		e.expiresAt = time.Now().Add(-time.Second)
	}
	store.mu.Unlock()
	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.entries) != 0 {
		t.Errorf("entries after cleanup = %d", len(store.entries))
	}
}

package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyHeader lets a host retry a purchase or transfer without paying twice
const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore remembers responses to keyed POST and PATCH requests
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type idempotencyEntry struct {
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
	done        chan struct{}
}

func (e *idempotencyEntry) inFlight() bool {
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // default 10 minutes
	Cleanup time.Duration // default 1 minute
}

// NewIdempotencyStore creates a store and starts its cleanup loop
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Minute
	}

	s := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}
	go s.cleanupLoop(cfg.Cleanup)
	return s
}

// Stop stops the cleanup loop. Safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if !e.inFlight() && e.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// fingerprint binds the key to the host and the exact request so a reused
// key with a different body is treated as a new request
func fingerprint(host, key, method, path string, body []byte) string {
	h := sha256.New()
	for _, part := range []string{host, key, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// capturingWriter records the response while passing it through
type capturingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *capturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func replay(w http.ResponseWriter, e *idempotencyEntry) {
	if e.contentType != "" {
		w.Header().Set("Content-Type", e.contentType)
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(e.status)
	_, _ = w.Write(e.body)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Concurrent duplicates wait for the first to finish. Server errors are not
// stored so the host can retry them.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPatch) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			id := fingerprint(GetHost(r.Context()), key, r.Method, r.URL.Path, body)

			for {
				store.mu.Lock()
				e, ok := store.entries[id]
				if !ok || (!e.inFlight() && e.expiresAt.Before(time.Now())) {
					break
				}
				store.mu.Unlock()

				if e.inFlight() {
					select {
					case <-e.done:
						continue
					case <-r.Context().Done():
						return
					}
				}
				replay(w, e)
				return
			}

			e := &idempotencyEntry{done: make(chan struct{})}
			store.entries[id] = e
			store.mu.Unlock()

			cw := &capturingWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				p := recover()
				store.mu.Lock()
				if p != nil || cw.status >= http.StatusInternalServerError {
					delete(store.entries, id)
				} else {
					e.status = cw.status
					e.contentType = cw.Header().Get("Content-Type")
					e.body = cw.body.Bytes()
					e.expiresAt = time.Now().Add(store.ttl)
				}
				close(e.done)
				store.mu.Unlock()
				if p != nil {
					panic(p)
				}
			}()

			next.ServeHTTP(cw, r)
		})
	}
}

package middleware

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/pkg/jwt"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// ClaimsKey is the context key for the authenticated host's claims
const ClaimsKey contextKey = "claims"

// HostKeyHeader carries a shared host key as an alternative to a bearer token
const HostKeyHeader = "X-Host-Key"

// HostKeyVerifier checks X-Host-Key against a bcrypt hash. Keys that matched
// once are remembered by digest so bcrypt runs once per distinct key.
type HostKeyVerifier struct {
	hash []byte

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]struct{}
}

// NewHostKeyVerifier creates a verifier for hash. An empty hash rejects every key.
func NewHostKeyVerifier(hash string) *HostKeyVerifier {
	return &HostKeyVerifier{hash: []byte(hash), verified: make(map[[sha256.Size]byte]struct{})}
}

// Verify reports whether key matches the configured hash
func (v *HostKeyVerifier) Verify(key string) bool {
	if v == nil || len(v.hash) == 0 || key == "" {
		return false
	}
	digest := sha256.Sum256([]byte(key))

	v.mu.RLock()
	_, ok := v.verified[digest]
	v.mu.RUnlock()
	if ok {
		return true
	}

	if bcrypt.CompareHashAndPassword(v.hash, []byte(key)) != nil {
		return false
	}
	v.mu.Lock()
	v.verified[digest] = struct{}{}
	v.mu.Unlock()
	return true
}

// Auth returns a middleware that accepts either a bearer JWT or a host key.
// A valid host key authenticates as role host. verifier or keys may be nil.
func Auth(verifier TokenVerifier, keys *HostKeyVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get(HostKeyHeader); key != "" {
				if !keys.Verify(key) {
					model.NewUnauthorizedError("invalid host key").WriteJSON(w)
					return
				}
				claims := &jwt.Claims{Subject: "host-key", Role: jwt.RoleHost}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}
			if verifier == nil {
				model.NewUnauthorizedError("bearer tokens are not accepted").WriteJSON(w)
				return
			}

			claims, err := verifier.ValidateAccessToken(parts[1])
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					model.NewUnauthorizedError("token expired").WriteJSON(w)
				case errors.Is(err, jwt.ErrInvalidSignature):
					model.NewUnauthorizedError("invalid token signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid token").WriteJSON(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims)))
		})
	}
}

// RequireRole rejects requests whose claims do not satisfy role. It must run
// after Auth.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				model.NewUnauthorizedError("authentication required").WriteJSON(w)
				return
			}
			if !claims.HasRole(role) {
				model.NewForbiddenError(role + " role required").WriteJSON(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims extracts the JWT claims from context
func GetClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}

// GetHost returns the authenticated host name, or "" before Auth ran
func GetHost(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

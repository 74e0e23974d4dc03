package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	"github.com/forgo/guildhall/internal/model"
)

// PlayerHeader names the acting player when the body does not
const PlayerHeader = "X-Player"

// PlayerKey is the context key for the acting player
const PlayerKey contextKey = "player"

// GetPlayer extracts the acting player from context
func GetPlayer(ctx context.Context) string {
	if name, ok := ctx.Value(PlayerKey).(string); ok {
		return name
	}
	return ""
}

// WithPlayer returns ctx carrying the acting player
func WithPlayer(ctx context.Context, player string) context.Context {
	return context.WithValue(ctx, PlayerKey, player)
}

// ActingPlayer reads X-Player into the request context. A header that is
// present but not a usable player name is rejected.
func ActingPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, present := r.Header[http.CanonicalHeaderKey(PlayerHeader)]
		if !present {
			next.ServeHTTP(w, r)
			return
		}

		name := ""
		if len(raw) > 0 {
			name = strings.TrimSpace(raw[0])
		}
		if !validPlayerName(name) {
			model.NewBadRequestError("invalid " + PlayerHeader + " header").WriteJSON(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), name)))
	})
}

func validPlayerName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Package middleware provides the HTTP middleware in front of the host API.
//
// Every /v1 route runs behind the same chain:
//
//	RequestID -> Logger -> Recovery -> Compress -> Auth -> ActingPlayer -> RateLimit -> Idempotency
//
// Auth accepts an RS256 bearer token (role host or admin) or a shared key in
// X-Host-Key checked against a bcrypt hash. RequireRole narrows a route to
// admin tokens. ActingPlayer reads X-Player so handlers can fall back to it
// when a request body does not name the player.
//
// Context values are read with GetRequestID, GetClaims, GetHost and GetPlayer.
package middleware

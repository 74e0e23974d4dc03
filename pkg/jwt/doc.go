// Package jwt signs and verifies the RS256 tokens game hosts present to the
// guildhall API.
//
// A token names the host in Subject and carries a role: "host" for a game
// server bridge, "admin" for operator tooling. Admin satisfies every role.
//
//	svc, err := jwt.NewService(jwt.Config{PublicKeyPath: "./keys/public.pem", Issuer: "guildhall"})
//	claims, err := svc.Validate(token)
//	if claims.HasRole(jwt.RoleHost) { ... }
//
// Tokens are minted offline with cmd/admin-token.
package jwt

// Package handler provides the HTTP handlers of the host API.
//
// Handlers are grouped by the part of the game they serve: guilds, in-game
// hooks (menu commands, chat, block edits), the economy, host presence and
// the host event stream. Each is built with NewXxxHandler and its methods
// are registered on a Go 1.22 ServeMux in cmd/server.
//
// # Acting player
//
// Operations name the acting player in the JSON body ("player", or "from"
// for transfers). When the body leaves it empty the X-Player header set by
// middleware.ActingPlayer is used instead.
//
// # Response Format
//
//   - WriteData: single resource, wrapped in {"data": ...}
//   - WriteCollection: list of resources with a count
//   - WriteError: RFC 9457 Problem Details
//
// Service errors go through MapServiceError, which picks the status from
// service.KindOf and attaches the localized player message in "message".
// Insufficient funds answer 402 and a corrupt registry 503.
package handler

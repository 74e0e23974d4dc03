// Package locale renders the messages guildhall sends to players.
//
// Message definitions live in messages.go with English defaults. Translations
// are TOML files embedded from translations/, named active.<lang>.toml.
//
//	text := locale.MustNew("ko")
//	msg := text.Text(locale.GuildCreated, locale.Data{"Guild": "Alpha"})
package locale

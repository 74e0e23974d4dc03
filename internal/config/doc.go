// Package config loads guildhall configuration from environment variables.
//
//	cfg, _ := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    // every problem is joined into one error
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP port, timeouts, log level
//   - StoreConfig: registry backend (memory, file, sqlite, redis, surrealdb)
//   - RedisConfig / DatabaseConfig: connection settings for those backends
//   - LedgerConfig: balance backend and the starting balance
//   - GuildConfig: approval, pending request policy, limits, fees, chat prefix
//   - EconomyConfig: transfer bounds and the catalog file
//   - AuthConfig: JWT verification and the host API key hash
//   - ProtectionConfig: the no-build region
//
// Unset or unparseable variables fall back to their defaults.
package config

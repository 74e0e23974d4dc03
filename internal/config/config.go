package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendSurrealDB = "surrealdb"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Ledger     LedgerConfig
	Guild      GuildConfig
	Economy    EconomyConfig
	Auth       AuthConfig
	Jobs       JobsConfig
	Limits     LimitsConfig
	Locale     string
	Protection ProtectionConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
}

// StoreConfig selects where the guild registry lives
type StoreConfig struct {
	Backend      string
	FilePath     string
	FileCompress bool
	SQLitePath   string
	Key          string
}

// RedisConfig holds redis connection settings shared by the registry and ledger
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	LockTTL  time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// LedgerConfig selects where balances live
type LedgerConfig struct {
	Backend         string
	StartingBalance int64
}

// GuildConfig holds membership rules
type GuildConfig struct {
	RequireApproval      bool
	SinglePendingRequest bool
	MaxNameLength        int
	MaxDescriptionLength int
	CreateFee            int64
	JoinFee              int64
	ChatPrefix           string
}

// EconomyConfig holds bank limits and the shop catalog location
type EconomyConfig struct {
	TransferMin int64
	TransferMax int64
	CatalogPath string
}

// AuthConfig holds host authentication settings
type AuthConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	ExpirationMins int
	HostKeyHash    string
}

// JobsConfig holds background job intervals
type JobsConfig struct {
	NameTagInterval time.Duration
}

// LimitsConfig holds per-player throttling and host retry settings
type LimitsConfig struct {
	PlayerRate     int // requests per minute, 0 disables
	PlayerBurst    int
	IdempotencyTTL time.Duration
}

// ProtectionConfig describes the no-build region
type ProtectionConfig struct {
	Region    string
	Dimension string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("SERVER_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:      getEnv("STORE_BACKEND", BackendFile),
			FilePath:     getEnv("STORE_FILE_PATH", "./data/guilds.json"),
			FileCompress: getBoolEnv("STORE_FILE_COMPRESS", false),
			SQLitePath:   getEnv("STORE_SQLITE_PATH", "./data/guildhall.db"),
			Key:          getEnv("STORE_KEY", "guilds"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			LockTTL:  getDurationEnv("REDIS_LOCK_TTL", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "guildhall"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Ledger: LedgerConfig{
			Backend:         getEnv("LEDGER_BACKEND", BackendMemory),
			StartingBalance: getInt64Env("LEDGER_STARTING_BALANCE", 0),
		},
		Guild: GuildConfig{
			RequireApproval:      getBoolEnv("GUILD_REQUIRE_APPROVAL", true),
			SinglePendingRequest: getBoolEnv("GUILD_SINGLE_PENDING_REQUEST", false),
			MaxNameLength:        getIntEnv("GUILD_MAX_NAME_LENGTH", 24),
			MaxDescriptionLength: getIntEnv("GUILD_MAX_DESCRIPTION_LENGTH", 200),
			CreateFee:            getInt64Env("GUILD_CREATE_FEE", 100000),
			JoinFee:              getInt64Env("GUILD_JOIN_FEE", 40000),
			ChatPrefix:           getEnv("GUILD_CHAT_PREFIX", "ㅁ"),
		},
		Economy: EconomyConfig{
			TransferMin: getInt64Env("TRANSFER_MIN", 1),
			TransferMax: getInt64Env("TRANSFER_MAX", 1000000),
			CatalogPath: getEnv("CATALOG_PATH", ""),
		},
		Auth: AuthConfig{
			PrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
			PublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			Issuer:         getEnv("JWT_ISSUER", "guildhall.forgo.software"),
			ExpirationMins: getIntEnv("JWT_EXPIRATION_MINS", 60*24),
			HostKeyHash:    getEnv("HOST_API_KEY_HASH", ""),
		},
		Jobs: JobsConfig{
			NameTagInterval: getDurationEnv("NAMETAG_INTERVAL", 5*time.Second),
		},
		Limits: LimitsConfig{
			PlayerRate:     getIntEnv("PLAYER_RATE_LIMIT", 120),
			PlayerBurst:    getIntEnv("PLAYER_RATE_BURST", 20),
			IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 10*time.Minute),
		},
		Locale: getEnv("LOCALE", "ko"),
		Protection: ProtectionConfig{
			Region:    lookupEnv("PROTECTED_REGION", "16,40,-29:117,150,58"),
			Dimension: getEnv("PROTECTED_DIMENSION", "minecraft:overworld"),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SlogLevel converts LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", c.Server.LogLevel))
	}

	// Store validation
	switch c.Store.Backend {
	case BackendMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("STORE_BACKEND=memory is not allowed in production"))
		}
	case BackendFile:
		if c.Store.FilePath == "" {
			errs = append(errs, errors.New("STORE_FILE_PATH is required for the file backend"))
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("STORE_SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
		if c.Redis.LockTTL <= 0 {
			errs = append(errs, errors.New("REDIS_LOCK_TTL must be positive"))
		}
	case BackendSurrealDB:
		errs = append(errs, c.Database.validate()...)
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of memory, file, sqlite, redis, surrealdb, got '%s'", c.Store.Backend))
	}
	if c.Store.Key == "" {
		errs = append(errs, errors.New("STORE_KEY is required"))
	}

	// Ledger validation
	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis ledger"))
		}
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be memory or redis, got '%s'", c.Ledger.Backend))
	}
	if c.Ledger.StartingBalance < 0 {
		errs = append(errs, errors.New("LEDGER_STARTING_BALANCE must not be negative"))
	}

	// Guild rules
	if c.Guild.MaxNameLength <= 0 {
		errs = append(errs, errors.New("GUILD_MAX_NAME_LENGTH must be positive"))
	}
	if c.Guild.MaxDescriptionLength < 0 {
		errs = append(errs, errors.New("GUILD_MAX_DESCRIPTION_LENGTH must not be negative"))
	}
	if c.Guild.CreateFee < 0 {
		errs = append(errs, errors.New("GUILD_CREATE_FEE must not be negative"))
	}
	if c.Guild.JoinFee < 0 {
		errs = append(errs, errors.New("GUILD_JOIN_FEE must not be negative"))
	}
	if strings.TrimSpace(c.Guild.ChatPrefix) == "" {
		errs = append(errs, errors.New("GUILD_CHAT_PREFIX is required"))
	}

	// Economy
	if c.Economy.TransferMin <= 0 {
		errs = append(errs, errors.New("TRANSFER_MIN must be positive"))
	}
	if c.Economy.TransferMax < c.Economy.TransferMin {
		errs = append(errs, errors.New("TRANSFER_MAX must be at least TRANSFER_MIN"))
	}

	// Auth - a host must be able to authenticate somehow
	if c.Auth.PublicKeyPath == "" && c.Auth.HostKeyHash == "" {
		errs = append(errs, errors.New("one of JWT_PUBLIC_KEY_PATH or HOST_API_KEY_HASH is required"))
	}
	if c.IsProduction() && c.Auth.PublicKeyPath != "" && c.Auth.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required in production"))
	}

	if c.Jobs.NameTagInterval <= 0 {
		errs = append(errs, errors.New("NAMETAG_INTERVAL must be positive"))
	}

	if c.Limits.PlayerRate < 0 || c.Limits.PlayerBurst < 0 {
		errs = append(errs, errors.New("PLAYER_RATE_LIMIT and PLAYER_RATE_BURST must not be negative"))
	}
	if c.Limits.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}

	if c.Locale != "ko" && c.Locale != "en" {
		errs = append(errs, fmt.Errorf("LOCALE must be 'ko' or 'en', got '%s'", c.Locale))
	}

	if c.Protection.Region != "" {
		if _, _, err := c.Protection.Box(); err != nil {
			errs = append(errs, fmt.Errorf("PROTECTED_REGION: %w", err))
		}
		if c.Protection.Dimension == "" {
			errs = append(errs, errors.New("PROTECTED_DIMENSION is required when PROTECTED_REGION is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (d DatabaseConfig) validate() []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if d.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if d.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}
	return errs
}

// Box holds the two opposite corners of the protected region
type Box struct {
	Min [3]int
	Max [3]int
}

// Box parses Region ("x1,y1,z1:x2,y2,z2") into a normalized box. ok is false
// when no region is configured.
func (p ProtectionConfig) Box() (b Box, ok bool, err error) {
	if strings.TrimSpace(p.Region) == "" {
		return b, false, nil
	}
	corners := strings.Split(p.Region, ":")
	if len(corners) != 2 {
		return b, false, fmt.Errorf("expected two corners separated by ':', got %q", p.Region)
	}
	var pts [2][3]int
	for i, corner := range corners {
		parts := strings.Split(corner, ",")
		if len(parts) != 3 {
			return b, false, fmt.Errorf("corner %q must have three coordinates", corner)
		}
		for j, part := range parts {
			n, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil {
				return b, false, fmt.Errorf("coordinate %q: %w", part, convErr)
			}
			pts[i][j] = n
		}
	}
	for j := 0; j < 3; j++ {
		b.Min[j] = min(pts[0][j], pts[1][j])
		b.Max[j] = max(pts[0][j], pts[1][j])
	}
	return b, true, nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is getEnv for settings where an empty value means off
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

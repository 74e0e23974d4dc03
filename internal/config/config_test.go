package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			Env:      "development",
			LogLevel: "info",
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			FilePath: "./data/guilds.json",
			Key:      "guilds",
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			LockTTL: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "guildhall",
			Database:  "main",
		},
		Ledger: LedgerConfig{Backend: BackendMemory},
		Guild: GuildConfig{
			RequireApproval:      true,
			MaxNameLength:        24,
			MaxDescriptionLength: 200,
			CreateFee:            100000,
			JoinFee:              40000,
			ChatPrefix:           "ㅁ",
		},
		Economy: EconomyConfig{TransferMin: 1, TransferMax: 1000000},
		Auth: AuthConfig{
			PublicKeyPath: "./keys/public.pem",
			Issuer:        "guildhall.forgo.software",
		},
		Jobs:   JobsConfig{NameTagInterval: 5 * time.Second},
		Limits: LimitsConfig{PlayerRate: 120, PlayerBurst: 20, IdempotencyTTL: 10 * time.Minute},
		Locale: "ko",
		Protection: ProtectionConfig{
			Region:    "16,40,-29:117,150,58",
			Dimension: "minecraft:overworld",
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Key != "guilds" {
		t.Errorf("expected default STORE_KEY guilds, got %q", cfg.Store.Key)
	}
	if !cfg.Guild.RequireApproval {
		t.Error("expected approval to be required by default")
	}
	if cfg.Guild.SinglePendingRequest {
		t.Error("expected multiple pending requests to be allowed by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("GUILD_REQUIRE_APPROVAL", "false")
	t.Setenv("GUILD_JOIN_FEE", "0")
	t.Setenv("NAMETAG_INTERVAL", "2s")
	t.Setenv("GUILD_MAX_NAME_LENGTH", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Guild.RequireApproval {
		t.Error("GUILD_REQUIRE_APPROVAL=false was ignored")
	}
	if cfg.Guild.JoinFee != 0 {
		t.Errorf("JoinFee = %d, want 0", cfg.Guild.JoinFee)
	}
	if cfg.Jobs.NameTagInterval != 2*time.Second {
		t.Errorf("NameTagInterval = %v", cfg.Jobs.NameTagInterval)
	}
	if cfg.Guild.MaxNameLength != 24 {
		t.Errorf("unparseable value should fall back to default, got %d", cfg.Guild.MaxNameLength)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, "SERVER_PORT"},
		{"invalid env", func(c *Config) { c.Server.Env = "invalid" }, "SERVER_ENV"},
		{"invalid log level", func(c *Config) { c.Server.LogLevel = "loud" }, "LOG_LEVEL"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, "STORE_BACKEND"},
		{"memory in production", func(c *Config) { c.Server.Env = "production"; c.Store.Backend = BackendMemory }, "STORE_BACKEND=memory"},
		{"file without path", func(c *Config) { c.Store.FilePath = "" }, "STORE_FILE_PATH"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = BackendSQLite }, "STORE_SQLITE_PATH"},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Redis.Addr = "" }, "REDIS_ADDR"},
		{"surreal without host", func(c *Config) { c.Store.Backend = BackendSurrealDB; c.Database.Host = "" }, "DB_HOST"},
		{"missing key", func(c *Config) { c.Store.Key = "" }, "STORE_KEY"},
		{"unknown ledger", func(c *Config) { c.Ledger.Backend = "paper" }, "LEDGER_BACKEND"},
		{"zero name length", func(c *Config) { c.Guild.MaxNameLength = 0 }, "GUILD_MAX_NAME_LENGTH"},
		{"negative fee", func(c *Config) { c.Guild.CreateFee = -1 }, "GUILD_CREATE_FEE"},
		{"blank chat prefix", func(c *Config) { c.Guild.ChatPrefix = " " }, "GUILD_CHAT_PREFIX"},
		{"inverted transfer bounds", func(c *Config) { c.Economy.TransferMax = 0 }, "TRANSFER_MAX"},
		{"no auth", func(c *Config) { c.Auth.PublicKeyPath = "" }, "HOST_API_KEY_HASH"},
		{"zero interval", func(c *Config) { c.Jobs.NameTagInterval = 0 }, "NAMETAG_INTERVAL"},
		{"negative rate", func(c *Config) { c.Limits.PlayerRate = -1 }, "PLAYER_RATE_LIMIT"},
		{"zero idempotency ttl", func(c *Config) { c.Limits.IdempotencyTTL = 0 }, "IDEMPOTENCY_TTL"},
		{"unknown locale", func(c *Config) { c.Locale = "fr" }, "LOCALE"},
		{"bad region", func(c *Config) { c.Protection.Region = "1,2:3,4" }, "PROTECTED_REGION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error mentioning %s", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error to mention %s, got: %v", tt.want, err)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""
	cfg.Locale = "fr"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "SERVER_PORT") || !strings.Contains(msg, "LOCALE") {
		t.Errorf("expected both problems reported, got: %v", err)
	}
}

func TestProtectionConfig_Box(t *testing.T) {
	p := ProtectionConfig{Region: "117,150,58:16,40,-29"}
	box, ok, err := p.Box()
	if err != nil || !ok {
		t.Fatalf("Box() = ok %v, error %v", ok, err)
	}
	if box.Min != [3]int{16, 40, -29} || box.Max != [3]int{117, 150, 58} {
		t.Errorf("Box() = %+v, want normalized corners", box)
	}

	for _, region := range []string{"", "  "} {
		empty, ok, err := ProtectionConfig{Region: region}.Box()
		if err != nil || ok || empty != (Box{}) {
			t.Errorf("region %q: got %+v, ok %v, %v; want no region", region, empty, ok, err)
		}
	}
}

func TestLoad_ProtectedRegion(t *testing.T) {
	t.Setenv("PROTECTED_REGION", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Protection.Region != "" {
		t.Errorf("empty PROTECTED_REGION should turn protection off, got %q", cfg.Protection.Region)
	}
	if _, ok, _ := cfg.Protection.Box(); ok {
		t.Error("no box expected when protection is off")
	}

	t.Setenv("PROTECTED_REGION", "0,0,0:1,1,1")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, ok, err := cfg.Protection.Box(); !ok || err != nil {
		t.Errorf("configured region: ok %v, err %v", ok, err)
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	cfg := validBaseConfig()
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		cfg.Server.LogLevel = in
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgo/guildhall/internal/catalog"
	"github.com/forgo/guildhall/internal/config"
	"github.com/forgo/guildhall/internal/handler"
	"github.com/forgo/guildhall/internal/jobs"
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/middleware"
	"github.com/forgo/guildhall/internal/service"
	"github.com/forgo/guildhall/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	storage, err := openBackends(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	slog.Info("storage ready",
		slog.String("registry", storage.store.Backend()),
		slog.String("ledger", cfg.Ledger.Backend),
	)

	cat, err := catalog.Load(cfg.Economy.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	text, err := locale.New(cfg.Locale)
	if err != nil {
		slog.Error("failed to load messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	box, protected, err := cfg.Protection.Box()
	if err != nil {
		slog.Error("invalid protected region", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.Auth.PrivateKeyPath,
		PublicKeyPath:  cfg.Auth.PublicKeyPath,
		Issuer:         cfg.Auth.Issuer,
		ExpirationMins: cfg.Auth.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		service.NewRegistryCollector(storage.store),
	)
	metrics := service.NewMetrics(registry)

	// Host bridge
	eventHub := service.NewEventHub()
	bridge := service.NewHostBridge(eventHub)

	presenceService := service.NewPresenceService(bridge)
	nameTagService := service.NewNameTagService(storage.store, presenceService, bridge, text)

	guildService := service.NewGuildService(service.GuildServiceConfig{
		Store:     storage.store,
		Locker:    storage.locker,
		Directory: presenceService,
		Bridge:    bridge,
		Ledger:    storage.ledger,
		Tags:      nameTagService,
		Text:      text,
		Rules: service.GuildRules{
			RequireApproval:      cfg.Guild.RequireApproval,
			SinglePendingRequest: cfg.Guild.SinglePendingRequest,
			MaxNameLength:        cfg.Guild.MaxNameLength,
			MaxDescriptionLength: cfg.Guild.MaxDescriptionLength,
			CreateFee:            cfg.Guild.CreateFee,
			JoinFee:              cfg.Guild.JoinFee,
		},
		Metrics: metrics,
	})

	chatRouter := service.NewChatRouter(guildService, presenceService, bridge, text, cfg.Guild.ChatPrefix)
	var regions []service.Region
	if protected {
		regions = append(regions, service.Region{
			Min:       box.Min,
			Max:       box.Max,
			Dimension: cfg.Protection.Dimension,
		})
	} else {
		slog.Info("block protection disabled")
	}
	protectionService := service.NewProtectionService(presenceService, text, regions...)

	bankService := service.NewBankService(service.BankServiceConfig{
		Ledger:      storage.ledger,
		Directory:   presenceService,
		Bridge:      bridge,
		Catalog:     cat,
		Text:        text,
		TransferMin: cfg.Economy.TransferMin,
		TransferMax: cfg.Economy.TransferMax,
		Metrics:     metrics,
	})
	shopService := service.NewShopService(storage.ledger, cat, bridge, text, metrics)
	buffService := service.NewBuffService(guildService, storage.ledger, cat, bridge, text, metrics)

	// Handlers
	handlers := &handler.Handlers{
		Guilds: handler.NewGuildHandler(guildService, text),
		Commands: handler.NewCommandHandler(handler.CommandHandlerConfig{
			Guilds:     guildService,
			Chat:       chatRouter,
			Protection: protectionService,
			Text:       text,
		}),
		Economy: handler.NewEconomyHandler(handler.EconomyHandlerConfig{
			Bank:  bankService,
			Shops: shopService,
			Buffs: buffService,
			Text:  text,
		}),
		Host:   handler.NewHostHandler(presenceService, nameTagService, text),
		Events: handler.NewEventsHandler(eventHub),
		Health: handler.NewHealthHandler(storage.store, eventHub),
	}

	// Per-request middleware for /v1
	apiMiddleware := []middleware.Middleware{
		middleware.Auth(jwtService, middleware.NewHostKeyVerifier(cfg.Auth.HostKeyHash)),
		middleware.ActingPlayer,
	}
	if cfg.Limits.PlayerRate > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:  cfg.Limits.PlayerRate,
			Burst: cfg.Limits.PlayerBurst,
		})
		defer rateLimiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(rateLimiter))
	}
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{TTL: cfg.Limits.IdempotencyTTL})
	defer idempotencyStore.Stop()
	apiMiddleware = append(apiMiddleware, middleware.Idempotency(idempotencyStore))

	api := func(next http.Handler) http.Handler {
		return middleware.Chain(next, apiMiddleware...)
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, api, middleware.RequireRole(jwt.RoleAdmin))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Background jobs
	nameTagRefresher := jobs.NewNameTagRefresher(nameTagService, cfg.Jobs.NameTagInterval)
	nameTagRefresher.Start()

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.Compress,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	// Event streams outlive WriteTimeout; end them before Shutdown waits on them
	server.RegisterOnShutdown(eventHub.Close)

	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("locale", text.Lang()),
			slog.Int("shops", len(cat.Shops)),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	nameTagRefresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

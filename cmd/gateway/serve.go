package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"assistant-gateway/internal/assistant"
	"assistant-gateway/internal/config"
	"assistant-gateway/internal/observability"
	"assistant-gateway/internal/server"
	"assistant-gateway/middleware/ratelimit/domain"
	"assistant-gateway/middleware/ratelimit/infra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server with graceful shutdown on SIGINT/SIGTERM.

Requests under the configured scope (default /api/) are counted per client in
fixed windows (RATE_LIMITER_WINDOW_MS, RATE_LIMITER_MAX_REQUESTS_PER_WINDOW).
Invalid limiter settings abort startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			envFile, _ := cmd.Flags().GetString("env-file")

			cfg, err := config.Load(cfgPath, envFile)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	log, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var storeOpts []infra.StoreOption
	if cfg.RateLimiter.SweepInterval != 0 {
		storeOpts = append(storeOpts, infra.WithSweepEvery(max(0, cfg.RateLimiter.SweepInterval)))
	}
	store, err := infra.NewFixedWindowStore(cfg.RateLimiter.Window(), cfg.RateLimiter.MaxRequestsPerWindow, storeOpts...)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	deps := server.Deps{
		Config: cfg,
		Logger: log,
		Store:  store,
	}
	var stats domain.StatsStores

	if cfg.Stats.Memory.Enabled {
		deps.MemoryStats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Stats.Memory.TrackKeys))
		stats = append(stats, deps.MemoryStats)
	}

	if cfg.Metrics.Enabled {
		deps.Registry = observability.NewRegistry()
		prom, err := infra.NewPrometheusStatsStore(deps.Registry, store.Len)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		stats = append(stats, prom)
	}

	if rc := cfg.Stats.Redis; rc.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}

		stats = append(stats, infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(rc.Prefix),
			infra.WithStatsTTL(rc.TTL),
			infra.WithStatsBucket(rc.Bucket),
			infra.WithStatsTrackKeys(rc.TrackKeys),
		))
	}
	if len(stats) > 0 {
		deps.Stats = stats
	}

	if ac := cfg.Assistant; ac.Enabled {
		gen, err := assistant.NewGeminiGenerator(ctx, ac.GoogleAPIKey, ac.ModelID, ac.SystemInstruction)
		if err != nil {
			return err
		}
		deps.Assistant = &assistant.Handler{
			Generator: gen,
			Resume:    assistant.NewResumeCache(ac.ResumeURL, ac.ResumeCacheDuration()),
			Logger:    log.Named("assistant"),
		}
	}

	if cfg.UpstreamURL != "" {
		proxy, err := server.NewUpstreamProxy(cfg.UpstreamURL, log.Named("proxy"))
		if err != nil {
			return err
		}
		deps.Upstream = proxy
	}

	srv := server.New(deps)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	}()

	log.Info("rate limiter",
		zap.Duration("window", store.Window()),
		zap.Int("max_requests", store.MaxRequests()),
		zap.Duration("sweep_every", store.SweepEvery()),
		zap.Strings("scope", cfg.RateLimiter.ScopePrefixes))
	log.Info("stats",
		zap.Bool("memory", cfg.Stats.Memory.Enabled),
		zap.Bool("prometheus", cfg.Metrics.Enabled),
		zap.Bool("redis", cfg.Stats.Redis.Enabled))
	log.Info("concurrency",
		zap.Int("max", cfg.Concurrency.Max),
		zap.Duration("acquire_timeout", cfg.Concurrency.Timeout))

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

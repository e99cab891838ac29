package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"assistant-gateway/middleware/ratelimit"
	"assistant-gateway/middleware/ratelimit/infra"
)

func main() {
	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	// Exemplo: o middleware embutido direto no seu webserver (sem o gateway).
	store, err := infra.NewFixedWindowStore(time.Minute, 5)
	if err != nil {
		log.Fatal("rate limiter", zap.Error(err))
	}
	stats := infra.NewMemoryStatsStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		t := stats.Total()
		log.Info("stats", zap.Int64("allowed", t.Allowed), zap.Int64("denied", t.Denied))
		w.WriteHeader(http.StatusNoContent)
	})

	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50, Logger: log})(h)
	h = ratelimit.Middleware(ratelimit.Options{
		Store:  store,
		Stats:  stats,
		Logger: log,
		Identifier: ratelimit.IdentifierConfig{
			UseRemoteAddr: true,
		},
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}
}

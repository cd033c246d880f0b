// Command utworld runs the admin REST API behind the portfolio site.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/cache"
	"github.com/aTrapDeer/utworld/internal/config"
	"github.com/aTrapDeer/utworld/internal/logging"
	"github.com/aTrapDeer/utworld/internal/media"
	"github.com/aTrapDeer/utworld/internal/server"
	"github.com/aTrapDeer/utworld/internal/store"
)

func init() {
	config.LoadDotenv()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stdout, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := initDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := initCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(server.Options{
		Store:          st,
		Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Media:          media.NewStorage(cfg.UploadsDir, cfg.AssetBaseURL, cfg.MaxUploadMB<<20),
		MediaPrefix:    cfg.MediaPrefix(),
		Cache:          c,
		Revalidator:    server.NewRevalidator(cfg.RevalidationURL, cfg.RevalidationSecret, logger),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func initDB(ctx context.Context, cfg *config.Server) (*store.Store, error) {
	st, err := store.Open(cfg.DatabaseURL, cfg.IsDevelopment() && cfg.LogLevel == "debug")
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	if _, err := st.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initCache(ctx context.Context, cfg *config.Server) (cache.Cache, error) {
	if cfg.UseRedisCache() {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CachePrefix, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		slog.Info("using redis cache", "prefix", cfg.CachePrefix)
		return r, nil
	}
	return cache.NewMemory(cfg.CacheTTL, 2*cfg.CacheTTL), nil
}

// Command site serves the public portfolio data plane and the proxy
// functions for the SoundCloud and YouTube widgets.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aTrapDeer/utworld/internal/apiclient"
	"github.com/aTrapDeer/utworld/internal/config"
	"github.com/aTrapDeer/utworld/internal/feeds"
	"github.com/aTrapDeer/utworld/internal/logging"
	"github.com/aTrapDeer/utworld/internal/provider"
	"github.com/aTrapDeer/utworld/internal/site"
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
	cfg, err := config.LoadSite()
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stdout, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// one transport for the API client and the proxy functions
	httpClient := &http.Client{}
	client := apiclient.New(cfg.APIURL,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(logger),
	)
	content := provider.New(cfg.UseAPI, client, provider.MustLoadFixtures(), logger)
	res := content.Load(ctx)
	logger.Info("content loaded", "status", res.Status, "api_url", cfg.APIURL)

	functions := feeds.New(feeds.Options{
		HTTPClient:           httpClient,
		Timeout:              cfg.Timeout,
		Logger:               logger,
		SoundCloudClientID:   cfg.SoundCloudClientID,
		SoundCloudUserID:     cfg.SoundCloudUserID,
		YouTubeAPIKey:        cfg.YouTubeAPIKey,
		YouTubeChannelHandle: cfg.YouTubeChannelHandle,
		YouTubeChannelID:     cfg.YouTubeChannelID,
		RateLimitRPS:         cfg.RateLimitRPS,
		RateLimitBurst:       cfg.RateLimitBurst,
	})

	srv := site.New(site.Options{
		Source:       content,
		Functions:    functions,
		AssetBaseURL: cfg.AssetBaseURL,
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("site server listening", "addr", httpServer.Addr, "env", cfg.Env, "use_api", cfg.UseAPI)
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

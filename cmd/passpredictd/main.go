// Command passpredictd serves pass predictions over HTTP. A TLE dataset is
// loaded at startup from a file or URL; /api/v1/passes predicts passes for a
// site and satellite, /api/v1/propagate returns a whole-dataset keyframe.
//
// Configuration is environment-driven with a PASSPREDICT_ prefix.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/skytrack/passpredict/internal/api"
	"github.com/skytrack/passpredict/internal/auth"
	"github.com/skytrack/passpredict/internal/metrics"
	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/tle"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("PASSPREDICT_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	source := os.Getenv("PASSPREDICT_TLE_SOURCE")
	if source == "" {
		logger.Error("PASSPREDICT_TLE_SOURCE is required (file path or URL)")
		os.Exit(1)
	}

	store := tle.NewStore()
	loader := tle.Loader{Parser: tle.Parser{Logger: logger, Checksum: tle.ChecksumWarn}}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := loader.Load(ctx, source)
	if err != nil {
		logger.Error("loading TLE data", "source", source, "error", err)
		os.Exit(1)
	}
	store.Set(ds)
	metrics.SetTLEDatasetSize(len(ds.Satellites))
	logger.Info("TLE data loaded", "source", source, "satellites", len(ds.Satellites))

	orch := propagation.NewOrchestrator(store, loadPropConfig(logger), logger)

	srv := api.NewServer(addr, logger, authCfg, store, orch)

	// Background goroutine to update the TLE dataset age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetTLEDatasetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	if enabledStr := os.Getenv("PASSPREDICT_AUTH_ENABLED"); enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("PASSPREDICT_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("PASSPREDICT_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("PASSPREDICT_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadPropConfig(logger *slog.Logger) propagation.Config {
	cfg := propagation.Config{
		Workers: runtime.NumCPU(),
		Step:    5 * time.Second,
		Horizon: 600 * time.Second,
	}

	if v := os.Getenv("PASSPREDICT_PROP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid PASSPREDICT_PROP_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	return cfg
}

// Command soak drives the ownkit primitives through fixed scenarios and a
// seeded random workload, checking reference counts, borrow states and
// block frees against a model after every step.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ownkit/infra/heap"
	"ownkit/infra/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a soak TOML config")
	seed := flag.Int64("seed", 0, "override the configured seed")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			l := logging.New(os.Stderr, "info")
			l.Fatal().Err(err).Msg("config")
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("soak failed")
	}
}

func run(cfg Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := heap.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	if err := runScenarios(); err != nil {
		return err
	}
	logger.Info().Int("count", len(scenarios)).Msg("scenarios passed")

	arena := heap.NewArena[payload](
		heap.WithFreeRing(cfg.FreeRing),
		heap.WithMetrics(metrics),
		heap.WithLogger(logger),
	)

	start := time.Now()
	rep, err := newRunner(cfg, arena, logger).run(cfg.Iterations)
	if err != nil {
		return errors.Wrapf(err, "seed %d", cfg.Seed)
	}

	logger.Info().
		Int("steps", rep.Steps).
		Int("objects", rep.Objects).
		Int("clones", rep.Clones).
		Int("drops", rep.Drops).
		Int("borrows", rep.Borrows).
		Int("denied", rep.Denied).
		Uint64("reused", rep.Heap.Reused).
		Dur("elapsed", time.Since(start)).
		Msg("soak passed")
	return nil
}

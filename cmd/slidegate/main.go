package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"slidegate/internal/config"
	"slidegate/internal/obs"
	"slidegate/internal/ratelimit"
)

func main() {

	cfg, err := config.Load("./config.yaml")

	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.SetupLogger(cfg.Observability.LogLevel)

	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)

	unit, err := cfg.Limit.ParsedUnit()
	if err != nil {
		log.Fatalf("limit config: %v", err)
	}

	gate, err := ratelimit.NewPerUnit(unit, cfg.Limit.Count,
		ratelimit.WithOnAdmit(metrics.ObserveAdmit),
		ratelimit.WithOnCancel(metrics.ObserveCancel),
	)
	if err != nil {
		log.Fatalf("build gate: %v", err)
	}
	logger.Info().Str("unit", cfg.Limit.Unit).Int("count", cfg.Limit.Count).Msg("gate ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// soak workload: paced arrivals funneled through the gate
	pacer := rate.NewLimiter(rate.Limit(cfg.Workload.ArrivalRPS), 1)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workload.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, id, logger, gate, pacer, cfg.Workload.OpDuration())
		}(i)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	mux.Handle(cfg.Observability.PrometheusPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           obs.Logger(logger)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	log.Printf("bye")
}

func runWorker(ctx context.Context, id int, logger zerolog.Logger, gate *ratelimit.Gate, pacer *rate.Limiter, opDur time.Duration) {
	wlog := logger.With().Int("worker", id).Logger()

	for {
		if err := pacer.Wait(ctx); err != nil {
			return
		}

		start := time.Now()
		err := gate.Do(ctx, func(ctx context.Context) error {
			// stand-in for the gated remote call
			select {
			case <-time.After(opDur):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		switch {
		case errors.Is(err, ratelimit.ErrCancelled):
			return
		case err != nil:
			wlog.Error().Err(err).Msg("operation failed")
			if ctx.Err() != nil {
				return
			}
		default:
			wlog.Debug().Dur("took", time.Since(start)).Msg("admitted")
		}
	}
}

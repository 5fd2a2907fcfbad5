package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/optd"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
)

func main() {
	var httpAddr string
	var logLevel string
	var evaluatorSpec string
	var sampleCount int
	var seed int64

	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&evaluatorSpec, "evaluator-spec", "", "path to an analytic evaluator yaml (required)")
	flag.IntVar(&sampleCount, "samples", 0, "DOE sample count (0 uses the default)")
	flag.Int64Var(&seed, "seed", 0, "random seed for sampling and search (0 uses the default)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	factory, err := analyticFactory(evaluatorSpec)
	if err != nil {
		logger.Error("configuring evaluator failed", "error", err)
		os.Exit(1)
	}

	opts := pipeline.DefaultOptions()
	if sampleCount > 0 {
		opts.SampleCount = sampleCount
	}
	if seed != 0 {
		opts.Seed = seed
		opts.Search.Seed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := optd.NewRunStore()
	executor := optd.NewRunExecutor(store, factory, opts)

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           optd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		executor.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// analyticFactory builds a session factory from an analytic evaluator
// spec file. Every run gets a fresh evaluator instance, matching the
// single-session-per-run resource model of a real simulator process.
func analyticFactory(path string) (sim.EvaluatorFactory, error) {
	if path == "" {
		return nil, fmt.Errorf("-evaluator-spec is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading evaluator spec: %w", err)
	}
	spec, err := sim.ParseAnalyticYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing evaluator spec: %w", err)
	}
	return func() (sim.Evaluator, error) {
		return sim.NewAnalyticEvaluator(spec), nil
	}, nil
}

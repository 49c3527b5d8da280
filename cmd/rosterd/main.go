// rosterd is the HTTP server. It serves the user, event, registration and
// waitlist routes over either DynamoDB or an in-memory store for local runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caarlos0/env/v11"

	"github.com/jacentio/roster/api"
	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/store"
)

type config struct {
	Addr      string `env:"ROSTER_ADDR" envDefault:":8080"`
	TableName string `env:"ROSTER_TABLE" envDefault:"roster_events"`
	IndexName string `env:"ROSTER_INDEX" envDefault:"GSI1"`

	// InMemory swaps DynamoDB for the in-memory store. Local dev only:
	// state is lost on exit.
	InMemory bool `env:"ROSTER_IN_MEMORY" envDefault:"false"`

	LogLevel slog.Level `env:"ROSTER_LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("rosterd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	eng := engine.New(s, engine.WithLogger(logger))
	server := api.NewServer(s, eng, logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "table", cfg.TableName, "in_memory", cfg.InMemory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg config) (store.Store, error) {
	if cfg.InMemory {
		return store.NewMemory(), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewDynamo(dynamodb.NewFromConfig(awsCfg), store.Config{
		TableName: cfg.TableName,
		IndexName: cfg.IndexName,
	}), nil
}

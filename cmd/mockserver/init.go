package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	apimock "github.com/kdv2001/apiMock/internal/clients/apimock/http"
	"github.com/kdv2001/apiMock/internal/config"
	sericeHttp "github.com/kdv2001/apiMock/internal/handlers/http"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
	"github.com/kdv2001/apiMock/internal/storage/fixtures/memory"
	"github.com/kdv2001/apiMock/internal/storage/fixtures/postgres"
	"github.com/kdv2001/apiMock/internal/usecases/fixtures"
)

const shutdownTimeout = 5 * time.Second

func initService(ctx context.Context, parsedFlags flags) error {
	cfg, err := config.Load(parsedFlags.configPath)
	if err != nil {
		return err
	}
	parsedFlags.apply(cfg)

	zapLog, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		_ = zapLog.Sync()
	}()
	ctx = logger.ToContext(ctx, zapLog)

	fixturesUC, closeStorage, err := initUseCases(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	httpHandlers := sericeHttp.NewHandlers(fixturesUC)
	routerCfg := sericeHttp.RouterConfig{
		MockRoot:      cfg.APIMock.MockRoot,
		APIPathPrefix: cfg.APIMock.APIPathPrefix,
	}
	if cfg.Upstream != "" {
		upstream, err := url.Parse(cfg.Upstream)
		if err != nil {
			return fmt.Errorf("failed to parse upstream %s: %w", cfg.Upstream, err)
		}

		transport := apimock.NewTransport(
			sericeHttp.NewLocalFixtures(
				cfg.APIMock.MockRoot,
				sericeHttp.FixtureHandler(httpHandlers, cfg.APIMock.MockRoot),
				nil,
			),
			apimock.WithModuleConfig(cfg.APIMock),
			apimock.WithLocation(apimock.PageLocation(nil)),
		)
		routerCfg.Proxy = sericeHttp.NewProxy(upstream, transport)
		logger.Infof(ctx, "proxying %s* to %s", cfg.APIMock.APIPathPrefix, upstream.String())
	}

	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           sericeHttp.NewRouter(httpHandlers, routerCfg, zapLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "serving fixtures on %s", cfg.Address)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Infof(ctx, "shutting down")

	return server.Shutdown(shutdownCtx)
}

// initUseCases выбирает хранилище фикстур: postgres, если задан DSN, иначе память.
func initUseCases(ctx context.Context, cfg *config.Config) (*fixtures.UseCases, func(), error) {
	if cfg.DatabaseDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		storage, err := postgres.NewStorage(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to init postgres storage: %w", err)
		}

		return fixtures.NewUseCases(storage), storage.Close, nil
	}

	storage := memory.NewStorage()
	if cfg.FixturesDir != "" {
		if err := storage.LoadFS(os.DirFS(cfg.FixturesDir)); err != nil {
			return nil, nil, fmt.Errorf("failed to load fixtures from %s: %w", cfg.FixturesDir, err)
		}
	}

	return fixtures.NewUseCases(storage), func() {}, nil
}

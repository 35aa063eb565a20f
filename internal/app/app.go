// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app assembles the sync server from a merged configuration: record
// store, services, transports and background workers.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/handler"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/server"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/internal/workers"
)

// App owns every long-lived component of a running sync server.
type App struct {
	db       *store.DB
	services *service.Services
	server   server.Server
	workers  *workers.Workers
	logger   *logger.Logger

	closeOnce sync.Once
}

// New connects to the configured database, applies pending migrations and
// builds the services and transports on top of it.
func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	db, err := store.NewDB(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageSetup, err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageSetup, err)
	}
	log.Info().Str("driver", db.Dialect()).Msg("database migrated")

	services, err := service.NewServices(store.NewStorages(db, log), *cfg, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrServicesSetup, err)
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, cfg.App.HashKey, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrTransportSetup, err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrTransportSetup, err)
	}

	return &App{
		db:       db,
		services: services,
		server:   srv,
		workers:  workers.NewWorkers(cfg.Workers, services, log),
		logger:   log,
	}, nil
}

// Services exposes the assembled services, e.g. for operator tooling.
func (a *App) Services() *service.Services {
	return a.services
}

// Run serves until ctx is cancelled or a transport fails. Background workers
// are stopped and awaited before Run returns.
func (a *App) Run(ctx context.Context) error {
	workersCtx, stopWorkers := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Go(func() {
		a.workers.Run(workersCtx)
	})

	err := a.server.Run(ctx)

	stopWorkers()
	wg.Wait()
	a.logger.Info().Msg("workers stopped")

	return err
}

// Close releases the database connection pool. It is safe to call more
// than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		err = a.db.Close()
	})
	return err
}

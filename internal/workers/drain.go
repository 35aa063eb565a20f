// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/rs/zerolog"
)

// DrainWorker periodically processes batches that were queued but never
// processed by their client.
type DrainWorker struct {
	syncService service.SyncService

	interval  time.Duration
	batchSize int

	logger *logger.Logger
}

func NewDrainWorker(syncService service.SyncService, interval time.Duration, batchSize int, logger *logger.Logger) *DrainWorker {
	if batchSize < 1 {
		batchSize = 1
	}

	l := logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("worker", "drain")
	})

	return &DrainWorker{
		syncService: syncService,
		interval:    interval,
		batchSize:   batchSize,
		logger:      l,
	}
}

func (w *DrainWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Int("batch_size", w.batchSize).Msg("drain worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("drain worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain keeps taking full pages of pending batches until a page comes back
// short.
func (w *DrainWorker) drain(ctx context.Context) {
	ctx = w.logger.WithContext(ctx)

	total := 0
	for ctx.Err() == nil {
		processed, err := w.syncService.ProcessPending(ctx, w.batchSize)
		total += processed
		if err != nil {
			w.logger.Err(err).Str("func", "*DrainWorker.drain").Msg("failed to process pending batches")
			break
		}
		if processed < w.batchSize {
			break
		}
	}

	if total > 0 {
		w.logger.Info().Int("processed", total).Msg("pending batches drained")
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers builds the workers enabled by cfg. The pending-batch drain
// worker runs only when a drain interval is configured.
func NewWorkers(cfg config.Workers, services *service.Services, logger *logger.Logger) *Workers {
	w := &Workers{}

	if cfg.DrainInterval > 0 {
		w.workers = append(w.workers, NewDrainWorker(services.SyncService, cfg.DrainInterval, cfg.DrainBatchSize, logger))
	}

	logger.Info().Int("workers", len(w.workers)).Msg("workers created")
	return w
}

// Run starts every worker and blocks until all of them return.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Go(func() {
			worker.Run(ctx)
		})
	}
	wg.Wait()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/internal/validators"
)

type Services struct {
	SyncService     SyncService
	ConflictService ConflictService
	StatusService   StatusService
	AppInfoService  AppInfoService
	AuthService     AuthService
}

// NewServices wires the engine services over storage. Every service is
// wrapped with request validation.
func NewServices(storage store.Store, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, err
	}

	validator := validators.NewSyncValidator(cfg.Sync.MaxBatchItems, cfg.Sync.MaxPayloadBytes)

	return &Services{
		SyncService: NewSyncValidationService(validator).
			Wrap(NewSyncService(storage, cfg.Sync, logger)),
		ConflictService: NewConflictValidationService(validator).
			Wrap(NewConflictService(storage, cfg.Sync, logger)),
		StatusService: NewStatusValidationService().
			Wrap(NewStatusService(storage, cfg.Sync, logger)),
		AppInfoService: appInfoService,
		AuthService:    NewAuthService(cfg.App, logger),
	}, nil
}

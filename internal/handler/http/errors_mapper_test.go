// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/internal/validators"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: %w", service.ErrValidation, validators.ErrEmptyClientID), http.StatusBadRequest},
		{"bad cursor", fmt.Errorf("%w: parse error", ErrInvalidCursor), http.StatusBadRequest},
		{"version conflict", store.ErrVersionConflict, http.StatusConflict},
		{"batch not found", store.ErrBatchNotFound, http.StatusNotFound},
		{"conflict not found", store.ErrConflictNotFound, http.StatusNotFound},
		{"in progress", service.ErrBatchInProgress, http.StatusConflict},
		{"already failed", service.ErrBatchAlreadyFailed, http.StatusConflict},
		{"already resolved", service.ErrConflictAlreadyResolved, http.StatusConflict},
		{"storage", fmt.Errorf("%w: %w", service.ErrStorage, store.ErrExecutingQuery), http.StatusServiceUnavailable},
		{"expired token", service.ErrTokenIsExpired, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

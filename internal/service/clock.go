// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/MKhiriev/go-sync-engine/models"
)

// serverNow is the authoritative clock of the engine. Timestamps are kept in
// UTC at microsecond precision so they round-trip through every backend.
func serverNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type idGenerator interface {
	Generate() string
}

func contentHash(data models.Payload) string {
	if data.IsEmpty() {
		return ""
	}
	return utils.ContentHash(data)
}

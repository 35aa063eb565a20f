// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// AppInfo describes the running server and the limits a client must respect
// when it assembles batches offline.
type AppInfo struct {
	Version         string `json:"version"`
	StorageDriver   string `json:"storage_driver"`
	MaxBatchItems   int    `json:"max_batch_items"`
	MaxPayloadBytes int    `json:"max_payload_bytes"`
}

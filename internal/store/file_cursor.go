// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-sync-engine/models"
)

// ClientStateFileStorage keeps a device's [models.ClientState] in a local
// JSON file.
type ClientStateFileStorage interface {
	// LoadClientState returns the stored state. A missing file yields the
	// zero state.
	LoadClientState(ctx context.Context) (models.ClientState, error)

	// SaveClientState replaces the stored state atomically.
	SaveClientState(ctx context.Context, state models.ClientState) error
}

type clientStateFileStorage struct {
	path string
}

// NewClientStateFileStorage constructs a [ClientStateFileStorage] backed by
// the file at path. The file and its directory are created on first save.
func NewClientStateFileStorage(path string) ClientStateFileStorage {
	return &clientStateFileStorage{path: path}
}

func (c *clientStateFileStorage) LoadClientState(ctx context.Context) (models.ClientState, error) {
	var state models.ClientState
	if err := ctx.Err(); err != nil {
		return state, err
	}

	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("%w: %w", ErrReadingStateFile, err)
	}

	if err = json.Unmarshal(raw, &state); err != nil {
		return models.ClientState{}, fmt.Errorf("%w: %w", ErrDecodingStateFile, err)
	}
	return state, nil
}

// SaveClientState writes to a temporary file in the same directory and
// renames it over the old one, so a crash never leaves a torn cursor.
func (c *clientStateFileStorage) SaveClientState(ctx context.Context, state models.ClientState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingStateFile, err)
	}

	dir := filepath.Dir(c.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %w", ErrWritingStateFile, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingStateFile, err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(raw); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingStateFile, err)
	}

	if err = os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("%w: %w", ErrWritingStateFile, err)
	}
	return nil
}

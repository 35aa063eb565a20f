// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/migrations"
)

// Storages is the SQL implementation of [Store]. A Storages value is either
// bound to the connection pool or to one open transaction.
type Storages struct {
	db     *DB
	q      querier
	tx     *sql.Tx
	logger *logger.Logger
}

// NewStorages binds the repositories to db.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		db:     db,
		q:      db.DB,
		logger: log,
	}
}

func (s *Storages) Records() RecordRepository {
	return &recordRepository{q: s.q, dialect: s.db.dialect}
}

func (s *Storages) Batches() BatchRepository {
	return &batchRepository{q: s.q, dialect: s.db.dialect}
}

func (s *Storages) Conflicts() ConflictRepository {
	return &conflictRepository{q: s.q, dialect: s.db.dialect}
}

func (s *Storages) Devices() DeviceRepository {
	return &deviceRepository{q: s.q, dialect: s.db.dialect}
}

// Classify implements [Store].
func (s *Storages) Classify(err error) ErrorClassification {
	return s.db.Classify(err)
}

// WriteHorizon implements [Store]. SQLite runs on one connection, so only
// Postgres can have other transactions open.
func (s *Storages) WriteHorizon(ctx context.Context) (*time.Time, error) {
	if s.db.dialect != migrations.DialectPostgres {
		return nil, nil
	}

	log := logger.FromContext(ctx)

	query, args, err := buildWriteHorizonQuery(s.db.dialect)
	if err != nil {
		log.Err(err).Str("func", "Storages.WriteHorizon").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var horizon sql.NullTime
	if err = s.q.QueryRowContext(ctx, query, args...).Scan(&horizon); err != nil {
		log.Err(err).Str("func", "Storages.WriteHorizon").Msg("failed to read oldest open transaction")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if !horizon.Valid {
		return nil, nil
	}

	start := horizon.Time.UTC()
	return &start, nil
}

// WithinTx implements [Store].
func (s *Storages) WithinTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "Storages.WithinTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Err(rbErr).Str("func", "Storages.WithinTx").Msg("failed to rollback transaction")
			}
		}
	}()

	err = fn(&Storages{db: s.db, q: tx, tx: tx, logger: s.logger})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "Storages.WithinTx").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

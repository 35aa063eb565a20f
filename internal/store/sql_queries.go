// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
	sq "github.com/Masterminds/squirrel"
)

const (
	recordsTable   = "sync_records"
	changesTable   = "sync_changes"
	batchesTable   = "sync_batches"
	conflictsTable = "sync_conflicts"
	devicesTable   = "sync_devices"
)

var recordColumns = []string{
	"user_id",
	"record_id",
	"version",
	"deleted",
	"data",
	"hash",
	"updated_at",
	"updated_by_client_id",
}

var batchColumns = []string{
	"id",
	"user_id",
	"client_id",
	"client_timestamp",
	"items",
	"status",
	"result",
	"error",
	"created_at",
	"updated_at",
}

var conflictColumns = []string{
	"id",
	"user_id",
	"record_id",
	"batch_id",
	"client_id",
	"client_version",
	"server_version",
	"client_data",
	"client_deleted",
	"server_data",
	"server_deleted",
	"same_content",
	"status",
	"resolution",
	"resolved_data",
	"created_at",
	"resolved_at",
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// buildGetRecordQuery selects one record by its composite key.
func buildGetRecordQuery(dialect string, userID int64, recordID string) (string, []any, error) {
	return statementBuilder(dialect).
		Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"record_id": recordID}).
		ToSql()
}

// buildInsertRecordQuery creates version 1 of a record. It returns no row
// when the key is already taken.
func buildInsertRecordQuery(dialect string, write models.RecordWrite) (string, []any, error) {
	return statementBuilder(dialect).
		Insert(recordsTable).
		Columns(recordColumns...).
		Values(
			write.UserID,
			write.RecordID,
			1,
			write.Deleted,
			write.Data,
			write.Hash,
			write.At,
			write.ClientID,
		).
		Suffix("ON CONFLICT (user_id, record_id) DO NOTHING " + returning(recordColumns)).
		ToSql()
}

// buildUpdateRecordQuery bumps the version of a record if and only if it is
// still at write.ExpectedVersion. It returns no row otherwise.
func buildUpdateRecordQuery(dialect string, write models.RecordWrite) (string, []any, error) {
	return statementBuilder(dialect).
		Update(recordsTable).
		Set("version", sq.Expr("version + 1")).
		Set("deleted", write.Deleted).
		Set("data", write.Data).
		Set("hash", write.Hash).
		Set("updated_at", write.At).
		Set("updated_by_client_id", write.ClientID).
		Where(sq.Eq{"user_id": write.UserID}).
		Where(sq.Eq{"record_id": write.RecordID}).
		Where(sq.Eq{"version": write.ExpectedVersion}).
		Suffix(returning(recordColumns)).
		ToSql()
}

// buildGetChangedRecordsQuery selects the current state of every record with
// a change log entry newer than since. A nil since selects all records.
func buildGetChangedRecordsQuery(dialect string, userID int64, since *time.Time) (string, []any, error) {
	query := statementBuilder(dialect).
		Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"user_id": userID})

	if since != nil {
		query = query.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM "+changesTable+" c"+
				" WHERE c.user_id = "+recordsTable+".user_id"+
				" AND c.record_id = "+recordsTable+".record_id"+
				" AND c.changed_at > ?)",
			*since,
		))
	}

	return query.OrderBy("updated_at", "record_id").ToSql()
}

// buildWriteHorizonQuery reads the start of the oldest open transaction in
// the current database. The calling statement counts too, so the result is
// never later than the database clock at the time of the call.
func buildWriteHorizonQuery(dialect string) (string, []any, error) {
	return statementBuilder(dialect).
		Select("min(xact_start)").
		From("pg_stat_activity").
		Where("datname = current_database()").
		Where(sq.NotEq{"xact_start": nil}).
		ToSql()
}

func buildInsertBatchQuery(dialect string, batch models.SyncBatch, items []byte) (string, []any, error) {
	return statementBuilder(dialect).
		Insert(batchesTable).
		Columns("id", "user_id", "client_id", "client_timestamp", "items", "status", "created_at", "updated_at").
		Values(
			batch.ID,
			batch.UserID,
			batch.ClientID,
			batch.Timestamp,
			items,
			string(batch.Status),
			batch.CreatedAt,
			batch.UpdatedAt,
		).
		ToSql()
}

func buildGetBatchQuery(dialect string, userID int64, batchID string) (string, []any, error) {
	return statementBuilder(dialect).
		Select(batchColumns...).
		From(batchesTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"id": batchID}).
		ToSql()
}

// buildTransitionBatchQuery moves a batch from one status to another. The
// status guard in the WHERE clause is the compare-and-set.
func buildTransitionBatchQuery(dialect string, transition models.BatchTransition, result []byte) (string, []any, error) {
	query := statementBuilder(dialect).
		Update(batchesTable).
		Set("status", string(transition.To)).
		Set("updated_at", transition.At)

	if result != nil {
		query = query.Set("result", result)
	}
	if transition.Error != "" {
		query = query.Set("error", transition.Error)
	}

	return query.
		Where(sq.Eq{"user_id": transition.UserID}).
		Where(sq.Eq{"id": transition.BatchID}).
		Where(sq.Eq{"status": string(transition.From)}).
		ToSql()
}

func buildListPendingBatchesQuery(dialect string, limit uint64) (string, []any, error) {
	return statementBuilder(dialect).
		Select(batchColumns...).
		From(batchesTable).
		Where(sq.Eq{"status": string(models.BatchStatusPending)}).
		OrderBy("created_at", "id").
		Limit(limit).
		ToSql()
}

func buildCountBatchesQuery(dialect string, userID int64, status models.BatchStatus) (string, []any, error) {
	return statementBuilder(dialect).
		Select("COUNT(*)").
		From(batchesTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": string(status)}).
		ToSql()
}

func buildInsertConflictQuery(dialect string, conflict models.Conflict) (string, []any, error) {
	return statementBuilder(dialect).
		Insert(conflictsTable).
		Columns(
			"id", "user_id", "record_id", "batch_id", "client_id",
			"client_version", "server_version",
			"client_data", "client_deleted", "server_data", "server_deleted",
			"same_content", "status", "created_at",
		).
		Values(
			conflict.ID,
			conflict.UserID,
			conflict.RecordID,
			conflict.BatchID,
			conflict.ClientID,
			conflict.ClientVersion,
			conflict.ServerVersion,
			conflict.ClientData,
			conflict.ClientDeleted,
			conflict.ServerData,
			conflict.ServerDeleted,
			conflict.SameContent,
			string(models.ConflictStatusOpen),
			conflict.CreatedAt,
		).
		ToSql()
}

func buildGetConflictQuery(dialect string, userID int64, conflictID string) (string, []any, error) {
	return statementBuilder(dialect).
		Select(conflictColumns...).
		From(conflictsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"id": conflictID}).
		ToSql()
}

func buildListOpenConflictsQuery(dialect string, userID int64) (string, []any, error) {
	return statementBuilder(dialect).
		Select(conflictColumns...).
		From(conflictsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": string(models.ConflictStatusOpen)}).
		OrderBy("created_at", "id").
		ToSql()
}

// buildResolveConflictQuery closes a conflict that is still open.
func buildResolveConflictQuery(dialect string, resolution models.ConflictResolution) (string, []any, error) {
	return statementBuilder(dialect).
		Update(conflictsTable).
		Set("status", string(models.ConflictStatusResolved)).
		Set("resolution", string(resolution.Resolution)).
		Set("resolved_data", resolution.ResolvedData).
		Set("resolved_at", resolution.At).
		Where(sq.Eq{"user_id": resolution.UserID}).
		Where(sq.Eq{"id": resolution.ConflictID}).
		Where(sq.Eq{"status": string(models.ConflictStatusOpen)}).
		ToSql()
}

func buildCountOpenConflictsQuery(dialect string, userID int64) (string, []any, error) {
	return statementBuilder(dialect).
		Select("COUNT(*)").
		From(conflictsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"status": string(models.ConflictStatusOpen)}).
		ToSql()
}

// buildUpsertDeviceCursorQuery records the last pull of a device.
func buildUpsertDeviceCursorQuery(dialect string, cursor models.DeviceCursor) (string, []any, error) {
	return statementBuilder(dialect).
		Insert(devicesTable).
		Columns("user_id", "device_id", "last_synced_at").
		Values(cursor.UserID, cursor.DeviceID, cursor.LastSyncedAt).
		Suffix("ON CONFLICT (user_id, device_id) DO UPDATE SET last_synced_at = excluded.last_synced_at").
		ToSql()
}

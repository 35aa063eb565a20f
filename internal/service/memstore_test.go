// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/MKhiriev/go-sync-engine/models"
)

// errTransient is classified as retryable by memStore.
var errTransient = errors.New("transient storage failure")

type recordKey struct {
	userID   int64
	recordID string
}

type memChange struct {
	key recordKey
	at  time.Time
}

type memState struct {
	records   map[recordKey]models.ServerRecord
	changes   []memChange
	batches   map[string]models.SyncBatch
	conflicts map[string]models.Conflict
	devices   map[string]time.Time
}

func (s *memState) clone() memState {
	return memState{
		records:   maps.Clone(s.records),
		changes:   slices.Clone(s.changes),
		batches:   maps.Clone(s.batches),
		conflicts: maps.Clone(s.conflicts),
		devices:   maps.Clone(s.devices),
	}
}

// memHooks injects failures into memStore. Hooks run with the store lock
// held and must not call back into the store.
type memHooks struct {
	mu       sync.Mutex
	putCalls int
	onPut    func(call int, write models.RecordWrite) error

	// horizon is the start of a transaction reported as still open.
	horizon *time.Time
}

func (h *memHooks) beforePut(write models.RecordWrite) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.putCalls++
	if h.onPut == nil {
		return nil
	}
	return h.onPut(h.putCalls, write)
}

func (h *memHooks) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.putCalls
}

// memStore is an in-memory store.Store with the same compare-and-set and
// transaction semantics as the SQL implementation. Transactions are
// serialized and roll back by restoring a snapshot.
type memStore struct {
	mu    *sync.Mutex
	state *memState
	hooks *memHooks
	inTx  bool
}

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		state: &memState{
			records:   map[recordKey]models.ServerRecord{},
			batches:   map[string]models.SyncBatch{},
			conflicts: map[string]models.Conflict{},
			devices:   map[string]time.Time{},
		},
		hooks: &memHooks{},
	}
}

func (m *memStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) Records() store.RecordRepository     { return m }
func (m *memStore) Batches() store.BatchRepository      { return m }
func (m *memStore) Conflicts() store.ConflictRepository { return m }
func (m *memStore) Devices() store.DeviceRepository     { return m }

func (m *memStore) Classify(err error) store.ErrorClassification {
	if errors.Is(err, errTransient) {
		return store.Retryable
	}
	return store.NonRetryable
}

func (m *memStore) WriteHorizon(context.Context) (*time.Time, error) {
	m.hooks.mu.Lock()
	defer m.hooks.mu.Unlock()
	return m.hooks.horizon, nil
}

// setWriteHorizon reports a transaction started at start as open until it
// is called again with nil.
func (m *memStore) setWriteHorizon(start *time.Time) {
	m.hooks.mu.Lock()
	defer m.hooks.mu.Unlock()
	m.hooks.horizon = start
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	tx := &memStore{mu: m.mu, state: m.state, hooks: m.hooks, inTx: true}
	if err := fn(tx); err != nil {
		*m.state = snapshot
		return err
	}
	return nil
}

func (m *memStore) GetRecord(ctx context.Context, userID int64, recordID string) (models.ServerRecord, error) {
	defer m.lock()()
	record, ok := m.state.records[recordKey{userID, recordID}]
	if !ok {
		return models.ServerRecord{}, store.ErrRecordNotFound
	}
	return record, nil
}

func (m *memStore) PutRecord(ctx context.Context, write models.RecordWrite) (models.ServerRecord, error) {
	defer m.lock()()

	if err := m.hooks.beforePut(write); err != nil {
		return models.ServerRecord{}, err
	}

	key := recordKey{write.UserID, write.RecordID}
	current, exists := m.state.records[key]
	switch {
	case write.ExpectedVersion == 0 && exists:
		return models.ServerRecord{}, store.ErrVersionConflict
	case write.ExpectedVersion != 0 && (!exists || current.Version != write.ExpectedVersion):
		return models.ServerRecord{}, store.ErrVersionConflict
	}

	record := models.ServerRecord{
		ID:                write.RecordID,
		UserID:            write.UserID,
		Version:           write.ExpectedVersion + 1,
		Deleted:           write.Deleted,
		Data:              write.Data.Clone(),
		Hash:              write.Hash,
		UpdatedAt:         write.At,
		UpdatedByClientID: write.ClientID,
	}
	m.state.records[key] = record
	m.state.changes = append(m.state.changes, memChange{key: key, at: write.At})

	return record, nil
}

func (m *memStore) GetChangedRecords(ctx context.Context, userID int64, since *time.Time) ([]models.ServerRecord, error) {
	defer m.lock()()

	changed := map[recordKey]bool{}
	for _, change := range m.state.changes {
		if change.key.userID == userID && (since == nil || change.at.After(*since)) {
			changed[change.key] = true
		}
	}

	records := make([]models.ServerRecord, 0, len(changed))
	for key := range changed {
		records = append(records, m.state.records[key])
	}
	slices.SortFunc(records, func(a, b models.ServerRecord) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
	return records, nil
}

func (m *memStore) CreateBatch(ctx context.Context, batch models.SyncBatch) error {
	defer m.lock()()
	if _, ok := m.state.batches[batch.ID]; ok {
		return fmt.Errorf("duplicate batch %s", batch.ID)
	}
	m.state.batches[batch.ID] = batch
	return nil
}

func (m *memStore) GetBatch(ctx context.Context, userID int64, batchID string) (models.SyncBatch, error) {
	defer m.lock()()
	batch, ok := m.state.batches[batchID]
	if !ok || batch.UserID != userID {
		return models.SyncBatch{}, store.ErrBatchNotFound
	}
	return batch, nil
}

func (m *memStore) TransitionBatch(ctx context.Context, transition models.BatchTransition) error {
	if !transition.From.CanTransitionTo(transition.To) {
		return store.ErrInvalidBatchTransition
	}

	defer m.lock()()
	batch, ok := m.state.batches[transition.BatchID]
	if !ok || batch.UserID != transition.UserID || batch.Status != transition.From {
		return store.ErrBatchStatusConflict
	}
	batch.Status = transition.To
	batch.UpdatedAt = transition.At
	if transition.Result != nil {
		result := *transition.Result
		result.Outcomes = slices.Clone(result.Outcomes)
		batch.Result = &result
	}
	if transition.Error != "" {
		batch.Error = transition.Error
	}
	m.state.batches[batch.ID] = batch
	return nil
}

func (m *memStore) ListPendingBatches(ctx context.Context, limit uint64) ([]models.SyncBatch, error) {
	defer m.lock()()
	var pending []models.SyncBatch
	for _, batch := range m.state.batches {
		if batch.Status == models.BatchStatusPending {
			pending = append(pending, batch)
		}
	}
	slices.SortFunc(pending, func(a, b models.SyncBatch) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
	if uint64(len(pending)) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *memStore) CountBatches(ctx context.Context, userID int64, status models.BatchStatus) (int, error) {
	defer m.lock()()
	count := 0
	for _, batch := range m.state.batches {
		if batch.UserID == userID && batch.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CreateConflict(ctx context.Context, conflict models.Conflict) error {
	defer m.lock()()
	if _, ok := m.state.batches[conflict.BatchID]; !ok {
		return fmt.Errorf("conflict references unknown batch %s", conflict.BatchID)
	}
	m.state.conflicts[conflict.ID] = conflict
	return nil
}

func (m *memStore) GetConflict(ctx context.Context, userID int64, conflictID string) (models.Conflict, error) {
	defer m.lock()()
	conflict, ok := m.state.conflicts[conflictID]
	if !ok || conflict.UserID != userID {
		return models.Conflict{}, store.ErrConflictNotFound
	}
	return conflict, nil
}

func (m *memStore) ListOpenConflicts(ctx context.Context, userID int64) ([]models.Conflict, error) {
	defer m.lock()()
	open := []models.Conflict{}
	for _, conflict := range m.state.conflicts {
		if conflict.UserID == userID && conflict.Status == models.ConflictStatusOpen {
			open = append(open, conflict)
		}
	}
	slices.SortFunc(open, func(a, b models.Conflict) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
	return open, nil
}

func (m *memStore) MarkResolved(ctx context.Context, resolution models.ConflictResolution) error {
	defer m.lock()()
	conflict, ok := m.state.conflicts[resolution.ConflictID]
	if !ok || conflict.UserID != resolution.UserID || conflict.Status != models.ConflictStatusOpen {
		return store.ErrConflictNotOpen
	}
	r := resolution.Resolution
	at := resolution.At
	conflict.Status = models.ConflictStatusResolved
	conflict.Resolution = &r
	conflict.ResolvedData = resolution.ResolvedData
	conflict.ResolvedAt = &at
	m.state.conflicts[conflict.ID] = conflict
	return nil
}

func (m *memStore) CountOpenConflicts(ctx context.Context, userID int64) (int, error) {
	open, err := m.ListOpenConflicts(ctx, userID)
	return len(open), err
}

func (m *memStore) UpsertCursor(ctx context.Context, cursor models.DeviceCursor) error {
	defer m.lock()()
	m.state.devices[fmt.Sprintf("%d/%s", cursor.UserID, cursor.DeviceID)] = cursor.LastSyncedAt
	return nil
}

func (m *memStore) record(userID int64, recordID string) (models.ServerRecord, bool) {
	defer m.lock()()
	record, ok := m.state.records[recordKey{userID, recordID}]
	return record, ok
}

func (m *memStore) recordCount() int {
	defer m.lock()()
	return len(m.state.records)
}

func (m *memStore) conflictCount() int {
	defer m.lock()()
	return len(m.state.conflicts)
}

func (m *memStore) deviceCursor(userID int64, deviceID string) (time.Time, bool) {
	defer m.lock()()
	at, ok := m.state.devices[fmt.Sprintf("%d/%s", userID, deviceID)]
	return at, ok
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// fakeClock advances by one millisecond on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// sequentialIDs issues ids in creation order.
type sequentialIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%04d", g.prefix, g.next)
}

// testEngine wires the unwrapped services over one memStore.
type testEngine struct {
	store    *memStore
	clock    *fakeClock
	sync     *syncService
	conflict *conflictService
	status   *statusService
}

func testSyncConfig() config.Sync {
	return config.Sync{
		MaxBatchItems:       100,
		MaxPayloadBytes:     1024,
		TxMaxRetries:        2,
		TxRetryBackoff:      time.Millisecond,
		ResolveMaxAttempts:  3,
		ResolveRetryBackoff: time.Millisecond,
	}
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	st := newMemStore()
	clock := newFakeClock()

	syncSvc := NewSyncService(st, testSyncConfig(), logger.Nop()).(*syncService)
	syncSvc.now = clock.Now
	syncSvc.ids = &sequentialIDs{prefix: "id"}

	conflictSvc := NewConflictService(st, testSyncConfig(), logger.Nop()).(*conflictService)
	conflictSvc.now = clock.Now

	statusSvc := NewStatusService(st, testSyncConfig(), logger.Nop()).(*statusService)
	statusSvc.now = clock.Now

	return &testEngine{
		store:    st,
		clock:    clock,
		sync:     syncSvc,
		conflict: conflictSvc,
		status:   statusSvc,
	}
}

// submit runs a one-client batch through intake and processing.
func (e *testEngine) submit(t *testing.T, userID int64, clientID string, items ...models.SyncItem) models.ProcessResult {
	t.Helper()
	result, err := e.sync.Sync(context.Background(), userID, models.NewBatchRequest{ClientID: clientID, Items: items})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	return result
}

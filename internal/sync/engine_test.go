package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/settings"
)

type mockLocal struct {
	mu          stdsync.Mutex
	days        map[uuid.UUID]domain.TradeDay
	dirty       map[uuid.UUID]bool
	markCleaned [][]uuid.UUID
	remoteSaves []domain.TradeDay
}

func newMockLocal() *mockLocal {
	return &mockLocal{
		days:  make(map[uuid.UUID]domain.TradeDay),
		dirty: make(map[uuid.UUID]bool),
	}
}

func (m *mockLocal) put(day domain.TradeDay, isDirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.ID] = day
	m.dirty[day.ID] = isDirty
}

func (m *mockLocal) FetchDirty(context.Context) ([]domain.TradeDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TradeDay
	for id, d := range m.dirty {
		if d {
			out = append(out, m.days[id])
		}
	}
	return out, nil
}

func (m *mockLocal) MarkClean(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCleaned = append(m.markCleaned, ids)
	for _, id := range ids {
		m.dirty[id] = false
	}
	return nil
}

func (m *mockLocal) FetchByID(_ context.Context, id uuid.UUID) (*domain.TradeDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day, ok := m.days[id]
	if !ok {
		return nil, nil
	}
	return &day, nil
}

func (m *mockLocal) UpsertFromRemote(_ context.Context, day domain.TradeDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.ID] = day
	m.dirty[day.ID] = false
	m.remoteSaves = append(m.remoteSaves, day)
	return nil
}

type mockRemote struct {
	mu         stdsync.Mutex
	upserts    [][]domain.TradeDay
	upsertErr  error
	fetchSince []time.Time
	fetchDays  []domain.TradeDay
	fetchErr   error
}

func (m *mockRemote) Upsert(_ context.Context, days []domain.TradeDay, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, days)
	return nil
}

func (m *mockRemote) FetchUpdated(_ context.Context, since time.Time, _ string) ([]domain.TradeDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchSince = append(m.fetchSince, since)
	return m.fetchDays, m.fetchErr
}

type mockKV struct {
	mu     stdsync.Mutex
	values map[string]int64
}

func newMockKV() *mockKV { return &mockKV{values: make(map[string]int64)} }

func (m *mockKV) GetInt64(key string) (*int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *mockKV) SetInt64(key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type mockAuth struct {
	accountID string
}

func (m mockAuth) CurrentAccountID() (string, bool) {
	return m.accountID, m.accountID != ""
}

func newDay(t *testing.T, date string, updatedAt time.Time) domain.TradeDay {
	t.Helper()
	d, err := domain.ParseLocalDate(date)
	require.NoError(t, err)
	day := domain.NewTradeDay(d, nil)
	day.UpdatedAt = updatedAt
	return day
}

func newEngine(local *mockLocal, remote RemoteStore, kv *mockKV, auth Authenticator) *Engine {
	return NewEngine(local, remote, kv, auth, zerolog.Nop())
}

func TestSync_RefusedWithoutAccount(t *testing.T) {
	local := newMockLocal()
	remote := &mockRemote{}
	eng := newEngine(local, remote, newMockKV(), mockAuth{})

	err := eng.Sync(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// No I/O happened.
	assert.Empty(t, remote.upserts)
	assert.Empty(t, remote.fetchSince)
}

func TestSync_PushThenPull(t *testing.T) {
	local := newMockLocal()
	day := newDay(t, "2025-01-06", time.Now().UTC())
	local.put(day, true)

	remote := &mockRemote{}
	kv := newMockKV()
	eng := newEngine(local, remote, kv, mockAuth{accountID: "acct-1"})

	require.NoError(t, eng.Sync(context.Background()))

	require.Len(t, remote.upserts, 1)
	require.Len(t, remote.upserts[0], 1)
	assert.Equal(t, day.ID, remote.upserts[0][0].ID)

	require.Len(t, local.markCleaned, 1)
	assert.Equal(t, []uuid.UUID{day.ID}, local.markCleaned[0])

	// Pull ran after push and advanced the watermark.
	require.Len(t, remote.fetchSince, 1)
	assert.Equal(t, time.UnixMilli(0), remote.fetchSince[0])
	stored, err := kv.GetInt64(settings.KeyLastPullAt)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Greater(t, *stored, int64(0))
}

func TestSync_PushFailureAbortsCycleAndKeepsDirty(t *testing.T) {
	local := newMockLocal()
	local.put(newDay(t, "2025-01-06", time.Now().UTC()), true)

	remote := &mockRemote{upsertErr: errors.New("remote unavailable")}
	eng := newEngine(local, remote, newMockKV(), mockAuth{accountID: "acct-1"})

	err := eng.Sync(context.Background())
	require.Error(t, err)

	// Dirty flags untouched, pull never ran.
	assert.Empty(t, local.markCleaned)
	assert.Empty(t, remote.fetchSince)

	dirty, err := local.FetchDirty(context.Background())
	require.NoError(t, err)
	assert.Len(t, dirty, 1)
}

func TestSync_NothingDirtySkipsRemotePush(t *testing.T) {
	local := newMockLocal()
	remote := &mockRemote{}
	eng := newEngine(local, remote, newMockKV(), mockAuth{accountID: "acct-1"})

	require.NoError(t, eng.Sync(context.Background()))
	assert.Empty(t, remote.upserts)
	assert.Len(t, remote.fetchSince, 1)
}

func TestSync_PullMergesLastWriterWins(t *testing.T) {
	base := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

	local := newMockLocal()
	localDay := newDay(t, "2025-01-06", base)
	local.put(localDay, false)

	// Same id, older timestamp: must not overwrite.
	older := localDay
	older.UpdatedAt = base.Add(-time.Hour)

	// Same id, strictly newer: must overwrite.
	fresher := localDay
	fresher.UpdatedAt = base.Add(time.Hour)

	// Unknown id: must insert.
	unknown := newDay(t, "2025-01-07", base)

	remote := &mockRemote{fetchDays: []domain.TradeDay{older, fresher, unknown}}
	eng := newEngine(local, remote, newMockKV(), mockAuth{accountID: "acct-1"})

	require.NoError(t, eng.Sync(context.Background()))

	require.Len(t, local.remoteSaves, 2)
	merged, err := local.FetchByID(context.Background(), localDay.ID)
	require.NoError(t, err)
	assert.True(t, merged.UpdatedAt.Equal(fresher.UpdatedAt))

	inserted, err := local.FetchByID(context.Background(), unknown.ID)
	require.NoError(t, err)
	require.NotNil(t, inserted)
}

func TestSync_PullMergeIsIdempotent(t *testing.T) {
	base := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	remoteDay := newDay(t, "2025-01-06", base)

	local := newMockLocal()
	remote := &mockRemote{fetchDays: []domain.TradeDay{remoteDay}}
	eng := newEngine(local, remote, newMockKV(), mockAuth{accountID: "acct-1"})

	require.NoError(t, eng.Sync(context.Background()))
	require.NoError(t, eng.Sync(context.Background()))

	// Second cycle sees an equal timestamp and keeps local untouched.
	assert.Len(t, local.remoteSaves, 1)
}

func TestSync_PullUsesStoredWatermark(t *testing.T) {
	kv := newMockKV()
	mark := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, kv.SetInt64(settings.KeyLastPullAt, mark))

	remote := &mockRemote{}
	eng := newEngine(newMockLocal(), remote, kv, mockAuth{accountID: "acct-1"})

	require.NoError(t, eng.Sync(context.Background()))
	require.Len(t, remote.fetchSince, 1)
	assert.Equal(t, time.UnixMilli(mark), remote.fetchSince[0])
}

// blockingRemote parks Upsert until released so a cycle can be held open.
type blockingRemote struct {
	mockRemote
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRemote) Upsert(ctx context.Context, days []domain.TradeDay, accountID string) error {
	close(b.entered)
	<-b.release
	return b.mockRemote.Upsert(ctx, days, accountID)
}

func TestSync_SingleFlight(t *testing.T) {
	local := newMockLocal()
	local.put(newDay(t, "2025-01-06", time.Now().UTC()), true)

	remote := &blockingRemote{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	eng := newEngine(local, remote, newMockKV(), mockAuth{accountID: "acct-1"})

	done := make(chan error, 1)
	go func() { done <- eng.Sync(context.Background()) }()

	<-remote.entered
	assert.True(t, eng.IsSyncing())

	// A second call while the first is in flight is a silent no-op.
	require.NoError(t, eng.Sync(context.Background()))
	require.Len(t, remote.fetchSince, 0)

	close(remote.release)
	require.NoError(t, <-done)
	assert.False(t, eng.IsSyncing())

	// Only the first cycle pushed.
	assert.Len(t, remote.upserts, 1)
}

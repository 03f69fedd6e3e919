// Package sync reconciles the local trade-day store with the remote store.
//
// One cycle is push-then-pull, strictly in that order: pull's conflict
// resolution assumes local dirty state has already been flushed. Conflicts
// resolve by last-writer-wins on updatedAt; a whole TradeDay replaces
// another atomically, trades are never merged individually.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
	"github.com/onohta/tradebook/internal/modules/settings"
)

// Sync errors.
var (
	// ErrNotAuthenticated means no account id is configured; the sync
	// request is refused before any I/O.
	ErrNotAuthenticated = errors.New("sync requires an authenticated account")
)

// LocalStore is the slice of the journal repository the engine uses.
type LocalStore interface {
	FetchDirty(ctx context.Context) ([]domain.TradeDay, error)
	MarkClean(ctx context.Context, ids []uuid.UUID) error
	FetchByID(ctx context.Context, id uuid.UUID) (*domain.TradeDay, error)
	UpsertFromRemote(ctx context.Context, day domain.TradeDay) error
}

// RemoteStore is the remote trade-day data source.
type RemoteStore interface {
	Upsert(ctx context.Context, days []domain.TradeDay, accountID string) error
	FetchUpdated(ctx context.Context, since time.Time, accountID string) ([]domain.TradeDay, error)
}

// KeyValueStore persists the last successful pull timestamp.
type KeyValueStore interface {
	GetInt64(key string) (*int64, error)
	SetInt64(key string, value int64) error
}

// Authenticator supplies the account id scoping push and pull.
type Authenticator interface {
	CurrentAccountID() (string, bool)
}

// Engine runs sync cycles. At most one cycle is in flight per engine;
// concurrent Sync calls while a cycle runs are no-ops, not queued.
type Engine struct {
	local   LocalStore
	remote  RemoteStore
	kv      KeyValueStore
	auth    Authenticator
	log     zerolog.Logger
	mu      sync.Mutex
	syncing atomic.Bool
}

// NewEngine creates a sync engine.
func NewEngine(local LocalStore, remote RemoteStore, kv KeyValueStore, auth Authenticator, log zerolog.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		kv:     kv,
		auth:   auth,
		log:    log.With().Str("component", "sync").Logger(),
	}
}

// IsSyncing reports whether a cycle is currently in flight.
func (e *Engine) IsSyncing() bool { return e.syncing.Load() }

// Sync runs one push-then-pull cycle. Without an authenticated account it
// returns ErrNotAuthenticated before any I/O. A push failure aborts the
// cycle (pull does not run) and leaves dirty flags set, so the next cycle
// retries; re-pushing an already-synced day is harmless.
func (e *Engine) Sync(ctx context.Context) error {
	accountID, ok := e.auth.CurrentAccountID()
	if !ok {
		return ErrNotAuthenticated
	}

	if !e.mu.TryLock() {
		e.log.Debug().Msg("Sync already in flight, skipping")
		return nil
	}
	defer e.mu.Unlock()

	e.syncing.Store(true)
	defer e.syncing.Store(false)

	if err := e.push(ctx, accountID); err != nil {
		return fmt.Errorf("sync push failed: %w", err)
	}
	if err := e.pull(ctx, accountID); err != nil {
		return fmt.Errorf("sync pull failed: %w", err)
	}
	return nil
}

// push uploads all dirty days (tombstones included; a deletion is itself a
// dirty mutation) and then marks them clean. Marking clean only after the
// remote upsert succeeded is the commit point: a crash in between leaves
// the days dirty for a safe, idempotent retry.
func (e *Engine) push(ctx context.Context, accountID string) error {
	dirty, err := e.local.FetchDirty(ctx)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		return nil
	}

	if err := e.remote.Upsert(ctx, dirty, accountID); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(dirty))
	for i, day := range dirty {
		ids[i] = day.ID
	}
	if err := e.local.MarkClean(ctx, ids); err != nil {
		return err
	}

	e.log.Info().Int("days", len(dirty)).Msg("Pushed dirty trade days")
	return nil
}

// pull fetches remote days updated since the last successful pull and
// merges each one, then advances the pull watermark.
func (e *Engine) pull(ctx context.Context, accountID string) error {
	lastPullAt, err := e.kv.GetInt64(settings.KeyLastPullAt)
	if err != nil {
		return err
	}
	since := time.UnixMilli(0)
	if lastPullAt != nil {
		since = time.UnixMilli(*lastPullAt)
	}

	remoteDays, err := e.remote.FetchUpdated(ctx, since, accountID)
	if err != nil {
		return err
	}

	for _, day := range remoteDays {
		if err := e.merge(ctx, day); err != nil {
			return err
		}
	}

	if err := e.kv.SetInt64(settings.KeyLastPullAt, time.Now().UnixMilli()); err != nil {
		return err
	}

	if len(remoteDays) > 0 {
		e.log.Info().Int("days", len(remoteDays)).Msg("Pulled remote trade days")
	}
	return nil
}

// merge applies one remote day. Unknown ids insert as clean; known ids are
// overwritten only when the local copy is strictly older (ties keep local).
func (e *Engine) merge(ctx context.Context, remoteDay domain.TradeDay) error {
	localDay, err := e.local.FetchByID(ctx, remoteDay.ID)
	if err != nil {
		return err
	}
	if localDay != nil && !localDay.UpdatedAt.Before(remoteDay.UpdatedAt) {
		return nil
	}
	return e.local.UpsertFromRemote(ctx, remoteDay)
}

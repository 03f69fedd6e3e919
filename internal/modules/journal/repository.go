// Package journal provides the local trade-day store, validation and the
// use cases around editing the journal.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
)

// tradeDayColumns is the column list for the trade_days table. Kept in one
// place so scans cannot drift from the queries.
const tradeDayColumns = `id, date, payload, updated_at, deleted_at, sync_state, last_synced_at`

// payload is the JSON document stored in the payload column.
type payload struct {
	Trades []domain.Trade `json:"trades"`
}

// Repository is the local trade-day store. Every local mutation marks the
// row dirty; only a confirmed sync push (MarkClean) or a remote merge
// (UpsertFromRemote) writes clean rows.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a trade-day repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "journal").Logger(),
	}
}

// FetchAll returns every stored day, tombstones included, newest date first.
func (r *Repository) FetchAll(ctx context.Context) ([]domain.TradeDay, error) {
	query := "SELECT " + tradeDayColumns + " FROM trade_days ORDER BY date DESC"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade days: %w", err)
	}
	defer rows.Close()

	return r.collectDays(rows)
}

// FetchByDate returns the non-deleted day on the given date, or nil.
func (r *Repository) FetchByDate(ctx context.Context, date domain.LocalDate) (*domain.TradeDay, error) {
	query := "SELECT " + tradeDayColumns + " FROM trade_days WHERE date = ? AND deleted_at IS NULL LIMIT 1"
	day, err := r.fetchOne(ctx, query, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade day by date: %w", err)
	}
	return day, nil
}

// FetchByID returns the day with the given id, or nil. Tombstoned days are
// returned too; the sync merge needs them.
func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*domain.TradeDay, error) {
	query := "SELECT " + tradeDayColumns + " FROM trade_days WHERE id = ?"
	day, err := r.fetchOne(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade day by id: %w", err)
	}
	return day, nil
}

// Upsert writes a day as a local mutation: the row is marked dirty so the
// next sync cycle pushes it.
func (r *Repository) Upsert(ctx context.Context, day domain.TradeDay) error {
	body, err := encodePayload(day.Trades)
	if err != nil {
		return fmt.Errorf("failed to encode trades payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trade_days (id, date, payload, updated_at, deleted_at, sync_state, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at,
			sync_state = excluded.sync_state
	`,
		day.ID.String(),
		day.Date.String(),
		body,
		day.UpdatedAt.UnixMilli(),
		nullMillis(day.DeletedAt),
		int(domain.SyncStateDirty),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trade day: %w", err)
	}

	r.log.Debug().
		Str("id", day.ID.String()).
		Str("date", day.Date.String()).
		Int("trades", len(day.Trades)).
		Msg("Trade day upserted")

	return nil
}

// MarkDeleted tombstones a day: deleted_at and updated_at are stamped and
// the row goes dirty so the deletion propagates on the next push.
// Unknown ids are a no-op.
func (r *Repository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UnixMilli()
	_, err := r.db.ExecContext(ctx, `
		UPDATE trade_days
		SET deleted_at = ?, updated_at = ?, sync_state = ?
		WHERE id = ?
	`, now, now, int(domain.SyncStateDirty), id.String())
	if err != nil {
		return fmt.Errorf("failed to mark trade day deleted: %w", err)
	}
	return nil
}

// FetchDirty returns all locally modified days awaiting a push,
// tombstones included.
func (r *Repository) FetchDirty(ctx context.Context) ([]domain.TradeDay, error) {
	query := "SELECT " + tradeDayColumns + " FROM trade_days WHERE sync_state = ?"
	rows, err := r.db.QueryContext(ctx, query, int(domain.SyncStateDirty))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dirty trade days: %w", err)
	}
	defer rows.Close()

	return r.collectDays(rows)
}

// MarkClean flips the given days to clean with last_synced_at = now.
// Called only after a confirmed remote push; this is the sync commit point.
func (r *Repository) MarkClean(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, int(domain.SyncStateClean), time.Now().UnixMilli())
	for _, id := range ids {
		args = append(args, id.String())
	}

	query := fmt.Sprintf(`
		UPDATE trade_days
		SET sync_state = ?, last_synced_at = ?
		WHERE id IN (%s)
	`, placeholders)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark trade days clean: %w", err)
	}
	return nil
}

// DeleteAll physically removes every row. Only the clear-all-data flow
// uses this; normal deletion is always a tombstone.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM trade_days"); err != nil {
		return fmt.Errorf("failed to delete all trade days: %w", err)
	}
	return nil
}

// UpsertFromRemote applies a remotely fetched day with clean state.
// Last-writer-wins: an existing local row is overwritten only when its
// updated_at is strictly older than the remote's; ties keep local.
func (r *Repository) UpsertFromRemote(ctx context.Context, day domain.TradeDay) error {
	body, err := encodePayload(day.Trades)
	if err != nil {
		return fmt.Errorf("failed to encode trades payload: %w", err)
	}
	now := time.Now().UnixMilli()

	existing, err := r.FetchByID(ctx, day.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO trade_days (id, date, payload, updated_at, deleted_at, sync_state, last_synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			day.ID.String(),
			day.Date.String(),
			body,
			day.UpdatedAt.UnixMilli(),
			nullMillis(day.DeletedAt),
			int(domain.SyncStateClean),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert remote trade day: %w", err)
		}
		return nil
	}

	if !existing.UpdatedAt.Before(day.UpdatedAt) {
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE trade_days
		SET date = ?, payload = ?, updated_at = ?, deleted_at = ?, sync_state = ?, last_synced_at = ?
		WHERE id = ?
	`,
		day.Date.String(),
		body,
		day.UpdatedAt.UnixMilli(),
		nullMillis(day.DeletedAt),
		int(domain.SyncStateClean),
		now,
		day.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update trade day from remote: %w", err)
	}
	return nil
}

// fetchOne runs a single-row query and maps sql.ErrNoRows to nil.
func (r *Repository) fetchOne(ctx context.Context, query string, args ...interface{}) (*domain.TradeDay, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	day, err := r.scanDay(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// collectDays drains a result set, skipping rows that fail to decode.
// A corrupt row should not take the whole journal down with it.
func (r *Repository) collectDays(rows *sql.Rows) ([]domain.TradeDay, error) {
	var days []domain.TradeDay
	for rows.Next() {
		day, err := r.scanDay(rows.Scan)
		if err != nil {
			r.log.Warn().Err(err).Msg("Skipping undecodable trade day row")
			continue
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade days: %w", err)
	}
	return days, nil
}

// scanDay decodes one row into a domain TradeDay.
func (r *Repository) scanDay(scan func(...interface{}) error) (domain.TradeDay, error) {
	var (
		idStr, dateStr, body     string
		updatedAt                int64
		deletedAt, lastSyncedAt  sql.NullInt64
		syncState                int
	)

	if err := scan(&idStr, &dateStr, &body, &updatedAt, &deletedAt, &syncState, &lastSyncedAt); err != nil {
		return domain.TradeDay{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("invalid trade day id %q: %w", idStr, err)
	}
	date, err := domain.ParseLocalDate(dateStr)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("invalid trade day date %q: %w", dateStr, err)
	}

	day := domain.TradeDay{
		ID:        id,
		Date:      date,
		Trades:    decodePayload(body),
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}
	if deletedAt.Valid {
		t := time.UnixMilli(deletedAt.Int64).UTC()
		day.DeletedAt = &t
	}
	return day, nil
}

// encodePayload serializes trades to the payload JSON document.
func encodePayload(trades []domain.Trade) (string, error) {
	if trades == nil {
		trades = []domain.Trade{}
	}
	data, err := json.Marshal(payload{Trades: trades})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodePayload deserializes the payload column; a malformed document
// yields an empty trade list rather than an error.
func decodePayload(body string) []domain.Trade {
	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil
	}
	return p.Trades
}

// nullMillis converts an optional timestamp to nullable epoch millis.
func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

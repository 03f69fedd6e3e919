package impexp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onohta/tradebook/internal/domain"
)

// mockStore is an in-memory journal Store.
type mockStore struct {
	days []domain.TradeDay
}

func (m *mockStore) FetchAll(context.Context) ([]domain.TradeDay, error) {
	return m.days, nil
}

func (m *mockStore) Upsert(_ context.Context, day domain.TradeDay) error {
	for i, existing := range m.days {
		if existing.ID == day.ID {
			m.days[i] = day
			return nil
		}
	}
	m.days = append(m.days, day)
	return nil
}

func newTestService(store *mockStore) *Service {
	return NewService(store, zerolog.Nop())
}

func storedDay(t *testing.T, date string, trades ...domain.Trade) domain.TradeDay {
	t.Helper()
	d, err := domain.ParseLocalDate(date)
	require.NoError(t, err)
	return domain.NewTradeDay(d, trades)
}

func TestExport_DocumentShape(t *testing.T) {
	now := time.Now().UTC()
	deleted := storedDay(t, "2025-01-07")
	deleted.DeletedAt = &now

	store := &mockStore{days: []domain.TradeDay{
		storedDay(t, "2025-01-06",
			domain.NewTrade("7203", domain.ActionBuy, domain.MarketTSE, 100, domain.MoneyFromInt(1000)),
			domain.NewTrade("7203", domain.ActionSell, domain.MarketPTS, 100, domain.MoneyFromInt(1100)),
		),
		deleted,
	}}

	data, err := newTestService(store).Export(context.Background())
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	var version string
	require.NoError(t, json.Unmarshal(doc["version"], &version))
	assert.Equal(t, "3.0", version)

	var exportedAt string
	require.NoError(t, json.Unmarshal(doc["exportedAt"], &exportedAt))
	_, err = time.Parse(time.RFC3339, exportedAt)
	assert.NoError(t, err)

	var days []struct {
		ID     string `json:"id"`
		Date   string `json:"date"`
		Status string `json:"status"`
		Trades []struct {
			Symbol   string  `json:"symbol"`
			Action   string  `json:"action"`
			Market   string  `json:"market"`
			Quantity int     `json:"quantity"`
			Price    float64 `json:"price"`
		} `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(doc["days"], &days))

	// Tombstoned days never leave the device via export.
	require.Len(t, days, 1)
	assert.Equal(t, "2025-01-06", days[0].Date)
	assert.Equal(t, "open", days[0].Status)
	require.Len(t, days[0].Trades, 2)
	assert.Equal(t, "buy", days[0].Trades[0].Action)
	assert.Equal(t, "pts", days[0].Trades[1].Market)
	assert.Equal(t, 1100.0, days[0].Trades[1].Price)
}

func TestImport_RoundTrip(t *testing.T) {
	source := &mockStore{days: []domain.TradeDay{
		storedDay(t, "2025-01-06",
			domain.NewTrade("7203", domain.ActionBuy, domain.MarketTSE, 100, domain.MoneyFromInt(1000)),
		),
	}}

	data, err := newTestService(source).Export(context.Background())
	require.NoError(t, err)

	target := &mockStore{}
	count, err := newTestService(target).Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, target.days, 1)
	got := target.days[0]
	assert.Equal(t, source.days[0].ID, got.ID)
	assert.Equal(t, "2025-01-06", got.Date.String())
	require.Len(t, got.Trades, 1)
	assert.True(t, got.Trades[0].Price.Equal(domain.MoneyFromInt(1000)))

	// Imported days get a fresh timestamp so they win locally and sync out.
	assert.True(t, got.UpdatedAt.After(source.days[0].UpdatedAt) || got.UpdatedAt.Equal(source.days[0].UpdatedAt))
}

func TestImport_StringNumbersAccepted(t *testing.T) {
	doc := fmt.Sprintf(`{
		"days": [{
			"id": %q,
			"date": "2025-01-06",
			"trades": [{
				"symbol": "7203",
				"action": "buy",
				"market": "tse",
				"quantity": "100",
				"price": "1000.5"
			}]
		}]
	}`, uuid.NewString())

	store := &mockStore{}
	count, err := newTestService(store).Import(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, store.days, 1)
	require.Len(t, store.days[0].Trades, 1)
	trade := store.days[0].Trades[0]
	assert.Equal(t, 100, trade.Quantity)
	assert.True(t, trade.Price.Equal(domain.MoneyFromFloat(1000.5)))
}

func TestImport_LegacyProfitBecomesSyntheticSell(t *testing.T) {
	doc := fmt.Sprintf(`{
		"days": [{
			"id": %q,
			"date": "2025-01-06",
			"trades": [
				{"symbol": "7203", "profit": 15000},
				{"symbol": "9432", "profit": "-2000"}
			]
		}]
	}`, uuid.NewString())

	store := &mockStore{}
	count, err := newTestService(store).Import(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, store.days[0].Trades, 2)

	gain := store.days[0].Trades[0]
	assert.Equal(t, domain.ActionSell, gain.Action)
	assert.Equal(t, domain.MarketTSE, gain.Market)
	assert.Equal(t, 100, gain.Quantity)
	assert.True(t, gain.Price.Equal(domain.MoneyFromInt(150)))

	// Magnitude only; the sign of a legacy loss is not recoverable from a
	// synthetic sell, the price still encodes |profit|/100.
	loss := store.days[0].Trades[1]
	assert.True(t, loss.Price.Equal(domain.MoneyFromInt(20)))
}

func TestImport_SkipsUndecodableDays(t *testing.T) {
	doc := fmt.Sprintf(`{
		"days": [
			{"id": "not-a-uuid", "date": "2025-01-06", "trades": []},
			{"id": %q, "date": "bogus", "trades": []},
			{"id": %q, "date": "2025-01-08", "trades": []}
		]
	}`, uuid.NewString(), uuid.NewString())

	store := &mockStore{}
	count, err := newTestService(store).Import(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, store.days, 1)
	assert.Equal(t, "2025-01-08", store.days[0].Date.String())
}

func TestImport_DropsJunkTradesWithinDay(t *testing.T) {
	doc := fmt.Sprintf(`{
		"days": [{
			"id": %q,
			"date": "2025-01-06",
			"trades": [
				{"symbol": "", "action": "buy", "quantity": 100, "price": 1000},
				{"symbol": "7203", "profit": 0},
				{"symbol": "7203", "action": "hold", "quantity": 100, "price": 1000},
				{"symbol": "7203", "action": "buy", "quantity": "abc", "price": 1000},
				{"symbol": "7203", "action": "buy", "quantity": 100, "price": 1000}
			]
		}]
	}`, uuid.NewString())

	store := &mockStore{}
	count, err := newTestService(store).Import(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, store.days, 1)
	assert.Len(t, store.days[0].Trades, 1)
}

func TestImport_RejectsMalformedDocument(t *testing.T) {
	_, err := newTestService(&mockStore{}).Import(context.Background(), []byte("{not json"))
	assert.Error(t, err)
}

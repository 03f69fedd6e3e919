package remotestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onohta/tradebook/internal/domain"
)

func testDay(t *testing.T, date string) domain.TradeDay {
	t.Helper()
	d, err := domain.ParseLocalDate(date)
	require.NoError(t, err)
	return domain.NewTradeDay(d, []domain.Trade{
		domain.NewTrade("7203", domain.ActionBuy, domain.MarketTSE, 100, domain.MoneyFromInt(1000)),
	})
}

func TestUpsert_RequestShape(t *testing.T) {
	var (
		gotPath   string
		gotQuery  string
		gotPrefer string
		gotAPIKey string
		gotAuth   string
		gotBody   []tradeDayDTO
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotPrefer = r.Header.Get("Prefer")
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", zerolog.Nop())
	day := testDay(t, "2025-01-06")

	require.NoError(t, client.Upsert(context.Background(), []domain.TradeDay{day}, "acct-1"))

	assert.Equal(t, "/rest/v1/trade_days", gotPath)
	assert.Equal(t, "on_conflict=id", gotQuery)
	assert.Equal(t, "resolution=merge-duplicates", gotPrefer)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "Bearer secret-key", gotAuth)

	require.Len(t, gotBody, 1)
	assert.Equal(t, day.ID.String(), gotBody[0].ID)
	assert.Equal(t, "acct-1", gotBody[0].AccountID)
	assert.Equal(t, "2025-01-06", gotBody[0].Date)
	assert.Equal(t, "open", gotBody[0].Payload.Status)
	require.Len(t, gotBody[0].Payload.Trades, 1)
	assert.Equal(t, "buy", gotBody[0].Payload.Trades[0].Action)
	assert.Nil(t, gotBody[0].DeletedAt)
}

func TestUpsert_TombstoneCarriesDeletedAt(t *testing.T) {
	var gotBody []tradeDayDTO
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	defer srv.Close()

	day := testDay(t, "2025-01-06")
	now := time.Now().UTC()
	day.DeletedAt = &now

	client := NewClient(srv.URL, "k", zerolog.Nop())
	require.NoError(t, client.Upsert(context.Background(), []domain.TradeDay{day}, "acct-1"))

	require.Len(t, gotBody, 1)
	require.NotNil(t, gotBody[0].DeletedAt)
}

func TestUpsert_EmptyBatchSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	require.NoError(t, client.Upsert(context.Background(), nil, "acct-1"))
	assert.False(t, called)
}

func TestUpsert_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	err := client.Upsert(context.Background(), []domain.TradeDay{testDay(t, "2025-01-06")}, "acct-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestFetchUpdated_QueryAndDecode(t *testing.T) {
	id := uuid.New()
	since := time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprintf(w, `[{
			"id": %q,
			"account_id": "acct-1",
			"date": "2025-01-06",
			"payload": {"status": "open", "trades": [
				{"symbol": "7203", "action": "sell", "market": "pts", "quantity": 100, "price": 1100}
			]},
			"updated_at": "2025-01-06T15:00:00Z",
			"deleted_at": null
		}]`, id.String())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	days, err := client.FetchUpdated(context.Background(), since, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, gotQuery["select"])
	assert.Equal(t, []string{"eq.acct-1"}, gotQuery["account_id"])
	assert.Equal(t, []string{"gt.2025-01-05T10:30:00Z"}, gotQuery["updated_at"])
	assert.Equal(t, []string{"updated_at.asc"}, gotQuery["order"])

	require.Len(t, days, 1)
	assert.Equal(t, id, days[0].ID)
	assert.Equal(t, "2025-01-06", days[0].Date.String())
	assert.True(t, days[0].UpdatedAt.Equal(time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)))
	require.Len(t, days[0].Trades, 1)
	assert.Equal(t, domain.ActionSell, days[0].Trades[0].Action)
	assert.Equal(t, domain.MarketPTS, days[0].Trades[0].Market)
}

func TestFetchUpdated_SkipsUndecodableRows(t *testing.T) {
	good := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"id": "junk", "date": "2025-01-06", "payload": {"trades": []}, "updated_at": "2025-01-06T15:00:00Z"},
			{"id": %q, "date": "2025-01-07", "payload": {"trades": []}, "updated_at": "2025-01-07T15:00:00Z"}
		]`, good)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	days, err := client.FetchUpdated(context.Background(), time.UnixMilli(0), "acct-1")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-01-07", days[0].Date.String())
}

func TestFetchUpdated_UnknownActionDroppedUnknownMarketDefaulted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{
			"id": %q,
			"date": "2025-01-06",
			"payload": {"status": "open", "trades": [
				{"symbol": "7203", "action": "hold", "market": "tse", "quantity": 1, "price": 1},
				{"symbol": "7203", "action": "buy", "market": "nasdaq", "quantity": 100, "price": 1000}
			]},
			"updated_at": "2025-01-06T15:00:00Z"
		}]`, uuid.NewString())
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	days, err := client.FetchUpdated(context.Background(), time.UnixMilli(0), "acct-1")
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Trades, 1)
	assert.Equal(t, domain.MarketTSE, days[0].Trades[0].Market)
}

func TestFetchUpdated_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", zerolog.Nop())
	_, err := client.FetchUpdated(context.Background(), time.UnixMilli(0), "acct-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

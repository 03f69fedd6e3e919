// Package remotestore is the HTTP client for the hosted trade-day store
// (a PostgREST-style API in front of Postgres). It owns the wire DTOs;
// the sync engine only ever sees domain values.
package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
)

const tablePath = "/rest/v1/trade_days"

// Client talks to the remote trade-day table.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a remote store client.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "remotestore").Logger(),
	}
}

// Upsert writes days to the remote table keyed by id. An empty batch is a
// no-op. Re-upserting an already-synced day is harmless, which is what
// makes interrupted push cycles safe to retry.
func (c *Client) Upsert(ctx context.Context, days []domain.TradeDay, accountID string) error {
	if len(days) == 0 {
		return nil
	}

	dtos := make([]tradeDayDTO, len(days))
	for i, day := range days {
		dtos[i] = newTradeDayDTO(day, accountID)
	}

	body, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("failed to encode upsert payload: %w", err)
	}

	endpoint := c.baseURL + tablePath + "?on_conflict=id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upsert request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote upsert returned status %d", resp.StatusCode)
	}

	c.log.Debug().Int("days", len(days)).Msg("Upserted trade days to remote")
	return nil
}

// FetchUpdated returns the account's days with updated_at strictly after
// since, oldest first.
func (c *Client) FetchUpdated(ctx context.Context, since time.Time, accountID string) ([]domain.TradeDay, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("account_id", "eq."+accountID)
	query.Set("updated_at", "gt."+since.UTC().Format(time.RFC3339))
	query.Set("order", "updated_at.asc")

	endpoint := c.baseURL + tablePath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch response: %w", err)
	}

	var dtos []tradeDayDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse fetch response: %w", err)
	}

	days := make([]domain.TradeDay, 0, len(dtos))
	for _, dto := range dtos {
		day, err := dto.toTradeDay()
		if err != nil {
			c.log.Warn().Err(err).Str("id", dto.ID).Msg("Skipping undecodable remote day")
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

// tradeDayDTO is the wire representation of one remote row.
type tradeDayDTO struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	Date      string     `json:"date"`
	Payload   payloadDTO `json:"payload"`
	UpdatedAt string     `json:"updated_at"`
	DeletedAt *string    `json:"deleted_at"`
}

type payloadDTO struct {
	Status string     `json:"status"`
	Trades []tradeDTO `json:"trades"`
}

type tradeDTO struct {
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Market   string  `json:"market"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func newTradeDayDTO(day domain.TradeDay, accountID string) tradeDayDTO {
	trades := make([]tradeDTO, len(day.Trades))
	for i, t := range day.Trades {
		trades[i] = tradeDTO{
			Symbol:   t.Symbol,
			Action:   string(t.Action),
			Market:   string(t.Market),
			Quantity: t.Quantity,
			Price:    t.Price.InexactFloat64(),
		}
	}

	dto := tradeDayDTO{
		ID:        day.ID.String(),
		AccountID: accountID,
		Date:      day.Date.String(),
		Payload:   payloadDTO{Status: "open", Trades: trades},
		UpdatedAt: day.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if day.DeletedAt != nil {
		s := day.DeletedAt.UTC().Format(time.RFC3339)
		dto.DeletedAt = &s
	}
	return dto
}

func (dto tradeDayDTO) toTradeDay() (domain.TradeDay, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("invalid id: %w", err)
	}
	date, err := domain.ParseLocalDate(dto.Date)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("invalid date: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, dto.UpdatedAt)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	day := domain.TradeDay{
		ID:        id,
		Date:      date,
		UpdatedAt: updatedAt.UTC(),
	}
	if dto.DeletedAt != nil {
		deletedAt, err := time.Parse(time.RFC3339, *dto.DeletedAt)
		if err != nil {
			return domain.TradeDay{}, fmt.Errorf("invalid deleted_at: %w", err)
		}
		utc := deletedAt.UTC()
		day.DeletedAt = &utc
	}

	for _, t := range dto.Payload.Trades {
		action, ok := domain.ParseTradeAction(t.Action)
		if !ok {
			continue
		}
		market, ok := domain.ParseMarket(t.Market)
		if !ok {
			market = domain.MarketTSE
		}
		day.Trades = append(day.Trades, domain.NewTrade(
			t.Symbol, action, market, t.Quantity, domain.MoneyFromFloat(t.Price),
		))
	}
	return day, nil
}

package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
)

// KeyValueWiper is the slice of the key-value store the clear-all flow
// needs.
type KeyValueWiper interface {
	DeleteAll() error
}

// Service implements the journal use cases: add/update a day, delete a
// day, fetch, and clear all data.
type Service struct {
	repo           *Repository
	kv             KeyValueWiper
	dayValidator   DayValidator
	tradeValidator TradeValidator
	log            zerolog.Logger
}

// NewService creates a journal service.
func NewService(repo *Repository, kv KeyValueWiper, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		kv:   kv,
		log:  log.With().Str("service", "journal").Logger(),
	}
}

// AddOrUpdate validates and saves a trade day. Invalid trades are filtered
// out rather than rejected; a duplicate date fails the save. The saved
// day gets a fresh updatedAt and is returned.
func (s *Service) AddOrUpdate(ctx context.Context, day domain.TradeDay) (domain.TradeDay, error) {
	existing, err := s.repo.FetchAll(ctx)
	if err != nil {
		return domain.TradeDay{}, fmt.Errorf("failed to load existing days: %w", err)
	}

	if err := s.dayValidator.Validate(day, existing); err != nil {
		return domain.TradeDay{}, err
	}

	day.Trades = s.tradeValidator.FilterValid(day.Trades)
	day.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, day); err != nil {
		return domain.TradeDay{}, err
	}

	s.log.Info().
		Str("date", day.Date.String()).
		Int("trades", len(day.Trades)).
		Msg("Trade day saved")

	return day, nil
}

// Delete tombstones a day so the deletion propagates through sync.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id.String()).Msg("Trade day deleted")
	return nil
}

// FetchAll returns the full history, tombstones included. Callers that
// only want active days filter with IsDeleted.
func (s *Service) FetchAll(ctx context.Context) ([]domain.TradeDay, error) {
	return s.repo.FetchAll(ctx)
}

// FetchByDate returns the active day on a date, or nil.
func (s *Service) FetchByDate(ctx context.Context, date domain.LocalDate) (*domain.TradeDay, error) {
	return s.repo.FetchByDate(ctx, date)
}

// ClearAll wipes the journal and the key-value store. Destructive and
// local-only; remote data is untouched.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.kv.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear key-value store: %w", err)
	}
	s.log.Warn().Msg("All local data cleared")
	return nil
}

package dividends

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onohta/tradebook/internal/domain"
)

// Key-value keys for the persisted ratio preference.
const (
	keyRatioNumerator   = "dividend_ratio_numerator"
	keyRatioDenominator = "dividend_ratio_denominator"
)

// RatioStore is the slice of the key-value repository the service needs.
type RatioStore interface {
	GetInt64(key string) (*int64, error)
	SetInt64(key string, value int64) error
}

// Service persists the preferred dividend ratio and builds calculators
// from it.
type Service struct {
	store RatioStore
	log   zerolog.Logger
}

// NewService creates a dividend service backed by the key-value store.
func NewService(store RatioStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "dividends").Logger(),
	}
}

// Ratio returns the persisted ratio, or the default 1/3 when unset.
func (s *Service) Ratio() (domain.DividendRatio, error) {
	num, err := s.store.GetInt64(keyRatioNumerator)
	if err != nil {
		return domain.DividendRatio{}, fmt.Errorf("failed to read ratio numerator: %w", err)
	}
	den, err := s.store.GetInt64(keyRatioDenominator)
	if err != nil {
		return domain.DividendRatio{}, fmt.Errorf("failed to read ratio denominator: %w", err)
	}
	if num == nil || den == nil {
		return domain.DefaultDividendRatio, nil
	}
	return domain.NewDividendRatio(int(*num), int(*den)), nil
}

// SetRatio stores the ratio preference (clamped to >= 1/1).
func (s *Service) SetRatio(numerator, denominator int) (domain.DividendRatio, error) {
	ratio := domain.NewDividendRatio(numerator, denominator)

	if err := s.store.SetInt64(keyRatioNumerator, int64(ratio.Numerator)); err != nil {
		return domain.DividendRatio{}, fmt.Errorf("failed to store ratio numerator: %w", err)
	}
	if err := s.store.SetInt64(keyRatioDenominator, int64(ratio.Denominator)); err != nil {
		return domain.DividendRatio{}, fmt.Errorf("failed to store ratio denominator: %w", err)
	}

	s.log.Info().
		Int("numerator", ratio.Numerator).
		Int("denominator", ratio.Denominator).
		Msg("Dividend ratio updated")

	return ratio, nil
}

// Calculator returns a calculator configured with the persisted ratio.
func (s *Service) Calculator() (*Calculator, error) {
	ratio, err := s.Ratio()
	if err != nil {
		return nil, err
	}
	return NewCalculator(ratio), nil
}

package currency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/database"
)

// RateStore is the subset of database.Store used by RateService.
type RateStore interface {
	GetCurrencyRates(ctx context.Context) ([]database.CurrencyRate, error)
	SaveCurrencyRates(ctx context.Context, rates []database.CurrencyRate) error
}

// RateService reads and writes exchange rates. Configured rates act as
// defaults; stored rates override them.
type RateService struct {
	store  RateStore
	cfg    config.CurrencyConfig
	logger *slog.Logger
}

// NewRateService creates a RateService.
func NewRateService(store RateStore, cfg config.CurrencyConfig, logger *slog.Logger) *RateService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RateService{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "currency"),
	}
}

// Get returns the current rates relative to the configured base.
func (s *RateService) Get(ctx context.Context) (Rates, error) {
	rates, err := FromMap(s.cfg.Base, s.cfg.Rates)
	if err != nil {
		return Rates{}, fmt.Errorf("configured rates: %w", err)
	}

	stored, err := s.store.GetCurrencyRates(ctx)
	if err != nil {
		return Rates{}, err
	}

	for _, row := range stored {
		d, err := decimal.NewFromString(row.Rate)
		if err != nil || !d.IsPositive() {
			s.logger.WarnContext(ctx, "Skipping malformed stored rate", "code", row.Code, "rate", row.Rate)
			continue
		}
		if rates, err = rates.WithRate(row.Code, d); err != nil {
			return Rates{}, err
		}
	}
	return rates, nil
}

// Set stores every rate of the configured currencies except the base. Codes
// outside the configured list and the incoming base are ignored.
func (s *RateService) Set(ctx context.Context, rates Rates) error {
	codes := lo.Filter(lo.Without(s.cfg.List, s.cfg.Base), func(code string, _ int) bool {
		return rates.HasRate(code) && code != rates.Base()
	})

	rows := make([]database.CurrencyRate, 0, len(codes))
	for _, code := range codes {
		d, _ := rates.Rate(code)
		if !d.IsPositive() {
			return fmt.Errorf("%w: %s=%s", ErrInvalidRate, code, d)
		}
		rows = append(rows, database.CurrencyRate{Code: code, Rate: d.String()})
	}

	if len(rows) == 0 {
		s.logger.DebugContext(ctx, "No configured currency rates to store")
		return nil
	}

	if err := s.store.SaveCurrencyRates(ctx, rows); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Currency rates updated", "codes", codes)
	return nil
}

// SetRate updates a single rate.
func (s *RateService) SetRate(ctx context.Context, code string, value string) (Rates, error) {
	code = normalizeCode(code)
	if !lo.Contains(s.cfg.List, code) {
		return Rates{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	if code == s.cfg.Base {
		return Rates{}, fmt.Errorf("%w: base currency rate is fixed", ErrInvalidRate)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return Rates{}, fmt.Errorf("%w: %q", ErrInvalidRate, value)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return Rates{}, err
	}
	next, err := current.WithRate(code, d)
	if err != nil {
		return Rates{}, err
	}
	if err := s.Set(ctx, next); err != nil {
		return Rates{}, err
	}
	return next, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Investment-Planner-Backend/internal/allocation"
	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// PortfolioService handles portfolio lifecycle operations: seeding, asset
// list and monthly contribution updates, reconciliation and export.
type PortfolioService struct {
	portfolios    PortfolioStore
	contributions ContributionStore
	locks         *PortfolioLocks
	seed          model.SeedConfig
	now           func() time.Time
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(portfolios PortfolioStore, contributions ContributionStore, locks *PortfolioLocks, seed model.SeedConfig) *PortfolioService {
	return &PortfolioService{
		portfolios:    portfolios,
		contributions: contributions,
		locks:         locks,
		seed:          seed,
		now:           time.Now,
	}
}

// InitializePortfolios creates one portfolio per seeded broker when no
// portfolio exists yet. It is a no-op, returning nil, otherwise.
func (s *PortfolioService) InitializePortfolios(ctx context.Context) ([]model.Portfolio, error) {
	existing, err := s.portfolios.GetAllPortfolios(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("load portfolios", err)
	}
	if len(existing) > 0 {
		log.Debug().Int("count", len(existing)).Msg("portfolios already initialized")
		return nil, nil
	}

	created := make([]model.Portfolio, 0, len(s.seed.Brokers))
	for _, b := range s.seed.Brokers {
		assets := make([]model.Asset, len(b.Assets))
		copy(assets, b.Assets)

		name := b.PortfolioName
		if name == "" {
			name = b.DisplayName
		}
		if name == "" {
			name = b.Broker
		}

		p := model.Portfolio{
			ID:                  uuid.New().String(),
			Broker:              b.Broker,
			Name:                name,
			Assets:              assets,
			MonthlyContribution: b.MonthlyContribution,
			CreatedDate:         s.now().UTC(),
		}
		if err := s.portfolios.SavePortfolio(ctx, p); err != nil {
			return created, apperrors.NewStorageError("save portfolio", err)
		}
		created = append(created, p)

		log.Info().Str("portfolio_id", p.ID).Str("broker", p.Broker).Msg("seeded portfolio")
	}

	return created, nil
}

// GetAllPortfolios returns every portfolio with its assets.
func (s *PortfolioService) GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	portfolios, err := s.portfolios.GetAllPortfolios(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("load portfolios", err)
	}
	return portfolios, nil
}

// GetPortfolio returns a single portfolio.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("load portfolio", err)
	}
	return p, nil
}

// UpdateMonthlyContribution changes the recurring deposit of a portfolio.
func (s *PortfolioService) UpdateMonthlyContribution(ctx context.Context, portfolioID string, amount float64) (model.Portfolio, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.Portfolio{}, apperrors.NewValidationError("monthlyContribution", "monthly contribution cannot be negative")
	}

	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("load portfolio", err)
	}

	p.MonthlyContribution = round(amount)
	if err := s.portfolios.SavePortfolio(ctx, p); err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("save portfolio", err)
	}
	return p, nil
}

// UpdateAssets replaces the asset list of a portfolio. Every asset is checked
// with the allocation rules (symbols are trimmed and upper-cased) and the
// weights must add up to 100% before anything is saved. Amounts are kept as
// given; an asset sent with only an amount must still carry a weight.
func (s *PortfolioService) UpdateAssets(ctx context.Context, portfolioID string, assets []model.Asset) (model.Portfolio, error) {
	draft := allocation.New(nil, allocation.Unanchored{})

	for i, a := range assets {
		if a.Amount < 0 {
			return model.Portfolio{}, apperrors.NewValidationError(fmt.Sprintf("assets[%d].amount", i), "amount cannot be negative")
		}
		in := allocation.AssetInput{
			Symbol:        a.Symbol,
			Name:          a.Name,
			Type:          a.Type,
			Weight:        a.Weight,
			DividendYield: a.DividendYield,
		}
		if a.Weight == 0 {
			in.Amount = a.Amount
		}
		if _, err := draft.AddAsset(in); err != nil {
			return model.Portfolio{}, prefixFields(err, fmt.Sprintf("assets[%d].", i))
		}
		draft.Assets[i].Amount = a.Amount
	}

	if err := draft.Validate(); err != nil {
		return model.Portfolio{}, err
	}

	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("load portfolio", err)
	}

	p.Assets = draft.Assets
	if err := s.portfolios.SavePortfolio(ctx, p); err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("save portfolio", err)
	}

	log.Info().Str("portfolio_id", p.ID).Int("assets", len(p.Assets)).Msg("updated portfolio assets")
	return p, nil
}

// DeletePortfolio removes a portfolio. It is refused with
// apperrors.ErrPortfolioHasContributions while contributions reference it.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID string) error {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	if _, err := s.portfolios.GetPortfolio(ctx, portfolioID); err != nil {
		return apperrors.NewStorageError("load portfolio", err)
	}

	contributions, err := s.contributions.GetContributionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return apperrors.NewStorageError("load contributions", err)
	}
	if len(contributions) > 0 {
		return fmt.Errorf("%w: %d contributions", apperrors.ErrPortfolioHasContributions, len(contributions))
	}

	if err := s.portfolios.DeletePortfolio(ctx, portfolioID); err != nil {
		return apperrors.NewStorageError("delete portfolio", err)
	}

	log.Info().Str("portfolio_id", portfolioID).Msg("deleted portfolio")
	return nil
}

// ReconcilePortfolio recomputes the cached total invested of a portfolio from
// its contributions and persists it when it drifted.
func (s *PortfolioService) ReconcilePortfolio(ctx context.Context, portfolioID string) (model.Portfolio, bool, error) {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, false, apperrors.NewStorageError("load portfolio", err)
	}

	total, err := contributionTotal(ctx, s.contributions, portfolioID)
	if err != nil {
		return model.Portfolio{}, false, err
	}
	if total == p.TotalInvested {
		return p, false, nil
	}

	log.Warn().
		Str("portfolio_id", p.ID).
		Float64("cached", p.TotalInvested).
		Float64("actual", total).
		Msg("total invested drifted, reconciling")

	p.TotalInvested = total
	if err := s.portfolios.SavePortfolio(ctx, p); err != nil {
		return model.Portfolio{}, false, apperrors.NewStorageError("save portfolio", err)
	}
	return p, true, nil
}

// ReconcileAll reconciles every portfolio and returns how many were corrected.
// It stops at the first failure.
func (s *PortfolioService) ReconcileAll(ctx context.Context) (int, error) {
	portfolios, err := s.portfolios.GetAllPortfolios(ctx)
	if err != nil {
		return 0, apperrors.NewStorageError("load portfolios", err)
	}

	corrected := 0
	for _, p := range portfolios {
		_, changed, err := s.ReconcilePortfolio(ctx, p.ID)
		if err != nil {
			return corrected, err
		}
		if changed {
			corrected++
		}
	}
	return corrected, nil
}

// Export returns a whole-entity snapshot of all stored data.
func (s *PortfolioService) Export(ctx context.Context) (model.Snapshot, error) {
	var portfolios []model.Portfolio
	var contributions []model.Contribution

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		portfolios, err = s.portfolios.GetAllPortfolios(gctx)
		return apperrors.NewStorageError("load portfolios", err)
	})
	g.Go(func() error {
		var err error
		contributions, err = s.contributions.GetAllContributions(gctx)
		return apperrors.NewStorageError("load contributions", err)
	})
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		Portfolios:    portfolios,
		Contributions: contributions,
		ExportedAt:    s.now().UTC(),
	}, nil
}

// prefixFields rekeys the fields of a ValidationError so they point into a list.
func prefixFields(err error, prefix string) error {
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve.Fields))
	for k, v := range ve.Fields {
		fields[prefix+k] = v
	}
	return &apperrors.ValidationError{Fields: fields}
}

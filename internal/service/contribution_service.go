package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/precision"
)

// ContributionService records deposits against portfolios and keeps every
// portfolio's cached total invested equal to the sum of its contributions.
//
// Each mutation is a sequence of two writes (contribution, then portfolio)
// that is not transactional. The portfolio total is always recomputed from
// the full contribution set, so a failed second write heals on the next
// mutation or reconcile run.
type ContributionService struct {
	portfolios    PortfolioStore
	contributions ContributionStore
	locks         *PortfolioLocks
	seed          model.SeedConfig
	now           func() time.Time
}

// NewContributionService creates a new ContributionService.
func NewContributionService(portfolios PortfolioStore, contributions ContributionStore, locks *PortfolioLocks, seed model.SeedConfig) *ContributionService {
	return &ContributionService{
		portfolios:    portfolios,
		contributions: contributions,
		locks:         locks,
		seed:          seed,
		now:           time.Now,
	}
}

// AddContribution records a manual deposit. When breakdown is empty the
// deposit is split by the portfolio's current asset weights.
func (s *ContributionService) AddContribution(ctx context.Context, portfolioID string, amount float64, breakdown []model.ContributionAsset) (model.Contribution, error) {
	return s.addContribution(ctx, portfolioID, amount, breakdown, model.ContributionManual)
}

func (s *ContributionService) addContribution(ctx context.Context, portfolioID string, amount float64, breakdown []model.ContributionAsset, typ model.ContributionType) (model.Contribution, error) {
	if err := validateAmount("amount", amount); err != nil {
		return model.Contribution{}, err
	}
	explicit, err := normalizeBreakdown(amount, breakdown)
	if err != nil {
		return model.Contribution{}, err
	}

	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Contribution{}, apperrors.NewStorageError("load portfolio", err)
	}

	if len(explicit) == 0 {
		explicit = breakdownByWeights(amount, p.Assets)
	}

	c := model.Contribution{
		ID:          uuid.New().String(),
		PortfolioID: p.ID,
		Amount:      round(amount),
		Assets:      explicit,
		Date:        s.now().UTC(),
		Type:        typ,
	}
	if err := s.contributions.SaveContribution(ctx, c); err != nil {
		return model.Contribution{}, apperrors.NewStorageError("save contribution", err)
	}

	if _, err := syncTotalInvested(ctx, s.portfolios, s.contributions, p.ID); err != nil {
		return model.Contribution{}, err
	}

	log.Info().
		Str("contribution_id", c.ID).
		Str("portfolio_id", p.ID).
		Float64("amount", c.Amount).
		Str("type", string(typ)).
		Msg("recorded contribution")
	return c, nil
}

// EditContribution changes the amount of a contribution. Every stored
// per-asset amount is rescaled by newAmount/oldAmount, so relative asset
// shares are preserved regardless of the portfolio's current weights.
func (s *ContributionService) EditContribution(ctx context.Context, contributionID string, newAmount float64) (model.Contribution, error) {
	if err := validateAmount("amount", newAmount); err != nil {
		return model.Contribution{}, err
	}

	c, err := s.contributions.GetContribution(ctx, contributionID)
	if err != nil {
		return model.Contribution{}, apperrors.NewStorageError("load contribution", err)
	}

	unlock := s.locks.Lock(c.PortfolioID)
	defer unlock()

	// Re-read under the lock; a concurrent edit may have won the race.
	c, err = s.contributions.GetContribution(ctx, contributionID)
	if err != nil {
		return model.Contribution{}, apperrors.NewStorageError("load contribution", err)
	}

	ratio := newAmount / c.Amount
	for i := range c.Assets {
		c.Assets[i].Amount = round(c.Assets[i].Amount * ratio)
	}
	oldAmount := c.Amount
	c.Amount = round(newAmount)

	if err := s.contributions.SaveContribution(ctx, c); err != nil {
		return model.Contribution{}, apperrors.NewStorageError("save contribution", err)
	}

	if _, err := syncTotalInvested(ctx, s.portfolios, s.contributions, c.PortfolioID); err != nil {
		return model.Contribution{}, err
	}

	log.Info().
		Str("contribution_id", c.ID).
		Float64("old_amount", oldAmount).
		Float64("new_amount", c.Amount).
		Msg("edited contribution")
	return c, nil
}

// DeleteContribution removes a contribution and recomputes its portfolio's total.
func (s *ContributionService) DeleteContribution(ctx context.Context, contributionID string) error {
	c, err := s.contributions.GetContribution(ctx, contributionID)
	if err != nil {
		return apperrors.NewStorageError("load contribution", err)
	}

	unlock := s.locks.Lock(c.PortfolioID)
	defer unlock()

	if err := s.contributions.DeleteContribution(ctx, contributionID); err != nil {
		return apperrors.NewStorageError("delete contribution", err)
	}

	if _, err := syncTotalInvested(ctx, s.portfolios, s.contributions, c.PortfolioID); err != nil {
		return err
	}

	log.Info().Str("contribution_id", c.ID).Str("portfolio_id", c.PortfolioID).Msg("deleted contribution")
	return nil
}

// GetContribution returns a single contribution.
func (s *ContributionService) GetContribution(ctx context.Context, contributionID string) (model.Contribution, error) {
	c, err := s.contributions.GetContribution(ctx, contributionID)
	if err != nil {
		return model.Contribution{}, apperrors.NewStorageError("load contribution", err)
	}
	return c, nil
}

// ListContributions returns the contributions of one portfolio, or of all
// portfolios when portfolioID is empty, newest first.
func (s *ContributionService) ListContributions(ctx context.Context, portfolioID string) ([]model.Contribution, error) {
	if portfolioID == "" {
		contributions, err := s.contributions.GetAllContributions(ctx)
		if err != nil {
			return nil, apperrors.NewStorageError("load contributions", err)
		}
		return contributions, nil
	}

	if _, err := s.portfolios.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, apperrors.NewStorageError("load portfolio", err)
	}
	contributions, err := s.contributions.GetContributionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, apperrors.NewStorageError("load contributions", err)
	}
	return contributions, nil
}

// DistributeAcrossPortfolios plans how a combined deposit splits over the
// portfolios by their broker's configured percentage. Portfolios whose broker
// has no seed entry are skipped. Nothing is persisted.
func (s *ContributionService) DistributeAcrossPortfolios(ctx context.Context, totalAmount float64) ([]model.Distribution, error) {
	if err := validateAmount("totalAmount", totalAmount); err != nil {
		return nil, err
	}

	portfolios, err := s.portfolios.GetAllPortfolios(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("load portfolios", err)
	}

	distributions := []model.Distribution{}
	for _, p := range portfolios {
		broker, ok := s.seed.Broker(p.Broker)
		if !ok {
			log.Debug().Str("portfolio_id", p.ID).Str("broker", p.Broker).Msg("no distribution share configured, skipping")
			continue
		}
		amount := totalAmount * broker.Percentage
		distributions = append(distributions, model.Distribution{
			PortfolioID: p.ID,
			Broker:      p.Broker,
			Amount:      round(amount),
			Assets:      breakdownByWeights(amount, p.Assets),
		})
	}
	return distributions, nil
}

// CommitDistribution records each planned distribution as a contribution of
// type distributed. It stops at the first failure and returns the
// contributions recorded so far together with the error.
func (s *ContributionService) CommitDistribution(ctx context.Context, distributions []model.Distribution) ([]model.Contribution, error) {
	if len(distributions) == 0 {
		return nil, apperrors.NewValidationError("distributions", "at least one distribution is required")
	}

	committed := make([]model.Contribution, 0, len(distributions))
	for i, d := range distributions {
		if d.Amount <= 0 {
			// A zero share (broker at 0%) has nothing to record.
			continue
		}
		c, err := s.addContribution(ctx, d.PortfolioID, d.Amount, d.Assets, model.ContributionDistributed)
		if err != nil {
			return committed, prefixFields(err, fmt.Sprintf("distributions[%d].", i))
		}
		committed = append(committed, c)
	}
	return committed, nil
}

// validateAmount checks the amount as it will be stored: a positive value
// below half a cent rounds to 0.00 and is rejected as well.
func validateAmount(field string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return apperrors.NewValidationError(field, "amount must be greater than 0")
	}
	if round(amount) <= 0 {
		return apperrors.NewValidationError(field, "amount must be at least 0.01")
	}
	return nil
}

// normalizeBreakdown validates an explicit per-asset breakdown and fills in
// missing weights from the amounts.
func normalizeBreakdown(amount float64, breakdown []model.ContributionAsset) ([]model.ContributionAsset, error) {
	if len(breakdown) == 0 {
		return nil, nil
	}

	out := make([]model.ContributionAsset, len(breakdown))
	errs := make(map[string]string)
	for i, a := range breakdown {
		a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
		a.Name = strings.TrimSpace(a.Name)
		if a.Symbol == "" {
			errs[fmt.Sprintf("assets[%d].symbol", i)] = "symbol is required"
		}
		if a.Amount < 0 {
			errs[fmt.Sprintf("assets[%d].amount", i)] = "amount cannot be negative"
		}
		if a.Weight < 0 || a.Weight > 1 {
			errs[fmt.Sprintf("assets[%d].weight", i)] = "weight must be between 0 and 1"
		}
		if a.Weight == 0 {
			a.Weight = precision.Weight(a.Amount / amount)
		}
		a.Amount = round(a.Amount)
		out[i] = a
	}
	if len(errs) > 0 {
		return nil, &apperrors.ValidationError{Fields: errs}
	}
	return out, nil
}

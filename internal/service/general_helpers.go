package service

import (
	"context"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/precision"
)

// round rounds a monetary value to two decimal places, half away from zero.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(1.005)       // returns 1.01
//	round(-1.005)      // returns -1.01
func round(value float64) float64 {
	return precision.Money(value)
}

// sumContributions adds up contribution amounts without intermediate rounding.
func sumContributions(contributions []model.Contribution) float64 {
	var total float64
	for _, c := range contributions {
		total += c.Amount
	}
	return total
}

// contributionTotal returns the sum of all contributions of a portfolio,
// the source of truth for its invested total.
func contributionTotal(ctx context.Context, store ContributionStore, portfolioID string) (float64, error) {
	contributions, err := store.GetContributionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return 0, apperrors.NewStorageError("load contributions", err)
	}
	return round(sumContributions(contributions)), nil
}

// syncTotalInvested recomputes the cached total of a portfolio from its
// contributions and persists it. The caller holds the portfolio lock.
func syncTotalInvested(ctx context.Context, portfolios PortfolioStore, contributions ContributionStore, portfolioID string) (model.Portfolio, error) {
	p, err := portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("load portfolio", err)
	}

	total, err := contributionTotal(ctx, contributions, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	p.TotalInvested = total
	if err := portfolios.SavePortfolio(ctx, p); err != nil {
		return model.Portfolio{}, apperrors.NewStorageError("save portfolio", err)
	}
	return p, nil
}

// breakdownByWeights splits amount across the assets by their current weights.
func breakdownByWeights(amount float64, assets []model.Asset) []model.ContributionAsset {
	breakdown := make([]model.ContributionAsset, 0, len(assets))
	for _, a := range assets {
		breakdown = append(breakdown, model.ContributionAsset{
			Symbol: a.Symbol,
			Name:   a.Name,
			Amount: round(amount * a.Weight),
			Weight: a.Weight,
		})
	}
	return breakdown
}

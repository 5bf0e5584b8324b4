package service

import (
	"context"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// MonthlyDividends estimates the monthly dividend income of a portfolio with
// totalInvested spread over its assets by weight. The sum is rounded once.
func MonthlyDividends(p model.Portfolio, totalInvested float64) float64 {
	var monthly float64
	for _, a := range p.Assets {
		if a.DividendYield <= 0 {
			continue
		}
		assetValue := totalInvested * a.Weight
		monthly += assetValue * a.DividendYield / 12
	}
	return round(monthly)
}

// DividendService estimates dividend income from asset yields.
type DividendService struct {
	portfolios    PortfolioStore
	contributions ContributionStore
}

// NewDividendService creates a new DividendService.
func NewDividendService(portfolios PortfolioStore, contributions ContributionStore) *DividendService {
	return &DividendService{
		portfolios:    portfolios,
		contributions: contributions,
	}
}

// PortfolioDividends returns the estimated monthly and annual income of a
// portfolio and its yield on the amount invested. Monthly and annual are
// money values rounded to cents; the yield percentage is the unrounded ratio.
func (s *DividendService) PortfolioDividends(ctx context.Context, portfolioID string) (model.PortfolioDividends, error) {
	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.PortfolioDividends{}, apperrors.NewStorageError("load portfolio", err)
	}

	invested, err := contributionTotal(ctx, s.contributions, portfolioID)
	if err != nil {
		return model.PortfolioDividends{}, err
	}

	monthly := MonthlyDividends(p, invested)
	annual := round(monthly * 12)

	var yield float64
	if invested > 0 {
		yield = annual / invested * 100
	}

	return model.PortfolioDividends{
		PortfolioID:     p.ID,
		Monthly:         monthly,
		Annual:          annual,
		YieldPercentage: yield,
	}, nil
}

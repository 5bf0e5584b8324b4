package service

import (
	"context"

	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// PortfolioStore is the persistence the services need for portfolios.
// Implementations return apperrors.ErrPortfolioNotFound for unknown ids.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error)
	GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error)
	SavePortfolio(ctx context.Context, p model.Portfolio) error
	DeletePortfolio(ctx context.Context, portfolioID string) error
}

// ContributionStore is the persistence the services need for contributions.
// Implementations return apperrors.ErrContributionNotFound for unknown ids
// and list contributions newest first.
type ContributionStore interface {
	GetContribution(ctx context.Context, contributionID string) (model.Contribution, error)
	GetContributionsByPortfolio(ctx context.Context, portfolioID string) ([]model.Contribution, error)
	GetAllContributions(ctx context.Context) ([]model.Contribution, error)
	SaveContribution(ctx context.Context, c model.Contribution) error
	DeleteContribution(ctx context.Context, contributionID string) error
}

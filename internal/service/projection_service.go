package service

import (
	"context"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

const (
	// DefaultProjectionYears is used when no positive horizon is requested.
	DefaultProjectionYears = 10
	// MaxProjectionYears bounds the simulated horizon.
	MaxProjectionYears = 50
)

// Scenarios are the fixed annual returns every portfolio is projected under.
var Scenarios = []model.Scenario{
	{Name: "conservative", AnnualReturn: 0.07},
	{Name: "moderate", AnnualReturn: 0.08},
	{Name: "optimistic", AnnualReturn: 0.09},
}

// Simulate runs a month-by-month compound growth simulation. Each month the
// deposit is added first and the value is then compounded at annualReturn/12,
// so a deposit earns interest in the month it is made. One point is emitted
// per completed year; only emitted values are rounded.
func Simulate(initialAmount, monthlyContribution float64, years int, annualReturn float64) []model.ProjectionPoint {
	if years <= 0 {
		return []model.ProjectionPoint{}
	}

	monthlyRate := annualReturn / 12
	invested := initialAmount
	value := initialAmount

	points := make([]model.ProjectionPoint, 0, years)
	for month := 1; month <= years*12; month++ {
		invested += monthlyContribution
		value += monthlyContribution
		value *= 1 + monthlyRate

		if month%12 == 0 {
			points = append(points, model.ProjectionPoint{
				Year:           month / 12,
				TotalInvested:  round(invested),
				ProjectedValue: round(value),
				Gains:          round(value - invested),
			})
		}
	}
	return points
}

// ProjectionService projects portfolios forward under the fixed scenarios.
type ProjectionService struct {
	portfolios    PortfolioStore
	contributions ContributionStore
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(portfolios PortfolioStore, contributions ContributionStore) *ProjectionService {
	return &ProjectionService{
		portfolios:    portfolios,
		contributions: contributions,
	}
}

// ProjectPortfolio simulates a portfolio starting from the sum of its
// contributions with its monthly contribution as the recurring deposit.
// A non-positive years defaults to DefaultProjectionYears.
func (s *ProjectionService) ProjectPortfolio(ctx context.Context, portfolioID string, years int) (model.PortfolioProjection, error) {
	if years <= 0 {
		years = DefaultProjectionYears
	}
	if years > MaxProjectionYears {
		return model.PortfolioProjection{}, apperrors.NewValidationError("years", "years must be at most %d", MaxProjectionYears)
	}

	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return model.PortfolioProjection{}, apperrors.NewStorageError("load portfolio", err)
	}

	initial, err := contributionTotal(ctx, s.contributions, portfolioID)
	if err != nil {
		return model.PortfolioProjection{}, err
	}

	projection := model.PortfolioProjection{
		PortfolioID:         p.ID,
		Years:               years,
		InitialAmount:       initial,
		MonthlyContribution: p.MonthlyContribution,
		Scenarios:           make(map[string][]model.ProjectionPoint, len(Scenarios)),
	}
	for _, sc := range Scenarios {
		projection.Scenarios[sc.Name] = Simulate(initial, p.MonthlyContribution, years, sc.AnnualReturn)
	}
	return projection, nil
}

package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

const (
	// milestoneWindow is how far past a milestone its alert keeps firing.
	milestoneWindow = 200
	// dividendAlertThreshold is the monthly income from which the dividend alert fires.
	dividendAlertThreshold = 10
)

// Milestones are the invested totals that trigger a milestone alert, ascending.
var Milestones = []float64{500, 1000, 2500, 5000, 10000}

// SummaryService aggregates all portfolios and derives alerts from the result.
type SummaryService struct {
	portfolios    PortfolioStore
	contributions ContributionStore
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(portfolios PortfolioStore, contributions ContributionStore) *SummaryService {
	return &SummaryService{
		portfolios:    portfolios,
		contributions: contributions,
	}
}

// OverallSummary sums every portfolio's contributions independently of the
// cached totals and estimates the combined dividend income.
func (s *SummaryService) OverallSummary(ctx context.Context) (model.Summary, error) {
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
		return model.Summary{}, err
	}

	invested := make(map[string]float64, len(portfolios))
	for _, c := range contributions {
		invested[c.PortfolioID] += c.Amount
	}

	var total, monthly float64
	for _, p := range portfolios {
		total += invested[p.ID]
		monthly += MonthlyDividends(p, invested[p.ID])
	}
	monthly = round(monthly)

	return model.Summary{
		TotalInvested:     round(total),
		PortfolioCount:    len(portfolios),
		MonthlyDividends:  monthly,
		AnnualDividends:   round(monthly * 12),
		ContributionCount: len(contributions),
	}, nil
}

// CheckAlerts evaluates the alerts for the current summary. Nothing is
// remembered between calls, so an alert fires again on every evaluation
// while its condition holds.
func (s *SummaryService) CheckAlerts(ctx context.Context) ([]model.Alert, error) {
	summary, err := s.OverallSummary(ctx)
	if err != nil {
		return nil, err
	}
	return Alerts(summary), nil
}

// Alerts derives the alerts for a summary.
func Alerts(summary model.Summary) []model.Alert {
	alerts := []model.Alert{}

	for _, m := range Milestones {
		if summary.TotalInvested >= m && summary.TotalInvested < m+milestoneWindow {
			alerts = append(alerts, model.Alert{
				Type:    model.AlertMilestone,
				Level:   "success",
				Message: fmt.Sprintf("Congratulations! You have reached $%.0f in total investments", m),
				Value:   m,
			})
		}
	}

	if summary.MonthlyDividends >= dividendAlertThreshold {
		alerts = append(alerts, model.Alert{
			Type:    model.AlertDividends,
			Level:   "info",
			Message: fmt.Sprintf("You are generating $%.2f per month in dividends", summary.MonthlyDividends),
			Value:   summary.MonthlyDividends,
		})
	}

	return alerts
}

package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults (two assets at 60/40)
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithBroker("hapi").
//	    WithAssets(testutil.Asset("O", 1, 0.053)).
//	    WithTotalInvested(500).
//	    Build(t, db)
type PortfolioBuilder struct {
	ID                  string
	Broker              string
	Name                string
	Assets              []model.Asset
	MonthlyContribution float64
	TotalInvested       float64
	CreatedDate         time.Time
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:     MakeID(),
		Broker: "etoro",
		Name:   MakePortfolioName("Test Portfolio"),
		Assets: []model.Asset{
			Asset("SPY", 0.6, 0),
			Asset("BND", 0.4, 0.03),
		},
		MonthlyContribution: 100,
		CreatedDate:         time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithBroker sets the broker key.
func (b *PortfolioBuilder) WithBroker(broker string) *PortfolioBuilder {
	b.Broker = broker
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithAssets replaces the asset list.
func (b *PortfolioBuilder) WithAssets(assets ...model.Asset) *PortfolioBuilder {
	b.Assets = assets
	return b
}

// WithMonthlyContribution sets the recurring deposit.
func (b *PortfolioBuilder) WithMonthlyContribution(amount float64) *PortfolioBuilder {
	b.MonthlyContribution = amount
	return b
}

// WithTotalInvested sets the cached total without creating contributions,
// which is how tests simulate drift.
func (b *PortfolioBuilder) WithTotalInvested(amount float64) *PortfolioBuilder {
	b.TotalInvested = amount
	return b
}

// WithCreatedDate sets the creation date.
func (b *PortfolioBuilder) WithCreatedDate(date time.Time) *PortfolioBuilder {
	b.CreatedDate = date
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := model.Portfolio{
		ID:                  b.ID,
		Broker:              b.Broker,
		Name:                b.Name,
		Assets:              append([]model.Asset{}, b.Assets...),
		MonthlyContribution: b.MonthlyContribution,
		TotalInvested:       b.TotalInvested,
		CreatedDate:         b.CreatedDate,
	}

	if err := repository.NewPortfolioRepository(db).SavePortfolio(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return p
}

// Asset returns a test asset with a generated name.
func Asset(symbol string, weight, dividendYield float64) model.Asset {
	return model.Asset{
		Symbol:        symbol,
		Name:          symbol + " Holding",
		Type:          "ETF",
		Weight:        weight,
		DividendYield: dividendYield,
	}
}

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names and
// increasing creation dates.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	portfolios := make([]model.Portfolio, count)
	for i := range count {
		portfolios[i] = NewPortfolio().WithCreatedDate(base.Add(time.Duration(i) * time.Hour)).Build(t, db)
	}
	return portfolios
}

// ContributionBuilder provides a fluent interface for creating test contributions.
// Build writes the contribution row only; the portfolio total is left as is.
//
// Example usage:
//
//	c := testutil.NewContribution(portfolio.ID).
//	    WithAmount(250).
//	    WithAssets(model.ContributionAsset{Symbol: "SPY", Amount: 250, Weight: 1}).
//	    Build(t, db)
type ContributionBuilder struct {
	ID          string
	PortfolioID string
	Amount      float64
	Assets      []model.ContributionAsset
	Date        time.Time
	Type        model.ContributionType
}

// NewContribution creates a ContributionBuilder with sensible defaults.
func NewContribution(portfolioID string) *ContributionBuilder {
	return &ContributionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Amount:      100,
		Assets:      []model.ContributionAsset{},
		Date:        time.Now().UTC(),
		Type:        model.ContributionManual,
	}
}

// WithID sets a custom ID.
func (b *ContributionBuilder) WithID(id string) *ContributionBuilder {
	b.ID = id
	return b
}

// WithAmount sets the amount.
func (b *ContributionBuilder) WithAmount(amount float64) *ContributionBuilder {
	b.Amount = amount
	return b
}

// WithAssets sets the per-asset breakdown.
func (b *ContributionBuilder) WithAssets(assets ...model.ContributionAsset) *ContributionBuilder {
	b.Assets = assets
	return b
}

// WithDate sets the contribution date.
func (b *ContributionBuilder) WithDate(date time.Time) *ContributionBuilder {
	b.Date = date
	return b
}

// WithType sets the contribution type.
func (b *ContributionBuilder) WithType(typ model.ContributionType) *ContributionBuilder {
	b.Type = typ
	return b
}

// Build creates the contribution in the database and returns it.
func (b *ContributionBuilder) Build(t *testing.T, db *sql.DB) model.Contribution {
	t.Helper()

	c := model.Contribution{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Amount:      b.Amount,
		Assets:      append([]model.ContributionAsset{}, b.Assets...),
		Date:        b.Date,
		Type:        b.Type,
	}

	if err := repository.NewContributionRepository(db).SaveContribution(context.Background(), c); err != nil {
		t.Fatalf("Failed to create test contribution: %v", err)
	}

	return c
}

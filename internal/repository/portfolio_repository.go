package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio and portfolio_asset tables.
// Assets are stored with their position so the user-defined order survives a round trip.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetAllPortfolios retrieves every portfolio with its assets, oldest first.
// Returns an empty slice if there are none.
func (r *PortfolioRepository) GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, broker, name, monthly_contribution, total_invested, created_date
		FROM portfolio
		ORDER BY created_date, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}
	rows.Close()

	if len(portfolios) == 0 {
		return portfolios, nil
	}

	ids := make([]string, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.ID
	}
	assets, err := loadAssets(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range portfolios {
		portfolios[i].Assets = assets[portfolios[i].ID]
	}

	return portfolios, nil
}

// GetPortfolio retrieves a single portfolio with its assets.
// Returns apperrors.ErrPortfolioNotFound when the id is unknown.
func (r *PortfolioRepository) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT id, broker, name, monthly_contribution, total_invested, created_date
		FROM portfolio
		WHERE id = ?
	`

	p, err := scanPortfolio(r.db.QueryRowContext(ctx, query, portfolioID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}

	assets, err := loadAssets(ctx, r.db, []string{p.ID})
	if err != nil {
		return model.Portfolio{}, err
	}
	p.Assets = assets[p.ID]

	return p, nil
}

// SavePortfolio inserts or updates a portfolio and replaces its asset list in one transaction.
func (r *PortfolioRepository) SavePortfolio(ctx context.Context, p model.Portfolio) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO portfolio (id, broker, name, monthly_contribution, total_invested, created_date)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				broker = excluded.broker,
				name = excluded.name,
				monthly_contribution = excluded.monthly_contribution,
				total_invested = excluded.total_invested
		`, p.ID, p.Broker, p.Name, p.MonthlyContribution, p.TotalInvested, FormatTime(p.CreatedDate))
		if err != nil {
			return fmt.Errorf("failed to upsert portfolio: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM portfolio_asset WHERE portfolio_id = ?", p.ID); err != nil {
			return fmt.Errorf("failed to clear portfolio assets: %w", err)
		}

		for i, a := range p.Assets {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO portfolio_asset (portfolio_id, position, symbol, name, asset_type, weight, dividend_yield, amount)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, p.ID, i, a.Symbol, a.Name, a.Type, a.Weight, a.DividendYield, a.Amount)
			if err != nil {
				return fmt.Errorf("failed to insert portfolio asset %s: %w", a.Symbol, err)
			}
		}
		return nil
	})
}

// DeletePortfolio removes a portfolio and its assets.
// Returns apperrors.ErrPortfolioNotFound when the id is unknown.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, portfolioID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM portfolio WHERE id = ?", portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(s scanner) (model.Portfolio, error) {
	var p model.Portfolio
	var created string

	err := s.Scan(&p.ID, &p.Broker, &p.Name, &p.MonthlyContribution, &p.TotalInvested, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, err
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}

	p.CreatedDate, err = ParseTime(created)
	if err != nil {
		return model.Portfolio{}, err
	}
	p.Assets = []model.Asset{}
	return p, nil
}

// loadAssets returns the ordered assets of the given portfolios keyed by portfolio id.
// Portfolios without assets get an empty, non-nil slice.
func loadAssets(ctx context.Context, q querier, portfolioIDs []string) (map[string][]model.Asset, error) {
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT portfolio_id, symbol, name, asset_type, weight, dividend_yield, amount
		FROM portfolio_asset
		WHERE portfolio_id IN (` + placeholders(len(portfolioIDs)) + `)
		ORDER BY portfolio_id, position
	`

	args := make([]any, len(portfolioIDs))
	for i, id := range portfolioIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_asset table: %w", err)
	}
	defer rows.Close()

	assets := make(map[string][]model.Asset, len(portfolioIDs))
	for _, id := range portfolioIDs {
		assets[id] = []model.Asset{}
	}

	for rows.Next() {
		var portfolioID string
		var a model.Asset
		if err := rows.Scan(&portfolioID, &a.Symbol, &a.Name, &a.Type, &a.Weight, &a.DividendYield, &a.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_asset table results: %w", err)
		}
		assets[portfolioID] = append(assets[portfolioID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_asset table: %w", err)
	}

	return assets, nil
}

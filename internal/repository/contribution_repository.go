package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// ContributionRepository provides data access methods for the contribution and contribution_asset tables.
type ContributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new ContributionRepository with the provided database connection.
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

const contributionColumns = "id, portfolio_id, amount, date, type"

// GetContribution retrieves a single contribution with its asset breakdown.
// Returns apperrors.ErrContributionNotFound when the id is unknown.
func (r *ContributionRepository) GetContribution(ctx context.Context, contributionID string) (model.Contribution, error) {
	query := "SELECT " + contributionColumns + " FROM contribution WHERE id = ?"

	c, err := scanContribution(r.db.QueryRowContext(ctx, query, contributionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contribution{}, apperrors.ErrContributionNotFound
	}
	if err != nil {
		return model.Contribution{}, err
	}

	breakdown, err := loadContributionAssets(ctx, r.db, []string{c.ID})
	if err != nil {
		return model.Contribution{}, err
	}
	c.Assets = breakdown[c.ID]

	return c, nil
}

// GetContributionsByPortfolio retrieves the contributions of one portfolio, newest first.
func (r *ContributionRepository) GetContributionsByPortfolio(ctx context.Context, portfolioID string) ([]model.Contribution, error) {
	query := "SELECT " + contributionColumns + " FROM contribution WHERE portfolio_id = ? ORDER BY date DESC, id"
	return r.queryContributions(ctx, query, portfolioID)
}

// GetAllContributions retrieves every contribution, newest first.
func (r *ContributionRepository) GetAllContributions(ctx context.Context) ([]model.Contribution, error) {
	query := "SELECT " + contributionColumns + " FROM contribution ORDER BY date DESC, id"
	return r.queryContributions(ctx, query)
}

// SaveContribution inserts or updates a contribution and replaces its breakdown in one transaction.
func (r *ContributionRepository) SaveContribution(ctx context.Context, c model.Contribution) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contribution (id, portfolio_id, amount, date, type)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				amount = excluded.amount,
				date = excluded.date,
				type = excluded.type
		`, c.ID, c.PortfolioID, c.Amount, FormatTime(c.Date), string(c.Type))
		if err != nil {
			return fmt.Errorf("failed to upsert contribution: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM contribution_asset WHERE contribution_id = ?", c.ID); err != nil {
			return fmt.Errorf("failed to clear contribution assets: %w", err)
		}

		for i, a := range c.Assets {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO contribution_asset (contribution_id, position, symbol, name, amount, weight)
				VALUES (?, ?, ?, ?, ?, ?)
			`, c.ID, i, a.Symbol, a.Name, a.Amount, a.Weight)
			if err != nil {
				return fmt.Errorf("failed to insert contribution asset %s: %w", a.Symbol, err)
			}
		}
		return nil
	})
}

// DeleteContribution removes a contribution and its breakdown.
// Returns apperrors.ErrContributionNotFound when the id is unknown.
func (r *ContributionRepository) DeleteContribution(ctx context.Context, contributionID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM contribution WHERE id = ?", contributionID)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.ErrContributionNotFound
	}
	return nil
}

// queryContributions runs a contribution query and attaches the breakdowns.
// Rows are fully read and closed before the second query runs.
func (r *ContributionRepository) queryContributions(ctx context.Context, query string, args ...any) ([]model.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contribution table: %w", err)
	}

	contributions := []model.Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating contribution table: %w", err)
	}
	rows.Close()

	if len(contributions) == 0 {
		return contributions, nil
	}

	ids := make([]string, len(contributions))
	for i, c := range contributions {
		ids[i] = c.ID
	}
	breakdown, err := loadContributionAssets(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range contributions {
		contributions[i].Assets = breakdown[contributions[i].ID]
	}

	return contributions, nil
}

func scanContribution(s scanner) (model.Contribution, error) {
	var c model.Contribution
	var date, typ string

	err := s.Scan(&c.ID, &c.PortfolioID, &c.Amount, &date, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contribution{}, err
	}
	if err != nil {
		return model.Contribution{}, fmt.Errorf("failed to scan contribution table results: %w", err)
	}

	c.Date, err = ParseTime(date)
	if err != nil {
		return model.Contribution{}, err
	}
	c.Type = model.ContributionType(typ)
	c.Assets = []model.ContributionAsset{}
	return c, nil
}

func loadContributionAssets(ctx context.Context, q querier, contributionIDs []string) (map[string][]model.ContributionAsset, error) {
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `
		SELECT contribution_id, symbol, name, amount, weight
		FROM contribution_asset
		WHERE contribution_id IN (` + placeholders(len(contributionIDs)) + `)
		ORDER BY contribution_id, position
	`

	args := make([]any, len(contributionIDs))
	for i, id := range contributionIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contribution_asset table: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string][]model.ContributionAsset, len(contributionIDs))
	for _, id := range contributionIDs {
		breakdown[id] = []model.ContributionAsset{}
	}

	for rows.Next() {
		var contributionID string
		var a model.ContributionAsset
		if err := rows.Scan(&contributionID, &a.Symbol, &a.Name, &a.Amount, &a.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan contribution_asset table results: %w", err)
		}
		breakdown[contributionID] = append(breakdown[contributionID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contribution_asset table: %w", err)
	}

	return breakdown, nil
}

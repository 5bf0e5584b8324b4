package testutil

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Investment-Planner-Backend/internal/config"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/repository"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
)

// Services bundles every service wired against one test database, sharing
// a single lock set the way the server does.
type Services struct {
	Portfolio    *service.PortfolioService
	Contribution *service.ContributionService
	Projection   *service.ProjectionService
	Dividend     *service.DividendService
	Summary      *service.SummaryService
	System       *service.SystemService
}

// NewTestServices wires all services against db with the default seed.
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return NewTestServicesWithSeed(t, db, config.DefaultSeed())
}

// NewTestServicesWithSeed wires all services against db with a custom seed.
func NewTestServicesWithSeed(t *testing.T, db *sql.DB, seed model.SeedConfig) *Services {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	locks := service.NewPortfolioLocks()

	return &Services{
		Portfolio:    service.NewPortfolioService(portfolioRepo, contributionRepo, locks, seed),
		Contribution: service.NewContributionService(portfolioRepo, contributionRepo, locks, seed),
		Projection:   service.NewProjectionService(portfolioRepo, contributionRepo),
		Dividend:     service.NewDividendService(portfolioRepo, contributionRepo),
		Summary:      service.NewSummaryService(portfolioRepo, contributionRepo),
		System:       service.NewSystemService(db),
	}
}

// NewTestPortfolioService creates a PortfolioService against db with the default seed.
func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()
	return NewTestServices(t, db).Portfolio
}

// NewTestContributionService creates a ContributionService against db with the default seed.
func NewTestContributionService(t *testing.T, db *sql.DB) *service.ContributionService {
	t.Helper()
	return NewTestServices(t, db).Contribution
}

// ErrStorageDown is returned by FailingStore.
var ErrStorageDown = errors.New("storage unavailable")

// FailingStore wraps the real repositories and fails selected operations,
// for exercising storage failure paths.
//
// Example usage:
//
//	store := testutil.NewFailingStore(db)
//	store.FailSavePortfolio = true
type FailingStore struct {
	*repository.PortfolioRepository
	Contributions *repository.ContributionRepository

	FailSavePortfolio     bool
	FailSaveContribution  bool
	FailLoadContributions bool
}

// NewFailingStore creates a FailingStore that fails nothing until configured.
func NewFailingStore(db *sql.DB) *FailingStore {
	return &FailingStore{
		PortfolioRepository: repository.NewPortfolioRepository(db),
		Contributions:       repository.NewContributionRepository(db),
	}
}

// SavePortfolio fails when FailSavePortfolio is set.
func (f *FailingStore) SavePortfolio(ctx context.Context, p model.Portfolio) error {
	if f.FailSavePortfolio {
		return ErrStorageDown
	}
	return f.PortfolioRepository.SavePortfolio(ctx, p)
}

// GetContribution delegates to the contribution repository.
func (f *FailingStore) GetContribution(ctx context.Context, id string) (model.Contribution, error) {
	return f.Contributions.GetContribution(ctx, id)
}

// GetContributionsByPortfolio fails when FailLoadContributions is set.
func (f *FailingStore) GetContributionsByPortfolio(ctx context.Context, portfolioID string) ([]model.Contribution, error) {
	if f.FailLoadContributions {
		return nil, ErrStorageDown
	}
	return f.Contributions.GetContributionsByPortfolio(ctx, portfolioID)
}

// GetAllContributions fails when FailLoadContributions is set.
func (f *FailingStore) GetAllContributions(ctx context.Context) ([]model.Contribution, error) {
	if f.FailLoadContributions {
		return nil, ErrStorageDown
	}
	return f.Contributions.GetAllContributions(ctx)
}

// SaveContribution fails when FailSaveContribution is set.
func (f *FailingStore) SaveContribution(ctx context.Context, c model.Contribution) error {
	if f.FailSaveContribution {
		return ErrStorageDown
	}
	return f.Contributions.SaveContribution(ctx, c)
}

// DeleteContribution delegates to the contribution repository.
func (f *FailingStore) DeleteContribution(ctx context.Context, id string) error {
	return f.Contributions.DeleteContribution(ctx, id)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

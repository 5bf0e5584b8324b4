package service_test

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/config"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/repository"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
	"github.com/ndewijer/Investment-Planner-Backend/internal/testutil"
)

// TestContributionService_AddContribution tests recording a deposit.
//
// WHY: Every derived figure (projection start, dividends, summary) depends on
// the contribution set and the total cached from it.
func TestContributionService_AddContribution(t *testing.T) {
	ctx := context.Background()

	t.Run("splits by current weights and updates total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		c, err := svc.AddContribution(ctx, p.ID, 250, nil)
		if err != nil {
			t.Fatalf("AddContribution() returned unexpected error: %v", err)
		}

		if c.Type != model.ContributionManual {
			t.Errorf("Expected manual contribution, got %s", c.Type)
		}
		if len(c.Assets) != 2 {
			t.Fatalf("Expected 2 breakdown rows, got %d", len(c.Assets))
		}
		if c.Assets[0].Symbol != "SPY" || c.Assets[0].Amount != 150 {
			t.Errorf("Expected SPY 150, got %s %v", c.Assets[0].Symbol, c.Assets[0].Amount)
		}
		if c.Assets[1].Amount != 100 {
			t.Errorf("Expected BND 100, got %v", c.Assets[1].Amount)
		}

		stored := mustPortfolio(t, db, p.ID)
		if stored.TotalInvested != 250 {
			t.Errorf("Expected total invested 250, got %v", stored.TotalInvested)
		}
	})

	t.Run("keeps an explicit breakdown", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		c, err := svc.AddContribution(ctx, p.ID, 100, []model.ContributionAsset{
			{Symbol: "spy", Name: "SPY Holding", Amount: 80},
			{Symbol: "BND", Name: "BND Holding", Amount: 20, Weight: 0.2},
		})
		if err != nil {
			t.Fatalf("AddContribution() returned unexpected error: %v", err)
		}

		if c.Assets[0].Symbol != "SPY" || c.Assets[0].Weight != 0.8 {
			t.Errorf("Expected SPY with derived weight 0.8, got %+v", c.Assets[0])
		}

		stored, err := svc.GetContribution(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetContribution() returned unexpected error: %v", err)
		}
		if len(stored.Assets) != 2 || stored.Assets[0].Amount != 80 {
			t.Errorf("Expected explicit breakdown to be stored, got %+v", stored.Assets)
		}
	})

	t.Run("adds amount to previous total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		for _, amount := range []float64{100, 33.33, 0.01} {
			before := mustPortfolio(t, db, p.ID).TotalInvested
			if _, err := svc.AddContribution(ctx, p.ID, amount, nil); err != nil {
				t.Fatalf("AddContribution(%v) returned unexpected error: %v", amount, err)
			}
			after := mustPortfolio(t, db, p.ID).TotalInvested
			if math.Abs(after-(before+amount)) > 1e-9 {
				t.Errorf("Expected %v + %v, got %v", before, amount, after)
			}
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		for _, amount := range []float64{0, -10, math.NaN()} {
			_, err := svc.AddContribution(ctx, p.ID, amount, nil)
			if !apperrors.IsValidation(err) {
				t.Errorf("AddContribution(%v): expected ValidationError, got %v", amount, err)
			}
		}
		testutil.AssertRowCount(t, db, "contribution", 0)
	})

	t.Run("rejects amount that rounds to zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		_, err := svc.AddContribution(ctx, p.ID, 0.004, nil)
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if apperrors.IsStorage(err) {
			t.Errorf("Expected no StorageError, got %v", err)
		}
		testutil.AssertRowCount(t, db, "contribution", 0)
		if got := mustPortfolio(t, db, p.ID).TotalInvested; got != 0 {
			t.Errorf("Expected total invested 0, got %v", got)
		}
	})

	t.Run("rejects negative breakdown amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		_, err := svc.AddContribution(ctx, p.ID, 100, []model.ContributionAsset{{Symbol: "SPY", Amount: -1}})
		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if _, ok := ve.Fields["assets[0].amount"]; !ok {
			t.Errorf("Expected error on assets[0].amount, got %v", ve.Fields)
		}
	})

	t.Run("returns not found for unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)

		_, err := svc.AddContribution(ctx, testutil.MakeID(), 100, nil)
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("concurrent deposits are not lost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.AddContribution(ctx, p.ID, 10, nil); err != nil {
					t.Errorf("AddContribution() returned unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := mustPortfolio(t, db, p.ID).TotalInvested; got != 200 {
			t.Errorf("Expected total invested 200, got %v", got)
		}
	})
}

// TestContributionService_StorageFailure tests the non-transactional write
// sequence.
//
// WHY: When the portfolio write fails after the contribution write, the
// caller must see a StorageError and a later recompute must heal the total.
func TestContributionService_StorageFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	p := testutil.NewPortfolio().Build(t, db)

	store := testutil.NewFailingStore(db)
	store.FailSavePortfolio = true
	locks := service.NewPortfolioLocks()
	failing := service.NewContributionService(store, store, locks, config.DefaultSeed())

	_, err := failing.AddContribution(ctx, p.ID, 100, nil)
	if !apperrors.IsStorage(err) {
		t.Fatalf("Expected StorageError, got %v", err)
	}
	if !errors.Is(err, testutil.ErrStorageDown) {
		t.Errorf("Expected cause to be kept, got %v", err)
	}

	testutil.AssertRowCount(t, db, "contribution", 1)
	if got := mustPortfolio(t, db, p.ID).TotalInvested; got != 0 {
		t.Errorf("Expected stale total 0, got %v", got)
	}

	svc := testutil.NewTestContributionService(t, db)
	if _, err := svc.AddContribution(ctx, p.ID, 50, nil); err != nil {
		t.Fatalf("AddContribution() returned unexpected error: %v", err)
	}
	if got := mustPortfolio(t, db, p.ID).TotalInvested; got != 150 {
		t.Errorf("Expected healed total 150, got %v", got)
	}
}

// TestContributionService_EditContribution tests proportional rescaling.
//
// WHY: A contribution is a snapshot; editing its amount must keep its own
// asset proportions, not pick up the portfolio's current weights.
func TestContributionService_EditContribution(t *testing.T) {
	ctx := context.Background()

	t.Run("rescales breakdown and recomputes total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().WithTotalInvested(300).Build(t, db)
		c := testutil.NewContribution(p.ID).
			WithAmount(200).
			WithAssets(
				model.ContributionAsset{Symbol: "SPY", Name: "SPY Holding", Amount: 150, Weight: 0.75},
				model.ContributionAsset{Symbol: "BND", Name: "BND Holding", Amount: 50, Weight: 0.25},
			).
			Build(t, db)
		testutil.NewContribution(p.ID).WithAmount(100).Build(t, db)

		edited, err := svc.EditContribution(ctx, c.ID, 100)
		if err != nil {
			t.Fatalf("EditContribution() returned unexpected error: %v", err)
		}

		if edited.Assets[0].Amount != 75 || edited.Assets[1].Amount != 25 {
			t.Errorf("Expected 75/25, got %v/%v", edited.Assets[0].Amount, edited.Assets[1].Amount)
		}
		if edited.Assets[0].Weight != 0.75 {
			t.Errorf("Expected weight to be kept, got %v", edited.Assets[0].Weight)
		}
		if got := mustPortfolio(t, db, p.ID).TotalInvested; got != 200 {
			t.Errorf("Expected total invested 200, got %v", got)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)
		c := testutil.NewContribution(p.ID).Build(t, db)

		_, err := svc.EditContribution(ctx, c.ID, 0)
		if !apperrors.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects amount that rounds to zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().Build(t, db)
		c := testutil.NewContribution(p.ID).WithAmount(50).Build(t, db)

		_, err := svc.EditContribution(ctx, c.ID, 0.004)
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}

		stored, err := svc.GetContribution(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetContribution() returned unexpected error: %v", err)
		}
		if stored.Amount != 50 {
			t.Errorf("Expected amount to stay 50, got %v", stored.Amount)
		}
	})

	t.Run("returns not found for unknown contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)

		_, err := svc.EditContribution(ctx, testutil.MakeID(), 10)
		if !errors.Is(err, apperrors.ErrContributionNotFound) {
			t.Errorf("Expected ErrContributionNotFound, got %v", err)
		}
	})
}

func TestContributionService_EditContribution_PreservesShares(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestContributionService(t, db)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("asset share of the amount is preserved", prop.ForAll(
		func(oldAmount, newAmount, share float64) bool {
			p := testutil.NewPortfolio().Build(t, db)
			first := math.Round(oldAmount*share*100) / 100
			c := testutil.NewContribution(p.ID).
				WithAmount(oldAmount).
				WithAssets(
					model.ContributionAsset{Symbol: "SPY", Name: "SPY", Amount: first, Weight: share},
					model.ContributionAsset{Symbol: "BND", Name: "BND", Amount: oldAmount - first, Weight: 1 - share},
				).
				Build(t, db)

			edited, err := svc.EditContribution(ctx, c.ID, newAmount)
			if err != nil {
				return false
			}

			for i, a := range edited.Assets {
				before := c.Assets[i].Amount / oldAmount
				after := a.Amount / edited.Amount
				// Two-decimal rounding of the rescaled amount bounds the error.
				if math.Abs(before-after) > 0.01/edited.Amount {
					return false
				}
			}
			return mustPortfolio(t, db, p.ID).TotalInvested == edited.Amount
		},
		gen.Float64Range(1, 10000).Map(func(v float64) float64 { return math.Round(v*100) / 100 }),
		gen.Float64Range(1, 10000).Map(func(v float64) float64 { return math.Round(v*100) / 100 }),
		gen.Float64Range(0.05, 0.95),
	))

	properties.TestingRun(t)
}

// TestContributionService_DeleteContribution tests recompute on delete.
//
// WHY: The total after a delete must equal the remaining contributions even
// when the cached value had drifted before.
func TestContributionService_DeleteContribution(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes from remaining contributions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)
		p := testutil.NewPortfolio().WithTotalInvested(5000).Build(t, db)
		keep := testutil.NewContribution(p.ID).WithAmount(100).Build(t, db)
		drop := testutil.NewContribution(p.ID).WithAmount(50).
			WithAssets(model.ContributionAsset{Symbol: "SPY", Name: "SPY", Amount: 50, Weight: 1}).
			Build(t, db)

		if err := svc.DeleteContribution(ctx, drop.ID); err != nil {
			t.Fatalf("DeleteContribution() returned unexpected error: %v", err)
		}

		if got := mustPortfolio(t, db, p.ID).TotalInvested; got != keep.Amount {
			t.Errorf("Expected total invested %v, got %v", keep.Amount, got)
		}
		testutil.AssertRowCount(t, db, "contribution", 1)
		testutil.AssertRowCount(t, db, "contribution_asset", 0)
	})

	t.Run("returns not found for unknown contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestContributionService(t, db)

		err := svc.DeleteContribution(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrContributionNotFound) {
			t.Errorf("Expected ErrContributionNotFound, got %v", err)
		}
	})
}

func TestContributionService_ListContributions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestContributionService(t, db)

	p1 := testutil.NewPortfolio().Build(t, db)
	p2 := testutil.NewPortfolio().Build(t, db)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	oldest := testutil.NewContribution(p1.ID).WithDate(base).Build(t, db)
	newest := testutil.NewContribution(p1.ID).WithDate(base.Add(48 * time.Hour)).Build(t, db)
	other := testutil.NewContribution(p2.ID).WithDate(base.Add(24 * time.Hour)).Build(t, db)

	t.Run("lists one portfolio newest first", func(t *testing.T) {
		list, err := svc.ListContributions(ctx, p1.ID)
		if err != nil {
			t.Fatalf("ListContributions() returned unexpected error: %v", err)
		}
		if len(list) != 2 || list[0].ID != newest.ID || list[1].ID != oldest.ID {
			t.Errorf("Expected [newest oldest], got %+v", list)
		}
	})

	t.Run("lists all portfolios newest first", func(t *testing.T) {
		list, err := svc.ListContributions(ctx, "")
		if err != nil {
			t.Fatalf("ListContributions() returned unexpected error: %v", err)
		}
		want := []string{newest.ID, other.ID, oldest.ID}
		if len(list) != len(want) {
			t.Fatalf("Expected %d contributions, got %d", len(want), len(list))
		}
		for i := range want {
			if list[i].ID != want[i] {
				t.Errorf("Position %d: expected %s, got %s", i, want[i], list[i].ID)
			}
		}
	})

	t.Run("returns not found for unknown portfolio", func(t *testing.T) {
		_, err := svc.ListContributions(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestContributionService_Distribute tests planning and committing a
// combined deposit.
//
// WHY: The distribution is what turns a single monthly deposit into one
// contribution per broker; its split must follow the seeded percentages.
func TestContributionService_Distribute(t *testing.T) {
	ctx := context.Background()

	seeded := func(t *testing.T) (*sql.DB, *testutil.Services, []model.Portfolio) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		portfolios, err := svcs.Portfolio.InitializePortfolios(ctx)
		if err != nil {
			t.Fatalf("InitializePortfolios() returned unexpected error: %v", err)
		}
		return db, svcs, portfolios
	}

	t.Run("splits 200 evenly over two brokers", func(t *testing.T) {
		db, svcs, _ := seeded(t)

		distributions, err := svcs.Contribution.DistributeAcrossPortfolios(ctx, 200)
		if err != nil {
			t.Fatalf("DistributeAcrossPortfolios() returned unexpected error: %v", err)
		}
		if len(distributions) != 2 {
			t.Fatalf("Expected 2 distributions, got %d", len(distributions))
		}
		for _, d := range distributions {
			if d.Amount != 100 {
				t.Errorf("%s: expected 100, got %v", d.Broker, d.Amount)
			}
			var sum float64
			for _, a := range d.Assets {
				sum += a.Amount
			}
			if math.Abs(sum-100) > 0.01 {
				t.Errorf("%s: expected breakdown to sum to 100, got %v", d.Broker, sum)
			}
		}

		// A preview persists nothing.
		testutil.AssertRowCount(t, db, "contribution", 0)
	})

	t.Run("skips brokers without a share", func(t *testing.T) {
		db, svcs, _ := seeded(t)
		testutil.NewPortfolio().WithBroker("unknown").Build(t, db)

		distributions, err := svcs.Contribution.DistributeAcrossPortfolios(ctx, 200)
		if err != nil {
			t.Fatalf("DistributeAcrossPortfolios() returned unexpected error: %v", err)
		}
		if len(distributions) != 2 {
			t.Errorf("Expected 2 distributions, got %d", len(distributions))
		}
	})

	t.Run("rejects non-positive total", func(t *testing.T) {
		_, svcs, _ := seeded(t)
		if _, err := svcs.Contribution.DistributeAcrossPortfolios(ctx, 0); !apperrors.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("commit records distributed contributions", func(t *testing.T) {
		_, svcs, portfolios := seeded(t)

		distributions, err := svcs.Contribution.DistributeAcrossPortfolios(ctx, 300)
		if err != nil {
			t.Fatalf("DistributeAcrossPortfolios() returned unexpected error: %v", err)
		}
		committed, err := svcs.Contribution.CommitDistribution(ctx, distributions)
		if err != nil {
			t.Fatalf("CommitDistribution() returned unexpected error: %v", err)
		}
		if len(committed) != 2 {
			t.Fatalf("Expected 2 contributions, got %d", len(committed))
		}
		for _, c := range committed {
			if c.Type != model.ContributionDistributed {
				t.Errorf("Expected distributed type, got %s", c.Type)
			}
		}
		for _, p := range portfolios {
			got, _ := svcs.Portfolio.GetPortfolio(ctx, p.ID)
			if got.TotalInvested != 150 {
				t.Errorf("%s: expected total invested 150, got %v", p.Broker, got.TotalInvested)
			}
		}
	})

	t.Run("commit stops at first failure", func(t *testing.T) {
		_, svcs, portfolios := seeded(t)

		committed, err := svcs.Contribution.CommitDistribution(ctx, []model.Distribution{
			{PortfolioID: portfolios[0].ID, Amount: 50},
			{PortfolioID: testutil.MakeID(), Amount: 50},
			{PortfolioID: portfolios[1].ID, Amount: 50},
		})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
		if len(committed) != 1 {
			t.Errorf("Expected 1 committed contribution, got %d", len(committed))
		}
	})
}

func mustPortfolio(t *testing.T, db *sql.DB, id string) model.Portfolio {
	t.Helper()

	p, err := repository.NewPortfolioRepository(db).GetPortfolio(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load portfolio %s: %v", id, err)
	}
	return p
}

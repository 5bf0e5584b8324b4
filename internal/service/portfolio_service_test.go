package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
	"github.com/ndewijer/Investment-Planner-Backend/internal/testutil"
)

// TestPortfolioService_InitializePortfolios tests seeding on first start.
//
// WHY: Seeding must happen exactly once. Seeding twice would duplicate every
// broker portfolio and double the distribution of every deposit.
func TestPortfolioService_InitializePortfolios(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds one portfolio per broker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		created, err := svc.InitializePortfolios(ctx)
		if err != nil {
			t.Fatalf("InitializePortfolios() returned unexpected error: %v", err)
		}

		if len(created) != 2 {
			t.Fatalf("Expected 2 portfolios, got %d", len(created))
		}

		portfolios, err := svc.GetAllPortfolios(ctx)
		if err != nil {
			t.Fatalf("GetAllPortfolios() returned unexpected error: %v", err)
		}

		byBroker := make(map[string]model.Portfolio)
		for _, p := range portfolios {
			byBroker[p.Broker] = p
		}

		hapi, ok := byBroker["hapi"]
		if !ok {
			t.Fatal("Expected hapi portfolio to be seeded")
		}
		if len(hapi.Assets) != 8 {
			t.Errorf("Expected 8 hapi assets, got %d", len(hapi.Assets))
		}
		if hapi.Assets[0].Symbol != "AMZN" || hapi.Assets[7].Symbol != "BTCUSD" {
			t.Errorf("Expected seeded asset order to be kept, got %s..%s", hapi.Assets[0].Symbol, hapi.Assets[7].Symbol)
		}
		if hapi.MonthlyContribution != 100 {
			t.Errorf("Expected monthly contribution 100, got %v", hapi.MonthlyContribution)
		}
		if byBroker["etoro"].Name != "eToro - Long-Term Growth" {
			t.Errorf("Unexpected etoro portfolio name %q", byBroker["etoro"].Name)
		}
	})

	t.Run("is a no-op when portfolios exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		testutil.CreatePortfolio(t, db, "Existing")

		created, err := svc.InitializePortfolios(ctx)
		if err != nil {
			t.Fatalf("InitializePortfolios() returned unexpected error: %v", err)
		}
		if created != nil {
			t.Errorf("Expected nil on re-invocation, got %d portfolios", len(created))
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})
}

func TestPortfolioService_GetAllPortfolios(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty slice when no portfolios exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		portfolios, err := svc.GetAllPortfolios(ctx)
		if err != nil {
			t.Fatalf("GetAllPortfolios() returned unexpected error: %v", err)
		}
		if portfolios == nil || len(portfolios) != 0 {
			t.Errorf("Expected empty slice, got %v", portfolios)
		}
	})

	t.Run("returns portfolios oldest first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		created := testutil.CreatePortfolios(t, db, 3)

		portfolios, err := svc.GetAllPortfolios(ctx)
		if err != nil {
			t.Fatalf("GetAllPortfolios() returned unexpected error: %v", err)
		}
		if len(portfolios) != 3 {
			t.Fatalf("Expected 3 portfolios, got %d", len(portfolios))
		}
		for i := range created {
			if portfolios[i].ID != created[i].ID {
				t.Errorf("Position %d: expected %s, got %s", i, created[i].ID, portfolios[i].ID)
			}
		}
	})
}

func TestPortfolioService_GetPortfolio(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db)

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := svc.GetPortfolio(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("round trips assets in order", func(t *testing.T) {
		p := testutil.NewPortfolio().
			WithAssets(testutil.Asset("VICI", 0.5, 0.055), testutil.Asset("AAPL", 0.3, 0.005), testutil.Asset("BND", 0.2, 0)).
			Build(t, db)

		got, err := svc.GetPortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		want := []string{"VICI", "AAPL", "BND"}
		for i, a := range got.Assets {
			if a.Symbol != want[i] {
				t.Errorf("Asset %d: expected %s, got %s", i, want[i], a.Symbol)
			}
		}
		if got.Assets[0].DividendYield != 0.055 {
			t.Errorf("Expected dividend yield 0.055, got %v", got.Assets[0].DividendYield)
		}
	})
}

// TestPortfolioService_UpdateAssets tests the save precondition on asset edits.
//
// WHY: An asset list whose weights do not add up to 100% would make every
// contribution breakdown and dividend estimate wrong.
func TestPortfolioService_UpdateAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects weights adding up to 80 percent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		_, err := svc.UpdateAssets(ctx, p.ID, []model.Asset{
			testutil.Asset("SPY", 0.5, 0),
			testutil.Asset("QQQ", 0.3, 0),
		})

		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if !strings.Contains(ve.Fields["weights"], "80.00%") {
			t.Errorf("Expected message to report 80.00%%, got %q", ve.Fields["weights"])
		}

		stored, _ := svc.GetPortfolio(ctx, p.ID)
		if len(stored.Assets) != 2 || stored.Assets[0].Symbol != "SPY" || stored.Assets[0].Weight != 0.6 {
			t.Errorf("Expected stored assets to be unchanged, got %+v", stored.Assets)
		}
	})

	t.Run("normalizes symbols and keeps order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		updated, err := svc.UpdateAssets(ctx, p.ID, []model.Asset{
			{Symbol: " vici ", Name: "VICI Properties", Type: "REIT", Weight: 0.7, DividendYield: 0.055, Amount: 70},
			{Symbol: "o", Name: "Realty Income", Type: "REIT", Weight: 0.3, DividendYield: 0.053},
		})
		if err != nil {
			t.Fatalf("UpdateAssets() returned unexpected error: %v", err)
		}

		if updated.Assets[0].Symbol != "VICI" || updated.Assets[1].Symbol != "O" {
			t.Errorf("Expected VICI, O; got %s, %s", updated.Assets[0].Symbol, updated.Assets[1].Symbol)
		}
		if updated.Assets[0].Amount != 70 {
			t.Errorf("Expected amount to be kept, got %v", updated.Assets[0].Amount)
		}

		stored, _ := svc.GetPortfolio(ctx, p.ID)
		if len(stored.Assets) != 2 || stored.Assets[1].Symbol != "O" {
			t.Errorf("Expected stored assets [VICI O], got %+v", stored.Assets)
		}
	})

	t.Run("reports duplicate symbol with its position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		_, err := svc.UpdateAssets(ctx, p.ID, []model.Asset{
			testutil.Asset("SPY", 0.5, 0),
			testutil.Asset("spy", 0.5, 0),
		})

		var ve *apperrors.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if _, ok := ve.Fields["assets[1].symbol"]; !ok {
			t.Errorf("Expected error on assets[1].symbol, got %v", ve.Fields)
		}
	})

	t.Run("returns not found for unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		_, err := svc.UpdateAssets(ctx, testutil.MakeID(), []model.Asset{testutil.Asset("SPY", 1, 0)})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

func TestPortfolioService_UpdateMonthlyContribution(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db)
	p := testutil.NewPortfolio().Build(t, db)

	t.Run("updates the amount", func(t *testing.T) {
		updated, err := svc.UpdateMonthlyContribution(ctx, p.ID, 250)
		if err != nil {
			t.Fatalf("UpdateMonthlyContribution() returned unexpected error: %v", err)
		}
		if updated.MonthlyContribution != 250 {
			t.Errorf("Expected 250, got %v", updated.MonthlyContribution)
		}
	})

	t.Run("accepts zero", func(t *testing.T) {
		if _, err := svc.UpdateMonthlyContribution(ctx, p.ID, 0); err != nil {
			t.Errorf("Expected zero to be accepted, got %v", err)
		}
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := svc.UpdateMonthlyContribution(ctx, p.ID, -1)
		if !apperrors.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})
}

// TestPortfolioService_DeletePortfolio tests deletion guards.
//
// WHY: Contributions reference their portfolio; deleting it would orphan the
// deposit history the totals are derived from.
func TestPortfolioService_DeletePortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while contributions exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().Build(t, db)
		testutil.NewContribution(p.ID).Build(t, db)

		err := svc.DeletePortfolio(ctx, p.ID)
		if !errors.Is(err, apperrors.ErrPortfolioHasContributions) {
			t.Errorf("Expected ErrPortfolioHasContributions, got %v", err)
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})

	t.Run("deletes portfolio and its assets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().Build(t, db)

		if err := svc.DeletePortfolio(ctx, p.ID); err != nil {
			t.Fatalf("DeletePortfolio() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, "portfolio", 0)
		testutil.AssertRowCount(t, db, "portfolio_asset", 0)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		err := svc.DeletePortfolio(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_Reconcile tests self-healing of the cached total.
//
// WHY: A contribution write followed by a failed portfolio write leaves the
// cached total stale; reconcile must restore it from the contributions.
func TestPortfolioService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("fixes drifted total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().WithTotalInvested(999).Build(t, db)
		testutil.NewContribution(p.ID).WithAmount(100).Build(t, db)
		testutil.NewContribution(p.ID).WithAmount(50.25).Build(t, db)

		reconciled, changed, err := svc.ReconcilePortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("ReconcilePortfolio() returned unexpected error: %v", err)
		}
		if !changed {
			t.Error("Expected drift to be reported")
		}
		if reconciled.TotalInvested != 150.25 {
			t.Errorf("Expected 150.25, got %v", reconciled.TotalInvested)
		}

		stored, _ := svc.GetPortfolio(ctx, p.ID)
		if stored.TotalInvested != 150.25 {
			t.Errorf("Expected stored total 150.25, got %v", stored.TotalInvested)
		}
	})

	t.Run("reports no change when in sync", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		p := testutil.NewPortfolio().WithTotalInvested(100).Build(t, db)
		testutil.NewContribution(p.ID).WithAmount(100).Build(t, db)

		_, changed, err := svc.ReconcilePortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("ReconcilePortfolio() returned unexpected error: %v", err)
		}
		if changed {
			t.Error("Expected no change")
		}
	})

	t.Run("reconciles all portfolios", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		testutil.NewPortfolio().WithTotalInvested(10).Build(t, db)
		testutil.NewPortfolio().WithTotalInvested(20).Build(t, db)
		testutil.NewPortfolio().Build(t, db)

		corrected, err := svc.ReconcileAll(ctx)
		if err != nil {
			t.Fatalf("ReconcileAll() returned unexpected error: %v", err)
		}
		if corrected != 2 {
			t.Errorf("Expected 2 corrected portfolios, got %d", corrected)
		}
	})
}

func TestPortfolioService_Export(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db)

	p1 := testutil.NewPortfolio().Build(t, db)
	p2 := testutil.NewPortfolio().Build(t, db)
	testutil.NewContribution(p1.ID).Build(t, db)
	testutil.NewContribution(p1.ID).Build(t, db)
	testutil.NewContribution(p2.ID).
		WithAssets(model.ContributionAsset{Symbol: "SPY", Name: "SPY Holding", Amount: 100, Weight: 1}).
		Build(t, db)

	before := time.Now().UTC().Add(-time.Second)
	snapshot, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export() returned unexpected error: %v", err)
	}

	if len(snapshot.Portfolios) != 2 {
		t.Errorf("Expected 2 portfolios, got %d", len(snapshot.Portfolios))
	}
	if len(snapshot.Contributions) != 3 {
		t.Errorf("Expected 3 contributions, got %d", len(snapshot.Contributions))
	}
	if snapshot.ExportedAt.Before(before) {
		t.Errorf("Expected a current export timestamp, got %v", snapshot.ExportedAt)
	}

	var withAssets int
	for _, c := range snapshot.Contributions {
		withAssets += len(c.Assets)
	}
	if withAssets != 1 {
		t.Errorf("Expected the breakdown to be exported, got %d asset rows", withAssets)
	}
}

func TestPortfolioLocks(t *testing.T) {
	locks := service.NewPortfolioLocks()

	unlockA := locks.Lock("a")
	// A different portfolio must not block.
	unlockB := locks.Lock("b")
	unlockB()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("a")
		unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Expected second lock on the same portfolio to wait")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected waiting lock to be acquired after release")
	}
}

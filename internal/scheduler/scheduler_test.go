package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/testutil"
)

type fakeJob struct {
	runs int
	err  error
}

func (f *fakeJob) Run() error {
	f.runs++
	return f.err
}

func (f *fakeJob) Name() string { return "fake" }

type fakeReconciler struct {
	changed int
	err     error
}

func (f fakeReconciler) ReconcileAll(context.Context) (int, error) { return f.changed, f.err }

type fakeChecker struct {
	alerts []model.Alert
	err    error
}

func (f fakeChecker) CheckAlerts(context.Context) ([]model.Alert, error) { return f.alerts, f.err }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	t.Run("accepts descriptors and cron expressions", func(t *testing.T) {
		require.NoError(t, s.AddJob("@daily", &fakeJob{}))
		require.NoError(t, s.AddJob("0 */6 * * *", &fakeJob{}))
		assert.Len(t, s.cron.Entries(), 2)
	})

	t.Run("empty schedule disables the job", func(t *testing.T) {
		before := len(s.cron.Entries())
		require.NoError(t, s.AddJob("", &fakeJob{}))
		assert.Len(t, s.cron.Entries(), before)
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		assert.Error(t, s.AddJob("every tuesday", &fakeJob{}))
	})

	t.Run("start and stop", func(t *testing.T) {
		s.Start()
		s.Stop()
	})
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &fakeJob{err: errors.New("boom")}

	err := s.RunNow(job)

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, job.runs)
}

func TestReconcileJob(t *testing.T) {
	t.Run("logs corrected portfolios", func(t *testing.T) {
		var buf bytes.Buffer
		job := NewReconcileJob(fakeReconciler{changed: 2}, zerolog.New(&buf))

		require.NoError(t, job.Run())
		assert.Contains(t, buf.String(), "corrected drifted totals")
		assert.Equal(t, "reconcile_totals", job.Name())
	})

	t.Run("propagates failure", func(t *testing.T) {
		job := NewReconcileJob(fakeReconciler{err: errors.New("db down")}, zerolog.Nop())
		assert.Error(t, job.Run())
	})

	t.Run("heals drift against a real store", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.NewPortfolio().WithTotalInvested(500).Build(t, db)
		testutil.NewContribution(p.ID).WithAmount(120).Build(t, db)

		require.NoError(t, NewReconcileJob(svcs.Portfolio, zerolog.Nop()).Run())

		got, err := svcs.Portfolio.GetPortfolio(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, got.TotalInvested)
	})
}

func TestAlertJob(t *testing.T) {
	t.Run("logs every alert", func(t *testing.T) {
		var buf bytes.Buffer
		alerts := []model.Alert{
			{Type: model.AlertMilestone, Message: "Congratulations! You have reached $1000 in total investments", Value: 1000},
			{Type: model.AlertDividends, Message: "You are generating $12.00 per month in dividends", Value: 12},
		}
		job := NewAlertJob(fakeChecker{alerts: alerts}, zerolog.New(&buf))

		require.NoError(t, job.Run())
		assert.Contains(t, buf.String(), "reached $1000")
		assert.Contains(t, buf.String(), "per month in dividends")
	})

	t.Run("propagates failure", func(t *testing.T) {
		job := NewAlertJob(fakeChecker{err: errors.New("db down")}, zerolog.Nop())
		assert.Error(t, job.Run())
	})
}

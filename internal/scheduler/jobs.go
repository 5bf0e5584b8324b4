package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// jobTimeout bounds a single run of a background job.
const jobTimeout = 5 * time.Minute

// Reconciler recomputes cached totals from the stored contributions.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// AlertChecker evaluates the current alerts.
type AlertChecker interface {
	CheckAlerts(ctx context.Context) ([]model.Alert, error)
}

// ReconcileJob heals total invested drift left behind by a failed write.
type ReconcileJob struct {
	reconciler Reconciler
	log        zerolog.Logger
}

// NewReconcileJob creates a new ReconcileJob
func NewReconcileJob(reconciler Reconciler, log zerolog.Logger) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		log:        log.With().Str("job", "reconcile_totals").Logger(),
	}
}

// Name returns the job name
func (j *ReconcileJob) Name() string {
	return "reconcile_totals"
}

// Run reconciles every portfolio.
func (j *ReconcileJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	changed, err := j.reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	if changed > 0 {
		j.log.Warn().Int("portfolios", changed).Msg("corrected drifted totals")
	}
	return nil
}

// AlertJob evaluates the alerts and logs the ones that fire.
type AlertJob struct {
	checker AlertChecker
	log     zerolog.Logger
}

// NewAlertJob creates a new AlertJob
func NewAlertJob(checker AlertChecker, log zerolog.Logger) *AlertJob {
	return &AlertJob{
		checker: checker,
		log:     log.With().Str("job", "check_alerts").Logger(),
	}
}

// Name returns the job name
func (j *AlertJob) Name() string {
	return "check_alerts"
}

// Run evaluates the alerts once.
func (j *AlertJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	alerts, err := j.checker.CheckAlerts(ctx)
	if err != nil {
		return err
	}
	for _, a := range alerts {
		j.log.Info().
			Str("type", string(a.Type)).
			Float64("value", a.Value).
			Msg(a.Message)
	}
	return nil
}

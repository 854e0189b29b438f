package worker

import (
	"context"
	"time"

	"github.com/emajohn/checkout/internal/logger"
	"github.com/emajohn/checkout/internal/models"
)

type ReconcileService interface {
	ProcessJobs(ctx context.Context, jobCh <-chan models.ReconcileJob)
	GetDueJobs(ctx context.Context, jobCh chan<- models.ReconcileJob) error
}

// Reconciler is worker performing deferred order reconciliation
type Reconciler struct {
	svc ReconcileService
}

// NewReconciler creates new reconciler
func NewReconciler(svc ReconcileService) *Reconciler {
	return &Reconciler{svc: svc}
}

// Run polls the job queue until ctx is cancelled
func (r *Reconciler) Run(ctx context.Context) {
	jobs := make(chan models.ReconcileJob, 10)

	go r.svc.ProcessJobs(ctx, jobs)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("reconciler is done")
			return
		case <-ticker.C:
			if err := r.svc.GetDueJobs(ctx, jobs); err != nil {
				logger.Log.Error("error get due reconcile jobs")
			}
		}
	}
}

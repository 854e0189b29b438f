package repository

import (
	"context"
	"time"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/repository/postgres"
)

const (
	enqueueJobQuery = `
						INSERT INTO reconcile_jobs (session_id, payment_intent_id, status, next_attempt_at)
						VALUES ($1, $2, 'queued', $3)
						ON CONFLICT (session_id) DO NOTHING
`
	claimDueJobsQuery = `
						UPDATE reconcile_jobs
						SET next_attempt_at = now() + interval '60 seconds'
						WHERE id IN (
							SELECT id
							FROM reconcile_jobs
							WHERE status = 'queued' AND next_attempt_at <= now()
							ORDER BY next_attempt_at
							LIMIT $1
							FOR UPDATE SKIP LOCKED
						)
						RETURNING id, session_id, payment_intent_id, status, attempts, next_attempt_at, created_at
`
	markJobDoneQuery = `UPDATE reconcile_jobs SET status = 'done' WHERE id = $1`

	markJobDeadQuery = `UPDATE reconcile_jobs SET status = 'dead' WHERE id = $1`

	rescheduleJobQuery = `
						UPDATE reconcile_jobs
						SET attempts = $2, next_attempt_at = $3
						WHERE id = $1
`
)

// JobRepository implements the durable reconciliation queue on postgres.
// One row exists per checkout session, so duplicate webhook deliveries
// collapse into a single job.
type JobRepository struct {
	db *postgres.DB
}

// NewJobRepository creates new JobRepository instance
func NewJobRepository(db *postgres.DB) *JobRepository {
	return &JobRepository{db: db}
}

// EnqueueJob inserts reconcile job with the first attempt scheduled at
// nextAttemptAt. Inserting an already queued session is a no-op.
func (jr *JobRepository) EnqueueJob(ctx context.Context, sessionID, paymentIntentID string, nextAttemptAt time.Time) error {
	_, err := jr.db.Exec(ctx, enqueueJobQuery, sessionID, paymentIntentID, nextAttemptAt)
	return err
}

// ClaimDueJobs returns queued jobs whose next attempt time has passed,
// pushing their next attempt one minute out. The claimed batch is
// invisible to concurrent polls for that window, so a batch slower than
// one poll tick is not reconciled twice; a claim lost to a crash simply
// comes due again.
func (jr *JobRepository) ClaimDueJobs(ctx context.Context, limit int) ([]models.ReconcileJob, error) {
	rows, err := jr.db.Query(ctx, claimDueJobsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.ReconcileJob{}

	for rows.Next() {
		job := models.ReconcileJob{}
		err = rows.Scan(&job.ID, &job.SessionID, &job.PaymentIntentID, &job.Status, &job.Attempts, &job.NextAttemptAt, &job.CreatedAt)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// MarkJobDone marks job as completed
func (jr *JobRepository) MarkJobDone(ctx context.Context, id uint64) error {
	_, err := jr.db.Exec(ctx, markJobDoneQuery, id)
	return err
}

// MarkJobDead moves job to the dead-letter state
func (jr *JobRepository) MarkJobDead(ctx context.Context, id uint64) error {
	_, err := jr.db.Exec(ctx, markJobDeadQuery, id)
	return err
}

// RescheduleJob stores the new attempt count and next attempt time
func (jr *JobRepository) RescheduleJob(ctx context.Context, id uint64, attempts int, nextAttemptAt time.Time) error {
	_, err := jr.db.Exec(ctx, rescheduleJobQuery, id, attempts, nextAttemptAt)
	return err
}

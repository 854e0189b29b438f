package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emajohn/checkout/internal/events"
	"github.com/emajohn/checkout/internal/logger"
	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
	"go.uber.org/zap"
)

const (
	// first attempt waits out the processor's own propagation of charge
	// detail to the payment intent
	graceDelay = 5 * time.Second

	maxAttempts   = 5
	jobBatchLimit = 10
)

// JobRepository is interface for the durable reconciliation queue
type JobRepository interface {
	// EnqueueJob inserts reconcile job, no-op for an already queued session
	EnqueueJob(ctx context.Context, sessionID, paymentIntentID string, nextAttemptAt time.Time) error
	// ClaimDueJobs returns due jobs and hides them from concurrent polls
	// for a visibility window
	ClaimDueJobs(ctx context.Context, limit int) ([]models.ReconcileJob, error)
	// MarkJobDone marks job as completed
	MarkJobDone(ctx context.Context, id uint64) error
	// MarkJobDead moves job to the dead-letter state
	MarkJobDead(ctx context.Context, id uint64) error
	// RescheduleJob stores the new attempt count and next attempt time
	RescheduleJob(ctx context.Context, id uint64, attempts int, nextAttemptAt time.Time) error
}

// EventPublisher publishes domain events for downstream consumers
type EventPublisher interface {
	Publish(key, value []byte)
}

// ReconcileService merges processor-reported payment outcomes into order
// records. Failures never reach an HTTP response: the webhook is acked
// before any of this runs, so every error here ends in a reschedule or
// the dead-letter state, both observable in logs.
type ReconcileService struct {
	repo      OrderRepository
	jobs      JobRepository
	gateway   PaymentGateway
	publisher EventPublisher
	backoff   time.Duration
}

// NewReconcileService creates new ReconcileService instance.
// publisher may be nil when event publishing is not configured.
func NewReconcileService(repo OrderRepository, jobs JobRepository, gateway PaymentGateway, publisher EventPublisher) *ReconcileService {
	return &ReconcileService{
		repo:      repo,
		jobs:      jobs,
		gateway:   gateway,
		publisher: publisher,
		backoff:   graceDelay,
	}
}

// EnqueueCompletedSession registers a completed-session notification for
// deferred reconciliation. Duplicate deliveries collapse on the queue's
// unique session key.
func (rs *ReconcileService) EnqueueCompletedSession(ctx context.Context, session stripe.CheckoutSession) error {
	if session.ID == "" || session.PaymentIntent == "" {
		return fmt.Errorf("%w: completed session without id or payment intent", models.ErrValidation)
	}

	return rs.jobs.EnqueueJob(ctx, session.ID, session.PaymentIntent, time.Now().Add(rs.backoff))
}

// ProcessJobs performs reconciliation for jobs received from the channel
func (rs *ReconcileService) ProcessJobs(ctx context.Context, jobCh <-chan models.ReconcileJob) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("reconciliation is done")
			return
		case job, ok := <-jobCh:
			if !ok {
				return
			}
			rs.processJob(ctx, job)
		}
	}
}

// GetDueJobs claims due jobs and writes them to channel for reconciliation
func (rs *ReconcileService) GetDueJobs(ctx context.Context, jobCh chan<- models.ReconcileJob) error {
	jobs, err := rs.jobs.ClaimDueJobs(ctx, jobBatchLimit)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		jobCh <- job
	}

	return nil
}

func (rs *ReconcileService) processJob(ctx context.Context, job models.ReconcileJob) {
	logger.Log.Debug("try reconcile session", zap.String("session", job.SessionID))

	intent, err := rs.gateway.GetPaymentIntent(ctx, job.PaymentIntentID)
	if err != nil {
		rs.retry(ctx, job, err)
		return
	}

	// do not complete the order without verified payment method detail
	if len(intent.Charges.Data) == 0 {
		rs.retry(ctx, job, models.ErrNoChargeData)
		return
	}

	details := intent.Charges.Data[0].PaymentMethodDetails
	pm := models.PaymentMethod{Type: details.Type}
	if details.Card != nil {
		pm.Brand = details.Card.Brand
		pm.Last4 = details.Card.Last4
		pm.Country = details.Card.Country
	}

	order, err := rs.repo.CompleteOrder(ctx, job.SessionID, intent.ID, pm)
	if err != nil {
		rs.retry(ctx, job, err)
		return
	}

	// marking done after the update keeps at-least-once semantics: a rerun
	// hits the conditional update and changes nothing
	if err := rs.jobs.MarkJobDone(ctx, job.ID); err != nil {
		logger.Log.Error("mark job done", zap.String("session", job.SessionID), zap.Error(err))
		return
	}

	logger.Log.Debug("order has been completed", zap.String("session", job.SessionID))

	rs.publishCompleted(order)
}

func (rs *ReconcileService) retry(ctx context.Context, job models.ReconcileJob, cause error) {
	attempts := job.Attempts + 1
	if attempts >= maxAttempts {
		logger.Log.Error("reconciliation dead-lettered, order stays pending",
			zap.String("session", job.SessionID),
			zap.Int("attempts", attempts),
			zap.Error(cause))
		if err := rs.jobs.MarkJobDead(ctx, job.ID); err != nil {
			logger.Log.Error("mark job dead", zap.String("session", job.SessionID), zap.Error(err))
		}
		return
	}

	delay := rs.backoff * time.Duration(1<<attempts)
	logger.Log.Warn("reconciliation attempt failed",
		zap.String("session", job.SessionID),
		zap.Int("attempt", attempts),
		zap.Duration("retry-in", delay),
		zap.Error(cause))

	if err := rs.jobs.RescheduleJob(ctx, job.ID, attempts, time.Now().Add(delay)); err != nil {
		logger.Log.Error("reschedule job", zap.String("session", job.SessionID), zap.Error(err))
	}
}

func (rs *ReconcileService) publishCompleted(order *models.Order) {
	if rs.publisher == nil {
		return
	}

	intentID := ""
	if order.PaymentIntentID != nil {
		intentID = *order.PaymentIntentID
	}

	envelope, err := events.NewEnvelope(events.EventOrderCompleted, "checkout", events.OrderCompletedPayload{
		SessionID:       order.SessionID,
		PaymentIntentID: intentID,
		TotalAmount:     order.TotalAmount,
	})
	if err != nil {
		logger.Log.Error("build order completed event", zap.Error(err))
		return
	}

	raw, err := envelope.Marshal()
	if err != nil {
		logger.Log.Error("marshal order completed event", zap.Error(err))
		return
	}

	rs.publisher.Publish(events.PartitionKey(order.SessionID), raw)
}

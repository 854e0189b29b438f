package models

import "time"

//queued — waiting for its next attempt;
//done — order completion applied;
//dead — attempts exhausted, needs operator attention.

// reconcile job status
const (
	JobStatusQueued = "queued"
	JobStatusDone   = "done"
	JobStatusDead   = "dead"
)

// ReconcileJob is one pending reconciliation of a completed checkout
// session. One job exists per session id.
type ReconcileJob struct {
	ID              uint64
	SessionID       string
	PaymentIntentID string
	Status          string
	Attempts        int
	NextAttemptAt   time.Time
	CreatedAt       time.Time
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"

	"github.com/google/uuid"
)

// UsageRecorder is the centralized fire-and-forget queue for usage
// bookkeeping. Writes are two-phase: Record inserts the admission fact,
// Complete backfills status, duration and size once the response finished.
// A single worker drains the queue in order, so a Complete enqueued after
// its Record never races the insert. Failures are logged and swallowed;
// they never fail the request they describe.
type UsageRecorder struct {
	usageRepo repositories.UsageRepository
	ops       chan usageOp
	done      chan struct{}
	timeout   time.Duration
}

type usageOp struct {
	insert *models.UsageRecord
	update *usageUpdate
}

type usageUpdate struct {
	id            uuid.UUID
	statusCode    int
	durationMs    int64
	responseBytes int64
	errorText     *string
}

func NewUsageRecorder(usageRepo repositories.UsageRepository, buffer int) *UsageRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &UsageRecorder{
		usageRepo: usageRepo,
		ops:       make(chan usageOp, buffer),
		done:      make(chan struct{}),
		timeout:   5 * time.Second,
	}
}

// Start launches the worker. Call Close to drain and stop it.
func (r *UsageRecorder) Start() {
	go r.run()
}

// Record enqueues the phase-1 insert. It never blocks: when the queue is
// full the record is dropped and logged, since bookkeeping must not stall
// request handling.
func (r *UsageRecorder) Record(record *models.UsageRecord) {
	select {
	case r.ops <- usageOp{insert: record}:
	default:
		log.Printf("Usage queue full, dropping record for tenant %s %s %s", record.TenantID.String(), record.Method, record.Path)
	}
}

// Complete enqueues the phase-2 result update for a previously recorded id.
func (r *UsageRecorder) Complete(id uuid.UUID, statusCode int, durationMs, responseBytes int64, errorText *string) {
	select {
	case r.ops <- usageOp{update: &usageUpdate{
		id:            id,
		statusCode:    statusCode,
		durationMs:    durationMs,
		responseBytes: responseBytes,
		errorText:     errorText,
	}}:
	default:
		log.Printf("Usage queue full, dropping result update for record %s", id.String())
	}
}

// Close stops accepting work, drains what is queued and waits for the worker.
func (r *UsageRecorder) Close() {
	close(r.ops)
	<-r.done
}

func (r *UsageRecorder) run() {
	defer close(r.done)
	for op := range r.ops {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		switch {
		case op.insert != nil:
			if err := r.usageRepo.Insert(ctx, op.insert); err != nil {
				log.Printf("Failed to write usage record %s: %v", op.insert.ID.String(), err)
			}
		case op.update != nil:
			u := op.update
			if err := r.usageRepo.UpdateResult(ctx, u.id, u.statusCode, u.durationMs, u.responseBytes, u.errorText); err != nil {
				log.Printf("Failed to update usage record %s: %v", u.id.String(), err)
			}
		}
		cancel()
	}
}

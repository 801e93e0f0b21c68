package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// orderTrackingRepo records the sequence of repository calls so ordering
// guarantees can be asserted.
type orderTrackingRepo struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (r *orderTrackingRepo) Insert(ctx context.Context, record *models.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	r.calls = append(r.calls, "insert:"+record.ID.String())
	return nil
}

func (r *orderTrackingRepo) UpdateResult(ctx context.Context, id uuid.UUID, statusCode int, durationMs, responseBytes int64, errorText *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("update failed")
	}
	r.calls = append(r.calls, "update:"+id.String())
	return nil
}

func (r *orderTrackingRepo) CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	return 0, nil
}

func (r *orderTrackingRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *orderTrackingRepo) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestUsageRecorder_InsertBeforeUpdate(t *testing.T) {
	repo := &orderTrackingRepo{}
	recorder := NewUsageRecorder(repo, 16)
	recorder.Start()

	id := uuid.New()
	recorder.Record(&models.UsageRecord{ID: id, TenantID: uuid.New(), Method: "GET", Path: "/v1/me"})
	recorder.Complete(id, 200, 12, 512, nil)
	recorder.Close()

	calls := repo.snapshot()
	assert.Equal(t, []string{"insert:" + id.String(), "update:" + id.String()}, calls)
}

func TestUsageRecorder_PreservesFIFOAcrossRequests(t *testing.T) {
	repo := &orderTrackingRepo{}
	recorder := NewUsageRecorder(repo, 64)
	recorder.Start()

	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		id := uuid.New()
		ids = append(ids, id)
		recorder.Record(&models.UsageRecord{ID: id, TenantID: uuid.New(), Method: "GET", Path: "/v1/usage"})
		recorder.Complete(id, 200, 1, 64, nil)
	}
	recorder.Close()

	calls := repo.snapshot()
	assert.Len(t, calls, 20)
	for i, id := range ids {
		assert.Equal(t, "insert:"+id.String(), calls[2*i])
		assert.Equal(t, "update:"+id.String(), calls[2*i+1])
	}
}

func TestUsageRecorder_SwallowsRepositoryFailures(t *testing.T) {
	repo := &orderTrackingRepo{fail: true}
	recorder := NewUsageRecorder(repo, 16)
	recorder.Start()

	// Neither call panics or blocks on a failing store
	id := uuid.New()
	recorder.Record(&models.UsageRecord{ID: id, TenantID: uuid.New(), Method: "POST", Path: "/v1/keys"})
	recorder.Complete(id, 500, 8, 0, nil)
	recorder.Close()

	assert.Empty(t, repo.snapshot())
}

func TestUsageRecorder_DropsWhenQueueFull(t *testing.T) {
	repo := &orderTrackingRepo{}
	recorder := NewUsageRecorder(repo, 1)
	// Worker not started: the queue can only hold one op, the rest drop
	recorder.Record(&models.UsageRecord{ID: uuid.New(), TenantID: uuid.New()})
	recorder.Record(&models.UsageRecord{ID: uuid.New(), TenantID: uuid.New()})
	recorder.Complete(uuid.New(), 200, 1, 0, nil)

	recorder.Start()
	recorder.Close()

	assert.Len(t, repo.snapshot(), 1)
}

package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring maintenance jobs: the stale connection
// sweep and usage record retention.
type JobScheduler struct {
	scheduler gocron.Scheduler
	connRepo  repositories.ConnectionRepository
	usageRepo repositories.UsageRepository

	sweepInterval  time.Duration
	staleThreshold time.Duration
	retention      time.Duration

	jobs map[string]gocron.Job
	mu   sync.RWMutex
}

// NewJobScheduler creates a scheduler with the sweep cadence and staleness
// threshold. The threshold must be much larger than the client heartbeat
// interval so transiently quiet connections are not reaped.
func NewJobScheduler(connRepo repositories.ConnectionRepository, usageRepo repositories.UsageRepository,
	sweepInterval, staleThreshold, retention time.Duration) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		connRepo:       connRepo,
		usageRepo:      usageRepo,
		sweepInterval:  sweepInterval,
		staleThreshold: staleThreshold,
		retention:      retention,
		jobs:           make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.sweepInterval),
		gocron.NewTask(js.RunConnectionSweep, context.Background()),
		gocron.WithName("connection-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create connection sweep job: %v", err)
	} else {
		js.jobs["connection-sweep"] = sweepJob
	}

	retentionJob, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.RunUsageRetention, context.Background()),
		gocron.WithName("usage-retention"),
	)
	if err != nil {
		log.Printf("Failed to create usage retention job: %v", err)
	} else {
		js.jobs["usage-retention"] = retentionJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// RunConnectionSweep removes connection rows whose last heartbeat is older
// than the staleness threshold, plus rows already marked inactive.
func (js *JobScheduler) RunConnectionSweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-js.staleThreshold)

	removed, err := js.connRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		log.Printf("Connection sweep failed: %v", err)
		return err
	}
	if removed > 0 {
		log.Printf("Connection sweep removed %d stale connections", removed)
	}
	return nil
}

// RunUsageRetention trims usage records older than the retention window.
func (js *JobScheduler) RunUsageRetention(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-js.retention)

	removed, err := js.usageRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Usage retention failed: %v", err)
		return err
	}
	if removed > 0 {
		log.Printf("Usage retention removed %d records older than %s", removed, cutoff.Format(time.RFC3339))
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	jobs := make([]string, 0, len(js.jobs))

	for name := range js.jobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}

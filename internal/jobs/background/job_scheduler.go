package background

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs periodic catalog maintenance.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	hierarchySvc    services.HierarchyService
	refreshInterval time.Duration
	jobs            map[string]gocron.Job
	mu              sync.RWMutex
}

func NewJobScheduler(hierarchySvc services.HierarchyService, refreshInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Minute
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		hierarchySvc:    hierarchySvc,
		refreshInterval: refreshInterval,
		jobs:            make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	// Hierarchy refresh keeps the last-known-good copy current, so an
	// outage serves a recent tree rather than the static fallback.
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.refreshInterval),
		gocron.NewTask(js.refreshHierarchy, context.Background()),
		gocron.WithName("hierarchy-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	js.jobs["hierarchy-refresh"] = job
	log.Printf("Registered %d background jobs", len(js.jobs))
	return nil
}

func (js *JobScheduler) refreshHierarchy(ctx context.Context) error {
	if err := js.hierarchySvc.Refresh(ctx); err != nil {
		log.Printf("WARN: hierarchy refresh failed: %v", err)
		return err
	}
	return nil
}

// GetJobStatus returns the registered job names and their next run times.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make(map[string]string, len(js.jobs))
	for name, job := range js.jobs {
		next, err := job.NextRun()
		if err != nil {
			jobs[name] = "unscheduled"
			continue
		}
		jobs[name] = next.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}

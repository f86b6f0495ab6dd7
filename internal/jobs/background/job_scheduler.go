package background

import (
	"context"
	"sync"
	"time"

	"rentalhub/internal/models"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ReportRefresher rebuilds the cached rental report
type ReportRefresher interface {
	Refresh(ctx context.Context) (*models.RentalReport, error)
}

// JobScheduler runs the periodic background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	reports   ReportRefresher
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the report refresh job at the given interval
func NewJobScheduler(reports ReportRefresher, interval time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		reports:   reports,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(interval); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(interval time.Duration) error {
	reportJob, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.refreshRentalReport),
		gocron.WithName("rental-report-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	js.mu.Lock()
	js.jobs["rental-report"] = reportJob
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) refreshRentalReport() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// success is logged by the refresher
	if _, err := js.reports.Refresh(ctx); err != nil {
		js.logger.Error("rental report refresh failed", zap.Error(err))
	}
}

// JobStatus describes a registered job
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run"`
	NextRun time.Time `json:"next_run"`
}

// Status reports the last and next run of every registered job
func (js *JobScheduler) Status() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for _, job := range js.jobs {
		s := JobStatus{Name: job.Name()}
		if last, err := job.LastRun(); err == nil {
			s.LastRun = last
		}
		if next, err := job.NextRun(); err == nil {
			s.NextRun = next
		}
		statuses = append(statuses, s)
	}
	return statuses
}

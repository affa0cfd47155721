package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"fridgepos/internal/store"
)

// JobScheduler runs the periodic maintenance jobs: the expired
// verification-token sweep and the low-stock scan. Jobs only read through
// the store's snapshot or write through services, so they never race the
// command path.
type JobScheduler struct {
	scheduler gocron.Scheduler
	store     *store.Store
	lowStock  *LowStockService
	log       zerolog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates and registers the scheduler. Call Start to begin
// running jobs.
func NewJobScheduler(st *store.Store, lowStock *LowStockService, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		store:     st,
		lowStock:  lowStock,
		log:       log,
		jobs:      make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) registerJobs() {
	tokenJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(js.sweepExpiredTokens),
		gocron.WithName("verification-token-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.log.Error().Err(err).Msg("failed to create token sweep job")
	} else {
		js.jobs["token-sweep"] = tokenJob
	}

	lowStockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.runLowStockCheck),
		gocron.WithName("low-stock-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.log.Error().Err(err).Msg("failed to create low stock job")
	} else {
		js.jobs["low-stock"] = lowStockJob
	}

	js.log.Info().Int("jobs", len(js.jobs)).Msg("registered background jobs")
}

func (js *JobScheduler) sweepExpiredTokens() {
	removed := js.store.DeleteExpiredTokens(context.Background(), time.Now())
	if removed > 0 {
		js.log.Info().Int("removed", removed).Msg("swept expired verification tokens")
	}
}

func (js *JobScheduler) runLowStockCheck() {
	if err := js.lowStock.ScheduledLowStockCheck(context.Background()); err != nil {
		js.log.Error().Err(err).Msg("low stock check failed")
	}
}

// Start begins running registered jobs.
func (js *JobScheduler) Start() {
	js.log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

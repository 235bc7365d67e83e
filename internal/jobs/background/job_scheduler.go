package background

import (
	"context"
	"log"
	"sync"
	"time"

	"authhub/internal/repositories"
	"authhub/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring maintenance jobs: purging expired
// refresh tokens and keeping the tenant cache warm.
type JobScheduler struct {
	scheduler gocron.Scheduler
	tokenRepo repositories.TokenRepository
	tenantSvc services.TenantService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(tokenRepo repositories.TokenRepository, tenantSvc services.TenantService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		tokenRepo: tokenRepo,
		tenantSvc: tenantSvc,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
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
	// Expired refresh tokens are dead weight once past their stored
	// expiry; VerifyRefresh already rejects them, so this is cleanup only.
	purgeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.purgeExpiredTokens, context.Background()),
		gocron.WithName("refresh-token-purge"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create token purge job: %v", err)
	} else {
		js.addJob("token-purge", purgeJob)
	}

	if js.tenantSvc != nil {
		warmJob, err := js.scheduler.NewJob(
			gocron.DurationJob(15*time.Minute),
			gocron.NewTask(js.warmTenantCache, context.Background()),
			gocron.WithName("tenant-cache-warm"),
		)
		if err != nil {
			log.Printf("Failed to create cache warm job: %v", err)
		} else {
			js.addJob("cache-warm", warmJob)
		}
	}
}

func (js *JobScheduler) addJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

func (js *JobScheduler) purgeExpiredTokens(ctx context.Context) {
	deleted, err := js.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("Token purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Purged %d expired refresh tokens", deleted)
	}
}

func (js *JobScheduler) warmTenantCache(ctx context.Context) {
	if err := js.tenantSvc.WarmCache(ctx); err != nil {
		log.Printf("Tenant cache warm failed: %v", err)
	}
}

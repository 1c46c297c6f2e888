package permission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-cmms/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BackfillScheduler runs the permission backfill on a cron schedule so users
// pick up entries for modules introduced after they were created.
type BackfillScheduler struct {
	service  PermissionService
	schedule string
	onStart  bool
	timeout  time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	scheduler *cron.Cron
	running   bool
}

func NewBackfillScheduler(service PermissionService, cfg *config.Config, logger *zap.Logger) *BackfillScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BackfillScheduler{
		service:  service,
		schedule: cfg.BackfillSchedule,
		onStart:  cfg.BackfillOnStart,
		timeout:  10 * time.Minute,
		logger:   logger.Named("backfill_scheduler"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the job. An empty schedule disables the scheduler.
func (b *BackfillScheduler) Start() error {
	if b.schedule == "" {
		b.logger.Info("permission backfill schedule disabled")
		b.runOnStart()
		return nil
	}

	b.scheduler = cron.New()
	if _, err := b.scheduler.AddFunc(b.schedule, b.run); err != nil {
		return fmt.Errorf("invalid backfill schedule %q: %w", b.schedule, err)
	}
	b.scheduler.Start()
	b.logger.Info("permission backfill scheduled", zap.String("schedule", b.schedule))

	b.runOnStart()
	return nil
}

func (b *BackfillScheduler) runOnStart() {
	if !b.onStart {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run()
	}()
}

// Stop cancels any run in progress and returns once every run has returned,
// scheduled or not.
func (b *BackfillScheduler) Stop() {
	b.cancel()
	if b.scheduler != nil {
		<-b.scheduler.Stop().Done()
	}
	b.wg.Wait()
}

// run skips a tick while the previous run is still in progress
func (b *BackfillScheduler) run() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		b.logger.Warn("permission backfill still running, skipping tick")
		return
	}
	b.running = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	if b.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	if _, err := b.service.BackfillAll(ctx); err != nil {
		b.logger.Error("scheduled permission backfill failed", zap.Error(err))
	}
}

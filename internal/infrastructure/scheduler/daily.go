// Package scheduler runs ledger maintenance jobs once a day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one maintenance task
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// DailyConfig holds the time of day the jobs run at
type DailyConfig struct {
	Hour   int
	Minute int
	// CheckInterval is how often the loop looks at the clock
	CheckInterval time.Duration
}

// DefaultDailyConfig runs at 02:00, checking every minute
func DefaultDailyConfig() DailyConfig {
	return DailyConfig{Hour: 2, Minute: 0, CheckInterval: time.Minute}
}

// DailyTrigger runs its jobs once per day, at or after the configured time
type DailyTrigger struct {
	config DailyConfig
	jobs   []Job
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   string
}

// NewDailyTrigger creates a trigger for jobs
func NewDailyTrigger(config DailyConfig, logger *zap.Logger, jobs ...Job) *DailyTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{config: config, jobs: jobs, logger: logger, now: time.Now}
}

// Start begins the check loop
func (d *DailyTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return nil
	}
	d.isRunning = true

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily maintenance scheduled",
		zap.Int("hour", d.config.Hour),
		zap.Int("minute", d.config.Minute),
		zap.Int("jobs", len(d.jobs)),
	)
	return nil
}

// Stop ends the loop and waits for a running job until ctx ends
func (d *DailyTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.cancel()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Daily maintenance stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs the jobs when the configured time has passed today and they have
// not run yet. It reports whether they ran.
func (d *DailyTrigger) Tick(ctx context.Context) bool {
	now := d.now()
	today := now.Format("2006-01-02")
	due := time.Date(now.Year(), now.Month(), now.Day(), d.config.Hour, d.config.Minute, 0, 0, now.Location())

	d.mu.Lock()
	if d.lastRun == today || now.Before(due) {
		d.mu.Unlock()
		return false
	}
	d.lastRun = today
	d.mu.Unlock()

	d.RunNow(ctx)
	return true
}

// RunNow runs every job in order. A failing job is logged and does not stop
// the ones after it.
func (d *DailyTrigger) RunNow(ctx context.Context) {
	for _, job := range d.jobs {
		start := d.now()
		if err := job.Run(ctx); err != nil {
			d.logger.Error("Maintenance job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		d.logger.Info("Maintenance job finished",
			zap.String("job", job.Name),
			zap.Duration("took", d.now().Sub(start)),
		)
	}
}

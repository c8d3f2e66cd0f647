package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"custody-tracker/config"
)

// Runner executes one alert cycle
type Runner interface {
	Run(ctx context.Context, trigger Trigger) (*Outcome, error)
}

// Scheduler drives the daily alert cycle in a fixed timezone plus an optional
// warm-up run shortly after Start
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	warmup     time.Duration
	runTimeout time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler validates cfg and registers the cycle job; nothing runs until Start
func NewScheduler(runner Runner, cfg config.SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", cfg.Timezone, err)
	}

	cl := cronLogger{sugar: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       c,
		runner:     runner,
		warmup:     cfg.WarmupDelay,
		runTimeout: cfg.RunTimeout,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	if _, err := c.AddFunc(cfg.Cron, func() { s.runOnce(TriggerTimer) }); err != nil {
		cancel()
		return nil, fmt.Errorf("scheduler cron %q: %w", cfg.Cron, err)
	}

	logger.Info("alert scheduler configured",
		zap.String("cron", cfg.Cron),
		zap.String("timezone", loc.String()),
		zap.Duration("warmup_delay", cfg.WarmupDelay),
	)
	return s, nil
}

// Start begins firing the cron schedule and arms the warm-up run
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.cron.Start()

	if s.warmup > 0 {
		s.wg.Add(1)
		s.timer = time.AfterFunc(s.warmup, func() {
			defer s.wg.Done()
			s.runOnce(TriggerTimer)
		})
	}
}

// Stop halts the schedule and waits for a running cycle until ctx expires.
// In-flight cycles see their context cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	s.cancel()
	s.mu.Unlock()

	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("alert scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop alert scheduler: %w", ctx.Err())
	}
}

// runOnce one tick; failures are logged and the cycle is skipped
func (s *Scheduler) runOnce(trigger Trigger) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("alert cycle panicked", zap.Any("panic", r))
		}
	}()

	out, err := s.runner.Run(ctx, trigger)
	if err != nil {
		s.logger.Error("scheduled alert cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled alert cycle done",
		zap.Int("alerts_fired", out.AlertsFired),
		zap.String("email_status", string(out.EmailStatus)),
	)
}

// cronLogger routes cron diagnostics through zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Package scheduler runs the periodic trade jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/livetrade"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type TradeSettler interface {
	Settle(ctx context.Context, userID uuid.UUID, now time.Time) ([]*livetrade.LiveTrade, error)
}

type ProgressAdvancer interface {
	AdvanceProgress(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	settler  TradeSettler
	advancer ProgressAdvancer
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New registers the settlement and progress jobs. Overlapping runs of the
// same job are skipped and panics are recovered.
func New(
	cfg *config.Scheduler,
	settler TradeSettler,
	advancer ProgressAdvancer,
	logger *slog.Logger,
) (*Scheduler, error) {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		settler:  settler,
		advancer: advancer,
		timeout:  time.Minute,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if _, err := s.cron.AddFunc(cfg.SettleSpec, s.settle); err != nil {
		return nil, fmt.Errorf("settle schedule %q: %w", cfg.SettleSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.ProgressSpec, s.advance); err != nil {
		return nil, fmt.Errorf("progress schedule %q: %w", cfg.ProgressSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop prevents new runs and returns a context that is done once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) settle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	settled, err := s.settler.Settle(ctx, uuid.Nil, s.now())
	if err != nil {
		s.logger.Error("Live trade settlement failed", "error", err)
		return
	}
	if len(settled) > 0 {
		s.logger.Info("Live trades settled", "count", len(settled))
	}
}

func (s *Scheduler) advance() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.advancer.AdvanceProgress(ctx, s.now())
	if err != nil {
		s.logger.Error("Copy trade progress failed", "error", err)
		return
	}
	s.logger.Debug("Copy trade progress advanced", "changed", n)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

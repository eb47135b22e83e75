package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	jobmetrics "github.com/odyssey-erp/odyssey-lite/internal/jobs"
	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/observability"
)

// SweepJob is the job label used for sweep metrics.
const SweepJob = "ledger.sweep"

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Sweeper evicts session ledgers whose session has been idle past its TTL.
type Sweeper struct {
	registry *ledger.Registry
	metrics  *observability.Metrics
	jobs     *jobmetrics.Metrics
	logger   *slog.Logger
	sched    *cron.Cron
}

// NewSweeper schedules registry sweeps using a cron spec such as "@every 5m".
func NewSweeper(spec string, registry *ledger.Registry, metrics *observability.Metrics, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		sched:    cron.New(cron.WithParser(cronParser)),
	}
	if metrics != nil {
		s.jobs = jobmetrics.NewMetrics(metrics.Registerer())
	}
	if _, err := s.sched.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("app: schedule sweeper %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce evicts idle ledgers and refreshes the gauges.
func (s *Sweeper) RunOnce() {
	tracker := s.jobs.Track(SweepJob)
	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("app: sweep panicked: %v", rec)
			s.logger.Error("ledger sweep panicked", slog.Any("panic", rec))
		}
		_ = tracker.End(err)
	}()
	removed := s.registry.Sweep()
	active := s.registry.Len()
	tracker.Processed(removed)
	s.metrics.AddSweptLedgers(removed)
	s.metrics.SetActiveLedgers(active)
	if removed > 0 {
		s.logger.Info("swept idle ledgers", slog.Int("removed", removed), slog.Int("active", active))
	}
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sched.Start()
	<-ctx.Done()
	stopped := s.sched.Stop()
	<-stopped.Done()
	return nil
}

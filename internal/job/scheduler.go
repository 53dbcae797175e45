package job

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.SugaredLogger }

func (c cronLogger) Info(msg string, kv ...interface{}) { c.l.Debugw(msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Errorw(msg, append(kv, "error", err)...)
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// NewScheduler builds a seconds-resolution scheduler in the named time zone.
func NewScheduler(timeZone string, l *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", timeZone, err)
	}
	cl := cronLogger{l: l.Named("cron").Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{cron: c, log: l}, nil
}

func (s *Scheduler) Add(spec string, j cron.Job) error {
	if _, err := s.cron.AddJob(spec, j); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.log.Info("job scheduled", zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and blocks until running jobs return or timeout elapses.
func (s *Scheduler) Stop(timeout time.Duration) {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(timeout):
		s.log.Warn("cron jobs still running at shutdown")
	}
}

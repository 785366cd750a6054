package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mockraft/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultJobTimeout = 2 * time.Minute

type JobFunc func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Logger

	mu   sync.Mutex
	jobs map[string]JobFunc
}

func New(logger *logrus.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
		jobs:   map[string]JobFunc{},
	}
}

// Add registers fn under name on the cron spec. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "off") {
		if s.logger != nil {
			s.logger.Printf("[Scheduler] job disabled name=%s", name)
		}
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.mu.Lock()
	s.jobs[name] = fn
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Printf("[Scheduler] job registered name=%s spec=%q", name, spec)
	}
	return nil
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	return s.run(name, fn)
}

func (s *Scheduler) run(name string, fn JobFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordSchedulerRun(name, err == nil)
	if s.logger != nil {
		fields := logrus.Fields{"job": name, "duration": time.Since(start).String()}
		if err != nil {
			s.logger.WithFields(fields).WithError(err).Warn("[Scheduler] job failed")
		} else {
			s.logger.WithFields(fields).Debug("[Scheduler] job done")
		}
	}
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(kv(keysAndValues)).Debug("[Scheduler] " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(kv(keysAndValues)).WithError(err).Error("[Scheduler] " + msg)
}

func kv(pairs []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(pairs); i += 2 {
		f[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return f
}

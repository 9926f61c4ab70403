// Package scheduler runs periodic jobs on robfig/cron.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/infrastructure/metrics"
)

// JobFunc is one run of a job; the returned count is logged.
type JobFunc func(ctx context.Context) (int, error)

type Scheduler struct {
	cron    *cron.Cron
	log     logrus.FieldLogger
	timeout time.Duration
}

// New schedules in UTC. Runs of the same job never overlap and a panicking
// job is recovered.
func New(log logrus.FieldLogger, timeout time.Duration) *Scheduler {
	clog := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		log:     log,
		timeout: timeout,
	}
}

// Add registers fn under a standard 5-field cron spec.
func (s *Scheduler) Add(spec, name string, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	return err
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	d := time.Since(start)
	metrics.JobRun(name, d, err)

	log := s.log.WithFields(logrus.Fields{"job": name, "count": n, "took": d.String()})
	if err != nil {
		log.WithError(err).Error("job failed")
		return
	}
	log.Info("job finished")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running ones or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

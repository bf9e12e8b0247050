// Package backup takes periodic hot copies of the ledger database.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const fileTimeLayout = "20060102T150405Z"

type snapshotter interface {
	Snapshot(path string) error
}

type forgetter interface {
	Forget(retention time.Duration) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	ledger snapshotter
	dir    string
	log    logrus.FieldLogger
	now    func() time.Time

	dedupe    forgetter
	retention time.Duration
}

type Option func(*Scheduler)

// WithDedupePruning also drops remembered chat update ids older than
// retention on every run.
func WithDedupePruning(f forgetter, retention time.Duration) Option {
	return func(s *Scheduler) {
		s.dedupe = f
		s.retention = retention
	}
}

func New(schedule, dir string, ledger snapshotter, log logrus.FieldLogger, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ledger: ledger,
		dir:    dir,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.Run() }); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents further runs and returns a context done once a running job
// finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Run writes one snapshot and returns its path.
func (s *Scheduler) Run() (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.log.WithError(err).Error("create backup directory")
		return "", err
	}

	path := filepath.Join(s.dir, "ledger-"+s.now().UTC().Format(fileTimeLayout)+".db")
	if err := s.ledger.Snapshot(path); err != nil {
		s.log.WithError(err).WithField("path", path).Error("ledger snapshot failed")
		return "", err
	}
	s.log.WithField("path", path).Info("ledger snapshot written")

	if s.dedupe != nil {
		removed, err := s.dedupe.Forget(s.retention)
		if err != nil {
			s.log.WithError(err).Warn("prune dedupe records")
		} else if removed > 0 {
			s.log.WithField("removed", removed).Info("dedupe records pruned")
		}
	}

	return path, nil
}

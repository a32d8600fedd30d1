// Package cron runs the periodic maintenance jobs: the nightly form backup
// and the audit log retention sweep.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/linskybing/fieldreport-go/internal/logging"
	"github.com/linskybing/fieldreport-go/internal/metrics"
	robfig "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const backupTimeout = 10 * time.Minute

type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

type LogCleaner interface {
	CleanupOldLogs(days int) (int64, error)
}

type Scheduler struct {
	cron          *robfig.Cron
	backup        BackupRunner
	cleaner       LogCleaner
	retentionDays int
	log           *logrus.Entry
}

func New(backup BackupRunner, cleaner LogCleaner, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          robfig.New(robfig.WithChain(robfig.Recover(robfig.DefaultLogger))),
		backup:        backup,
		cleaner:       cleaner,
		retentionDays: retentionDays,
		log:           logging.WithComponent("cron"),
	}
}

// Register adds both jobs. An empty spec disables that job.
func (s *Scheduler) Register(backupSpec, cleanupSpec string) error {
	if backupSpec != "" {
		if _, err := s.cron.AddFunc(backupSpec, func() { s.RunBackup(context.Background()) }); err != nil {
			return fmt.Errorf("backup schedule %q: %w", backupSpec, err)
		}
		s.log.WithField("schedule", backupSpec).Info("backup job registered")
	}
	if cleanupSpec != "" {
		if _, err := s.cron.AddFunc(cleanupSpec, s.RunCleanup); err != nil {
			return fmt.Errorf("cleanup schedule %q: %w", cleanupSpec, err)
		}
		s.log.WithFields(logrus.Fields{
			"schedule":       cleanupSpec,
			"retention_days": s.retentionDays,
		}).Info("audit cleanup job registered")
	}
	return nil
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) RunBackup(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()

	start := time.Now()
	path, err := s.backup.Run(ctx)
	metrics.RecordBackup(err == nil)
	if err != nil {
		s.log.WithError(err).Error("backup failed")
		return false
	}
	s.log.WithFields(logrus.Fields{
		"path":     path,
		"duration": time.Since(start).String(),
	}).Info("backup written")
	return true
}

func (s *Scheduler) RunCleanup() {
	if s.retentionDays <= 0 {
		s.log.Warn("audit retention disabled, skipping cleanup")
		return
	}
	n, err := s.cleaner.CleanupOldLogs(s.retentionDays)
	if err != nil {
		s.log.WithError(err).Error("audit cleanup failed")
		return
	}
	s.log.WithField("deleted", n).Info("audit cleanup completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionSweeper drops idle wizard sessions
type SessionSweeper interface {
	Sweep(idle time.Duration) int
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	sweeper  SessionSweeper
	idle     time.Duration
	schedule string
	logger   *logrus.Logger
}

// NewCronService creates a new CronService. schedule is a standard
// five-field cron spec.
func NewCronService(sweeper SessionSweeper, idle time.Duration, schedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(),
		sweeper:  sweeper,
		idle:     idle,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepSessionsJob); err != nil {
		return fmt.Errorf("failed to schedule session sweep job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"schedule":     s.schedule,
		"idle_timeout": s.idle.String(),
	}).Info("Scheduled: sweep idle walk-in sessions")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// RunSweepNow runs the session sweep immediately and returns the number removed
func (s *CronService) RunSweepNow() int {
	return s.sweep()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}

func (s *CronService) sweepSessionsJob() {
	s.sweep()
}

func (s *CronService) sweep() int {
	start := time.Now()
	removed := s.sweeper.Sweep(s.idle)

	entry := s.logger.WithFields(logrus.Fields{
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if removed > 0 {
		entry.Info("[CRON] Swept idle walk-in sessions")
	} else {
		entry.Debug("[CRON] No idle walk-in sessions")
	}
	return removed
}

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/scrypster/promptcraft/internal/logger"
)

// ErrRunning is returned by Start and Restore when the scheduler is already running.
var ErrRunning = errors.New("backup scheduler is running")

// Service runs backups on a cron schedule.
type Service struct {
	cfg      Config
	schedule cron.Schedule
	log      *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	stop    chan struct{} // closed when the current run ends
	lastRun time.Time

	// backupMu serialises BackupNow between the scheduler and manual calls.
	backupMu sync.Mutex
}

// NewService validates cfg, parses the schedule and creates the backup directory.
func NewService(cfg Config, log *logger.Logger) (*Service, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("backup: database handle is required")
	}
	if cfg.BackupDir == "" {
		return nil, fmt.Errorf("backup: backup directory is required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7
	}
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("backup: invalid schedule %q: %w", cfg.Schedule, err)
	}
	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: failed to create backup directory: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		cfg:      cfg,
		schedule: schedule,
		log:      log.With("component", "backup"),
		now:      time.Now,
	}, nil
}

// Start schedules backups until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}

	s.cron = cron.New()
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		result, err := s.BackupNow(ctx)
		if err != nil {
			s.log.Error("scheduled backup failed", "error", err)
			return
		}
		s.log.Info("scheduled backup completed",
			"path", result.Path,
			"size", result.Size,
			"duration", result.Duration,
			"verified", result.Verified,
			"pruned", result.Pruned)
	}))
	s.cron.Start()
	s.running = true
	stop := make(chan struct{})
	s.stop = stop
	s.log.Info("backup scheduler started", "schedule", s.cfg.Schedule, "dir", s.cfg.BackupDir)

	// Only this run's context may end this run.
	go func() {
		select {
		case <-ctx.Done():
			s.stopRun(stop)
		case <-stop:
		}
	}()
	return nil
}

// Stop halts the scheduler and waits for a running backup to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	s.stopRun(stop)
}

// stopRun ends the run identified by stop. It is a no-op when that run has
// already ended.
func (s *Service) stopRun(stop chan struct{}) {
	s.mu.Lock()
	if !s.running || stop == nil || s.stop != stop {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.running = false
	s.stop = nil
	close(stop)
	s.mu.Unlock()

	<-c.Stop().Done()
	s.log.Info("backup scheduler stopped")
}

// BackupNow writes a new backup, verifies it when configured and applies retention.
// A failed verification removes the broken file.
func (s *Service) BackupNow(ctx context.Context) (*Result, error) {
	s.backupMu.Lock()
	defer s.backupMu.Unlock()

	start := s.now()
	path := filepath.Join(s.cfg.BackupDir, backupFileName(start))
	if err := backupSQLite(ctx, s.cfg.DB, path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	result := &Result{Path: path, Size: info.Size()}

	if s.cfg.Verify {
		if err := verifyBackup(path); err != nil {
			_ = os.Remove(path)
			return nil, fmt.Errorf("backup verification failed: %w", err)
		}
		result.Verified = true
	}

	pruned, err := applyRetention(s.cfg.BackupDir, s.cfg.Retention)
	if err != nil {
		s.log.Warn("failed to apply retention", "error", err)
	}
	result.Pruned = pruned
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.lastRun = start
	s.mu.Unlock()
	return result, nil
}

// List returns stored backups, newest first.
func (s *Service) List() ([]Info, error) {
	return listBackups(s.cfg.BackupDir)
}

// Restore copies backupPath over the database file. The database handle given
// in Config must be closed first and the scheduler must be stopped.
func (s *Service) Restore(backupPath string) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return ErrRunning
	}
	if s.cfg.DBPath == "" {
		return fmt.Errorf("backup: database path is required for restore")
	}
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	if err := restoreSQLite(backupPath, s.cfg.DBPath); err != nil {
		return err
	}
	s.log.Info("database restored", "from", backupPath)
	return nil
}

// Health reports backup counts, disk usage and whether a backup is overdue.
// An unreadable backup directory is reported as HealthError, not as an error.
func (s *Service) Health() (*HealthStatus, error) {
	backups, err := s.List()
	if err != nil {
		return &HealthStatus{
			Status:    HealthError,
			Message:   err.Error(),
			BackupDir: s.cfg.BackupDir,
		}, nil
	}

	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()
	if last.IsZero() && len(backups) > 0 {
		last = backups[0].Timestamp
	}

	now := s.now()
	next := s.schedule.Next(now)
	status := &HealthStatus{
		Status:        HealthOK,
		LastBackup:    last,
		NextBackup:    next,
		TotalBackups:  len(backups),
		BackupDir:     s.cfg.BackupDir,
		DiskSpaceUsed: diskUsage(backups),
	}

	switch {
	case last.IsZero():
		status.Message = "No backups yet"
	case now.Sub(last) > 2*s.schedule.Next(next).Sub(next):
		status.Status = HealthWarning
		status.Message = fmt.Sprintf("Last backup was %v ago", now.Sub(last).Round(time.Minute))
	default:
		status.Message = fmt.Sprintf("Last backup: %v ago", now.Sub(last).Round(time.Minute))
	}
	return status, nil
}

// Package backup takes scheduled, verified copies of the SQLite database and
// prunes old copies by count.
package backup

import (
	"database/sql"
	"time"
)

// Config holds backup service configuration.
type Config struct {
	// DB is the live database handle. Backups run VACUUM INTO through it so
	// they see a consistent snapshot even in WAL mode.
	DB *sql.DB

	// DBPath is the database file restored into by Restore.
	DBPath string

	// BackupDir is the directory where backups are stored.
	BackupDir string

	// Schedule is a standard five-field cron expression or a descriptor such
	// as "@daily" (default: @daily).
	Schedule string

	// Retention is the number of newest backups to keep (default: 7).
	Retention int

	// Verify runs PRAGMA integrity_check on every new backup.
	Verify bool
}

// Info describes a backup file.
type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Result describes one completed backup.
type Result struct {
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
	Size     int64         `json:"size"`
	Verified bool          `json:"verified"`
	Pruned   int           `json:"pruned"`
}

// Health states.
const (
	HealthOK      = "ok"
	HealthWarning = "warning"
	HealthError   = "error"
)

// HealthStatus summarises the backup directory and schedule.
type HealthStatus struct {
	Status        string    `json:"status"` // ok | warning | error
	Message       string    `json:"message"`
	LastBackup    time.Time `json:"lastBackup"`
	NextBackup    time.Time `json:"nextBackup"`
	TotalBackups  int       `json:"totalBackups"`
	BackupDir     string    `json:"backupDir"`
	DiskSpaceUsed int64     `json:"diskSpaceUsed"`
}

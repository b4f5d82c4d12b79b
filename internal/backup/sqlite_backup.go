package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// backupSQLite writes a consistent copy of db to destPath with VACUUM INTO.
func backupSQLite(ctx context.Context, db *sql.DB, destPath string) error {
	quoted := strings.ReplaceAll(destPath, "'", "''")
	if _, err := db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// verifyBackup opens a backup read-only and runs SQLite's integrity check.
func verifyBackup(backupPath string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", backupPath))
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// restoreSQLite copies a verified backup over targetPath. The target database
// must not be open.
func restoreSQLite(backupPath, targetPath string) error {
	if err := verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	src, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("failed to create target file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return fmt.Errorf("failed to sync target file: %w", err)
	}

	// Stale WAL files would be replayed on top of the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(targetPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", suffix, err)
		}
	}
	return verifyBackup(targetPath)
}

package sqlite

import (
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/scrypster/promptcraft/internal/logger"
)

// dbPathFromDSN extracts the filesystem path from a SQLite DSN.
// Handles bare paths ("/path/to/db.sqlite") and file: URIs ("file:/path/to/db.sqlite?mode=rwc").
// Returns empty string for in-memory databases or unparseable DSNs.
func dbPathFromDSN(dsn string) string {
	if dsn == ":memory:" || dsn == "" {
		return ""
	}

	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == ":memory:" || path == "" {
			return ""
		}
		return path
	}

	return dsn
}

// isRecoverableWALError reports errors caused by stale WAL files left behind
// after a crash.
func isRecoverableWALError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database is locked")
}

// isWALStale checks whether -shm/-wal files exist for dbPath and no other
// process holds them open. Returns false when lsof is unavailable.
func isWALStale(dbPath string) bool {
	shmPath := dbPath + "-shm"
	walPath := dbPath + "-wal"

	if !fileExists(shmPath) && !fileExists(walPath) {
		return false
	}

	lsofPath, err := exec.LookPath("lsof")
	if err != nil {
		return false
	}

	output, err := exec.Command(lsofPath, "-t", dbPath, shmPath, walPath).Output()
	if err != nil {
		// lsof exits 1 when no process has the files open.
		return true
	}
	return strings.TrimSpace(string(output)) == ""
}

// removeStaleWAL removes the -shm and -wal files for dbPath.
func removeStaleWAL(dbPath string, log *logger.Logger) {
	for _, suffix := range []string{"-shm", "-wal"} {
		path := dbPath + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove stale WAL file", "path", path, "error", err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

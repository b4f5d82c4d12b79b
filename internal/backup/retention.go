package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix     = "promptcraft-backup-"
	backupSuffix     = ".db"
	backupTimeLayout = "20060102-150405.000000"
)

func backupFileName(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupTimeLayout) + backupSuffix
}

// listBackups returns the backups in backupDir, newest first. The timestamp
// comes from the file name; files that do not parse fall back to mtime.
func listBackups(backupDir string) ([]Info, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		ts, err := time.Parse(backupTimeLayout, strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix))
		if err != nil {
			ts = info.ModTime()
		}
		backups = append(backups, Info{Path: filepath.Join(backupDir, name), Timestamp: ts, Size: info.Size()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// applyRetention keeps the newest keep backups and deletes the rest. It
// returns how many files were removed.
func applyRetention(backupDir string, keep int) (int, error) {
	backups, err := listBackups(backupDir)
	if err != nil {
		return 0, err
	}
	if keep < 1 || len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	var lastErr error
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			lastErr = err
			continue
		}
		removed++
	}
	if lastErr != nil {
		return removed, fmt.Errorf("failed to delete some backups: %w", lastErr)
	}
	return removed, nil
}

func diskUsage(backups []Info) int64 {
	var total int64
	for _, b := range backups {
		total += b.Size
	}
	return total
}

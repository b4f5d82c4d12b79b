// Package sqlite implements the promptcraft stores on a single SQLite database
// using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/storage"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store owns the database handle shared by the template, execution and KV stores.
type Store struct {
	db  *sql.DB
	log *logger.Logger

	templates  *TemplateStore
	executions *ExecutionStore
	kv         *KVStore

	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the database at dsn and applies pending migrations.
// If the first open fails because of stale WAL files left by a crashed process,
// it verifies no other process holds them and retries once after removing them.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "sqlite")

	store, err := open(ctx, dsn, log)
	if err == nil {
		return store, nil
	}
	if !isRecoverableWALError(err) {
		return nil, err
	}

	dbPath := dbPathFromDSN(dsn)
	if dbPath == "" || !isWALStale(dbPath) {
		return nil, err
	}
	removeStaleWAL(dbPath, log)

	store, retryErr := open(ctx, dsn, log)
	if retryErr != nil {
		return nil, fmt.Errorf("failed after WAL recovery: %w (original: %v)", retryErr, err)
	}
	log.Warn("recovered from stale WAL files", "path", dbPath)
	return store, nil
}

func open(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection serialises
	// writes; WAL lets readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA busy_timeout = 5000", "set busy timeout"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	mgr, err := storage.NewMigrationManager(ctx, db, migrationFS, "migrations", storage.DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	applied, err := mgr.Up(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if applied > 0 {
		log.Info("applied migrations", "count", applied)
	}

	s := &Store{db: db, log: log}
	s.templates = &TemplateStore{db: db}
	s.executions = &ExecutionStore{db: db}
	s.kv = &KVStore{db: db}
	return s, nil
}

// Templates returns the template store.
func (s *Store) Templates() *TemplateStore { return s.templates }

// Executions returns the execution log.
func (s *Store) Executions() *ExecutionStore { return s.executions }

// KV returns the key-value store.
func (s *Store) KV() *KVStore { return s.kv }

// DB returns the underlying database connection. Backups use it for VACUUM INTO.
func (s *Store) DB() *sql.DB { return s.db }

// Close flushes the WAL into the main database file and releases resources.
// The TRUNCATE checkpoint removes the -shm and -wal files so that another
// process can open the database without encountering stale WAL state.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			s.log.Warn("WAL checkpoint on close failed", "error", err)
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

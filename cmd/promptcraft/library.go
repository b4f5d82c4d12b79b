package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrypster/promptcraft/internal/backup"
	"github.com/scrypster/promptcraft/internal/importer"
	"github.com/scrypster/promptcraft/internal/storage/sqlite"
)

const defaultDBPath = "./data/promptcraft.db"

func (c *cli) libraryCmd() *cobra.Command {
	var (
		dir    string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Import a directory of Markdown prompts into the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			log, err := c.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			store, err := sqlite.Open(ctx, dbPath, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := importer.NewLibraryImporter(store.Templates(), log).Import(ctx, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Files found:       %d\n", result.FilesFound)
			fmt.Fprintf(c.out, "Templates created: %d\n", result.TemplatesCreated)
			fmt.Fprintf(c.out, "Skipped:           %d\n", result.FilesSkipped)
			fmt.Fprintf(c.out, "Failed:            %d\n", result.FilesFailed)
			for _, e := range result.Errors {
				fmt.Fprintf(c.out, "  %s\n", e)
			}
			if result.FilesFailed > 0 {
				return fmt.Errorf("%d files failed to import", result.FilesFailed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of Markdown prompt files")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "Path to the SQLite database")
	return cmd
}

func (c *cli) backupCmd() *cobra.Command {
	var (
		dbPath    string
		backupDir string
		retention int
		verify    bool
	)

	// withService opens the database and hands a backup service to fn.
	withService := func(ctx context.Context, fn func(*backup.Service, *sqlite.Store) error) error {
		log, err := c.logger()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := sqlite.Open(ctx, dbPath, log)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		svc, err := backup.NewService(backup.Config{
			DB:        store.DB(),
			DBPath:    dbPath,
			BackupDir: backupDir,
			Retention: retention,
			Verify:    verify,
		}, log)
		if err != nil {
			return err
		}
		return fn(svc, store)
	}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up, list, check or restore the local database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "Path to the SQLite database")
	cmd.PersistentFlags().StringVar(&backupDir, "dir", "./backups", "Backup directory")
	cmd.PersistentFlags().IntVar(&retention, "retention", 7, "Number of backups to keep")
	cmd.PersistentFlags().BoolVar(&verify, "verify", true, "Verify backups after creation")

	cmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Perform a single backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *backup.Service, _ *sqlite.Store) error {
				result, err := svc.BackupNow(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Path:     %s\n", result.Path)
				fmt.Fprintf(c.out, "Size:     %.2f MB\n", float64(result.Size)/(1024*1024))
				fmt.Fprintf(c.out, "Duration: %v\n", result.Duration.Round(time.Millisecond))
				fmt.Fprintf(c.out, "Verified: %v\n", result.Verified)
				fmt.Fprintf(c.out, "Pruned:   %d\n", result.Pruned)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *backup.Service, _ *sqlite.Store) error {
				backups, err := svc.List()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintln(c.out, "No backups found")
					return nil
				}
				for i, b := range backups {
					fmt.Fprintf(c.out, "%d. %s  %.2f MB  %s\n", i+1, b.Path,
						float64(b.Size)/(1024*1024), b.Timestamp.Format(time.RFC3339))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Report backup status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *backup.Service, _ *sqlite.Store) error {
				health, err := svc.Health()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Status: %s\n", health.Status)
				fmt.Fprintf(c.out, "Message: %s\n", health.Message)
				fmt.Fprintf(c.out, "Total Backups: %d\n", health.TotalBackups)
				fmt.Fprintf(c.out, "Disk Space Used: %.2f MB\n", float64(health.DiskSpaceUsed)/(1024*1024))
				if health.Status != backup.HealthOK {
					return fmt.Errorf("backups are %s", health.Status)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *backup.Service, store *sqlite.Store) error {
				// The live handle must be closed before the file is replaced.
				if err := store.Close(); err != nil {
					return err
				}
				if err := svc.Restore(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Database restored successfully")
				return nil
			})
		},
	})
	return cmd
}

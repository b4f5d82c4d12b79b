// Command promptcraft-web serves the promptcraft HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/promptcraft/internal/backup"
	"github.com/scrypster/promptcraft/internal/config"
	"github.com/scrypster/promptcraft/internal/llm"
	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/server"
	"github.com/scrypster/promptcraft/internal/services"
	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/internal/storage/memory"
	"github.com/scrypster/promptcraft/internal/storage/postgres"
	"github.com/scrypster/promptcraft/internal/storage/redis"
	"github.com/scrypster/promptcraft/internal/storage/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, zlog)
	if err != nil {
		zlog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.backups != nil {
		if err := a.backups.Start(ctx); err != nil {
			zlog.Error("failed to start backups", "error", err)
			os.Exit(1)
		}
	}

	addr, err := server.Start(ctx, cfg, a.deps())
	if err != nil {
		zlog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	zlog.Info("promptcraft running", "url", "http://"+addr)

	<-ctx.Done()
	zlog.Info("shutting down gracefully")
	time.Sleep(500 * time.Millisecond) // let in-flight requests finish
}

// app holds everything the server needs, plus what must be closed on exit.
type app struct {
	service *services.PromptService
	backups *backup.Service
	log     *logger.Logger
	closers []func() error
}

func (a *app) deps() server.Deps {
	d := server.Deps{Service: a.service, Logger: a.log}
	// A nil *backup.Service must not become a non-nil interface.
	if a.backups != nil {
		d.Backups = a.backups
	}
	return d
}

// Close stops backups and closes stores in reverse order of opening.
func (a *app) Close() {
	if a.backups != nil {
		a.backups.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

// newApp opens the configured stores, builds the model invoker and the
// prompt service. On error everything opened so far is closed.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *app, err error) {
	a := &app{log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var (
		templates  storage.TemplateStore
		executions storage.ExecutionStore
		sqliteKV   storage.KVStore
	)

	switch cfg.Storage.Engine {
	case "postgres":
		pg, err := postgres.Open(ctx, cfg.Storage.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		templates, executions = pg.Templates(), pg.Executions()
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath(), log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		templates, executions, sqliteKV = db.Templates(), db.Executions(), db.KV()

		if cfg.Backup.Enabled {
			a.backups, err = backup.NewService(backup.Config{
				DB:        db.DB(),
				DBPath:    cfg.Storage.SQLitePath(),
				BackupDir: cfg.Backup.Path,
				Schedule:  cfg.Backup.Schedule,
				Retention: cfg.Backup.Retention,
				Verify:    cfg.Backup.Verify,
			}, log)
			if err != nil {
				return nil, err
			}
		}
	}

	var kv storage.KVStore
	switch cfg.KV.Backend {
	case "redis":
		r, err := redis.NewKVStore(ctx, redis.Options{
			Addr:     cfg.KV.RedisAddr,
			Password: cfg.KV.RedisPassword,
			DB:       cfg.KV.RedisDB,
			Prefix:   cfg.KV.RedisPrefix,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, r.Close)
		kv = r
	case "memory":
		kv = memory.NewKVStore()
	default:
		if sqliteKV == nil {
			return nil, errors.New("the sqlite KV backend requires the sqlite storage engine")
		}
		kv = sqliteKV
	}

	invoker, err := llm.NewInvoker(invokerConfig(cfg), log)
	if err != nil {
		return nil, err
	}

	a.service, err = services.NewPromptService(services.Options{
		Templates:  templates,
		Executions: executions,
		KV:         kv,
		Invoker:    invoker,
		Logger:     log,
		MaxTokens:  cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// invokerConfig picks the provider-specific settings for the configured provider.
func invokerConfig(cfg *config.Config) llm.Config {
	c := llm.Config{Provider: cfg.LLM.Provider, Timeout: cfg.LLM.Timeout}
	if cfg.LLM.MaxRetries > 0 {
		c.Resilience.Attempts = uint(cfg.LLM.MaxRetries)
	}
	switch cfg.LLM.Provider {
	case llm.ProviderOpenAI:
		c.APIKey, c.Model, c.BaseURL = cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel, cfg.LLM.OpenAIBaseURL
	case llm.ProviderAnthropic:
		c.APIKey, c.Model = cfg.LLM.AnthropicAPIKey, cfg.LLM.AnthropicModel
	default:
		c.Model, c.BaseURL = cfg.LLM.OllamaModel, cfg.LLM.OllamaURL
	}
	return c
}

// Package importer loads prompt libraries (directories of Markdown prompt
// files with YAML frontmatter) into a template store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/storage"
)

// Job status values.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// ImportResult is the final summary produced by a completed import job.
type ImportResult struct {
	JobID            string        `json:"jobId"`
	FilesFound       int           `json:"filesFound"`
	FilesProcessed   int           `json:"filesProcessed"`
	FilesSkipped     int           `json:"filesSkipped"`
	FilesFailed      int           `json:"filesFailed"`
	TemplatesCreated int           `json:"templatesCreated"`
	TemplateIDs      []string      `json:"templateIds,omitempty"`
	Errors           []string      `json:"errors,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// ImportProgress carries live progress data for a running job.
type ImportProgress struct {
	JobID          string `json:"jobId"`
	Status         string `json:"status"`
	FilesFound     int    `json:"filesFound"`
	FilesProcessed int    `json:"filesProcessed"`
	CurrentFile    string `json:"currentFile,omitempty"`
	Message        string `json:"message,omitempty"`
}

// ImportJob tracks the state of an async import.
type ImportJob struct {
	mu       sync.RWMutex
	progress ImportProgress
	result   *ImportResult
	done     chan struct{}
}

func newImportJob(jobID string) *ImportJob {
	return &ImportJob{
		progress: ImportProgress{JobID: jobID, Status: StatusRunning},
		done:     make(chan struct{}),
	}
}

// Progress returns a snapshot of the current import progress.
func (j *ImportJob) Progress() ImportProgress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

// Done is closed when the job finishes.
func (j *ImportJob) Done() <-chan struct{} { return j.done }

// LibraryImporter walks a directory of Markdown prompts and creates one
// template per file.
type LibraryImporter struct {
	store storage.TemplateStore
	log   *logger.Logger
	now   func() time.Time

	mu   sync.RWMutex
	jobs map[string]*ImportJob
}

// NewLibraryImporter creates an importer writing into store.
func NewLibraryImporter(store storage.TemplateStore, log *logger.Logger) *LibraryImporter {
	if log == nil {
		log = logger.Nop()
	}
	return &LibraryImporter{
		store: store,
		log:   log.With("component", "importer"),
		now:   time.Now,
		jobs:  make(map[string]*ImportJob),
	}
}

// StartImport begins an asynchronous import of dirPath and returns the job ID.
func (imp *LibraryImporter) StartImport(ctx context.Context, dirPath string) (string, error) {
	if err := checkDir(dirPath); err != nil {
		return "", err
	}

	jobID := uuid.New().String()
	job := newImportJob(jobID)

	imp.mu.Lock()
	imp.jobs[jobID] = job
	imp.mu.Unlock()

	go func() {
		result := imp.run(ctx, job, dirPath)
		job.mu.Lock()
		job.result = result
		if len(result.Errors) > 0 && result.FilesProcessed == 0 {
			job.progress.Status = StatusFailed
			job.progress.Message = "Import failed"
		} else {
			job.progress.Status = StatusComplete
			job.progress.Message = fmt.Sprintf("Imported %d templates from %d files",
				result.TemplatesCreated, result.FilesFound)
		}
		job.progress.FilesProcessed = result.FilesFound
		job.progress.CurrentFile = ""
		job.mu.Unlock()
		close(job.done)
	}()

	return jobID, nil
}

// Import runs an import synchronously.
func (imp *LibraryImporter) Import(ctx context.Context, dirPath string) (*ImportResult, error) {
	if err := checkDir(dirPath); err != nil {
		return nil, err
	}
	return imp.run(ctx, newImportJob(uuid.New().String()), dirPath), nil
}

// Job returns the job with the given ID.
func (imp *LibraryImporter) Job(jobID string) (*ImportJob, bool) {
	imp.mu.RLock()
	defer imp.mu.RUnlock()
	job, ok := imp.jobs[jobID]
	return job, ok
}

// JobResult returns the final result of a job, or nil while it is running or
// when the job is unknown.
func (imp *LibraryImporter) JobResult(jobID string) *ImportResult {
	job, ok := imp.Job(jobID)
	if !ok {
		return nil
	}
	job.mu.RLock()
	defer job.mu.RUnlock()
	return job.result
}

func (imp *LibraryImporter) run(ctx context.Context, job *ImportJob, dirPath string) *ImportResult {
	start := time.Now()
	result := &ImportResult{JobID: job.progress.JobID}

	files, err := collectMarkdownFiles(dirPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("walk error: %v", err))
		return result
	}
	result.FilesFound = len(files)

	job.mu.Lock()
	job.progress.FilesFound = len(files)
	job.mu.Unlock()

	for i, absPath := range files {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}
		rel, _ := filepath.Rel(dirPath, absPath)

		job.mu.Lock()
		job.progress.FilesProcessed = i
		job.progress.CurrentFile = rel
		job.mu.Unlock()

		data, err := os.ReadFile(absPath)
		if err != nil {
			imp.log.Warn("skipping unreadable file", "path", rel, "error", err)
			result.FilesSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: read error: %v", rel, err))
			continue
		}
		if strings.TrimSpace(string(data)) == "" {
			result.FilesSkipped++
			continue
		}

		parsed, err := ParsePromptFile(data, rel)
		if err != nil {
			imp.log.Warn("skipping unparseable prompt", "path", rel, "error", err)
			result.FilesFailed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		id, err := imp.create(ctx, parsed)
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			result.FilesSkipped++
			continue
		case err != nil:
			imp.log.Warn("failed to store template", "path", rel, "error", err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: store error: %v", rel, err))
			continue
		}

		result.FilesProcessed++
		result.TemplatesCreated++
		result.TemplateIDs = append(result.TemplateIDs, id)
	}

	result.Duration = time.Since(start)
	imp.log.Info("prompt library import finished",
		"dir", dirPath,
		"found", result.FilesFound,
		"created", result.TemplatesCreated,
		"failed", result.FilesFailed)
	return result
}

func (imp *LibraryImporter) create(ctx context.Context, p *ParsedPrompt) (string, error) {
	tmpl := p.Template()
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	now := imp.now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	return tmpl.ID, imp.store.Create(ctx, tmpl)
}

func checkDir(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		return fmt.Errorf("cannot access directory %q: %w", dirPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dirPath)
	}
	return nil
}

// collectMarkdownFiles walks dirPath for .md / .markdown files, skipping
// hidden directories.
func collectMarkdownFiles(dirPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dirPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".md" || ext == ".markdown" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/internal/export"
	"github.com/scrypster/promptcraft/internal/llm"
	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/internal/storage/memory"
	"github.com/scrypster/promptcraft/internal/storage/sqlite"
	"github.com/scrypster/promptcraft/pkg/types"
)

// fakeInvoker returns a canned response and records the requests it saw.
type fakeInvoker struct {
	mu       sync.Mutex
	text     string
	tokens   int
	err      error
	requests []llm.Request
}

func (f *fakeInvoker) Name() string { return "fake" }

func (f *fakeInvoker) Invoke(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	model := req.Model
	if model == "" {
		model = "fake-1"
	}
	return llm.Response{Text: f.text, Model: model, TokensUsed: f.tokens}, nil
}

func newTestService(t *testing.T, inv llm.Invoker) *PromptService {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "promptcraft.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewPromptService(Options{
		Templates:  store.Templates(),
		Executions: store.Executions(),
		KV:         memory.NewKVStore(),
		Invoker:    inv,
		MaxTokens:  512,
	})
	require.NoError(t, err)

	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func validInput() types.PromptInput {
	return types.PromptInput{
		Config: types.BasePromptConfig{
			BasePrompt: "Suggest names for a neighbourhood coffee shop.",
			Domain:     "branding",
			Framework:  types.FrameworkRoleBased,
			FrameworkConfig: types.RoleBasedConfig{
				Role:    "brand strategist",
				Context: "independent cafes",
			},
		},
	}
}

func TestNewPromptService_RequiresStores(t *testing.T) {
	_, err := NewPromptService(Options{KV: memory.NewKVStore()})
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Compose(ctx, validInput())
	require.NoError(t, err)
	assert.True(t, result.Validation.IsValid)
	assert.Contains(t, result.Prompt.FinalPrompt, "brand strategist")
	assert.Equal(t, "branding", result.Prompt.Metadata.Domain)
	assert.Equal(t, svc.now(), result.Prompt.Metadata.Timestamp)

	usage, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.Compositions)
}

func TestCompose_ValidationFailed(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	in := validInput()
	in.Config.BasePrompt = "   "

	_, err := svc.Compose(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.False(t, verr.Result.IsValid)
	assert.True(t, verr.Result.HasCode("BASE_PROMPT_REQUIRED"))
	assert.Contains(t, err.Error(), "config.basePrompt")

	usage, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Zero(t, usage.Compositions)
}

func TestExecute_RecordsResultAndUsage(t *testing.T) {
	inv := &fakeInvoker{
		text:   "1. The Daily Grind (Probability: 0.30)\n2. Bean There (Probability: 0.10)",
		tokens: 42,
	}
	svc := newTestService(t, inv)
	ctx := context.Background()

	in := validInput()
	in.VSEnhancement = types.VSConfiguration{
		Enabled:          true,
		ResponseCount:    2,
		DistributionType: types.DistributionBroadSpectrum,
	}

	out, err := svc.Execute(ctx, ExecuteRequest{Input: in, Model: "gpt-test"})
	require.NoError(t, err)

	require.Len(t, inv.requests, 1)
	assert.Equal(t, 512, inv.requests[0].MaxTokens)
	assert.Equal(t, "gpt-test", inv.requests[0].Model)
	assert.Equal(t, out.Execution.Prompt.FinalPrompt, inv.requests[0].FinalPrompt)

	assert.NotEmpty(t, out.Execution.SessionID)
	assert.Equal(t, "gpt-test", out.Execution.Model)
	assert.Equal(t, 42, out.Execution.TokensUsed)
	require.NotNil(t, out.Parsed)
	require.Len(t, out.Parsed.Responses, 2)
	assert.Equal(t, "The Daily Grind", out.Parsed.Responses[0].Content)

	stored, err := svc.GetExecution(ctx, out.Execution.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.text, stored.Response)

	usage, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Usage{Compositions: 1, Executions: 1, TokensUsed: 42}, usage)

	csv, err := svc.ExportExecutionCSV(ctx, out.Execution.ID)
	require.NoError(t, err)
	assert.Equal(t, "Index,Content,Probability,Rationale,Category\n1,The Daily Grind,0.3,,\n2,Bean There,0.1,,\n", csv)
}

func TestExecute_SessionOrdering(t *testing.T) {
	inv := &fakeInvoker{text: "ok"}
	svc := newTestService(t, inv)
	ctx := context.Background()

	first, err := svc.Execute(ctx, ExecuteRequest{Input: validInput(), SessionID: "s1"})
	require.NoError(t, err)
	second, err := svc.Execute(ctx, ExecuteRequest{Input: validInput(), SessionID: "s1", MaxTokens: 64})
	require.NoError(t, err)
	assert.Nil(t, first.Parsed)
	assert.Equal(t, 64, inv.requests[1].MaxTokens)

	page, err := svc.ListExecutions(ctx, "s1", storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first.Execution.ID, page.Items[0].ID)
	assert.Equal(t, second.Execution.ID, page.Items[1].ID)

	_, err = svc.ListExecutions(ctx, "", storage.ListOptions{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no invoker", func(t *testing.T) {
		svc := newTestService(t, nil)
		_, err := svc.Execute(ctx, ExecuteRequest{Input: validInput()})
		assert.ErrorIs(t, err, ErrNoInvoker)
	})

	t.Run("invalid input never reaches the model", func(t *testing.T) {
		inv := &fakeInvoker{text: "ok"}
		svc := newTestService(t, inv)
		_, err := svc.Execute(ctx, ExecuteRequest{Input: types.PromptInput{}})
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, inv.requests)
	})

	t.Run("model failure is not recorded", func(t *testing.T) {
		inv := &fakeInvoker{err: llm.ErrCircuitOpen}
		svc := newTestService(t, inv)
		_, err := svc.Execute(ctx, ExecuteRequest{Input: validInput(), SessionID: "s"})
		assert.ErrorIs(t, err, llm.ErrCircuitOpen)

		page, err := svc.ListExecutions(ctx, "s", storage.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)

		usage, err := svc.Usage(ctx)
		require.NoError(t, err)
		assert.Zero(t, usage.Executions)
	})
}

func TestTemplates_CRUD(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	saved, err := svc.SaveTemplate(ctx, &types.PromptTemplate{
		ID:     "ignored",
		Name:   "Cafe names",
		Config: validInput().Config,
		Tags:   []string{"branding"},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	assert.Equal(t, svc.now(), saved.CreatedAt)

	got, err := svc.GetTemplate(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cafe names", got.Name)

	later := svc.now().Add(time.Hour)
	svc.now = func() time.Time { return later }
	got.Name = "Coffee shop names"
	updated, err := svc.UpdateTemplate(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	found, err := svc.SearchTemplates(ctx, "COFFEE", storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)

	all, err := svc.SearchTemplates(ctx, "  ", storage.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)

	require.NoError(t, svc.DeleteTemplate(ctx, saved.ID))
	_, err = svc.GetTemplate(ctx, saved.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, saved.ID), storage.ErrNotFound)
}

func TestTemplates_InvalidInput(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		tmpl *types.PromptTemplate
	}{
		{"nil", nil},
		{"blank name", &types.PromptTemplate{Name: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveTemplate(ctx, tt.tmpl)
			assert.ErrorIs(t, err, storage.ErrInvalidInput)
		})
	}

	_, err := svc.UpdateTemplate(ctx, &types.PromptTemplate{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTemplates_ExportImportRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	saved, err := svc.SaveTemplate(ctx, &types.PromptTemplate{Name: "Cafe names", Config: validInput().Config})
	require.NoError(t, err)

	doc, err := svc.ExportTemplate(ctx, saved.ID, "json")
	require.NoError(t, err)

	// The exported ID is taken, so the import lands under a new one.
	imported, err := svc.ImportTemplate(ctx, []byte(doc))
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, imported.ID)
	assert.Equal(t, saved.Name, imported.Name)
	assert.Equal(t, saved.Config, imported.Config)

	md, err := svc.ExportTemplate(ctx, saved.ID, "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Prompt Export"))

	_, err = svc.ExportTemplate(ctx, saved.ID, "docx")
	assert.Error(t, err)

	_, err = svc.ImportTemplate(ctx, []byte(`{"name":"no id"}`))
	assert.ErrorIs(t, err, export.ErrInvalidTemplate)
}

func TestDrafts(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.SaveDraft(ctx, "cafe", validInput()))

	draft, err := svc.LoadDraft(ctx, " cafe ")
	require.NoError(t, err)
	assert.Equal(t, validInput().Config, draft.Config)

	require.NoError(t, svc.DeleteDraft(ctx, "cafe"))
	_, err = svc.LoadDraft(ctx, "cafe")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.SaveDraft(ctx, "", validInput()), storage.ErrInvalidInput)
	assert.ErrorIs(t, svc.SaveDraft(ctx, strings.Repeat("x", 129), validInput()), storage.ErrInvalidInput)
}

func TestImportLibrary(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "marketing", "tagline.md"), "---\nname: Tagline\ntags: [copy]\n---\nWrite a tagline for a bakery.\n")

	result, err := svc.ImportLibrary(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TemplatesCreated)

	page, err := svc.SearchTemplates(ctx, "tagline", storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "marketing", page.Items[0].Config.Domain)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scrypster/promptcraft/internal/storage"
	"github.com/scrypster/promptcraft/pkg/types"
)

const (
	draftPrefix       = "draft:"
	maxDraftNameRunes = 128
)

// SaveDraft stores an unfinished configuration under name, replacing any
// previous draft of that name.
func (s *PromptService) SaveDraft(ctx context.Context, name string, in types.PromptInput) error {
	key, err := draftKey(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return s.kv.Set(ctx, key, data)
}

// LoadDraft returns the draft stored under name.
func (s *PromptService) LoadDraft(ctx context.Context, name string) (*types.PromptInput, error) {
	key, err := draftKey(name)
	if err != nil {
		return nil, err
	}
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var in types.PromptInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode draft %q: %w", name, err)
	}
	return &in, nil
}

// DeleteDraft removes the draft stored under name.
func (s *PromptService) DeleteDraft(ctx context.Context, name string) error {
	key, err := draftKey(name)
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, key)
}

func draftKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: draft name is required", storage.ErrInvalidInput)
	}
	if len([]rune(name)) > maxDraftNameRunes {
		return "", fmt.Errorf("%w: draft name exceeds %d characters", storage.ErrInvalidInput, maxDraftNameRunes)
	}
	return draftPrefix + name, nil
}

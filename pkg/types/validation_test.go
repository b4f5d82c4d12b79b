package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/promptcraft/pkg/types"
)

func TestNewValidationResult(t *testing.T) {
	res := types.NewValidationResult(nil, nil)
	assert.True(t, res.IsValid)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Warnings)

	res = types.NewValidationResult([]types.ValidationIssue{{Code: "X"}}, nil)
	assert.False(t, res.IsValid)
}

func TestValidationResult_MergeDoesNotMutate(t *testing.T) {
	a := types.NewValidationResult(nil, []types.ValidationIssue{{Code: "W1"}})
	b := types.NewValidationResult([]types.ValidationIssue{{Code: "E1"}}, nil)

	merged := a.Merge(b)

	assert.False(t, merged.IsValid)
	assert.Len(t, merged.Errors, 1)
	assert.Len(t, merged.Warnings, 1)
	assert.True(t, a.IsValid)
	assert.Empty(t, a.Errors)
	assert.Len(t, b.Warnings, 0)
	assert.True(t, merged.HasCode("W1"))
	assert.True(t, merged.HasCode("E1"))
	assert.False(t, merged.HasCode("E2"))
}

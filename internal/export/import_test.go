package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/pkg/types"
)

func TestImportTemplate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"id":`},
		{"missing required fields", `{"name":"x"}`},
		{"wrong id type", `{"id":1,"name":"x","config":{},"vsEnhancement":{},"createdAt":"2026-01-01T00:00:00Z"}`},
		{"unknown framework", `{"id":"a","name":"x","config":{"framework":"socratic"},"vsEnhancement":{},"createdAt":"2026-01-01T00:00:00Z"}`},
		{"foreign framework field", `{"id":"a","name":"x","config":{"framework":"role-based","frameworkConfig":{"examples":[]}},"vsEnhancement":{},"createdAt":"2026-01-01T00:00:00Z"}`},
		{"array document", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ImportTemplate([]byte(tt.data))
			assert.Nil(t, tmpl)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestImportTemplate_Minimal(t *testing.T) {
	tmpl, err := ImportTemplate([]byte(`{"id":"t1","name":"Minimal","config":{"basePrompt":"Hi there friend"},"vsEnhancement":{"enabled":false},"createdAt":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "t1", tmpl.ID)
	assert.Equal(t, "Hi there friend", tmpl.Config.BasePrompt)
	assert.Nil(t, tmpl.Config.FrameworkConfig)
}

func TestTemplateJSONRoundTrip(t *testing.T) {
	years := 12
	now := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
	original := types.PromptTemplate{
		ID:          "tmpl-roundtrip",
		Name:        "Incident postmortem",
		Description: "Blameless postmortem drafts",
		Config: types.BasePromptConfig{
			BasePrompt: "Draft a postmortem for {{incident}}",
			Domain:     "sre",
			Framework:  types.FrameworkTemplate,
			FrameworkConfig: types.TemplateConfig{
				Variables: map[string]string{"incident": "the March outage", "team": "platform"},
			},
		},
		VSEnhancement: types.VSConfiguration{
			Enabled:          true,
			ResponseCount:    3,
			DistributionType: types.DistributionRarityHunt,
		},
		Enhancements: types.EnhancementConfig{
			RoleEnhancement: types.RoleEnhancement{
				Enabled:           true,
				Type:              types.RoleTypeExpert,
				DomainSpecialty:   "site reliability",
				YearsOfExperience: &years,
			},
		},
		Tags:      []string{"sre", "writing"},
		CreatedAt: now,
		UpdatedAt: now.Add(time.Hour),
	}

	data, err := ExportTemplateJSON(original)
	require.NoError(t, err)

	got, err := ImportTemplate([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Description, got.Description)
	assert.Equal(t, original.Config, got.Config)
	assert.Equal(t, original.VSEnhancement, got.VSEnhancement)
	assert.Equal(t, original.Enhancements, got.Enhancements)
	assert.Equal(t, original.Tags, got.Tags)
	assert.True(t, original.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, original.UpdatedAt.Equal(got.UpdatedAt))
}

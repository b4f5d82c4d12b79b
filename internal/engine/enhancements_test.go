package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/promptcraft/pkg/types"
)

func intPtr(v int) *int { return &v }

func TestGenerators_DisabledReturnEmpty(t *testing.T) {
	// Fully populated but disabled configs must still render nothing.
	assert.Empty(t, GenerateRoleEnhancement(types.RoleEnhancement{
		Type: types.RoleTypeExpert, DomainSpecialty: "law", AuthorityLevel: types.AuthorityDefinitive,
	}))
	assert.Empty(t, GenerateFormatControl(types.FormatControl{
		Structure: types.StructureJSON, StyleGuide: types.StyleFormal,
	}))
	assert.Empty(t, GenerateSmartConstraints(types.SmartConstraints{
		Positive: []string{"examples"}, Negative: []string{"jargon"},
	}))
	assert.Empty(t, GenerateReasoningScaffold(types.ReasoningScaffold{
		ShowWork: true, StepByStep: true,
	}))
	assert.Empty(t, GenerateConversationFlow(types.ConversationFlow{
		Type: types.ConversationIterative, ContextPreservation: true,
	}))
}

func TestGenerateRoleEnhancement(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.RoleEnhancement
		want string
	}{
		{
			name: "expert with specialty and experience",
			cfg: types.RoleEnhancement{
				Enabled:           true,
				Type:              types.RoleTypeExpert,
				ExpertiseLevel:    types.ExpertiseExpert,
				DomainSpecialty:   "distributed systems",
				YearsOfExperience: intPtr(12),
				AuthorityLevel:    types.AuthorityDefinitive,
				Context:           "Reviewing a design document.",
			},
			want: "ROLE: You are a seasoned expert in distributed systems with 12 years of experience. " +
				"Give definitive answers and state conclusions decisively. Context: Reviewing a design document.",
		},
		{
			name: "persona uses custom role",
			cfg: types.RoleEnhancement{
				Enabled:    true,
				Type:       types.RoleTypePersona,
				CustomRole: "a grumpy lighthouse keeper",
			},
			want: "ROLE: You are a grumpy lighthouse keeper.",
		},
		{
			name: "advisor without level falls back to generic expert",
			cfg: types.RoleEnhancement{
				Enabled:        true,
				Type:           types.RoleTypeAdvisor,
				AuthorityLevel: types.AuthorityAdvisory,
			},
			want: "ROLE: You are an expert. Act as a trusted advisor to the user. " +
				"Offer recommendations and options rather than directives.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateRoleEnhancement(tt.cfg))
		})
	}
}

func TestGenerateFormatControl(t *testing.T) {
	got := GenerateFormatControl(types.FormatControl{
		Enabled:    true,
		Structure:  types.StructureBulletPoints,
		Length:     &types.LengthSpec{Type: types.LengthWordCount, Target: 200},
		StyleGuide: types.StyleTechnical,
	})
	assert.Equal(t, "FORMAT: Structure the response as a bulleted list. Aim for approximately 200 words. Use precise technical language.", got)

	custom := GenerateFormatControl(types.FormatControl{
		Enabled:      true,
		Structure:    types.StructureCustom,
		CustomFormat: "Title line, then three short paragraphs",
	})
	assert.Equal(t, "FORMAT: Follow this format exactly: Title line, then three short paragraphs.", custom)

	assert.Empty(t, GenerateFormatControl(types.FormatControl{Enabled: true}), "enabled with nothing to say")
}

func TestGenerateSmartConstraints(t *testing.T) {
	got := GenerateSmartConstraints(types.SmartConstraints{
		Enabled:      true,
		Positive:     []string{"examples", " citations "},
		Negative:     []string{"jargon"},
		QualityGates: []string{"", "  "},
		Tone:         []string{"friendly"},
		Length:       &types.LengthConstraint{Enabled: true, Min: 50, Max: 100, Unit: types.UnitWords},
	})

	want := "MUST INCLUDE: examples, citations\n" +
		"MUST AVOID: jargon\n" +
		"TONE: friendly\n" +
		"LENGTH: between 50 and 100 words"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "QUALITY GATES")
}

func TestGenerateSmartConstraints_LengthBounds(t *testing.T) {
	tests := []struct {
		name   string
		length types.LengthConstraint
		want   string
	}{
		{"min only", types.LengthConstraint{Enabled: true, Min: 10, Unit: types.UnitSentences}, "LENGTH: at least 10 sentences"},
		{"max only", types.LengthConstraint{Enabled: true, Max: 300}, "LENGTH: at most 300 words"},
		{"disabled", types.LengthConstraint{Min: 1, Max: 2}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.length
			got := GenerateSmartConstraints(types.SmartConstraints{Enabled: true, Length: &l})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateReasoningScaffold(t *testing.T) {
	got := GenerateReasoningScaffold(types.ReasoningScaffold{
		Enabled:             true,
		ShowWork:            true,
		StepByStep:          true,
		ExploreAlternatives: true,
		ConfidenceScoring:   true,
		ReasoningStyle:      types.ReasoningAnalytical,
	})
	assert.Equal(t, "REASONING: Show your work. Think through the problem step by step. "+
		"Consider alternative approaches before settling on an answer. "+
		"State your confidence in the final answer as a percentage. "+
		"Apply structured analytical decomposition.", got)
}

func TestGenerateConversationFlow(t *testing.T) {
	got := GenerateConversationFlow(types.ConversationFlow{
		Enabled:             true,
		Type:                types.ConversationIterative,
		ContextPreservation: true,
		FollowUpTemplates:   []string{"Want more detail?", "Shall I shorten it?"},
	})
	assert.Equal(t, "CONVERSATION: Expect to refine this answer over several turns. "+
		"Preserve context from earlier turns. Suggested follow-ups: Want more detail?; Shall I shorten it?", got)
}

func TestGenerators_Deterministic(t *testing.T) {
	cfg := types.SmartConstraints{
		Enabled:  true,
		Positive: []string{"a", "b", "c"},
		Tone:     []string{"warm", "direct"},
	}
	first := GenerateSmartConstraints(cfg)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, GenerateSmartConstraints(cfg))
	}
}

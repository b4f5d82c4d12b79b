package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/promptcraft/pkg/types"
)

func TestValidateBasePrompt(t *testing.T) {
	tests := []struct {
		name      string
		prompt    string
		wantValid bool
		wantCode  string
	}{
		{"empty", "", false, CodeBasePromptRequired},
		{"whitespace", "   \n\t", false, CodeBasePromptRequired},
		{"short", "Hi there", true, CodeBasePromptTooShort},
		{"too long", strings.Repeat("a", MaxBasePromptRunes+1), false, CodeBasePromptTooLong},
		{"placeholder", "Write a blog post about [insert topic here]", true, CodePlaceholderText},
		{"lorem ipsum", "Lorem ipsum dolor sit amet, summarize it", true, CodePlaceholderText},
		{"insert tag", "Reply to <insert customer name> politely", true, CodePlaceholderText},
		{"upper-case TODO", "TODO: describe the audience for this summary", true, CodePlaceholderText},
		{"upper-case TBD", "Plan the offsite, venue TBD, for the whole team", true, CodePlaceholderText},
		{"clean", "Summarize the quarterly report for the board.", true, ""},
		{"ordinary todo and placeholder words", "Build a todo list app with a placeholder attribute on inputs", true, ""},
		{"lower-case tbd", "Explain what tbd means in project emails", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBasePrompt(tt.prompt)
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantCode == "" {
				assert.Empty(t, res.Errors)
				assert.Empty(t, res.Warnings)
				return
			}
			assert.True(t, res.HasCode(tt.wantCode), "want %s in %+v", tt.wantCode, res)
		})
	}
}

func TestValidateBasePrompt_CountsRunes(t *testing.T) {
	// 20,000 multi-byte runes is within the limit even though it exceeds 20,000 bytes.
	res := ValidateBasePrompt(strings.Repeat("é", MaxBasePromptRunes))
	assert.True(t, res.IsValid)
}

func TestValidateFrameworkConfig(t *testing.T) {
	base := "Explain the difference between TCP and UDP."
	tests := []struct {
		name      string
		cfg       types.BasePromptConfig
		wantValid bool
		wantCode  string
	}{
		{"no framework", types.BasePromptConfig{BasePrompt: base}, true, ""},
		{"unknown framework", types.BasePromptConfig{BasePrompt: base, Framework: "socratic"}, false, CodeUnknownFramework},
		{
			"mismatched config",
			types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkFewShot, FrameworkConfig: types.RoleBasedConfig{Role: "x"}},
			false, CodeFrameworkConfigMismatch,
		},
		{"role missing", types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkRoleBased}, false, CodeRoleRequired},
		{
			"role present",
			types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkRoleBased, FrameworkConfig: types.RoleBasedConfig{Role: "a network engineer"}},
			true, "",
		},
		{"examples missing", types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkFewShot, FrameworkConfig: types.FewShotConfig{}}, false, CodeExamplesRequired},
		{
			"example incomplete",
			types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkFewShot, FrameworkConfig: types.FewShotConfig{
				Examples: []types.FewShotExample{{Input: "a", Output: "b"}, {Input: "c"}},
			}},
			false, CodeExampleIncomplete,
		},
		{
			"custom reasoning missing",
			types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkChainOfThought, FrameworkConfig: types.ChainOfThoughtConfig{ReasoningStructure: types.ReasoningCustom}},
			false, CodeCustomReasoningRequired,
		},
		{"cot default", types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkChainOfThought}, true, ""},
		{
			"unresolved variable",
			types.BasePromptConfig{BasePrompt: "Write about {{topic}}.", Framework: types.FrameworkTemplate, FrameworkConfig: types.TemplateConfig{}},
			true, CodeUnresolvedVariable,
		},
		{
			"constraints missing",
			types.BasePromptConfig{BasePrompt: base, Framework: types.FrameworkConstraintBased, FrameworkConfig: types.ConstraintBasedConfig{Constraints: []string{" "}}},
			false, CodeConstraintsRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateFrameworkConfig(tt.cfg)
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantCode != "" {
				assert.True(t, res.HasCode(tt.wantCode), "want %s in %+v", tt.wantCode, res)
			}
		})
	}
}

func TestValidateFrameworkConfig_ExampleIncompleteField(t *testing.T) {
	res := ValidateFrameworkConfig(types.BasePromptConfig{
		BasePrompt: "Translate words.",
		Framework:  types.FrameworkFewShot,
		FrameworkConfig: types.FewShotConfig{Examples: []types.FewShotExample{
			{Input: "a", Output: "b"},
			{Output: "d"},
		}},
	})
	if assert.Len(t, res.Errors, 1) {
		assert.Equal(t, "config.frameworkConfig.examples[1]", res.Errors[0].Field)
	}
}

func TestValidateVSConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       types.VSConfiguration
		wantValid bool
		wantCode  string
	}{
		{"disabled ignores everything", types.VSConfiguration{ResponseCount: 99, DistributionType: "weird"}, true, ""},
		{"count zero", types.VSConfiguration{Enabled: true, ResponseCount: 0, DistributionType: types.DistributionBroadSpectrum}, false, CodeResponseCountOutOfRange},
		{"count eleven", types.VSConfiguration{Enabled: true, ResponseCount: 11, DistributionType: types.DistributionBroadSpectrum}, false, CodeResponseCountOutOfRange},
		{"count bounds ok", types.VSConfiguration{Enabled: true, ResponseCount: 10, DistributionType: types.DistributionBroadSpectrum}, true, ""},
		{"bad distribution", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: "weird"}, false, CodeInvalidDistributionType},
		{"balanced without dimensions", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: types.DistributionBalancedCategories, Dimensions: []string{" "}}, false, CodeDimensionsRequired},
		{"balanced with custom dimensions", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: types.DistributionBalancedCategories, CustomDimensions: []string{"tone"}}, true, ""},
		{"threshold above one", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: types.DistributionRarityHunt, ProbabilityThreshold: floatPtr(1.5)}, false, CodeThresholdOutOfRange},
		{"threshold missing", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: types.DistributionRarityHunt}, true, CodeThresholdRecommended},
		{"threshold ignored", types.VSConfiguration{Enabled: true, ResponseCount: 3, DistributionType: types.DistributionBroadSpectrum, ProbabilityThreshold: floatPtr(0.2)}, true, CodeThresholdIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateVSConfig(tt.cfg)
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantCode != "" {
				assert.True(t, res.HasCode(tt.wantCode), "want %s in %+v", tt.wantCode, res)
			} else {
				assert.Empty(t, res.Errors)
			}
		})
	}
}

func TestValidateCompletePromptConfig_ExpertiseRequired(t *testing.T) {
	in := types.PromptInput{
		Config: types.BasePromptConfig{BasePrompt: "Design a caching layer for a read-heavy API."},
		Enhancements: types.EnhancementConfig{
			RoleEnhancement: types.RoleEnhancement{Enabled: true, Type: types.RoleTypeExpert},
		},
	}

	res := ValidateCompletePromptConfig(in)

	assert.False(t, res.IsValid)
	if assert.Len(t, res.Errors, 1) {
		assert.Equal(t, CodeExpertiseRequired, res.Errors[0].Code)
		assert.Equal(t, "roleEnhancement.domainSpecialty", res.Errors[0].Field)
	}
}

func TestValidateCompletePromptConfig_WarningsKeepValid(t *testing.T) {
	in := types.PromptInput{
		Config: types.BasePromptConfig{BasePrompt: "Short"},
		Enhancements: types.EnhancementConfig{
			ConversationFlow:  types.ConversationFlow{Enabled: true, Type: types.ConversationSingle},
			ReasoningScaffold: types.ReasoningScaffold{Enabled: true, ShowWork: true},
		},
	}

	res := ValidateCompletePromptConfig(in)

	assert.True(t, res.IsValid)
	assert.True(t, res.HasCode(CodeBasePromptTooShort))
	assert.True(t, res.HasCode(CodeSingleTurnShowWork))
	assert.Empty(t, res.Errors)
}

func TestValidateCompletePromptConfig_CollectsAcrossValidators(t *testing.T) {
	in := types.PromptInput{
		Config:        types.BasePromptConfig{Framework: types.FrameworkRoleBased},
		VSEnhancement: types.VSConfiguration{Enabled: true, ResponseCount: 20, DistributionType: types.DistributionBroadSpectrum},
	}

	res := ValidateCompletePromptConfig(in)

	assert.False(t, res.IsValid)
	assert.True(t, res.HasCode(CodeBasePromptRequired))
	assert.True(t, res.HasCode(CodeRoleRequired))
	assert.True(t, res.HasCode(CodeResponseCountOutOfRange))
}

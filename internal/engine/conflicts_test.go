package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/pkg/types"
)

func TestValidateEnhancementConflicts_Rules(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.EnhancementConfig
		wantCode string
		wantType types.ConflictType
	}{
		{
			name: "json with character length",
			cfg: types.EnhancementConfig{
				FormatControl: types.FormatControl{Enabled: true, Structure: types.StructureJSON},
				SmartConstraints: types.SmartConstraints{
					Enabled: true,
					Length:  &types.LengthConstraint{Enabled: true, Max: 500, Unit: types.UnitCharacters},
				},
			},
			wantCode: CodeJSONCharacterLength,
			wantType: types.ConflictWarning,
		},
		{
			name: "simple complexity for experts",
			cfg: types.EnhancementConfig{
				SmartConstraints: types.SmartConstraints{
					Enabled:         true,
					ComplexityLevel: types.ComplexitySimple,
					AudienceTarget:  "Domain Experts",
				},
			},
			wantCode: CodeComplexityAudienceMismatch,
			wantType: types.ConflictWarning,
		},
		{
			name: "single turn with show work",
			cfg: types.EnhancementConfig{
				ConversationFlow:  types.ConversationFlow{Enabled: true, Type: types.ConversationSingle},
				ReasoningScaffold: types.ReasoningScaffold{Enabled: true, ShowWork: true},
			},
			wantCode: CodeSingleTurnShowWork,
			wantType: types.ConflictWarning,
		},
		{
			name: "expert without specialty",
			cfg: types.EnhancementConfig{
				RoleEnhancement: types.RoleEnhancement{Enabled: true, Type: types.RoleTypeExpert, DomainSpecialty: "  "},
			},
			wantCode: CodeExpertiseRequired,
			wantType: types.ConflictError,
		},
		{
			name: "persona without custom role",
			cfg: types.EnhancementConfig{
				RoleEnhancement: types.RoleEnhancement{Enabled: true, Type: types.RoleTypePersona},
			},
			wantCode: CodeCustomRoleRequired,
			wantType: types.ConflictError,
		},
		{
			name: "custom format without description",
			cfg: types.EnhancementConfig{
				FormatControl: types.FormatControl{Enabled: true, Structure: types.StructureCustom},
			},
			wantCode: CodeCustomFormatRequired,
			wantType: types.ConflictError,
		},
		{
			name: "min above max",
			cfg: types.EnhancementConfig{
				SmartConstraints: types.SmartConstraints{
					Length: &types.LengthConstraint{Enabled: true, Min: 200, Max: 100},
				},
			},
			wantCode: CodeInvalidLengthRange,
			wantType: types.ConflictError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts := ValidateEnhancementConflicts(tt.cfg)
			require.Len(t, conflicts, 1)
			assert.Equal(t, tt.wantCode, conflicts[0].Code)
			assert.Equal(t, tt.wantType, conflicts[0].Type)
			assert.NotEmpty(t, conflicts[0].Field)
			assert.NotEmpty(t, conflicts[0].Message)
		})
	}
}

func TestValidateEnhancementConflicts_DisabledSubConfigsIgnored(t *testing.T) {
	cfg := types.EnhancementConfig{
		RoleEnhancement:   types.RoleEnhancement{Type: types.RoleTypeExpert},
		FormatControl:     types.FormatControl{Structure: types.StructureCustom},
		ConversationFlow:  types.ConversationFlow{Type: types.ConversationSingle},
		ReasoningScaffold: types.ReasoningScaffold{Enabled: true, ShowWork: true},
	}
	assert.Empty(t, ValidateEnhancementConflicts(cfg))
}

func TestValidateEnhancementConflicts_LengthRangeEdges(t *testing.T) {
	for _, l := range []types.LengthConstraint{
		{Enabled: true, Min: 100, Max: 100},
		{Enabled: true, Min: 100, Max: 0},
		{Enabled: false, Min: 200, Max: 100},
	} {
		l := l
		cfg := types.EnhancementConfig{SmartConstraints: types.SmartConstraints{Length: &l}}
		assert.Empty(t, ValidateEnhancementConflicts(cfg), "%+v", l)
	}
}

func TestValidateEnhancementConflicts_MultipleIndependent(t *testing.T) {
	cfg := types.EnhancementConfig{
		RoleEnhancement: types.RoleEnhancement{Enabled: true, Type: types.RoleTypeExpert},
		FormatControl:   types.FormatControl{Enabled: true, Structure: types.StructureCustom},
	}
	conflicts := ValidateEnhancementConflicts(cfg)
	require.Len(t, conflicts, 2)
	assert.Equal(t, CodeExpertiseRequired, conflicts[0].Code)
	assert.Equal(t, CodeCustomFormatRequired, conflicts[1].Code)
}

func TestValidateEnhancementConflicts_CleanConfig(t *testing.T) {
	conflicts := ValidateEnhancementConflicts(types.EnhancementConfig{})
	assert.NotNil(t, conflicts)
	assert.Empty(t, conflicts)
}

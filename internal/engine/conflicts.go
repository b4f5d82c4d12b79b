package engine

import (
	"strings"

	"github.com/scrypster/promptcraft/pkg/types"
)

// Conflict codes.
const (
	CodeJSONCharacterLength        = "JSON_CHARACTER_LENGTH"
	CodeComplexityAudienceMismatch = "COMPLEXITY_AUDIENCE_MISMATCH"
	CodeSingleTurnShowWork         = "SINGLE_TURN_SHOW_WORK"
	CodeExpertiseRequired          = "EXPERTISE_REQUIRED"
	CodeCustomRoleRequired         = "CUSTOM_ROLE_REQUIRED"
	CodeCustomFormatRequired       = "CUSTOM_FORMAT_REQUIRED"
	CodeInvalidLengthRange         = "INVALID_LENGTH_RANGE"
)

// conflictRule inspects one combination of enhancement settings.
type conflictRule func(cfg types.EnhancementConfig) (types.Conflict, bool)

// conflictRules are evaluated independently and in this order.
var conflictRules = []conflictRule{
	jsonCharacterLength,
	complexityAudienceMismatch,
	singleTurnShowWork,
	expertiseRequired,
	customRoleRequired,
	customFormatRequired,
	invalidLengthRange,
}

// ValidateEnhancementConflicts reports contradictory or incomplete enhancement
// settings. The result is empty, never nil, when nothing conflicts.
func ValidateEnhancementConflicts(cfg types.EnhancementConfig) []types.Conflict {
	conflicts := []types.Conflict{}
	for _, rule := range conflictRules {
		if c, ok := rule(cfg); ok {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func jsonCharacterLength(cfg types.EnhancementConfig) (types.Conflict, bool) {
	f, sc := cfg.FormatControl, cfg.SmartConstraints
	if !f.Enabled || f.Structure != types.StructureJSON {
		return types.Conflict{}, false
	}
	if !sc.Enabled || sc.Length == nil || !sc.Length.Enabled || sc.Length.Unit != types.UnitCharacters {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictWarning,
		Code:       CodeJSONCharacterLength,
		Field:      "smartConstraints.length.unit",
		Message:    "Character-based length limits interact poorly with JSON output, where syntax counts toward the limit",
		Suggestion: "Measure length in words or drop the length constraint for JSON output",
	}, true
}

func complexityAudienceMismatch(cfg types.EnhancementConfig) (types.Conflict, bool) {
	sc := cfg.SmartConstraints
	if !sc.Enabled || sc.ComplexityLevel != types.ComplexitySimple {
		return types.Conflict{}, false
	}
	if !strings.Contains(strings.ToLower(sc.AudienceTarget), "expert") {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictWarning,
		Code:       CodeComplexityAudienceMismatch,
		Field:      "smartConstraints.complexityLevel",
		Message:    "Simple complexity targets an expert audience",
		Suggestion: "Raise the complexity level or broaden the audience",
	}, true
}

func singleTurnShowWork(cfg types.EnhancementConfig) (types.Conflict, bool) {
	cf, rs := cfg.ConversationFlow, cfg.ReasoningScaffold
	if !cf.Enabled || cf.Type != types.ConversationSingle || !rs.Enabled || !rs.ShowWork {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictWarning,
		Code:       CodeSingleTurnShowWork,
		Field:      "reasoningScaffold.showWork",
		Message:    "Showing work in a single-turn exchange produces long responses with no chance to follow up",
		Suggestion: "Switch to an iterative conversation or disable show-work",
	}, true
}

func expertiseRequired(cfg types.EnhancementConfig) (types.Conflict, bool) {
	r := cfg.RoleEnhancement
	if !r.Enabled || r.Type != types.RoleTypeExpert || strings.TrimSpace(r.DomainSpecialty) != "" {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictError,
		Code:       CodeExpertiseRequired,
		Field:      "roleEnhancement.domainSpecialty",
		Message:    "Expert roles require an area of expertise",
		Suggestion: "Fill in the domain specialty, for example \"distributed systems\"",
	}, true
}

func customRoleRequired(cfg types.EnhancementConfig) (types.Conflict, bool) {
	r := cfg.RoleEnhancement
	if !r.Enabled || r.Type != types.RoleTypePersona || strings.TrimSpace(r.CustomRole) != "" {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictError,
		Code:       CodeCustomRoleRequired,
		Field:      "roleEnhancement.customRole",
		Message:    "Persona roles require a custom role description",
		Suggestion: "Describe the persona the model should adopt",
	}, true
}

func customFormatRequired(cfg types.EnhancementConfig) (types.Conflict, bool) {
	f := cfg.FormatControl
	if !f.Enabled || f.Structure != types.StructureCustom || strings.TrimSpace(f.CustomFormat) != "" {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictError,
		Code:       CodeCustomFormatRequired,
		Field:      "formatControl.customFormat",
		Message:    "Custom format structure requires a format description",
		Suggestion: "Describe the output format or pick a predefined structure",
	}, true
}

func invalidLengthRange(cfg types.EnhancementConfig) (types.Conflict, bool) {
	l := cfg.SmartConstraints.Length
	if l == nil || !l.Enabled || l.Min <= 0 || l.Max <= 0 || l.Min <= l.Max {
		return types.Conflict{}, false
	}
	return types.Conflict{
		Type:       types.ConflictError,
		Code:       CodeInvalidLengthRange,
		Field:      "smartConstraints.length",
		Message:    "Minimum length is greater than maximum length",
		Suggestion: "Swap the bounds or clear one of them",
	}, true
}

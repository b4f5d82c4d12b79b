package engine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/scrypster/promptcraft/pkg/types"
)

// Base prompt length limits, in runes.
const (
	MinRecommendedBasePromptRunes = 10
	MaxBasePromptRunes            = 20000
)

// Validation codes.
const (
	CodeBasePromptRequired      = "BASE_PROMPT_REQUIRED"
	CodeBasePromptTooShort      = "BASE_PROMPT_TOO_SHORT"
	CodeBasePromptTooLong       = "BASE_PROMPT_TOO_LONG"
	CodePlaceholderText         = "PLACEHOLDER_TEXT"
	CodeUnknownFramework        = "UNKNOWN_FRAMEWORK"
	CodeFrameworkConfigMismatch = "FRAMEWORK_CONFIG_MISMATCH"
	CodeRoleRequired            = "ROLE_REQUIRED"
	CodeExamplesRequired        = "EXAMPLES_REQUIRED"
	CodeExampleIncomplete       = "EXAMPLE_INCOMPLETE"
	CodeCustomReasoningRequired = "CUSTOM_REASONING_REQUIRED"
	CodeConstraintsRequired     = "CONSTRAINTS_REQUIRED"
	CodeUnresolvedVariable      = "UNRESOLVED_VARIABLE"
	CodeResponseCountOutOfRange = "RESPONSE_COUNT_OUT_OF_RANGE"
	CodeInvalidDistributionType = "INVALID_DISTRIBUTION_TYPE"
	CodeDimensionsRequired      = "DIMENSIONS_REQUIRED"
	CodeThresholdOutOfRange     = "THRESHOLD_OUT_OF_RANGE"
	CodeThresholdRecommended    = "THRESHOLD_RECOMMENDED"
	CodeThresholdIgnored        = "THRESHOLD_IGNORED"
)

// placeholderPattern matches filler left in a prompt. TODO and TBD count only in
// upper case so that ordinary words like "todo list" pass.
var placeholderPattern = regexp.MustCompile(`(?i:\blorem ipsum\b|\[insert[^\]]*\]|<insert[^>]*>|\bxxx+\b)|\bTODO\b|\bTBD\b`)

// ValidateCompletePromptConfig runs every validator and merges the results.
// Warnings never affect IsValid.
func ValidateCompletePromptConfig(in types.PromptInput) types.ValidationResult {
	return ValidateBasePrompt(in.Config.BasePrompt).Merge(
		ValidateFrameworkConfig(in.Config),
		ValidateVSConfig(in.VSEnhancement),
		ValidateAdvancedEnhancements(in.Enhancements),
	)
}

// ValidateBasePrompt checks presence, length and leftover placeholder text.
func ValidateBasePrompt(prompt string) types.ValidationResult {
	var errs, warns []types.ValidationIssue
	const field = "config.basePrompt"

	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		errs = append(errs, issue(field, CodeBasePromptRequired, "Base prompt is required"))
		return types.NewValidationResult(errs, warns)
	}

	n := utf8.RuneCountInString(trimmed)
	if n < MinRecommendedBasePromptRunes {
		warns = append(warns, issue(field, CodeBasePromptTooShort,
			fmt.Sprintf("Base prompt is very short (%d characters); add more detail for better results", n)))
	}
	if n > MaxBasePromptRunes {
		errs = append(errs, issue(field, CodeBasePromptTooLong,
			fmt.Sprintf("Base prompt is %d characters; the limit is %d", n, MaxBasePromptRunes)))
	}
	if m := placeholderPattern.FindString(trimmed); m != "" {
		warns = append(warns, issue(field, CodePlaceholderText,
			fmt.Sprintf("Base prompt contains placeholder text %q", m)))
	}
	return types.NewValidationResult(errs, warns)
}

// ValidateFrameworkConfig checks that the framework is known, that its config
// belongs to it, and that the variant's required fields are filled.
func ValidateFrameworkConfig(cfg types.BasePromptConfig) types.ValidationResult {
	var errs, warns []types.ValidationIssue

	if cfg.Framework == types.FrameworkNone {
		return types.NewValidationResult(nil, nil)
	}
	if !types.IsValidFramework(cfg.Framework) {
		errs = append(errs, issue("config.framework", CodeUnknownFramework,
			fmt.Sprintf("Unknown framework %q", cfg.Framework)))
		return types.NewValidationResult(errs, nil)
	}
	if cfg.FrameworkConfig != nil && cfg.FrameworkConfig.Framework() != cfg.Framework {
		errs = append(errs, issue("config.frameworkConfig", CodeFrameworkConfigMismatch,
			fmt.Sprintf("Framework config is for %q but framework is %q", cfg.FrameworkConfig.Framework(), cfg.Framework)))
		return types.NewValidationResult(errs, nil)
	}

	switch c := frameworkConfigOrZero(cfg.Framework, cfg.FrameworkConfig).(type) {
	case types.RoleBasedConfig:
		if strings.TrimSpace(c.Role) == "" {
			errs = append(errs, issue("config.frameworkConfig.role", CodeRoleRequired,
				"Role-based prompts require a role"))
		}
	case types.FewShotConfig:
		if len(c.Examples) == 0 {
			errs = append(errs, issue("config.frameworkConfig.examples", CodeExamplesRequired,
				"Few-shot prompts require at least one example"))
		}
		for i, ex := range c.Examples {
			if strings.TrimSpace(ex.Input) == "" || strings.TrimSpace(ex.Output) == "" {
				errs = append(errs, issue(fmt.Sprintf("config.frameworkConfig.examples[%d]", i), CodeExampleIncomplete,
					fmt.Sprintf("Example %d needs both an input and an output", i+1)))
			}
		}
	case types.ChainOfThoughtConfig:
		if c.ReasoningStructure == types.ReasoningCustom && strings.TrimSpace(c.CustomReasoningStructure) == "" {
			errs = append(errs, issue("config.frameworkConfig.customReasoningStructure", CodeCustomReasoningRequired,
				"Custom reasoning structure requires a description"))
		}
	case types.TemplateConfig:
		for _, name := range templateVariables(cfg.BasePrompt) {
			if _, ok := c.Variables[name]; !ok {
				warns = append(warns, issue("config.frameworkConfig.variables."+name, CodeUnresolvedVariable,
					fmt.Sprintf("Placeholder {{%s}} has no value and will be left as-is", name)))
			}
		}
	case types.ConstraintBasedConfig:
		if len(nonEmpty(c.Constraints)) == 0 {
			errs = append(errs, issue("config.frameworkConfig.constraints", CodeConstraintsRequired,
				"Constraint-based prompts require at least one constraint"))
		}
	}
	return types.NewValidationResult(errs, warns)
}

// ValidateVSConfig checks verbalized-sampling settings. Disabled configs are
// always valid.
func ValidateVSConfig(cfg types.VSConfiguration) types.ValidationResult {
	var errs, warns []types.ValidationIssue
	if !cfg.Enabled {
		return types.NewValidationResult(nil, nil)
	}

	if cfg.ResponseCount < types.MinVSResponseCount || cfg.ResponseCount > types.MaxVSResponseCount {
		errs = append(errs, issue("vsEnhancement.responseCount", CodeResponseCountOutOfRange,
			fmt.Sprintf("Response count must be between %d and %d", types.MinVSResponseCount, types.MaxVSResponseCount)))
	}
	if !types.IsValidDistributionType(cfg.DistributionType) {
		errs = append(errs, issue("vsEnhancement.distributionType", CodeInvalidDistributionType,
			fmt.Sprintf("Unknown distribution type %q", cfg.DistributionType)))
	}
	if cfg.DistributionType == types.DistributionBalancedCategories && len(VSCategories(cfg)) == 0 {
		errs = append(errs, issue("vsEnhancement.dimensions", CodeDimensionsRequired,
			"Balanced categories require at least one dimension"))
	}

	if t := cfg.ProbabilityThreshold; t != nil {
		if *t < 0 || *t > 1 {
			errs = append(errs, issue("vsEnhancement.probabilityThreshold", CodeThresholdOutOfRange,
				"Probability threshold must be between 0 and 1"))
		}
		if cfg.DistributionType != types.DistributionRarityHunt {
			warns = append(warns, issue("vsEnhancement.probabilityThreshold", CodeThresholdIgnored,
				"Probability threshold only applies to rarity_hunt"))
		}
	} else if cfg.DistributionType == types.DistributionRarityHunt {
		warns = append(warns, issue("vsEnhancement.probabilityThreshold", CodeThresholdRecommended,
			fmt.Sprintf("No probability threshold set; %.2f will be used", DefaultRarityThreshold)))
	}
	return types.NewValidationResult(errs, warns)
}

// ValidateAdvancedEnhancements maps enhancement conflicts to validation issues.
func ValidateAdvancedEnhancements(cfg types.EnhancementConfig) types.ValidationResult {
	var errs, warns []types.ValidationIssue
	for _, c := range ValidateEnhancementConflicts(cfg) {
		msg := c.Message
		if c.Suggestion != "" {
			msg += ". " + c.Suggestion
		}
		vi := issue(c.Field, c.Code, msg)
		if c.Type == types.ConflictError {
			errs = append(errs, vi)
		} else {
			warns = append(warns, vi)
		}
	}
	return types.NewValidationResult(errs, warns)
}

func issue(field, code, message string) types.ValidationIssue {
	return types.ValidationIssue{Field: field, Message: message, Code: code}
}

package engine

import (
	"fmt"
	"strings"

	"github.com/scrypster/promptcraft/pkg/types"
)

// LabelSampling opens the verbalized-sampling section.
const LabelSampling = "VERBALIZED SAMPLING:"

// Line templates the model is asked to follow, one response per line.
const (
	VSFormatSimple   = "[Response] (Probability: 0.XX)"
	VSFormatFull     = "[Response] (Probability: 0.XX - Rationale: [explanation])"
	VSFormatCategory = "Category: [X] | [Response] (Probability: 0.XX - Category fit: [explanation])"
)

// DefaultRarityThreshold applies to rarity_hunt when no threshold is configured.
const DefaultRarityThreshold = 0.10

// DefaultVSResponseCount applies when the configured count is zero.
const DefaultVSResponseCount = 5

// GetVSFormat returns the literal line template for a distribution type.
func GetVSFormat(distribution types.DistributionType, includeReasoning bool) string {
	switch {
	case distribution == types.DistributionBalancedCategories:
		return VSFormatCategory
	case includeReasoning:
		return VSFormatFull
	default:
		return VSFormatSimple
	}
}

// GenerateVSInstructions tells the model how many alternatives to produce and how
// to distribute them. It returns "" when sampling is disabled.
func GenerateVSInstructions(cfg types.VSConfiguration) string {
	if !cfg.Enabled {
		return ""
	}

	count := cfg.ResponseCount
	if count == 0 {
		count = DefaultVSResponseCount
	}

	lines := []string{
		fmt.Sprintf("%s Generate %d distinct responses to the request above.", LabelSampling, count),
		distributionInstruction(cfg, count),
		probabilityInstruction(cfg),
	}
	if cfg.AntiTypicality {
		lines = append(lines, "Avoid the most typical or stereotypical answers; favor responses a standard model would rarely give.")
	}
	if custom := strings.TrimSpace(cfg.CustomConstraints); custom != "" {
		lines = append(lines, "Additional constraints: "+custom)
	}
	return strings.Join(lines, "\n")
}

// VSCategories returns Dimensions followed by CustomDimensions, trimmed and
// de-duplicated in order of first appearance.
func VSCategories(cfg types.VSConfiguration) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{cfg.Dimensions, cfg.CustomDimensions} {
		for _, d := range group {
			d = strings.TrimSpace(d)
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func distributionInstruction(cfg types.VSConfiguration, count int) string {
	switch cfg.DistributionType {
	case types.DistributionRarityHunt:
		threshold := DefaultRarityThreshold
		if cfg.ProbabilityThreshold != nil {
			threshold = *cfg.ProbabilityThreshold
		}
		return fmt.Sprintf("Distribution: favor rare but still plausible responses, each with an estimated probability below %.2f.", threshold)
	case types.DistributionBalancedCategories:
		categories := VSCategories(cfg)
		if len(categories) == 0 {
			return "Distribution: spread the responses evenly across distinct categories of your choosing."
		}
		perCategory := count / len(categories)
		if perCategory < 1 {
			perCategory = 1
		}
		return fmt.Sprintf("Distribution: give roughly equal representation to these categories: %s (about %d per category).",
			strings.Join(categories, ", "), perCategory)
	default:
		return "Distribution: maximize diversity across the whole space of plausible responses, from the most conventional to the most unexpected."
	}
}

func probabilityInstruction(cfg types.VSConfiguration) string {
	var instruction string
	switch {
	case cfg.DistributionType == types.DistributionBalancedCategories:
		instruction = "For each response, name its category, estimate its probability between 0.00 and 1.00, and explain how it fits the category."
	case cfg.IncludeProbabilityReasoning:
		instruction = "For each response, estimate its probability between 0.00 and 1.00 and briefly explain the rationale for that estimate."
	default:
		instruction = "For each response, include its estimated probability between 0.00 and 1.00."
	}
	return instruction + "\nWrite one response per line using this exact line layout:\n" +
		GetVSFormat(cfg.DistributionType, cfg.IncludeProbabilityReasoning)
}

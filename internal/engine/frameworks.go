package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/scrypster/promptcraft/pkg/types"
)

const genericReasoningInstruction = "Let's think through this step-by-step. Show your reasoning before giving the final answer."

// reasoningSkeletons holds the named chain-of-thought structures.
var reasoningSkeletons = map[types.ReasoningStructure]string{
	types.ReasoningStepByStep: genericReasoningInstruction,
	types.ReasoningProblemSolution: `Structure your reasoning as follows:
1. Problem: restate the core problem in your own words.
2. Analysis: identify the key factors and constraints.
3. Solution: propose a solution and justify each step.
4. Verification: check the solution against the constraints.`,
	types.ReasoningHypothesisTesting: `Structure your reasoning as follows:
1. Hypotheses: list the candidate explanations.
2. Evidence: gather the evidence for and against each one.
3. Evaluation: weigh the evidence and eliminate weak hypotheses.
4. Conclusion: state the best-supported hypothesis.`,
	types.ReasoningProsCons: `Structure your reasoning as follows:
1. Options: list the realistic options.
2. Pros: list the advantages of each option.
3. Cons: list the drawbacks of each option.
4. Recommendation: choose an option and explain the trade-off.`,
	types.ReasoningFirstPrinciples: `Structure your reasoning as follows:
1. Fundamentals: identify the basic truths that cannot be reduced further.
2. Decomposition: break the problem into parts built on those truths.
3. Reconstruction: rebuild a solution from the fundamentals up.
4. Conclusion: state the answer that follows.`,
}

// templateVarPattern matches {{name}} placeholders.
var templateVarPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// GenerateFrameworkPrompt wraps basePrompt in the skeleton of the selected framework.
// With no framework the base prompt is returned unchanged; no default framework is
// ever applied. extra is appended as a target-outcome line for real frameworks.
// A nil or mismatched cfg renders the skeleton with empty fields.
func GenerateFrameworkPrompt(framework types.Framework, cfg types.FrameworkConfig, basePrompt, extra string) string {
	if framework == types.FrameworkNone || !types.IsValidFramework(framework) {
		return basePrompt
	}

	var body string
	switch c := frameworkConfigOrZero(framework, cfg).(type) {
	case types.RoleBasedConfig:
		body = roleBasedPrompt(c, basePrompt)
	case types.FewShotConfig:
		body = fewShotPrompt(c, basePrompt)
	case types.ChainOfThoughtConfig:
		body = chainOfThoughtPrompt(c, basePrompt)
	case types.TemplateConfig:
		body = templatePrompt(c, basePrompt)
	case types.ConstraintBasedConfig:
		body = constraintBasedPrompt(c, basePrompt)
	default:
		body = basePrompt
	}

	if extra = strings.TrimSpace(extra); extra != "" {
		body += "\n\nTarget outcome: " + extra
	}
	return body
}

// frameworkConfigOrZero returns cfg when it belongs to framework, otherwise the zero
// value of the framework's variant.
func frameworkConfigOrZero(framework types.Framework, cfg types.FrameworkConfig) types.FrameworkConfig {
	if cfg != nil && cfg.Framework() == framework {
		return cfg
	}
	switch framework {
	case types.FrameworkRoleBased:
		return types.RoleBasedConfig{}
	case types.FrameworkFewShot:
		return types.FewShotConfig{}
	case types.FrameworkChainOfThought:
		return types.ChainOfThoughtConfig{}
	case types.FrameworkTemplate:
		return types.TemplateConfig{}
	case types.FrameworkConstraintBased:
		return types.ConstraintBasedConfig{}
	}
	return nil
}

func roleBasedPrompt(c types.RoleBasedConfig, basePrompt string) string {
	role := strings.TrimSpace(c.Role)
	var header string
	if role == "" {
		header = "Adopt the most suitable expert role for the task below."
	} else {
		header = sentence("You are " + role)
		if ctx := strings.TrimSpace(c.Context); ctx != "" {
			header += " " + sentence(ctx)
		}
		header += " Respond from that perspective."
	}
	return header + "\n\n" + basePrompt
}

func fewShotPrompt(c types.FewShotConfig, basePrompt string) string {
	if len(c.Examples) == 0 {
		return basePrompt
	}
	var b strings.Builder
	b.WriteString("Here are some examples of the expected input and output:")
	for i, ex := range c.Examples {
		fmt.Fprintf(&b, "\n\nExample %d:\nInput: %s\nOutput: %s", i+1, strings.TrimSpace(ex.Input), strings.TrimSpace(ex.Output))
	}
	b.WriteString("\n\nNow complete the following:\n")
	b.WriteString(basePrompt)
	return b.String()
}

func chainOfThoughtPrompt(c types.ChainOfThoughtConfig, basePrompt string) string {
	instruction := genericReasoningInstruction
	if c.ReasoningStructure == types.ReasoningCustom {
		if custom := strings.TrimSpace(c.CustomReasoningStructure); custom != "" {
			instruction = "Structure your reasoning as follows:\n" + custom
		}
	} else if skeleton, ok := reasoningSkeletons[c.ReasoningStructure]; ok {
		instruction = skeleton
	}
	return basePrompt + "\n\n" + instruction
}

func templatePrompt(c types.TemplateConfig, basePrompt string) string {
	keys := sortedKeys(c.Variables)
	referenced := make(map[string]bool, len(keys))

	filled := templateVarPattern.ReplaceAllStringFunc(basePrompt, func(match string) string {
		name := templateVarPattern.FindStringSubmatch(match)[1]
		value, ok := c.Variables[name]
		if !ok {
			return match
		}
		referenced[name] = true
		return value
	})

	var unreferenced []string
	for _, k := range keys {
		if !referenced[k] {
			unreferenced = append(unreferenced, fmt.Sprintf("- %s: %s", k, c.Variables[k]))
		}
	}
	if len(unreferenced) == 0 {
		return filled
	}
	return filled + "\n\nVariables:\n" + strings.Join(unreferenced, "\n")
}

func constraintBasedPrompt(c types.ConstraintBasedConfig, basePrompt string) string {
	constraints := nonEmpty(c.Constraints)
	if len(constraints) == 0 {
		return basePrompt
	}
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nConstraints:")
	for i, constraint := range constraints {
		fmt.Fprintf(&b, "\n%d. %s", i+1, constraint)
	}
	return b.String()
}

// templateVariables returns the placeholder names referenced in text, in order of
// first appearance.
func templateVariables(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range templateVarPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package engine

import (
	"strings"
	"time"

	"github.com/scrypster/promptcraft/pkg/types"
)

// SectionSeparator joins composed sections.
const SectionSeparator = "\n\n"

// Section names in composition order.
const (
	SectionRole         = "role"
	SectionFramework    = "framework"
	SectionConstraints  = "constraints"
	SectionReasoning    = "reasoning"
	SectionSampling     = "sampling"
	SectionFormat       = "format"
	SectionConversation = "conversation"
)

// Section is one non-empty stage of a composed prompt.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ComposeSections renders every stage and drops the blank ones. The order is
// fixed: role, framework-wrapped base prompt, constraints, reasoning, sampling,
// format, conversation. Nothing is validated here.
func ComposeSections(in types.PromptInput) []Section {
	e := in.Enhancements
	stages := []Section{
		{SectionRole, GenerateRoleEnhancement(e.RoleEnhancement)},
		{SectionFramework, GenerateFrameworkPrompt(in.Config.Framework, in.Config.FrameworkConfig, in.Config.BasePrompt, in.Config.TargetOutcome)},
		{SectionConstraints, GenerateSmartConstraints(e.SmartConstraints)},
		{SectionReasoning, GenerateReasoningScaffold(e.ReasoningScaffold)},
		{SectionSampling, GenerateVSInstructions(in.VSEnhancement)},
		{SectionFormat, GenerateFormatControl(e.FormatControl)},
		{SectionConversation, GenerateConversationFlow(e.ConversationFlow)},
	}

	sections := make([]Section, 0, len(stages))
	for _, s := range stages {
		if strings.TrimSpace(s.Text) != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

// GenerateCompletePrompt returns the final instruction text.
func GenerateCompletePrompt(in types.PromptInput) string {
	sections := ComposeSections(in)
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	return strings.Join(texts, SectionSeparator)
}

// GenerateSystemPrompt returns the system instruction that accompanies the final prompt.
func GenerateSystemPrompt(in types.PromptInput) string {
	first := "You are a helpful AI assistant"
	if domain := strings.TrimSpace(in.Config.Domain); domain != "" {
		first += " specializing in " + domain
	}
	lines := []string{first + "."}

	if outcome := strings.TrimSpace(in.Config.TargetOutcome); outcome != "" {
		lines = append(lines, "Your goal is to help the user achieve this outcome: "+sentence(outcome))
	}
	if in.VSEnhancement.Enabled {
		lines = append(lines, "When asked for multiple alternative responses, follow the requested distribution and line layout exactly, one response per line.")
	}
	return strings.Join(lines, "\n")
}

// GenerateEnhancedPrompt composes both texts and stamps the metadata with at.
// The timestamp never influences the prompt text.
func GenerateEnhancedPrompt(in types.PromptInput, at time.Time) types.GeneratedPrompt {
	return types.GeneratedPrompt{
		SystemPrompt: GenerateSystemPrompt(in),
		FinalPrompt:  GenerateCompletePrompt(in),
		Metadata: types.PromptMetadata{
			Domain:    in.Config.Domain,
			Framework: in.Config.Framework,
			VSEnabled: in.VSEnhancement.Enabled,
			Timestamp: at,
		},
	}
}

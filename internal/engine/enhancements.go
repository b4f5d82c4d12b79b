// Package engine implements prompt composition: enhancement generators, framework
// templates, verbalized-sampling instructions and parsing, conflict validation, and
// the composer that joins them in a fixed order.
//
// Everything in this package is pure. Identical inputs always produce identical
// text, so composed prompts can be exported, re-imported and compared byte for byte.
package engine

import (
	"fmt"
	"strings"

	"github.com/scrypster/promptcraft/pkg/types"
)

// Label tokens that open each single-line enhancement section.
const (
	LabelRole         = "ROLE:"
	LabelFormat       = "FORMAT:"
	LabelReasoning    = "REASONING:"
	LabelConversation = "CONVERSATION:"
)

var expertisePhrases = map[types.ExpertiseLevel]string{
	types.ExpertiseNovice:       "a motivated newcomer",
	types.ExpertiseIntermediate: "a capable practitioner",
	types.ExpertiseExpert:       "a seasoned expert",
	types.ExpertiseWorldClass:   "a world-class authority",
}

var authorityPhrases = map[types.AuthorityLevel]string{
	types.AuthorityAdvisory:      "Offer recommendations and options rather than directives",
	types.AuthorityAuthoritative: "Give clear, well-grounded guidance with confidence",
	types.AuthorityDefinitive:    "Give definitive answers and state conclusions decisively",
}

var structurePhrases = map[types.FormatStructure]string{
	types.StructureBulletPoints: "Structure the response as a bulleted list",
	types.StructureNumberedList: "Structure the response as a numbered list",
	types.StructureParagraphs:   "Structure the response as well-organized paragraphs",
	types.StructureJSON:         "Return the response as valid JSON only",
	types.StructureTable:        "Present the response as a table",
}

var lengthTypeUnits = map[types.LengthType]string{
	types.LengthWordCount:      "words",
	types.LengthSentenceCount:  "sentences",
	types.LengthParagraphCount: "paragraphs",
}

var stylePhrases = map[types.StyleGuide]string{
	types.StyleFormal:         "Use a formal, professional tone",
	types.StyleConversational: "Use a conversational, approachable tone",
	types.StyleTechnical:      "Use precise technical language",
	types.StyleCreative:       "Use vivid, imaginative language",
	types.StyleAcademic:       "Use an academic register with careful qualification of claims",
}

var reasoningStylePhrases = map[types.ReasoningStyle]string{
	types.ReasoningLogical:    "Apply rigorous logical reasoning",
	types.ReasoningCreative:   "Apply creative, lateral thinking",
	types.ReasoningAnalytical: "Apply structured analytical decomposition",
	types.ReasoningPractical:  "Apply practical, real-world judgement",
}

var conversationTypePhrases = map[types.ConversationType]string{
	types.ConversationSingle:        "Treat this as a single, self-contained exchange",
	types.ConversationIterative:     "Expect to refine this answer over several turns",
	types.ConversationMultiStep:     "Work through the task in multiple steps, one step per turn",
	types.ConversationCollaborative: "Treat the exchange as a collaboration with the user",
}

// GenerateRoleEnhancement renders the role framing, or "" when disabled.
func GenerateRoleEnhancement(cfg types.RoleEnhancement) string {
	if !cfg.Enabled {
		return ""
	}

	var sentences []string
	if cfg.Type == types.RoleTypePersona && strings.TrimSpace(cfg.CustomRole) != "" {
		sentences = append(sentences, "You are "+strings.TrimSpace(cfg.CustomRole))
	} else {
		identity := expertisePhrases[cfg.ExpertiseLevel]
		if identity == "" {
			identity = "an expert"
		}
		if specialty := strings.TrimSpace(cfg.DomainSpecialty); specialty != "" {
			identity += " in " + specialty
		}
		if cfg.YearsOfExperience != nil && *cfg.YearsOfExperience > 0 {
			identity += fmt.Sprintf(" with %d years of experience", *cfg.YearsOfExperience)
		}
		sentences = append(sentences, "You are "+identity)
	}
	if cfg.Type == types.RoleTypeAdvisor {
		sentences = append(sentences, "Act as a trusted advisor to the user")
	}
	if phrase, ok := authorityPhrases[cfg.AuthorityLevel]; ok {
		sentences = append(sentences, phrase)
	}
	if ctx := strings.TrimSpace(cfg.Context); ctx != "" {
		sentences = append(sentences, "Context: "+ctx)
	}

	return labeled(LabelRole, sentences)
}

// GenerateFormatControl renders output-shape instructions, or "" when disabled.
func GenerateFormatControl(cfg types.FormatControl) string {
	if !cfg.Enabled {
		return ""
	}

	var sentences []string
	if cfg.Structure == types.StructureCustom {
		if custom := strings.TrimSpace(cfg.CustomFormat); custom != "" {
			sentences = append(sentences, "Follow this format exactly: "+custom)
		}
	} else if phrase, ok := structurePhrases[cfg.Structure]; ok {
		sentences = append(sentences, phrase)
	}
	if cfg.Length != nil && cfg.Length.Target > 0 {
		if unit, ok := lengthTypeUnits[cfg.Length.Type]; ok {
			sentences = append(sentences, fmt.Sprintf("Aim for approximately %d %s", cfg.Length.Target, unit))
		}
	}
	if phrase, ok := stylePhrases[cfg.StyleGuide]; ok {
		sentences = append(sentences, phrase)
	}

	return labeled(LabelFormat, sentences)
}

// GenerateSmartConstraints renders one "LABEL: a, b" line per non-empty constraint
// list, or "" when disabled.
func GenerateSmartConstraints(cfg types.SmartConstraints) string {
	if !cfg.Enabled {
		return ""
	}

	var lines []string
	addList := func(label string, items []string) {
		if joined := joinItems(items); joined != "" {
			lines = append(lines, label+": "+joined)
		}
	}
	addValue := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, label+": "+v)
		}
	}

	addList("MUST INCLUDE", cfg.Positive)
	addList("MUST AVOID", cfg.Negative)
	addList("BOUNDARIES", cfg.BoundaryConditions)
	addList("QUALITY GATES", cfg.QualityGates)
	addList("REQUIREMENTS", cfg.Requirements)
	addList("EXCLUSIONS", cfg.Exclusions)
	addList("TONE", cfg.Tone)
	addValue("AUDIENCE", cfg.AudienceTarget)
	addValue("COMPLEXITY", string(cfg.ComplexityLevel))
	addValue("LENGTH", describeLengthRange(cfg.Length))

	return strings.Join(lines, "\n")
}

// GenerateReasoningScaffold renders reasoning instructions, or "" when disabled.
func GenerateReasoningScaffold(cfg types.ReasoningScaffold) string {
	if !cfg.Enabled {
		return ""
	}

	var sentences []string
	if cfg.ShowWork {
		sentences = append(sentences, "Show your work")
	}
	if cfg.StepByStep {
		sentences = append(sentences, "Think through the problem step by step")
	}
	if cfg.ExploreAlternatives {
		sentences = append(sentences, "Consider alternative approaches before settling on an answer")
	}
	if cfg.ConfidenceScoring {
		sentences = append(sentences, "State your confidence in the final answer as a percentage")
	}
	if phrase, ok := reasoningStylePhrases[cfg.ReasoningStyle]; ok {
		sentences = append(sentences, phrase)
	}

	return labeled(LabelReasoning, sentences)
}

// GenerateConversationFlow renders guidance for turns after this response,
// or "" when disabled.
func GenerateConversationFlow(cfg types.ConversationFlow) string {
	if !cfg.Enabled {
		return ""
	}

	var sentences []string
	if phrase, ok := conversationTypePhrases[cfg.Type]; ok {
		sentences = append(sentences, phrase)
	}
	if cfg.ContextPreservation {
		sentences = append(sentences, "Preserve context from earlier turns")
	}
	if cfg.ClarificationProtocols {
		sentences = append(sentences, "Ask clarifying questions when the request is ambiguous")
	}
	if cfg.IterationImprovement {
		sentences = append(sentences, "Invite feedback and improve the answer with each iteration")
	}
	if followUps := nonEmpty(cfg.FollowUpTemplates); len(followUps) > 0 {
		sentences = append(sentences, "Suggested follow-ups: "+strings.Join(followUps, "; "))
	}

	return labeled(LabelConversation, sentences)
}

func describeLengthRange(l *types.LengthConstraint) string {
	if l == nil || !l.Enabled {
		return ""
	}
	unit := string(l.Unit)
	if unit == "" {
		unit = string(types.UnitWords)
	}
	switch {
	case l.Min > 0 && l.Max > 0:
		return fmt.Sprintf("between %d and %d %s", l.Min, l.Max, unit)
	case l.Min > 0:
		return fmt.Sprintf("at least %d %s", l.Min, unit)
	case l.Max > 0:
		return fmt.Sprintf("at most %d %s", l.Max, unit)
	}
	return ""
}

// labeled joins sentences into "LABEL: One. Two." or returns "" when there are none.
func labeled(label string, sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}
	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		parts = append(parts, sentence(s))
	}
	return label + " " + strings.Join(parts, " ")
}

// sentence trims s and terminates it with a period unless it already ends in punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinItems(items []string) string {
	return strings.Join(nonEmpty(items), ", ")
}

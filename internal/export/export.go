// Package export renders prompt configurations, generated prompts and execution
// results into shareable file formats, and imports templates back.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/promptcraft/internal/engine"
	"github.com/scrypster/promptcraft/pkg/types"
)

var (
	// ErrInvalidTemplate is returned when an imported document is not a usable template.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrMissingExecutionResult is returned by CSV export when no execution result is given.
	ErrMissingExecutionResult = errors.New("execution result is required for CSV export")
)

// Format names accepted by Render.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// Bundle is everything a single export can contain.
type Bundle struct {
	Config        types.BasePromptConfig  `json:"config"`
	Enhancements  types.EnhancementConfig `json:"enhancements"`
	VSEnhancement types.VSConfiguration   `json:"vsEnhancement"`
	Prompt        *types.GeneratedPrompt  `json:"generatedPrompt,omitempty"`
	Execution     *types.ExecutionResult  `json:"executionResult,omitempty"`
	ExportedAt    time.Time               `json:"exportedAt"`
}

// NewBundle builds a bundle for in. When prompt is nil the text formats compose
// one on demand, stamped with exportedAt.
func NewBundle(in types.PromptInput, prompt *types.GeneratedPrompt, exec *types.ExecutionResult, exportedAt time.Time) Bundle {
	return Bundle{
		Config:        in.Config,
		Enhancements:  in.Enhancements,
		VSEnhancement: in.VSEnhancement,
		Prompt:        prompt,
		Execution:     exec,
		ExportedAt:    exportedAt,
	}
}

// Input returns the composition input held by the bundle.
func (b Bundle) Input() types.PromptInput {
	return types.PromptInput{Config: b.Config, Enhancements: b.Enhancements, VSEnhancement: b.VSEnhancement}
}

// generated returns the bundle's prompt, composing it when absent.
func (b Bundle) generated() types.GeneratedPrompt {
	if b.Prompt != nil {
		return *b.Prompt
	}
	return engine.GenerateEnhancedPrompt(b.Input(), b.ExportedAt)
}

// Render dispatches to the exporter for format.
func Render(format string, b Bundle) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return ExportAsJSON(b)
	case FormatText, "txt":
		return ExportAsText(b), nil
	case FormatMarkdown, "md":
		return ExportAsMarkdown(b), nil
	case FormatYAML, "yml":
		return ExportAsYAML(b)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportAsJSON encodes the bundle with two-space indentation.
func ExportAsJSON(b Bundle) (string, error) {
	return marshalIndent(b)
}

// ExportTemplateJSON encodes a template in the document shape ImportTemplate accepts.
func ExportTemplateJSON(t types.PromptTemplate) (string, error) {
	return marshalIndent(t)
}

// marshalIndent encodes v with two-space indentation and without HTML escaping,
// so prompt text such as "Q&A <tag>" is written as is.
func marshalIndent(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ExportAsText renders the prompts as plain text, followed by the model response
// when an execution result is present.
func ExportAsText(b Bundle) string {
	gp := b.generated()

	var sb strings.Builder
	sb.WriteString("PROMPT EXPORT\n")
	fmt.Fprintf(&sb, "Generated: %s\n", formatTime(gp.Metadata.Timestamp))
	fmt.Fprintf(&sb, "Domain: %s\n", orNone(gp.Metadata.Domain))
	fmt.Fprintf(&sb, "Framework: %s\n", orNone(string(gp.Metadata.Framework)))
	sb.WriteString("\nSYSTEM PROMPT:\n")
	sb.WriteString(gp.SystemPrompt)
	sb.WriteString("\n\nFINAL PROMPT:\n")
	sb.WriteString(gp.FinalPrompt)
	sb.WriteString("\n")

	if b.Execution != nil {
		fmt.Fprintf(&sb, "\nRESPONSE (%s, %d tokens):\n", orNone(b.Execution.Model), b.Execution.TokensUsed)
		sb.WriteString(b.Execution.Response)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExportAsMarkdown renders a human-readable report: title, timestamp, metadata,
// the sampling settings when enabled, then fenced system and final prompts.
func ExportAsMarkdown(b Bundle) string {
	gp := b.generated()

	var sb strings.Builder
	sb.WriteString("# Prompt Export\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", formatTime(gp.Metadata.Timestamp))
	fmt.Fprintf(&sb, "- **Domain:** %s\n", orNone(gp.Metadata.Domain))
	fmt.Fprintf(&sb, "- **Framework:** %s\n", orNone(string(gp.Metadata.Framework)))
	fmt.Fprintf(&sb, "- **VS Enabled:** %s\n", yesNo(gp.Metadata.VSEnabled))

	if vs := b.VSEnhancement; vs.Enabled {
		sb.WriteString("\n## Verbalized Sampling Configuration\n\n")
		fmt.Fprintf(&sb, "- **Distribution Type:** %s\n", vs.DistributionType)
		fmt.Fprintf(&sb, "- **Response Count:** %d\n", vs.ResponseCount)
		fmt.Fprintf(&sb, "- **Probability Reasoning:** %s\n", yesNo(vs.IncludeProbabilityReasoning))
		switch vs.DistributionType {
		case types.DistributionRarityHunt:
			threshold := engine.DefaultRarityThreshold
			if vs.ProbabilityThreshold != nil {
				threshold = *vs.ProbabilityThreshold
			}
			fmt.Fprintf(&sb, "- **Probability Threshold:** %.2f\n", threshold)
		case types.DistributionBalancedCategories:
			fmt.Fprintf(&sb, "- **Dimensions:** %s\n", strings.Join(engine.VSCategories(vs), ", "))
		}
		fmt.Fprintf(&sb, "- **Anti-Typicality:** %s\n", yesNo(vs.AntiTypicality))
	}

	sb.WriteString("\n## System Prompt\n\n")
	writeFenced(&sb, gp.SystemPrompt)
	sb.WriteString("\n## Final Prompt\n\n")
	writeFenced(&sb, gp.FinalPrompt)
	return sb.String()
}

// writeFenced writes text in a code fence longer than any backtick run it contains.
func writeFenced(sb *strings.Builder, text string) {
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	sb.WriteString(fence + "text\n")
	sb.WriteString(text)
	sb.WriteString("\n" + fence + "\n")
}

// ExportAsYAML renders the bundle as YAML, keeping the JSON field names and order.
// Multi-line prompts become literal blocks.
func ExportAsYAML(b Bundle) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode bundle: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to convert bundle to YAML: %w", err)
	}
	toBlockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

// toBlockStyle clears the flow and quoting styles that JSON input carries.
func toBlockStyle(n *yaml.Node) {
	n.Style = 0
	if n.Kind == yaml.ScalarNode && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		toBlockStyle(c)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

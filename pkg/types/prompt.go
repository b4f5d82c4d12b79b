// Package types defines the core data structures for the promptcraft system:
// base prompt configurations, framework configurations, enhancement settings,
// verbalized-sampling settings, and the records produced by composition and
// execution.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Framework names a structural template that shapes how the base prompt is wrapped.
type Framework string

// Framework constants. The zero value means "no framework": the base prompt is
// passed through unchanged.
const (
	FrameworkNone            Framework = ""
	FrameworkRoleBased       Framework = "role-based"
	FrameworkFewShot         Framework = "few-shot"
	FrameworkChainOfThought  Framework = "chain-of-thought"
	FrameworkTemplate        Framework = "template"
	FrameworkConstraintBased Framework = "constraint-based"
)

// ValidFrameworks lists every selectable framework (excluding FrameworkNone).
var ValidFrameworks = []Framework{
	FrameworkRoleBased,
	FrameworkFewShot,
	FrameworkChainOfThought,
	FrameworkTemplate,
	FrameworkConstraintBased,
}

// IsValidFramework reports whether f is a known framework or FrameworkNone.
func IsValidFramework(f Framework) bool {
	if f == FrameworkNone {
		return true
	}
	for _, v := range ValidFrameworks {
		if v == f {
			return true
		}
	}
	return false
}

// ReasoningStructure selects a named chain-of-thought skeleton.
type ReasoningStructure string

const (
	ReasoningStepByStep        ReasoningStructure = "step-by-step"
	ReasoningProblemSolution   ReasoningStructure = "problem-solution"
	ReasoningHypothesisTesting ReasoningStructure = "hypothesis-testing"
	ReasoningProsCons          ReasoningStructure = "pros-cons"
	ReasoningFirstPrinciples   ReasoningStructure = "first-principles"
	ReasoningCustom            ReasoningStructure = "custom"
)

// BasePromptConfig is the user's raw intent. It is passed by value into the
// composer and never mutated by it.
type BasePromptConfig struct {
	BasePrompt    string
	Domain        string
	TargetOutcome string
	Framework     Framework

	// FrameworkConfig carries the fields of the selected framework. It may be
	// nil when no framework is selected or when the caller supplied none.
	FrameworkConfig FrameworkConfig
}

// FrameworkConfig is a sealed sum type with one variant per framework.
type FrameworkConfig interface {
	// Framework returns the framework this configuration belongs to.
	Framework() Framework
	isFrameworkConfig()
}

// RoleBasedConfig configures the role-based framework.
type RoleBasedConfig struct {
	Role    string `json:"role"`
	Context string `json:"context,omitempty"`
}

// FewShotExample is one input/output demonstration pair.
type FewShotExample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// FewShotConfig configures the few-shot framework. Examples are rendered in order.
type FewShotConfig struct {
	Examples []FewShotExample `json:"examples"`
}

// ChainOfThoughtConfig configures the chain-of-thought framework.
type ChainOfThoughtConfig struct {
	ReasoningStructure       ReasoningStructure `json:"reasoningStructure,omitempty"`
	CustomReasoningStructure string             `json:"customReasoningStructure,omitempty"`
}

// TemplateConfig configures the template/fill-in framework.
type TemplateConfig struct {
	Variables map[string]string `json:"variables"`
}

// ConstraintBasedConfig configures the constraint-based framework.
type ConstraintBasedConfig struct {
	Constraints []string `json:"constraints"`
}

func (RoleBasedConfig) Framework() Framework       { return FrameworkRoleBased }
func (FewShotConfig) Framework() Framework         { return FrameworkFewShot }
func (ChainOfThoughtConfig) Framework() Framework  { return FrameworkChainOfThought }
func (TemplateConfig) Framework() Framework        { return FrameworkTemplate }
func (ConstraintBasedConfig) Framework() Framework { return FrameworkConstraintBased }

func (RoleBasedConfig) isFrameworkConfig()       {}
func (FewShotConfig) isFrameworkConfig()         {}
func (ChainOfThoughtConfig) isFrameworkConfig()  {}
func (TemplateConfig) isFrameworkConfig()        {}
func (ConstraintBasedConfig) isFrameworkConfig() {}

// DecodeFrameworkConfig decodes raw JSON into the variant selected by framework.
// Unknown fields are rejected so that a configuration can only carry the fields of
// its own framework. An empty or null payload yields a nil config.
func DecodeFrameworkConfig(framework Framework, raw json.RawMessage) (FrameworkConfig, error) {
	if framework == FrameworkNone {
		return nil, nil
	}
	if !IsValidFramework(framework) {
		return nil, fmt.Errorf("unknown framework %q", framework)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var target FrameworkConfig
	switch framework {
	case FrameworkRoleBased:
		var c RoleBasedConfig
		if err := strictUnmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("role-based config: %w", err)
		}
		target = c
	case FrameworkFewShot:
		var c FewShotConfig
		if err := strictUnmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("few-shot config: %w", err)
		}
		target = c
	case FrameworkChainOfThought:
		var c ChainOfThoughtConfig
		if err := strictUnmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("chain-of-thought config: %w", err)
		}
		target = c
	case FrameworkTemplate:
		var c TemplateConfig
		if err := strictUnmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("template config: %w", err)
		}
		target = c
	case FrameworkConstraintBased:
		var c ConstraintBasedConfig
		if err := strictUnmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("constraint-based config: %w", err)
		}
		target = c
	}
	return target, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// basePromptConfigJSON is the wire shape of BasePromptConfig.
type basePromptConfigJSON struct {
	BasePrompt      string          `json:"basePrompt"`
	Domain          string          `json:"domain,omitempty"`
	TargetOutcome   string          `json:"targetOutcome,omitempty"`
	Framework       Framework       `json:"framework,omitempty"`
	FrameworkConfig json.RawMessage `json:"frameworkConfig,omitempty"`
}

// MarshalJSON encodes the framework config next to its discriminating framework name.
func (c BasePromptConfig) MarshalJSON() ([]byte, error) {
	aux := basePromptConfigJSON{
		BasePrompt:    c.BasePrompt,
		Domain:        c.Domain,
		TargetOutcome: c.TargetOutcome,
		Framework:     c.Framework,
	}
	if c.FrameworkConfig != nil {
		raw, err := marshalUnescaped(c.FrameworkConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal framework config: %w", err)
		}
		aux.FrameworkConfig = raw
	}
	return marshalUnescaped(aux)
}

// marshalUnescaped is json.Marshal without HTML escaping. An enclosing encoder
// keeps the bytes of a MarshalJSON result, so escaping here would leak into
// every document that embeds a config.
func marshalUnescaped(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes frameworkConfig into the variant named by framework.
func (c *BasePromptConfig) UnmarshalJSON(data []byte) error {
	var aux basePromptConfigJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	cfg, err := DecodeFrameworkConfig(aux.Framework, aux.FrameworkConfig)
	if err != nil {
		return err
	}
	*c = BasePromptConfig{
		BasePrompt:      aux.BasePrompt,
		Domain:          aux.Domain,
		TargetOutcome:   aux.TargetOutcome,
		Framework:       aux.Framework,
		FrameworkConfig: cfg,
	}
	return nil
}

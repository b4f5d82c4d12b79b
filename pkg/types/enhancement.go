package types

// RoleType selects how the role enhancement frames the model.
type RoleType string

const (
	RoleTypeExpert  RoleType = "expert"
	RoleTypePersona RoleType = "persona"
	RoleTypeAdvisor RoleType = "advisor"
)

// ExpertiseLevel is the seniority the model is asked to adopt.
type ExpertiseLevel string

const (
	ExpertiseNovice       ExpertiseLevel = "novice"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
	ExpertiseWorldClass   ExpertiseLevel = "world-class"
)

// AuthorityLevel controls how assertive the adopted role should be.
type AuthorityLevel string

const (
	AuthorityAdvisory      AuthorityLevel = "advisory"
	AuthorityAuthoritative AuthorityLevel = "authoritative"
	AuthorityDefinitive    AuthorityLevel = "definitive"
)

// FormatStructure is the output shape requested by format control.
type FormatStructure string

const (
	StructureBulletPoints FormatStructure = "bullet-points"
	StructureNumberedList FormatStructure = "numbered-list"
	StructureParagraphs   FormatStructure = "paragraphs"
	StructureJSON         FormatStructure = "json"
	StructureTable        FormatStructure = "table"
	StructureCustom       FormatStructure = "custom"
)

// LengthType is the unit of a format-control length target.
type LengthType string

const (
	LengthWordCount      LengthType = "word-count"
	LengthSentenceCount  LengthType = "sentence-count"
	LengthParagraphCount LengthType = "paragraph-count"
)

// StyleGuide is the writing register requested by format control.
type StyleGuide string

const (
	StyleFormal         StyleGuide = "formal"
	StyleConversational StyleGuide = "conversational"
	StyleTechnical      StyleGuide = "technical"
	StyleCreative       StyleGuide = "creative"
	StyleAcademic       StyleGuide = "academic"
)

// LengthUnit is the unit of a smart-constraints length range.
type LengthUnit string

const (
	UnitWords      LengthUnit = "words"
	UnitCharacters LengthUnit = "characters"
	UnitSentences  LengthUnit = "sentences"
	UnitParagraphs LengthUnit = "paragraphs"
)

// ComplexityLevel is the target complexity of the response.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityAdvanced ComplexityLevel = "advanced"
	ComplexityExpert   ComplexityLevel = "expert"
)

// ReasoningStyle is the flavour of reasoning requested by the scaffold.
type ReasoningStyle string

const (
	ReasoningLogical    ReasoningStyle = "logical"
	ReasoningCreative   ReasoningStyle = "creative"
	ReasoningAnalytical ReasoningStyle = "analytical"
	ReasoningPractical  ReasoningStyle = "practical"
)

// ConversationType describes the expected shape of the exchange.
type ConversationType string

const (
	ConversationSingle        ConversationType = "single"
	ConversationIterative     ConversationType = "iterative"
	ConversationMultiStep     ConversationType = "multi-step"
	ConversationCollaborative ConversationType = "collaborative"
)

// EnhancementConfig aggregates the five independently toggled enhancements.
// A disabled sub-config contributes nothing to the composed prompt.
type EnhancementConfig struct {
	RoleEnhancement   RoleEnhancement   `json:"roleEnhancement"`
	FormatControl     FormatControl     `json:"formatControl"`
	SmartConstraints  SmartConstraints  `json:"smartConstraints"`
	ReasoningScaffold ReasoningScaffold `json:"reasoningScaffold"`
	ConversationFlow  ConversationFlow  `json:"conversationFlow"`
}

// RoleEnhancement frames the model as a specific role before the task.
// DomainSpecialty is the "expertise" field required for expert roles.
type RoleEnhancement struct {
	Enabled           bool           `json:"enabled"`
	Type              RoleType       `json:"type,omitempty"`
	ExpertiseLevel    ExpertiseLevel `json:"expertiseLevel,omitempty"`
	DomainSpecialty   string         `json:"domainSpecialty,omitempty"`
	YearsOfExperience *int           `json:"yearsOfExperience,omitempty"`
	AuthorityLevel    AuthorityLevel `json:"authorityLevel,omitempty"`
	CustomRole        string         `json:"customRole,omitempty"`
	Context           string         `json:"context,omitempty"`
}

// LengthSpec is a format-control length target.
type LengthSpec struct {
	Type   LengthType `json:"type"`
	Target int        `json:"target"`
}

// FormatControl constrains the final shape of the response.
type FormatControl struct {
	Enabled      bool            `json:"enabled"`
	Structure    FormatStructure `json:"structure,omitempty"`
	CustomFormat string          `json:"customFormat,omitempty"`
	Length       *LengthSpec     `json:"length,omitempty"`
	StyleGuide   StyleGuide      `json:"styleGuide,omitempty"`
}

// LengthConstraint is a min/max length range. Min <= Max must hold when both are > 0.
type LengthConstraint struct {
	Enabled bool       `json:"enabled"`
	Min     int        `json:"min,omitempty"`
	Max     int        `json:"max,omitempty"`
	Unit    LengthUnit `json:"unit,omitempty"`
}

// SmartConstraints carries lists of free-text constraints plus the richer
// server-side fields (length, tone, audience, complexity).
type SmartConstraints struct {
	Enabled            bool     `json:"enabled"`
	Positive           []string `json:"positiveConstraints,omitempty"`
	Negative           []string `json:"negativeConstraints,omitempty"`
	BoundaryConditions []string `json:"boundaryConditions,omitempty"`
	QualityGates       []string `json:"qualityGates,omitempty"`

	Length          *LengthConstraint `json:"length,omitempty"`
	Tone            []string          `json:"tone,omitempty"`
	AudienceTarget  string            `json:"audienceTarget,omitempty"`
	Exclusions      []string          `json:"exclusions,omitempty"`
	Requirements    []string          `json:"requirements,omitempty"`
	ComplexityLevel ComplexityLevel   `json:"complexityLevel,omitempty"`
}

// ReasoningScaffold asks the model to expose or structure its reasoning.
type ReasoningScaffold struct {
	Enabled             bool           `json:"enabled"`
	ShowWork            bool           `json:"showWork"`
	StepByStep          bool           `json:"stepByStep"`
	ExploreAlternatives bool           `json:"exploreAlternatives"`
	ConfidenceScoring   bool           `json:"confidenceScoring"`
	ReasoningStyle      ReasoningStyle `json:"reasoningStyle,omitempty"`
}

// ConversationFlow describes how turns after this response should be handled.
type ConversationFlow struct {
	Enabled                bool             `json:"enabled"`
	Type                   ConversationType `json:"type,omitempty"`
	ContextPreservation    bool             `json:"contextPreservation"`
	FollowUpTemplates      []string         `json:"followUpTemplates,omitempty"`
	ClarificationProtocols bool             `json:"clarificationProtocols"`
	IterationImprovement   bool             `json:"iterationImprovement"`
}

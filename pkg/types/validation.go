package types

// ValidationIssue is a single structured validation finding. User-facing
// messages are assembled by callers from these triples.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult is produced fresh by each validator call.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// NewValidationResult builds a result whose IsValid reflects the error list.
func NewValidationResult(errs, warnings []ValidationIssue) ValidationResult {
	if errs == nil {
		errs = []ValidationIssue{}
	}
	if warnings == nil {
		warnings = []ValidationIssue{}
	}
	return ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// Merge concatenates the issues of r and others into a new result.
// None of the inputs are modified.
func (r ValidationResult) Merge(others ...ValidationResult) ValidationResult {
	errs := make([]ValidationIssue, 0, len(r.Errors))
	warnings := make([]ValidationIssue, 0, len(r.Warnings))
	errs = append(errs, r.Errors...)
	warnings = append(warnings, r.Warnings...)
	for _, o := range others {
		errs = append(errs, o.Errors...)
		warnings = append(warnings, o.Warnings...)
	}
	return NewValidationResult(errs, warnings)
}

// HasCode reports whether any error or warning carries the given code.
func (r ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ConflictType is the severity of an enhancement conflict.
type ConflictType string

const (
	// ConflictWarning is advisory; composition proceeds.
	ConflictWarning ConflictType = "warning"

	// ConflictError blocks composition in interactive flows.
	ConflictError ConflictType = "error"
)

// Conflict is a contradictory or incomplete enhancement combination.
type Conflict struct {
	Type       ConflictType `json:"type"`
	Code       string       `json:"code"`
	Field      string       `json:"field"`
	Message    string       `json:"message"`
	Suggestion string       `json:"suggestion,omitempty"`
}

package types

// DistributionType is the diversity strategy for verbalized sampling.
type DistributionType string

const (
	// DistributionBroadSpectrum maximizes diversity across the whole output space.
	DistributionBroadSpectrum DistributionType = "broad_spectrum"

	// DistributionRarityHunt biases toward plausible outputs below the probability threshold.
	DistributionRarityHunt DistributionType = "rarity_hunt"

	// DistributionBalancedCategories spreads responses evenly across named dimensions.
	DistributionBalancedCategories DistributionType = "balanced_categories"
)

// ValidDistributionTypes lists every supported distribution type.
var ValidDistributionTypes = []DistributionType{
	DistributionBroadSpectrum,
	DistributionRarityHunt,
	DistributionBalancedCategories,
}

// IsValidDistributionType reports whether d is a supported distribution type.
func IsValidDistributionType(d DistributionType) bool {
	for _, v := range ValidDistributionTypes {
		if v == d {
			return true
		}
	}
	return false
}

// Response count bounds for verbalized sampling.
const (
	MinVSResponseCount = 1
	MaxVSResponseCount = 10
)

// VSConfiguration controls verbalized sampling: the model is asked for several
// alternative responses following a probability or category distribution.
type VSConfiguration struct {
	Enabled                     bool             `json:"enabled"`
	ResponseCount               int              `json:"responseCount"`
	DistributionType            DistributionType `json:"distributionType"`
	ProbabilityThreshold        *float64         `json:"probabilityThreshold,omitempty"`
	Dimensions                  []string         `json:"dimensions,omitempty"`
	CustomDimensions            []string         `json:"customDimensions,omitempty"`
	IncludeProbabilityReasoning bool             `json:"includeProbabilityReasoning"`
	AntiTypicality              bool             `json:"antiTypicality"`
	CustomConstraints           string           `json:"customConstraints,omitempty"`
}

// VSResponseItem is one alternative recovered from a model response.
// Lines that match no known format carry only Content.
type VSResponseItem struct {
	Content     string   `json:"content"`
	Probability *float64 `json:"probability,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// ParsedVSResponse is the structured form of a verbalized-sampling response.
type ParsedVSResponse struct {
	Responses   []VSResponseItem `json:"responses"`
	RawResponse string           `json:"rawResponse"`
}

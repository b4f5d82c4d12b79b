package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVSResponse_SimpleRoundTrip(t *testing.T) {
	probs := []float64{0.35, 0.25, 0.2, 0.12, 0.08}
	var lines []string
	for i, p := range probs {
		lines = append(lines, fmt.Sprintf("Response %d (Probability: %.2f)", i+1, p))
	}
	raw := strings.Join(lines, "\n")

	parsed := ParseVSResponse(raw)

	require.Len(t, parsed.Responses, len(probs))
	assert.Equal(t, raw, parsed.RawResponse)
	for i, item := range parsed.Responses {
		assert.Equal(t, fmt.Sprintf("Response %d", i+1), item.Content)
		require.NotNil(t, item.Probability)
		assert.InDelta(t, probs[i], *item.Probability, 1e-9)
		assert.Empty(t, item.Rationale)
		assert.Empty(t, item.Category)
	}
}

func TestParseVSResponse_Formats(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantContent  string
		wantProb     float64
		wantRational string
		wantCategory string
	}{
		{
			name:         "full",
			line:         "A bold idea (Probability: 0.12 - Rationale: rarely suggested)",
			wantContent:  "A bold idea",
			wantProb:     0.12,
			wantRational: "rarely suggested",
		},
		{
			name:         "category",
			line:         "Category: Humor | A pun about owls (Probability: 0.3 - Category fit: wordplay)",
			wantContent:  "A pun about owls",
			wantProb:     0.3,
			wantRational: "wordplay",
			wantCategory: "Humor",
		},
		{
			name:        "numbered marker stripped",
			line:        "1. Plant more trees (Probability: 0.4)",
			wantContent: "Plant more trees",
			wantProb:    0.4,
		},
		{
			name:        "bullet marker and bare decimal",
			line:        "- Ride a bike (Probability: .5)",
			wantContent: "Ride a bike",
			wantProb:    0.5,
		},
		{
			name:        "parentheses inside content",
			line:        "Use (sparingly) a metaphor (Probability: 0.07)",
			wantContent: "Use (sparingly) a metaphor",
			wantProb:    0.07,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseVSResponse(tt.line)
			require.Len(t, parsed.Responses, 1)

			item := parsed.Responses[0]
			assert.Equal(t, tt.wantContent, item.Content)
			require.NotNil(t, item.Probability)
			assert.InDelta(t, tt.wantProb, *item.Probability, 1e-9)
			assert.Equal(t, tt.wantRational, item.Rationale)
			assert.Equal(t, tt.wantCategory, item.Category)
		})
	}
}

func TestParseVSResponse_MalformedLineFallsBack(t *testing.T) {
	parsed := ParseVSResponse("just some text over ten chars")

	require.Len(t, parsed.Responses, 1)
	item := parsed.Responses[0]
	assert.Equal(t, "just some text over ten chars", item.Content)
	assert.Nil(t, item.Probability)
	assert.Empty(t, item.Rationale)
	assert.Empty(t, item.Category)
}

func TestParseVSResponse_MarkedLineLengthIncludesMarker(t *testing.T) {
	// Each line is over ten runes only when the list marker is counted.
	parsed := ParseVSResponse("1. short one\n- tiny note")

	require.Len(t, parsed.Responses, 2)
	assert.Equal(t, "short one", parsed.Responses[0].Content)
	assert.Equal(t, "tiny note", parsed.Responses[1].Content)
	for _, item := range parsed.Responses {
		assert.Nil(t, item.Probability)
		assert.Empty(t, item.Category)
	}
}

func TestParseVSResponse_SkipsBlankAndShortLines(t *testing.T) {
	raw := "\n   \nok thanks\nIdea one (Probability: 0.6)\n\t\n"
	parsed := ParseVSResponse(raw)

	require.Len(t, parsed.Responses, 1)
	assert.Equal(t, "Idea one", parsed.Responses[0].Content)
}

func TestParseVSResponse_Empty(t *testing.T) {
	parsed := ParseVSResponse("")
	assert.NotNil(t, parsed.Responses)
	assert.Empty(t, parsed.Responses)
}

func TestParseVSResponse_MixedOutput(t *testing.T) {
	raw := strings.Join([]string{
		"Here are my responses:",
		"Category: Facts | Owls can rotate their heads 270 degrees (Probability: 0.5 - Category fit: trivia)",
		"An owl poem (Probability: 0.2 - Rationale: creative angle)",
		"Owl cafes (Probability: 0.1)",
	}, "\n")

	parsed := ParseVSResponse(raw)

	require.Len(t, parsed.Responses, 4)
	assert.Nil(t, parsed.Responses[0].Probability)
	assert.Equal(t, "Facts", parsed.Responses[1].Category)
	assert.Equal(t, "creative angle", parsed.Responses[2].Rationale)
	assert.Equal(t, "Owl cafes", parsed.Responses[3].Content)
}

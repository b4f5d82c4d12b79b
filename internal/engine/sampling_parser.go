package engine

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/scrypster/promptcraft/pkg/types"
)

// minPlainLineRunes is the length a non-matching line must exceed to be kept as
// plain content.
const minPlainLineRunes = 10

var listMarkerPattern = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)

// vsLineRule recognizes one line layout. Rules are tried in slice order.
type vsLineRule struct {
	pattern   *regexp.Regexp
	probGroup int
	build     func(m []string, p float64) types.VSResponseItem
}

var vsLineRules = []vsLineRule{
	{
		pattern:   regexp.MustCompile(`(?i)^Category:\s*(.+?)\s*\|\s*(.+?)\s*\(Probability:\s*(\d*\.?\d+)\s*-\s*Category fit:\s*(.*?)\)\s*$`),
		probGroup: 3,
		build:     func(m []string, p float64) types.VSResponseItem {
			return types.VSResponseItem{Category: m[1], Content: m[2], Probability: &p, Rationale: m[4]}
		},
	},
	{
		pattern:   regexp.MustCompile(`(?i)^(.+?)\s*\(Probability:\s*(\d*\.?\d+)\s*-\s*Rationale:\s*(.*?)\)\s*$`),
		probGroup: 2,
		build:     func(m []string, p float64) types.VSResponseItem {
			return types.VSResponseItem{Content: m[1], Probability: &p, Rationale: m[3]}
		},
	},
	{
		pattern:   regexp.MustCompile(`(?i)^(.+?)\s*\(Probability:\s*(\d*\.?\d+)\)\s*$`),
		probGroup: 2,
		build:     func(m []string, p float64) types.VSResponseItem {
			return types.VSResponseItem{Content: m[1], Probability: &p}
		},
	},
}

// ParseVSResponse recovers the alternatives from a verbalized-sampling response.
// Lines that match no known layout degrade to plain content; it never fails.
func ParseVSResponse(raw string) types.ParsedVSResponse {
	parsed := types.ParsedVSResponse{
		Responses:   []types.VSResponseItem{},
		RawResponse: raw,
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		content := listMarkerPattern.ReplaceAllString(line, "")

		if item, ok := matchVSLine(content); ok {
			parsed.Responses = append(parsed.Responses, item)
			continue
		}
		// The length rule applies to the whole trimmed line, marker included.
		if utf8.RuneCountInString(line) > minPlainLineRunes {
			parsed.Responses = append(parsed.Responses, types.VSResponseItem{Content: content})
		}
	}
	return parsed
}

func matchVSLine(line string) (types.VSResponseItem, bool) {
	for _, rule := range vsLineRules {
		m := rule.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p, err := strconv.ParseFloat(m[rule.probGroup], 64)
		if err != nil {
			continue
		}
		return rule.build(m, p), true
	}
	return types.VSResponseItem{}, false
}

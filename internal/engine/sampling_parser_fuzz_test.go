package engine

import (
	"testing"
)

// FuzzParseVSResponse verifies the parser never panics and never emits empty records.
func FuzzParseVSResponse(f *testing.F) {
	f.Add("Response 1 (Probability: 0.25)")
	f.Add("A (Probability: 0.1 - Rationale: why)")
	f.Add("Category: X | Y (Probability: 0.3 - Category fit: z)")
	f.Add("Category: | (Probability: - Category fit: )")
	f.Add("(Probability: 0.5)")
	f.Add("1. \n2) \n- \n* \n• ")
	f.Add("just some text over ten chars")
	f.Add("x (Probability: 1e309)")
	f.Add("x (Probability: 99999999999999999999999999999.5)")
	f.Add("\xff\xfe (Probability: 0.2)")
	f.Add("")

	f.Fuzz(func(t *testing.T, raw string) {
		parsed := ParseVSResponse(raw)

		if parsed.RawResponse != raw {
			t.Fatalf("raw response not preserved")
		}
		for _, item := range parsed.Responses {
			if item.Content == "" {
				t.Errorf("empty content in %+v", item)
			}
		}
	})
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/scrypster/promptcraft/internal/engine"
	"github.com/scrypster/promptcraft/pkg/types"
)

// CSVHeader is the first row of every VS response export.
var CSVHeader = []string{"Index", "Content", "Probability", "Rationale", "Category"}

// ExportVSResponsesAsCSV parses the response of exec into VS alternatives and
// writes one row per alternative. Index is 1-based; a missing probability is
// an empty cell. Quotes are doubled and fields containing separators are quoted.
func ExportVSResponsesAsCSV(exec *types.ExecutionResult) (string, error) {
	if exec == nil {
		return "", ErrMissingExecutionResult
	}
	return ResponsesCSV(engine.ParseVSResponse(exec.Response).Responses)
}

// ResponsesCSV writes already-parsed alternatives.
func ResponsesCSV(items []types.VSResponseItem) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, item := range items {
		prob := ""
		if item.Probability != nil {
			prob = strconv.FormatFloat(*item.Probability, 'f', -1, 64)
		}
		row := []string{strconv.Itoa(i + 1), item.Content, prob, item.Rationale, item.Category}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

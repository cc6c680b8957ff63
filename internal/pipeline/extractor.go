// internal/pipeline/extractor.go
package pipeline

import (
	"encoding/json"
	"strings"

	"tdlr-processor/internal/models"
)

// Extract recovers a structured stage result from raw, possibly noisy, service
// output. The candidate span runs from the first '{' to the last '}'; leading
// and trailing chatter around it is discarded, nested objects inside it are
// part of the parsed structure. Malformed output is an expected condition, not
// a fault: Extract never fails, it returns a parse-failure sentinel carrying
// the full raw text for human follow-up.
func Extract(raw string) models.StageResult {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return models.ParseFailure(raw)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return models.ParseFailure(raw)
	}

	return models.WellFormed(fields)
}

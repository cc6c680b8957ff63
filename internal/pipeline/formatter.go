// internal/pipeline/formatter.go
package pipeline

import (
	"encoding/json"
	"fmt"

	"tdlr-processor/internal/models"
	"tdlr-processor/internal/prompts"
)

// Formatter binds stage inputs into rendered prompts. It has no side effects
// and fails only by propagating template store errors.
type Formatter struct {
	store prompts.Store
}

func NewFormatter(store prompts.Store) Formatter {
	return Formatter{store: store}
}

// CompletenessPrompt renders the stage-1 prompt from the application record.
func (f Formatter) CompletenessPrompt(record models.ApplicationRecord) (string, error) {
	data, err := serialize(record.ToMap())
	if err != nil {
		return "", err
	}

	licenseType := record.LicenseType
	if licenseType == "" {
		licenseType = "General"
	}

	return f.store.Render(prompts.StageCompleteness, map[string]string{
		"license_type":     licenseType,
		"application_data": data,
	})
}

// RiskPrompt renders the stage-2 prompt from the application record.
func (f Formatter) RiskPrompt(record models.ApplicationRecord) (string, error) {
	data, err := serialize(record.ToMap())
	if err != nil {
		return "", err
	}

	return f.store.Render(prompts.StageRisk, map[string]string{
		"application_data": data,
	})
}

// RecommendationPrompt renders the stage-3 prompt from the two prior stage
// results. Parse-failure sentinels are serialized verbatim; the synthesis
// stage is expected to degrade gracefully on error-marked input.
func (f Formatter) RecommendationPrompt(completeness, risk models.StageResult) (string, error) {
	completenessJSON, err := serialize(completeness.ToMap())
	if err != nil {
		return "", err
	}
	riskJSON, err := serialize(risk.ToMap())
	if err != nil {
		return "", err
	}

	return f.store.Render(prompts.StageRecommendation, map[string]string{
		"completeness_result": completenessJSON,
		"risk_result":         riskJSON,
	})
}

// serialize produces a deterministic textual form of structured data.
// encoding/json emits map keys in sorted order, so two logically equal
// records always bind to textually identical prompts.
func serialize(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize binding: %w", err)
	}
	return string(b), nil
}

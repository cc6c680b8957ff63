// internal/pipeline/schema.go
package pipeline

import (
	"github.com/xeipuuv/gojsonschema"

	"tdlr-processor/internal/models"
	"tdlr-processor/internal/prompts"
)

// Per-stage shape expectations. These are diagnostics for the evaluation
// harness only: the extractor itself returns parsed results without schema
// enforcement, and downstream consumers read optional fields defensively.
var stageSchemas = map[string]*gojsonschema.Schema{
	prompts.StageCompleteness: mustSchema(`{
		"type": "object",
		"required": ["completeness_score"],
		"properties": {
			"completeness_score": {"type": "number", "minimum": 0, "maximum": 100},
			"missing_documents": {"type": "array"},
			"incomplete_documents": {"type": "array"},
			"processing_priority": {"type": "string"}
		}
	}`),
	prompts.StageRisk: mustSchema(`{
		"type": "object",
		"required": ["risk_score", "risk_level"],
		"properties": {
			"risk_score": {"type": "number", "minimum": 1, "maximum": 10},
			"risk_level": {"type": "string"},
			"risk_factors": {"type": "array"},
			"requires_human_review": {"type": "boolean"}
		}
	}`),
	prompts.StageRecommendation: mustSchema(`{
		"type": "object",
		"required": ["final_recommendation"],
		"properties": {
			"final_recommendation": {"type": "string"},
			"conditions": {"type": "array"},
			"priority_flag": {"type": "string"},
			"citizen_communication": {"type": "string"}
		}
	}`),
}

func mustSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(err)
	}
	return schema
}

// ConformsToStage reports whether a stage result carries the expected keys
// with numeric fields in their documented ranges. Parse failures never conform.
func ConformsToStage(stage string, result models.StageResult) bool {
	if result.ParseFailed {
		return false
	}
	schema, ok := stageSchemas[stage]
	if !ok {
		return false
	}

	outcome, err := schema.Validate(gojsonschema.NewGoLoader(result.Fields))
	if err != nil {
		return false
	}
	return outcome.Valid()
}

// internal/models/result.go
package models

import "encoding/json"

// Keys used by the parse-failure sentinel mapping.
const (
	ErrorKey       = "error"
	RawResponseKey = "raw_response"
)

// ParseFailureMessage is the error marker stored in a parse-failure sentinel.
const ParseFailureMessage = "Failed to parse AI response"

// StageResult is the outcome of one pipeline stage: either a well-formed
// mapping of stage-specific fields, or a parse-failure sentinel carrying the
// raw service output for human follow-up. It is never silently empty.
type StageResult struct {
	Fields      map[string]interface{}
	ParseFailed bool
	RawResponse string
}

// WellFormed wraps a parsed stage mapping.
func WellFormed(fields map[string]interface{}) StageResult {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return StageResult{Fields: fields}
}

// ParseFailure wraps raw service output that could not be parsed.
func ParseFailure(raw string) StageResult {
	return StageResult{ParseFailed: true, RawResponse: raw}
}

// ToMap returns the mapping form of the result: the parsed fields, or the
// {error, raw_response} sentinel on parse failure.
func (r StageResult) ToMap() map[string]interface{} {
	if r.ParseFailed {
		return map[string]interface{}{
			ErrorKey:       ParseFailureMessage,
			RawResponseKey: r.RawResponse,
		}
	}
	return r.Fields
}

// Number reads a numeric field, tolerating the float64/int mix that
// encoding/json and hand-built fixtures produce.
func (r StageResult) Number(key string) (float64, bool) {
	if r.ParseFailed {
		return 0, false
	}
	switch v := r.Fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// String reads a string field.
func (r StageResult) String(key string) (string, bool) {
	if r.ParseFailed {
		return "", false
	}
	s, ok := r.Fields[key].(string)
	return s, ok
}

func (r StageResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func (r *StageResult) UnmarshalJSON(data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if msg, ok := fields[ErrorKey].(string); ok && msg == ParseFailureMessage {
		raw, _ := fields[RawResponseKey].(string)
		*r = ParseFailure(raw)
		return nil
	}
	*r = WellFormed(fields)
	return nil
}

// ProcessingResult is the full record for one application run, assembled once
// by the pipeline and persisted exactly once.
type ProcessingResult struct {
	ApplicationID       string             `json:"application_id"`
	LicenseType         string             `json:"license_type"`
	ProcessingDate      string             `json:"processing_date"`
	CompletenessCheck   StageResult        `json:"completeness_check"`
	RiskAssessment      StageResult        `json:"risk_assessment"`
	FinalRecommendation StageResult        `json:"final_recommendation"`
	Metadata            ProcessingMetadata `json:"processing_metadata"`
}

type ProcessingMetadata struct {
	ModelUsed      string `json:"model_used"`
	ProcessingTime string `json:"processing_time"`
	CostEstimate   string `json:"cost_estimate"`
}

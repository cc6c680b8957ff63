// internal/harness/testcases.go
package harness

import "tdlr-processor/internal/models"

// DefaultTestCases returns the fixed evaluation batch: the sample application
// plus four controlled variants covering missing documents, a high-risk
// background, minimal experience, and an excellent applicant.
func DefaultTestCases() []models.TestCase {
	return []models.TestCase{
		{
			Name:   "complete_application",
			Record: models.SampleApplication(),
		},
		{
			Name: "missing_documents",
			Record: withFields(models.SampleApplication(), map[string]interface{}{
				"documents_submitted": []interface{}{"Application Form TDLR-AC-001"},
			}),
			ExpectedCompleteness: "low",
		},
		{
			Name: "high_risk_applicant",
			Record: withFields(models.SampleApplication(), map[string]interface{}{
				"background_info": map[string]interface{}{
					"criminal_history":   "Misdemeanor theft 2019",
					"license_violations": "Previous suspension 2020",
					"financial_history":  "Chapter 7 bankruptcy 2021",
				},
			}),
			ExpectedRisk: "high",
		},
		{
			Name: "minimal_experience",
			Record: withFields(models.SampleApplication(), map[string]interface{}{
				"work_experience": map[string]interface{}{
					"years_experience":   1,
					"previous_employers": []interface{}{"Recent Graduate"},
					"certifications":     []interface{}{"EPA 608 Core Only"},
				},
			}),
			ExpectedRisk: "medium",
		},
		{
			Name: "excellent_applicant",
			Record: withFields(models.SampleApplication(), map[string]interface{}{
				"work_experience": map[string]interface{}{
					"years_experience":   15,
					"previous_employers": []interface{}{"Major HVAC Corp", "Elite Mechanical"},
					"certifications":     []interface{}{"EPA 608 Universal", "NATE Certified", "Master Technician"},
				},
				"background_info": map[string]interface{}{
					"criminal_history":   "None",
					"license_violations": "None",
					"financial_history":  "Excellent credit, business owner",
				},
			}),
			ExpectedCompleteness: "high",
			ExpectedRisk:         "low",
		},
	}
}

// withFields returns a copy of record with the given top-level fields
// replaced. The base record is never mutated.
func withFields(record models.ApplicationRecord, overrides map[string]interface{}) models.ApplicationRecord {
	fields := make(map[string]interface{}, len(record.Fields))
	for k, v := range record.Fields {
		fields[k] = v
	}
	for k, v := range overrides {
		fields[k] = v
	}
	record.Fields = fields
	return record
}

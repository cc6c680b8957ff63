// internal/models/testcase.go
package models

// TestCase is an ApplicationRecord variant used by the evaluation harness,
// optionally tagged with expected qualitative outcomes.
type TestCase struct {
	Name   string
	Record ApplicationRecord

	// ExpectedCompleteness is "high", "low", or empty when no expectation is set.
	ExpectedCompleteness string
	// ExpectedRisk is a risk-level string ("low", "medium", ...) or empty.
	ExpectedRisk string
}

// HasExpectations reports whether the case carries any qualitative expectation.
func (tc TestCase) HasExpectations() bool {
	return tc.ExpectedCompleteness != "" || tc.ExpectedRisk != ""
}

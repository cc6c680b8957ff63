// internal/harness/performance.go
package harness

import (
	"context"
	"strings"
	"time"

	"tdlr-processor/internal/models"
	"tdlr-processor/internal/pipeline"
	"tdlr-processor/internal/prompts"
)

// Qualitative expectation thresholds. "high" completeness means a score of at
// least 70; "low" means under 60. The no-expectation fallback (completeness
// ≥ 70, risk score ≤ 5, each worth half) preserves the original suite's
// heuristic; the specific cut-offs are ad hoc, kept for compatibility.
const (
	highCompletenessFloor   = 70.0
	lowCompletenessCeiling  = 60.0
	fallbackRiskScoreCeil   = 5.0
	fallbackCompletenessMin = 70.0
)

// CaseResult holds the scored outcome of one harness case.
type CaseResult struct {
	Name            string  `json:"test_name"`
	ProcessingTime  float64 `json:"processing_time_seconds"`
	AccuracyScore   float64 `json:"accuracy_score"`
	ChecksPassed    int     `json:"checks_passed"`
	ChecksTotal     int     `json:"checks_total"`
	WellFormedRatio float64 `json:"well_formed_ratio"`
}

// PerformanceMetrics summarizes a full batch run.
type PerformanceMetrics struct {
	TotalTests        int          `json:"total_tests"`
	ProcessingTimes   []float64    `json:"processing_times"`
	AccuracyScores    []float64    `json:"accuracy_scores"`
	TestResults       []CaseResult `json:"test_results"`
	MeanAccuracy      float64      `json:"mean_accuracy"`
	MeanProcessing    float64      `json:"mean_processing_time"`
	PerformanceRating string       `json:"performance_rating"`
}

// RunPerformance runs the fixed batch of test cases, recording wall-clock
// duration and an accuracy score per case.
func (s *Suite) RunPerformance(ctx context.Context) (*PerformanceMetrics, error) {
	metrics := &PerformanceMetrics{
		TotalTests: len(s.cases),
	}

	for i, tc := range s.cases {
		s.logger.Info("performance case", map[string]interface{}{
			"case":  tc.Name,
			"index": i + 1,
			"total": len(s.cases),
		})

		started := time.Now()
		result, err := s.runner.Process(ctx, tc.Record)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(started).Seconds()

		passed, total := scoreExpectations(tc, result)
		accuracy := 100 * passed / float64(total)

		metrics.ProcessingTimes = append(metrics.ProcessingTimes, elapsed)
		metrics.AccuracyScores = append(metrics.AccuracyScores, accuracy)
		metrics.TestResults = append(metrics.TestResults, CaseResult{
			Name:            tc.Name,
			ProcessingTime:  elapsed,
			AccuracyScore:   accuracy,
			ChecksPassed:    int(passed),
			ChecksTotal:     total,
			WellFormedRatio: wellFormedRatio(result),
		})
	}

	metrics.MeanAccuracy = mean(metrics.AccuracyScores)
	metrics.MeanProcessing = mean(metrics.ProcessingTimes)
	metrics.PerformanceRating = rate(metrics.MeanAccuracy, metrics.MeanProcessing)

	return metrics, nil
}

// scoreExpectations returns the passed check weight and the number of checks.
// Each expectation present is one full point out of the checks; a case with no
// expectations falls back to two default checks each worth half.
func scoreExpectations(tc models.TestCase, result *models.ProcessingResult) (passed float64, total int) {
	completeness, _ := result.CompletenessCheck.Number("completeness_score")
	riskScore, _ := result.RiskAssessment.Number("risk_score")
	riskLevel, _ := result.RiskAssessment.String("risk_level")

	if !tc.HasExpectations() {
		total = 2
		if completeness >= fallbackCompletenessMin {
			passed++
		}
		if riskScore <= fallbackRiskScoreCeil {
			passed++
		}
		return passed, total
	}

	if tc.ExpectedCompleteness != "" {
		total++
		switch tc.ExpectedCompleteness {
		case "high":
			if completeness >= highCompletenessFloor {
				passed++
			}
		case "low":
			if completeness < lowCompletenessCeiling {
				passed++
			}
		}
	}

	if tc.ExpectedRisk != "" {
		total++
		if strings.EqualFold(riskLevel, tc.ExpectedRisk) {
			passed++
		}
	}

	return passed, total
}

// wellFormedRatio reports how many of the three stage results conform to
// their documented shape. Diagnostic only.
func wellFormedRatio(result *models.ProcessingResult) float64 {
	conforming := 0
	if pipeline.ConformsToStage(prompts.StageCompleteness, result.CompletenessCheck) {
		conforming++
	}
	if pipeline.ConformsToStage(prompts.StageRisk, result.RiskAssessment) {
		conforming++
	}
	if pipeline.ConformsToStage(prompts.StageRecommendation, result.FinalRecommendation) {
		conforming++
	}
	return float64(conforming) / 3
}

// rate maps mean accuracy and mean latency onto the overall rating. Both
// dimensions must clear a row for that row's rating to apply.
func rate(meanAccuracy, meanSeconds float64) string {
	switch {
	case meanAccuracy >= 90 && meanSeconds < 5:
		return "Excellent"
	case meanAccuracy >= 80 && meanSeconds < 10:
		return "Good"
	case meanAccuracy >= 70 && meanSeconds < 15:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

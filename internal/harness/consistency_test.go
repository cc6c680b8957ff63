// internal/harness/consistency_test.go
package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tdlr-processor/internal/common/errors"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/models"
)

// scriptedRunner replays a fixed sequence of results, one per Process call.
type scriptedRunner struct {
	results []*models.ProcessingResult
	err     error
	calls   int
	records []models.ApplicationRecord
}

func (r *scriptedRunner) Process(ctx context.Context, record models.ApplicationRecord) (*models.ProcessingResult, error) {
	r.records = append(r.records, record)
	if r.err != nil {
		return nil, r.err
	}
	result := r.results[r.calls%len(r.results)]
	r.calls++
	return result, nil
}

func evalResult(completeness, riskScore float64, riskLevel string) *models.ProcessingResult {
	return &models.ProcessingResult{
		ApplicationID:  "TDLR-2024-AC-12345",
		LicenseType:    "Air Conditioning Contractor",
		ProcessingDate: "2024-06-01T12:00:00Z",
		CompletenessCheck: models.WellFormed(map[string]interface{}{
			"completeness_score": completeness,
		}),
		RiskAssessment: models.WellFormed(map[string]interface{}{
			"risk_score": riskScore,
			"risk_level": riskLevel,
		}),
		FinalRecommendation: models.WellFormed(map[string]interface{}{
			"final_recommendation": "Approve",
		}),
	}
}

func TestSuite_RunConsistency_StableScores(t *testing.T) {
	runner := &scriptedRunner{results: []*models.ProcessingResult{
		evalResult(85, 2, "Low"),
	}}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	metrics, err := suite.RunConsistency(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.Iterations)
	assert.Equal(t, []float64{85, 85, 85}, metrics.CompletenessScores)
	assert.Equal(t, []float64{2, 2, 2}, metrics.RiskScores)
	assert.Zero(t, metrics.CompletenessScoreVariance)
	assert.Zero(t, metrics.RiskScoreVariance)
	assert.Equal(t, "High", metrics.ConsistencyRating)

	// Every iteration replays the same record.
	require.Len(t, runner.records, 3)
	assert.Equal(t, runner.records[0].ApplicationID, runner.records[1].ApplicationID)
}

func TestSuite_RunConsistency_VariedScores(t *testing.T) {
	runner := &scriptedRunner{results: []*models.ProcessingResult{
		evalResult(80, 2, "Low"),
		evalResult(90, 3, "Low"),
		evalResult(100, 4, "Medium"),
	}}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	metrics, err := suite.RunConsistency(context.Background(), 3)
	require.NoError(t, err)

	// Sample variance of {80, 90, 100} is 100; of {2, 3, 4} is 1.
	assert.InDelta(t, 100, metrics.CompletenessScoreVariance, 1e-9)
	assert.InDelta(t, 1, metrics.RiskScoreVariance, 1e-9)
	assert.Equal(t, "Medium", metrics.ConsistencyRating)
}

func TestSuite_RunConsistency_SingleIteration(t *testing.T) {
	runner := &scriptedRunner{results: []*models.ProcessingResult{
		evalResult(85, 2, "Low"),
	}}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	metrics, err := suite.RunConsistency(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Iterations)
	assert.Zero(t, metrics.CompletenessScoreVariance)
	assert.Equal(t, "High", metrics.ConsistencyRating)
}

func TestSuite_RunConsistency_IterationFloor(t *testing.T) {
	runner := &scriptedRunner{results: []*models.ProcessingResult{
		evalResult(85, 2, "Low"),
	}}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	metrics, err := suite.RunConsistency(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Iterations)
	assert.Equal(t, 1, runner.calls)
}

func TestSuite_RunConsistency_ParseFailureCountsAsZero(t *testing.T) {
	degraded := evalResult(85, 2, "Low")
	degraded.CompletenessCheck = models.ParseFailure("no json")

	runner := &scriptedRunner{results: []*models.ProcessingResult{
		evalResult(85, 2, "Low"),
		degraded,
	}}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	metrics, err := suite.RunConsistency(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{85, 0}, metrics.CompletenessScores)
	assert.Equal(t, "Medium", metrics.ConsistencyRating)
}

func TestSuite_RunConsistency_RunnerError(t *testing.T) {
	runner := &scriptedRunner{err: apperrors.NewServiceUnavailableError("down")}
	suite := NewSuite(runner, logger.NewTestLogger(t))

	_, err := suite.RunConsistency(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestSampleVariance(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 0},
		{"identical", []float64{85, 85, 85, 85}, 0},
		{"spread", []float64{80, 90, 100}, 100},
		{"pair", []float64{1, 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, sampleVariance(tt.values), 1e-9)
		})
	}
}

// internal/pipeline/processor_test.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tdlr-processor/internal/common/errors"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/genai"
	"tdlr-processor/internal/models"
	"tdlr-processor/internal/prompts"
)

// Markers unique to each stage template, used to recognize which stage a
// prompt belongs to.
const (
	completenessMarker   = "Document completeness validator"
	riskMarker           = "Risk analysis expert"
	recommendationMarker = "Senior licensing decision maker"
)

// stubClient is a deterministic reasoning service double. It scores
// completeness from the documents visible in the prompt, so complete and
// stripped-down applications get different canned answers.
type stubClient struct {
	prompts  []string
	failWith error
	failOn   string

	riskResponse           string
	recommendationResponse string
}

func newStubClient() *stubClient {
	return &stubClient{
		riskResponse:           `Risk review follows. {"risk_score": 2, "risk_level": "Low", "requires_human_review": false, "recommended_action": "Approve"}`,
		recommendationResponse: `{"final_recommendation": "Approve", "priority_flag": "Standard", "citizen_communication": "Your application has been approved."}`,
	}
}

func (c *stubClient) Execute(ctx context.Context, prompt string, cfg genai.ModelConfig) (string, error) {
	c.prompts = append(c.prompts, prompt)

	stage := ""
	switch {
	case strings.Contains(prompt, completenessMarker):
		stage = prompts.StageCompleteness
	case strings.Contains(prompt, riskMarker):
		stage = prompts.StageRisk
	case strings.Contains(prompt, recommendationMarker):
		stage = prompts.StageRecommendation
	}

	if c.failWith != nil && stage == c.failOn {
		return "", c.failWith
	}

	switch stage {
	case prompts.StageCompleteness:
		score := 40
		if strings.Contains(prompt, "Proof of Insurance") {
			score = 92
		}
		return fmt.Sprintf(`Here is my assessment: {"completeness_score": %d, "missing_documents": [], "processing_priority": "Standard"}`, score), nil
	case prompts.StageRisk:
		return c.riskResponse, nil
	case prompts.StageRecommendation:
		return c.recommendationResponse, nil
	}
	return "", fmt.Errorf("unrecognized prompt")
}

type memStore struct {
	saved   []*models.ProcessingResult
	saveErr error
}

func (m *memStore) Save(result *models.ProcessingResult) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, result)
	return fmt.Sprintf("mem://results/%d", len(m.saved)), nil
}

func newTestProcessor(t *testing.T, client genai.Client, results ResultStore) *Processor {
	t.Helper()
	return NewProcessor(client, prompts.NewStore(), results, genai.ModelConfig{
		Model:       "gpt-4",
		MaxTokens:   2000,
		Temperature: 0.1,
	}, logger.NewTestLogger(t))
}

func TestProcessor_Process_CompleteApplication(t *testing.T) {
	client := newStubClient()
	results := &memStore{}
	processor := newTestProcessor(t, client, results)

	result, err := processor.Process(context.Background(), models.SampleApplication())
	require.NoError(t, err)
	require.NotNil(t, result)

	score, ok := result.CompletenessCheck.Number("completeness_score")
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, float64(80))

	level, ok := result.RiskAssessment.String("risk_level")
	require.True(t, ok)
	assert.Equal(t, "Low", level)

	recommendation, ok := result.FinalRecommendation.String("final_recommendation")
	require.True(t, ok)
	assert.Equal(t, "Approve", recommendation)

	assert.Equal(t, "TDLR-2024-AC-12345", result.ApplicationID)
	assert.Equal(t, "Air Conditioning Contractor", result.LicenseType)
	assert.Equal(t, "gpt-4", result.Metadata.ModelUsed)

	_, err = time.Parse(time.RFC3339, result.ProcessingDate)
	assert.NoError(t, err)

	require.Len(t, results.saved, 1)
	assert.Same(t, result, results.saved[0])
}

func TestProcessor_Process_IncompleteApplication(t *testing.T) {
	client := newStubClient()
	processor := newTestProcessor(t, client, &memStore{})

	record := models.SampleApplication()
	record.Fields = map[string]interface{}{
		"documents_submitted": []interface{}{"Application Form TDLR-AC-001"},
	}

	result, err := processor.Process(context.Background(), record)
	require.NoError(t, err)

	score, ok := result.CompletenessCheck.Number("completeness_score")
	require.True(t, ok)
	assert.Less(t, score, float64(60))
}

func TestProcessor_Process_StageOrder(t *testing.T) {
	client := newStubClient()
	processor := newTestProcessor(t, client, &memStore{})

	_, err := processor.Process(context.Background(), models.SampleApplication())
	require.NoError(t, err)

	require.Len(t, client.prompts, 3)
	assert.Contains(t, client.prompts[0], completenessMarker)
	assert.Contains(t, client.prompts[1], riskMarker)
	assert.Contains(t, client.prompts[2], recommendationMarker)
}

func TestProcessor_Process_ParseFailureContinues(t *testing.T) {
	client := newStubClient()
	client.riskResponse = "I am unable to produce JSON today."
	results := &memStore{}
	processor := newTestProcessor(t, client, results)

	result, err := processor.Process(context.Background(), models.SampleApplication())
	require.NoError(t, err)

	assert.True(t, result.RiskAssessment.ParseFailed)
	assert.Equal(t, "I am unable to produce JSON today.", result.RiskAssessment.RawResponse)

	// The synthesis stage still ran and saw the sentinel verbatim.
	require.Len(t, client.prompts, 3)
	assert.Contains(t, client.prompts[2], models.ParseFailureMessage)
	assert.Contains(t, client.prompts[2], "I am unable to produce JSON today.")

	// The degraded run is still a completed run and gets persisted.
	assert.Len(t, results.saved, 1)
}

func TestProcessor_Process_ServiceErrorAborts(t *testing.T) {
	tests := []struct {
		name        string
		failOn      string
		failWith    error
		wantPrompts int
	}{
		{
			name:        "unavailable at completeness",
			failOn:      prompts.StageCompleteness,
			failWith:    apperrors.NewServiceUnavailableError("connection refused"),
			wantPrompts: 1,
		},
		{
			name:        "rejected at risk",
			failOn:      prompts.StageRisk,
			failWith:    apperrors.NewServiceRejectedError("prompt too large"),
			wantPrompts: 2,
		},
		{
			name:        "unavailable at recommendation",
			failOn:      prompts.StageRecommendation,
			failWith:    apperrors.NewServiceUnavailableError("rate limited"),
			wantPrompts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient()
			client.failOn = tt.failOn
			client.failWith = tt.failWith
			results := &memStore{}
			processor := newTestProcessor(t, client, results)

			result, err := processor.Process(context.Background(), models.SampleApplication())

			require.Error(t, err)
			assert.Nil(t, result)
			assert.Len(t, client.prompts, tt.wantPrompts)
			// An aborted run persists nothing.
			assert.Empty(t, results.saved)
		})
	}
}

func TestProcessor_Process_PersistenceErrorKeepsResult(t *testing.T) {
	client := newStubClient()
	results := &memStore{saveErr: apperrors.NewPersistenceFailedError(fmt.Errorf("disk full"))}
	processor := newTestProcessor(t, client, results)

	result, err := processor.Process(context.Background(), models.SampleApplication())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePersistenceFailed))
	// Only the durable copy is lost; the assembled result comes back anyway.
	require.NotNil(t, result)
	assert.Equal(t, "TDLR-2024-AC-12345", result.ApplicationID)
}

func TestProcessor_Process_NilStoreSkipsPersistence(t *testing.T) {
	client := newStubClient()
	processor := newTestProcessor(t, client, nil)

	result, err := processor.Process(context.Background(), models.SampleApplication())
	require.NoError(t, err)
	assert.NotNil(t, result)
}

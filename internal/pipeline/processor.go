// internal/pipeline/processor.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	apperrors "tdlr-processor/internal/common/errors"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/common/metrics"
	"tdlr-processor/internal/genai"
	"tdlr-processor/internal/models"
	"tdlr-processor/internal/prompts"
)

// ResultStore persists an assembled ProcessingResult and returns its location.
type ResultStore interface {
	Save(result *models.ProcessingResult) (string, error)
}

// StageRequest is the transient bundle handed to the reasoning service for one
// stage invocation.
type StageRequest struct {
	Stage  string
	Prompt string
	Model  genai.ModelConfig
}

// Processor runs an application record through the three evaluation stages in
// program order and persists the assembled result. It is single-threaded by
// design: COMPLETENESS and RISK have no data dependency on each other, but
// sequential execution keeps the trace order deterministic.
type Processor struct {
	client    genai.Client
	formatter Formatter
	results   ResultStore
	model     genai.ModelConfig
	logger    logger.Logger
}

// NewProcessor builds a Processor. results may be nil when the caller owns
// persistence (the harness does its own reporting).
func NewProcessor(client genai.Client, store prompts.Store, results ResultStore, model genai.ModelConfig, log logger.Logger) *Processor {
	return &Processor{
		client:    client,
		formatter: NewFormatter(store),
		results:   results,
		model:     model,
		logger: log.With(map[string]interface{}{
			"component": "pipeline",
		}),
	}
}

// Process evaluates one application record. A service error at any stage
// aborts the run with nothing persisted. A persistence error is surfaced after
// assembly together with the in-memory result, so only the durable copy is
// lost.
func (p *Processor) Process(ctx context.Context, record models.ApplicationRecord) (*models.ProcessingResult, error) {
	log := p.logger.With(map[string]interface{}{
		"applicationId": record.ApplicationID,
		"licenseType":   record.LicenseType,
	})
	log.Info("processing application", nil)

	started := time.Now()

	completenessPrompt, err := p.formatter.CompletenessPrompt(record)
	if err != nil {
		return nil, err
	}
	completeness, err := p.runStage(ctx, log, StageRequest{
		Stage:  prompts.StageCompleteness,
		Prompt: completenessPrompt,
		Model:  p.model,
	})
	if err != nil {
		return nil, err
	}

	riskPrompt, err := p.formatter.RiskPrompt(record)
	if err != nil {
		return nil, err
	}
	risk, err := p.runStage(ctx, log, StageRequest{
		Stage:  prompts.StageRisk,
		Prompt: riskPrompt,
		Model:  p.model,
	})
	if err != nil {
		return nil, err
	}

	// The synthesis stage receives both prior results verbatim, parse-failure
	// sentinels included.
	recommendationPrompt, err := p.formatter.RecommendationPrompt(completeness, risk)
	if err != nil {
		return nil, err
	}
	recommendation, err := p.runStage(ctx, log, StageRequest{
		Stage:  prompts.StageRecommendation,
		Prompt: recommendationPrompt,
		Model:  p.model,
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(started)
	result := &models.ProcessingResult{
		ApplicationID:       record.ApplicationID,
		LicenseType:         record.LicenseType,
		ProcessingDate:      time.Now().UTC().Format(time.RFC3339),
		CompletenessCheck:   completeness,
		RiskAssessment:      risk,
		FinalRecommendation: recommendation,
		Metadata: models.ProcessingMetadata{
			ModelUsed:      p.model.Model,
			ProcessingTime: fmt.Sprintf("%.1fs", elapsed.Seconds()),
			CostEstimate:   estimateCost(len(completenessPrompt) + len(riskPrompt) + len(recommendationPrompt)),
		},
	}

	if p.results != nil {
		location, err := p.results.Save(result)
		if err != nil {
			return result, err
		}
		metrics.ResultsPersisted.Inc()
		log.Info("result persisted", map[string]interface{}{
			"location": location,
		})
	}

	log.Info("application processed", map[string]interface{}{
		"elapsed": elapsed.String(),
	})
	return result, nil
}

func (p *Processor) runStage(ctx context.Context, log logger.Logger, req StageRequest) (models.StageResult, error) {
	timer := time.Now()
	metrics.StageExecutions.WithLabelValues(req.Stage).Inc()

	raw, err := p.client.Execute(ctx, req.Prompt, req.Model)
	metrics.StageDuration.WithLabelValues(req.Stage).Observe(time.Since(timer).Seconds())
	if err != nil {
		metrics.StageFailures.WithLabelValues(req.Stage, errorCode(err)).Inc()
		log.WithError(err).Error("stage failed", map[string]interface{}{
			"stage": req.Stage,
		})
		return models.StageResult{}, err
	}

	result := Extract(raw)
	if result.ParseFailed {
		metrics.StageParseFailures.WithLabelValues(req.Stage).Inc()
		log.Warn("stage response failed extraction, continuing with sentinel", map[string]interface{}{
			"stage":        req.Stage,
			"responseSize": len(raw),
		})
	}

	return result, nil
}

func errorCode(err error) string {
	for _, code := range []apperrors.ErrorCode{
		apperrors.ErrCodeServiceUnavailable,
		apperrors.ErrCodeServiceRejected,
		apperrors.ErrCodeMissingBinding,
	} {
		if apperrors.IsCode(err, code) {
			return string(code)
		}
	}
	return "UNKNOWN_ERROR"
}

// estimateCost approximates the run cost from total prompt length at a flat
// per-token rate (roughly 4 characters per token). A coarse figure for the
// processing_metadata field, not billing data.
func estimateCost(promptChars int) string {
	tokens := float64(promptChars) / 4
	return fmt.Sprintf("$%.2f", tokens/1000*0.03)
}

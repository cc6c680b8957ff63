// cmd/processor/main.go
package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tdlr-processor/internal/common/config"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/genai"
	"tdlr-processor/internal/models"
	"tdlr-processor/internal/notify"
	"tdlr-processor/internal/pipeline"
	"tdlr-processor/internal/prompts"
	"tdlr-processor/internal/store"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	fmt.Println("TDLR License Application Processing System")
	fmt.Println("==========================================")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	results, cleanup, err := buildRecorder(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("storage init failed", zap.Error(err))
	}
	defer cleanup()

	client := genai.NewHTTPClient(cfg.GenAI, log)
	processor := pipeline.NewProcessor(client, prompts.NewStore(), results, genai.ModelConfig{
		Model:       cfg.GenAI.Model,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
	}, log)

	record := models.SampleApplication()
	fmt.Printf("\nProcessing sample application:\n")
	fmt.Printf("  Application ID: %s\n", record.ApplicationID)
	fmt.Printf("  License Type:   %s\n\n", record.LicenseType)

	result, err := processor.Process(ctx, record)
	if err != nil {
		zapLog.Fatal("processing failed", zap.Error(err))
	}

	printSummary(result)

	if cfg.Notifications.Email.Enabled {
		notifyApplicant(ctx, cfg, log, record, result)
	}
}

func buildRecorder(ctx context.Context, cfg *config.Config, log logger.Logger) (pipeline.ResultStore, func(), error) {
	files := store.NewFileStore(cfg.Storage.OutputDir, log)

	var archive *store.Archive
	var index *store.Index
	cleanup := func() {
		if archive != nil {
			archive.Close()
		}
		if index != nil {
			index.Close()
		}
	}

	if cfg.Storage.Postgres.Enabled {
		var err error
		archive, err = store.NewArchive(cfg.Storage.Postgres, log)
		if err != nil {
			return nil, cleanup, err
		}
		if err := archive.Ping(ctx); err != nil {
			return nil, cleanup, err
		}
	}

	if cfg.Storage.Redis.Enabled {
		index = store.NewIndex(cfg.Storage.Redis, log)
	}

	return store.NewRecorder(files, archive, index, log), cleanup, nil
}

func printSummary(result *models.ProcessingResult) {
	fmt.Println("Processing complete. Results:")
	fmt.Println("-----------------------------")

	if score, ok := result.CompletenessCheck.Number("completeness_score"); ok {
		fmt.Printf("  Completeness Score:   %.0f/100\n", score)
	} else {
		fmt.Printf("  Completeness Score:   N/A (response not parseable)\n")
	}

	if level, ok := result.RiskAssessment.String("risk_level"); ok {
		fmt.Printf("  Risk Level:           %s\n", level)
	} else {
		fmt.Printf("  Risk Level:           N/A (response not parseable)\n")
	}

	if rec, ok := result.FinalRecommendation.String("final_recommendation"); ok {
		fmt.Printf("  Final Recommendation: %s\n", rec)
	} else {
		fmt.Printf("  Final Recommendation: N/A (response not parseable)\n")
	}

	fmt.Printf("\nDetailed results saved under the configured output directory.\n")
}

func notifyApplicant(ctx context.Context, cfg *config.Config, log logger.Logger, record models.ApplicationRecord, result *models.ProcessingResult) {
	sender, err := notify.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		log.WithError(err).Warn("notification disabled: SES init failed", nil)
		return
	}

	notifier := notify.NewNotifier(sender, cfg.Notifications.Email.FromEmail, log)
	if err := notifier.NotifyApplicant(ctx, notify.ApplicantEmail(record), result); err != nil {
		log.WithError(err).Warn("applicant notification failed", nil)
	}
}

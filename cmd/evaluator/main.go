// cmd/evaluator/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tdlr-processor/internal/common/config"
	"tdlr-processor/internal/common/logger"
	"tdlr-processor/internal/genai"
	"tdlr-processor/internal/harness"
	"tdlr-processor/internal/pipeline"
	"tdlr-processor/internal/prompts"
	"tdlr-processor/internal/store"
)

func main() {
	iterations := flag.Int("iterations", 0, "consistency test iterations (0 = use config)")
	skipConsistency := flag.Bool("skip-consistency", false, "skip the consistency test")
	skipPerformance := flag.Bool("skip-performance", false, "skip the performance test")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	fmt.Println("TDLR Pipeline Evaluation Harness")
	fmt.Println("================================")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if *iterations > 0 {
		cfg.Harness.Iterations = *iterations
	}

	ctx := context.Background()

	client := genai.NewHTTPClient(cfg.GenAI, log)
	results := store.NewFileStore(cfg.Storage.OutputDir, log)
	processor := pipeline.NewProcessor(client, prompts.NewStore(), results, genai.ModelConfig{
		Model:       cfg.GenAI.Model,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
	}, log)

	suite := harness.NewSuite(processor, log)
	report := &harness.Report{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if !*skipConsistency {
		fmt.Printf("\nRunning consistency test (%d iterations)...\n", cfg.Harness.Iterations)
		consistency, err := suite.RunConsistency(ctx, cfg.Harness.Iterations)
		if err != nil {
			zapLog.Fatal("consistency test failed", zap.Error(err))
		}
		report.Consistency = consistency
		fmt.Printf("  Completeness variance: %.2f, rating: %s\n",
			consistency.CompletenessScoreVariance, consistency.ConsistencyRating)
	}

	if !*skipPerformance {
		fmt.Println("\nRunning performance test...")
		performance, err := suite.RunPerformance(ctx)
		if err != nil {
			zapLog.Fatal("performance test failed", zap.Error(err))
		}
		report.Performance = performance
		fmt.Printf("  Mean accuracy: %.1f%%, mean time: %.2fs, rating: %s\n",
			performance.MeanAccuracy, performance.MeanProcessing, performance.PerformanceRating)
	}

	reportPath, metricsPath, err := harness.WriteReport(cfg.Harness.ReportDir, report)
	if err != nil {
		zapLog.Fatal("report write failed", zap.Error(err))
	}

	fmt.Printf("\nReport written to %s\n", reportPath)
	fmt.Printf("Raw metrics written to %s\n", metricsPath)
}

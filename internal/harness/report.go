// internal/harness/report.go
package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "tdlr-processor/internal/common/errors"
)

// Report bundles the two evaluation modes for one harness run.
type Report struct {
	GeneratedAt string              `json:"generated_at"`
	Consistency *ConsistencyMetrics `json:"consistency,omitempty"`
	Performance *PerformanceMetrics `json:"performance,omitempty"`
}

// WriteReport writes a human-readable report and the raw metrics JSON under
// dir, returning both paths.
func WriteReport(dir string, report *Report) (reportPath, metricsPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", apperrors.NewPersistenceFailedError(err)
	}

	stamp := time.Now().Format("20060102_150405")
	reportPath = filepath.Join(dir, fmt.Sprintf("evaluation_report_%s.txt", stamp))
	metricsPath = filepath.Join(dir, fmt.Sprintf("evaluation_metrics_%s.json", stamp))

	if err := os.WriteFile(reportPath, []byte(report.render()), 0o644); err != nil {
		return "", "", apperrors.NewPersistenceFailedError(err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", "", apperrors.NewPersistenceFailedError(err)
	}
	if err := os.WriteFile(metricsPath, raw, 0o644); err != nil {
		return "", "", apperrors.NewPersistenceFailedError(err)
	}

	return reportPath, metricsPath, nil
}

func (r *Report) render() string {
	var b strings.Builder

	b.WriteString("LICENSE APPLICATION PIPELINE EVALUATION REPORT\n")
	b.WriteString("==============================================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt)

	if c := r.Consistency; c != nil {
		b.WriteString("CONSISTENCY TEST\n")
		b.WriteString("----------------\n")
		fmt.Fprintf(&b, "Iterations:                  %d\n", c.Iterations)
		fmt.Fprintf(&b, "Completeness scores:         %v\n", c.CompletenessScores)
		fmt.Fprintf(&b, "Risk scores:                 %v\n", c.RiskScores)
		fmt.Fprintf(&b, "Completeness score variance: %.2f\n", c.CompletenessScoreVariance)
		fmt.Fprintf(&b, "Risk score variance:         %.2f\n", c.RiskScoreVariance)
		fmt.Fprintf(&b, "Consistency rating:          %s\n\n", c.ConsistencyRating)
	}

	if p := r.Performance; p != nil {
		b.WriteString("PERFORMANCE TEST\n")
		b.WriteString("----------------\n")
		fmt.Fprintf(&b, "Total cases:          %d\n", p.TotalTests)
		fmt.Fprintf(&b, "Mean accuracy:        %.1f%%\n", p.MeanAccuracy)
		fmt.Fprintf(&b, "Mean processing time: %.2fs\n", p.MeanProcessing)
		fmt.Fprintf(&b, "Performance rating:   %s\n\n", p.PerformanceRating)

		for _, cr := range p.TestResults {
			fmt.Fprintf(&b, "  %-24s accuracy %5.1f%% (%d/%d checks), %.2fs, well-formed %.0f%%\n",
				cr.Name, cr.AccuracyScore, cr.ChecksPassed, cr.ChecksTotal,
				cr.ProcessingTime, cr.WellFormedRatio*100)
		}
		b.WriteString("\n")
	}

	return b.String()
}

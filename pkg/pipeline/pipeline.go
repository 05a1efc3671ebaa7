package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ledgerline/txnetl/pkg/cleaner"
	"github.com/ledgerline/txnetl/pkg/config"
	"github.com/ledgerline/txnetl/pkg/loader"
	"github.com/ledgerline/txnetl/pkg/models"
	"github.com/ledgerline/txnetl/pkg/reader"
	"github.com/ledgerline/txnetl/pkg/reporter"
	"github.com/ledgerline/txnetl/pkg/transformer"
)

// Pipeline wires the ETL stages together and owns the run statistics.
// Recoverable per-record anomalies accumulate into the stats; collaborator
// failures (unreadable input, unreachable store) abort the run.
type Pipeline struct {
	config *config.Config
	logger *log.Logger
}

func New(cfg *config.Config, logger *log.Logger) *Pipeline {
	return &Pipeline{config: cfg, logger: logger}
}

// Run executes the full pipeline: extract, clean, transform, load, report.
// The returned stats are valid even when an error is returned, up to the
// stage that failed.
func (p *Pipeline) Run(inputPath string) (*models.RunStats, error) {
	stats := &models.RunStats{}
	start := time.Now()

	p.logger.Info("extracting", "input", inputPath)
	raw, skipped, err := reader.New(p.logger).ReadFile(inputPath)
	if err != nil {
		return stats, fmt.Errorf("extract stage failed: %w", err)
	}
	stats.Read = len(raw)
	if skipped > 0 {
		stats.AddWarning(fmt.Sprintf("Skipped %d malformed rows during extraction", skipped))
	}

	p.logger.Info("cleaning", "records", len(raw))
	cleaned := cleaner.New(p.logger).Clean(raw)
	stats.Cleaned = len(cleaned.Accepted)
	stats.Rejected = cleaned.Rejected
	for _, reason := range cleaned.Reasons {
		stats.AddRejection(reason)
	}

	p.logger.Info("transforming", "records", len(cleaned.Accepted))
	converter := transformer.NewConverter(p.config.ReferenceCurrency, p.config.Rates())
	rules := transformer.NewRuleSet(p.config.HighRiskCountries)
	transformed := transformer.New(converter, rules, p.logger).Transform(cleaned.Accepted)
	stats.Flagged = transformed.Flagged
	stats.DuplicatesRemoved = transformed.DuplicatesRemoved
	stats.Conversions = transformed.Conversions
	for _, warning := range transformed.Warnings {
		stats.AddWarning(warning)
	}

	p.logger.Info("loading", "db", p.config.DBPath, "records", len(transformed.Transactions))
	store, err := loader.Open(p.config.DBPath, p.config.BatchSize, p.logger)
	if err != nil {
		return stats, fmt.Errorf("load stage failed: %w", err)
	}
	defer store.Close()

	loaded, err := store.Load(transformed.Transactions)
	if err != nil {
		return stats, fmt.Errorf("load stage failed: %w", err)
	}
	stats.Loaded = loaded

	if summary, err := store.Verify(); err != nil {
		p.logger.Warn("load verification failed", "error", err)
	} else {
		p.logger.Info("load verified",
			"total", summary.Total,
			"flagged", summary.Flagged,
			"total_volume", summary.TotalAmount,
			"unique_countries", summary.UniqueCountries)
	}

	rep := reporter.New(p.config.ReportDir, p.logger)
	report := rep.Render(stats, transformed.Transactions)
	fmt.Print(report)
	if path, err := rep.Write(report); err != nil {
		p.logger.Warn("could not save report", "error", err)
	} else {
		p.logger.Info("report saved", "path", path)
	}

	p.logger.Info("pipeline completed", "elapsed", time.Since(start).Round(time.Millisecond))
	return stats, nil
}

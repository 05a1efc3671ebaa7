package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/txnetl/pkg/models"
)

// At most this many rejection reasons are listed in full; the rest collapse
// into a remainder count.
const maxReasonsShown = 10

// Reporter renders the end-of-run data quality report.
type Reporter struct {
	dir    string
	logger *log.Logger
}

// New creates a reporter that writes report files into dir.
func New(dir string, logger *log.Logger) *Reporter {
	return &Reporter{dir: dir, logger: logger}
}

// Render builds the full report text from the run statistics and the loaded
// batch.
func (r *Reporter) Render(stats *models.RunStats, loaded []*models.Transaction) string {
	var sb strings.Builder

	sb.WriteString("\n+==================================================+\n")
	sb.WriteString("|        ETL PIPELINE - DATA QUALITY REPORT        |\n")
	sb.WriteString("+==================================================+\n")
	fmt.Fprintf(&sb, "  Run timestamp : %s\n", time.Now().Format("2006-01-02 15:04:05"))

	sb.WriteString("\n--- PIPELINE SUMMARY ----------------------------------------\n")
	fmt.Fprintf(&sb, "  Records read     : %d\n", stats.Read)
	fmt.Fprintf(&sb, "  Records cleaned  : %d\n", stats.Cleaned)
	fmt.Fprintf(&sb, "  Records rejected : %d\n", stats.Rejected)
	fmt.Fprintf(&sb, "  Records loaded   : %d\n", stats.Loaded)
	fmt.Fprintf(&sb, "  Records flagged  : %d\n", stats.Flagged)
	fmt.Fprintf(&sb, "  Pass rate        : %.1f%%\n", stats.PassRate())

	if len(loaded) > 0 {
		renderBreakdown(&sb, loaded)
		renderFinancialSummary(&sb, loaded)
	}

	renderRejections(&sb, stats.RejectionReasons)
	renderWarnings(&sb, stats.Warnings)

	sb.WriteString("\n=====================================================\n")
	return sb.String()
}

// Write renders the report and saves it to a timestamped file, returning
// the file path.
func (r *Reporter) Write(content string) (string, error) {
	name := fmt.Sprintf("etl_report_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	r.logger.Debug("report written", "path", path)
	return path, nil
}

func renderBreakdown(sb *strings.Builder, loaded []*models.Transaction) {
	sb.WriteString("\n--- TRANSACTION BREAKDOWN -----------------------------------\n")

	byType := make(map[string]int)
	byCountry := make(map[string]int)
	for _, t := range loaded {
		byType[t.Type]++
		byCountry[t.Country]++
	}

	sb.WriteString("  By Transaction Type:\n")
	for _, typ := range sortedKeys(byType) {
		fmt.Fprintf(sb, "    %-20s : %d\n", typ, byType[typ])
	}

	sb.WriteString("  Top 5 Countries:\n")
	for _, country := range topCountries(byCountry, 5) {
		fmt.Fprintf(sb, "    %-20s : %d\n", country, byCountry[country])
	}
}

func renderFinancialSummary(sb *strings.Builder, loaded []*models.Transaction) {
	total := decimal.Zero
	largest := decimal.Zero
	for _, t := range loaded {
		total = total.Add(t.Amount)
		if t.Amount.GreaterThan(largest) {
			largest = t.Amount
		}
	}
	average := total.Div(decimal.NewFromInt(int64(len(loaded)))).Round(2)

	currency := loaded[0].Currency
	fmt.Fprintf(sb, "\n--- FINANCIAL SUMMARY (%s) ---------------------------------\n", currency)
	fmt.Fprintf(sb, "  Total volume : %15s\n", total.StringFixed(2))
	fmt.Fprintf(sb, "  Average txn  : %15s\n", average.StringFixed(2))
	fmt.Fprintf(sb, "  Largest txn  : %15s\n", largest.StringFixed(2))
}

func renderRejections(sb *strings.Builder, reasons []string) {
	if len(reasons) == 0 {
		return
	}
	sb.WriteString("\n--- REJECTION REASONS ---------------------------------------\n")
	shown := reasons
	if len(shown) > maxReasonsShown {
		shown = shown[:maxReasonsShown]
	}
	for _, reason := range shown {
		fmt.Fprintf(sb, "  - %s\n", reason)
	}
	if rest := len(reasons) - maxReasonsShown; rest > 0 {
		fmt.Fprintf(sb, "  ... and %d more.\n", rest)
	}
}

func renderWarnings(sb *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	sb.WriteString("\n--- WARNINGS ------------------------------------------------\n")
	for _, warning := range warnings {
		fmt.Fprintf(sb, "  - %s\n", warning)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topCountries orders countries by descending count, breaking ties by name
// so the report is deterministic.
func topCountries(counts map[string]int, limit int) []string {
	countries := make([]string, 0, len(counts))
	for c := range counts {
		countries = append(countries, c)
	}
	sort.Slice(countries, func(i, j int) bool {
		if counts[countries[i]] != counts[countries[j]] {
			return counts[countries[i]] > counts[countries[j]]
		}
		return countries[i] < countries[j]
	})
	if len(countries) > limit {
		countries = countries[:limit]
	}
	return countries
}

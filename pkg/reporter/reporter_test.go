package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/txnetl/pkg/models"
)

func newReporter(dir string) *Reporter {
	return New(dir, log.New(io.Discard))
}

func makeTransaction(id string, amount float64, typ, country string) *models.Transaction {
	return &models.Transaction{
		TransactionID: id,
		CustomerID:    "CUST001",
		Amount:        decimal.NewFromFloat(amount),
		Currency:      "USD",
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Type:          typ,
		Country:       country,
	}
}

func TestRenderSummaryCounts(t *testing.T) {
	stats := &models.RunStats{Read: 10, Cleaned: 8, Rejected: 2, Flagged: 1, Loaded: 8}
	loaded := []*models.Transaction{
		makeTransaction("TXN001", 100, "WIRE", "US"),
	}

	report := newReporter(t.TempDir()).Render(stats, loaded)
	for _, want := range []string{
		"Records read     : 10",
		"Records cleaned  : 8",
		"Records rejected : 2",
		"Records loaded   : 8",
		"Records flagged  : 1",
		"Pass rate        : 80.0%",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRenderBreakdownAndFinancials(t *testing.T) {
	stats := &models.RunStats{Read: 3, Cleaned: 3, Loaded: 3}
	loaded := []*models.Transaction{
		makeTransaction("TXN001", 100, "WIRE", "US"),
		makeTransaction("TXN002", 200, "CASH", "US"),
		makeTransaction("TXN003", 300, "WIRE", "CA"),
	}

	report := newReporter(t.TempDir()).Render(stats, loaded)
	for _, want := range []string{
		"By Transaction Type",
		"CASH",
		"WIRE",
		"Top 5 Countries",
		"Total volume :          600.00",
		"Average txn  :          200.00",
		"Largest txn  :          300.00",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	// US (2) must rank above CA (1).
	section := report[strings.Index(report, "Top 5 Countries"):]
	if strings.Index(section, "US ") > strings.Index(section, "CA ") {
		t.Errorf("expected US before CA in top countries:\n%s", section)
	}
}

func TestRejectionReasonsCappedAtTen(t *testing.T) {
	stats := &models.RunStats{Read: 20, Rejected: 13}
	for i := 1; i <= 13; i++ {
		stats.AddRejection(fmt.Sprintf("Missing transaction ID: row %d", i))
	}

	report := newReporter(t.TempDir()).Render(stats, nil)
	if !strings.Contains(report, "... and 3 more.") {
		t.Errorf("expected remainder line, got:\n%s", report)
	}
	if strings.Contains(report, "row 11") {
		t.Errorf("reasons past the cap must not be listed:\n%s", report)
	}
	if !strings.Contains(report, "row 10") {
		t.Errorf("first ten reasons must be listed:\n%s", report)
	}
}

func TestWarningsRendered(t *testing.T) {
	stats := &models.RunStats{Read: 1}
	stats.AddWarning("Unknown currency XYZ for txn TXN001, assuming 1:1 rate")

	report := newReporter(t.TempDir()).Render(stats, nil)
	if !strings.Contains(report, "WARNINGS") || !strings.Contains(report, "Unknown currency XYZ") {
		t.Errorf("expected warnings section, got:\n%s", report)
	}
}

func TestEmptyRunRenders(t *testing.T) {
	report := newReporter(t.TempDir()).Render(&models.RunStats{}, nil)
	if !strings.Contains(report, "Pass rate        : 0.0%") {
		t.Errorf("expected zero pass rate, got:\n%s", report)
	}
	if strings.Contains(report, "FINANCIAL SUMMARY") {
		t.Errorf("empty run must not render financials:\n%s", report)
	}
}

func TestWriteSavesReportFile(t *testing.T) {
	dir := t.TempDir()
	r := newReporter(dir)

	path, err := r.Write("report body\n")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report back: %v", err)
	}
	if string(data) != "report body\n" {
		t.Errorf("unexpected report content %q", data)
	}
	if !strings.HasPrefix(filepath.Base(path), "etl_report_") {
		t.Errorf("unexpected report file name %q", path)
	}
}

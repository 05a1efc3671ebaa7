package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ledgerline/txnetl/pkg/config"
)

const fixture = `transaction_id,customer_id,full_name,phone,email,amount,currency,transaction_date,transaction_type,country
TXN001,CUST001,JOHN SMITH,5551234567,JOHN@EXAMPLE.COM,12000,USD,2024-06-01,CASH,US
TXN002,CUST002,jane doe,+15559876543,jane@example.com,1000,EUR,06/02/2024,WIRE,DE
TXN003,,no customer,5551234567,x@example.com,100,USD,2024-06-01,ACH,US
TXN004,CUST004,dup entry,5551234567,dup@example.com,50,USD,2024-06-01,ACH,US
TXN004,CUST004,dup entry,5551234567,dup@example.com,50,USD,2024-06-01,ACH,US
TXN005,CUST005,kim jong,5551112222,kim@example.com,75,USD,2024-06-03,WIRE,KP
`

func runFixture(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "transactions.csv")
	if err := os.WriteFile(input, []byte(fixture), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := config.Build("", nil)
	if err != nil {
		t.Fatalf("config build failed: %v", err)
	}
	cfg.DBPath = filepath.Join(dir, "transactions.db")
	cfg.ReportDir = dir
	return cfg, input
}

func TestRunEndToEnd(t *testing.T) {
	cfg, input := runFixture(t)

	stats, err := New(cfg, log.New(io.Discard)).Run(input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Read != 6 {
		t.Errorf("expected 6 read, got %d", stats.Read)
	}
	if stats.Cleaned != 5 {
		t.Errorf("expected 5 cleaned, got %d", stats.Cleaned)
	}
	if stats.Rejected != 1 {
		t.Errorf("expected 1 rejected, got %d", stats.Rejected)
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("expected 1 duplicate removed, got %d", stats.DuplicatesRemoved)
	}
	if stats.Conversions != 1 {
		t.Errorf("expected 1 conversion, got %d", stats.Conversions)
	}
	// TXN001 fires LARGE_CASH_TRANSACTION, TXN005 fires HIGH_RISK_COUNTRY.
	if stats.Flagged != 2 {
		t.Errorf("expected 2 flagged, got %d", stats.Flagged)
	}
	if stats.Loaded != 4 {
		t.Errorf("expected 4 loaded, got %d", stats.Loaded)
	}

	if len(stats.RejectionReasons) != 1 || !strings.Contains(stats.RejectionReasons[0], "Missing customer ID") {
		t.Errorf("unexpected rejection reasons: %v", stats.RejectionReasons)
	}
}

func TestRunWritesReportFile(t *testing.T) {
	cfg, input := runFixture(t)

	if _, err := New(cfg, log.New(io.Discard)).Run(input); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(cfg.ReportDir, "etl_report_*.txt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one report file, got %v (err=%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(data), "DATA QUALITY REPORT") {
		t.Errorf("unexpected report content:\n%s", data)
	}
}

func TestRunMissingInputIsFatal(t *testing.T) {
	cfg, _ := runFixture(t)

	_, err := New(cfg, log.New(io.Discard)).Run(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected an error for unreadable input")
	}
	if !strings.Contains(err.Error(), "extract stage failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/txnetl/pkg/models"
)

// Accepted transaction date layouts: ISO, US and day-first.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "02-01-2006"}

// Reader extracts raw transactions from CSV files. Malformed rows are
// logged, counted and skipped; they never abort the batch.
type Reader struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadFile reads a transaction CSV from disk. It returns the parsed
// transactions and the number of malformed rows that were skipped.
func (r *Reader) ReadFile(path string) ([]*models.Transaction, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read input file: %w", err)
	}
	return r.ReadBytes(data, path)
}

// ReadBytes parses raw CSV content. The first row is treated as a header
// and skipped; blank lines are ignored.
func (r *Reader) ReadBytes(data []byte, name string) ([]*models.Transaction, int, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1 // column count validated per row
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("csv file is empty: %s", name)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	r.logger.Debug("reading csv", "file", name, "header", header)

	var (
		transactions []*models.Transaction
		skipped      int
		line         = 1
	)
	for {
		line++
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Warn("skipping malformed row", "line", line, "error", err)
			skipped++
			continue
		}
		if isBlankRow(fields) {
			continue
		}

		t, err := parseRow(fields)
		if err != nil {
			r.logger.Warn("skipping malformed row", "line", line, "error", err)
			skipped++
			continue
		}
		transactions = append(transactions, t)
	}

	r.logger.Info("extraction complete", "records", len(transactions), "skipped", skipped)
	return transactions, skipped, nil
}

// parseRow maps one CSV row onto a Transaction. Expected columns:
// transaction_id, customer_id, full_name, phone, email, amount, currency,
// transaction_date, transaction_type, country.
func parseRow(fields []string) (*models.Transaction, error) {
	if len(fields) < 10 {
		return nil, fmt.Errorf("insufficient fields: expected 10, got %d", len(fields))
	}

	amount, err := parseAmount(fields[5])
	if err != nil {
		return nil, err
	}
	date, err := parseDate(fields[7])
	if err != nil {
		return nil, err
	}

	return &models.Transaction{
		TransactionID: strings.TrimSpace(fields[0]),
		CustomerID:    strings.TrimSpace(fields[1]),
		FullName:      strings.TrimSpace(fields[2]),
		Phone:         strings.TrimSpace(fields[3]),
		Email:         strings.TrimSpace(fields[4]),
		Amount:        amount,
		Currency:      strings.ToUpper(strings.TrimSpace(fields[6])),
		Date:          date,
		Type:          strings.TrimSpace(fields[8]),
		Country:       strings.TrimSpace(fields[9]),
	}, nil
}

// parseAmount tolerates currency symbols and thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", s)
	}
	return amount, nil
}

// parseDate tries each accepted layout in turn. An empty field yields the
// zero time so the cleaning stage can reject the record as dateless; a
// non-empty field that matches no layout makes the whole row malformed.
func parseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

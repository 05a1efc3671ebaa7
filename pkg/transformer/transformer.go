package transformer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ledgerline/txnetl/pkg/models"
)

// Transformer is the business-rule transformation stage: it deduplicates on
// transaction ID, converts amounts into the reference currency and applies
// the flagging rules. Like the cleaner, it holds no state between calls.
type Transformer struct {
	converter *Converter
	rules     *RuleSet
	logger    *log.Logger
}

func New(converter *Converter, rules *RuleSet, logger *log.Logger) *Transformer {
	return &Transformer{converter: converter, rules: rules, logger: logger}
}

// Result holds the outcome of a single Transform call.
type Result struct {
	Transactions      []*models.Transaction
	Flagged           int
	DuplicatesRemoved int
	Conversions       int
	Warnings          []string
}

// Transform processes the batch in input order. Duplicates keep their first
// occurrence; later ones are dropped and counted, never merged. Conversion
// runs before flagging so the rule thresholds see reference-currency
// amounts.
func (tr *Transformer) Transform(cleaned []*models.Transaction) Result {
	res := Result{Transactions: make([]*models.Transaction, 0, len(cleaned))}
	seen := make(map[string]struct{}, len(cleaned))

	for _, t := range cleaned {
		if _, dup := seen[t.TransactionID]; dup {
			res.DuplicatesRemoved++
			res.Warnings = append(res.Warnings, "Duplicate transaction ID found and removed: "+t.TransactionID)
			tr.logger.Warn("duplicate transaction removed", "id", t.TransactionID)
			continue
		}
		seen[t.TransactionID] = struct{}{}

		tr.convert(t, &res)
		tr.flag(t, &res)

		res.Transactions = append(res.Transactions, t)
	}

	tr.logger.Info("transformation complete",
		"transformed", len(res.Transactions),
		"flagged", res.Flagged,
		"duplicates_removed", res.DuplicatesRemoved,
		"conversions", res.Conversions)
	return res
}

func (tr *Transformer) convert(t *models.Transaction, res *Result) {
	if t.Currency == tr.converter.Reference() {
		return
	}

	converted, rate, known := tr.converter.ToReference(t.Amount, t.Currency)
	if !known {
		warning := fmt.Sprintf("Unknown currency %s for txn %s, assuming 1:1 rate", t.Currency, t.TransactionID)
		res.Warnings = append(res.Warnings, warning)
		tr.logger.Warn("unknown currency", "currency", t.Currency, "id", t.TransactionID)
	}

	t.AddNote(models.NoteCurrencyConverted,
		fmt.Sprintf("Converted from %s (rate=%s)", t.Currency, rate.StringFixed(4)))
	t.Amount = converted
	t.Currency = tr.converter.Reference()
	res.Conversions++
}

func (tr *Transformer) flag(t *models.Transaction, res *Result) {
	flags := tr.rules.Evaluate(t)
	if len(flags) == 0 {
		return
	}
	t.Flagged = true
	t.AddNote(models.NoteFlagsRaised, "FLAGS: "+strings.Join(flags, ", "))
	res.Flagged++
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PhoneUnknown is the sentinel stored when a phone number cannot be
// normalized into the domestic 10-digit format.
const PhoneUnknown = "UNKNOWN"

// NoteKind identifies the kind of cleansing event recorded on a transaction.
type NoteKind string

const (
	NoteNameNormalized    NoteKind = "name_normalized"
	NotePhoneNormalized   NoteKind = "phone_normalized"
	NotePhoneUnparseable  NoteKind = "phone_unparseable"
	NoteCurrencyConverted NoteKind = "currency_converted"
	NoteFlagsRaised       NoteKind = "flags_raised"
)

// Note is a single event in a transaction's cleansing audit trail.
type Note struct {
	Kind   NoteKind
	Detail string
}

// Transaction represents a customer transaction as it moves through the
// pipeline. The reader constructs it, the cleaner and transformer mutate it
// in place, and the loader persists it.
type Transaction struct {
	TransactionID string
	CustomerID    string
	FullName      string
	Phone         string
	Email         string
	Amount        decimal.Decimal
	Currency      string
	Date          time.Time // calendar date only; zero value means absent
	Type          string
	Country       string
	Flagged       bool
	Notes         []Note
}

// AddNote appends a cleansing event to the audit trail. Notes accumulate
// across stages and are never overwritten.
func (t *Transaction) AddNote(kind NoteKind, detail string) {
	t.Notes = append(t.Notes, Note{Kind: kind, Detail: detail})
}

// NotesText renders the audit trail as a single human-readable string, in
// the order events were recorded. Used at the loader and reporter boundary.
func (t *Transaction) NotesText() string {
	if len(t.Notes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.Notes))
	for _, n := range t.Notes {
		parts = append(parts, n.Detail)
	}
	return strings.Join(parts, "; ")
}

// DateString returns the transaction date as an ISO-8601 date, or an empty
// string when the date is absent.
func (t *Transaction) DateString() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Format("2006-01-02")
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{id=%q, customer=%q, amount=%s %s, date=%s, flagged=%t}",
		t.TransactionID, t.CustomerID, t.Amount.StringFixed(2), t.Currency, t.DateString(), t.Flagged)
}

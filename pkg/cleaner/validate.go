package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledgerline/txnetl/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// rejectionReason applies the hard-rejection predicates in fixed order and
// returns the first matching reason. Records failing any predicate cannot
// be salvaged.
func rejectionReason(t *models.Transaction) (string, bool) {
	switch {
	case isBlank(t.TransactionID):
		return "Missing transaction ID: " + t.String(), true
	case isBlank(t.CustomerID):
		return "Missing customer ID: " + t.TransactionID, true
	case !t.Amount.IsPositive():
		return "Non-positive amount for txn: " + t.TransactionID, true
	case t.Date.IsZero():
		return "Null date for txn: " + t.TransactionID, true
	case !isValidEmail(t.Email):
		return fmt.Sprintf("Invalid email '%s' for txn: %s", t.Email, t.TransactionID), true
	}
	return "", false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isValidEmail(email string) bool {
	if isBlank(email) {
		return false
	}
	return emailPattern.MatchString(strings.TrimSpace(email))
}

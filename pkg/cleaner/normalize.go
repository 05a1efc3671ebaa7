package cleaner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledgerline/txnetl/pkg/models"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// normalize applies the deterministic field fixes to a record that passed
// validation. No rejection is possible at this point; every change is
// recorded on the record's audit trail. Normalizing an already-normalized
// record changes nothing and appends no note.
func normalize(t *models.Transaction) {
	if titled := titleCase(t.FullName); titled != t.FullName {
		t.FullName = titled
		t.AddNote(models.NoteNameNormalized, "Name normalized")
	}

	normalizePhone(t)

	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.Type = strings.ToUpper(strings.TrimSpace(t.Type))
	t.Country = strings.ToUpper(strings.TrimSpace(t.Country))
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
}

// normalizePhone reduces the phone to its digits and formats it as a
// 10-digit domestic number, dropping a leading country code 1. Anything
// else degrades to the UNKNOWN sentinel.
func normalizePhone(t *models.Transaction) {
	digits := nonDigits.ReplaceAllString(t.Phone, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}

	if len(digits) == 10 {
		formatted := fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
		if formatted != t.Phone {
			t.Phone = formatted
			t.AddNote(models.NotePhoneNormalized, "Phone normalized")
		}
		return
	}

	if t.Phone != models.PhoneUnknown {
		t.Phone = models.PhoneUnknown
		t.AddNote(models.NotePhoneUnparseable, "Phone unparseable, set to UNKNOWN")
	}
}

// titleCase lower-cases the string and upper-cases the first letter of
// every whitespace-delimited token, collapsing surrounding whitespace.
func titleCase(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

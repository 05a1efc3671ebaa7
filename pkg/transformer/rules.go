package transformer

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/txnetl/pkg/models"
)

// Flag names raised by the rule set.
const (
	FlagLargeCash       = "LARGE_CASH_TRANSACTION"
	FlagHighRiskCountry = "HIGH_RISK_COUNTRY"
	FlagStructuring     = "POTENTIAL_STRUCTURING"
	FlagLargeWire       = "LARGE_WIRE_TRANSFER"
)

// Amounts are in the reference currency; records must be converted before
// the rules run.
var (
	largeCashThreshold = decimal.NewFromInt(10_000)
	structuringFloor   = decimal.NewFromInt(9_000)
	largeWireThreshold = decimal.NewFromInt(50_000)
)

// Rule is a single compliance heuristic over a transformed transaction.
type Rule struct {
	Name  string
	Match func(*models.Transaction) bool
}

// RuleSet evaluates an ordered list of independent flagging rules. Rules
// are not exclusive; a record may accumulate several flags.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds the AML rule set. The high-risk jurisdiction list is
// injected so deployments and tests can swap it.
//
// The structuring rule's ceiling deliberately meets the large-cash floor:
// a CASH transaction of exactly 10,000 fires only LARGE_CASH_TRANSACTION,
// one of 9,999.99 fires only POTENTIAL_STRUCTURING.
func NewRuleSet(highRisk []string) *RuleSet {
	risk := make(map[string]struct{}, len(highRisk))
	for _, country := range highRisk {
		risk[country] = struct{}{}
	}

	return &RuleSet{rules: []Rule{
		{Name: FlagLargeCash, Match: func(t *models.Transaction) bool {
			return t.Type == "CASH" && t.Amount.GreaterThanOrEqual(largeCashThreshold)
		}},
		{Name: FlagHighRiskCountry, Match: func(t *models.Transaction) bool {
			_, ok := risk[t.Country]
			return ok
		}},
		{Name: FlagStructuring, Match: func(t *models.Transaction) bool {
			return t.Amount.GreaterThanOrEqual(structuringFloor) && t.Amount.LessThan(largeCashThreshold)
		}},
		{Name: FlagLargeWire, Match: func(t *models.Transaction) bool {
			return t.Amount.GreaterThan(largeWireThreshold)
		}},
	}}
}

// Evaluate returns the names of every rule the transaction matches, in rule
// order. It is a pure function over the record.
func (rs *RuleSet) Evaluate(t *models.Transaction) []string {
	var flags []string
	for _, rule := range rs.rules {
		if rule.Match(t) {
			flags = append(flags, rule.Name)
		}
	}
	return flags
}

package cleaner

import (
	"github.com/charmbracelet/log"

	"github.com/ledgerline/txnetl/pkg/models"
)

// Cleaner is the cleaning stage: it hard-rejects records that cannot be
// salvaged and normalizes the fields of the rest. The stage holds no state
// between calls; every Clean call returns a fresh Result.
type Cleaner struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Result holds the outcome of a single Clean call.
type Result struct {
	Accepted []*models.Transaction
	Rejected int
	Reasons  []string
}

// Clean partitions the batch into accepted and rejected records, in input
// order. Rejected records carry exactly one reason, the first predicate
// that matched. One bad record never aborts the batch.
func (c *Cleaner) Clean(raw []*models.Transaction) Result {
	res := Result{Accepted: make([]*models.Transaction, 0, len(raw))}

	for _, t := range raw {
		if reason, rejected := rejectionReason(t); rejected {
			res.Rejected++
			res.Reasons = append(res.Reasons, reason)
			c.logger.Debug("record rejected", "reason", reason)
			continue
		}
		normalize(t)
		res.Accepted = append(res.Accepted, t)
	}

	c.logger.Info("cleaning complete", "cleaned", len(res.Accepted), "rejected", res.Rejected)
	return res
}

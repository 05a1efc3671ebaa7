package models

// RunStats accumulates counters and data-quality findings for a single
// pipeline run. It is owned by the orchestrating pipeline; the stages report
// their numbers through result structs and the pipeline folds them in here,
// so no stage carries state between calls.
type RunStats struct {
	Read              int
	Cleaned           int
	Rejected          int
	Flagged           int
	Loaded            int
	DuplicatesRemoved int
	Conversions       int

	RejectionReasons []string
	Warnings         []string
}

// AddRejection records one rejection reason, preserving input order.
func (s *RunStats) AddRejection(reason string) {
	s.RejectionReasons = append(s.RejectionReasons, reason)
}

// AddWarning records a recoverable data-quality anomaly.
func (s *RunStats) AddWarning(warning string) {
	s.Warnings = append(s.Warnings, warning)
}

// PassRate is the percentage of read records that made it into the store.
func (s *RunStats) PassRate() float64 {
	if s.Read == 0 {
		return 0
	}
	return float64(s.Loaded) * 100.0 / float64(s.Read)
}

package processor

// Summary tallies the outcomes of one invocation
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Outcome
}

func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
		s.Failures = append(s.Failures, o)
	}
}

func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

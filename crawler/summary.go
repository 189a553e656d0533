package crawler

import "time"

// Summary is the outcome of one run.
type Summary struct {
	Targets    int
	Seen       int
	Accepted   int
	Duplicates int
	Counts     map[Class]int
	Warnings   []string
	// Interrupted is set when the run ended on cancellation or on the
	// listing cap rather than by exhausting every target.
	Interrupted bool
	Started     time.Time
	Finished    time.Time
}

func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// Failures returns the total of all failure counts.
func (s *Summary) Failures() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

package crawler

import (
	"sync"

	"car-scraper/models"
	"car-scraper/utils"
)

// State is shared by every target worker of a run: the seen-set of listing
// URLs and the run counters.
type State struct {
	seen *utils.URLSet

	mu         sync.Mutex
	accepted   int
	duplicates int
	counts     map[Class]int
	warnings   []string
}

func NewState() *State {
	return &State{
		seen:   utils.NewURLSet(),
		counts: make(map[Class]int),
	}
}

// MarkSeen returns true the first time u is offered during the run.
func (s *State) MarkSeen(u models.ListingURL) bool {
	if s.seen.Add(u.String()) {
		return true
	}
	s.mu.Lock()
	s.duplicates++
	s.mu.Unlock()
	return false
}

// Reserve claims an output slot for one record. With a positive limit it
// refuses once limit records were accepted. It returns the accepted count
// including this record.
func (s *State) Reserve(limit int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > 0 && s.accepted >= limit {
		return s.accepted, false
	}
	s.accepted++
	return s.accepted, true
}

func (s *State) Count(c Class) {
	s.mu.Lock()
	s.counts[c]++
	s.mu.Unlock()
}

func (s *State) Warn(msg string) {
	s.mu.Lock()
	s.warnings = append(s.warnings, msg)
	s.mu.Unlock()
}

// fill copies the counters into sum.
func (s *State) fill(sum *Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum.Accepted = s.accepted
	sum.Duplicates = s.duplicates
	sum.Seen = s.seen.Size()
	sum.Counts = make(map[Class]int, len(s.counts))
	for c, n := range s.counts {
		sum.Counts[c] = n
	}
	sum.Warnings = append([]string(nil), s.warnings...)
}

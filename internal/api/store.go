package api

import (
	"slices"
	"sync"

	"github.com/samcharles93/mlpbench/internal/bench"
)

// DefaultStoreLimit bounds the number of reports kept in memory.
const DefaultStoreLimit = 256

// ReportStore keeps the most recent benchmark reports by id.
type ReportStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	reports map[string]*bench.Report
}

func NewReportStore(limit int) *ReportStore {
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &ReportStore{
		limit:   limit,
		reports: make(map[string]*bench.Report),
	}
}

// Put stores r, evicting the oldest report once the limit is reached.
func (s *ReportStore) Put(r *bench.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r
	for len(s.order) > s.limit {
		delete(s.reports, s.order[0])
		s.order = slices.Delete(s.order, 0, 1)
	}
}

func (s *ReportStore) Get(id string) (*bench.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

// List returns reports newest first.
func (s *ReportStore) List() []*bench.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*bench.Report, 0, len(s.order))
	for _, id := range slices.Backward(s.order) {
		out = append(out, s.reports[id])
	}
	return out
}

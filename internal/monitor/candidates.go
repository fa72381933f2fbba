package monitor

import "github.com/sells-group/geofencer/internal/model"

// CandidateSet is the ordered, unbounded collection of regions the caller
// wants watched. Insertion order is preserved and duplicates are permitted;
// removal deletes the first structural match only. The zero value is ready
// to use.
type CandidateSet struct {
	regions []model.Region
}

// Add appends a region.
func (s *CandidateSet) Add(r model.Region) {
	s.regions = append(s.regions, r)
}

// Remove deletes the first region structurally equal to r and reports
// whether anything was removed. Removing an absent region is a tolerated
// no-op.
func (s *CandidateSet) Remove(r model.Region) bool {
	for i, existing := range s.regions {
		if existing.Equal(r) {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the set.
func (s *CandidateSet) Clear() {
	s.regions = nil
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int {
	return len(s.regions)
}

// Regions returns a copy of the candidates in insertion order.
func (s *CandidateSet) Regions() []model.Region {
	out := make([]model.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// ContainsID reports whether any candidate carries the given id.
func (s *CandidateSet) ContainsID(id string) bool {
	for _, r := range s.regions {
		if r.ID == id {
			return true
		}
	}
	return false
}

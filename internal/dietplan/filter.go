package dietplan

import "strings"

// Criteria is the filter bar shared by every list screen. Empty fields are
// inactive; active fields are ANDed.
type Criteria struct {
	FromDate    string
	ToDate      string
	Status      string
	Category    string
	PatientType string
	Search      string
}

// Fields is what a row exposes to the filter.
type Fields struct {
	Date        string
	Status      string
	Category    string
	PatientType string
	// Values feeds the free-text search.
	Values []string
}

// Active reports whether any predicate is set.
func (c Criteria) Active() bool {
	return c != Criteria{}
}

// Match evaluates every active predicate against f. The date range is
// inclusive at both ends and either end may be open.
func (c Criteria) Match(f Fields) bool {
	if c.FromDate != "" || c.ToDate != "" {
		d := NormalizeDate(f.Date)
		if d == "" {
			return false
		}
		if c.FromDate != "" && CompareDates(d, c.FromDate) < 0 {
			return false
		}
		if c.ToDate != "" && CompareDates(d, c.ToDate) > 0 {
			return false
		}
	}
	if c.Status != "" && f.Status != c.Status {
		return false
	}
	if c.Category != "" && !strings.EqualFold(f.Category, c.Category) {
		return false
	}
	if c.PatientType != "" && !strings.EqualFold(f.PatientType, c.PatientType) {
		return false
	}
	if q := strings.TrimSpace(c.Search); q != "" {
		q = strings.ToLower(q)
		hit := false
		for _, v := range f.Values {
			if strings.Contains(strings.ToLower(v), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Apply returns the items matching c, in their original order.
func Apply[T any](items []T, c Criteria, fields func(T) Fields) []T {
	if !c.Active() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Match(fields(it)) {
			out = append(out, it)
		}
	}
	return out
}

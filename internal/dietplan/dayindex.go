package dietplan

import (
	"slices"
	"sort"
	"strconv"
)

// DayIndex maps each distinct non-empty date of one patient's intake context
// to its 1-based chronological rank ("Day 1", "Day 2", ...). The zero value
// is an empty index. DayIndex is immutable; Assign returns a new value.
type DayIndex struct {
	dates []string // sorted ascending, distinct, normalized
}

// NewDayIndex builds an index over the given dates. Empty dates and
// duplicates are ignored.
func NewDayIndex(dates ...string) DayIndex {
	set := make([]string, 0, len(dates))
	for _, d := range dates {
		d = NormalizeDate(d)
		if d == "" {
			continue
		}
		set = append(set, d)
	}
	slices.Sort(set)
	return DayIndex{dates: slices.Compact(set)}
}

// Assign unions date into the index and returns its rank together with the
// updated index. An empty date allocates nothing and yields day 0.
func (x DayIndex) Assign(date string) (int, DayIndex) {
	date = NormalizeDate(date)
	if date == "" {
		return 0, x
	}
	pos, found := slices.BinarySearch(x.dates, date)
	if found {
		return pos + 1, x
	}
	next := make([]string, 0, len(x.dates)+1)
	next = append(next, x.dates[:pos]...)
	next = append(next, date)
	next = append(next, x.dates[pos:]...)
	return pos + 1, DayIndex{dates: next}
}

// Day returns the rank of date, or 0 when the date is empty or not indexed.
func (x DayIndex) Day(date string) int {
	date = NormalizeDate(date)
	if date == "" {
		return 0
	}
	pos, found := slices.BinarySearch(x.dates, date)
	if !found {
		return 0
	}
	return pos + 1
}

// Label is Day rendered the way it is stored on entries: "" for no rank.
func (x DayIndex) Label(date string) string {
	d := x.Day(date)
	if d == 0 {
		return ""
	}
	return strconv.Itoa(d)
}

// Len reports the number of distinct dates.
func (x DayIndex) Len() int { return len(x.dates) }

// Dates returns the indexed dates in chronological order.
func (x DayIndex) Dates() []string { return slices.Clone(x.dates) }

// SortKey extracts what display ordering needs from a ledger row.
type SortKey struct {
	Date      string
	CreatedAt string
}

// SortForDisplay orders rows by date ascending; rows sharing a date are
// ordered by CreatedAt when both carry one, otherwise they keep their
// insertion order.
func SortForDisplay[T any](rows []T, key func(T) SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		if c := CompareDates(a.Date, b.Date); c != 0 {
			return c < 0
		}
		if a.CreatedAt != "" && b.CreatedAt != "" {
			return a.CreatedAt < b.CreatedAt
		}
		return false
	})
}

// FirstOfDay reports whether row i opens a new date group in an already
// display-sorted slice. The day label is only rendered on that row.
func FirstOfDay[T any](rows []T, i int, date func(T) string) bool {
	if i == 0 {
		return true
	}
	return NormalizeDate(date(rows[i-1])) != NormalizeDate(date(rows[i]))
}

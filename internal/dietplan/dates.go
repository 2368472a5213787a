// Package dietplan holds the pure rules of the diet workflow: date
// normalisation, chronological day numbering, status transitions, totals and
// list filtering. Nothing in here touches the database.
package dietplan

import (
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	createdAtLayout = "2006-01-02 15:04:05"
)

// NormalizeDate reduces ISO timestamps ("2024-06-01T08:30:00Z") and
// "2024-06-01 08:30" style values to their calendar date. Anything else is
// returned trimmed but otherwise untouched so it still sorts as a literal.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return s
	}
	prefix := s[:len(dateLayout)]
	if !looksLikeDate(prefix) {
		return s
	}
	if len(s) == len(dateLayout) {
		return s
	}
	switch s[len(dateLayout)] {
	case 'T', ' ':
		return prefix
	}
	return s
}

// CompareDates compares two dates by their normalized string value.
// No timezone conversion is applied.
func CompareDates(a, b string) int {
	return strings.Compare(NormalizeDate(a), NormalizeDate(b))
}

// Tomorrow returns the calendar day after now, in now's location.
func Tomorrow(now time.Time) string {
	return now.AddDate(0, 0, 1).Format(dateLayout)
}

// FormatCreatedAt renders the local wall-clock timestamp stored on entries.
func FormatCreatedAt(now time.Time) string {
	return now.Format(createdAtLayout)
}

func looksLikeDate(s string) bool {
	if len(s) != len(dateLayout) || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Package listing holds the filter and sort primitives shared by the
// interview and aptitude-test list views.
package listing

import (
	"sort"
	"strings"
	"time"
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ParseSortOrder falls back to newest for anything it does not recognise.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	default:
		return SortNewest
	}
}

type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusPending:
		return StatusPending, true
	default:
		return StatusAll, false
	}
}

func (s Status) Matches(completed bool) bool {
	switch s {
	case StatusCompleted:
		return completed
	case StatusPending:
		return !completed
	default:
		return true
	}
}

// NormalizeSearch lower-cases s and collapses runs of whitespace.
func NormalizeSearch(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContainsAny reports whether the normalized needle occurs in any haystack.
// An empty needle matches everything.
func ContainsAny(needle string, haystacks ...string) bool {
	if needle == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(NormalizeSearch(h), needle) {
			return true
		}
	}
	return false
}

// SortByCreated orders items in place by creation time. Equal timestamps are
// ordered by id so the result is a total order.
func SortByCreated[T any](items []T, order SortOrder, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := createdAt(items[i]), createdAt(items[j])
		if !ti.Equal(tj) {
			if order == SortOldest {
				return ti.Before(tj)
			}
			return ti.After(tj)
		}
		if order == SortOldest {
			return id(items[i]) < id(items[j])
		}
		return id(items[i]) > id(items[j])
	})
}

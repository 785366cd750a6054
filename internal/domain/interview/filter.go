package interview

import (
	"time"

	"mockraft/internal/domain/listing"
)

type Filter struct {
	Search          string
	ExperienceLevel ExperienceLevel
	Language        string
	Status          listing.Status
	BookmarkedOnly  bool
	Sort            listing.SortOrder
}

// Matches reports whether m satisfies every active predicate of f.
func (f Filter) Matches(m MockInterview) bool {
	if f.BookmarkedOnly && !m.IsBookmarked {
		return false
	}
	if !f.Status.Matches(m.IsCompleted) {
		return false
	}
	if f.ExperienceLevel != "" && m.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.Language != "" && listing.NormalizeSearch(m.Language) != listing.NormalizeSearch(f.Language) {
		return false
	}

	needle := listing.NormalizeSearch(f.Search)
	if needle == "" {
		return true
	}
	fields := append([]string{m.JobRole, m.JobDescription}, m.TechStack...)
	return listing.ContainsAny(needle, fields...)
}

// Apply returns the interviews matching f, sorted by f.Sort. The input slice
// is not modified.
func Apply(items []MockInterview, f Filter) []MockInterview {
	out := make([]MockInterview, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	listing.SortByCreated(out, f.Sort,
		func(m MockInterview) time.Time { return m.CreatedAt },
		func(m MockInterview) string { return m.ID.String() },
	)
	return out
}

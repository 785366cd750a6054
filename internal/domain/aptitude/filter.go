package aptitude

import (
	"strings"
	"time"

	"mockraft/internal/domain/listing"
)

type Filter struct {
	Search         string
	Category       string
	Status         listing.Status
	BookmarkedOnly bool
	Sort           listing.SortOrder
}

func (f Filter) Matches(t Test) bool {
	if f.BookmarkedOnly && !t.Bookmarked {
		return false
	}
	if !f.Status.Matches(t.IsCompleted) {
		return false
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		found := false
		for _, s := range t.Sections {
			if strings.EqualFold(s.Category, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	needle := listing.NormalizeSearch(f.Search)
	return listing.ContainsAny(needle, append([]string{t.Title}, t.Categories()...)...)
}

// Apply returns the matching tests in the requested order. items is not modified.
func Apply(items []Test, f Filter) []Test {
	out := make([]Test, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	listing.SortByCreated(out, f.Sort,
		func(t Test) time.Time { return t.CreatedAt },
		func(t Test) string { return t.ID.String() },
	)
	return out
}

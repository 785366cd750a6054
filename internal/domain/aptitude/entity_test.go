package aptitude

import (
	"math/rand/v2"
	"testing"
	"time"

	"mockraft/internal/domain/listing"

	"github.com/google/uuid"
)

func bank(n int) []BankQuestion {
	out := make([]BankQuestion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, BankQuestion{ID: uuid.NewString(), Category: "Quantitative", Subtopic: "Averages", Options: []string{"a", "b"}})
	}
	return out
}

func TestDrawReturnsDistinctQuestions(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	pool := bank(12)
	for round := 0; round < 20; round++ {
		got, err := Draw(pool, 8, r)
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		if len(got) != 8 {
			t.Fatalf("expected 8, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, q := range got {
			if seen[q.ID] {
				t.Fatalf("duplicate question %s", q.ID)
			}
			seen[q.ID] = true
		}
	}
	if pool[0].ID == "" {
		t.Fatalf("pool modified")
	}
}

func TestDrawInsufficientBank(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	if _, err := Draw(bank(2), 3, r); err != ErrInsufficientBank {
		t.Fatalf("expected ErrInsufficientBank, got %v", err)
	}
	got, err := Draw(bank(2), 0, r)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty draw, got %v %v", got, err)
	}
}

func TestBuildCatalogGroupsAndSorts(t *testing.T) {
	got := BuildCatalog([]TopicCount{
		{Category: "Verbal", Subtopic: "Synonyms", Count: 3},
		{Category: "Logical", Subtopic: "Series", Count: 4},
		{Category: "Verbal", Subtopic: "Antonyms", Count: 2},
	})
	if len(got) != 2 || got[0].Category != "Logical" || got[1].Category != "Verbal" {
		t.Fatalf("unexpected catalog: %+v", got)
	}
	if got[1].Total != 5 || got[1].Subtopics[0].Subtopic != "Antonyms" {
		t.Fatalf("unexpected verbal summary: %+v", got[1])
	}
}

func TestScoreAndTitle(t *testing.T) {
	attempts := []Attempt{{IsCorrect: true}, {IsCorrect: false}, {IsCorrect: true}}
	if got := Score(attempts); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	title := DefaultTitle([]Section{{Category: "Quantitative"}, {Category: "Verbal"}})
	if title != "Quantitative + Verbal Test" {
		t.Fatalf("unexpected title %q", title)
	}
	if DefaultTitle(nil) != "Aptitude Test" {
		t.Fatalf("unexpected empty title")
	}
}

func TestApplyFiltersByCategoryAndStatus(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []Test{
		{ID: uuid.New(), Title: "Quant drill", Sections: []Section{{Category: "Quantitative"}}, CreatedAt: base},
		{ID: uuid.New(), Title: "Mixed", Sections: []Section{{Category: "Verbal"}, {Category: "Logical"}}, IsCompleted: true, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Title: "Words", Sections: []Section{{Category: "Verbal"}}, Bookmarked: true, CreatedAt: base.Add(2 * time.Hour)},
	}

	got := Apply(tests, Filter{Category: "verbal"})
	if len(got) != 2 || got[0].Title != "Words" {
		t.Fatalf("unexpected verbal result: %+v", got)
	}

	got = Apply(tests, Filter{Category: "verbal", Status: listing.StatusPending, Sort: listing.SortOldest})
	if len(got) != 1 || got[0].Title != "Words" {
		t.Fatalf("unexpected pending result: %+v", got)
	}

	got = Apply(tests, Filter{Search: "LOGICAL"})
	if len(got) != 1 || got[0].Title != "Mixed" {
		t.Fatalf("search should match section categories: %+v", got)
	}

	got = Apply(tests, Filter{BookmarkedOnly: true})
	if len(got) != 1 || !got[0].Bookmarked {
		t.Fatalf("unexpected bookmarked result: %+v", got)
	}
}

package seeder

import (
	"strings"
	"testing"
)

func TestEmbeddedAptitudeBankIsValid(t *testing.T) {
	items, err := ParseAptitudeBank(aptitudeBankJSON)
	if err != nil {
		t.Fatalf("embedded bank invalid: %v", err)
	}
	cats := map[string]int{}
	for _, q := range items {
		cats[q.Category]++
	}
	for _, c := range []string{"Quantitative", "Logical", "Verbal"} {
		if cats[c] == 0 {
			t.Fatalf("expected questions for category %s", c)
		}
	}
}

func TestParseAptitudeBankRejectsBadItems(t *testing.T) {
	cases := map[string]string{
		"empty":       `[]`,
		"duplicate":   `[{"id":"a","category":"c","subtopic":"s","question":"q","options":["1","2"],"correct_index":0},{"id":"a","category":"c","subtopic":"s","question":"q","options":["1","2"],"correct_index":0}]`,
		"range":       `[{"id":"a","category":"c","subtopic":"s","question":"q","options":["1","2"],"correct_index":2}]`,
		"one option":  `[{"id":"a","category":"c","subtopic":"s","question":"q","options":["1"],"correct_index":0}]`,
		"no subtopic": `[{"id":"a","category":"c","question":"q","options":["1","2"],"correct_index":0}]`,
		"not json":    `{`,
	}
	for name, raw := range cases {
		if _, err := ParseAptitudeBank([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseAptitudeBankDefaultsDifficulty(t *testing.T) {
	items, err := ParseAptitudeBank([]byte(`[{"id":" a ","category":"c","subtopic":"s","question":"q","options":["1","2"],"correct_index":1}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if items[0].Difficulty != "medium" || strings.Contains(items[0].ID, " ") {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

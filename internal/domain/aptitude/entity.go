package aptitude

import (
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("aptitude test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrAlreadyCompleted = errors.New("test already completed")
	ErrInvalidOption    = errors.New("invalid option")
	ErrInsufficientBank = errors.New("not enough questions in bank")
)

const (
	MaxSectionQuestions = 50
	MaxSections         = 10
)

// BankQuestion is one pre-authored multiple-choice question.
type BankQuestion struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Subtopic     string   `json:"subtopic"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
}

type Section struct {
	Category  string   `json:"category"`
	Subtopics []string `json:"subtopics"`
	Count     int      `json:"count"`
}

// TestQuestion is the snapshot of a bank question stored on the test, so later
// bank edits do not change a test that was already taken.
type TestQuestion struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Subtopic     string   `json:"subtopic"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type Attempt struct {
	ID            uuid.UUID
	TestID        uuid.UUID
	UserID        uuid.UUID
	QuestionID    string
	SelectedIndex int
	IsCorrect     bool
	CreatedAt     time.Time
}

type Test struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Sections    []Section
	Questions   []TestQuestion
	Bookmarked  bool
	IsCompleted bool
	Score       int
	Total       int
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Attempts []Attempt
	// AnsweredCount is filled by list queries that skip loading attempts.
	AnsweredCount int
}

func (t Test) Answered() int {
	if len(t.Attempts) > 0 {
		return len(t.Attempts)
	}
	return t.AnsweredCount
}

func (t Test) Question(id string) (TestQuestion, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return TestQuestion{}, false
}

func (t Test) Categories() []string {
	out := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		out = append(out, s.Category)
	}
	return out
}

type SubtopicCount struct {
	Subtopic string
	Count    int
}

type CategorySummary struct {
	Category  string
	Total     int
	Subtopics []SubtopicCount
}

// TopicCount is one (category, subtopic) row of the bank.
type TopicCount struct {
	Category string
	Subtopic string
	Count    int
}

// BuildCatalog groups topic counts by category, both levels sorted by name.
func BuildCatalog(rows []TopicCount) []CategorySummary {
	idx := map[string]int{}
	out := make([]CategorySummary, 0)
	for _, r := range rows {
		i, ok := idx[r.Category]
		if !ok {
			i = len(out)
			idx[r.Category] = i
			out = append(out, CategorySummary{Category: r.Category})
		}
		out[i].Total += r.Count
		out[i].Subtopics = append(out[i].Subtopics, SubtopicCount{Subtopic: r.Subtopic, Count: r.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	for i := range out {
		subs := out[i].Subtopics
		sort.Slice(subs, func(a, b int) bool { return subs[a].Subtopic < subs[b].Subtopic })
	}
	return out
}

// Draw picks n distinct questions from pool uniformly at random.
func Draw(pool []BankQuestion, n int, r *rand.Rand) ([]BankQuestion, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(pool) < n {
		return nil, ErrInsufficientBank
	}
	cp := append([]BankQuestion(nil), pool...)
	r.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	return cp[:n], nil
}

func Snapshot(q BankQuestion) TestQuestion {
	return TestQuestion{
		ID:           q.ID,
		Category:     q.Category,
		Subtopic:     q.Subtopic,
		Question:     q.Question,
		Options:      append([]string(nil), q.Options...),
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
}

func DefaultTitle(sections []Section) string {
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Category)
	}
	if len(names) == 0 {
		return "Aptitude Test"
	}
	return strings.Join(names, " + ") + " Test"
}

func Score(attempts []Attempt) int {
	n := 0
	for _, a := range attempts {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

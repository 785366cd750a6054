package dto

import (
	"time"

	"mockraft/internal/domain/aptitude"

	"github.com/google/uuid"
)

type SubtopicResponse struct {
	Subtopic string `json:"subtopic"`
	Count    int    `json:"count"`
}

type CategoryResponse struct {
	Category  string             `json:"category"`
	Total     int                `json:"total"`
	Subtopics []SubtopicResponse `json:"subtopics"`
}

func NewCatalogResponse(cats []aptitude.CategorySummary) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		subs := make([]SubtopicResponse, 0, len(c.Subtopics))
		for _, s := range c.Subtopics {
			subs = append(subs, SubtopicResponse{Subtopic: s.Subtopic, Count: s.Count})
		}
		out = append(out, CategoryResponse{Category: c.Category, Total: c.Total, Subtopics: subs})
	}
	return out
}

type TestSummaryResponse struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Sections    []aptitude.Section `json:"sections"`
	Bookmarked  bool               `json:"bookmarked"`
	IsCompleted bool               `json:"is_completed"`
	Score       int                `json:"score"`
	Total       int                `json:"total"`
	Answered    int                `json:"answered"`
	CompletedAt *time.Time         `json:"completed_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewTestSummaryResponse(t aptitude.Test) TestSummaryResponse {
	sections := t.Sections
	if sections == nil {
		sections = []aptitude.Section{}
	}
	return TestSummaryResponse{
		ID:          t.ID,
		Title:       t.Title,
		Sections:    sections,
		Bookmarked:  t.Bookmarked,
		IsCompleted: t.IsCompleted,
		Score:       t.Score,
		Total:       t.Total,
		Answered:    t.Answered(),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTestSummaryList(items []aptitude.Test) []TestSummaryResponse {
	out := make([]TestSummaryResponse, 0, len(items))
	for _, t := range items {
		out = append(out, NewTestSummaryResponse(t))
	}
	return out
}

type TestQuestionResponse struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Subtopic      string   `json:"subtopic"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	SelectedIndex *int     `json:"selected_index"`
	IsCorrect     *bool    `json:"is_correct"`
	CorrectIndex  *int     `json:"correct_index,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type TestResponse struct {
	TestSummaryResponse
	Questions []TestQuestionResponse `json:"questions"`
}

type AptitudeAnswerResponse struct {
	QuestionID   string `json:"question_id"`
	IsCorrect    bool   `json:"is_correct"`
	CorrectIndex int    `json:"correct_index"`
	Explanation  string `json:"explanation"`
	PointsEarned int    `json:"points_earned"`
}

type TestCompletionResponse struct {
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	PointsEarned int       `json:"points_earned"`
	CompletedAt  time.Time `json:"completed_at"`
}

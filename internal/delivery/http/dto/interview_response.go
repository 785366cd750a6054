package dto

import (
	"time"

	"mockraft/internal/domain/interview"

	"github.com/google/uuid"
)

type InterviewSummaryResponse struct {
	ID              uuid.UUID  `json:"id"`
	JobRole         string     `json:"job_role"`
	JobDescription  string     `json:"job_description"`
	Language        string     `json:"language"`
	TechStack       []string   `json:"tech_stack"`
	ExperienceLevel string     `json:"experience_level"`
	Notifications   bool       `json:"notifications"`
	QuestionCount   int        `json:"question_count"`
	CurrentIndex    int        `json:"current_index"`
	IsCompleted     bool       `json:"is_completed"`
	IsBookmarked    bool       `json:"is_bookmarked"`
	OverallScore    *int       `json:"overall_score"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type QuestionResponse struct {
	Position        int                 `json:"position"`
	Question        string              `json:"question"`
	ReferenceAnswer *string             `json:"reference_answer,omitempty"`
	Answer          *string             `json:"answer"`
	AnsweredAt      *time.Time          `json:"answered_at"`
	State           string              `json:"state"`
	Analysis        *interview.Analysis `json:"analysis"`
}

type InterviewResponse struct {
	InterviewSummaryResponse
	Questions []QuestionResponse `json:"questions"`
}

func NewInterviewSummaryResponse(m interview.MockInterview) InterviewSummaryResponse {
	stack := m.TechStack
	if stack == nil {
		stack = []string{}
	}
	return InterviewSummaryResponse{
		ID:              m.ID,
		JobRole:         m.JobRole,
		JobDescription:  m.JobDescription,
		Language:        m.Language,
		TechStack:       stack,
		ExperienceLevel: string(m.ExperienceLevel),
		Notifications:   m.Notifications,
		QuestionCount:   m.TotalQuestions(),
		CurrentIndex:    m.CurrentIndex,
		IsCompleted:     m.IsCompleted,
		IsBookmarked:    m.IsBookmarked,
		OverallScore:    m.OverallScore,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewInterviewSummaryList(items []interview.MockInterview) []InterviewSummaryResponse {
	out := make([]InterviewSummaryResponse, 0, len(items))
	for _, m := range items {
		out = append(out, NewInterviewSummaryResponse(m))
	}
	return out
}

func NewInterviewResponse(m interview.MockInterview) InterviewResponse {
	res := InterviewResponse{
		InterviewSummaryResponse: NewInterviewSummaryResponse(m),
		Questions:                make([]QuestionResponse, 0, len(m.Questions)),
	}
	for _, q := range m.Questions {
		res.Questions = append(res.Questions, NewQuestionResponse(q, m.IsCompleted))
	}
	return res
}

// NewQuestionResponse hides the reference answer until the question has been
// analyzed or the interview is over.
func NewQuestionResponse(q interview.Question, completed bool) QuestionResponse {
	res := QuestionResponse{
		Position:   q.Position,
		Question:   q.Question,
		Answer:     q.Answer,
		AnsweredAt: q.AnsweredAt,
		State:      string(q.State()),
		Analysis:   q.Analysis,
	}
	if q.Analysis != nil || completed {
		ref := q.ReferenceAnswer
		res.ReferenceAnswer = &ref
	}
	return res
}

type SessionResponse struct {
	InterviewID  uuid.UUID         `json:"interview_id"`
	CurrentIndex int               `json:"current_index"`
	Total        int               `json:"total"`
	IsCompleted  bool              `json:"is_completed"`
	Current      *QuestionResponse `json:"current"`
	States       []string          `json:"states"`
}

type AnswerResponse struct {
	Position     int `json:"position"`
	CurrentIndex int `json:"current_index"`
}

type AnalysisOutcomeResponse struct {
	Position int                 `json:"position"`
	Analysis *interview.Analysis `json:"analysis"`
	Error    string              `json:"error,omitempty"`
}

type CompletionResponse struct {
	OverallScore int       `json:"overall_score"`
	PointsEarned int       `json:"points_earned"`
	CompletedAt  time.Time `json:"completed_at"`
}

type JobPostingResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

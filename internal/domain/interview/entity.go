package interview

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("interview not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAlreadyAnalyzed    = errors.New("answer already analyzed")
	ErrAlreadyCompleted   = errors.New("interview already completed")
	ErrNotAnswered        = errors.New("question not answered")
	ErrAnalysisIncomplete = errors.New("not every answer has been analyzed")
	ErrPlanLimitReached   = errors.New("free plan interview limit reached")
)

const (
	MinQuestions     = 1
	MaxQuestions     = 15
	DefaultQuestions = 5
	MaxRating        = 10
)

type ExperienceLevel string

const (
	LevelFresher ExperienceLevel = "fresher"
	LevelJunior  ExperienceLevel = "junior"
	LevelMid     ExperienceLevel = "mid"
	LevelSenior  ExperienceLevel = "senior"
)

func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelFresher:
		return LevelFresher, true
	case LevelJunior:
		return LevelJunior, true
	case LevelMid:
		return LevelMid, true
	case LevelSenior:
		return LevelSenior, true
	default:
		return "", false
	}
}

type Config struct {
	JobRole         string
	JobDescription  string
	Language        string
	TechStack       []string
	ExperienceLevel ExperienceLevel
	Notifications   bool
	QuestionCount   int
}

type Analysis struct {
	Rating       int       `json:"rating"`
	Feedback     string    `json:"feedback"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

type QuestionState string

const (
	StateUnanswered QuestionState = "unanswered"
	StateAnswered   QuestionState = "answered"
	StateAnalyzed   QuestionState = "analyzed"
)

type Question struct {
	Position        int
	Question        string
	ReferenceAnswer string
	Answer          *string
	AnsweredAt      *time.Time
	Analysis        *Analysis
}

func (q Question) State() QuestionState {
	switch {
	case q.Analysis != nil:
		return StateAnalyzed
	case q.Answer != nil && strings.TrimSpace(*q.Answer) != "":
		return StateAnswered
	default:
		return StateUnanswered
	}
}

type MockInterview struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Config

	Questions    []Question
	CurrentIndex int
	IsCompleted  bool
	IsBookmarked bool
	OverallScore *int
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m MockInterview) Question(position int) (Question, bool) {
	for _, q := range m.Questions {
		if q.Position == position {
			return q, true
		}
	}
	return Question{}, false
}

// TotalQuestions prefers the stored count, since list queries do not load
// the questions themselves.
func (m MockInterview) TotalQuestions() int {
	if m.QuestionCount > 0 {
		return m.QuestionCount
	}
	return len(m.Questions)
}

func (m MockInterview) AllAnalyzed() bool {
	if len(m.Questions) == 0 {
		return false
	}
	for _, q := range m.Questions {
		if q.Analysis == nil {
			return false
		}
	}
	return true
}

// NextIndex is the session cursor after answering position. It never moves
// backwards and never passes the end of the question list.
func NextIndex(current, position, total int) int {
	next := position + 1
	if next < current {
		next = current
	}
	if next > total {
		next = total
	}
	return next
}

// OverallScore is the mean rating of analyzed questions scaled to 0..100.
func OverallScore(questions []Question) int {
	sum, n := 0, 0
	for _, q := range questions {
		if q.Analysis == nil {
			continue
		}
		sum += ClampRating(q.Analysis.Rating)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) * 10 / float64(n)))
}

func ClampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

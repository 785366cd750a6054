package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"mockraft/internal/domain/interview"
	"mockraft/internal/domain/points"
	"mockraft/internal/domain/user"
	"mockraft/internal/infrastructure/ai"
	"mockraft/internal/infrastructure/notifier"
	"mockraft/internal/repository"
	"mockraft/internal/worker"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxAnswerLength = 10000
	analysisLockTTL = 90 * time.Second
)

type SessionView struct {
	InterviewID  uuid.UUID
	CurrentIndex int
	Total        int
	IsCompleted  bool
	Current      *interview.Question
	States       []interview.QuestionState
}

type AnswerResult struct {
	Position     int
	CurrentIndex int
}

type AnalysisOutcome struct {
	Position int
	Analysis *interview.Analysis
	Err      error
}

type CompletionResult struct {
	OverallScore int
	PointsEarned int
	CompletedAt  time.Time
}

type SessionUsecase interface {
	GetSession(ctx context.Context, userID, id uuid.UUID) (SessionView, error)
	SubmitAnswer(ctx context.Context, userID, id uuid.UUID, position int, answer string) (AnswerResult, error)
	AnalyzeAnswer(ctx context.Context, userID, id uuid.UUID, position int) (interview.Analysis, error)
	AnalyzeAll(ctx context.Context, userID, id uuid.UUID) ([]AnalysisOutcome, error)
	Complete(ctx context.Context, userID, id uuid.UUID) (CompletionResult, error)
}

type Sessions struct {
	repo     repository.InterviewRepository
	users    user.Repository
	ai       ai.Client
	cache    Cache
	notifier notifier.Notifier
	points   PointsListener
	workers  int
	appName  string
	logger   *logrus.Logger
	now      func() time.Time
}

type SessionDeps struct {
	Interviews repository.InterviewRepository
	Users      user.Repository
	AI         ai.Client
	Cache      Cache
	Notifier   notifier.Notifier
	Points     PointsListener
	Workers    int
	AppName    string
	Logger     *logrus.Logger
}

func NewSessionUsecase(d SessionDeps) *Sessions {
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Sessions{
		repo:     d.Interviews,
		users:    d.Users,
		ai:       d.AI,
		cache:    d.Cache,
		notifier: d.Notifier,
		points:   pointsListener(d.Points),
		workers:  workers,
		appName:  d.AppName,
		logger:   d.Logger,
		now:      time.Now,
	}
}

func (s *Sessions) GetSession(ctx context.Context, userID, id uuid.UUID) (SessionView, error) {
	m, err := s.load(ctx, userID, id)
	if err != nil {
		return SessionView{}, err
	}

	v := SessionView{
		InterviewID:  m.ID,
		CurrentIndex: m.CurrentIndex,
		Total:        len(m.Questions),
		IsCompleted:  m.IsCompleted,
		States:       make([]interview.QuestionState, 0, len(m.Questions)),
	}
	for _, q := range m.Questions {
		v.States = append(v.States, q.State())
	}
	if q, ok := m.Question(m.CurrentIndex); ok {
		v.Current = &q
	}
	return v, nil
}

func (s *Sessions) SubmitAnswer(ctx context.Context, userID, id uuid.UUID, position int, answer string) (AnswerResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return AnswerResult{}, invalidf("answer is required")
	}
	if len([]rune(answer)) > maxAnswerLength {
		return AnswerResult{}, invalidf("answer must be at most %d characters", maxAnswerLength)
	}
	if position < 0 {
		return AnswerResult{}, interview.ErrQuestionNotFound
	}

	next, err := s.repo.SaveAnswer(ctx, userID, id, position, answer, s.now().UTC())
	if err != nil {
		return AnswerResult{}, s.repoError("answer", id, err)
	}
	return AnswerResult{Position: position, CurrentIndex: next}, nil
}

// AnalyzeAnswer scores one stored answer. A per-question lock keeps rapid
// repeats from paying for a second AI call; the conditional write is what
// guarantees a single analysis.
func (s *Sessions) AnalyzeAnswer(ctx context.Context, userID, id uuid.UUID, position int) (interview.Analysis, error) {
	m, err := s.load(ctx, userID, id)
	if err != nil {
		return interview.Analysis{}, err
	}
	q, ok := m.Question(position)
	if !ok {
		return interview.Analysis{}, interview.ErrQuestionNotFound
	}
	switch q.State() {
	case interview.StateAnalyzed:
		return interview.Analysis{}, interview.ErrAlreadyAnalyzed
	case interview.StateUnanswered:
		return interview.Analysis{}, interview.ErrNotAnswered
	}
	if s.ai == nil {
		return interview.Analysis{}, ErrNotConfigured
	}

	if s.cache != nil {
		release, ok := s.cache.AcquireLock(ctx, analysisLockKey(id, position), analysisLockTTL)
		if !ok {
			return interview.Analysis{}, ErrBusy
		}
		defer release()
	}

	fb, err := s.ai.AnalyzeAnswer(ctx, ai.AnswerRequest{
		JobRole:         m.JobRole,
		Question:        q.Question,
		ReferenceAnswer: q.ReferenceAnswer,
		Answer:          *q.Answer,
		Language:        m.Language,
	})
	if err != nil {
		return interview.Analysis{}, upstreamError(err)
	}

	a := interview.Analysis{
		Rating:       interview.ClampRating(fb.Rating),
		Feedback:     fb.Feedback,
		Strengths:    fb.Strengths,
		Improvements: fb.Improvements,
		AnalyzedAt:   s.now().UTC(),
	}
	award := points.ForAnalysis(a.Rating)
	if err := s.repo.SaveAnalysis(ctx, userID, id, position, a, award); err != nil {
		return interview.Analysis{}, s.repoError("analysis", id, err)
	}
	s.points.PointsAwarded(ctx, userID, award, "analysis")
	return a, nil
}

// AnalyzeAll scores every answered but unanalyzed question concurrently.
// Outcomes are ordered by position.
func (s *Sessions) AnalyzeAll(ctx context.Context, userID, id uuid.UUID) ([]AnalysisOutcome, error) {
	m, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if m.IsCompleted {
		return nil, interview.ErrAlreadyCompleted
	}

	var jobs []worker.Job
	for _, q := range m.Questions {
		if q.State() != interview.StateAnswered {
			continue
		}
		pos := q.Position
		jobs = append(jobs, worker.Job{
			Key: strconv.Itoa(pos),
			Run: func(ctx context.Context) error {
				_, err := s.AnalyzeAnswer(ctx, userID, id, pos)
				return err
			},
		})
	}
	if len(jobs) == 0 {
		return []AnalysisOutcome{}, nil
	}

	results := worker.RunAll(ctx, s.workers, 0, jobs)

	refreshed, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	out := make([]AnalysisOutcome, 0, len(results))
	for _, r := range results {
		pos, _ := strconv.Atoi(r.Key)
		o := AnalysisOutcome{Position: pos, Err: r.Err}
		if q, ok := refreshed.Question(pos); ok && q.Analysis != nil {
			o.Analysis = q.Analysis
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Sessions) Complete(ctx context.Context, userID, id uuid.UUID) (CompletionResult, error) {
	m, err := s.load(ctx, userID, id)
	if err != nil {
		return CompletionResult{}, err
	}
	if m.IsCompleted {
		return CompletionResult{}, interview.ErrAlreadyCompleted
	}
	if !m.AllAnalyzed() {
		return CompletionResult{}, interview.ErrAnalysisIncomplete
	}

	score := interview.OverallScore(m.Questions)
	at := s.now().UTC()
	if err := s.repo.Complete(ctx, userID, id, score, points.InterviewCompleted, at); err != nil {
		return CompletionResult{}, s.repoError("complete", id, err)
	}
	s.points.PointsAwarded(ctx, userID, points.InterviewCompleted, "interview_completed")

	if m.Notifications {
		s.sendSummary(ctx, m, score)
	}
	return CompletionResult{OverallScore: score, PointsEarned: points.InterviewCompleted, CompletedAt: at}, nil
}

func (s *Sessions) sendSummary(ctx context.Context, m interview.MockInterview, score int) {
	if s.notifier == nil || s.users == nil {
		return
	}
	owner, err := s.users.GetUserByID(ctx, m.UserID)
	if err != nil {
		s.logf("[Interview] summary skipped interview_id=%s err=%v", m.ID, err)
		return
	}

	summary := notifier.InterviewSummary{
		AppName:      s.appName,
		UserName:     owner.DisplayName(),
		JobRole:      m.JobRole,
		OverallScore: score,
	}
	for _, q := range m.Questions {
		summary.Questions = append(summary.Questions, notifier.QuestionResult{
			Number:   q.Position + 1,
			Question: q.Question,
			Rating:   q.Analysis.Rating,
		})
	}
	// the interview is already completed; a failed email is only logged
	if err := s.notifier.SendInterviewSummary(ctx, owner.Email, summary); err != nil {
		s.logf("[Interview] summary email failed interview_id=%s err=%v", m.ID, err)
	}
}

func (s *Sessions) load(ctx context.Context, userID, id uuid.UUID) (interview.MockInterview, error) {
	m, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return interview.MockInterview{}, s.repoError("get", id, err)
	}
	return m, nil
}

func (s *Sessions) repoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, interview.ErrNotFound),
		errors.Is(err, interview.ErrQuestionNotFound),
		errors.Is(err, interview.ErrAlreadyAnalyzed),
		errors.Is(err, interview.ErrAlreadyCompleted),
		errors.Is(err, interview.ErrNotAnswered):
		return err
	}
	s.logf("[Interview] %s failed interview_id=%s err=%v", op, id, err)
	return ErrInternal
}

func (s *Sessions) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func analysisLockKey(id uuid.UUID, position int) string {
	return fmt.Sprintf("lock:analysis:%s:%d", id, position)
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mockraft/internal/domain/interview"
	"mockraft/internal/domain/points"
	"mockraft/internal/domain/user"
	"mockraft/internal/infrastructure/ai"
	"mockraft/internal/infrastructure/notifier"

	"github.com/google/uuid"
)

type sessionFixture struct {
	users  *fakeUsers
	repo   *fakeInterviews
	ai     *fakeAI
	cache  *memCache
	mail   *capturingNotifier
	points *recordingPoints
	uc     *Sessions
	owner  user.User
	m      interview.MockInterview
}

type capturingNotifier struct {
	mu   sync.Mutex
	sent []notifier.InterviewSummary
	to   []string
}

func (n *capturingNotifier) SendInterviewSummary(_ context.Context, to string, s notifier.InterviewSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, s)
	n.to = append(n.to, to)
	return nil
}

func newSessionFixture(t *testing.T, questions int, notify bool) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		owner:  user.User{ID: uuid.New(), Email: "sam@example.com", FullName: "Sam"},
		ai:     &fakeAI{feedback: ai.Feedback{Rating: 8, Feedback: "solid"}},
		cache:  newMemCache(),
		mail:   &capturingNotifier{},
		points: &recordingPoints{},
	}
	f.users = newFakeUsers(f.owner)
	f.repo = newFakeInterviews(f.users)

	in := validInterviewInput()
	in.QuestionCount = questions
	in.Notifications = notify
	m, err := NewInterviewUsecase(f.repo, f.ai, nil, 0, nil).Create(context.Background(), f.owner.ID, in)
	if err != nil {
		t.Fatalf("create interview: %v", err)
	}
	f.m = m

	f.uc = NewSessionUsecase(SessionDeps{
		Interviews: f.repo,
		Users:      f.users,
		AI:         f.ai,
		Cache:      f.cache,
		Notifier:   f.mail,
		Points:     f.points,
		Workers:    2,
		AppName:    "Mockraft",
	})
	return f
}

func TestSessionFlow(t *testing.T) {
	f := newSessionFixture(t, 2, true)
	ctx := context.Background()

	v, err := f.uc.GetSession(ctx, f.owner.ID, f.m.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if v.CurrentIndex != 0 || v.Total != 2 || v.Current == nil || v.Current.Position != 0 {
		t.Fatalf("unexpected initial session %+v", v)
	}

	if _, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0); !errors.Is(err, interview.ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}

	res, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 0, "  goroutines and channels  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.CurrentIndex != 1 {
		t.Fatalf("expected cursor 1, got %d", res.CurrentIndex)
	}

	a, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Rating != 8 {
		t.Fatalf("expected rating 8, got %d", a.Rating)
	}
	if got := f.users.points(f.owner.ID); got != 8 {
		t.Fatalf("expected 8 points, got %d", got)
	}

	if _, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0); !errors.Is(err, interview.ErrAlreadyAnalyzed) {
		t.Fatalf("expected ErrAlreadyAnalyzed, got %v", err)
	}
	if got := f.users.points(f.owner.ID); got != 8 {
		t.Fatalf("second analysis must not award points, got %d", got)
	}
	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 0, "changed"); !errors.Is(err, interview.ErrAlreadyAnalyzed) {
		t.Fatalf("analyzed answers are frozen, got %v", err)
	}

	if _, err := f.uc.Complete(ctx, f.owner.ID, f.m.ID); !errors.Is(err, interview.ErrAnalysisIncomplete) {
		t.Fatalf("expected ErrAnalysisIncomplete, got %v", err)
	}

	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 1, "indexes"); err != nil {
		t.Fatalf("submit second: %v", err)
	}
	if _, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 1); err != nil {
		t.Fatalf("analyze second: %v", err)
	}

	done, err := f.uc.Complete(ctx, f.owner.ID, f.m.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.OverallScore != 80 {
		t.Fatalf("expected score 80, got %d", done.OverallScore)
	}
	if got := f.users.points(f.owner.ID); got != 16+points.InterviewCompleted {
		t.Fatalf("unexpected points %d", got)
	}
	if _, err := f.uc.Complete(ctx, f.owner.ID, f.m.ID); !errors.Is(err, interview.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	if len(f.mail.sent) != 1 || f.mail.to[0] != "sam@example.com" || len(f.mail.sent[0].Questions) != 2 {
		t.Fatalf("expected one summary email, got %+v", f.mail.sent)
	}
	if f.points.awards["analysis"] != 16 || f.points.awards["interview_completed"] != points.InterviewCompleted {
		t.Fatalf("unexpected awards %+v", f.points.awards)
	}
}

func TestAnalyzeAnswerBusyWhileLocked(t *testing.T) {
	f := newSessionFixture(t, 1, false)
	ctx := context.Background()
	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 0, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	release, ok := f.cache.AcquireLock(ctx, analysisLockKey(f.m.ID, 0), 0)
	if !ok {
		t.Fatalf("could not take lock")
	}
	if _, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if f.ai.analyzed != 0 {
		t.Fatalf("AI must not be called while locked")
	}
	release()

	if _, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0); err != nil {
		t.Fatalf("analyze after release: %v", err)
	}
}

func TestAnalyzeAnswerMalformedAI(t *testing.T) {
	f := newSessionFixture(t, 1, false)
	ctx := context.Background()
	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 0, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.ai.err = ai.ErrMalformedAIResponse

	_, err := f.uc.AnalyzeAnswer(ctx, f.owner.ID, f.m.ID, 0)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, ai.ErrMalformedAIResponse) {
		t.Fatalf("expected upstream malformed error, got %v", err)
	}

	// the question stays answered so the user can retry
	v, _ := f.uc.GetSession(ctx, f.owner.ID, f.m.ID)
	if v.States[0] != interview.StateAnswered {
		t.Fatalf("expected answered state, got %s", v.States[0])
	}
}

func TestAnalyzeAll(t *testing.T) {
	f := newSessionFixture(t, 4, false)
	ctx := context.Background()
	for _, pos := range []int{0, 1, 3} {
		if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, pos, "answer"); err != nil {
			t.Fatalf("submit %d: %v", pos, err)
		}
	}

	out, err := f.uc.AnalyzeAll(ctx, f.owner.ID, f.m.ID)
	if err != nil {
		t.Fatalf("analyze all: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(out))
	}
	for i, want := range []int{0, 1, 3} {
		if out[i].Position != want || out[i].Err != nil || out[i].Analysis == nil {
			t.Fatalf("unexpected outcome %d: %+v", i, out[i])
		}
	}
	if f.ai.analyzed != 3 {
		t.Fatalf("expected 3 AI calls, got %d", f.ai.analyzed)
	}

	again, err := f.uc.AnalyzeAll(ctx, f.owner.ID, f.m.ID)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected nothing left to analyze, got %v %v", again, err)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	f := newSessionFixture(t, 1, false)
	ctx := context.Background()
	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 0, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, f.owner.ID, f.m.ID, 5, "x"); !errors.Is(err, interview.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, uuid.New(), f.m.ID, 0, "x"); !errors.Is(err, interview.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
}

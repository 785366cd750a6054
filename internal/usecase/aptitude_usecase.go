package usecase

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"mockraft/internal/domain/aptitude"
	"mockraft/internal/domain/points"
	"mockraft/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	catalogCacheKey = "aptitude:catalog"
	catalogCacheTTL = 10 * time.Minute
	maxTitleLength  = 120
)

type CreateTestInput struct {
	Title    string
	Sections []aptitude.Section
}

// TestQuestionView is a test question as shown to its owner. The correct
// option and explanation stay hidden until the question is answered or the
// test is completed.
type TestQuestionView struct {
	ID            string
	Category      string
	Subtopic      string
	Question      string
	Options       []string
	SelectedIndex *int
	IsCorrect     *bool
	CorrectIndex  *int
	Explanation   string
}

type TestView struct {
	Test      aptitude.Test
	Questions []TestQuestionView
}

type AptitudeAnswerResult struct {
	QuestionID   string
	IsCorrect    bool
	CorrectIndex int
	Explanation  string
	PointsEarned int
}

type TestCompletion struct {
	Score        int
	Total        int
	PointsEarned int
	CompletedAt  time.Time
}

type AptitudeUsecase interface {
	Catalog(ctx context.Context) ([]aptitude.CategorySummary, error)
	CreateTest(ctx context.Context, userID uuid.UUID, in CreateTestInput) (TestView, error)
	List(ctx context.Context, userID uuid.UUID, f aptitude.Filter) ([]aptitude.Test, error)
	Get(ctx context.Context, userID, id uuid.UUID) (TestView, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error
	AnswerQuestion(ctx context.Context, userID, id uuid.UUID, questionID string, selected int) (AptitudeAnswerResult, error)
	Complete(ctx context.Context, userID, id uuid.UUID) (TestCompletion, error)
}

type Aptitude struct {
	repo    repository.AptitudeRepository
	cache   Cache
	points  PointsListener
	logger  *logrus.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

func NewAptitudeUsecase(repo repository.AptitudeRepository, cache Cache, pts PointsListener, logger *logrus.Logger) *Aptitude {
	return &Aptitude{
		repo:   repo,
		cache:  cache,
		points: pointsListener(pts),
		logger: logger,
		now:    time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), uint64(time.Now().UnixNano())))
		},
	}
}

func (u *Aptitude) Catalog(ctx context.Context) ([]aptitude.CategorySummary, error) {
	if u.cache != nil {
		var cached []aptitude.CategorySummary
		if ok, err := u.cache.GetJSON(ctx, catalogCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	rows, err := u.repo.TopicCounts(ctx)
	if err != nil {
		u.logf("[Aptitude] catalog failed err=%v", err)
		return nil, ErrInternal
	}
	cat := aptitude.BuildCatalog(rows)

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, catalogCacheKey, cat, catalogCacheTTL)
	}
	return cat, nil
}

func (u *Aptitude) CreateTest(ctx context.Context, userID uuid.UUID, in CreateTestInput) (TestView, error) {
	sections, err := normalizeSections(in.Sections)
	if err != nil {
		return TestView{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = aptitude.DefaultTitle(sections)
	}
	if len([]rune(title)) > maxTitleLength {
		return TestView{}, invalidf("title must be at most %d characters", maxTitleLength)
	}

	r := u.newRand()
	used := map[string]struct{}{}
	var questions []aptitude.TestQuestion
	for _, sec := range sections {
		bank, err := u.repo.BankByTopic(ctx, sec.Category, sec.Subtopics)
		if err != nil {
			u.logf("[Aptitude] bank lookup failed category=%s err=%v", sec.Category, err)
			return TestView{}, ErrInternal
		}
		// overlapping sections must not repeat a question
		pool := bank[:0:0]
		for _, q := range bank {
			if _, dup := used[q.ID]; !dup {
				pool = append(pool, q)
			}
		}
		drawn, err := aptitude.Draw(pool, sec.Count, r)
		if err != nil {
			return TestView{}, err
		}
		for _, q := range drawn {
			used[q.ID] = struct{}{}
			questions = append(questions, aptitude.Snapshot(q))
		}
	}

	now := u.now().UTC()
	t := aptitude.Test{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Sections:  sections,
		Questions: questions,
		Total:     len(questions),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.Create(ctx, t); err != nil {
		u.logf("[Aptitude] create failed user_id=%s err=%v", userID, err)
		return TestView{}, ErrInternal
	}
	return NewTestView(t), nil
}

func (u *Aptitude) List(ctx context.Context, userID uuid.UUID, f aptitude.Filter) ([]aptitude.Test, error) {
	items, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		u.logf("[Aptitude] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return aptitude.Apply(items, f), nil
}

func (u *Aptitude) Get(ctx context.Context, userID, id uuid.UUID) (TestView, error) {
	t, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return TestView{}, u.repoError("get", id, err)
	}
	return NewTestView(t), nil
}

func (u *Aptitude) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return u.repoError("delete", id, err)
	}
	return nil
}

func (u *Aptitude) SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error {
	if err := u.repo.SetBookmark(ctx, userID, id, bookmarked); err != nil {
		return u.repoError("bookmark", id, err)
	}
	return nil
}

func (u *Aptitude) AnswerQuestion(ctx context.Context, userID, id uuid.UUID, questionID string, selected int) (AptitudeAnswerResult, error) {
	t, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return AptitudeAnswerResult{}, u.repoError("get", id, err)
	}
	if t.IsCompleted {
		return AptitudeAnswerResult{}, aptitude.ErrAlreadyCompleted
	}
	q, ok := t.Question(strings.TrimSpace(questionID))
	if !ok {
		return AptitudeAnswerResult{}, aptitude.ErrQuestionNotFound
	}
	if selected < 0 || selected >= len(q.Options) {
		return AptitudeAnswerResult{}, aptitude.ErrInvalidOption
	}
	for _, a := range t.Attempts {
		if a.QuestionID == q.ID {
			return AptitudeAnswerResult{}, aptitude.ErrAlreadyAnswered
		}
	}

	correct := selected == q.CorrectIndex
	award := points.ForAptitudeAnswer(correct)
	attempt := aptitude.Attempt{
		ID:            uuid.New(),
		TestID:        t.ID,
		UserID:        userID,
		QuestionID:    q.ID,
		SelectedIndex: selected,
		IsCorrect:     correct,
		CreatedAt:     u.now().UTC(),
	}
	if err := u.repo.RecordAttempt(ctx, attempt, award); err != nil {
		return AptitudeAnswerResult{}, u.repoError("answer", id, err)
	}
	if award > 0 {
		u.points.PointsAwarded(ctx, userID, award, "aptitude_correct")
	}

	return AptitudeAnswerResult{
		QuestionID:   q.ID,
		IsCorrect:    correct,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		PointsEarned: award,
	}, nil
}

func (u *Aptitude) Complete(ctx context.Context, userID, id uuid.UUID) (TestCompletion, error) {
	t, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return TestCompletion{}, u.repoError("get", id, err)
	}
	if t.IsCompleted {
		return TestCompletion{}, aptitude.ErrAlreadyCompleted
	}

	at := u.now().UTC()
	score, err := u.repo.Complete(ctx, userID, id, points.AptitudeCompleted, at)
	if err != nil {
		return TestCompletion{}, u.repoError("complete", id, err)
	}
	u.points.PointsAwarded(ctx, userID, points.AptitudeCompleted, "aptitude_completed")

	return TestCompletion{
		Score:        score,
		Total:        len(t.Questions),
		PointsEarned: points.AptitudeCompleted,
		CompletedAt:  at,
	}, nil
}

func (u *Aptitude) repoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, aptitude.ErrNotFound),
		errors.Is(err, aptitude.ErrAlreadyAnswered),
		errors.Is(err, aptitude.ErrAlreadyCompleted):
		return err
	}
	u.logf("[Aptitude] %s failed test_id=%s err=%v", op, id, err)
	return ErrInternal
}

func (u *Aptitude) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

// NewTestView masks the answer key of questions the owner has not answered
// yet, unless the test is completed.
func NewTestView(t aptitude.Test) TestView {
	attempts := make(map[string]aptitude.Attempt, len(t.Attempts))
	for _, a := range t.Attempts {
		attempts[a.QuestionID] = a
	}

	views := make([]TestQuestionView, 0, len(t.Questions))
	for _, q := range t.Questions {
		v := TestQuestionView{
			ID:       q.ID,
			Category: q.Category,
			Subtopic: q.Subtopic,
			Question: q.Question,
			Options:  q.Options,
		}
		a, answered := attempts[q.ID]
		if answered {
			sel, ok := a.SelectedIndex, a.IsCorrect
			v.SelectedIndex = &sel
			v.IsCorrect = &ok
		}
		if answered || t.IsCompleted {
			ci := q.CorrectIndex
			v.CorrectIndex = &ci
			v.Explanation = q.Explanation
		}
		views = append(views, v)
	}

	t.Questions = nil
	return TestView{Test: t, Questions: views}
}

func normalizeSections(in []aptitude.Section) ([]aptitude.Section, error) {
	if len(in) == 0 {
		return nil, invalidf("at least one section is required")
	}
	if len(in) > aptitude.MaxSections {
		return nil, invalidf("at most %d sections are allowed", aptitude.MaxSections)
	}

	out := make([]aptitude.Section, 0, len(in))
	for i, s := range in {
		sec := aptitude.Section{Category: strings.TrimSpace(s.Category), Count: s.Count}
		if sec.Category == "" {
			return nil, invalidf("sections[%d].category is required", i)
		}
		if sec.Count < 1 || sec.Count > aptitude.MaxSectionQuestions {
			return nil, invalidf("sections[%d].count must be between 1 and %d", i, aptitude.MaxSectionQuestions)
		}
		for _, st := range s.Subtopics {
			if st = strings.TrimSpace(st); st != "" {
				sec.Subtopics = append(sec.Subtopics, st)
			}
		}
		out = append(out, sec)
	}
	return out, nil
}

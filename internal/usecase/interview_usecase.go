package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mockraft/internal/domain/interview"
	"mockraft/internal/infrastructure/ai"
	"mockraft/internal/infrastructure/jobposting"
	"mockraft/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxJobRoleLength        = 200
	maxJobDescriptionLength = 5000
	maxTechStackItems       = 20
	defaultLanguage         = "English"
)

type CreateInterviewInput struct {
	JobRole         string
	JobDescription  string
	Language        string
	TechStack       []string
	ExperienceLevel string
	Notifications   bool
	QuestionCount   int
}

type InterviewUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateInterviewInput) (interview.MockInterview, error)
	List(ctx context.Context, userID uuid.UUID, f interview.Filter) ([]interview.MockInterview, error)
	Get(ctx context.Context, userID, id uuid.UUID) (interview.MockInterview, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error
	ImportJobPosting(ctx context.Context, rawURL string) (jobposting.Posting, error)
}

type Interviews struct {
	repo      repository.InterviewRepository
	ai        ai.Client
	importer  jobposting.Importer
	freeLimit int
	logger    *logrus.Logger
	now       func() time.Time
}

func NewInterviewUsecase(
	repo repository.InterviewRepository,
	aiClient ai.Client,
	importer jobposting.Importer,
	freeLimit int,
	logger *logrus.Logger,
) *Interviews {
	return &Interviews{
		repo:      repo,
		ai:        aiClient,
		importer:  importer,
		freeLimit: freeLimit,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *Interviews) Create(ctx context.Context, userID uuid.UUID, in CreateInterviewInput) (interview.MockInterview, error) {
	cfg, err := normalizeInterviewConfig(in)
	if err != nil {
		return interview.MockInterview{}, err
	}
	if u.ai == nil {
		return interview.MockInterview{}, ErrNotConfigured
	}

	generated, err := u.ai.GenerateQuestions(ctx, ai.QuestionRequest{
		JobRole:         cfg.JobRole,
		JobDescription:  cfg.JobDescription,
		TechStack:       cfg.TechStack,
		ExperienceLevel: string(cfg.ExperienceLevel),
		Language:        cfg.Language,
		Count:           cfg.QuestionCount,
	})
	if err != nil {
		return interview.MockInterview{}, upstreamError(err)
	}
	if len(generated) > cfg.QuestionCount {
		generated = generated[:cfg.QuestionCount]
	}

	now := u.now().UTC()
	m := interview.MockInterview{
		ID:        uuid.New(),
		UserID:    userID,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.QuestionCount = len(generated)
	for i, g := range generated {
		m.Questions = append(m.Questions, interview.Question{
			Position:        i,
			Question:        g.Question,
			ReferenceAnswer: g.Answer,
		})
	}

	if err := u.repo.CreateWithQuestions(ctx, m, u.freeLimit); err != nil {
		if errors.Is(err, interview.ErrPlanLimitReached) || errors.Is(err, interview.ErrNotFound) {
			return interview.MockInterview{}, err
		}
		u.logf("[Interview] create failed user_id=%s err=%v", userID, err)
		return interview.MockInterview{}, ErrInternal
	}

	if u.logger != nil {
		u.logger.WithFields(logrus.Fields{
			"user_id":      userID,
			"interview_id": m.ID,
			"questions":    len(m.Questions),
		}).Info("[Interview] Created")
	}
	return m, nil
}

func (u *Interviews) List(ctx context.Context, userID uuid.UUID, f interview.Filter) ([]interview.MockInterview, error) {
	items, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		u.logf("[Interview] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return interview.Apply(items, f), nil
}

func (u *Interviews) Get(ctx context.Context, userID, id uuid.UUID) (interview.MockInterview, error) {
	m, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return interview.MockInterview{}, u.repoError("get", id, err)
	}
	return m, nil
}

func (u *Interviews) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return u.repoError("delete", id, err)
	}
	return nil
}

func (u *Interviews) SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error {
	if err := u.repo.SetBookmark(ctx, userID, id, bookmarked); err != nil {
		return u.repoError("bookmark", id, err)
	}
	return nil
}

func (u *Interviews) ImportJobPosting(ctx context.Context, rawURL string) (jobposting.Posting, error) {
	if u.importer == nil {
		return jobposting.Posting{}, ErrNotConfigured
	}
	p, err := u.importer.Import(ctx, rawURL)
	if err != nil {
		switch {
		case errors.Is(err, jobposting.ErrInvalidURL):
			return jobposting.Posting{}, invalidf("url must be an absolute http(s) address")
		case errors.Is(err, jobposting.ErrBlockedHost):
			u.logf("[JobPosting] blocked host url=%s", rawURL)
			return jobposting.Posting{}, invalidf("url host is not allowed")
		case errors.Is(err, jobposting.ErrNoContent):
			return jobposting.Posting{}, fmt.Errorf("%w: %w", ErrUpstream, err)
		default:
			u.logf("[JobPosting] import failed url=%s err=%v", rawURL, err)
			return jobposting.Posting{}, ErrUpstream
		}
	}
	return p, nil
}

func (u *Interviews) repoError(op string, id uuid.UUID, err error) error {
	if errors.Is(err, interview.ErrNotFound) {
		return err
	}
	u.logf("[Interview] %s failed interview_id=%s err=%v", op, id, err)
	return ErrInternal
}

func (u *Interviews) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

func normalizeInterviewConfig(in CreateInterviewInput) (interview.Config, error) {
	cfg := interview.Config{
		JobRole:        strings.TrimSpace(in.JobRole),
		JobDescription: strings.TrimSpace(in.JobDescription),
		Language:       strings.TrimSpace(in.Language),
		Notifications:  in.Notifications,
		QuestionCount:  in.QuestionCount,
	}

	if cfg.JobRole == "" {
		return interview.Config{}, invalidf("job_role is required")
	}
	if len([]rune(cfg.JobRole)) > maxJobRoleLength {
		return interview.Config{}, invalidf("job_role must be at most %d characters", maxJobRoleLength)
	}
	if cfg.JobDescription == "" {
		return interview.Config{}, invalidf("job_description is required")
	}
	if len([]rune(cfg.JobDescription)) > maxJobDescriptionLength {
		return interview.Config{}, invalidf("job_description must be at most %d characters", maxJobDescriptionLength)
	}

	level, ok := interview.ParseExperienceLevel(in.ExperienceLevel)
	if !ok {
		return interview.Config{}, invalidf("experience_level must be one of fresher, junior, mid, senior")
	}
	cfg.ExperienceLevel = level

	if cfg.QuestionCount == 0 {
		cfg.QuestionCount = interview.DefaultQuestions
	}
	if cfg.QuestionCount < interview.MinQuestions || cfg.QuestionCount > interview.MaxQuestions {
		return interview.Config{}, invalidf("question_count must be between %d and %d", interview.MinQuestions, interview.MaxQuestions)
	}

	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}

	seen := map[string]struct{}{}
	for _, s := range in.TechStack {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		cfg.TechStack = append(cfg.TechStack, s)
	}
	if len(cfg.TechStack) > maxTechStackItems {
		return interview.Config{}, invalidf("tech_stack must have at most %d items", maxTechStackItems)
	}
	return cfg, nil
}

// upstreamError keeps the AI failure kind visible to callers while marking it
// as an upstream problem.
func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"mockraft/internal/database"
	"mockraft/internal/domain/interview"
	userpg "mockraft/internal/infrastructure/persistence/postgres"

	"github.com/google/uuid"
)

type InterviewRepository interface {
	// CreateWithQuestions stores the interview and its questions and counts it
	// against the owner's plan. freeLimit <= 0 disables the cap.
	CreateWithQuestions(ctx context.Context, m interview.MockInterview, freeLimit int) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]interview.MockInterview, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (interview.MockInterview, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error
	SaveAnswer(ctx context.Context, userID, id uuid.UUID, position int, answer string, at time.Time) (int, error)
	SaveAnalysis(ctx context.Context, userID, id uuid.UUID, position int, a interview.Analysis, points int) error
	Complete(ctx context.Context, userID, id uuid.UUID, score, bonus int, at time.Time) error
}

type PostgresInterviewRepository struct {
	db database.DB
}

func NewPostgresInterviewRepository(db database.DB) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

const interviewColumns = `id, user_id, job_role, job_description, language, tech_stack, experience_level,
	notifications, question_count, current_index, is_completed, is_bookmarked, overall_score,
	completed_at, created_at, updated_at`

func (r *PostgresInterviewRepository) CreateWithQuestions(ctx context.Context, m interview.MockInterview, freeLimit int) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE users SET interviews_created = interviews_created + 1, updated_at = now()
			 WHERE id = $1 AND (plan = 'paid' OR $2 <= 0 OR interviews_created < $2)`,
			m.UserID, freeLimit,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, m.UserID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return interview.ErrNotFound
			}
			return interview.ErrPlanLimitReached
		}

		stack := m.TechStack
		if stack == nil {
			stack = []string{}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO mock_interviews (id, user_id, job_role, job_description, language, tech_stack,
				experience_level, notifications, question_count, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			m.ID, m.UserID, m.JobRole, m.JobDescription, m.Language, stack,
			string(m.ExperienceLevel), m.Notifications, len(m.Questions), m.CreatedAt,
		)
		if err != nil {
			return err
		}

		for _, q := range m.Questions {
			_, err := tx.Exec(ctx,
				`INSERT INTO interview_questions (interview_id, position, question, reference_answer)
				 VALUES ($1, $2, $3, $4)`,
				m.ID, q.Position, q.Question, q.ReferenceAnswer,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresInterviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]interview.MockInterview, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interviewColumns+` FROM mock_interviews WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]interview.MockInterview, 0)
	for rows.Next() {
		m, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresInterviewRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (interview.MockInterview, error) {
	m, err := scanInterview(r.db.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM mock_interviews WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return interview.MockInterview{}, interview.ErrNotFound
		}
		return interview.MockInterview{}, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT position, question, reference_answer, answer, answered_at, analysis
		 FROM interview_questions WHERE interview_id = $1 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return interview.MockInterview{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var q interview.Question
		var raw []byte
		if err := rows.Scan(&q.Position, &q.Question, &q.ReferenceAnswer, &q.Answer, &q.AnsweredAt, &raw); err != nil {
			return interview.MockInterview{}, err
		}
		if len(raw) > 0 {
			var a interview.Analysis
			if err := json.Unmarshal(raw, &a); err != nil {
				return interview.MockInterview{}, err
			}
			q.Analysis = &a
		}
		m.Questions = append(m.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return interview.MockInterview{}, err
	}
	return m, nil
}

func (r *PostgresInterviewRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM mock_interviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return interview.ErrNotFound
	}
	return nil
}

func (r *PostgresInterviewRepository) SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE mock_interviews SET is_bookmarked = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, bookmarked,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return interview.ErrNotFound
	}
	return nil
}

// SaveAnswer stores the answer and returns the advanced session cursor.
// Analyzed answers are frozen.
func (r *PostgresInterviewRepository) SaveAnswer(ctx context.Context, userID, id uuid.UUID, position int, answer string, at time.Time) (int, error) {
	var next int
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var completed bool
		var current, total int
		err := tx.QueryRow(ctx,
			`SELECT is_completed, current_index, question_count FROM mock_interviews
			 WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&completed, &current, &total)
		if err != nil {
			if database.IsNoRows(err) {
				return interview.ErrNotFound
			}
			return err
		}
		if completed {
			return interview.ErrAlreadyCompleted
		}

		n, err := tx.Exec(ctx,
			`UPDATE interview_questions SET answer = $3, answered_at = $4
			 WHERE interview_id = $1 AND position = $2 AND analysis IS NULL`,
			id, position, answer, at,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return questionMissingOrAnalyzed(ctx, tx, id, position)
		}

		next = interview.NextIndex(current, position, total)
		_, err = tx.Exec(ctx,
			`UPDATE mock_interviews SET current_index = $2, updated_at = $3 WHERE id = $1`,
			id, next, at,
		)
		return err
	})
	return next, err
}

// SaveAnalysis writes the analysis once and awards points in the same
// transaction. A second write reports interview.ErrAlreadyAnalyzed.
func (r *PostgresInterviewRepository) SaveAnalysis(ctx context.Context, userID, id uuid.UUID, position int, a interview.Analysis, points int) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE interview_questions q SET analysis = $4::jsonb, analyzed_at = $5
			 FROM mock_interviews m
			 WHERE q.interview_id = m.id AND m.id = $1 AND m.user_id = $2 AND q.position = $3
			   AND q.analysis IS NULL AND q.answer IS NOT NULL`,
			id, userID, position, string(raw), a.AnalyzedAt,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return questionMissingOrAnalyzed(ctx, tx, id, position)
		}
		return userpg.AddUserPoints(ctx, tx, userID, points)
	})
}

func (r *PostgresInterviewRepository) Complete(ctx context.Context, userID, id uuid.UUID, score, bonus int, at time.Time) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`UPDATE mock_interviews SET is_completed = true, overall_score = $3, completed_at = $4, updated_at = $4
			 WHERE id = $1 AND user_id = $2 AND is_completed = false`,
			id, userID, score, at,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM mock_interviews WHERE id = $1 AND user_id = $2)`, id, userID,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return interview.ErrNotFound
			}
			return interview.ErrAlreadyCompleted
		}
		return userpg.AddUserPoints(ctx, tx, userID, bonus)
	})
}

func questionMissingOrAnalyzed(ctx context.Context, q database.Querier, id uuid.UUID, position int) error {
	var answered, analyzed bool
	err := q.QueryRow(ctx,
		`SELECT answer IS NOT NULL, analysis IS NOT NULL FROM interview_questions WHERE interview_id = $1 AND position = $2`,
		id, position,
	).Scan(&answered, &analyzed)
	if err != nil {
		if database.IsNoRows(err) {
			return interview.ErrQuestionNotFound
		}
		return err
	}
	if analyzed {
		return interview.ErrAlreadyAnalyzed
	}
	if !answered {
		return interview.ErrNotAnswered
	}
	return interview.ErrAlreadyAnalyzed
}

func scanInterview(row database.Row) (interview.MockInterview, error) {
	var m interview.MockInterview
	var level string
	if err := row.Scan(
		&m.ID, &m.UserID, &m.JobRole, &m.JobDescription, &m.Language, &m.TechStack, &level,
		&m.Notifications, &m.QuestionCount, &m.CurrentIndex, &m.IsCompleted, &m.IsBookmarked, &m.OverallScore,
		&m.CompletedAt, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return interview.MockInterview{}, err
	}
	m.ExperienceLevel = interview.ExperienceLevel(level)
	return m, nil
}

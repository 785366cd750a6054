package repository

import (
	"context"
	"encoding/json"
	"time"

	"mockraft/internal/database"
	dbpg "mockraft/internal/database/postgres"
	"mockraft/internal/domain/aptitude"
	userpg "mockraft/internal/infrastructure/persistence/postgres"

	"github.com/google/uuid"
)

type AptitudeRepository interface {
	TopicCounts(ctx context.Context) ([]aptitude.TopicCount, error)
	BankByTopic(ctx context.Context, category string, subtopics []string) ([]aptitude.BankQuestion, error)
	Create(ctx context.Context, t aptitude.Test) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]aptitude.Test, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (aptitude.Test, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error
	RecordAttempt(ctx context.Context, a aptitude.Attempt, points int) error
	Complete(ctx context.Context, userID, id uuid.UUID, bonus int, at time.Time) (int, error)
}

type PostgresAptitudeRepository struct {
	db database.DB
}

func NewPostgresAptitudeRepository(db database.DB) *PostgresAptitudeRepository {
	return &PostgresAptitudeRepository{db: db}
}

func (r *PostgresAptitudeRepository) TopicCounts(ctx context.Context) ([]aptitude.TopicCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, subtopic, COUNT(1) FROM aptitude_questions
		 GROUP BY category, subtopic ORDER BY category, subtopic`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]aptitude.TopicCount, 0)
	for rows.Next() {
		var c aptitude.TopicCount
		if err := rows.Scan(&c.Category, &c.Subtopic, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BankByTopic returns every bank question in category, narrowed to subtopics
// when any are given.
func (r *PostgresAptitudeRepository) BankByTopic(ctx context.Context, category string, subtopics []string) ([]aptitude.BankQuestion, error) {
	if subtopics == nil {
		subtopics = []string{}
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, category, subtopic, question, options, correct_index, explanation, difficulty
		 FROM aptitude_questions
		 WHERE lower(category) = lower($1) AND (cardinality($2::text[]) = 0 OR subtopic = ANY($2::text[]))
		 ORDER BY id`,
		category, subtopics,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]aptitude.BankQuestion, 0)
	for rows.Next() {
		var q aptitude.BankQuestion
		if err := rows.Scan(&q.ID, &q.Category, &q.Subtopic, &q.Question, &q.Options, &q.CorrectIndex, &q.Explanation, &q.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAptitudeRepository) Create(ctx context.Context, t aptitude.Test) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return err
	}
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO aptitude_tests (id, user_id, title, sections, questions, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $7)`,
		t.ID, t.UserID, t.Title, string(sections), string(questions), t.Total, t.CreatedAt,
	)
	return err
}

func (r *PostgresAptitudeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]aptitude.Test, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.user_id, t.title, t.sections, t.bookmarked, t.is_completed, t.score, t.total,
			t.completed_at, t.created_at, t.updated_at,
			(SELECT COUNT(1) FROM aptitude_attempts a WHERE a.test_id = t.id)
		 FROM aptitude_tests t WHERE t.user_id = $1 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]aptitude.Test, 0)
	for rows.Next() {
		var t aptitude.Test
		var sections []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &sections, &t.Bookmarked, &t.IsCompleted, &t.Score, &t.Total,
			&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt, &t.AnsweredCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAptitudeRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (aptitude.Test, error) {
	var t aptitude.Test
	var sections, questions []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, sections, questions, bookmarked, is_completed, score, total, completed_at, created_at, updated_at
		 FROM aptitude_tests WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &sections, &questions, &t.Bookmarked, &t.IsCompleted, &t.Score, &t.Total,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return aptitude.Test{}, aptitude.ErrNotFound
		}
		return aptitude.Test{}, err
	}
	if err := json.Unmarshal(sections, &t.Sections); err != nil {
		return aptitude.Test{}, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return aptitude.Test{}, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, test_id, user_id, question_id, selected_index, is_correct, created_at
		 FROM aptitude_attempts WHERE test_id = $1 ORDER BY created_at ASC`,
		id,
	)
	if err != nil {
		return aptitude.Test{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a aptitude.Attempt
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.QuestionID, &a.SelectedIndex, &a.IsCorrect, &a.CreatedAt); err != nil {
			return aptitude.Test{}, err
		}
		t.Attempts = append(t.Attempts, a)
	}
	if err := rows.Err(); err != nil {
		return aptitude.Test{}, err
	}
	return t, nil
}

func (r *PostgresAptitudeRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM aptitude_tests WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return aptitude.ErrNotFound
	}
	return nil
}

func (r *PostgresAptitudeRepository) SetBookmark(ctx context.Context, userID, id uuid.UUID, bookmarked bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE aptitude_tests SET bookmarked = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, bookmarked,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return aptitude.ErrNotFound
	}
	return nil
}

// RecordAttempt inserts the attempt and awards points atomically. The unique
// (test_id, question_id) constraint rejects a second answer.
func (r *PostgresAptitudeRepository) RecordAttempt(ctx context.Context, a aptitude.Attempt, points int) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var completed bool
		err := tx.QueryRow(ctx,
			`SELECT is_completed FROM aptitude_tests WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			a.TestID, a.UserID,
		).Scan(&completed)
		if err != nil {
			if database.IsNoRows(err) {
				return aptitude.ErrNotFound
			}
			return err
		}
		if completed {
			return aptitude.ErrAlreadyCompleted
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO aptitude_attempts (id, test_id, user_id, question_id, selected_index, is_correct, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, a.TestID, a.UserID, a.QuestionID, a.SelectedIndex, a.IsCorrect, a.CreatedAt,
		)
		if err != nil {
			if dbpg.IsUniqueViolation(err) {
				return aptitude.ErrAlreadyAnswered
			}
			return err
		}
		return userpg.AddUserPoints(ctx, tx, a.UserID, points)
	})
}

// Complete scores the test from its attempts and returns the score.
func (r *PostgresAptitudeRepository) Complete(ctx context.Context, userID, id uuid.UUID, bonus int, at time.Time) (int, error) {
	var score int
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var completed bool
		err := tx.QueryRow(ctx,
			`SELECT is_completed FROM aptitude_tests WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&completed)
		if err != nil {
			if database.IsNoRows(err) {
				return aptitude.ErrNotFound
			}
			return err
		}
		if completed {
			return aptitude.ErrAlreadyCompleted
		}

		if err := tx.QueryRow(ctx,
			`SELECT COUNT(1) FROM aptitude_attempts WHERE test_id = $1 AND is_correct`, id,
		).Scan(&score); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE aptitude_tests SET is_completed = true, score = $2, completed_at = $3, updated_at = $3 WHERE id = $1`,
			id, score, at,
		); err != nil {
			return err
		}
		return userpg.AddUserPoints(ctx, tx, userID, bonus)
	})
	return score, err
}

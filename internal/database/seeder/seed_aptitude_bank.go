package seeder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"mockraft/internal/database"
	"mockraft/internal/domain/aptitude"
)

//go:embed aptitude_bank.json
var aptitudeBankJSON []byte

type AptitudeBankSeeder struct {
	// Data overrides the embedded bank when set.
	Data []byte
}

func (AptitudeBankSeeder) Name() string { return "aptitude_bank" }

func (s AptitudeBankSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "aptitude_questions",
		"id", "category", "subtopic", "question", "options", "correct_index", "explanation", "difficulty",
	); err != nil {
		return err
	}

	data := s.Data
	if len(data) == 0 {
		data = aptitudeBankJSON
	}
	items, err := ParseAptitudeBank(data)
	if err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, q := range items {
			_, err := tx.Exec(
				ctx,
				`INSERT INTO aptitude_questions (id, category, subtopic, question, options, correct_index, explanation, difficulty)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 ON CONFLICT (id) DO UPDATE SET
				   category = EXCLUDED.category,
				   subtopic = EXCLUDED.subtopic,
				   question = EXCLUDED.question,
				   options = EXCLUDED.options,
				   correct_index = EXCLUDED.correct_index,
				   explanation = EXCLUDED.explanation,
				   difficulty = EXCLUDED.difficulty`,
				q.ID, q.Category, q.Subtopic, q.Question, q.Options, q.CorrectIndex, q.Explanation, q.Difficulty,
			)
			if err != nil {
				return fmt.Errorf("insert %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

// ParseAptitudeBank decodes and validates a question bank file.
func ParseAptitudeBank(data []byte) ([]aptitude.BankQuestion, error) {
	var items []aptitude.BankQuestion
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode aptitude bank: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("aptitude bank is empty")
	}

	seen := map[string]struct{}{}
	for i := range items {
		q := &items[i]
		q.ID = strings.TrimSpace(q.ID)
		q.Category = strings.TrimSpace(q.Category)
		q.Subtopic = strings.TrimSpace(q.Subtopic)
		if q.ID == "" || q.Category == "" || q.Subtopic == "" || strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("aptitude bank item %d: id, category, subtopic and question are required", i)
		}
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("aptitude bank: duplicate id %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("aptitude bank %s: at least two options required", q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("aptitude bank %s: correct_index out of range", q.ID)
		}
		if q.Difficulty == "" {
			q.Difficulty = "medium"
		}
	}
	return items, nil
}

package seeder

import (
	"context"
	"fmt"

	"mockraft/internal/database"

	"github.com/sirupsen/logrus"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logrus.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Printf("[Seeder] Done name=%s", s.Name())
		}
	}
	return nil
}

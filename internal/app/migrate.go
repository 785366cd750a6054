package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"mockraft/internal/database"
	"mockraft/internal/database/migration"
	"mockraft/migrations"

	"github.com/sirupsen/logrus"
)

// Migrate applies the schema from dir when it exists on disk, otherwise from
// the SQL files embedded in the binary.
func Migrate(ctx context.Context, db database.DB, dir string, logger *logrus.Logger) error {
	if db == nil {
		return errors.New("nil db")
	}

	r := migration.Runner{Logger: logger}
	if d := strings.TrimSpace(dir); d != "" {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			r.Dir = d
		}
	}
	if r.Dir == "" {
		r.FS = migrations.Files
	}
	if logger != nil {
		src := r.Dir
		if src == "" {
			src = "embedded"
		}
		logger.Printf("[Migration] Running source=%s", src)
	}

	return r.Run(ctx, db.SQLDB())
}

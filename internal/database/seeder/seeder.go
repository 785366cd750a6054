package seeder

import (
	"context"

	"mockraft/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

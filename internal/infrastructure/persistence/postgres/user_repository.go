package postgres

import (
	"context"
	"strings"

	"mockraft/internal/database"
	"mockraft/internal/domain/user"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, full_name, plan, points, interviews_created, sidebar_collapsed, created_at, updated_at`

type UserRepository struct {
	db database.DB
}

func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, u user.User) error {
	plan := u.Plan
	if plan == "" {
		plan = user.PlanFree
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, plan) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, strings.TrimSpace(u.FullName), string(plan),
	)
	return err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, in user.ProfileUpdate) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET
			full_name = COALESCE($2, full_name),
			sidebar_collapsed = COALESCE($3, sidebar_collapsed),
			updated_at = now()
		 WHERE id = $1`,
		id, in.FullName, in.SidebarCollapsed,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	return AddUserPoints(ctx, r.db, id, delta)
}

// AddUserPoints is shared with repositories that award points inside their
// own transaction.
func AddUserPoints(ctx context.Context, q database.Querier, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	n, err := q.Exec(ctx,
		`UPDATE users SET points = GREATEST(points + $2, 0), updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	var plan string
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &plan,
		&u.Points, &u.InterviewsCreated, &u.SidebarCollapsed, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Plan = user.Plan(plan)
	return u, nil
}

package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mockraft/internal/domain/user"

	"github.com/google/uuid"
)

type profileRepo struct {
	u       user.User
	updates []user.ProfileUpdate
}

func (r *profileRepo) CreateUser(context.Context, user.User) error { return nil }

func (r *profileRepo) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	if id != r.u.ID {
		return user.User{}, user.ErrNotFound
	}
	return r.u, nil
}

func (r *profileRepo) GetUserByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *profileRepo) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func (r *profileRepo) UpdateProfile(_ context.Context, id uuid.UUID, in user.ProfileUpdate) error {
	if id != r.u.ID {
		return user.ErrNotFound
	}
	r.updates = append(r.updates, in)
	if in.FullName != nil {
		r.u.FullName = *in.FullName
	}
	if in.SidebarCollapsed != nil {
		r.u.SidebarCollapsed = *in.SidebarCollapsed
	}
	return nil
}

func (r *profileRepo) AddPoints(context.Context, uuid.UUID, int) error { return nil }

func TestUpdateMe(t *testing.T) {
	repo := &profileRepo{u: user.User{ID: uuid.New(), Email: "a@b.co", PasswordHash: "secret"}}
	svc := NewService(repo)

	name := "  Ada   Lovelace "
	collapsed := true
	got, err := svc.UpdateMe(context.Background(), repo.u.ID, UpdateMeInput{FullName: &name, SidebarCollapsed: &collapsed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FullName != "Ada Lovelace" || !got.SidebarCollapsed {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.PasswordHash != "" {
		t.Fatalf("password hash leaked")
	}
}

func TestUpdateMeWithoutChangesSkipsWrite(t *testing.T) {
	repo := &profileRepo{u: user.User{ID: uuid.New()}}
	if _, err := NewService(repo).UpdateMe(context.Background(), repo.u.ID, UpdateMeInput{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("expected no writes, got %d", len(repo.updates))
	}
}

func TestUpdateMeRejectsLongName(t *testing.T) {
	repo := &profileRepo{u: user.User{ID: uuid.New()}}
	long := strings.Repeat("n", maxFullNameLength+1)
	if _, err := NewService(repo).UpdateMe(context.Background(), repo.u.ID, UpdateMeInput{FullName: &long}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetMeUnknownUser(t *testing.T) {
	repo := &profileRepo{u: user.User{ID: uuid.New()}}
	if _, err := NewService(repo).GetMe(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

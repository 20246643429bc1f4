package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/query"
)

// userService implements user.Service
type userService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) user.Service {
	return &userService{repo: repo}
}

func (s *userService) Name() string {
	return "user"
}

func (s *userService) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]user.User, error) {
	return s.repo.List(ctx, scope, opts)
}

// Get ignores populate: users have no relations to expand.
func (s *userService) Get(ctx context.Context, id uuid.UUID, _ ...string) (*user.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, user.MapError(err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, _ user.CreateUserRequest) (*user.User, error) {
	return nil, user.ErrUseSignup
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req user.UpdateUserRequest) (*user.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, user.MapError(err)
	}

	req.Apply(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, user.MapError(err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return user.MapError(s.repo.Delete(ctx, id))
}

// ========================================
// SELF SERVICE
// ========================================

func (s *userService) UpdateMe(ctx context.Context, id uuid.UUID, req user.UpdateMeRequest) (*user.User, error) {
	if req.TouchesPassword() {
		return nil, user.ErrNotPasswordRoute
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, user.MapError(err)
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = user.NormalizeEmail(*req.Email)
	}
	if req.Photo != nil {
		u.Photo = *req.Photo
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, user.MapError(err)
	}
	return u, nil
}

func (s *userService) DeleteMe(ctx context.Context, id uuid.UUID) error {
	return user.MapError(s.repo.Deactivate(ctx, id))
}

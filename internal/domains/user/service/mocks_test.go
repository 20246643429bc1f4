package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/infrastructure/email"
	"tours-backend/internal/shared/query"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*user.User, error) {
	args := m.Called(ctx, tokenHash, now)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindProfiles(ctx context.Context, ids []uuid.UUID) ([]user.Profile, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]user.Profile)
	return p, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]user.User, error) {
	args := m.Called(ctx, scope, opts)
	u, _ := args.Get(0).([]user.User)
	return u, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	return m.Called(ctx, id, passwordHash, changedAt).Error(0)
}

func (m *mockRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash *string, expires *time.Time) error {
	return m.Called(ctx, id, tokenHash, expires).Error(0)
}

func (m *mockRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendWelcome(ctx context.Context, to, name, accountURL string) error {
	return m.Called(ctx, to, name, accountURL).Error(0)
}

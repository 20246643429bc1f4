package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/infrastructure/email"
	"tours-backend/internal/shared/apperror"
	"tours-backend/pkg/jwt"
	"tours-backend/pkg/logger"
)

const (
	defaultBcryptCost = 12
	resetTokenBytes   = 32
	resetTokenTTL     = 10 * time.Minute

	// stored password change time is backdated so a token signed in the
	// same second is still accepted
	passwordChangeSkew = time.Second
)

type authService struct {
	repo     user.Repository
	tokens   *jwt.Manager
	mailer   email.EmailService
	notifier user.Notifier

	cost int
	now  func() time.Time

	// compared against when the email is unknown, so both failure paths cost
	// one bcrypt comparison
	dummyHash []byte
}

// NewAuthService wires the password and token lifecycle.
// notifier may be nil, in which case no welcome mail is queued.
func NewAuthService(repo user.Repository, tokens *jwt.Manager, mailer email.EmailService, notifier user.Notifier) user.AuthService {
	return newAuthService(repo, tokens, mailer, notifier, defaultBcryptCost, time.Now)
}

func newAuthService(repo user.Repository, tokens *jwt.Manager, mailer email.EmailService, notifier user.Notifier, cost int, now func() time.Time) *authService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}

	return &authService{
		repo:      repo,
		tokens:    tokens,
		mailer:    mailer,
		notifier:  notifier,
		cost:      cost,
		now:       now,
		dummyHash: dummy,
	}
}

// ========================================
// SIGNUP / LOGIN
// ========================================

func (s *authService) Signup(ctx context.Context, req user.SignupRequest, accountURL string) (*user.Session, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. HASH PASSWORD
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := user.RoleUser
	if req.Role != "" {
		role = user.Role(req.Role)
	}

	// 3. PERSIST
	u := &user.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        user.NormalizeEmail(req.Email),
		Photo:        "default.jpg",
		Role:         role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, user.MapError(err)
	}

	// 4. WELCOME MAIL (best effort)
	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, u.Email, u.Name, accountURL); err != nil {
			logger.Warn("welcome email not queued", map[string]interface{}{
				"user_id": u.ID.String(),
				"error":   err.Error(),
			})
		}
	}

	// 5. ISSUE TOKEN
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, req user.LoginRequest) (*user.Session, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, user.ErrMissingCredentials
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.checkPassword(u, req.Password) {
		return nil, user.ErrInvalidCredentials
	}

	return s.session(u)
}

// ========================================
// TOKEN CHECK
// ========================================

func (s *authService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, user.ErrNotLoggedIn
	}

	// 1. VERIFY SIGNATURE AND EXPIRY
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ExpiredToken()
		}
		return nil, apperror.InvalidToken()
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	// 2. USER STILL EXISTS
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrUserGone
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 3. PASSWORD NOT CHANGED SINCE ISSUE
	if u.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, user.ErrPasswordChanged
	}

	return u, nil
}

// ========================================
// PASSWORD LIFECYCLE
// ========================================

func (s *authService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest, resetURL string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.ErrNoUserWithEmail
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	hashed := hashResetToken(token)
	expires := s.now().Add(resetTokenTTL)

	if err := s.repo.SetResetToken(ctx, u.ID, &hashed, &expires); err != nil {
		return user.MapError(err)
	}

	msg := email.PasswordResetEmail(u.Email, u.Name, strings.TrimSuffix(resetURL, "/")+"/"+token)
	if err := s.mailer.Send(ctx, msg); err != nil {
		if clearErr := s.repo.SetResetToken(ctx, u.ID, nil, nil); clearErr != nil {
			logger.Error("failed to clear reset token", clearErr)
		}
		return apperror.Internal("There was an error sending the email. Try again later!", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req user.ResetPasswordRequest) (*user.Session, error) {
	u, err := s.repo.FindByResetToken(ctx, hashResetToken(token), s.now())
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, apperror.InvalidResetToken()
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.setPassword(ctx, u, req.Password); err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, req user.UpdatePasswordRequest) (*user.Session, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrUserGone
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.checkPassword(u, req.PasswordCurrent) {
		return nil, user.ErrWrongPassword
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.setPassword(ctx, u, req.Password); err != nil {
		return nil, err
	}
	return s.session(u)
}

// ========================================
// HELPERS
// ========================================

func (s *authService) setPassword(ctx context.Context, u *user.User, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	changedAt := s.now().Add(-passwordChangeSkew)
	if err := s.repo.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return user.MapError(err)
	}

	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return nil
}

func (s *authService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) checkPassword(u *user.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}

func (s *authService) session(u *user.User) (*user.Session, error) {
	token, err := s.tokens.Sign(u.ID.String())
	if err != nil {
		return nil, err
	}
	return &user.Session{Token: token, User: u}, nil
}

// generateResetToken returns 32 random bytes, hex encoded. Only its sha256
// digest is stored.
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

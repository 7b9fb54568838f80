package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/auth"
	apperrors "coursehub/internal/errors"
	"coursehub/internal/metrics"
	"coursehub/internal/model"
	"coursehub/internal/repository"
)

const (
	opSignup = "signup"
	opLogin  = "login"

	// Hashed once and verified against when a username is unknown, so both
	// failure paths cost one bcrypt comparison.
	timingEqualizer = "coursehub-unknown-account"
)

// AuthService handles signup, login and logout for both roles.
type AuthService interface {
	// Signup creates an account and returns the role's login path. No session is created.
	Signup(ctx context.Context, role model.Role, username, password, email string) (redirect string, err error)
	// Login verifies credentials, retires previousToken and returns a fresh
	// session bound to the role payload together with the role's home path.
	Login(ctx context.Context, role model.Role, previousToken, username, password string) (sess *auth.Session, redirect string, err error)
	// Logout destroys the session behind token.
	Logout(ctx context.Context, token string) error
}

type authService struct {
	accountRepo  repository.AccountRepository
	hasher       auth.Hasher
	sessions     auth.SessionManagerInterface
	logger       *zap.Logger
	storeTimeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	accountRepo repository.AccountRepository,
	hasher auth.Hasher,
	sessions auth.SessionManagerInterface,
	logger *zap.Logger,
	storeTimeout time.Duration,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		accountRepo:  accountRepo,
		hasher:       hasher,
		sessions:     sessions,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// Signup hashes the password, then inserts the account.
func (s *authService) Signup(ctx context.Context, role model.Role, username, password, email string) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	log := s.logger.With(zap.String("role", role.String()), zap.String("username", username))

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("hash password", zap.Error(err))
		metrics.RecordAuth(role.String(), opSignup, metrics.OutcomeError)
		return "", err
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: hashed,
		Email:        email,
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.accountRepo.Create(storeCtx, role, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateAccount) {
			log.Info("signup rejected: username taken")
			metrics.RecordAuth(role.String(), opSignup, metrics.OutcomeRejected)
			return "", apperrors.ErrDuplicateAccount
		}
		log.Error("create account", zap.Error(err))
		metrics.RecordAuth(role.String(), opSignup, metrics.OutcomeError)
		return "", fmt.Errorf("%w: create account: %w", apperrors.ErrStore, err)
	}

	log.Info("account created", zap.Uint("account_id", account.ID))
	metrics.RecordAuth(role.String(), opSignup, metrics.OutcomeSuccess)
	return role.LoginPath(), nil
}

// Login looks the account up, verifies the password, then rotates the session.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, role model.Role, previousToken, username, password string) (*auth.Session, string, error) {
	if !role.Valid() {
		return nil, "", fmt.Errorf("unknown role %q", role)
	}
	log := s.logger.With(zap.String("role", role.String()), zap.String("username", username))

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	account, err := s.accountRepo.FindByUsername(storeCtx, role, username)
	cancel()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.equalizeTiming(password)
		log.Info("login rejected: unknown account")
		metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeRejected)
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		log.Error("find account", zap.Error(err))
		metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeError)
		return nil, "", fmt.Errorf("%w: find account: %w", apperrors.ErrStore, err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		log.Error("verify password", zap.Error(err))
		metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeError)
		return nil, "", err
	}
	if !ok {
		log.Info("login rejected: wrong password")
		metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeRejected)
		return nil, "", apperrors.ErrInvalidCredentials
	}

	bindCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	payload := auth.Payload{Role: role, AccountID: account.ID, Username: account.Username}
	sess, err := s.sessions.Rotate(bindCtx, previousToken, payload)
	if err != nil {
		log.Error("rotate session", zap.Error(err))
		metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeError)
		return nil, "", fmt.Errorf("%w: %w", apperrors.ErrStore, err)
	}

	log.Info("login succeeded", zap.Uint("account_id", account.ID))
	metrics.RecordAuth(role.String(), opLogin, metrics.OutcomeSuccess)
	return sess, role.HomePath(), nil
}

// Logout destroys the session. Logging out twice is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.sessions.Destroy(storeCtx, token); err != nil {
		s.logger.Error("destroy session", zap.Error(err))
		return fmt.Errorf("%w: %w", apperrors.ErrStore, err)
	}
	metrics.RecordLogout()
	return nil
}

func (s *authService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(timingEqualizer)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

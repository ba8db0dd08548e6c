package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/domain"
	"github.com/spec-kit/task-tracker/internal/repository"
	apperrors "github.com/spec-kit/task-tracker/pkg/util/errorutil"
)

// LoginResult is returned by a successful credential exchange.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
}

// AuthService exchanges a name and secret for a bearer token.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	TokenTTL   time.Duration
	BcryptCost int
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	ttl := deps.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.Tokens,
		tokenTTL:   ttl,
		bcryptCost: deps.BcryptCost,
		logger:     logger.Named("auth"),
	}
}

// Login verifies the secret and issues a token whose subject is the principal name.
// Unknown names and wrong secrets fail identically.
func (s *AuthService) Login(ctx context.Context, name, secret string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || secret == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	principal, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.BurnCompare(secret, s.bcryptCost)
			s.logger.Info("login rejected", zap.String("reason", "unknown_user"))
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	ok, err := auth.VerifyPassword(principal.SecretHash, secret)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		s.logger.Info("login rejected", zap.String("reason", "bad_secret"))
		return nil, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := s.tokenMgr.Issue(principal.Name, s.tokenTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Principal: principal, Token: token, ExpiresAt: expiresAt}, nil
}

// Register provisions a principal. Used by the demo seeder; there is no public sign-up route.
func (s *AuthService) Register(ctx context.Context, name, email, secret string, role domain.Role) (*domain.Principal, error) {
	hash, err := auth.HashPassword(secret, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	principal := &domain.Principal{
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
		SecretHash: hash,
		Role:       role,
	}
	if err := s.users.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewValidationError("username already taken", map[string]any{"username": name})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	return principal, nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/repository"
	"github.com/gotodo/gotodo/internal/security"
	"github.com/gotodo/gotodo/internal/token"
)

// TokenTypeBearer is reported in AuthTokens.TokenType.
const TokenTypeBearer = "Bearer"

// AuthService defines the interface for sign-in and token checks.
type AuthService interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Authenticate(ctx context.Context, accessToken string) (int64, error)
}

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	users  repository.UserRepository
	hasher *security.PasswordHasher
	tokens *token.Manager

	// compared against when the email is unknown so both paths cost a bcrypt run
	dummyHash string
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(users repository.UserRepository, hasher *security.PasswordHasher, tokens *token.Manager) *AuthServiceImpl {
	dummy, _ := hasher.Hash("gotodo-placeholder-password")
	return &AuthServiceImpl{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
	}
}

// SignIn checks the credentials and issues a token pair.
func (s *AuthServiceImpl) SignIn(ctx context.Context, creds models.Credentials) (*models.AuthTokens, error) {
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := creds.Validate(); err != nil {
		metrics.RecordSignIn(metrics.SignInInvalid)
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, creds.Password)
			metrics.RecordSignIn(metrics.SignInFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		metrics.RecordSignIn(metrics.SignInFailure)
		if errors.Is(err, security.ErrPasswordMismatch) || errors.Is(err, security.ErrEmptyPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	tokens, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	metrics.RecordSignIn(metrics.SignInSuccess)
	return tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userID, err := s.verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(userID)
}

// Authenticate returns the user id carried by a valid access token.
func (s *AuthServiceImpl) Authenticate(_ context.Context, accessToken string) (int64, error) {
	return s.verify(accessToken, token.TypeAccess)
}

func (s *AuthServiceImpl) verify(raw, typ string) (int64, error) {
	if raw == "" {
		return 0, ErrUnauthorized
	}
	claims, err := s.tokens.Verify(raw, typ)
	if err != nil {
		return 0, errors.Join(ErrUnauthorized, err)
	}
	return claims.UserID()
}

func (s *AuthServiceImpl) issue(userID int64) (*models.AuthTokens, error) {
	pair, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &models.AuthTokens{
		Token:        pair.AccessToken,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/token"
)

func newAuthService(t *testing.T, repo *MockUserRepository) (*AuthServiceImpl, *token.Manager) {
	t.Helper()
	tokens, err := token.NewManager(token.Config{Secret: "test-secret", Issuer: "gotodo-test"})
	require.NoError(t, err)
	return NewAuthService(repo, testHasher(), tokens), tokens
}

func TestAuthService_SignIn(t *testing.T) {
	repo := &MockUserRepository{}
	svc, tokens := newAuthService(t, repo)

	hash, err := testHasher().Hash("testpassword123")
	require.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "test@example.com").
		Return(&models.User{ID: 42, Email: "test@example.com", PasswordHash: hash}, nil)

	before := testutil.ToFloat64(metrics.SignInsTotal.WithLabelValues(metrics.SignInSuccess))

	out, err := svc.SignIn(context.Background(), models.Credentials{Email: " Test@Example.com ", Password: "testpassword123"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, out.Token, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, TokenTypeBearer, out.TokenType)
	assert.Equal(t, int64(3600), out.ExpiresIn)

	claims, err := tokens.Verify(out.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SignInsTotal.WithLabelValues(metrics.SignInSuccess)))
}

func TestAuthService_SignInFailures(t *testing.T) {
	hash, err := testHasher().Hash("testpassword123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   models.Credentials
		setup   func(m *MockUserRepository)
		wantErr error
	}{
		{
			name:  "wrong password",
			creds: models.Credentials{Email: "test@example.com", Password: "nope-nope"},
			setup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "test@example.com").Return(&models.User{ID: 1, PasswordHash: hash}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "unknown email",
			creds: models.Credentials{Email: "ghost@example.com", Password: "testpassword123"},
			setup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "missing password",
			creds:   models.Credentials{Email: "test@example.com"},
			setup:   func(*MockUserRepository) {},
			wantErr: models.ErrValidation,
		},
		{
			name:  "repository failure",
			creds: models.Credentials{Email: "test@example.com", Password: "x"},
			setup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockUserRepository{}
			tt.setup(repo)
			svc, _ := newAuthService(t, repo)

			out, err := svc.SignIn(context.Background(), tt.creds)
			assert.Nil(t, out)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := &MockUserRepository{}
	svc, tokens := newAuthService(t, repo)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&models.User{ID: 5}, nil)
	repo.On("GetByID", mock.Anything, int64(6)).Return(nil, models.ErrUserNotFound)

	pair, err := tokens.Issue(5)
	require.NoError(t, err)

	out, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, token.ErrWrongType)

	gone, err := tokens.Issue(6)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), gone.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, tokens := newAuthService(t, &MockUserRepository{})

	pair, err := tokens.Issue(9)
	require.NoError(t, err)

	id, err := svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	_, err = svc.Authenticate(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other, err := token.NewManager(token.Config{Secret: "other-secret", Issuer: "gotodo-test", AccessTTL: time.Minute})
	require.NoError(t, err)
	forged, err := other.Issue(9)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), forged.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

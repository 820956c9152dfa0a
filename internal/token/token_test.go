package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: "test-secret", Issuer: "gotodo"})
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	_, err := NewManager(Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	m := newTestManager(t)
	assert.Equal(t, time.Hour, m.AccessTTL())
	assert.Equal(t, 30*24*time.Hour, m.refreshTTL)
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := newTestManager(t)

	pair, err := m.Issue(42)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, time.Hour, pair.ExpiresIn)
	assert.Len(t, strings.Split(pair.AccessToken, "."), 3)

	claims, err := m.Verify(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "gotodo", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	claims, err = m.Verify(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestManager_WrongType(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.Issue(1)
	require.NoError(t, err)

	_, err = m.Verify(pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = m.Verify(pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := m.Issue(1)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrExpired)

	// refresh token is still within its 30 days
	_, err = m.Verify(pair.RefreshToken, TypeRefresh)
	assert.NoError(t, err)
}

func TestManager_Invalid(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{Secret: "other-secret", Issuer: "gotodo"})
	require.NoError(t, err)
	foreign, err := other.Issue(1)
	require.NoError(t, err)

	otherIssuer, err := NewManager(Config{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)
	wrongIss, err := otherIssuer.Issue(1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Type: TypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-jwt",
		"empty":          "",
		"wrong secret":   foreign.AccessToken,
		"wrong issuer":   wrongIss.AccessToken,
		"alg none":       unsigned,
		"mock-jwt-token": "mock-jwt-token",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(raw, TypeAccess)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestManager_BadSubject(t *testing.T) {
	m := newTestManager(t)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gotodo",
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Type: TypeAccess,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

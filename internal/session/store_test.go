package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/gotodo/internal/storage"
	"github.com/gotodo/gotodo/pkg/logger"
)

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(ctx, st)

	assert.Equal(t, "", store.Token())
	assert.False(t, store.IsLoggedIn())

	require.NoError(t, store.SignIn(ctx, "mock-jwt-token"))
	assert.Equal(t, "mock-jwt-token", store.Token())
	assert.True(t, store.IsLoggedIn())

	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, "", store.Token())
	assert.False(t, store.IsLoggedIn())
}

func TestStore_SignInPersists(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(ctx, st)

	require.NoError(t, store.SignIn(ctx, "mock-jwt-token"))

	raw, ok, err := st.GetItem(ctx, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	persisted, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "mock-jwt-token", persisted.Token())
	assert.True(t, persisted.IsLoggedIn())
}

func TestStore_LogoutRemovesEntry(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(ctx, st)

	require.NoError(t, store.SignIn(ctx, "mock-jwt-token"))
	require.NoError(t, store.Logout(ctx))

	_, ok, err := st.GetItem(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len())
}

func TestStore_LogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStorage())

	require.NoError(t, store.SignIn(ctx, "mock-jwt-token"))
	require.NoError(t, store.Logout(ctx))
	once := store.Snapshot()

	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, once, store.Snapshot())
	assert.False(t, store.IsLoggedIn())
}

func TestStore_LogoutWhenLoggedOutClearsStaleEntry(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(ctx, st)

	stale, err := Encode(New("written-by-another-process"))
	require.NoError(t, err)
	require.NoError(t, st.SetItem(ctx, DefaultKey, stale))

	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, 0, st.Len())
}

func TestStore_SignInEmptyToken(t *testing.T) {
	ctx := context.Background()
	m := &MockStorage{}
	m.On("GetItem", mock.Anything, DefaultKey).Return("", false, nil)

	store := NewStore(ctx, m)
	err := store.SignIn(ctx, "")

	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, store.IsLoggedIn())
	m.AssertNotCalled(t, "SetItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_Rehydrates(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	first := NewStore(ctx, st)
	require.NoError(t, first.SignIn(ctx, "mock-jwt-token"))

	second := NewStore(ctx, st)
	assert.Equal(t, "mock-jwt-token", second.Token())
	assert.True(t, second.IsLoggedIn())
}

func TestStore_RehydrateFallsBackToLoggedOut(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *MockStorage)
	}{
		{
			name: "absent entry",
			setup: func(m *MockStorage) {
				m.On("GetItem", mock.Anything, DefaultKey).Return("", false, nil)
			},
		},
		{
			name: "corrupt entry",
			setup: func(m *MockStorage) {
				m.On("GetItem", mock.Anything, DefaultKey).Return("{garbage", true, nil)
			},
		},
		{
			name: "storage failure",
			setup: func(m *MockStorage) {
				m.On("GetItem", mock.Anything, DefaultKey).Return("", false, errBackend)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockStorage{}
			tt.setup(m)

			store := NewStore(context.Background(), m)

			assert.False(t, store.IsLoggedIn())
			assert.Equal(t, "", store.Token())
			m.AssertExpectations(t)
		})
	}
}

func TestStore_RehydrateLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	m := &MockStorage{}
	m.On("GetItem", mock.Anything, DefaultKey).Return("{garbage", true, nil)

	NewStore(context.Background(), m, WithLogger(logger.New(&buf, "warn")))

	assert.Contains(t, buf.String(), "persisted session unreadable")
}

func TestStore_SignInStorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	m := &MockStorage{}
	m.On("GetItem", mock.Anything, DefaultKey).Return("", false, nil)
	m.On("SetItem", mock.Anything, DefaultKey, mock.Anything).Return(errBackend)

	store := NewStore(ctx, m)
	err := store.SignIn(ctx, "mock-jwt-token")

	assert.Same(t, errBackend, err)
	assert.False(t, store.IsLoggedIn())
}

func TestStore_LogoutStorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	value, err := Encode(New("mock-jwt-token"))
	require.NoError(t, err)

	m := &MockStorage{}
	m.On("GetItem", mock.Anything, DefaultKey).Return(value, true, nil)
	m.On("RemoveItem", mock.Anything, DefaultKey).Return(errBackend)

	store := NewStore(ctx, m)
	require.True(t, store.IsLoggedIn())

	err = store.Logout(ctx)
	assert.Same(t, errBackend, err)
	assert.Equal(t, "mock-jwt-token", store.Token())
}

func TestStore_WithKey(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	store := NewStore(ctx, st, WithKey("custom-key"))

	assert.Equal(t, "custom-key", store.Key())
	require.NoError(t, store.SignIn(ctx, "tok"))

	_, ok, err := st.GetItem(ctx, "custom-key")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = st.GetItem(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, DefaultKey, NewStore(ctx, st, WithKey("")).Key())
}

func TestStore_Reload(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	a := NewStore(ctx, st)
	b := NewStore(ctx, st)

	require.NoError(t, a.SignIn(ctx, "from-a"))
	assert.False(t, b.IsLoggedIn())

	require.NoError(t, b.Reload(ctx))
	assert.Equal(t, "from-a", b.Token())

	require.NoError(t, a.Logout(ctx))
	require.NoError(t, b.Reload(ctx))
	assert.False(t, b.IsLoggedIn())

	require.NoError(t, st.SetItem(ctx, DefaultKey, "{broken"))
	assert.ErrorIs(t, b.Reload(ctx), ErrUnreadable)
	assert.False(t, b.IsLoggedIn())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStorage())
	require.NoError(t, store.SignIn(ctx, "first"))

	snap := store.Snapshot()
	require.NoError(t, store.SignIn(ctx, "second"))

	assert.Equal(t, "first", snap.Token())
	assert.Equal(t, "second", store.Token())
}

func TestStore_SignInDoesNotLogRawToken(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStorage(), WithLogger(logger.New(&buf, "debug")))

	require.NoError(t, store.SignIn(ctx, "eyJhbGciOiJIUzI1NiJ9.secret-payload.sig"))

	assert.Contains(t, buf.String(), "signed in")
	assert.NotContains(t, buf.String(), "secret-payload")
}

func TestStore_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, storage.NewMemoryStorage())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				if (i+j)%2 == 0 {
					_ = store.SignIn(ctx, "tok")
				} else {
					_ = store.Logout(ctx)
				}
				s := store.Snapshot()
				if s.IsLoggedIn() != (s.Token() != "") {
					t.Errorf("invariant broken: %+v", s)
				}
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestStore_RecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := NewStore(ctx, storage.NewFileStorage(path))
	assert.False(t, store.IsLoggedIn())

	require.NoError(t, store.SignIn(ctx, "mock-jwt-token"))
	assert.True(t, store.IsLoggedIn())

	reopened := NewStore(ctx, storage.NewFileStorage(path))
	assert.Equal(t, "mock-jwt-token", reopened.Token())

	require.NoError(t, reopened.Logout(ctx))
	assert.False(t, NewStore(ctx, storage.NewFileStorage(path)).IsLoggedIn())
}

func TestStore_LogoutClearsCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := NewStore(ctx, storage.NewFileStorage(path))
	require.NoError(t, store.Logout(ctx))

	_, _, err := storage.NewFileStorage(path).GetItem(ctx, DefaultKey)
	assert.NoError(t, err)
}

// Package session holds the client's authentication state: the bearer token
// obtained at sign-in and the logged-in flag derived from it.
//
// State transitions are pure functions on Session that return the next value
// together with an Effect describing the persistence write. Store applies the
// effect to a storage.Storage and only then commits the new state.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotodo/gotodo/internal/storage"
)

// DefaultKey is the storage key the session is persisted under.
const DefaultKey = "auth-storage"

// ErrEmptyToken is returned when signing in with an empty token.
var ErrEmptyToken = errors.New("session token cannot be empty")

// Session is a read-only snapshot of the authentication state. The zero
// value is logged out.
type Session struct {
	token string
}

// New returns a logged-in session for token, or the zero session if token
// is empty.
func New(token string) Session {
	return Session{token: token}
}

// Token returns the bearer token, or "" when logged out.
func (s Session) Token() string {
	return s.token
}

// HasToken reports whether a token is present.
func (s Session) HasToken() bool {
	return s.token != ""
}

// IsLoggedIn is true exactly when a token is present.
func (s Session) IsLoggedIn() bool {
	return s.HasToken()
}

// SignIn returns the session holding token and the effect that persists it.
func (s Session) SignIn(token string, key string) (Session, Effect, error) {
	if token == "" {
		return s, Effect{}, ErrEmptyToken
	}
	next := Session{token: token}
	value, err := Encode(next)
	if err != nil {
		return s, Effect{}, err
	}
	return next, Effect{Op: OpSet, Key: key, Value: value}, nil
}

// Logout returns the logged-out session and the effect that removes the
// persisted entry. It is the same from any starting state.
func (s Session) Logout(key string) (Session, Effect) {
	return Session{}, Effect{Op: OpRemove, Key: key}
}

// Op is the kind of persistence write an Effect performs.
type Op int

const (
	// OpNone performs no write.
	OpNone Op = iota
	// OpSet stores Value under Key.
	OpSet
	// OpRemove deletes Key.
	OpRemove
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpRemove:
		return "remove"
	default:
		return "none"
	}
}

// Effect is a persistence write produced by a state transition.
type Effect struct {
	Op    Op
	Key   string
	Value string
}

// Apply performs the write against st. Storage errors are returned as is.
func (e Effect) Apply(ctx context.Context, st storage.Storage) error {
	switch e.Op {
	case OpNone:
		return nil
	case OpSet:
		return st.SetItem(ctx, e.Key, e.Value)
	case OpRemove:
		return st.RemoveItem(ctx, e.Key)
	default:
		return fmt.Errorf("unknown session effect op %d", e.Op)
	}
}

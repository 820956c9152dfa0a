package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EnvelopeVersion is written with every persisted session.
const EnvelopeVersion = 0

// ErrUnreadable is returned by Decode when a persisted value cannot be used.
var ErrUnreadable = errors.New("persisted session is unreadable")

// envelope is the persisted form:
//
//	{"state":{"token":"...","isLoggedIn":true},"version":0}
type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Token      *string `json:"token"`
	IsLoggedIn bool    `json:"isLoggedIn"`
}

// Encode renders s in the persisted format. Both fields are written.
func Encode(s Session) (string, error) {
	env := envelope{Version: EnvelopeVersion}
	if s.HasToken() {
		tok := s.token
		env.State.Token = &tok
	}
	env.State.IsLoggedIn = s.IsLoggedIn()

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted value. The token is authoritative: a stored
// isLoggedIn flag that disagrees with it is ignored. A newer envelope
// version is rejected.
func Decode(value string) (Session, error) {
	var env envelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if env.Version > EnvelopeVersion {
		return Session{}, fmt.Errorf("%w: unsupported version %d", ErrUnreadable, env.Version)
	}
	if env.State.Token == nil {
		return Session{}, nil
	}
	return Session{token: *env.State.Token}, nil
}

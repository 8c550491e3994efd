// Package session tracks who is signed in and guards the protected routes.
//
// A Session mirrors the API client tokens into a State, verifying them
// against the backend profile endpoint. A Guard decides where a route
// request must be redirected, and Middleware applies it to HTTP handlers
// using the auth_token cookie.
package session

import (
	"context"
	"sync"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/spectra"
	"github.com/go-logr/logr"
)

// Authenticator is the part of the API client a Session drives.
type Authenticator interface {
	Token() string
	Login(ctx context.Context, creds aurora.Credentials) (*spectra.TokenPair, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*aurora.User, error)
}

// State is the authentication state of a session.
type State struct {
	User          *aurora.User
	Token         string
	Authenticated bool
}

// Session is the authentication state of a client.
type Session struct {
	auth Authenticator
	log  logr.Logger

	mu    sync.Mutex
	state State
}

// New returns a Session over auth. Its state is unknown until Check.
func New(auth Authenticator, log logr.Logger) *Session {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Session{auth: auth, log: log}
}

// State returns the last known state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) set(st State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return st
}

// Check verifies the current token against the backend.
//
// Without a token the session is anonymous. If the profile cannot be read,
// whatever the reason, the tokens are cleared and the session is anonymous.
// The returned error is only about clearing the tokens.
func (s *Session) Check(ctx context.Context) (State, error) {
	token := s.auth.Token()
	if token == "" {
		return s.set(State{}), nil
	}
	user, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Info("session rejected, signing out", "error", err.Error())
		st := s.set(State{})
		if lerr := s.auth.Logout(ctx); lerr != nil {
			return st, lerr
		}
		return st, nil
	}
	// Me may have refreshed the token.
	return s.set(State{User: user, Token: s.auth.Token(), Authenticated: true}), nil
}

// Login signs in and loads the user profile. It reports false with the
// reason when the credentials are refused.
func (s *Session) Login(ctx context.Context, creds aurora.Credentials) (bool, error) {
	if err := aurora.Validate(creds); err != nil {
		return false, err
	}
	if _, err := s.auth.Login(ctx, creds); err != nil {
		s.set(State{})
		return false, err
	}
	st, err := s.Check(ctx)
	if err != nil {
		return false, err
	}
	return st.Authenticated, nil
}

// Logout clears the tokens.
func (s *Session) Logout(ctx context.Context) error {
	s.set(State{})
	return s.auth.Logout(ctx)
}

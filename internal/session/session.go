// Package session implements the per-connection authentication state
// machine: Unauthed until AUTH succeeds, then Authed(identity) for the rest
// of the connection's lifetime.
package session

import (
	"errors"
	"sync"
)

// ErrAuthenticationRequired is returned by RequireAuth when the session has
// not yet completed a successful AUTH.
var ErrAuthenticationRequired = errors.New("Authentication required")

// commandsAllowedUnauthed is the fixed set of commands permitted before
// AUTH succeeds.
var commandsAllowedUnauthed = map[string]bool{
	"AUTH": true,
	"PING": true,
	"ECHO": true,
	"HELP": true,
}

// Session holds one connection's authentication state: whether AUTH has
// succeeded, and if so, the resulting identity. current_identity is either
// absent (Unauthed) or an identity with a UserStore in the MemoryStore
// (Authed); callers that set it are responsible for creating the UserStore.
type Session struct {
	mu       sync.RWMutex
	identity string
	authed   bool
}

// New constructs a fresh Unauthed session.
func New() *Session {
	return &Session{}
}

// Authenticate transitions the session to Authed(identity). Called only
// after AUTH has verified credentials.
func (s *Session) Authenticate(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.authed = true
}

// Identity returns the current identity and whether the session is
// authenticated.
func (s *Session) Identity() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.authed
}

// IsAllowedUnauthenticated reports whether commandName may run before AUTH
// succeeds. PING, ECHO, HELP, and AUTH itself are permitted in all states;
// every other command requires authentication.
func IsAllowedUnauthenticated(commandName string) bool {
	return commandsAllowedUnauthed[commandName]
}

// RequireAuth returns ErrAuthenticationRequired unless the session is
// authenticated. State-changing or identity-scoped handlers call this
// before touching the memory store.
func (s *Session) RequireAuth() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authed {
		return ErrAuthenticationRequired
	}
	return nil
}

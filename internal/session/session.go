package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/model"
)

// AuthError indicates invalid credentials or an expired session. The
// holder must re-login; no other recovery applies.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Storage persists the durable session triple (token, role, email) as a
// unit: all three written together, all three cleared together.
type Storage interface {
	Read() (token, role, email string, err error)
	Write(token, role, email string) error
	Clear() error
}

// Authenticator exchanges credentials for a token. The API client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.LoginResponse, error)
}

// Store owns the authenticated session: the current identity and its
// credential token. Identity is non-nil iff the token is non-empty.
type Store struct {
	mu           sync.Mutex
	storage      Storage
	identity     *model.Identity
	token        string
	initializing bool
	log          *zap.Logger
}

// New creates a session store backed by the given durable storage. The
// store reports initializing until Restore has run.
func New(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		storage:      storage,
		initializing: true,
		log:          log,
	}
}

// Restore reconstructs the session from durable storage. It completes
// synchronously from local state and clears the initializing flag
// exactly once; calling it again is a no-op. A partial triple leaves
// the session empty.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initializing {
		return
	}
	s.initializing = false

	token, role, email, err := s.storage.Read()
	if err != nil {
		s.log.Warn("reading stored session", zap.Error(err))
		return
	}
	if token == "" || role == "" || email == "" {
		return
	}

	s.token = token
	s.identity = &model.Identity{Email: email, Role: model.Role(role)}
	s.log.Info("session restored", zap.String("email", email), zap.String("role", role))
}

// Login authenticates against the service and, on success, stores the
// identity and token atomically. On failure the prior session state is
// untouched and an *AuthError is returned.
func (s *Store) Login(ctx context.Context, auth Authenticator, email, password string) error {
	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		if IsAuthError(err) {
			return err
		}
		return &AuthError{Message: err.Error()}
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.identity = &model.Identity{Email: resp.Email, Role: resp.Role}
	s.mu.Unlock()

	// The in-memory session is established even when persistence fails;
	// the operator just has to log in again after a restart.
	if err := s.storage.Write(resp.AccessToken, string(resp.Role), resp.Email); err != nil {
		s.log.Warn("persisting session", zap.Error(err))
	}

	s.log.Info("logged in", zap.String("email", resp.Email), zap.String("role", string(resp.Role)))
	return nil
}

// Logout clears the identity, token, and durable triple. It is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.log.Warn("clearing stored session", zap.Error(err))
	}
}

// Identity returns a copy of the current identity, or nil when
// unauthenticated.
func (s *Store) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Token returns the current credential token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a session is established.
func (s *Store) Authenticated() bool {
	return s.Identity() != nil
}

// Initializing reports whether Restore has not yet run, so consumers
// can distinguish "not yet determined" from "determined, unauthenticated".
func (s *Store) Initializing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializing
}

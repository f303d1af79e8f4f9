package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/model"
)

// fakeStorage is an in-memory Storage that records calls.
type fakeStorage struct {
	token, role, email string
	readErr            error
	writeErr           error
	reads              int
	writes             int
	clears             int
}

func (f *fakeStorage) Read() (string, string, string, error) {
	f.reads++
	if f.readErr != nil {
		return "", "", "", f.readErr
	}
	return f.token, f.role, f.email, nil
}

func (f *fakeStorage) Write(token, role, email string) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.token, f.role, f.email = token, role, email
	return nil
}

func (f *fakeStorage) Clear() error {
	f.clears++
	f.token, f.role, f.email = "", "", ""
	return nil
}

// fakeAuth returns a canned login response or error.
type fakeAuth struct {
	resp model.LoginResponse
	err  error
}

func (f fakeAuth) Login(_ context.Context, _, _ string) (model.LoginResponse, error) {
	return f.resp, f.err
}

func TestLoginThenRestoreRoundTrips(t *testing.T) {
	storage := &fakeStorage{}
	s := New(storage, nil)
	s.Restore()

	auth := fakeAuth{resp: model.LoginResponse{
		AccessToken: "tok-123",
		Email:       "op@example.com",
		Role:        model.RoleAdmin,
	}}
	require.NoError(t, s.Login(context.Background(), auth, "op@example.com", "pw"))

	assert.Equal(t, "tok-123", s.Token())
	require.NotNil(t, s.Identity())
	assert.Equal(t, "op@example.com", s.Identity().Email)
	assert.Equal(t, model.RoleAdmin, s.Identity().Role)

	// A fresh store restores the identity exactly from the same storage.
	restored := New(storage, nil)
	assert.True(t, restored.Initializing())
	restored.Restore()
	assert.False(t, restored.Initializing())

	require.NotNil(t, restored.Identity())
	assert.Equal(t, "op@example.com", restored.Identity().Email)
	assert.Equal(t, model.RoleAdmin, restored.Identity().Role)
	assert.Equal(t, "tok-123", restored.Token())
}

func TestRestoreIgnoresPartialTriple(t *testing.T) {
	tests := []struct {
		name    string
		storage *fakeStorage
	}{
		{"empty", &fakeStorage{}},
		{"token only", &fakeStorage{token: "tok"}},
		{"missing email", &fakeStorage{token: "tok", role: "user"}},
		{"missing token", &fakeStorage{role: "user", email: "a@b.com"}},
		{"read error", &fakeStorage{readErr: errors.New("keyring locked")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.storage, nil)
			s.Restore()

			assert.False(t, s.Initializing())
			assert.Nil(t, s.Identity())
			assert.Empty(t, s.Token())
			assert.False(t, s.Authenticated())
		})
	}
}

func TestRestoreRunsOnce(t *testing.T) {
	storage := &fakeStorage{token: "tok", role: "user", email: "a@b.com"}
	s := New(storage, nil)

	s.Restore()
	s.Restore()

	assert.Equal(t, 1, storage.reads)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	storage := &fakeStorage{token: "old", role: "user", email: "old@b.com"}
	s := New(storage, nil)
	s.Restore()

	err := s.Login(context.Background(), fakeAuth{err: &AuthError{Message: "invalid credentials"}}, "a", "b")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	// Prior session survives a failed login.
	assert.Equal(t, "old", s.Token())
	require.NotNil(t, s.Identity())
	assert.Equal(t, "old@b.com", s.Identity().Email)
	assert.Equal(t, 0, storage.writes)
}

func TestLoginWrapsTransportFailure(t *testing.T) {
	s := New(&fakeStorage{}, nil)
	s.Restore()

	err := s.Login(context.Background(), fakeAuth{err: errors.New("dial tcp: connection refused")}, "a", "b")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Nil(t, s.Identity())
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	storage := &fakeStorage{}
	s := New(storage, nil)
	s.Restore()

	auth := fakeAuth{resp: model.LoginResponse{AccessToken: "tok", Email: "a@b.com", Role: model.RoleUser}}
	require.NoError(t, s.Login(context.Background(), auth, "a@b.com", "pw"))
	require.True(t, s.Authenticated())

	s.Logout()
	s.Logout()

	assert.Nil(t, s.Identity())
	assert.Empty(t, s.Token())
	assert.Equal(t, 2, storage.clears)

	// All three durable fields go together.
	token, role, email, err := storage.Read()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, role)
	assert.Empty(t, email)
}

func TestIsAuthErrorMatchesWrappedErrors(t *testing.T) {
	base := &AuthError{Message: "expired"}
	wrapped := fmt.Errorf("listing contacts: %w", base)

	assert.True(t, IsAuthError(wrapped))
	assert.False(t, IsAuthError(errors.New("plain")))
}

package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "sendlite"

// Keys under which the durable session triple is stored. The three are
// always written and cleared together.
const (
	keyToken = "token"
	keyRole  = "role"
	keyEmail = "email"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/sendlite/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("sendlite-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// getKey reads a single value, treating a missing key as empty.
func getKey(ring keyring.Keyring, key string) (string, error) {
	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// SessionStorage persists the login session triple (token, role, email)
// in the system keyring. It implements session.Storage.
type SessionStorage struct{}

// Read returns the stored triple. Missing keys read as empty strings so
// a partial or absent session is distinguishable without an error.
func (SessionStorage) Read() (token, role, email string, err error) {
	ring, err := openKeyring()
	if err != nil {
		return "", "", "", err
	}

	if token, err = getKey(ring, keyToken); err != nil {
		return "", "", "", err
	}
	if role, err = getKey(ring, keyRole); err != nil {
		return "", "", "", err
	}
	if email, err = getKey(ring, keyEmail); err != nil {
		return "", "", "", err
	}
	return token, role, email, nil
}

// Write stores all three fields. If any write fails the triple is
// cleared so no partial session survives.
func (s SessionStorage) Write(token, role, email string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	items := []keyring.Item{
		{Key: keyToken, Data: []byte(token)},
		{Key: keyRole, Data: []byte(role)},
		{Key: keyEmail, Data: []byte(email)},
	}
	for _, item := range items {
		if err := ring.Set(item); err != nil {
			_ = s.Clear()
			return fmt.Errorf("setting credential %q: %w", item.Key, err)
		}
	}
	return nil
}

// Clear removes all three fields. Missing keys are not an error, so
// Clear is idempotent.
func (SessionStorage) Clear() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	for _, key := range []string{keyToken, keyRole, keyEmail} {
		if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("deleting credential %q: %w", key, err)
		}
	}
	return nil
}

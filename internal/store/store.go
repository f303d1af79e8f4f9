package store

import (
	"context"

	"github.com/nhle/sendlite/internal/model"
)

// Store is the local snapshot of the last-fetched contact list. The
// server stays authoritative: every successful list fetch replaces the
// snapshot wholesale, and the snapshot only exists so the UI has data
// before the first fetch completes.
type Store interface {
	ReplaceContacts(ctx context.Context, contacts []model.Contact) error
	ListContacts(ctx context.Context) ([]model.Contact, error)
	Close() error
}

// Package directory holds the cached view of the contact list. The
// server is authoritative: each list fetch replaces the cache wholesale
// and filtering happens server-side, so consumers must treat the cache
// as already filtered.
package directory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/store"
)

// API is the slice of the gateway client the directory needs.
type API interface {
	ListContacts(ctx context.Context, status, query string) ([]model.Contact, error)
	CreateContact(ctx context.Context, in model.ContactInput) (model.Contact, error)
}

// Filter is the server-side filter for a contact listing.
type Filter struct {
	Status string
	Query  string
}

// Directory caches the last-fetched contact set. Responses arriving out
// of order are discarded via a fetch sequence number, so a stale listing
// can never overwrite a newer one.
type Directory struct {
	mu         sync.Mutex
	api        API
	snapshot   store.Store
	log        *zap.Logger
	cache      []model.Contact
	filter     Filter
	issuedSeq  uint64
	appliedSeq uint64
}

// New creates a directory backed by the given API client. snapshot may
// be nil when no local persistence is wanted (tests).
func New(api API, snapshot store.Store, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{api: api, snapshot: snapshot, log: log}
}

// LoadSnapshot seeds the cache from the local snapshot, giving the UI
// data before the first fetch completes. The next List replaces it.
func (d *Directory) LoadSnapshot(ctx context.Context) error {
	if d.snapshot == nil {
		return nil
	}
	contacts, err := d.snapshot.ListContacts(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.appliedSeq == 0 && len(d.cache) == 0 {
		d.cache = contacts
	}
	return nil
}

// List fetches the contact set for the given filter and replaces the
// cache. A response that was superseded by a newer fetch is discarded
// and the current cache returned instead.
func (d *Directory) List(ctx context.Context, f Filter) ([]model.Contact, error) {
	d.mu.Lock()
	d.issuedSeq++
	seq := d.issuedSeq
	d.filter = f
	d.mu.Unlock()

	contacts, err := d.api.ListContacts(ctx, f.Status, f.Query)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq <= d.appliedSeq {
		d.log.Debug("discarding superseded contact listing",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", d.appliedSeq),
		)
		return copyContacts(d.cache), nil
	}

	d.appliedSeq = seq
	d.cache = contacts
	d.persistLocked(contacts)

	return copyContacts(contacts), nil
}

// Refresh re-fetches using the last filter. Used after operations that
// change server state in ways the client cannot track (bulk validation,
// contact creation).
func (d *Directory) Refresh(ctx context.Context) ([]model.Contact, error) {
	return d.List(ctx, d.Filter())
}

// Create posts a new contact. The cache is deliberately not touched:
// callers re-fetch so server-computed fields (owner, status) stay
// consistent instead of being guessed locally.
func (d *Directory) Create(ctx context.Context, in model.ContactInput) (model.Contact, error) {
	in.Email = model.CanonicalEmail(in.Email)
	return d.api.CreateContact(ctx, in)
}

// ApplyValidation updates every cached contact whose canonical email
// matches the result's, and returns how many matched. Zero matches is
// fine: ad hoc validation of an unsaved address.
func (d *Directory) ApplyValidation(res model.ValidationResult) int {
	addr := model.CanonicalEmail(res.Email)
	if addr == "" {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	matched := 0
	for i := range d.cache {
		if model.CanonicalEmail(d.cache[i].Email) != addr {
			continue
		}
		d.cache[i].Status = res.Status
		d.cache[i].Reason = res.Reason
		d.cache[i].Provider = res.Provider
		matched++
	}

	if matched > 0 {
		d.persistLocked(d.cache)
	}
	return matched
}

// Contacts returns a copy of the cached contact set.
func (d *Directory) Contacts() []model.Contact {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyContacts(d.cache)
}

// ByID looks up a cached contact by id.
func (d *Directory) ByID(id int) (model.Contact, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.cache {
		if c.ID == id {
			return c, true
		}
	}
	return model.Contact{}, false
}

// Filter returns the filter of the most recent List call.
func (d *Directory) Filter() Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// persistLocked writes the cache to the local snapshot, best effort.
// Callers must hold d.mu.
func (d *Directory) persistLocked(contacts []model.Contact) {
	if d.snapshot == nil {
		return
	}
	if err := d.snapshot.ReplaceContacts(context.Background(), contacts); err != nil {
		d.log.Warn("persisting contact snapshot", zap.Error(err))
	}
}

func copyContacts(src []model.Contact) []model.Contact {
	out := make([]model.Contact, len(src))
	copy(out, src)
	return out
}

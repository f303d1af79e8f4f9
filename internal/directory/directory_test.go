package directory

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/tests/testutil"
)

// fakeAPI serves canned contact listings and records calls.
type fakeAPI struct {
	mu       sync.Mutex
	listings [][]model.Contact
	calls    int
	lastF    Filter
	err      error
	gate     chan struct{} // when set, the first List call blocks until closed
	created  []model.ContactInput
}

func (f *fakeAPI) ListContacts(_ context.Context, status, query string) ([]model.Contact, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.lastF = Filter{Status: status, Query: query}
	gate := f.gate
	err := f.err
	f.mu.Unlock()

	if gate != nil && call == 0 {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if call >= len(f.listings) {
		call = len(f.listings) - 1
	}
	return f.listings[call], nil
}

func (f *fakeAPI) CreateContact(_ context.Context, in model.ContactInput) (model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return model.Contact{ID: 99, Email: in.Email, Status: model.StatusNew}, nil
}

func contacts(emails ...string) []model.Contact {
	out := make([]model.Contact, len(emails))
	for i, e := range emails {
		out[i] = model.Contact{ID: i + 1, Email: e, Status: model.StatusNew}
	}
	return out
}

func TestListReplacesCacheWholesale(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{
		contacts("a@b.com", "c@d.com"),
		contacts("z@z.com"),
	}}
	d := New(api, nil, nil)

	first, err := d.List(context.Background(), Filter{Status: "new"})
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, Filter{Status: "new"}, api.lastF)

	// The second listing fully replaces the first; no merging.
	second, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "z@z.com", second[0].Email)
	assert.Len(t, d.Contacts(), 1)
}

func TestListErrorLeavesCacheUntouched(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{contacts("a@b.com")}}
	d := New(api, nil, nil)

	_, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)

	api.err = errors.New("server down")
	_, err = d.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.Len(t, d.Contacts(), 1)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{
		listings: [][]model.Contact{
			contacts("stale@b.com"),
			contacts("fresh@b.com"),
		},
		gate: gate,
	}
	d := New(api, nil, nil)

	// First request is issued but its response is held at the gate.
	firstDone := make(chan []model.Contact)
	go func() {
		got, err := d.List(context.Background(), Filter{})
		require.NoError(t, err)
		firstDone <- got
	}()

	// Wait for the first call to be in flight, then let a second,
	// newer request complete first.
	for {
		api.mu.Lock()
		inFlight := api.calls == 1
		api.mu.Unlock()
		if inFlight {
			break
		}
		runtime.Gosched()
	}

	second, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "fresh@b.com", second[0].Email)

	close(gate) // release the stale first request
	first := <-firstDone

	// The stale response is discarded: both callers see the newer set.
	require.Len(t, first, 1)
	assert.Equal(t, "fresh@b.com", first[0].Email)
	require.Len(t, d.Contacts(), 1)
	assert.Equal(t, "fresh@b.com", d.Contacts()[0].Email)
}

func TestCreateDoesNotTouchCache(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{contacts("a@b.com")}}
	d := New(api, nil, nil)

	_, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)

	created, err := d.Create(context.Background(), model.ContactInput{Email: "  New@X.COM "})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", created.Email)

	// The cache waits for the next refresh; no speculative insert.
	assert.Len(t, d.Contacts(), 1)
	require.Len(t, api.created, 1)
	assert.Equal(t, "new@x.com", api.created[0].Email)
}

func TestApplyValidationMatchesCanonicalEmailOnly(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{{
		{ID: 1, Email: "a@x.com", Status: model.StatusNew},
		{ID: 2, Email: "A@X.com", Status: model.StatusRisky},
		{ID: 3, Email: "other@x.com", Status: model.StatusNew},
	}}}
	d := New(api, nil, nil)
	_, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)

	matched := d.ApplyValidation(model.ValidationResult{
		Email:    "a@X.com",
		Status:   model.StatusValid,
		Provider: "gmail",
		Verdict:  "valid",
	})
	assert.Equal(t, 2, matched)

	for _, c := range d.Contacts() {
		switch c.ID {
		case 1, 2:
			assert.Equal(t, model.StatusValid, c.Status)
			assert.Equal(t, "gmail", c.Provider)
		case 3:
			assert.Equal(t, model.StatusNew, c.Status)
		}
	}
}

func TestApplyValidationWithNoMatchIsFine(t *testing.T) {
	d := New(&fakeAPI{listings: [][]model.Contact{contacts("a@b.com")}}, nil, nil)
	assert.Equal(t, 0, d.ApplyValidation(model.ValidationResult{Email: "missing@b.com"}))
	assert.Equal(t, 0, d.ApplyValidation(model.ValidationResult{}))
}

func TestByID(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{contacts("a@b.com", "c@d.com")}}
	d := New(api, nil, nil)
	_, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)

	c, ok := d.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "c@d.com", c.Email)

	_, ok = d.ByID(42)
	assert.False(t, ok)
}

func TestRefreshReusesLastFilter(t *testing.T) {
	api := &fakeAPI{listings: [][]model.Contact{contacts("a@b.com")}}
	d := New(api, nil, nil)

	_, err := d.List(context.Background(), Filter{Status: "valid", Query: "emily"})
	require.NoError(t, err)

	_, err = d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Filter{Status: "valid", Query: "emily"}, api.lastF)
}

func TestNeedsValidationStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"", true},
		{model.StatusNew, true},
		{model.StatusUnknown, true},
		{model.StatusRisky, true},
		{model.StatusValid, false},
		{model.StatusInvalid, false},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			c := model.Contact{Email: "a@b.com", Status: tt.status}
			assert.Equal(t, tt.want, c.NeedsValidation())
		})
	}
}

func TestLoadSnapshotSeedsCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.SeedContacts(t, s, testutil.SampleContacts()...)

	d := New(&fakeAPI{}, s, nil)
	require.NoError(t, d.LoadSnapshot(context.Background()))

	cached := d.Contacts()
	require.Len(t, cached, 3)
	assert.Equal(t, "ada@x.com", cached[0].Email)
	assert.Equal(t, "catch-all domain", cached[2].Reason)
}

func TestListPersistsSnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := &fakeAPI{listings: [][]model.Contact{contacts("a@b.com")}}
	d := New(api, s, nil)

	_, err := d.List(context.Background(), Filter{})
	require.NoError(t, err)

	// A fresh directory over the same snapshot sees the persisted set.
	fresh := New(&fakeAPI{}, s, nil)
	require.NoError(t, fresh.LoadSnapshot(context.Background()))

	cached := fresh.Contacts()
	require.Len(t, cached, 1)
	assert.Equal(t, "a@b.com", cached[0].Email)
}

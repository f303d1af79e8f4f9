package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/model"
)

type fakeDirAPI struct {
	listing []model.Contact
}

func (f *fakeDirAPI) ListContacts(context.Context, string, string) ([]model.Contact, error) {
	return f.listing, nil
}

func (f *fakeDirAPI) CreateContact(_ context.Context, in model.ContactInput) (model.Contact, error) {
	return model.Contact{Email: in.Email}, nil
}

type fakeValidator struct {
	calls  []string
	probes []bool
	byAddr map[string]model.ValidationResult
	err    error
}

func (f *fakeValidator) ValidateOne(_ context.Context, email string, probe bool) (model.ValidationResult, error) {
	f.calls = append(f.calls, email)
	f.probes = append(f.probes, probe)
	if f.err != nil {
		return model.ValidationResult{}, f.err
	}
	if res, ok := f.byAddr[email]; ok {
		return res, nil
	}
	return model.ValidationResult{Email: email, Status: model.StatusValid, Verdict: "valid"}, nil
}

func testDirectory(t *testing.T, contacts ...model.Contact) *directory.Directory {
	t.Helper()
	d := directory.New(&fakeDirAPI{listing: contacts}, nil, nil)
	_, err := d.List(context.Background(), directory.Filter{})
	require.NoError(t, err)
	return d
}

func TestParseExtras(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"separators only", " ,; \t ", nil},
		{"single address", "a@x.com", []string{"a@x.com"}},
		{"mixed separator runs", "a@x.com, b@x.com;  c@x.com", []string{"a@x.com", "b@x.com", "c@x.com"}},
		{"newlines and tabs", "a@x.com\nb@x.com\tc@x.com", []string{"a@x.com", "b@x.com", "c@x.com"}},
		{"duplicates preserved", "a@x.com a@x.com", []string{"a@x.com", "a@x.com"}},
		{"order preserved", "z@x.com a@x.com m@x.com", []string{"z@x.com", "a@x.com", "m@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExtras(tt.input)
			if len(tt.want) == 0 {
				// Inputs with no fields yield an empty, non-nil slice.
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRejectsIncompleteDraft(t *testing.T) {
	val := &fakeValidator{}
	r := New(testDirectory(t), val, nil)

	tests := []struct {
		name  string
		draft Draft
	}{
		{"missing from", Draft{Subject: "hi", ToExtra: "a@x.com"}},
		{"missing subject", Draft{FromEmail: "me@x.com", ToExtra: "a@x.com"}},
		{"blank subject", Draft{FromEmail: "me@x.com", Subject: "   ", ToExtra: "a@x.com"}},
		{"no recipients", Draft{FromEmail: "me@x.com", Subject: "hi", ValidateExtras: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.draft)
			var perr *PolicyError
			require.ErrorAs(t, err, &perr)
		})
	}

	// Policy checks run before any validation traffic.
	assert.Empty(t, val.calls)
}

func TestResolveUnknownIDFailsConsistency(t *testing.T) {
	r := New(testDirectory(t, model.Contact{ID: 1, Email: "a@x.com"}), nil, nil)

	_, err := r.Resolve(context.Background(), Draft{
		FromEmail: "me@x.com",
		Subject:   "hi",
		ToIDs:     []int{1, 42},
	})
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 42, cerr.ID)
}

func TestResolveDedupesIDsPerRole(t *testing.T) {
	r := New(testDirectory(t,
		model.Contact{ID: 1, Email: "a@x.com"},
		model.Contact{ID: 2, Email: "b@x.com"},
	), nil, nil)

	res, err := r.Resolve(context.Background(), Draft{
		FromEmail: "me@x.com",
		Subject:   "hi",
		ToIDs:     []int{2, 1, 2, 1},
		CcIDs:     []int{1},
	})
	require.NoError(t, err)

	// First-seen order wins within a role; the cc assignment of an
	// already-to'd contact survives.
	assert.Equal(t, []int{2, 1}, res.Request.ToIDs)
	assert.Equal(t, []int{1}, res.Request.CcIDs)
	assert.Equal(t, []int{}, res.Request.BccIDs)

	require.Len(t, res.To, 2)
	assert.Equal(t, "b@x.com", res.To[0].Email)
	assert.Equal(t, "a@x.com", res.To[1].Email)
	require.Len(t, res.Cc, 1)
	assert.Equal(t, "a@x.com", res.Cc[0].Email)
}

func TestResolveValidatesEachExtraOnce(t *testing.T) {
	val := &fakeValidator{byAddr: map[string]model.ValidationResult{
		"bad@x.com": {Email: "bad@x.com", Status: model.StatusInvalid, Verdict: "rejected"},
	}}
	r := New(testDirectory(t), val, nil)

	res, err := r.Resolve(context.Background(), Draft{
		FromEmail:      "me@x.com",
		Subject:        "hi",
		ToExtra:        "good@x.com, BAD@x.com",
		CcExtra:        "good@x.com",
		BccExtra:       "bad@x.com",
		ValidateExtras: true,
	})
	require.NoError(t, err)

	// One call per distinct canonical address, never with the probe.
	assert.Equal(t, []string{"good@x.com", "bad@x.com"}, val.calls)
	assert.Equal(t, []bool{false, false}, val.probes)

	// A rejecting verdict is surfaced but the address stays in the
	// payload as typed.
	require.Len(t, res.ExtraResults, 2)
	assert.Equal(t, "rejected", res.ExtraResults[1].Verdict)
	assert.Equal(t, []string{"good@x.com", "BAD@x.com"}, res.Request.ToExtra)
	assert.Equal(t, []string{"bad@x.com"}, res.Request.BccExtra)
}

func TestResolveExtraValidationFailureAborts(t *testing.T) {
	val := &fakeValidator{err: errors.New("gateway down")}
	r := New(testDirectory(t), val, nil)

	_, err := r.Resolve(context.Background(), Draft{
		FromEmail:      "me@x.com",
		Subject:        "hi",
		ToExtra:        "a@x.com",
		ValidateExtras: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a@x.com")
}

func TestResolveSkipsValidationWhenDisabled(t *testing.T) {
	val := &fakeValidator{}
	r := New(testDirectory(t), val, nil)

	res, err := r.Resolve(context.Background(), Draft{
		FromEmail: " ME@x.com ",
		Subject:   "  hi  ",
		ToExtra:   "a@x.com",
	})
	require.NoError(t, err)
	assert.Empty(t, val.calls)
	assert.Empty(t, res.ExtraResults)

	// Canonicalized from, trimmed subject, defaulted name.
	assert.Equal(t, "me@x.com", res.Request.FromEmail)
	assert.Equal(t, "hi", res.Request.Subject)
	assert.Equal(t, "Quick Send", res.Request.Name)
	assert.False(t, res.Request.ValidateExtras)
}

package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/model"
)

// fakeDirAPI backs the directory with a fixed listing and counts fetches.
type fakeDirAPI struct {
	listing   []model.Contact
	listCalls int
}

func (f *fakeDirAPI) ListContacts(context.Context, string, string) ([]model.Contact, error) {
	f.listCalls++
	return f.listing, nil
}

func (f *fakeDirAPI) CreateContact(_ context.Context, in model.ContactInput) (model.Contact, error) {
	return model.Contact{Email: in.Email}, nil
}

// fakeValidationAPI records validation calls.
type fakeValidationAPI struct {
	result    model.ValidationResult
	err       error
	bulkCount int
	bulkErr   error

	oneCalls  []string
	oneProbes []bool
	bulkProbe bool
}

func (f *fakeValidationAPI) ValidateOne(_ context.Context, email string, probe bool) (model.ValidationResult, error) {
	f.oneCalls = append(f.oneCalls, email)
	f.oneProbes = append(f.oneProbes, probe)
	return f.result, f.err
}

func (f *fakeValidationAPI) ValidateBulk(_ context.Context, probe bool) (int, error) {
	f.bulkProbe = probe
	return f.bulkCount, f.bulkErr
}

func newDir(t *testing.T, api *fakeDirAPI) *directory.Directory {
	t.Helper()
	d := directory.New(api, nil, nil)
	_, err := d.List(context.Background(), directory.Filter{})
	require.NoError(t, err)
	return d
}

func TestValidateOneUpdatesMatchingContacts(t *testing.T) {
	dirAPI := &fakeDirAPI{listing: []model.Contact{
		{ID: 1, Email: "a@x.com", Status: model.StatusNew},
		{ID: 2, Email: "b@x.com", Status: model.StatusNew},
	}}
	dir := newDir(t, dirAPI)

	valAPI := &fakeValidationAPI{result: model.ValidationResult{
		Email:   "a@x.com",
		Status:  model.StatusValid,
		Verdict: "valid",
	}}
	o := New(valAPI, dir, nil)

	res, err := o.ValidateOne(context.Background(), "  A@X.com ", true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValid, res.Status)

	// The email is canonicalized before the call, and the probe flag
	// passes through untouched.
	assert.Equal(t, []string{"a@x.com"}, valAPI.oneCalls)
	assert.Equal(t, []bool{true}, valAPI.oneProbes)

	c, ok := dir.ByID(1)
	require.True(t, ok)
	assert.Equal(t, model.StatusValid, c.Status)

	c, ok = dir.ByID(2)
	require.True(t, ok)
	assert.Equal(t, model.StatusNew, c.Status)

	// No refresh: updating the cache in place is the whole job.
	assert.Equal(t, 1, dirAPI.listCalls)
}

func TestValidateOneRejectsEmptyEmail(t *testing.T) {
	o := New(&fakeValidationAPI{}, newDir(t, &fakeDirAPI{}), nil)
	_, err := o.ValidateOne(context.Background(), "   ", false)
	require.Error(t, err)
}

func TestValidateOnePropagatesAPIError(t *testing.T) {
	valAPI := &fakeValidationAPI{err: errors.New("probe timeout")}
	o := New(valAPI, newDir(t, &fakeDirAPI{}), nil)

	_, err := o.ValidateOne(context.Background(), "a@b.com", false)
	require.Error(t, err)
}

func TestValidateBulkRefreshesDirectory(t *testing.T) {
	dirAPI := &fakeDirAPI{listing: []model.Contact{{ID: 1, Email: "a@b.com"}}}
	dir := newDir(t, dirAPI)

	valAPI := &fakeValidationAPI{bulkCount: 17}
	o := New(valAPI, dir, nil)

	n, err := o.ValidateBulk(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.True(t, valAPI.bulkProbe)

	// One fetch from newDir, one forced refresh: the orchestrator
	// cannot know which subset the server changed.
	assert.Equal(t, 2, dirAPI.listCalls)
}

func TestValidateBulkErrorSkipsRefresh(t *testing.T) {
	dirAPI := &fakeDirAPI{}
	dir := newDir(t, dirAPI)

	valAPI := &fakeValidationAPI{bulkErr: errors.New("server busy")}
	o := New(valAPI, dir, nil)

	_, err := o.ValidateBulk(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 1, dirAPI.listCalls)
}

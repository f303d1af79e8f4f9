package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/tests/testutil"
)

func TestReplaceAndListContacts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := []model.Contact{
		{ID: 2, Email: "b@x.com", FirstName: "Bea", Status: model.StatusValid, Provider: "gmail"},
		{ID: 1, Email: "a@x.com", FirstName: "Ada", Status: model.StatusNew, OwnerEmail: "me@x.com"},
	}
	require.NoError(t, s.ReplaceContacts(ctx, first))

	got, err := s.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by id regardless of insert order.
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Equal(t, "me@x.com", got[0].OwnerEmail)
	assert.Equal(t, 2, got[1].ID)
	assert.Equal(t, "gmail", got[1].Provider)
}

func TestReplaceContactsIsWholesale(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceContacts(ctx, []model.Contact{
		{ID: 1, Email: "old@x.com", Status: model.StatusRisky},
	}))
	require.NoError(t, s.ReplaceContacts(ctx, []model.Contact{
		{ID: 7, Email: "new@x.com", Status: model.StatusValid, Reason: "smtp ok"},
	}))

	got, err := s.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, "smtp ok", got[0].Reason)
}

func TestReplaceContactsWithEmptySetClears(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceContacts(ctx, []model.Contact{{ID: 1, Email: "a@x.com"}}))
	require.NoError(t, s.ReplaceContacts(ctx, nil))

	got, err := s.ListContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

package testutil

import (
	"context"
	"testing"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedContacts replaces the store's snapshot with the given contacts,
// failing the test on error.
func SeedContacts(t *testing.T, s *store.SQLiteStore, contacts ...model.Contact) {
	t.Helper()

	if err := s.ReplaceContacts(context.Background(), contacts); err != nil {
		t.Fatalf("seeding contacts: %v", err)
	}
}

// SampleContacts is a small directory fixture spanning the validation
// statuses tests care about.
func SampleContacts() []model.Contact {
	return []model.Contact{
		{ID: 1, Email: "ada@x.com", FirstName: "Ada", Status: model.StatusValid, Provider: "gmail"},
		{ID: 2, Email: "bea@x.com", FirstName: "Bea", Status: model.StatusNew},
		{ID: 3, Email: "cy@x.com", FirstName: "Cy", Status: model.StatusRisky, Reason: "catch-all domain"},
	}
}

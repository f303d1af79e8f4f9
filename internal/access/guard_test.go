package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/sendlite/internal/model"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name string
		id   *model.Identity
		want []Capability
	}{
		{
			name: "unauthenticated sees nothing",
			id:   nil,
			want: nil,
		},
		{
			name: "user composes but does not manage users",
			id:   &model.Identity{Email: "u@x.com", Role: model.RoleUser},
			want: []Capability{CapContacts, CapValidate, CapUpload, CapCampaigns, CapCompose},
		},
		{
			name: "admin manages users but does not compose",
			id:   &model.Identity{Email: "a@x.com", Role: model.RoleAdmin},
			want: []Capability{CapContacts, CapValidate, CapUpload, CapCampaigns, CapAdminUsers},
		},
		{
			name: "unknown role falls back to user",
			id:   &model.Identity{Email: "x@x.com", Role: "auditor"},
			want: []Capability{CapContacts, CapValidate, CapUpload, CapCampaigns, CapCompose},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.id))
		})
	}
}

func TestAllows(t *testing.T) {
	user := &model.Identity{Email: "u@x.com", Role: model.RoleUser}
	admin := &model.Identity{Email: "a@x.com", Role: model.RoleAdmin}

	assert.True(t, Allows(user, CapCompose))
	assert.False(t, Allows(user, CapAdminUsers))
	assert.True(t, Allows(admin, CapAdminUsers))
	assert.False(t, Allows(admin, CapCompose))
	assert.False(t, Allows(nil, CapContacts))
}

func TestLabelCoversEveryCapability(t *testing.T) {
	for _, c := range []Capability{CapContacts, CapValidate, CapUpload, CapCampaigns, CapCompose, CapAdminUsers} {
		assert.NotEqual(t, string(c), Label(c), "capability %s has no label", c)
	}
}

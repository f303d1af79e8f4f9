// Package access derives which navigation targets a role may see. This
// is advisory UI gating only; the server authorizes every call on its
// own and nothing here is a trust boundary.
package access

import "github.com/nhle/sendlite/internal/model"

// Capability names a screen or action the UI can offer.
type Capability string

const (
	CapContacts   Capability = "contacts"
	CapValidate   Capability = "validate"
	CapUpload     Capability = "upload"
	CapCampaigns  Capability = "campaigns"
	CapCompose    Capability = "compose"
	CapAdminUsers Capability = "admin-users"
)

// Visible returns the capabilities for the given identity, in display
// order. A nil identity (unauthenticated) sees nothing. Admins manage
// users and do not compose; regular users are the inverse.
func Visible(id *model.Identity) []Capability {
	if id == nil {
		return nil
	}

	caps := []Capability{CapContacts, CapValidate, CapUpload, CapCampaigns}
	if id.IsAdmin() {
		return append(caps, CapAdminUsers)
	}
	return append(caps, CapCompose)
}

// Allows reports whether the identity may use the capability.
func Allows(id *model.Identity, c Capability) bool {
	for _, v := range Visible(id) {
		if v == c {
			return true
		}
	}
	return false
}

// Label returns the navigation label for a capability.
func Label(c Capability) string {
	switch c {
	case CapContacts:
		return "Contacts"
	case CapValidate:
		return "Validate"
	case CapUpload:
		return "Upload CSV"
	case CapCampaigns:
		return "Campaigns"
	case CapCompose:
		return "Compose"
	case CapAdminUsers:
		return "Admin · Users"
	default:
		return string(c)
	}
}

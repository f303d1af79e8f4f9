package model

import "strings"

// Contact validation statuses. A contact starts at StatusNew and only
// moves via a validation result.
const (
	StatusNew     = "new"
	StatusUnknown = "unknown"
	StatusRisky   = "risky"
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Statuses lists every contact status in display order.
var Statuses = []string{
	StatusNew,
	StatusValid,
	StatusInvalid,
	StatusRisky,
	StatusUnknown,
}

// Contact is a stored recipient record as the campaign service returns it.
// OwnerEmail is only populated when the caller has admin visibility.
type Contact struct {
	ID          int    `json:"id" db:"id"`
	Email       string `json:"email" db:"email"`
	FirstName   string `json:"first_name,omitempty" db:"first_name"`
	LastName    string `json:"last_name,omitempty" db:"last_name"`
	LinkedInURL string `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Status      string `json:"status,omitempty" db:"status"`
	Reason      string `json:"reason,omitempty" db:"reason"`
	Provider    string `json:"provider,omitempty" db:"provider"`
	OwnerEmail  string `json:"owner_email,omitempty" db:"owner_email"`
}

// NeedsValidation reports whether the contact has not yet received a
// definitive deliverability verdict.
func (c Contact) NeedsValidation() bool {
	switch c.Status {
	case "", StatusNew, StatusUnknown, StatusRisky:
		return true
	}
	return false
}

// DisplayName returns "First Last" when names are set, otherwise the email.
func (c Contact) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// ContactInput is the payload for creating a contact.
type ContactInput struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// ValidationResult is the outcome of probing a single address. It is
// authoritative for updating every stored contact whose canonical email
// matches; matching zero contacts is valid (ad hoc validation of an
// address that was never saved).
type ValidationResult struct {
	ID       int     `json:"id,omitempty"`
	Email    string  `json:"email"`
	Status   string  `json:"status"`
	Reason   string  `json:"reason,omitempty"`
	Provider string  `json:"provider,omitempty"`
	Verdict  string  `json:"verdict"`
	Score    float64 `json:"score,omitempty"`
}

// CanonicalEmail returns the lower-cased, trimmed form of an address,
// used for matching and deduplication.
func CanonicalEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package model

// Role is the authorization role attached to an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated user of the current session.
type Identity struct {
	Email string
	Role  Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// AppUser is an account record from the admin user listing.
type AppUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginResponse is the payload of a successful login call.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

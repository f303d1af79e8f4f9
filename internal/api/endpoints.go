package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/nhle/sendlite/internal/model"
)

// Wire-only request/response shapes. Shared shapes live in model.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateBulkRequest struct {
	UseSMTPProbe bool `json:"use_smtp_probe"`
}

type validateBulkResponse struct {
	Validated int `json:"validated"`
}

type validateOneRequest struct {
	Email string `json:"email"`
}

type sendSelectedRequest struct {
	ContactIDs []int `json:"contact_ids"`
}

type sendSelectedResponse struct {
	Enqueued int `json:"enqueued"`
}

type createUserRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// Health probes the service root. Useful as a startup connectivity check.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "/health", &resp)
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// ListContacts fetches contacts, filtered server-side by status and
// free-text query. Empty parameters are omitted.
func (c *Client) ListContacts(ctx context.Context, status, query string) ([]model.Contact, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if query != "" {
		params.Set("q", query)
	}

	path := "/contacts"
	if qs := params.Encode(); qs != "" {
		path += "?" + qs
	}

	var contacts []model.Contact
	if err := c.get(ctx, path, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateContact posts a new contact and returns the created record with
// its server-computed fields.
func (c *Client) CreateContact(ctx context.Context, in model.ContactInput) (model.Contact, error) {
	var contact model.Contact
	err := c.post(ctx, "/contacts", in, &contact)
	return contact, err
}

// UploadContacts imports a CSV file. Parsing and deduplication are
// entirely server-side.
func (c *Client) UploadContacts(ctx context.Context, fileName string, file io.Reader) (model.UploadResult, error) {
	var result model.UploadResult
	err := c.postMultipart(ctx, "/contacts/upload", "file", fileName, file, &result)
	return result, err
}

// ExportContacts downloads the contact list as CSV text, optionally
// restricted to one status.
func (c *Client) ExportContacts(ctx context.Context, status string) (string, error) {
	path := "/contacts/export"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var csv string
	if err := c.get(ctx, path, &csv); err != nil {
		return "", err
	}
	return csv, nil
}

// ValidateBulk triggers server-side validation of all pending contacts
// and returns how many were validated.
func (c *Client) ValidateBulk(ctx context.Context, useSMTPProbe bool) (int, error) {
	var resp validateBulkResponse
	err := c.post(ctx, "/contacts/validate", validateBulkRequest{UseSMTPProbe: useSMTPProbe}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Validated, nil
}

// ValidateOne probes a single address. The SMTP probe flag is passed
// through on every call; it is never implied.
func (c *Client) ValidateOne(ctx context.Context, email string, useSMTPProbe bool) (model.ValidationResult, error) {
	path := "/contacts/validate_one?use_smtp_probe=" + strconv.FormatBool(useSMTPProbe)

	var result model.ValidationResult
	err := c.post(ctx, path, validateOneRequest{Email: email}, &result)
	return result, err
}

// CreateCampaign creates a campaign shell without recipients.
func (c *Client) CreateCampaign(ctx context.Context, in model.CampaignInput) (model.Campaign, error) {
	var campaign model.Campaign
	err := c.post(ctx, "/campaigns", in, &campaign)
	return campaign, err
}

// SendSelected enqueues a campaign to the given contact ids and returns
// how many messages were enqueued.
func (c *Client) SendSelected(ctx context.Context, campaignID int, contactIDs []int) (int, error) {
	path := fmt.Sprintf("/campaigns/%d/send_selected", campaignID)

	var resp sendSelectedResponse
	err := c.post(ctx, path, sendSelectedRequest{ContactIDs: contactIDs}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Enqueued, nil
}

// CampaignStats fetches the delivery counters for a campaign.
func (c *Client) CampaignStats(ctx context.Context, campaignID int) (model.CampaignStats, error) {
	var stats model.CampaignStats
	err := c.get(ctx, fmt.Sprintf("/campaigns/%d/stats", campaignID), &stats)
	return stats, err
}

// ComposeSend submits a quick-send payload. The response carries the
// authoritative recipient accounting.
func (c *Client) ComposeSend(ctx context.Context, req model.ComposeRequest) (model.ComposeResult, error) {
	var result model.ComposeResult
	err := c.post(ctx, "/compose/send", req, &result)
	return result, err
}

// ListUsers fetches all accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]model.AppUser, error) {
	var users []model.AppUser
	if err := c.get(ctx, "/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, email, password string, role model.Role) (model.AppUser, error) {
	var user model.AppUser
	err := c.post(ctx, "/admin/users", createUserRequest{
		Email:    email,
		Password: password,
		Role:     role,
	}, &user)
	return user, err
}

package model

// Campaign is a created campaign record.
type Campaign struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
}

// CampaignInput is the payload for creating a campaign.
type CampaignInput struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
	TextBody  string `json:"text_body,omitempty"`
	HTMLBody  string `json:"html_body,omitempty"`
}

// CampaignStats is the delivery counters for a campaign.
type CampaignStats struct {
	Queued int `json:"queued"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// UploadResult is the outcome of a CSV contact import. Parsing and
// deduplication happen server-side.
type UploadResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ComposeRequest is the quick-send payload. The per-role id lists are
// deduplicated within each role but an id may legitimately appear in
// more than one role; the extra lists are the parsed free-typed
// addresses in order of appearance, never deduplicated client-side.
type ComposeRequest struct {
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
	TextBody  string `json:"text_body,omitempty"`
	HTMLBody  string `json:"html_body,omitempty"`

	ToIDs  []int `json:"to_ids"`
	CcIDs  []int `json:"cc_ids"`
	BccIDs []int `json:"bcc_ids"`

	ToExtra  []string `json:"to_extra"`
	CcExtra  []string `json:"cc_extra"`
	BccExtra []string `json:"bcc_extra"`

	ValidateExtras bool `json:"validate_extras"`
}

// ComposeResult is the service's accounting for a quick send. The
// ValidRecipients count is authoritative; the client never gates a send
// on its own validation results.
type ComposeResult struct {
	CampaignID      int    `json:"campaign_id"`
	Selected        int    `json:"selected"`
	ValidRecipients int    `json:"valid_recipients"`
	Enqueued        int    `json:"enqueued"`
	Note            string `json:"note,omitempty"`
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/export"
	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/ui/adminusers"
	"github.com/nhle/sendlite/internal/ui/campaign"
	"github.com/nhle/sendlite/internal/ui/composer"
	"github.com/nhle/sendlite/internal/ui/upload"
	"github.com/nhle/sendlite/internal/ui/validate"
)

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	err error
}

// rowValidatedMsg carries the outcome of validating a contact row.
type rowValidatedMsg struct {
	email  string
	status string
	err    error
}

// contactCreatedMsg carries the outcome of a contact creation.
type contactCreatedMsg struct {
	contact       model.Contact
	validateAfter bool
	err           error
}

// exportDoneMsg carries the path of a written CSV export.
type exportDoneMsg struct {
	path string
	err  error
}

// healthCheckMsg carries the startup connectivity probe outcome.
type healthCheckMsg struct {
	err error
}

// healthCmd probes the service once at startup.
func (m Model) healthCmd() tea.Cmd {
	c := m.client
	log := m.log
	return func() tea.Msg {
		err := c.Health(context.Background())
		if err != nil {
			log.Warn("service health check failed", zap.Error(err))
		}
		return healthCheckMsg{err: err}
	}
}

// restoreSession reads the durable session triple, then reports so the
// startup route can be decided.
func (m Model) restoreSession() tea.Cmd {
	s := m.sessions
	return func() tea.Msg {
		s.Restore()
		return sessionRestoredMsg{}
	}
}

// loadSnapshot seeds the contact cache from the local database.
func (m Model) loadSnapshot() tea.Cmd {
	d := m.dir
	log := m.log
	return func() tea.Msg {
		if err := d.LoadSnapshot(context.Background()); err != nil {
			log.Warn("loading contact snapshot", zap.Error(err))
		}
		return nil
	}
}

// loginCmd performs the credential exchange.
func (m Model) loginCmd(email, password string) tea.Cmd {
	s := m.sessions
	c := m.client
	return func() tea.Msg {
		err := s.Login(context.Background(), c, email, password)
		return loginResultMsg{err: err}
	}
}

// validateRowCmd probes a contact's address with SMTP, for the contact
// list's per-row action and the create-and-validate flow.
func (m Model) validateRowCmd(email string) tea.Cmd {
	o := m.orchestrator
	return func() tea.Msg {
		res, err := o.ValidateOne(context.Background(), email, true)
		return rowValidatedMsg{email: email, status: res.Status, err: err}
	}
}

// validateOneCmd probes a single typed address for the validate view.
func (m Model) validateOneCmd(email string, useSMTPProbe bool) tea.Cmd {
	o := m.orchestrator
	return func() tea.Msg {
		res, err := o.ValidateOne(context.Background(), email, useSMTPProbe)
		return validate.ResultMsg{Result: res, Err: err}
	}
}

// validateBulkCmd validates every pending contact server-side.
func (m Model) validateBulkCmd(useSMTPProbe bool) tea.Cmd {
	o := m.orchestrator
	return func() tea.Msg {
		count, err := o.ValidateBulk(context.Background(), useSMTPProbe)
		return validate.ResultMsg{BulkCount: count, Bulk: true, Err: err}
	}
}

// createContactCmd posts a new contact.
func (m Model) createContactCmd(in model.ContactInput, validateAfter bool) tea.Cmd {
	d := m.dir
	return func() tea.Msg {
		contact, err := d.Create(context.Background(), in)
		return contactCreatedMsg{
			contact:       contact,
			validateAfter: validateAfter,
			err:           err,
		}
	}
}

// uploadCmd streams a CSV file to the import endpoint.
func (m Model) uploadCmd(path string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return upload.ResultMsg{Err: fmt.Errorf("opening %s: %w", path, err)}
		}
		defer f.Close()

		result, err := c.UploadContacts(context.Background(), filepath.Base(path), f)
		return upload.ResultMsg{Result: result, Err: err}
	}
}

// exportCmd downloads the CSV export for the current filter and writes
// it next to the other exports.
func (m Model) exportCmd() tea.Cmd {
	c := m.client
	dir := m.exportDir
	status := m.dir.Filter().Status
	return func() tea.Msg {
		csv, err := c.ExportContacts(context.Background(), status)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export directory: %w", err)}
		}

		name := fmt.Sprintf("contacts-%s.csv", time.Now().Format("20060102-150405"))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			return exportDoneMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}
		return exportDoneMsg{path: path}
	}
}

// resolveCmd turns the draft into a reviewed send payload.
func (m Model) resolveCmd(d compose.Draft) tea.Cmd {
	r := m.resolver
	return func() tea.Msg {
		res, err := r.Resolve(context.Background(), d)
		return composer.ResolvedMsg{Resolution: res, Err: err}
	}
}

// sendCmd submits the reviewed payload.
func (m Model) sendCmd(res *compose.Resolution) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		result, err := c.ComposeSend(context.Background(), res.Request)
		return composer.SentMsg{Result: result, Err: err}
	}
}

// savePreviewCmd writes the resolution to a local .eml file.
func (m Model) savePreviewCmd(res *compose.Resolution) tea.Cmd {
	dir := m.exportDir
	return func() tea.Msg {
		path, err := export.SaveDraft(dir, res)
		return composer.PreviewSavedMsg{Path: path, Err: err}
	}
}

// campaignCreateCmd creates a campaign and enqueues it to the selected
// contacts in one step.
func (m Model) campaignCreateCmd(in model.CampaignInput, contactIDs []int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		created, err := c.CreateCampaign(context.Background(), in)
		if err != nil {
			return campaign.CreatedMsg{Err: err}
		}

		enqueued, err := c.SendSelected(context.Background(), created.ID, contactIDs)
		if err != nil {
			return campaign.CreatedMsg{Campaign: created, Err: err}
		}
		return campaign.CreatedMsg{Campaign: created, Enqueued: enqueued}
	}
}

// loadUsersCmd fetches the account listing.
func (m Model) loadUsersCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		users, err := c.ListUsers(context.Background())
		return adminusers.UsersLoadedMsg{Users: users, Err: err}
	}
}

// createUserCmd creates an account.
func (m Model) createUserCmd(email, password string, role model.Role) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		user, err := c.CreateUser(context.Background(), email, password, role)
		return adminusers.CreatedMsg{User: user, Err: err}
	}
}

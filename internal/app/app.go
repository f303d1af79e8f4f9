// Package app is the root Bubble Tea model: session lifecycle, view
// routing, and the command layer that ties the views to the service.
package app

import (
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sendlite/internal/access"
	"github.com/nhle/sendlite/internal/api"
	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/keys"
	"github.com/nhle/sendlite/internal/poll"
	"github.com/nhle/sendlite/internal/session"
	"github.com/nhle/sendlite/internal/ui"
	"github.com/nhle/sendlite/internal/ui/adminusers"
	"github.com/nhle/sendlite/internal/ui/campaign"
	"github.com/nhle/sendlite/internal/ui/composer"
	"github.com/nhle/sendlite/internal/ui/contactform"
	"github.com/nhle/sendlite/internal/ui/contacts"
	helpview "github.com/nhle/sendlite/internal/ui/help"
	"github.com/nhle/sendlite/internal/ui/login"
	"github.com/nhle/sendlite/internal/ui/upload"
	"github.com/nhle/sendlite/internal/ui/validate"
	"github.com/nhle/sendlite/internal/validation"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewContacts
	ViewContactForm
	ViewValidate
	ViewUpload
	ViewCampaigns
	ViewCompose
	ViewAdminUsers
	ViewHelp
)

// sessionRestoredMsg signals that the durable session triple has been
// read and the startup route can be decided.
type sessionRestoredMsg struct{}

// Model is the root Bubble Tea model that manages view routing, the
// session, and access to the service layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	activeCap    access.Capability
	layout       ui.Layout
	keys         *keys.KeyMap
	log          *zap.Logger

	sessions     *session.Store
	client       *api.Client
	dir          *directory.Directory
	orchestrator *validation.Orchestrator
	resolver     *compose.Resolver
	stats        *poll.Poller
	exportDir    string

	loginView    login.Model
	contactList  contacts.Model
	contactForm  contactform.Model
	validateView validate.Model
	uploadView   upload.Model
	campaignView campaign.Model
	composerView composer.Model
	adminView    adminusers.Model
	helpView     helpview.Model

	ready     bool
	statusMsg string
}

// New creates the root application model.
func New(
	sessions *session.Store,
	client *api.Client,
	dir *directory.Directory,
	orchestrator *validation.Orchestrator,
	resolver *compose.Resolver,
	exportDir string,
	log *zap.Logger,
) Model {
	if log == nil {
		log = zap.NewNop()
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewLogin,
		activeCap:    access.CapContacts,
		keys:         k,
		log:          log,
		sessions:     sessions,
		client:       client,
		dir:          dir,
		orchestrator: orchestrator,
		resolver:     resolver,
		stats:        poll.New(client, 0),
		exportDir:    exportDir,
		loginView:    login.New(80, 24),
		contactList:  contacts.New(dir, k, 80, 24),
		contactForm:  contactform.New(80, 24),
		validateView: validate.New(80, 24),
		uploadView:   upload.New(80, 24),
		campaignView: campaign.New(80, 24),
		composerView: composer.New(80, 24),
		adminView:    adminusers.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
}

// Init restores the durable session and seeds the contact cache from
// the local snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.restoreSession(),
		m.loadSnapshot(),
		m.healthCmd(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.contactList.SetSize(w, h)
		m.contactForm.SetSize(w, h)
		m.validateView.SetSize(w, h)
		m.uploadView.SetSize(w, h)
		m.campaignView.SetSize(w, h)
		m.composerView.SetSize(w, h)
		m.adminView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case healthCheckMsg:
		if msg.err != nil {
			m.statusMsg = "service unreachable: " + msg.err.Error()
		}
		return m, nil

	case sessionRestoredMsg:
		if m.sessions.Authenticated() {
			return m.enterApp()
		}
		m.currentView = ViewLogin
		return m, m.loginView.Start("")

	case login.SubmitMsg:
		m.loginView.SetBusy(true)
		return m, m.loginCmd(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			m.currentView = ViewLogin
			return m, m.loginView.Start(msg.err.Error())
		}
		return m.enterApp()

	case contacts.ValidateContactMsg:
		m.statusMsg = "validating " + msg.Email + "..."
		return m, m.validateRowCmd(msg.Email)

	case rowValidatedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.err); intercepted {
			return m, cmd
		}
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.statusMsg = msg.email + ": " + msg.status
		return m, m.contactList.LoadContacts()

	case contacts.ExportRequestMsg:
		return m, m.exportCmd()

	case exportDoneMsg:
		if cmd, intercepted := m.interceptAuthError(msg.err); intercepted {
			return m, cmd
		}
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.statusMsg = "exported to " + msg.path
		}
		return m, nil

	case contacts.NewContactMsg:
		m.previousView = m.currentView
		m.currentView = ViewContactForm
		return m, m.contactForm.Start()

	case contactform.SubmitMsg:
		m.currentView = ViewContacts
		return m, m.createContactCmd(msg.Input, msg.ValidateAfter)

	case contactform.CancelMsg:
		m.currentView = ViewContacts
		return m, nil

	case contactCreatedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.err); intercepted {
			return m, cmd
		}
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.statusMsg = "created " + msg.contact.Email
		cmds := []tea.Cmd{m.contactList.LoadContacts()}
		if msg.validateAfter {
			// A fresh contact is always probed with SMTP.
			cmds = append(cmds, m.validateRowCmd(msg.contact.Email))
		}
		return m, tea.Batch(cmds...)

	case validate.BackMsg, upload.BackMsg, campaign.BackMsg, composer.BackMsg:
		return m.switchTo(access.CapContacts)

	case validate.SubmitOneMsg:
		return m, m.validateOneCmd(msg.Email, msg.UseSMTPProbe)

	case validate.SubmitBulkMsg:
		return m, m.validateBulkCmd(msg.UseSMTPProbe)

	case validate.ResultMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.validateView, cmd = m.validateView.Update(msg)
		return m, cmd

	case upload.SubmitMsg:
		return m, m.uploadCmd(msg.Path)

	case upload.ResultMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.uploadView, cmd = m.uploadView.Update(msg)
		return m, tea.Batch(cmd, m.contactList.LoadContacts())

	case campaign.CreateMsg:
		return m, m.campaignCreateCmd(msg.Input, msg.ContactIDs)

	case campaign.CreatedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.campaignView, cmd = m.campaignView.Update(msg)
		if msg.Err == nil {
			// Counters drain server-side; watch them in the background.
			return m, tea.Batch(cmd, m.stats.Watch(msg.Campaign.ID))
		}
		return m, cmd

	case campaign.StatsRequestMsg:
		m.stats.Refresh()
		return m, nil

	case poll.StatsResultMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		// A fetch from a just-replaced watch can still land here; keep
		// listening but never show another campaign's counters.
		if msg.CampaignID != m.stats.CampaignID() {
			return m, m.stats.WaitForNextResult()
		}
		var cmd tea.Cmd
		m.campaignView, cmd = m.campaignView.Update(campaign.StatsMsg{
			Stats: msg.Stats,
			Err:   msg.Err,
		})
		return m, tea.Batch(cmd, m.stats.WaitForNextResult())

	case composer.ResolveMsg:
		return m, m.resolveCmd(msg.Draft)

	case composer.ResolvedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.composerView, cmd = m.composerView.Update(msg)
		return m, cmd

	case composer.SendMsg:
		return m, m.sendCmd(msg.Resolution)

	case composer.SentMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.composerView, cmd = m.composerView.Update(msg)
		return m, cmd

	case composer.SavePreviewMsg:
		return m, m.savePreviewCmd(msg.Resolution)

	case composer.PreviewSavedMsg:
		var cmd tea.Cmd
		m.composerView, cmd = m.composerView.Update(msg)
		return m, cmd

	case adminusers.LoadRequestMsg:
		return m, m.loadUsersCmd()

	case adminusers.UsersLoadedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.adminView, cmd = m.adminView.Update(msg)
		return m, cmd

	case adminusers.CreateMsg:
		return m, m.createUserCmd(msg.Email, msg.Password, msg.Role)

	case adminusers.CreatedMsg:
		if cmd, intercepted := m.interceptAuthError(msg.Err); intercepted {
			return m, cmd
		}
		var cmd tea.Cmd
		m.adminView, cmd = m.adminView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if handled, model, cmd := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the view.
// Keys are never intercepted while a form view has input focus, except
// for quit and logout.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stats.Stop()
		return true, m, tea.Quit

	case "ctrl+l":
		if m.currentView != ViewLogin {
			m.stats.Stop()
			m.sessions.Logout()
			m.currentView = ViewLogin
			m.statusMsg = ""
			return true, m, m.loginView.Start("")
		}
		return false, m, nil
	}

	// The remaining globals only apply outside text-entry views.
	if m.formHasFocus() {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewContacts {
			m.stats.Stop()
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		if m.currentView != ViewContacts && m.currentView != ViewLogin {
			model, cmd := m.switchTo(access.CapContacts)
			return true, model, cmd
		}

	case "tab":
		if m.currentView != ViewLogin {
			model, cmd := m.cycleTab(1)
			return true, model, cmd
		}

	case "shift+tab":
		if m.currentView != ViewLogin {
			model, cmd := m.cycleTab(-1)
			return true, model, cmd
		}
	}

	return false, m, nil
}

// formHasFocus reports whether the active view owns raw key input.
func (m Model) formHasFocus() bool {
	switch m.currentView {
	case ViewLogin, ViewContactForm, ViewValidate, ViewUpload:
		return true
	case ViewCampaigns:
		return m.campaignView.Editing()
	case ViewCompose:
		return m.composerView.Editing()
	case ViewAdminUsers:
		return m.adminView.Editing()
	case ViewContacts:
		return m.contactList.SearchActive()
	}
	return false
}

// enterApp routes to the first visible view after authentication.
func (m Model) enterApp() (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	return m.switchTo(access.CapContacts)
}

// cycleTab moves the active navigation tab by delta.
func (m Model) cycleTab(delta int) (tea.Model, tea.Cmd) {
	caps := access.Visible(m.sessions.Identity())
	if len(caps) == 0 {
		return m, nil
	}

	idx := 0
	for i, c := range caps {
		if c == m.activeCap {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(caps)) % len(caps)
	return m.switchTo(caps[idx])
}

// switchTo activates the view behind a capability, refusing anything
// the current role cannot see.
func (m Model) switchTo(c access.Capability) (tea.Model, tea.Cmd) {
	id := m.sessions.Identity()
	if !access.Allows(id, c) {
		return m, nil
	}
	if m.currentView == ViewCampaigns && c != access.CapCampaigns {
		m.stats.Stop()
	}
	m.activeCap = c
	m.previousView = m.currentView

	switch c {
	case access.CapContacts:
		m.currentView = ViewContacts
		return m, m.contactList.LoadContacts()
	case access.CapValidate:
		m.currentView = ViewValidate
		pending := 0
		for _, c := range m.dir.Contacts() {
			if c.NeedsValidation() {
				pending++
			}
		}
		return m, m.validateView.Start(pending)
	case access.CapUpload:
		m.currentView = ViewUpload
		return m, m.uploadView.Start()
	case access.CapCampaigns:
		m.currentView = ViewCampaigns
		return m, m.campaignView.Start(m.dir.Contacts())
	case access.CapCompose:
		m.currentView = ViewCompose
		return m, m.composerView.Start(m.dir.Contacts())
	case access.CapAdminUsers:
		m.currentView = ViewAdminUsers
		return m, m.adminView.Init()
	}
	return m, nil
}

// interceptAuthError drops the session and returns to the login view
// when err is an auth failure. The bool reports whether it intercepted.
func (m *Model) interceptAuthError(err error) (tea.Cmd, bool) {
	if err == nil || !session.IsAuthError(err) {
		return nil, false
	}
	m.log.Info("session rejected, forcing re-login", zap.Error(err))
	m.sessions.Logout()
	m.currentView = ViewLogin
	return m.loginView.Start("Session expired, sign in again."), true
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewContacts:
		m.contactList, cmd = m.contactList.Update(msg)
	case ViewContactForm:
		m.contactForm, cmd = m.contactForm.Update(msg)
	case ViewValidate:
		m.validateView, cmd = m.validateView.Update(msg)
	case ViewUpload:
		m.uploadView, cmd = m.uploadView.Update(msg)
	case ViewCampaigns:
		m.campaignView, cmd = m.campaignView.Update(msg)
	case ViewCompose:
		m.composerView, cmd = m.composerView.Update(msg)
	case ViewAdminUsers:
		m.adminView, cmd = m.adminView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("SendLite", m.identityLabel())

	nav := ""
	if m.sessions.Authenticated() && m.currentView != ViewLogin {
		nav = m.layout.RenderNav(access.Visible(m.sessions.Identity()), m.activeCap)
	}

	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, nav, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewContacts:
		return m.contactList.View()
	case ViewContactForm:
		return m.contactForm.View()
	case ViewValidate:
		return m.validateView.View()
	case ViewUpload:
		return m.uploadView.View()
	case ViewCampaigns:
		return m.campaignView.View()
	case ViewCompose:
		return m.composerView.View()
	case ViewAdminUsers:
		return m.adminView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// identityLabel describes the signed-in account for the header.
func (m Model) identityLabel() string {
	id := m.sessions.Identity()
	if id == nil {
		return "signed out"
	}
	return id.Email + " (" + string(id.Role) + ")"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewContacts {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewContacts:
		summary := m.contactList.FilterSummary()
		hints := "n new | v validate | x export | s status | / search | r refresh | tab next view | ? help"
		if summary != "" {
			return summary + " | " + hints
		}
		return hints
	case ViewContactForm:
		return "enter submit | esc cancel"
	case ViewValidate, ViewUpload:
		return "enter submit | esc back | ctrl+l log out"
	case ViewCampaigns:
		return "enter submit | r refresh counters | esc back"
	case ViewCompose:
		return "enter next | e save preview | esc back"
	case ViewAdminUsers:
		return "n new account | r refresh | esc back"
	case ViewHelp:
		return "? close help | esc back"
	default:
		return "q quit | ? help"
	}
}

// Package campaign is the campaign workflow view: create a campaign,
// send it to selected valid contacts, and watch delivery counters.
package campaign

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// CreateMsg asks the root model to create a campaign and send it to the
// selected contacts.
type CreateMsg struct {
	Input      model.CampaignInput
	ContactIDs []int
}

// CreatedMsg carries the created campaign and enqueue count back.
type CreatedMsg struct {
	Campaign model.Campaign
	Enqueued int
	Err      error
}

// StatsRequestMsg asks the root model for current delivery counters.
type StatsRequestMsg struct {
	CampaignID int
}

// StatsMsg carries delivery counters back to this view.
type StatsMsg struct {
	Stats model.CampaignStats
	Err   error
}

// BackMsg asks the root model to leave this view.
type BackMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name       string
	subject    string
	fromEmail  string
	textBody   string
	htmlBody   string
	contactIDs []int
}

// Model is the campaign view component.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	contacts []model.Contact
	busy     bool
	campaign *model.Campaign
	enqueued int
	stats    *model.CampaignStats
	errMsg   string
	width    int
	height   int
}

// New creates a new campaign view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form. Only contacts with a valid verdict are
// offered as recipients; the server enforces the same rule.
func (m *Model) Start(contacts []model.Contact) tea.Cmd {
	m.busy = false
	m.campaign = nil
	m.stats = nil
	m.errMsg = ""
	*m.fb = formBindings{}
	m.contacts = nil
	for _, c := range contacts {
		if c.Status == model.StatusValid {
			m.contacts = append(m.contacts, c)
		}
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the campaign view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CreatedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		c := msg.Campaign
		m.campaign = &c
		m.enqueued = msg.Enqueued
		return m, m.requestStats()

	case StatsMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		s := msg.Stats
		m.stats = &s
		return m, nil

	case tea.KeyMsg:
		// After a send, r polls the counters again.
		if m.campaign != nil && msg.String() == "r" {
			return m, m.requestStats()
		}
	}

	if m.form == nil || m.busy || m.campaign != nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return BackMsg{} }
	}

	return m, cmd
}

// Editing reports whether the create form owns key input.
func (m Model) Editing() bool {
	return m.campaign == nil && !m.busy && len(m.contacts) > 0
}

// View renders the campaign view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Campaigns")}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg))
	}

	switch {
	case m.campaign != nil:
		parts = append(parts, m.renderResult())
	case m.busy:
		parts = append(parts, theme.HelpStyle.Render("Sending..."))
	case len(m.contacts) == 0:
		parts = append(parts, theme.HelpStyle.Render(
			"No contacts with a valid verdict yet.\nValidate some contacts first.",
		))
	case m.form != nil:
		parts = append(parts, m.form.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// renderResult shows the created campaign and its delivery counters.
func (m Model) renderResult() string {
	lines := []string{
		fmt.Sprintf("Campaign #%d %q created", m.campaign.ID, m.campaign.Name),
		fmt.Sprintf("%d messages enqueued", m.enqueued),
	}
	if m.stats != nil {
		lines = append(lines, fmt.Sprintf(
			"queued %d | sent %d | failed %d",
			m.stats.Queued, m.stats.Sent, m.stats.Failed,
		))
	}
	lines = append(lines, "", theme.HelpStyle.Render("r refresh counters | esc back"))
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	opts := make([]huh.Option[int], len(m.contacts))
	for i, c := range m.contacts {
		opts[i] = huh.NewOption(
			fmt.Sprintf("%s (%s)", c.Email, c.DisplayName()),
			c.ID,
		)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("October launch").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject).
				Validate(validateRequired("Subject")),
			huh.NewInput().
				Title("From").
				Placeholder("you@example.com").
				Value(&m.fb.fromEmail).
				Validate(validateRequired("From")),
			huh.NewText().
				Title("Text body").
				Value(&m.fb.textBody),
			huh.NewText().
				Title("HTML body").
				Placeholder("Optional").
				Value(&m.fb.htmlBody),
		),
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Recipients").
				Options(opts...).
				Value(&m.fb.contactIDs),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	input := model.CampaignInput{
		Name:      strings.TrimSpace(m.fb.name),
		Subject:   strings.TrimSpace(m.fb.subject),
		FromEmail: strings.TrimSpace(m.fb.fromEmail),
		TextBody:  m.fb.textBody,
		HTMLBody:  m.fb.htmlBody,
	}
	ids := m.fb.contactIDs
	return func() tea.Msg {
		return CreateMsg{Input: input, ContactIDs: ids}
	}
}

func (m Model) requestStats() tea.Cmd {
	id := m.campaign.ID
	return func() tea.Msg {
		return StatsRequestMsg{CampaignID: id}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

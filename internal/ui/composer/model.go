// Package composer is the quick-send view: pick contacts per role, type
// extra addresses, review the resolved payload, and send.
package composer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// ResolveMsg asks the root model to resolve the draft.
type ResolveMsg struct {
	Draft compose.Draft
}

// ResolvedMsg carries the resolution (or the policy failure) back.
type ResolvedMsg struct {
	Resolution *compose.Resolution
	Err        error
}

// SendMsg asks the root model to submit the reviewed resolution.
type SendMsg struct {
	Resolution *compose.Resolution
}

// SentMsg carries the send outcome back to this view.
type SentMsg struct {
	Result model.ComposeResult
	Err    error
}

// SavePreviewMsg asks the root model to write the resolution to an
// .eml file.
type SavePreviewMsg struct {
	Resolution *compose.Resolution
}

// PreviewSavedMsg reports where the preview landed.
type PreviewSavedMsg struct {
	Path string
	Err  error
}

// BackMsg asks the root model to leave this view.
type BackMsg struct{}

// phase tracks where the composer is in the draft-review-send flow.
type phase int

const (
	phaseDraft phase = iota
	phaseReview
	phaseSending
	phaseDone
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name           string
	fromEmail      string
	subject        string
	textBody       string
	htmlBody       string
	toIDs          []int
	ccIDs          []int
	bccIDs         []int
	toExtra        string
	ccExtra        string
	bccExtra       string
	validateExtras bool
}

// Model is the composer view component.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	contacts   []model.Contact
	phase      phase
	resolution *compose.Resolution
	result     *model.ComposeResult
	savedPath  string
	errMsg     string
	width      int
	height     int
}

// New creates a new composer model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes a fresh draft over the given contact set.
func (m *Model) Start(contacts []model.Contact) tea.Cmd {
	m.phase = phaseDraft
	m.resolution = nil
	m.result = nil
	m.savedPath = ""
	m.errMsg = ""
	*m.fb = formBindings{}
	m.contacts = contacts
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the composer view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResolvedMsg:
		if msg.Err != nil {
			// Policy and consistency failures return to the draft with
			// the reason shown; nothing was sent.
			m.errMsg = msg.Err.Error()
			m.phase = phaseDraft
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.errMsg = ""
		m.resolution = msg.Resolution
		m.phase = phaseReview
		return m, nil

	case SentMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			m.phase = phaseReview
			return m, nil
		}
		r := msg.Result
		m.result = &r
		m.phase = phaseDone
		return m, nil

	case PreviewSavedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.savedPath = msg.Path
		}
		return m, nil

	case tea.KeyMsg:
		if m.phase == phaseReview {
			return m.handleReviewKeys(msg)
		}
	}

	if m.phase != phaseDraft || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return BackMsg{} }
	}

	return m, cmd
}

// Editing reports whether the draft or review phase owns key input.
func (m Model) Editing() bool {
	return m.phase == phaseDraft || m.phase == phaseReview
}

// handleReviewKeys processes key input on the review screen.
func (m Model) handleReviewKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.phase = phaseSending
		res := m.resolution
		return m, func() tea.Msg {
			return SendMsg{Resolution: res}
		}

	case "e":
		res := m.resolution
		return m, func() tea.Msg {
			return SavePreviewMsg{Resolution: res}
		}

	case "esc":
		m.phase = phaseDraft
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, nil
}

// View renders the composer view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Compose")}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg))
	}

	switch m.phase {
	case phaseDraft:
		if m.form != nil {
			parts = append(parts, m.form.View())
		}
	case phaseReview:
		parts = append(parts, m.renderReview())
	case phaseSending:
		parts = append(parts, theme.HelpStyle.Render("Sending..."))
	case phaseDone:
		parts = append(parts, m.renderResult())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// renderReview shows the resolved payload before the send is confirmed.
func (m Model) renderReview() string {
	req := m.resolution.Request

	var b strings.Builder
	fmt.Fprintf(&b, "From:    %s\n", req.FromEmail)
	fmt.Fprintf(&b, "Subject: %s\n\n", req.Subject)
	b.WriteString(renderRole("To", m.resolution.To, req.ToExtra))
	b.WriteString(renderRole("Cc", m.resolution.Cc, req.CcExtra))
	b.WriteString(renderRole("Bcc", m.resolution.Bcc, req.BccExtra))

	if len(m.resolution.ExtraResults) > 0 {
		b.WriteString("\nTyped address verdicts (advisory, server decides):\n")
		for _, r := range m.resolution.ExtraResults {
			badge := theme.StatusStyle(r.Status).Render(r.Status)
			fmt.Fprintf(&b, "  %s %s\n", badge, r.Email)
		}
	}

	if m.savedPath != "" {
		fmt.Fprintf(&b, "\nPreview saved to %s\n", m.savedPath)
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter send | e save .eml preview | esc edit"))
	return b.String()
}

// renderRole lists one role's resolved contacts and typed extras.
func renderRole(label string, contacts []model.Contact, extras []string) string {
	if len(contacts)+len(extras) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", label)
	for _, c := range contacts {
		badge := theme.StatusStyle(c.Status).Render(c.Status)
		fmt.Fprintf(&b, "  %s %s\n", badge, c.Email)
	}
	for _, e := range extras {
		fmt.Fprintf(&b, "  %s (typed)\n", e)
	}
	return b.String()
}

// renderResult shows the server's accounting for the send.
func (m Model) renderResult() string {
	r := m.result
	lines := []string{
		fmt.Sprintf("Campaign #%d created", r.CampaignID),
		fmt.Sprintf(
			"%d selected, %d valid recipients, %d enqueued",
			r.Selected, r.ValidRecipients, r.Enqueued,
		),
	}
	if r.Note != "" {
		lines = append(lines, r.Note)
	}
	lines = append(lines, "", theme.HelpStyle.Render("esc back"))
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
		label := fmt.Sprintf("%s [%s]", c.Email, c.Status)
		opts[i] = huh.NewOption(label, c.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Campaign name").
				Placeholder("Quick Send").
				Value(&m.fb.name),
			huh.NewInput().
				Title("From").
				Placeholder("you@example.com").
				Value(&m.fb.fromEmail),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject),
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
				Title("To").
				Options(opts...).
				Value(&m.fb.toIDs),
			huh.NewMultiSelect[int]().
				Title("Cc").
				Options(opts...).
				Value(&m.fb.ccIDs),
			huh.NewMultiSelect[int]().
				Title("Bcc").
				Options(opts...).
				Value(&m.fb.bccIDs),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Extra To addresses").
				Placeholder("comma, semicolon, or space separated").
				Value(&m.fb.toExtra),
			huh.NewInput().
				Title("Extra Cc addresses").
				Value(&m.fb.ccExtra),
			huh.NewInput().
				Title("Extra Bcc addresses").
				Value(&m.fb.bccExtra),
			huh.NewConfirm().
				Title("Validate typed addresses before sending?").
				Description("Quick syntax and DNS check, no SMTP probe.").
				Value(&m.fb.validateExtras),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	draft := compose.Draft{
		Name:           m.fb.name,
		FromEmail:      m.fb.fromEmail,
		Subject:        m.fb.subject,
		TextBody:       m.fb.textBody,
		HTMLBody:       m.fb.htmlBody,
		ToIDs:          m.fb.toIDs,
		CcIDs:          m.fb.ccIDs,
		BccIDs:         m.fb.bccIDs,
		ToExtra:        m.fb.toExtra,
		CcExtra:        m.fb.ccExtra,
		BccExtra:       m.fb.bccExtra,
		ValidateExtras: m.fb.validateExtras,
	}
	return func() tea.Msg {
		return ResolveMsg{Draft: draft}
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

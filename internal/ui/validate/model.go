// Package validate is the ad hoc validation view: probe one typed
// address, or kick off server-side validation of every pending contact.
package validate

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// SubmitOneMsg asks the root model to validate a single address.
type SubmitOneMsg struct {
	Email        string
	UseSMTPProbe bool
}

// SubmitBulkMsg asks the root model to validate all pending contacts.
type SubmitBulkMsg struct {
	UseSMTPProbe bool
}

// BackMsg asks the root model to leave this view.
type BackMsg struct{}

// ResultMsg carries the outcome of a validation back to this view.
type ResultMsg struct {
	Result    model.ValidationResult
	BulkCount int
	Bulk      bool
	Err       error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	mode  string
	email string
	probe bool
}

// Model is the validation view component.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	busy    bool
	outcome string
	pending int
	width   int
	height  int
}

// New creates a new validation view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{mode: "one", probe: true},
		width:  width,
		height: height,
	}
}

// Start (re)initializes the form, keeping the previous outcome visible.
// pending is how many cached contacts still lack a definitive verdict.
func (m *Model) Start(pending int) tea.Cmd {
	m.busy = false
	m.pending = pending
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the validation view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(ResultMsg); ok {
		m.outcome = renderOutcome(res)
		return m, m.Start(m.pending)
	}

	if m.form == nil || m.busy {
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

// View renders the validation view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Validate Addresses")}
	if m.outcome != "" {
		parts = append(parts, m.outcome, "")
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Validating..."))
	} else if m.form != nil {
		parts = append(parts, m.form.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Single address", "one"),
					huh.NewOption(bulkLabel(m.pending), "bulk"),
				).
				Value(&m.fb.mode),
			huh.NewInput().
				Title("Email").
				Placeholder("person@example.com (single mode)").
				Value(&m.fb.email),
			huh.NewConfirm().
				Title("Use SMTP probe?").
				Description("Slower but catches mailbox-level rejections.").
				Value(&m.fb.probe),
		),
	).WithWidth(m.formWidth())
}

func (m Model) handleSubmit() tea.Cmd {
	mode := m.fb.mode
	email := strings.TrimSpace(m.fb.email)
	probe := m.fb.probe
	return func() tea.Msg {
		if mode == "bulk" {
			return SubmitBulkMsg{UseSMTPProbe: probe}
		}
		return SubmitOneMsg{Email: email, UseSMTPProbe: probe}
	}
}

// bulkLabel names the bulk option, with the pending count when known.
func bulkLabel(pending int) string {
	if pending > 0 {
		return fmt.Sprintf("All pending contacts (%d)", pending)
	}
	return "All pending contacts"
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

// renderOutcome formats a validation result for display.
func renderOutcome(res ResultMsg) string {
	if res.Err != nil {
		return theme.ErrorStyle.Render(res.Err.Error())
	}
	if res.Bulk {
		return fmt.Sprintf("%d contacts validated", res.BulkCount)
	}

	r := res.Result
	badge := theme.StatusStyle(r.Status).Render(r.Status)
	line := fmt.Sprintf("%s %s", badge, r.Email)
	if r.Provider != "" {
		line += "  via " + r.Provider
	}
	if r.Reason != "" {
		line += "  (" + r.Reason + ")"
	}
	return line
}

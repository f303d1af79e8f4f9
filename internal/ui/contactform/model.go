// Package contactform is the create-contact form. Saving can optionally
// validate the new address immediately, always with the SMTP probe.
package contactform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// SubmitMsg is dispatched when the form is completed. ValidateAfter
// requests an immediate probe of the new address after creation.
type SubmitMsg struct {
	Input         model.ContactInput
	ValidateAfter bool
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email         string
	firstName     string
	lastName      string
	linkedinURL   string
	validateAfter bool
}

// Model is the Bubble Tea model for the contact create form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new contact form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for a new contact.
func (m *Model) Start() tea.Cmd {
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the contact form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
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
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the contact form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Contact") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("person@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("First Name").
				Placeholder("Optional").
				Value(&m.fb.firstName),
			huh.NewInput().
				Title("Last Name").
				Placeholder("Optional").
				Value(&m.fb.lastName),
			huh.NewInput().
				Title("LinkedIn URL").
				Placeholder("Optional").
				Value(&m.fb.linkedinURL),
			huh.NewConfirm().
				Title("Validate after saving?").
				Description("Runs a full SMTP probe on the new address.").
				Value(&m.fb.validateAfter),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	input := model.ContactInput{
		Email:       m.fb.email,
		FirstName:   strings.TrimSpace(m.fb.firstName),
		LastName:    strings.TrimSpace(m.fb.lastName),
		LinkedInURL: strings.TrimSpace(m.fb.linkedinURL),
	}
	validateAfter := m.fb.validateAfter
	return func() tea.Msg {
		return SubmitMsg{Input: input, ValidateAfter: validateAfter}
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

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("not a valid email address")
	}
	return nil
}

// Package adminusers is the admin-only account management view.
package adminusers

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// LoadRequestMsg asks the root model to fetch the account listing.
type LoadRequestMsg struct{}

// UsersLoadedMsg carries the account listing to this view.
type UsersLoadedMsg struct {
	Users []model.AppUser
	Err   error
}

// CreateMsg asks the root model to create an account.
type CreateMsg struct {
	Email    string
	Password string
	Role     model.Role
}

// CreatedMsg carries the outcome of an account creation.
type CreatedMsg struct {
	User model.AppUser
	Err  error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	role     string
}

// Model is the admin users view component.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	users    []model.AppUser
	creating bool
	errMsg   string
	width    int
	height   int
}

// New creates a new admin users view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{role: string(model.RoleUser)},
		width:  width,
		height: height,
	}
}

// Init requests the account listing.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return LoadRequestMsg{} }
}

// Update handles messages for the admin users view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case UsersLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.users = msg.Users
		return m, nil

	case CreatedMsg:
		m.creating = false
		m.form = nil
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.Init()

	case tea.KeyMsg:
		if !m.creating {
			switch msg.String() {
			case "n":
				m.creating = true
				m.errMsg = ""
				*m.fb = formBindings{role: string(model.RoleUser)}
				m.form = m.buildForm()
				return m, m.form.Init()
			case "r":
				return m, m.Init()
			}
		}
	}

	if !m.creating || m.form == nil {
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
		m.creating = false
		m.form = nil
		return m, nil
	}

	return m, cmd
}

// Editing reports whether the create form owns key input.
func (m Model) Editing() bool {
	return m.creating
}

// View renders the admin users view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Accounts")}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg))
	}

	if m.creating && m.form != nil {
		parts = append(parts, m.form.View())
	} else {
		parts = append(parts, m.renderUsers())
		parts = append(parts, "", theme.HelpStyle.Render("n new account | r refresh | esc back"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// renderUsers lists the known accounts with role badges.
func (m Model) renderUsers() string {
	if len(m.users) == 0 {
		return theme.HelpStyle.Render("No accounts loaded.")
	}
	var b strings.Builder
	for _, u := range m.users {
		badge := theme.RoleStyle(u.Role).Render(string(u.Role))
		fmt.Fprintf(&b, "%s %s\n", badge, u.Email)
	}
	return b.String()
}

// SetSize updates the view dimensions.
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
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("User", string(model.RoleUser)),
					huh.NewOption("Admin", string(model.RoleAdmin)),
				).
				Value(&m.fb.role),
		),
	).WithWidth(m.formWidth())
}

func (m Model) handleSubmit() tea.Cmd {
	email := strings.TrimSpace(m.fb.email)
	password := m.fb.password
	role := model.Role(m.fb.role)
	return func() tea.Msg {
		return CreateMsg{Email: email, Password: password, Role: role}
	}
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
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

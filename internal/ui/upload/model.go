// Package upload is the CSV import view.
package upload

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// SubmitMsg asks the root model to upload the CSV at Path.
type SubmitMsg struct {
	Path string
}

// BackMsg asks the root model to leave this view.
type BackMsg struct{}

// ResultMsg carries the upload outcome back to this view.
type ResultMsg struct {
	Result model.UploadResult
	Err    error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	path string
}

// Model is the CSV upload view component.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	busy    bool
	outcome string
	width   int
	height  int
}

// New creates a new upload view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start (re)initializes the form, keeping the previous outcome visible.
func (m *Model) Start() tea.Cmd {
	m.busy = false
	m.fb.path = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the upload view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(ResultMsg); ok {
		if res.Err != nil {
			m.outcome = theme.ErrorStyle.Render(res.Err.Error())
		} else {
			m.outcome = fmt.Sprintf(
				"%d inserted, %d skipped",
				res.Result.Inserted, res.Result.Skipped,
			)
		}
		return m, m.Start()
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
		path := strings.TrimSpace(m.fb.path)
		return m, func() tea.Msg {
			return SubmitMsg{Path: path}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return BackMsg{} }
	}

	return m, cmd
}

// View renders the upload view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	hint := theme.HelpStyle.Render(
		"Expected columns: email, first_name, last_name, linkedin_url",
	)

	parts := []string{titleStyle.Render("Upload Contacts CSV"), hint}
	if m.outcome != "" {
		parts = append(parts, m.outcome, "")
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Uploading..."))
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
			huh.NewInput().
				Title("CSV file path").
				Placeholder("/path/to/contacts.csv").
				Value(&m.fb.path).
				Validate(validatePath),
		),
	).WithWidth(m.formWidth())
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

func validatePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

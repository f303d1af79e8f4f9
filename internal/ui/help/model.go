package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/keys"
	"github.com/nhle/sendlite/internal/theme"
)

// viewGuide gives each tab a one-line description shown above the
// keymap. The nav bar only offers the tabs the signed-in role can
// reach, but the guide lists all of them.
var viewGuide = []struct {
	name string
	desc string
}{
	{"Contacts", "browse the directory, validate rows, export CSV"},
	{"Validate", "probe a single address or run the pending backlog"},
	{"Upload", "bulk-import contacts from a CSV file"},
	{"Campaigns", "create a campaign and watch its delivery counters"},
	{"Compose", "quick send with advisory recipient checks"},
	{"Users", "manage accounts (admins only)"},
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	guideLines := make([]string, 0, len(viewGuide)+1)
	for _, v := range viewGuide {
		line := nameStyle.Render(v.name) + "  " + theme.HelpStyle.Render(v.desc)
		guideLines = append(guideLines, line)
	}
	guideLines = append(guideLines, "")
	guide := lipgloss.JoinVertical(lipgloss.Left, guideLines...)

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	content := lipgloss.JoinVertical(lipgloss.Left, title, guide, helpText)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

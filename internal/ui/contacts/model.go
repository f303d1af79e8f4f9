// Package contacts is the main contact list view: server-side filtered
// listing, per-row validation, and CSV export.
package contacts

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/keys"
	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// ContactsLoadedMsg is sent when a contact listing has been applied to
// the directory cache.
type ContactsLoadedMsg struct {
	Contacts []model.Contact
	Err      error
}

// ValidateContactMsg asks the root model to validate the given address.
type ValidateContactMsg struct {
	Email string
}

// ExportRequestMsg asks the root model to export the contact list as CSV.
type ExportRequestMsg struct{}

// NewContactMsg asks the root model to open the contact create form.
type NewContactMsg struct{}

// statusFilters lists the status filter cycle: empty means no filter.
var statusFilters = append([]string{""}, model.Statuses...)

// Model is the contact list view component.
type Model struct {
	list        list.Model
	dir         *directory.Directory
	keys        *keys.KeyMap
	statusIndex int
	searchMode  bool
	searchInput textinput.Model
	lastErr     string
	width       int
	height      int
}

// New creates a new contact list model.
func New(dir *directory.Directory, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Contacts"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search contacts..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		dir:         dir,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial contact set.
func (m Model) Init() tea.Cmd {
	return m.LoadContacts()
}

// Update handles messages for the contact list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ContactsLoadedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
			return m, nil
		}
		m.lastErr = ""
		items := make([]list.Item, len(msg.Contacts))
		for i, c := range msg.Contacts {
			items[i] = ContactItem{Contact: c}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		return m, m.LoadContacts()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		return m, m.LoadContacts()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleStatus):
		m.statusIndex = (m.statusIndex + 1) % len(statusFilters)
		return m, m.LoadContacts()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadContacts()

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewContactMsg{} }

	case key.Matches(msg, m.keys.Validate):
		item, ok := m.list.SelectedItem().(ContactItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return ValidateContactMsg{Email: item.Contact.Email}
		}

	case key.Matches(msg, m.keys.Export):
		return m, func() tea.Msg { return ExportRequestMsg{} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the contact list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if m.lastErr != "" {
		banner := theme.ErrorStyle.Padding(0, 1).Render(m.lastErr)
		return lipgloss.JoinVertical(lipgloss.Left, banner, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no contacts are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter() != (directory.Filter{}) {
		return style.Render("No matching contacts.\nPress s or / to adjust filters.")
	}
	return style.Render("No contacts yet.\n\nPress n to add one, or switch to Upload CSV.")
}

// SearchActive reports whether the search input owns key input.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// FilterSummary describes the active filter for the status bar, empty
// when none is set.
func (m Model) FilterSummary() string {
	f := m.filter()
	switch {
	case f.Status != "" && f.Query != "":
		return fmt.Sprintf("status:%s query:%q", f.Status, f.Query)
	case f.Status != "":
		return "status:" + f.Status
	case f.Query != "":
		return fmt.Sprintf("query:%q", f.Query)
	}
	return ""
}

// LoadContacts returns a tea.Cmd that fetches the listing for the
// current filter through the directory.
func (m Model) LoadContacts() tea.Cmd {
	d := m.dir
	f := m.filter()
	return func() tea.Msg {
		contacts, err := d.List(context.Background(), f)
		return ContactsLoadedMsg{Contacts: contacts, Err: err}
	}
}

// filter assembles the server-side filter from the UI state.
func (m Model) filter() directory.Filter {
	return directory.Filter{
		Status: statusFilters[m.statusIndex],
		Query:  m.searchInput.Value(),
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

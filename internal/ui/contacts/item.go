package contacts

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/theme"
)

// ContactItem wraps a model.Contact so it can be used in a bubbles/list.
type ContactItem struct {
	Contact model.Contact
}

// FilterValue returns the string used for fuzzy filtering.
func (i ContactItem) FilterValue() string { return i.Contact.Email }

// Title returns the contact email for the list.
func (i ContactItem) Title() string { return i.Contact.Email }

// Description returns a short summary line for the list.
func (i ContactItem) Description() string {
	return i.Contact.DisplayName()
}

// ItemDelegate implements list.ItemDelegate for rendering contact rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single contact row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(ContactItem)
	if !ok {
		return
	}

	c := ci.Contact

	status := c.Status
	if status == "" {
		status = model.StatusNew
	}
	statusBadge := theme.StatusStyle(status).Render(status)

	name := ""
	if dn := c.DisplayName(); dn != c.Email {
		name = "  " + dn
	}

	reason := ""
	if c.Reason != "" {
		reason = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("  " + c.Reason)
	}

	owner := ""
	if c.OwnerEmail != "" {
		owner = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render("  " + c.OwnerEmail)
	}

	line := fmt.Sprintf("%s %s%s%s%s", statusBadge, c.Email, name, reason, owner)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

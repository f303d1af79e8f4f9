package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sendlite/internal/access"
	"github.com/nhle/sendlite/internal/theme"
)

// Layout manages the terminal layout dimensions shared by every view.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	NavHeight       int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight, NavHeight, and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		NavHeight:       1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header, the navigation tabs, and the status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.NavHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title and the signed-in
// identity on the right.
func (l Layout) RenderHeader(title string, identity string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	identityRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(identity)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(identityRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		identityRendered,
	)
}

// RenderNav renders the navigation tab row for the visible capabilities,
// highlighting the active one.
func (l Layout) RenderNav(caps []access.Capability, active access.Capability) string {
	tabs := make([]string, 0, len(caps))
	for _, c := range caps {
		style := theme.TabStyle
		if c == active {
			style = theme.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(access.Label(c)))
	}
	return strings.Join(tabs, " ")
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, navigation tabs, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	nav string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		nav,
		content,
		statusBar,
	)
}

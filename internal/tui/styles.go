// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	primaryColor = lipgloss.Color("#2563EB")
	accentColor  = lipgloss.Color("#60A5FA")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
	textColor    = lipgloss.Color("#E5E7EB")
	borderColor  = lipgloss.Color("#374151")
)

var (
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	taglineStyle = lipgloss.NewStyle().Foreground(textColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	statusStyle  = lipgloss.NewStyle().Italic(true).Foreground(accentColor)
	footerStyle  = lipgloss.NewStyle().Bold(true).Italic(true).Foreground(lipgloss.Color("#113F67"))
)

// Breakpoints
const (
	// CompactWidth is the width below which panels drop borders and padding.
	CompactWidth = 60

	// MaxContentWidth caps line length on wide terminals.
	MaxContentWidth = 96

	minContentWidth = 20
)

// Layout is every size-dependent style for one terminal width. It is a
// pure function of the width so resizes never mutate styles in place.
type Layout struct {
	Width        int
	Compact      bool
	ContentWidth int
	BarWidth     int
	InputWidth   int
	Panel        lipgloss.Style
	Overlay      lipgloss.Style
}

// LayoutFor returns the layout for a terminal of the given width.
func LayoutFor(width int) Layout {
	l := Layout{Width: width, Compact: width < CompactWidth}

	frame := 0
	if l.Compact {
		l.Panel = lipgloss.NewStyle()
		l.Overlay = lipgloss.NewStyle()
	} else {
		l.Panel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
		l.Overlay = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(1, 3)
		frame = l.Panel.GetHorizontalFrameSize()
	}

	l.ContentWidth = max(min(width, MaxContentWidth)-frame, minContentWidth)
	// lipgloss widths include padding but not borders.
	l.Panel = l.Panel.Width(l.ContentWidth + l.Panel.GetHorizontalPadding())
	l.BarWidth = max(l.ContentWidth-4, 10)
	l.InputWidth = max(l.ContentWidth-4, 10)
	return l
}

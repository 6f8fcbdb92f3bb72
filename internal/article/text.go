// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package article

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// minWidth keeps narrow terminals readable.
const minWidth = 20

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	subtitleStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9CA3AF"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60A5FA"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
)

// Text renders the article for a terminal of the given width. Lines are
// wrapped to width; empty sections are omitted.
func (v View) Text(width int) string {
	width = max(width, minWidth)
	wrap := lipgloss.NewStyle().Width(width)

	var blocks []string
	if v.Category != "" {
		blocks = append(blocks, categoryStyle.Render(strings.ToUpper(v.Category)))
	}
	if v.Title != "" {
		blocks = append(blocks, wrap.Render(titleStyle.Render(v.Title)))
	}
	if v.Subtitle != "" {
		blocks = append(blocks, wrap.Render(subtitleStyle.Render(v.Subtitle)))
	}
	if v.ImageURL != "" {
		blocks = append(blocks, wrap.Render(metaStyle.Render("Image: "+v.ImageURL)))
	}
	if line := v.CelebrityLine(); line != "" {
		blocks = append(blocks, wrap.Render(metaStyle.Render("Featuring: "+line)))
	}
	for _, p := range v.Paragraphs {
		blocks = append(blocks, wrap.Render(bodyStyle.Render(p)))
	}
	if len(v.Tags) > 0 {
		blocks = append(blocks, wrap.Render(metaStyle.Render("Tags: "+strings.Join(v.Tags, ", "))))
	}
	return strings.Join(blocks, "\n\n")
}

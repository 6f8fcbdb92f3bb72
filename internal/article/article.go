// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package article turns the analysis payload into a renderable view.
// Every field falls back to an empty value; rendering never fails on
// missing data.
package article

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pixel8/pkg/types"
)

// htmlTagPattern detects bodies that arrive as HTML rather than text.
var htmlTagPattern = regexp.MustCompile(`</?(p|br|div|h[1-6]|ul|ol|li|em|strong|b|i|a|span)\b[^>]*>`)

// View is the rendered form of an article.
type View struct {
	Title    string
	Subtitle string
	Category string

	// Paragraphs is the body split into display paragraphs.
	Paragraphs []string

	// Celebrities are recognized names in service order.
	Celebrities []string

	// Tags are detected label names in service order.
	Tags []string

	// ImageURL is what the page displays: the local reference when the
	// article came from an upload, else the service's image URL.
	ImageURL string

	// RemoteImageURL is the image URL reported by the service, if any.
	RemoteImageURL string

	// LocalImage is the uploaded file path, if known.
	LocalImage string
}

// NewView builds a View from a hand-off.
func NewView(h types.Handoff) View {
	v := FromPayload(h.ArticlePayload)
	v.LocalImage = h.LocalImage
	if h.ImageURL != "" {
		v.ImageURL = h.ImageURL
	}
	return v
}

// FromPayload builds a View from a bare payload.
func FromPayload(p types.ArticlePayload) View {
	v := View{
		Title:          strings.TrimSpace(p.Title),
		Subtitle:       strings.TrimSpace(p.Subtitle),
		Category:       strings.TrimSpace(p.Category),
		Paragraphs:     Paragraphs(NormalizeBody(p.BodyText)),
		Celebrities:    []string{},
		Tags:           []string{},
		ImageURL:       p.ImageURL,
		RemoteImageURL: p.ImageURL,
	}
	for _, c := range p.Celebrities {
		if name := strings.TrimSpace(c.Name); name != "" {
			v.Celebrities = append(v.Celebrities, name)
		}
	}
	for _, l := range p.Labels {
		if name := strings.TrimSpace(l.Name); name != "" {
			v.Tags = append(v.Tags, name)
		}
	}
	return v
}

// CelebrityLine is the inline list of recognized names joined with ", ".
// Blank names were dropped by FromPayload.
func (v View) CelebrityLine() string {
	return strings.Join(v.Celebrities, ", ")
}

// NormalizeBody converts HTML bodies to Markdown and normalizes line
// endings. Plain-text bodies pass through.
func NormalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if !htmlTagPattern.MatchString(body) {
		return strings.TrimSpace(body)
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(body)
	if err != nil {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(out)
}

// Paragraphs splits a body into paragraphs. The analysis service emits one
// paragraph per line, so every non-blank line is a paragraph.
func Paragraphs(body string) []string {
	out := []string{}
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// frontMatter is the YAML header of the Markdown rendering.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Image       string   `yaml:"image,omitempty"`
	Celebrities []string `yaml:"celebrities,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Markdown renders the article as Markdown with a YAML front matter block.
func (v View) Markdown() (string, error) {
	fm, err := yaml.Marshal(frontMatter{
		Title:       v.Title,
		Subtitle:    v.Subtitle,
		Category:    v.Category,
		Image:       v.displayImage(),
		Celebrities: v.Celebrities,
		Tags:        v.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(v.markdownBody())
	return b.String(), nil
}

// HTML renders the article body document as HTML.
func (v View) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(v.markdownBody()), &buf); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.String(), nil
}

func (v View) markdownBody() string {
	var b strings.Builder
	if v.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", v.Title)
	}
	if v.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", v.Subtitle)
	}
	if v.Category != "" {
		fmt.Fprintf(&b, "**%s**\n\n", v.Category)
	}
	if img := v.displayImage(); img != "" {
		fmt.Fprintf(&b, "![Post visual](%s)\n\n", img)
	}
	if line := v.CelebrityLine(); line != "" {
		fmt.Fprintf(&b, "Featuring: %s\n\n", line)
	}
	for _, p := range v.Paragraphs {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	if len(v.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(v.Tags, ", "))
	}
	return b.String()
}

// displayImage prefers the remote URL for shareable output; local file
// URLs only make sense on this machine.
func (v View) displayImage() string {
	if v.RemoteImageURL != "" {
		return v.RemoteImageURL
	}
	return v.ImageURL
}

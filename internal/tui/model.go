// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive terminal front end. The landing screen
// selects an image and collects consent, a loading overlay tracks the
// upload, and the article screen shows the result with PDF export and a
// box for the next upload.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/pixel8/internal/article"
	"github.com/pdiddy/pixel8/internal/consent"
	"github.com/pdiddy/pixel8/internal/export"
	"github.com/pdiddy/pixel8/internal/flow"
	"github.com/pdiddy/pixel8/internal/logging"
	"github.com/pdiddy/pixel8/pkg/types"
)

type screen int

const (
	screenLanding screen = iota
	screenArticle
)

// headerLines is the space above the article viewport.
const headerLines = 4

// Model is the bubbletea model for the whole program.
type Model struct {
	ctx      context.Context
	landing  *flow.Landing
	article  *flow.Article
	exporter *export.Exporter
	log      *logging.Logger

	screen screen
	width  int
	height int
	layout Layout

	input    textinput.Model
	bar      progress.Model
	spin     spinner.Model
	viewport viewport.Model
	view     article.View

	run       *uploadRun
	cancel    context.CancelFunc
	followUp  bool
	errMsg    string
	status    string
	exporting bool
}

// NewModel builds the model. ctx bounds uploads and exports.
func NewModel(ctx context.Context, landing *flow.Landing, art *flow.Article, exporter *export.Exporter, log *logging.Logger) Model {
	if log == nil {
		log = logging.Nop()
	}

	in := textinput.New()
	in.Placeholder = "path/to/photo.jpg"
	in.Prompt = "Image: "
	in.Focus()

	m := Model{
		ctx:      ctx,
		landing:  landing,
		article:  art,
		exporter: exporter,
		log:      log,
		input:    in,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(80, 20),
	}
	return m.resize(80, 24)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// resize applies the layout for a new window size.
func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height
	m.layout = LayoutFor(width)
	m.input.Width = m.layout.InputWidth
	m.bar.Width = m.layout.BarWidth
	m.viewport.Width = m.layout.ContentWidth
	m.viewport.Height = max(height-headerLines-2, 3)
	if m.screen == screenArticle {
		m.viewport.SetContent(m.view.Text(m.layout.ContentWidth))
	}
	return m
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case progressMsg:
		if m.run == nil {
			return m, nil
		}
		return m, waitForProgress(m.run)

	case uploadDoneMsg:
		return m.finishUpload(msg)

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Saved " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if m.run == nil && !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.screen == screenArticle && !m.followUp {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	if m.run != nil {
		// Input is locked while an upload runs.
		return m, nil
	}

	if m.screen == screenArticle && !m.followUp {
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "d":
			return m.startExport()
		case "u":
			m.followUp = true
			m.errMsg = ""
			m.status = ""
			m.input.Reset()
			return m, m.input.Focus()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		if m.followUp {
			m.followUp = false
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		m.selectFile(strings.TrimSpace(m.input.Value()))
		return m, nil
	case "tab":
		m.toggleConsent()
		return m, nil
	case "ctrl+s":
		return m.startUpload()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) selectFile(path string) {
	if path == "" {
		return
	}
	m.errMsg = ""
	if m.followUp {
		if _, err := m.article.SelectFile(path); err != nil {
			m.log.Debug("follow-up selection failed", "path", path, "error", err.Error())
		}
		return
	}
	if _, err := m.landing.SelectFile(path); err != nil {
		m.log.Debug("selection failed", "path", path, "error", err.Error())
	}
}

func (m *Model) toggleConsent() {
	if m.followUp {
		if m.article.Candidate() != nil {
			m.article.SetConsent(!m.article.Consented())
		}
		return
	}
	if m.landing.ConsentVisible() {
		m.landing.SetConsent(!m.landing.Consented())
	}
}

// startUpload runs Landing.Submit in a command and streams overlay updates
// back through the run's channel. A follow-up upload from the article
// screen is handed to Landing first so one guard covers both screens.
func (m Model) startUpload() (tea.Model, tea.Cmd) {
	if m.followUp {
		c := m.article.Candidate()
		if c == nil || !m.article.Consented() {
			return m, nil
		}
		if _, err := m.landing.SelectFile(c.Path); err != nil || m.landing.Candidate() == nil {
			m.errMsg = m.landing.Error()
			return m, nil
		}
		m.landing.SetConsent(true)
	}
	if !m.landing.SubmitVisible() {
		return m, nil
	}
	if m.followUp {
		m.article.SetLoading(true)
	}

	run := newUploadRun()
	ctx, cancel := context.WithCancel(m.ctx)
	m.run, m.cancel = run, cancel
	m.errMsg = ""

	landing := m.landing
	submit := func() tea.Msg {
		defer close(run.done)
		h, err := landing.Submit(ctx, run.send)
		return uploadDoneMsg{handoff: h, err: err}
	}
	return m, tea.Batch(submit, waitForProgress(run), m.spin.Tick)
}

func (m Model) finishUpload(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.run, m.cancel = nil, nil

	if msg.err != nil {
		if errors.Is(msg.err, flow.ErrNotReady) || errors.Is(msg.err, flow.ErrUploadInFlight) {
			if m.followUp {
				m.article.SetLoading(false)
			}
			return m, nil
		}
		m.errMsg = m.landing.Error()
		if m.followUp {
			m.article.Fail(m.errMsg)
		}
		return m, nil
	}

	m.article.Arrive(*msg.handoff)
	m.view = article.NewView(*msg.handoff)
	m.screen = screenArticle
	m.followUp = false
	m.status = ""
	m.input.Reset()
	m.viewport.SetContent(m.view.Text(m.layout.ContentWidth))
	m.viewport.GotoTop()
	return m, nil
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting || m.exporter == nil {
		return m, nil
	}
	m.exporting = true
	m.status = "Exporting PDF..."
	ctx, exporter, v := m.ctx, m.exporter, m.view
	write := func() tea.Msg {
		path, err := exporter.Export(ctx, v)
		return exportDoneMsg{path: path, err: err}
	}
	return m, tea.Batch(write, m.spin.Tick)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.run != nil {
		if s := m.landing.Progress(); s.State.Active() {
			return m.overlayView()
		}
	}
	if m.screen == screenArticle {
		return m.articleView()
	}
	return m.landingView()
}

func (m Model) overlayView() string {
	s := m.landing.Progress()
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.spin.View()+" "+statusStyle.Render(s.Text),
		"",
		m.bar.ViewAs(float64(s.Progress)/100),
		mutedStyle.Render(fmt.Sprintf("%d%%", s.Progress)),
	)
	return m.layout.Overlay.Render(body)
}

func (m Model) landingView() string {
	w := m.layout.ContentWidth
	wrap := lipgloss.NewStyle().Width(w)

	lines := []string{
		brandStyle.Render("PIXEL8"),
		wrap.Render(taglineStyle.Render("Turn a photo into a news article.")),
		"",
		m.input.View(),
	}
	if m.errMsg != "" {
		lines = append(lines, wrap.Render(errorStyle.Render(m.errMsg)))
	} else if e := m.landing.Error(); e != "" {
		lines = append(lines, wrap.Render(errorStyle.Render(e)))
	}
	if c := m.landing.Candidate(); c != nil {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Selected: %s (%s)", c.FileName, types.FormatSize(c.SizeBytes))))
	}
	if m.landing.ConsentVisible() {
		lines = append(lines, "", wrap.Render(checkbox(m.landing.Consented())+" "+mutedStyle.Render(consent.Text)))
	}
	lines = append(lines, "", m.help(m.landing.SubmitVisible()))
	return m.layout.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) articleView() string {
	w := m.layout.ContentWidth
	wrap := lipgloss.NewStyle().Width(w)

	header := brandStyle.Render("PIXEL8") + mutedStyle.Render("  ·  ") + keyStyle.Render("d") + mutedStyle.Render(" download PDF  ") +
		keyStyle.Render("u") + mutedStyle.Render(" upload another  ") + keyStyle.Render("q") + mutedStyle.Render(" quit")

	var sections []string
	sections = append(sections, header)
	if m.status != "" {
		status := statusStyle.Render(m.status)
		if m.exporting {
			status = m.spin.View() + " " + status
		}
		sections = append(sections, status)
	}

	if m.followUp {
		box := []string{m.input.View()}
		if e := m.followUpError(); e != "" {
			box = append(box, wrap.Render(errorStyle.Render(e)))
		}
		if name := m.article.SelectedFileName(); name != "" {
			box = append(box, mutedStyle.Render("Selected: "+name))
			box = append(box, wrap.Render(checkbox(m.article.Consented())+" "+mutedStyle.Render(consent.Text)))
		}
		box = append(box, m.help(m.article.Candidate() != nil && m.article.Consented()))
		sections = append(sections, m.layout.Panel.Render(strings.Join(box, "\n")))
	} else {
		sections = append(sections, m.viewport.View())
	}

	if m.exporter != nil && m.exporter.Attribution().Visible() {
		sections = append(sections, footerStyle.Render(m.exporter.Attribution().Text()))
	}
	return strings.Join(sections, "\n")
}

func (m Model) followUpError() string {
	if m.errMsg != "" {
		return m.errMsg
	}
	return m.article.Error()
}

func (m Model) help(canStart bool) string {
	parts := []string{
		keyStyle.Render("enter") + mutedStyle.Render(" select"),
		keyStyle.Render("tab") + mutedStyle.Render(" consent"),
	}
	if canStart {
		parts = append(parts, keyStyle.Render("ctrl+s")+mutedStyle.Render(" generate article"))
	}
	parts = append(parts, keyStyle.Render("esc")+mutedStyle.Render(" back"))
	return strings.Join(parts, mutedStyle.Render("  ·  "))
}

func checkbox(checked bool) string {
	if checked {
		return keyStyle.Render("[x]")
	}
	return mutedStyle.Render("[ ]")
}

// Screen names the visible screen, for logging and tests.
func (m Model) Screen() string {
	if m.screen == screenArticle {
		return "article"
	}
	return "landing"
}

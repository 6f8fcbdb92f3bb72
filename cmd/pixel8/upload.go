// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pixel8/internal/article"
	"github.com/pdiddy/pixel8/internal/consent"
	"github.com/pdiddy/pixel8/internal/export"
	"github.com/pdiddy/pixel8/internal/flow"
	tracker "github.com/pdiddy/pixel8/internal/progress"
	"github.com/pdiddy/pixel8/internal/upload"
	"github.com/pdiddy/pixel8/pkg/types"
)

// Output formats for the upload command.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJSON     = "json"
	formatYAML     = "yaml"
)

// textWidth is the wrap width for --format text.
const textWidth = 80

var uploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Upload a photo and print the generated article",
	Long: `Upload validates a JPG or PNG photo (10 MB at most), asks for consent,
sends it to the analysis service and prints the article it returns.

Progress is written to stderr; the article goes to stdout in the chosen
format. With --pdf the article is also exported to Article.pdf in the
output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().Bool("consent", false, "accept the data processing consent without prompting")
	uploadCmd.Flags().String("format", formatText, "output format: text, markdown, html, json or yaml")
	uploadCmd.Flags().Bool("pdf", false, "also export the article to Article.pdf")
	uploadCmd.Flags().String("output-dir", "", "directory for Article.pdf (default .)")
	uploadCmd.Flags().String("endpoint", "", "analysis service base URL")
	uploadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 5m)")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	switch format {
	case formatText, formatMarkdown, formatHTML, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q (want text, markdown, html, json or yaml)", format)
	}

	cfg := appConfig
	applyUploadFlags(cmd, &cfg)

	client := &http.Client{Timeout: cfg.Upload.Timeout}
	landing := flow.NewLanding(upload.New(client, cfg.Upload, logger), cfg.Upload, logger)

	res, err := landing.SelectFile(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", landing.Error(), err)
	}
	if !res.OK() {
		return errors.New(res.Message())
	}

	ok, _ := cmd.Flags().GetBool("consent")
	if !ok {
		ok, err = askConsent(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	if !ok {
		return errors.New("consent is required to upload an image")
	}
	landing.SetConsent(true)

	bar := newProgressLine(cmd.ErrOrStderr())
	h, err := landing.Submit(cmd.Context(), bar.update)
	bar.finish()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), landing.Error())
		return err
	}

	v := article.NewView(*h)
	out, err := renderArticle(v, *h, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if pdf, _ := cmd.Flags().GetBool("pdf"); pdf {
		exporter := export.New(cfg.Export, client, nil, logger)
		path, err := exporter.Export(cmd.Context(), v)
		if err != nil {
			return fmt.Errorf("exporting PDF: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}
	return nil
}

// askConsent shows the consent text and reads a y/N answer.
func askConsent(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprintln(out, consent.Text)
	fmt.Fprint(out, "Do you consent? [y/N]: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading consent: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// renderArticle formats the article for stdout. JSON and YAML carry the
// full navigation hand-off.
func renderArticle(v article.View, h types.Handoff, format string) (string, error) {
	switch format {
	case formatMarkdown:
		return v.Markdown()
	case formatHTML:
		return v.HTML()
	case formatJSON:
		data, err := json.MarshalIndent(h, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding JSON: %w", err)
		}
		return string(data), nil
	case formatYAML:
		data, err := yaml.Marshal(h)
		if err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		return v.Text(textWidth), nil
	}
}

// progressLine redraws a single progress line on a terminal stream.
// Updates may arrive from the transport goroutine.
type progressLine struct {
	w   io.Writer
	bar progress.Model

	mu   sync.Mutex
	last string
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{
		w:   w,
		bar: progress.New(progress.WithWidth(30), progress.WithoutPercentage(), progress.WithDefaultGradient()),
	}
}

func (p *progressLine) update(s tracker.Snapshot) {
	if !s.State.Active() && s.State != tracker.Done {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("\r%s %3d%% %s", p.bar.ViewAs(float64(s.Progress)/100), s.Progress, s.Text)
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprint(p.w, line+"\x1b[K")
}

func (p *progressLine) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last != "" {
		fmt.Fprintln(p.w)
	}
}

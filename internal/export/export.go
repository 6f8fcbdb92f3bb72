// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes a rendered article to a downloadable PDF.
// The layout is A4 portrait with 0.75in top/bottom and 0.5in side margins;
// blocks move to the next page rather than split when they fit on one.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/pixel8/internal/article"
	"github.com/pdiddy/pixel8/internal/httputil"
	"github.com/pdiddy/pixel8/internal/logging"
	"github.com/pdiddy/pixel8/pkg/types"
)

const (
	marginSide     = 0.5
	marginVertical = 0.75
	cssPixelsPerIn = 96.0
	maxImageBytes  = 20 * types.MegaByte
	fontFamily     = "Helvetica"
)

// Exporter renders article views to PDF files.
type Exporter struct {
	cfg         types.ExportConfig
	http        *http.Client
	attribution *Attribution
	log         *logging.Logger
	compress    bool
}

// New creates an Exporter. A nil client means http.DefaultClient; a nil
// attribution uses cfg.Attribution.
func New(cfg types.ExportConfig, client *http.Client, attribution *Attribution, log *logging.Logger) *Exporter {
	c := types.Config{Export: cfg}
	c.ApplyDefaults()
	if client == nil {
		client = http.DefaultClient
	}
	if attribution == nil {
		attribution = NewAttribution(c.Export.Attribution)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Exporter{
		cfg:         c.Export,
		http:        client,
		attribution: attribution,
		log:         log,
		compress:    true,
	}
}

// Attribution returns the footer toggle the exporter reveals.
func (e *Exporter) Attribution() *Attribution {
	return e.attribution
}

// Path is where Export writes the PDF.
func (e *Exporter) Path() string {
	return filepath.Join(e.cfg.OutputDir, e.cfg.FileName)
}

// Export reveals the attribution, lays out v, writes the PDF to Path() and
// hides the attribution again on every exit path.
func (e *Exporter) Export(ctx context.Context, v article.View) (string, error) {
	hide := e.attribution.Reveal()
	defer hide()

	dest := e.Path()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	renderErr := e.Render(ctx, v, tmpFile)
	closeErr := tmpFile.Close()
	if renderErr != nil {
		os.Remove(tmpPath)
		e.log.Warn("export failed", "error", renderErr.Error())
		return "", renderErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}

	e.log.Info("article exported", "path", dest, "title", v.Title)
	return dest, nil
}

// Render writes the PDF for v to w. The attribution footer is included
// only while it is visible.
func (e *Exporter) Render(ctx context.Context, v article.View, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := fpdf.New("P", "in", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(marginSide, marginVertical, marginSide)
	pdf.SetAutoPageBreak(true, marginVertical)
	pdf.SetCreator(e.cfg.UserAgent, false)
	pdf.SetTitle(v.Title, true)
	pdf.AddPage()

	l := &layout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if v.Category != "" {
		l.text(strings.ToUpper(v.Category), "B", 10, 0.2, [3]int{37, 99, 235})
	}
	if v.Title != "" {
		l.text(v.Title, "B", 22, 0.34, [3]int{17, 24, 39})
	}
	if v.Subtitle != "" {
		l.text(v.Subtitle, "I", 12, 0.22, [3]int{75, 85, 99})
	}
	l.gap(0.15)

	if img, kind, ok := e.loadImage(ctx, v); ok {
		if err := l.image(img, kind, e.cfg.ImageScale); err != nil {
			e.log.Warn("skipping article image", "error", err.Error())
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if line := v.CelebrityLine(); line != "" {
		l.text("Featuring: "+line, "I", 11, 0.2, [3]int{75, 85, 99})
	}
	for _, p := range v.Paragraphs {
		l.text(p, "", 11, 0.2, [3]int{55, 65, 81})
	}
	if len(v.Tags) > 0 {
		l.text("Tags: "+strings.Join(v.Tags, ", "), "", 9, 0.18, [3]int{107, 114, 128})
	}

	if e.attribution.Visible() {
		l.gap(0.2)
		l.text(e.attribution.Text(), "BI", 10, 0.2, [3]int{17, 63, 103})
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("laying out PDF: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// loadImage reads the local upload if present, else fetches the remote
// image. Failures are logged and the image is skipped.
func (e *Exporter) loadImage(ctx context.Context, v article.View) ([]byte, string, bool) {
	var (
		data []byte
		err  error
	)
	switch {
	case v.LocalImage != "":
		data, err = readLimited(v.LocalImage)
	case strings.HasPrefix(v.RemoteImageURL, "http://") || strings.HasPrefix(v.RemoteImageURL, "https://"):
		data, err = e.fetch(ctx, v.RemoteImageURL)
	default:
		return nil, "", false
	}
	if err != nil {
		e.log.Warn("could not load article image", "error", err.Error())
		return nil, "", false
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		e.log.Warn("unsupported article image", "error", err.Error())
		return nil, "", false
	}
	switch format {
	case "jpeg":
		return data, "JPG", true
	case "png":
		return data, "PNG", true
	default:
		return nil, "", false
	}
}

func (e *Exporter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer httputil.Drain(resp)
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}

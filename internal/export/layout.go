// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"
	"image"

	"github.com/go-pdf/fpdf"
)

// layout places blocks on the page, moving a block to the next page when
// it would otherwise be split and fits on a fresh page.
type layout struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	images int
}

func (l *layout) contentWidth() float64 {
	pageW, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	return pageW - left - right
}

func (l *layout) contentHeight() float64 {
	_, pageH := l.pdf.GetPageSize()
	_, top, _, bottom := l.pdf.GetMargins()
	return pageH - top - bottom
}

// keepTogether starts a new page if a block of height h would cross the
// bottom margin but fits on an empty page.
func (l *layout) keepTogether(h float64) {
	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h > pageH-bottom && h <= l.contentHeight() {
		l.pdf.AddPage()
	}
}

func (l *layout) gap(h float64) {
	l.pdf.Ln(h)
}

// text writes a paragraph block followed by a small gap.
func (l *layout) text(s, style string, size, lineH float64, rgb [3]int) {
	s = l.tr(s)
	l.pdf.SetFont(fontFamily, style, size)
	l.pdf.SetTextColor(rgb[0], rgb[1], rgb[2])

	w := l.contentWidth()
	lines := l.pdf.SplitLines([]byte(s), w)
	l.keepTogether(float64(len(lines)) * lineH)

	l.pdf.MultiCell(w, lineH, s, "", "L", false)
	l.pdf.Ln(lineH / 2)
}

// image places an image at the given raster scale: pixelWidth / (96 *
// scale) inches, clamped to the content box.
func (l *layout) image(data []byte, kind string, scale float64) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("image has no pixels")
	}

	w := float64(cfg.Width) / (cssPixelsPerIn * scale)
	h := w * float64(cfg.Height) / float64(cfg.Width)
	if maxW := l.contentWidth(); w > maxW {
		w, h = maxW, maxW*h/w
	}
	if maxH := l.contentHeight(); h > maxH {
		w, h = maxH*w/h, maxH
	}
	l.keepTogether(h)

	l.images++
	name := fmt.Sprintf("article-image-%d", l.images)
	opts := fpdf.ImageOptions{ImageType: kind}
	l.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := l.pdf.Error(); err != nil {
		return fmt.Errorf("registering image: %w", err)
	}

	left, _, _, _ := l.pdf.GetMargins()
	x := left + (l.contentWidth()-w)/2
	l.pdf.ImageOptions(name, x, l.pdf.GetY(), w, h, false, opts, 0, "")
	l.pdf.SetY(l.pdf.GetY() + h)
	l.pdf.Ln(0.2)
	return nil
}

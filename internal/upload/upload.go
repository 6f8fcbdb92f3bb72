// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload sends an image to the analysis service as a single
// multipart POST and decodes the article it returns. Uploads are never
// retried; a failed upload must be re-armed by the caller.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/pixel8/internal/httputil"
	"github.com/pdiddy/pixel8/internal/logging"
	"github.com/pdiddy/pixel8/pkg/types"
)

const (
	uploadPath = "/api/upload"
	pingPath   = "/api/ping"

	// FormField is the multipart field carrying the image.
	FormField = "image"
)

// Error is an upload failure: a transport error or a non-2xx response.
type Error struct {
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client talks to the analysis service.
type Client struct {
	http  *http.Client
	cfg   types.UploadConfig
	log   *logging.Logger
	newID func() string
}

// New creates a Client. A nil http client means http.DefaultClient with
// cfg.Timeout; a nil logger discards logs.
func New(client *http.Client, cfg types.UploadConfig, log *logging.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		http:  client,
		cfg:   cfg,
		log:   log,
		newID: uuid.NewString,
	}
}

// Submit uploads the candidate and returns the decoded result. onProgress,
// if set, receives non-decreasing percentages of bytes sent, never above
// cfg.ProgressCap; it is called from the goroutine that writes the request
// body.
func (c *Client) Submit(ctx context.Context, cand types.UploadCandidate, onProgress func(int)) (*types.UploadResult, error) {
	endpoint, err := httputil.ResolveURL(c.cfg.BaseURL, uploadPath)
	if err != nil {
		return nil, &Error{Err: err}
	}

	f, err := os.Open(cand.Path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("opening %s: %w", cand.FileName, err)}
	}
	defer f.Close()
	// The candidate's size was taken at selection time; the body length
	// must match what is on disk now.
	info, err := f.Stat()
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("reading %s: %w", cand.FileName, err)}
	}
	size := info.Size()

	head, tail, contentType, err := envelope(cand)
	if err != nil {
		return nil, &Error{Err: err}
	}
	total := int64(len(head)) + size + int64(len(tail))

	body := &countingReader{
		r:      io.MultiReader(bytes.NewReader(head), io.LimitReader(f, size), bytes.NewReader(tail)),
		total:  total,
		limit:  progressCap(c.cfg.ProgressCap),
		report: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	requestID := c.newID()
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With("request_id", requestID, "file", cand.FileName)
	log.Info("upload started", "endpoint", endpoint, "bytes", size, "mime_type", cand.MIMEType)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("upload request failed", "error", err.Error())
		return nil, &Error{Err: fmt.Errorf("HTTP request: %w", err)}
	}
	defer httputil.Drain(resp)

	var result types.UploadResult
	if err := httputil.DecodeJSON(resp, &result); err != nil {
		log.Warn("upload rejected", "status", resp.StatusCode, "error", err.Error())
		uerr := &Error{Err: err}
		var se *httputil.StatusError
		if errors.As(err, &se) {
			uerr.StatusCode = se.StatusCode
		}
		return nil, uerr
	}

	log.Info("upload complete", "status", resp.StatusCode, "title", result.Analysis.Title)
	return &result, nil
}

// Ping checks that the analysis service is reachable.
func (c *Client) Ping(ctx context.Context) (string, error) {
	endpoint, err := httputil.ResolveURL(c.cfg.BaseURL, pingPath)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer httputil.Drain(resp)

	var body struct {
		Message string `json:"message"`
	}
	if err := httputil.DecodeJSON(resp, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// envelope renders the multipart framing around the file bytes so the
// total body length is known before sending.
func envelope(cand types.UploadCandidate) (head, tail []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FormField, quoteEscaper.Replace(cand.FileName)))
	mimeType := cand.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, nil, "", fmt.Errorf("building multipart body: %w", err)
	}
	head = bytes.Clone(buf.Bytes())
	buf.Reset()

	if err := mw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("building multipart body: %w", err)
	}
	tail = bytes.Clone(buf.Bytes())
	return head, tail, mw.FormDataContentType(), nil
}

func progressCap(p int) int {
	if p <= 0 || p >= 100 {
		return types.DefaultProgressCap
	}
	return p
}

// countingReader reports the share of the body read so far.
type countingReader struct {
	r      io.Reader
	total  int64
	limit  int
	report func(int)

	mu   sync.Mutex
	sent int64
	last int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 && cr.report != nil {
		cr.mu.Lock()
		cr.sent += int64(n)
		pct := int(cr.sent * 100 / cr.total)
		pct = min(pct, cr.limit)
		changed := pct > cr.last
		if changed {
			cr.last = pct
		}
		cr.mu.Unlock()
		if changed {
			cr.report(pct)
		}
	}
	return n, err
}

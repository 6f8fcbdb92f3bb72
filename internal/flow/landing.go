// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flow drives the upload-and-result state machine shared by the
// CLI and the terminal UI. Landing owns file selection, consent and the
// upload; it hands a types.Handoff to Article, which owns the result.
package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/pixel8/internal/consent"
	"github.com/pdiddy/pixel8/internal/logging"
	"github.com/pdiddy/pixel8/internal/progress"
	"github.com/pdiddy/pixel8/internal/validate"
	"github.com/pdiddy/pixel8/pkg/types"
)

// FailureMessage is the inline message shown after a failed upload.
const FailureMessage = "Upload failed. Please select your image and try again."

var (
	// ErrNotReady means Submit was called without consent or a candidate.
	// Nothing was sent.
	ErrNotReady = errors.New("upload requires a selected image and consent")

	// ErrUploadInFlight means another upload is running. Nothing was sent.
	ErrUploadInFlight = errors.New("an upload is already in progress")
)

// Uploader sends a candidate to the analysis service.
type Uploader interface {
	Submit(ctx context.Context, c types.UploadCandidate, onProgress func(int)) (*types.UploadResult, error)
}

// Landing is the pre-upload flow: select, validate, consent, submit.
// Its methods are safe for concurrent use.
type Landing struct {
	uploader Uploader
	cfg      types.UploadConfig
	log      *logging.Logger
	tracker  *progress.Tracker

	mu       sync.Mutex
	gate     consent.Gate
	errMsg   string
	inFlight bool
}

// NewLanding creates a Landing that submits through up. Zero config fields
// take their defaults.
func NewLanding(up Uploader, cfg types.UploadConfig, log *logging.Logger) *Landing {
	c := types.Config{Upload: cfg}
	c.ApplyDefaults()
	if log == nil {
		log = logging.Nop()
	}
	return &Landing{
		uploader: up,
		cfg:      c.Upload,
		log:      log,
		tracker:  progress.NewTracker(c.Upload.ProgressCap),
	}
}

// SelectFile inspects and validates the file at path. An accepted file
// becomes the candidate; a rejected one clears any previous candidate and
// records the rejection message. Consent is withdrawn either way. The
// error is non-nil only when the file could not be read or an upload is
// running.
func (l *Landing) SelectFile(path string) (types.ValidationResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return types.ValidationResult{}, ErrUploadInFlight
	}

	cand, res, err := inspect(path, l.cfg.MaxFileSizeBytes)
	if err != nil {
		l.gate.Reset()
		l.errMsg = "Could not read the selected file."
		return res, err
	}
	if !res.OK() {
		l.gate.Reset()
		l.errMsg = res.Message()
		l.log.Info("file rejected", "file", cand.FileName, "status", string(res.Status), "bytes", cand.SizeBytes)
		return res, nil
	}

	l.gate.Select(&cand)
	l.errMsg = ""
	l.log.Debug("file selected", "file", cand.FileName, "bytes", cand.SizeBytes)
	return res, nil
}

// SetConsent records the user's consent for the current candidate. It is
// ignored while an upload is running.
func (l *Landing) SetConsent(accepted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return
	}
	l.gate.SetAccepted(accepted)
}

// Candidate returns the selected candidate, or nil.
func (l *Landing) Candidate() *types.UploadCandidate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gate.Candidate()
}

// Consented reports whether consent is currently given.
func (l *Landing) Consented() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gate.Accepted()
}

// Error returns the inline error message, or "".
func (l *Landing) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

// Loading reports whether an upload is running.
func (l *Landing) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// ConsentVisible reports whether the consent control should be shown.
func (l *Landing) ConsentVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gate.Candidate() != nil && !l.inFlight
}

// SubmitVisible reports whether the start control should be shown.
func (l *Landing) SubmitVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gate.Ready() && !l.inFlight
}

// Progress returns the loading overlay state.
func (l *Landing) Progress() progress.Snapshot {
	return l.tracker.Snapshot()
}

// OverlayVisible reports whether the loading overlay is shown.
func (l *Landing) OverlayVisible() bool {
	return l.tracker.Snapshot().State.Active()
}

// OverlayText is the status line under the progress bar.
func (l *Landing) OverlayText() string {
	return l.tracker.Snapshot().Text
}

// Submit uploads the candidate, runs the processing tail and returns the
// hand-off for the article flow. It is a no-op returning ErrNotReady
// unless consent is given and a candidate is selected, and a no-op
// returning ErrUploadInFlight while another Submit runs. onUpdate, if set,
// receives every overlay change, possibly from another goroutine.
//
// On success the candidate and consent are cleared. On failure they are
// cleared too, FailureMessage is recorded and the overlay returns to Idle.
func (l *Landing) Submit(ctx context.Context, onUpdate func(progress.Snapshot)) (*types.Handoff, error) {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	if !l.gate.Ready() {
		l.mu.Unlock()
		return nil, ErrNotReady
	}
	cand := *l.gate.Candidate()
	l.inFlight = true
	l.errMsg = ""
	l.mu.Unlock()

	notify := func() {
		if onUpdate != nil {
			onUpdate(l.tracker.Snapshot())
		}
	}

	if err := l.tracker.Start(); err != nil {
		// The tracker is only left non-Idle by a previous Submit, which
		// always resets it.
		l.finish("")
		return nil, err
	}
	notify()

	log := l.log.With("file", cand.FileName)
	started := time.Now()

	res, err := l.uploader.Submit(ctx, cand, func(p int) {
		if l.tracker.Advance(p) == nil {
			notify()
		}
	})
	if err != nil {
		return nil, l.fail(log, err, notify)
	}

	if err := progress.RunProcessing(ctx, l.tracker, l.cfg.ProcessingTick, l.cfg.ProcessingStep, func(progress.Snapshot) {
		notify()
	}); err != nil {
		return nil, l.fail(log, err, notify)
	}

	h := &types.Handoff{
		ImageURL:       LocalImageURL(cand.Path),
		FromUpload:     true,
		LocalImage:     cand.Path,
		ArticlePayload: res.Article(),
	}
	log.Info("article ready", "title", h.Title, "elapsed", time.Since(started).String())

	l.finish("")
	return h, nil
}

func (l *Landing) fail(log *logging.Logger, cause error, notify func()) error {
	log.Warn("upload failed", "error", cause.Error())
	if l.tracker.Fail(cause) == nil {
		notify()
	}
	l.finish(FailureMessage)
	notify()
	return fmt.Errorf("submitting image: %w", cause)
}

// finish resets the overlay, candidate and consent and ends the flight.
func (l *Landing) finish(msg string) {
	l.tracker.Reset()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gate.Reset()
	l.errMsg = msg
	l.inFlight = false
}

// LocalImageURL returns a file:// URL for path, the locally addressable
// reference the article flow displays regardless of any remote image URL.
func LocalImageURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// inspect reads and validates the file at path against ceiling.
func inspect(path string, ceiling int64) (types.UploadCandidate, types.ValidationResult, error) {
	cand, err := validate.Inspect(path)
	if err != nil {
		return cand, types.ValidationResult{}, err
	}
	return cand, validate.Validate(cand, ceiling), nil
}

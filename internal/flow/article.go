// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"sync"

	"github.com/pdiddy/pixel8/internal/consent"
	"github.com/pdiddy/pixel8/pkg/types"
)

// Article is the post-upload flow. It shows the hand-off it arrived with
// and offers its own file selection for the next upload, validated with
// the same ceiling as Landing.
type Article struct {
	ceiling int64

	mu      sync.Mutex
	handoff *types.Handoff
	gate    consent.Gate
	loading bool
	errMsg  string
}

// NewArticle creates an empty article flow. A ceiling of zero or less
// means types.MaxFileSize.
func NewArticle(ceiling int64) *Article {
	if ceiling <= 0 {
		ceiling = types.MaxFileSize
	}
	return &Article{ceiling: ceiling}
}

// Arrive installs the hand-off. When it comes fresh from an upload the
// flow's own loading flag, consent and selected file are reset.
func (a *Article) Arrive(h types.Handoff) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if h.FromUpload {
		a.loading = false
		a.gate.Reset()
		a.errMsg = ""
	}
	a.handoff = &h
}

// Handoff returns the current hand-off, or nil before the first arrival.
func (a *Article) Handoff() *types.Handoff {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.handoff == nil {
		return nil
	}
	h := *a.handoff
	return &h
}

// SelectFile validates the file at path as the next upload candidate.
// It returns ErrUploadInFlight while a follow-up upload is running.
func (a *Article) SelectFile(path string) (types.ValidationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loading {
		return types.ValidationResult{}, ErrUploadInFlight
	}

	cand, res, err := inspect(path, a.ceiling)
	if err != nil {
		a.gate.Reset()
		a.errMsg = "Could not read the selected file."
		return res, err
	}
	if !res.OK() {
		a.gate.Reset()
		a.errMsg = res.Message()
		return res, nil
	}
	a.gate.Select(&cand)
	a.errMsg = ""
	return res, nil
}

// SetLoading marks the article flow as busy with a follow-up upload.
func (a *Article) SetLoading(loading bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = loading
}

// Fail ends a follow-up upload that did not succeed. The loading flag,
// consent and selected file are cleared and msg becomes the inline error.
func (a *Article) Fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	a.gate.Reset()
	a.errMsg = msg
}

// Loading reports whether a follow-up upload is running.
func (a *Article) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// SetConsent records consent for the selected file.
func (a *Article) SetConsent(accepted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gate.SetAccepted(accepted)
}

// Consented reports whether consent is currently given.
func (a *Article) Consented() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gate.Accepted()
}

// Candidate returns the selected follow-up file, or nil.
func (a *Article) Candidate() *types.UploadCandidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gate.Candidate()
}

// SelectedFileName is the name shown under the upload box, or "".
func (a *Article) SelectedFileName() string {
	if c := a.Candidate(); c != nil {
		return c.FileName
	}
	return ""
}

// Error returns the inline error message, or "".
func (a *Article) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "sync"

// Attribution is a print-only footer. It stays hidden on the live page and
// is revealed only for the duration of an export.
type Attribution struct {
	text string

	mu      sync.Mutex
	reveals int
}

// NewAttribution returns a hidden attribution with the given text.
func NewAttribution(text string) *Attribution {
	return &Attribution{text: text}
}

// Text returns the footer text.
func (a *Attribution) Text() string {
	return a.text
}

// Visible reports whether any export currently holds the footer revealed.
func (a *Attribution) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reveals > 0
}

// Reveal shows the footer and returns the function that hides it again.
// The returned function is idempotent; call it with defer so the footer is
// hidden on every exit path.
func (a *Attribution) Reveal() (hide func()) {
	a.mu.Lock()
	a.reveals++
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			a.reveals--
			a.mu.Unlock()
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consent gates uploads on explicit user acknowledgment.
package consent

import "github.com/pdiddy/pixel8/pkg/types"

// Text is the acknowledgment shown before an upload may proceed.
const Text = "I hereby consent to the collection, processing, and temporary storage " +
	"of the image I upload. I understand that the image will be used solely for " +
	"the purpose of generating a personalized article using AI technology. The " +
	"uploaded file will not be shared with third parties and will be automatically " +
	"deleted after processing is complete. I acknowledge that no personally " +
	"identifiable information (PII) will be extracted or stored from the image, " +
	"and I retain full rights and ownership over the original content."

// Gate pairs the selected candidate with the user's consent. Consent only
// ever applies to the candidate that was selected when it was given.
// The zero value is an empty, unaccepted gate. A Gate is not safe for
// concurrent use.
type Gate struct {
	candidate *types.UploadCandidate
	accepted  bool
}

// Select replaces the candidate and withdraws consent. A nil candidate
// clears the selection.
func (g *Gate) Select(c *types.UploadCandidate) {
	if c != nil {
		cp := *c
		c = &cp
	}
	g.candidate = c
	g.accepted = false
}

// SetAccepted records the user's explicit choice.
func (g *Gate) SetAccepted(accepted bool) {
	g.accepted = accepted
}

// Accepted reports whether consent has been given for the current candidate.
func (g *Gate) Accepted() bool {
	return g.accepted
}

// Candidate returns a copy of the current candidate, or nil.
func (g *Gate) Candidate() *types.UploadCandidate {
	if g.candidate == nil {
		return nil
	}
	cp := *g.candidate
	return &cp
}

// Ready reports whether an upload may proceed: consent given and a
// candidate present.
func (g *Gate) Ready() bool {
	return g.accepted && g.candidate != nil
}

// Reset clears both the candidate and consent.
func (g *Gate) Reset() {
	g.Select(nil)
}

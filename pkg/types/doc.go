// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pixel8 upload flow:
// the upload candidate and its validation result, the article payload
// returned by the analysis service, the hand-off between the landing and
// article flows, and stage configuration.
package types

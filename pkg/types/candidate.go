// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Accepted image MIME types. image/jpg is not a registered type but some
// platforms report it, so it is accepted alongside image/jpeg.
const (
	MIMEJPEG    = "image/jpeg"
	MIMEJPG     = "image/jpg"
	MIMEPNG     = "image/png"
	MegaByte    = int64(1024 * 1024)
	MaxFileSize = 10 * MegaByte // shared by the landing and article flows
)

// AcceptedMIMETypes lists the MIME types an UploadCandidate may carry.
var AcceptedMIMETypes = []string{MIMEJPEG, MIMEJPG, MIMEPNG}

// UploadCandidate is a user-selected image pending validation and upload.
type UploadCandidate struct {
	// Path is the local filesystem path of the image.
	Path string `json:"path" yaml:"path"`

	// FileName is the base name sent in the multipart form.
	FileName string `json:"file_name" yaml:"file_name"`

	// MIMEType is the detected content type (e.g. "image/png").
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// SizeBytes is the file size on disk.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`
}

// ValidationStatus tags a ValidationResult.
type ValidationStatus string

const (
	Accepted       ValidationStatus = "accepted"
	RejectedFormat ValidationStatus = "rejected_format"
	RejectedSize   ValidationStatus = "rejected_size"
)

// ValidationResult is the outcome of validating an UploadCandidate.
type ValidationResult struct {
	Status ValidationStatus `json:"status" yaml:"status"`

	// Ceiling is the size limit the candidate was checked against.
	Ceiling int64 `json:"ceiling" yaml:"ceiling"`
}

// OK reports whether the candidate was accepted.
func (r ValidationResult) OK() bool {
	return r.Status == Accepted
}

// Message returns the inline message shown next to the upload control.
// Accepted results have no message.
func (r ValidationResult) Message() string {
	switch r.Status {
	case RejectedFormat:
		return "Invalid file format. Please upload a JPG, JPEG, or PNG file."
	case RejectedSize:
		return fmt.Sprintf("File size exceeds %s. Please upload a smaller file.", FormatSize(r.Ceiling))
	default:
		return ""
	}
}

// FormatSize renders a byte count the way the upload hint does ("10 MB").
func FormatSize(n int64) string {
	if n >= MegaByte && n%MegaByte == 0 {
		return fmt.Sprintf("%d MB", n/MegaByte)
	}
	if n >= MegaByte {
		return fmt.Sprintf("%.1f MB", float64(n)/float64(MegaByte))
	}
	if n >= 1024 {
		return fmt.Sprintf("%d KB", n/1024)
	}
	return fmt.Sprintf("%d B", n)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate inspects user-selected images and decides whether they
// may be uploaded. Rejections are values, not errors: only I/O failures
// while inspecting a file produce an error.
package validate

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/pixel8/pkg/types"
)

// sniffLen is the number of bytes http.DetectContentType considers.
const sniffLen = 512

// Validate checks a candidate against the accepted MIME types and the size
// ceiling. Format is checked first, so a non-image is never RejectedSize.
// A ceiling of zero or less means types.MaxFileSize.
func Validate(c types.UploadCandidate, ceiling int64) types.ValidationResult {
	if ceiling <= 0 {
		ceiling = types.MaxFileSize
	}
	res := types.ValidationResult{Ceiling: ceiling}
	switch {
	case !AcceptedType(c.MIMEType):
		res.Status = types.RejectedFormat
	case c.SizeBytes > ceiling:
		res.Status = types.RejectedSize
	default:
		res.Status = types.Accepted
	}
	return res
}

// AcceptedType reports whether mimeType is one of the accepted image types.
// Parameters such as "; charset=" are ignored.
func AcceptedType(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return slices.Contains(types.AcceptedMIMETypes, mt)
}

// Inspect builds an UploadCandidate for the file at path. The MIME type is
// sniffed from the file content; when sniffing is inconclusive the
// extension decides.
func Inspect(path string) (types.UploadCandidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.UploadCandidate{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if info.IsDir() {
		return types.UploadCandidate{}, fmt.Errorf("inspecting %s: is a directory", path)
	}

	mimeType, err := detectType(path)
	if err != nil {
		return types.UploadCandidate{}, fmt.Errorf("inspecting %s: %w", path, err)
	}

	return types.UploadCandidate{
		Path:      path,
		FileName:  filepath.Base(path),
		MIMEType:  mimeType,
		SizeBytes: info.Size(),
	}, nil
}

func detectType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	sniffed := http.DetectContentType(buf[:n])
	if n > 0 && sniffed != "application/octet-stream" {
		return sniffed, nil
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		return byExt, nil
	}
	return sniffed, nil
}

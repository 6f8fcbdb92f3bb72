// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pixel8/pkg/types"
)

func testCfg(baseURL string) types.UploadConfig {
	return types.UploadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		BaseURL:     baseURL,
		ProgressCap: 95,
	}
}

// writeCandidate creates a file of size bytes and returns its candidate.
func writeCandidate(t *testing.T, name string, size int) types.UploadCandidate {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := bytes.Repeat([]byte{0xAB}, size)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return types.UploadCandidate{
		Path:      path,
		FileName:  name,
		MIMEType:  "image/jpeg",
		SizeBytes: int64(size),
	}
}

const successBody = `{
  "message": "Upload successful",
  "filename": "beach_20250101_120000.jpg",
  "image_url": "https://bucket.s3.amazonaws.com/beach_20250101_120000.jpg",
  "analysis": {
    "image": "beach_20250101_120000.jpg",
    "article_title": "T",
    "article_subtitle": "A day at the shore",
    "article_category": "Feature",
    "article_content": "First paragraph.\nSecond paragraph.\n",
    "celebrities": [{"name": "Ada Lovelace", "confidence": 99.1, "url": ["www.example.com"]}],
    "labels": [{"Name": "Beach", "Confidence": 98.2}]
  }
}`

func TestSubmit_Success(t *testing.T) {
	var (
		gotFile     []byte
		gotName     string
		gotType     string
		gotUA       string
		gotReqID    string
		gotLength   int64
		gotMethod   string
		gotEndpoint string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotEndpoint = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		gotLength = r.ContentLength

		f, hdr, err := r.FormFile(FormField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotFile, _ = io.ReadAll(f)
		gotName = hdr.Filename
		gotType = hdr.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(successBody))
	}))
	defer ts.Close()

	cand := writeCandidate(t, "beach.jpg", 256*1024)
	c := New(ts.Client(), testCfg(ts.URL), nil)
	c.newID = func() string { return "req-1" }

	var mu sync.Mutex
	var seen []int
	res, err := c.Submit(context.Background(), cand, func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/upload", gotEndpoint)
	assert.Equal(t, "test/0.1", gotUA)
	assert.Equal(t, "req-1", gotReqID)
	assert.Greater(t, gotLength, cand.SizeBytes)
	assert.Equal(t, "beach.jpg", gotName)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Len(t, gotFile, int(cand.SizeBytes))

	assert.Equal(t, "T", res.Analysis.Title)
	assert.Equal(t, "Feature", res.Analysis.Category)
	require.Len(t, res.Analysis.Celebrities, 1)
	assert.Equal(t, "Ada Lovelace", res.Analysis.Celebrities[0].Name)
	assert.Equal(t, []string{"www.example.com"}, res.Analysis.Celebrities[0].URLs)
	require.Len(t, res.Analysis.Labels, 1)
	assert.Equal(t, "Beach", res.Analysis.Labels[0].Name)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/beach_20250101_120000.jpg", res.Article().ImageURL)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "strictly increasing reports")
	}
	assert.Equal(t, 95, seen[len(seen)-1], "capped below 100")
}

func TestSubmit_FileChangedSinceSelection(t *testing.T) {
	tests := []struct {
		name   string
		actual int
	}{
		{"shrunk", 1024},
		{"grew", 8192},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFile []byte
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				f, _, err := r.FormFile(FormField)
				if err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				defer f.Close()
				gotFile, _ = io.ReadAll(f)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(successBody))
			}))
			defer ts.Close()

			cand := writeCandidate(t, "beach.jpg", 4096)
			require.NoError(t, os.WriteFile(cand.Path, bytes.Repeat([]byte{0xCD}, tt.actual), 0o644))

			c := New(ts.Client(), testCfg(ts.URL), nil)
			res, err := c.Submit(context.Background(), cand, nil)
			require.NoError(t, err)
			assert.Equal(t, "T", res.Analysis.Title)
			assert.Len(t, gotFile, tt.actual)
		})
	}
}

func TestSubmit_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to upload image or retrieve analysis"}`))
	}))
	defer ts.Close()

	cand := writeCandidate(t, "a.jpg", 10)
	_, err := New(ts.Client(), testCfg(ts.URL), nil).Submit(context.Background(), cand, nil)

	var uerr *Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusInternalServerError, uerr.StatusCode)
	assert.Contains(t, err.Error(), "upload failed")
}

func TestSubmit_NoRetry(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cand := writeCandidate(t, "a.jpg", 10)
	_, err := New(ts.Client(), testCfg(ts.URL), nil).Submit(context.Background(), cand, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSubmit_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	cand := writeCandidate(t, "a.jpg", 10)
	_, err := New(nil, testCfg(url), nil).Submit(context.Background(), cand, nil)

	var uerr *Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.StatusCode)
}

func TestSubmit_MissingFile(t *testing.T) {
	cand := types.UploadCandidate{Path: filepath.Join(t.TempDir(), "gone.jpg"), FileName: "gone.jpg"}
	_, err := New(nil, testCfg("http://127.0.0.1:1"), nil).Submit(context.Background(), cand, nil)
	var uerr *Error
	require.True(t, errors.As(err, &uerr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSubmit_BadBaseURL(t *testing.T) {
	cand := writeCandidate(t, "a.jpg", 10)
	_, err := New(nil, testCfg("not a url"), nil).Submit(context.Background(), cand, nil)
	assert.Error(t, err)
}

func TestSubmit_CancelledContext(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cand := writeCandidate(t, "a.jpg", 10)
	_, err := New(ts.Client(), testCfg(ts.URL), nil).Submit(ctx, cand, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"message": "pong"}`))
	}))
	defer ts.Close()

	msg, err := New(ts.Client(), testCfg(ts.URL), nil).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", msg)
}

func TestPing_Down(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := New(ts.Client(), testCfg(ts.URL), nil).Ping(context.Background())
	assert.Error(t, err)
}

func TestEnvelope_EscapesFileName(t *testing.T) {
	head, tail, ct, err := envelope(types.UploadCandidate{FileName: `my "best".png`, MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Contains(t, string(head), `filename="my \"best\".png"`)
	assert.Contains(t, string(head), "Content-Type: image/png")
	assert.Contains(t, ct, "multipart/form-data; boundary=")
	assert.Contains(t, string(tail), "--")
}

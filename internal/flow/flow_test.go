// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pixel8/internal/progress"
	"github.com/pdiddy/pixel8/pkg/types"
)

// --- mock uploader ---

type mockUploader struct {
	mu      sync.Mutex
	calls   int
	steps   []int
	result  *types.UploadResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (m *mockUploader) Submit(ctx context.Context, _ types.UploadCandidate, onProgress func(int)) (*types.UploadResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	for _, p := range m.steps {
		onProgress(p)
	}
	return m.result, m.err
}

func (m *mockUploader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testCfg() types.UploadConfig {
	return types.UploadConfig{
		MaxFileSizeBytes: 10 * types.MegaByte,
		ProgressCap:      95,
		ProcessingTick:   time.Millisecond,
		ProcessingStep:   5,
	}
}

// jpegHeader is enough of a JPEG signature for content sniffing.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// pngHeader is the PNG file signature.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// writeImage writes a file of size bytes starting with header.
func writeImage(t *testing.T, name string, header []byte, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write(header)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

// --- selection and consent ---

func TestLanding_SelectAcceptsAndResetsConsent(t *testing.T) {
	l := NewLanding(&mockUploader{}, testCfg(), nil)

	first := writeImage(t, "a.jpg", jpegHeader, 1024)
	res, err := l.SelectFile(first)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.True(t, l.ConsentVisible())
	assert.False(t, l.SubmitVisible())

	l.SetConsent(true)
	assert.True(t, l.SubmitVisible())

	second := writeImage(t, "b.png", pngHeader, 2048)
	_, err = l.SelectFile(second)
	require.NoError(t, err)
	assert.False(t, l.Consented(), "new candidate withdraws consent")
	assert.Equal(t, "b.png", l.Candidate().FileName)
}

func TestLanding_RejectedSizeScenario(t *testing.T) {
	l := NewLanding(&mockUploader{}, testCfg(), nil)

	ok := writeImage(t, "ok.png", pngHeader, 1024)
	_, err := l.SelectFile(ok)
	require.NoError(t, err)
	l.SetConsent(true)

	big := writeImage(t, "big.png", pngHeader, 12*types.MegaByte)
	res, err := l.SelectFile(big)
	require.NoError(t, err)
	assert.Equal(t, types.RejectedSize, res.Status)
	assert.Nil(t, l.Candidate(), "candidate remains empty")
	assert.False(t, l.ConsentVisible(), "consent control hidden")
	assert.False(t, l.Consented())
	assert.Equal(t, "File size exceeds 10 MB. Please upload a smaller file.", l.Error())
}

func TestLanding_RejectedFormat(t *testing.T) {
	l := NewLanding(&mockUploader{}, testCfg(), nil)
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a......"), 0o644))

	res, err := l.SelectFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.RejectedFormat, res.Status)
	assert.Nil(t, l.Candidate())
	assert.Contains(t, l.Error(), "Invalid file format")

	good := writeImage(t, "ok.jpg", jpegHeader, 10)
	_, err = l.SelectFile(good)
	require.NoError(t, err)
	assert.Empty(t, l.Error(), "accepted file clears the message")
}

func TestLanding_SelectMissingFile(t *testing.T) {
	l := NewLanding(&mockUploader{}, testCfg(), nil)
	_, err := l.SelectFile(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	assert.Nil(t, l.Candidate())
	assert.NotEmpty(t, l.Error())
}

// --- admission ---

func TestLanding_SubmitNotReadyIsNoOp(t *testing.T) {
	up := &mockUploader{result: &types.UploadResult{}}
	l := NewLanding(up, testCfg(), nil)

	_, err := l.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotReady, "no candidate, no consent")

	l.SetConsent(true)
	_, err = l.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotReady, "consent without candidate")

	_, err = l.SelectFile(writeImage(t, "a.jpg", jpegHeader, 10))
	require.NoError(t, err)
	_, err = l.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotReady, "candidate without consent")

	assert.Equal(t, 0, up.Calls())
	assert.Equal(t, progress.Idle, l.Progress().State)
	assert.NotNil(t, l.Candidate(), "no-op leaves the candidate")
}

func TestLanding_SingleFlight(t *testing.T) {
	up := &mockUploader{
		result:  &types.UploadResult{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	l := NewLanding(up, testCfg(), nil)
	_, err := l.SelectFile(writeImage(t, "a.jpg", jpegHeader, 10))
	require.NoError(t, err)
	l.SetConsent(true)

	done := make(chan error, 1)
	go func() {
		_, err := l.Submit(context.Background(), nil)
		done <- err
	}()
	<-up.started

	assert.True(t, l.Loading())
	assert.True(t, l.OverlayVisible())
	assert.False(t, l.ConsentVisible())

	_, err = l.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUploadInFlight)
	_, err = l.SelectFile(writeImage(t, "b.jpg", jpegHeader, 10))
	assert.ErrorIs(t, err, ErrUploadInFlight)

	close(up.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, up.Calls())
	assert.False(t, l.Loading())
}

// --- scenarios ---

func TestLanding_SuccessScenario(t *testing.T) {
	up := &mockUploader{
		steps:  []int{0, 10, 40, 80, 100},
		result: &types.UploadResult{Analysis: types.ArticlePayload{Title: "T"}},
	}
	l := NewLanding(up, testCfg(), nil)

	path := writeImage(t, "photo.jpg", jpegHeader, 3*types.MegaByte)
	res, err := l.SelectFile(path)
	require.NoError(t, err)
	require.True(t, res.OK())
	l.SetConsent(true)

	var mu sync.Mutex
	var snaps []progress.Snapshot
	h, err := l.Submit(context.Background(), func(s progress.Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.True(t, h.FromUpload)
	assert.Equal(t, "T", h.Title)
	assert.Equal(t, path, h.LocalImage)
	assert.True(t, strings.HasPrefix(h.ImageURL, "file://"))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, true, flat["fromUpload"])
	assert.Equal(t, "T", flat["article_title"])

	mu.Lock()
	defer mu.Unlock()
	prev := -1
	sawCap := false
	for _, s := range snaps {
		assert.GreaterOrEqual(t, s.Progress, prev)
		prev = s.Progress
		if s.State == progress.Uploading {
			assert.LessOrEqual(t, s.Progress, 95)
			sawCap = sawCap || s.Progress == 95
		}
	}
	assert.True(t, sawCap)
	last := snaps[len(snaps)-1]
	assert.Equal(t, progress.Done, last.State)
	assert.Equal(t, "Complete!", last.Text)

	assert.Nil(t, l.Candidate(), "candidate discarded after success")
	assert.False(t, l.Consented())
	assert.False(t, l.OverlayVisible())
	assert.Empty(t, l.Error())
}

func TestLanding_NetworkFailureScenario(t *testing.T) {
	up := &mockUploader{steps: []int{20}, err: errors.New("connection refused")}
	l := NewLanding(up, testCfg(), nil)
	_, err := l.SelectFile(writeImage(t, "a.jpg", jpegHeader, 10))
	require.NoError(t, err)
	l.SetConsent(true)

	var states []progress.State
	_, err = l.Submit(context.Background(), func(s progress.Snapshot) {
		states = append(states, s.State)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Contains(t, states, progress.Failed)
	assert.Equal(t, progress.Idle, states[len(states)-1], "overlay dismissed")
	assert.False(t, l.OverlayVisible())
	assert.Equal(t, FailureMessage, l.Error())
	assert.Nil(t, l.Candidate())
	assert.False(t, l.Consented())
	assert.False(t, l.Loading())

	// The flow must be re-armed before another submit goes out.
	_, err = l.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 1, up.Calls())
}

func TestLanding_CancelDuringProcessing(t *testing.T) {
	cfg := testCfg()
	cfg.ProcessingTick = time.Hour
	up := &mockUploader{result: &types.UploadResult{}}
	l := NewLanding(up, cfg, nil)
	_, err := l.SelectFile(writeImage(t, "a.jpg", jpegHeader, 10))
	require.NoError(t, err)
	l.SetConsent(true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Submit(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, progress.Idle, l.Progress().State)
	assert.False(t, l.Loading())
}

func TestLanding_ArticleImageFallsBackToTopLevel(t *testing.T) {
	up := &mockUploader{result: &types.UploadResult{
		ImageURL: "https://bucket/x.jpg",
		Analysis: types.ArticlePayload{Title: "T"},
	}}
	l := NewLanding(up, testCfg(), nil)
	_, err := l.SelectFile(writeImage(t, "a.jpg", jpegHeader, 10))
	require.NoError(t, err)
	l.SetConsent(true)

	h, err := l.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/x.jpg", h.ArticlePayload.ImageURL)
}

// --- article flow ---

func TestArticle_ArriveFromUploadResets(t *testing.T) {
	a := NewArticle(0)
	_, err := a.SelectFile(writeImage(t, "next.png", pngHeader, 10))
	require.NoError(t, err)
	a.SetConsent(true)
	a.SetLoading(true)
	assert.Equal(t, "next.png", a.SelectedFileName())

	a.Arrive(types.Handoff{FromUpload: true, ArticlePayload: types.ArticlePayload{Title: "T"}})
	assert.False(t, a.Loading())
	assert.False(t, a.Consented())
	assert.Empty(t, a.SelectedFileName())
	require.NotNil(t, a.Handoff())
	assert.Equal(t, "T", a.Handoff().Title)
}

func TestArticle_ArriveWithoutUploadKeepsState(t *testing.T) {
	a := NewArticle(0)
	_, err := a.SelectFile(writeImage(t, "next.png", pngHeader, 10))
	require.NoError(t, err)

	a.Arrive(types.Handoff{ArticlePayload: types.ArticlePayload{Title: "Old"}})
	assert.Equal(t, "next.png", a.SelectedFileName())
}

func TestArticle_FailClearsSelection(t *testing.T) {
	a := NewArticle(0)
	_, err := a.SelectFile(writeImage(t, "next.png", pngHeader, 10))
	require.NoError(t, err)
	a.SetConsent(true)
	a.SetLoading(true)

	a.Fail(FailureMessage)
	assert.False(t, a.Loading())
	assert.False(t, a.Consented())
	assert.Nil(t, a.Candidate())
	assert.Empty(t, a.SelectedFileName())
	assert.Equal(t, FailureMessage, a.Error())

	_, err = a.SelectFile(writeImage(t, "again.png", pngHeader, 10))
	require.NoError(t, err)
	assert.Equal(t, "again.png", a.SelectedFileName())
	assert.Empty(t, a.Error())
}

func TestArticle_SelectFileWhileLoading(t *testing.T) {
	a := NewArticle(0)
	_, err := a.SelectFile(writeImage(t, "next.png", pngHeader, 10))
	require.NoError(t, err)
	a.SetConsent(true)
	a.SetLoading(true)

	_, err = a.SelectFile(writeImage(t, "other.png", pngHeader, 10))
	require.ErrorIs(t, err, ErrUploadInFlight)
	assert.Equal(t, "next.png", a.SelectedFileName(), "selection unchanged")
	assert.True(t, a.Consented())
	assert.Empty(t, a.Error())
}

func TestArticle_SameCeilingAsLanding(t *testing.T) {
	a := NewArticle(10 * types.MegaByte)
	res, err := a.SelectFile(writeImage(t, "big.png", pngHeader, 10*types.MegaByte+1))
	require.NoError(t, err)
	assert.Equal(t, types.RejectedSize, res.Status)
	assert.Empty(t, a.SelectedFileName())
	assert.Contains(t, a.Error(), "10 MB")
}

func TestLocalImageURL(t *testing.T) {
	u := LocalImageURL("/tmp/my photo.png")
	assert.Equal(t, "file:///tmp/my%20photo.png", u)
}

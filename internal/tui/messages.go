// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/pixel8/internal/progress"
	"github.com/pdiddy/pixel8/pkg/types"
)

// progressMsg carries one overlay update from the running upload.
type progressMsg progress.Snapshot

// uploadDoneMsg is sent when Landing.Submit returns.
type uploadDoneMsg struct {
	handoff *types.Handoff
	err     error
}

// exportDoneMsg is sent when a PDF export finishes.
type exportDoneMsg struct {
	path string
	err  error
}

// uploadRun connects a running Submit to the model. updates is buffered
// and written without blocking; done is closed when Submit returns.
type uploadRun struct {
	updates chan progress.Snapshot
	done    chan struct{}
}

func newUploadRun() *uploadRun {
	return &uploadRun{
		updates: make(chan progress.Snapshot, 64),
		done:    make(chan struct{}),
	}
}

func (r *uploadRun) send(s progress.Snapshot) {
	select {
	case r.updates <- s:
	default:
	}
}

// waitForProgress blocks until the next update or the end of the run.
func waitForProgress(r *uploadRun) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-r.updates:
			return progressMsg(s)
		case <-r.done:
			return nil
		}
	}
}

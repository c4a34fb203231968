package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusMsg refreshes position and volume.
type statusMsg time.Time

// frameMsg is one frame slot for the visualization loop.
type frameMsg time.Time

type playbackEndedMsg struct{}

type stateSavedMsg struct{ err error }

const statusInterval = 200 * time.Millisecond

func statusCmd() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusMsg(t)
	})
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

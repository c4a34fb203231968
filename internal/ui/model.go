package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/capviz/internal/audio"
)

// Playback is the audio the TUI controls.
type Playback interface {
	TogglePause()
	Paused() bool
	AdjustVolume(delta float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
	SampleRate() int
	Done() <-chan struct{}
	Close()
}

// rows used by text around the spectrum, not counting help
const chromeRows = 10

// Model is the Bubbletea model for the capviz TUI.
type Model struct {
	playback Playback
	metadata audio.Metadata
	viz      *Visualization
	keys     keyMap
	help     help.Model

	elapsed    time.Duration
	duration   time.Duration
	sampleRate int
	volume     float64
	meter      volumeMeter
	paused     bool
	width      int
	height     int
	quitting   bool
	errMsg     string
}

// New creates a new Model.
func New(p Playback, meta audio.Metadata, viz *Visualization) Model {
	return Model{
		playback:   p,
		metadata:   meta,
		viz:        viz,
		keys:       defaultKeys(),
		help:       help.New(),
		duration:   p.Duration(),
		sampleRate: p.SampleRate(),
		volume:     p.Volume(),
		meter:      newVolumeMeter(p.Volume()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		statusCmd(),
		checkDone(m.playback),
		tea.SetWindowTitle(windowTitle(m.metadata.Title, false)),
		m.viz.Start(),
	)
}

func checkDone(p Playback) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		return m, m.viz.Frame(time.Time(msg))

	case statusMsg:
		m.elapsed = min(m.playback.Position(), m.duration)
		m.volume = m.playback.Volume()
		m.meter = m.meter.step(m.volume)
		m.paused = m.playback.Paused()
		return m, statusCmd()

	case stateSavedMsg:
		m.errMsg = ""
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Saving preference failed: %v", msg.err)
		}
		return m, nil

	case playbackEndedMsg:
		m.elapsed = m.duration
		return m.quit()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Pause):
		m.playback.TogglePause()
		m.paused = m.playback.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
	case key.Matches(msg, m.keys.VolUp):
		m.playback.AdjustVolume(0.05)
		m.volume = m.playback.Volume()
	case key.Matches(msg, m.keys.VolDown):
		m.playback.AdjustVolume(-0.05)
		m.volume = m.playback.Volume()
	case key.Matches(msg, m.keys.Viz):
		return m, m.viz.Toggle()
	case key.Matches(msg, m.keys.HelpFull):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.viz.Close()
	m.playback.Close()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	chrome := chromeRows + lipgloss.Height(m.help.View(m.keys))
	m.viz.Resize(m.width, m.height, chrome)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("capviz") + "\n\n")
	b.WriteString("  " + titleStyle.Render(m.metadata.Title) + "  " + timeStyle.Render(renderSampleRate(m.sampleRate)) + "\n")
	b.WriteString("  " + artistStyle.Render(m.metadata.Artist) + "\n")
	b.WriteString(m.vizView() + "\n")

	elapsed, total := formatDuration(m.elapsed), formatDuration(m.duration)
	bar := renderProgressBar(m.elapsed, m.duration, w-len(elapsed)-len(total)-6)
	b.WriteString(fmt.Sprintf("\n  %s %s %s\n", timeStyle.Render(elapsed), bar, timeStyle.Render(total)))

	statusText := "▶  playing"
	if m.paused {
		statusText = "❚❚  paused"
	}
	if !m.viz.Enabled() {
		statusText += "  [viz off]"
	}
	vol := m.meter.view(m.volume)
	gap := max(w-lipgloss.Width(statusText)-lipgloss.Width(vol)-4, 2)
	b.WriteString("  " + statusStyle.Render(statusText) + strings.Repeat(" ", gap) + statusStyle.Render(vol) + "\n")
	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

// vizView fills the rows between the title and the progress line.
func (m Model) vizView() string {
	rows := 0
	if m.height > 0 {
		rows = max(m.height-chromeRows-lipgloss.Height(m.help.View(m.keys)), 0)
	}
	if m.viz.Visible() {
		if out := m.viz.View(); out != "" {
			return out
		}
	}
	if rows == 0 {
		return ""
	}
	lines := make([]string, rows)
	lines[rows/2] = "  " + vizOffStyle.Render("visualization off, press v")
	return strings.Join(lines, "\n")
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - capviz"
	}
	return "▶ " + title + " - capviz"
}

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/handiism/broadcom-downloader/internal/config"
	"github.com/handiism/broadcom-downloader/internal/download"
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

type (
	// ProgressMsg carries one pipeline event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent once the manifest has been filtered.
	InitDoneMsg struct {
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when StartDownloads returns.
	DownloadDoneMsg struct {
		Err error
	}
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	events    chan<- tea.Msg

	// run is the pipeline of the manifest being processed
	ctx     context.Context
	cancel  context.CancelFunc
	manager *download.Manager
	logs    []download.ProgressEvent
	stats   download.Progress
	current *download.ByteProgress
	err     error

	archive bool
	verbose bool
}

// NewModel creates a new TUI model. manifestPath pre-fills the input field.
// Pipeline events are delivered through events.
func NewModel(settings *config.Settings, manifestPath string, events chan<- tea.Msg) Model {
	ti := textinput.New()
	ti.Placeholder = "files.json"
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(manifestPath)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		settings:  settings,
		events:    events,
		archive:   settings.Archive,
	}
	m.reset()
	return m
}

// reset prepares the model for a new manifest.
func (m *Model) reset() {
	if m.cancel != nil {
		m.cancel()
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.manager = nil
	m.logs = nil
	m.stats = download.Progress{}
	m.current = nil
	m.err = nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case ProgressMsg:
		return m, m.handleEvent(msg.Event)

	case InitDoneMsg:
		if msg.Err != nil {
			return m.fail(msg.Err), nil
		}
		m.manager = msg.Manager
		m.stats = m.manager.GetProgress()
		m.state = StateDownloading
		return m, m.startDownload()

	case DownloadDoneMsg:
		if m.manager != nil {
			m.stats = m.manager.GetProgress()
		}
		m.current = nil
		switch {
		case m.ctx.Err() != nil:
			return m.fail(errCancelled), nil
		case msg.Err != nil:
			return m.fail(msg.Err), nil
		}
		m.state = StateComplete
		return m, m.progress.SetPercent(1)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	busy := m.state == StateInitializing || m.state == StateDownloading
	done := m.state == StateComplete || m.state == StateError

	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return tea.Quit, true
	case "esc":
		if m.state == StateInput {
			return tea.Quit, true
		}
		if busy {
			m.cancel()
			m.fail(errCancelled)
		}
		return nil, true
	case "enter":
		if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
			m.state = StateInitializing
			return tea.Batch(m.initializeDownload(), m.spinner.Tick), true
		}
	case "ctrl+a":
		if m.state == StateInput {
			m.archive = !m.archive
		}
		return nil, true
	case "ctrl+l":
		if m.state == StateInput {
			m.verbose = !m.verbose
		}
		return nil, true
	case "q":
		if done {
			return tea.Quit, true
		}
	case "r":
		if done {
			m.reset()
			m.state = StateInput
			m.textInput.SetValue("")
			m.textInput.Focus()
			return m.progress.SetPercent(0), true
		}
	}
	return nil, false
}

// handleEvent records a pipeline event. Byte events move the progress bar,
// message events go to the log tail.
func (m *Model) handleEvent(e download.ProgressEvent) tea.Cmd {
	if e.Bytes != nil {
		if m.state != StateDownloading {
			return nil
		}
		b := *e.Bytes
		m.current = &b
		if m.manager != nil {
			m.stats = m.manager.GetProgress()
		}
		return m.progress.SetPercent(m.percent())
	}

	if e.Level == download.LevelVerbose && !m.verbose {
		return nil
	}
	m.logs = append(m.logs, e)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return nil
}

func (m *Model) fail(err error) Model {
	m.state = StateError
	m.err = err
	return *m
}

// percent is the overall completion: finished items plus the fraction of
// the file currently being fetched.
func (m Model) percent() float64 {
	if m.stats.TotalItems == 0 {
		return 0
	}
	done := float64(m.stats.ProcessedItems)
	if c := m.current; c != nil && c.Total > 0 && int32(c.Item) > m.stats.ProcessedItems {
		done += float64(c.Read) / float64(c.Total)
	}
	return min(done/float64(m.stats.TotalItems), 1)
}

package tui

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/broadcom-downloader/internal/config"
	"github.com/handiism/broadcom-downloader/internal/download"
	dlhttp "github.com/handiism/broadcom-downloader/internal/http"
	"github.com/handiism/broadcom-downloader/internal/logging"
)

// emitter hands pipeline events to the program until ctx is done.
func emitter(ctx context.Context, events chan<- tea.Msg) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		if events == nil {
			return
		}
		select {
		case events <- ProgressMsg{Event: e}:
		case <-ctx.Done():
		}
	}
}

// initializeDownload builds the client and manager for the entered manifest
// and filters it.
func (m Model) initializeDownload() tea.Cmd {
	ctx := m.ctx
	path := strings.TrimSpace(m.textInput.Value())
	emit := emitter(ctx, m.events)

	settings := *m.settings
	settings.Archive = m.archive

	log := logging.New(io.Discard, 0)
	if m.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	log.AddHook(&download.EventHook{OnProgress: emit})

	return func() tea.Msg {
		client, err := dlhttp.NewClient(settings.ToClientOptions(), log)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		manager := download.NewManager(&settings, client, emit)
		if err := manager.Initialize(ctx, path); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Manager: manager}
	}
}

// startDownload runs the pipeline in the background.
func (m Model) startDownload() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		return DownloadDoneMsg{Err: manager.StartDownloads(ctx)}
	}
}

// Run starts the TUI application. It returns when the user quits or ctx is
// cancelled.
func Run(ctx context.Context, settings *config.Settings, manifestPath string) error {
	events := make(chan tea.Msg, 64)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(settings, manifestPath, events), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg := <-events:
				p.Send(msg)
			}
		}
	})
	return g.Wait()
}

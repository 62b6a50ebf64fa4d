package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/handiism/broadcom-downloader/internal/config"
	"github.com/handiism/broadcom-downloader/internal/download"
	dlhttp "github.com/handiism/broadcom-downloader/internal/http"
	"github.com/handiism/broadcom-downloader/internal/logging"
	"github.com/handiism/broadcom-downloader/internal/manifest"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitInvalidArgs = 2
	ExitManifest    = 3
	ExitFetch       = 4
	ExitFilesystem  = 5
	ExitInterrupted = 130
)

const usageExamples = `
Examples:
  # Download current firmware into ./dl
  broadcom-dl -f files.json

  # Download archived firmware and BIOS images
  broadcom-dl -f files.json -a -t Firmware BIOS

  # Download drivers into another directory with debug output
  broadcom-dl -f files.json -d /srv/mirror -t Driver -v

For interactive mode, use: broadcom-tui
`

var (
	byteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	doneStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#95E1A3"))
)

func main() {
	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type options struct {
	file    string
	dir     string
	config  string
	host    string
	types   []string
	archive bool
	dryRun  bool
	noLock  bool
	verbose int
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("broadcom-dl", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.file, "file", "f", "", "manifest file to read (required)")
	fs.StringVarP(&opts.dir, "directory", "d", "dl", "destination directory")
	fs.BoolVarP(&opts.archive, "archive", "a", false, "download archived files instead of current ones")
	fs.StringSliceVarP(&opts.types, "type", "t", []string{"Firmware"}, "document types to download; repeatable")
	fs.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	fs.StringVarP(&opts.config, "config", "c", "", "settings file (JSON or YAML)")
	fs.StringVar(&opts.host, "host", "", "metadata host (default from settings)")
	fs.BoolVarP(&opts.dryRun, "dry-run", "n", false, "list the selected files without downloading")
	fs.BoolVar(&opts.noLock, "no-lock", false, "do not lock the destination directory")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Broadcom Downloader - Download files listed in a vendor manifest")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  broadcom-dl -f <manifest> [options] [-t TYPE [TYPE...]]")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
		fmt.Fprint(stderr, usageExamples)
	}
	return fs
}

// loadSettings reads the settings file, if any, and overlays the flags that
// were set explicitly.
func loadSettings(fs *pflag.FlagSet, opts *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.config != "" {
		var err error
		settings, err = config.Load(opts.config)
		if err != nil {
			return nil, err
		}
	}

	if fs.Changed("directory") {
		settings.Directory = opts.dir
	}
	if fs.Changed("archive") {
		settings.Archive = opts.archive
	}
	if fs.Changed("type") {
		settings.Types = opts.types
	}
	if fs.Changed("host") {
		settings.Host = opts.host
	}
	if opts.noLock {
		settings.Lock = false
	}

	return settings, settings.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	// Bare words after -t are further types.
	if fs.NArg() > 0 {
		if !fs.Changed("type") {
			fmt.Fprintf(stderr, "Error: unexpected arguments %v\n", fs.Args())
			fs.Usage()
			return ExitInvalidArgs
		}
		opts.types = append(opts.types, fs.Args()...)
	}

	if opts.file == "" {
		fmt.Fprintln(stderr, "Error: a manifest file is required (-f)")
		fs.Usage()
		return ExitInvalidArgs
	}

	settings, err := loadSettings(fs, &opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return ExitInvalidArgs
	}

	log := logging.New(stdout, opts.verbose)
	log.Debug("Being verbose")

	client, err := dlhttp.NewClient(settings.ToClientOptions(), log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	manager := download.NewManager(settings, client, download.LogEvents(log, func(b download.ByteProgress) {
		fmt.Fprintln(stdout, byteStyle.Render(b.String()))
	}))

	if err := manager.Initialize(ctx, opts.file); err != nil {
		return report(ctx, log, err, ExitManifest)
	}

	if opts.dryRun {
		printPlan(stdout, manager)
		return ExitSuccess
	}

	if err := manager.StartDownloads(ctx); err != nil {
		return report(ctx, log, err, ExitError)
	}

	p := manager.GetProgress()
	fmt.Fprintln(stdout, doneStyle.Render(fmt.Sprintf(
		"Complete! %d downloaded, %d already present (%.2f MB)",
		p.PlacedFiles, p.ExistingFiles, float64(p.ReceivedBytes)/1024/1024,
	)))
	return ExitSuccess
}

// report logs err and returns the exit code for it. fallback is used for
// errors without a more specific code.
func report(ctx context.Context, log logrus.FieldLogger, err error, fallback int) int {
	if ctx.Err() != nil {
		log.Warn("Download cancelled.")
		return ExitInterrupted
	}

	log.Error(err)
	return exitCode(err, fallback)
}

func exitCode(err error, fallback int) int {
	var (
		validationErr *manifest.ValidationError
		fetchErr      *dlhttp.FetchError
		placeErr      *download.PlaceError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &validationErr):
		return ExitManifest
	case errors.As(err, &fetchErr), errors.Is(err, dlhttp.ErrNoURL), errors.Is(err, dlhttp.ErrIdleTimeout):
		return ExitFetch
	case errors.As(err, &placeErr):
		return ExitFilesystem
	}
	return fallback
}

func printPlan(out io.Writer, manager *download.Manager) {
	items := manager.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No files selected.")
		return
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("PUBLICATION", "DESTINATION", "TITLE")
	for _, item := range items {
		table.AddRow(item.PublicationNumber, item.Dir, item.Title)
	}
	fmt.Fprintln(out, table.String())
}

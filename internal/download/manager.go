package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/handiism/broadcom-downloader/internal/config"
	ioutils "github.com/handiism/broadcom-downloader/internal/io"
	"github.com/handiism/broadcom-downloader/internal/manifest"
	"github.com/handiism/broadcom-downloader/internal/model"
)

// LockTimeout bounds how long StartDownloads waits for the destination lock.
const LockTimeout = 10 * time.Second

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
//
// Bytes is set for chunk progress while a file is being fetched; Message is
// empty for those events.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Bytes   *ByteProgress
}

// ByteProgress reports the bytes read so far for the file being fetched.
type ByteProgress struct {
	// Item is the 1-based position of the file in the download list.
	Item int

	// Name is the file name being fetched.
	Name string

	// Read is the number of bytes read so far.
	Read int64

	// Total is the announced length, -1 if unknown.
	Total int64
}

// Remaining returns the bytes still expected, or -1 if the length is unknown.
func (b ByteProgress) Remaining() int64 {
	if b.Total < 0 {
		return -1
	}
	return b.Total - b.Read
}

func (b ByteProgress) String() string {
	if b.Total > 0 {
		return fmt.Sprintf("  Read %d B / %d B (%d B left)", b.Read, b.Total, b.Remaining())
	}
	return fmt.Sprintf("  Read %d B", b.Read)
}

// Fetcher resolves and downloads files from the vendor API.
type Fetcher interface {
	Resolve(ctx context.Context, query string) (model.ResolvedAsset, error)
	Fetch(ctx context.Context, url string, onProgress func(read, total int64)) ([]byte, error)
}

// PlaceError reports a file system failure while placing a download.
type PlaceError struct {
	Path string
	Err  error
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("place %s: %v", e.Path, e.Err)
}

func (e *PlaceError) Unwrap() error { return e.Err }

// Progress is a snapshot of the download counters.
type Progress struct {
	ReceivedBytes  int64
	PlacedFiles    int32
	ExistingFiles  int32
	ProcessedItems int32
	TotalItems     int32
}

// Manager runs the download pipeline: filter the manifest, resolve every
// item, fetch it and place it in the destination tree.
//
// Items are processed one after the other. The first error stops the run;
// files placed before it stay on disk.
type Manager struct {
	settings *config.Settings
	fetcher  Fetcher

	items   []model.DownloadItem
	skipped []manifest.Skip

	receivedBytes  int64
	placedFiles    int32
	existingFiles  int32
	processedItems int32

	onProgress func(ProgressEvent)
	wait       func(ctx context.Context, d time.Duration) error
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, fetcher Fetcher, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:   settings,
		fetcher:    fetcher,
		onProgress: onProgress,
		wait:       sleep,
	}
}

// Initialize loads the manifest at manifestPath and filters it into the list
// of items to download.
func (m *Manager) Initialize(ctx context.Context, manifestPath string) error {
	records, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	return m.InitializeRecords(ctx, records)
}

// InitializeRecords filters already decoded records into the list of items
// to download.
func (m *Manager) InitializeRecords(ctx context.Context, records []model.ManifestRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	criteria := m.settings.ToCriteria()
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading all files that has: status '%s' and type is one of %v", criteria.Status, criteria.Types),
		Level:   LevelInfo,
	})

	m.skipped = nil
	items, err := manifest.Filter(records, criteria, func(s manifest.Skip) {
		m.skipped = append(m.skipped, s)
		level := LevelInfo
		if s.Reason == manifest.SkipCategory {
			level = LevelVerbose
		}
		m.progress(ProgressEvent{Message: s.String(), Level: level})
	})
	if err != nil {
		return err
	}

	m.items = items
	atomic.StoreInt32(&m.processedItems, 0)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d file(s) to download, %d skipped", len(items), len(m.skipped)),
		Level:   LevelInfo,
	})
	return nil
}

// Items returns the download items produced by Initialize.
func (m *Manager) Items() []model.DownloadItem {
	return m.items
}

// Skipped returns the records Initialize left out.
func (m *Manager) Skipped() []manifest.Skip {
	return m.skipped
}

// StartDownloads downloads all initialized items in order.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.settings.Lock && len(m.items) > 0 {
		lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
		unlock, err := ioutils.LockDir(lockCtx, m.settings.Directory, 100*time.Millisecond)
		cancel()
		if err != nil {
			return &PlaceError{Path: m.settings.Directory, Err: err}
		}
		defer unlock()
	}

	for i, item := range m.items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.downloadItem(ctx, i+1, item); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", item.Title, err), Level: LevelError})
			return err
		}
		atomic.AddInt32(&m.processedItems, 1)
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished: %d downloaded, %d already present", atomic.LoadInt32(&m.placedFiles), atomic.LoadInt32(&m.existingFiles)),
		Level:   LevelSuccess,
	})
	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		ReceivedBytes:  atomic.LoadInt64(&m.receivedBytes),
		PlacedFiles:    atomic.LoadInt32(&m.placedFiles),
		ExistingFiles:  atomic.LoadInt32(&m.existingFiles),
		ProcessedItems: atomic.LoadInt32(&m.processedItems),
		TotalItems:     int32(len(m.items)),
	}
}

func (m *Manager) downloadItem(ctx context.Context, n int, item model.DownloadItem) error {
	m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s (%s)", n, len(m.items), item.Title, item.PublicationNumber), Level: LevelInfo})

	asset, err := m.fetcher.Resolve(ctx, item.Query)
	if err != nil {
		return err
	}

	name := asset.FileName()
	if name == "" {
		return errors.Errorf("download URL %q has no file name", asset.URL)
	}

	dest := filepath.Join(item.Dir, name)
	if ioutils.Exists(dest) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s exists, skipping", dest), Level: LevelInfo})
		atomic.AddInt32(&m.existingFiles, 1)
		return nil
	}

	if err := m.wait(ctx, time.Duration(m.settings.Throttle)); err != nil {
		return err
	}

	var last int64
	data, err := m.fetcher.Fetch(ctx, asset.URL, func(read, total int64) {
		atomic.AddInt64(&m.receivedBytes, read-last)
		last = read
		m.progress(ProgressEvent{Bytes: &ByteProgress{Item: n, Name: name, Read: read, Total: total}})
	})
	if err != nil {
		return err
	}

	final, temp, err := ioutils.PlaceFile(item.Dir, name, data)
	if err != nil {
		return &PlaceError{Path: dest, Err: err}
	}

	atomic.AddInt32(&m.placedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Renamed %s to %s", temp, final), Level: LevelSuccess})
	return nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

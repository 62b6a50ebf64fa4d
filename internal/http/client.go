package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/handiism/broadcom-downloader/internal/model"
)

// Media types the vendor endpoints answer with.
const (
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// DefaultChunkSize is the read size used while streaming a download.
const DefaultChunkSize = 1 << 20

// maxErrorBody caps how much of a rejected response body is kept.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	// BaseURL is the scheme and host metadata paths are resolved against.
	// Default: https://docs.broadcom.com
	BaseURL string

	// Timeout bounds connecting, the TLS handshake, waiting for response
	// headers and every pause while reading a body. A slow transfer that
	// keeps delivering data never times out.
	// Default: 60s
	Timeout time.Duration

	// UserAgent is sent with every request when not empty.
	UserAgent string

	// ChunkSize is the read size while streaming a download.
	// Default: 1 MiB
	ChunkSize int
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		BaseURL:   "https://docs.broadcom.com",
		Timeout:   60 * time.Second,
		UserAgent: "broadcom-downloader",
		ChunkSize: DefaultChunkSize,
	}
}

// Client talks to the vendor document API.
//
// Client keeps a single connection per host open and reuses it for every
// request; it is meant to be used from one goroutine at a time.
//
// Example usage:
//
//	client, err := NewClient(DefaultOptions(), logger)
//
//	asset, err := client.Resolve(ctx, "/api/document/download/ABC123")
//
//	data, err := client.Fetch(ctx, asset.URL, func(read, total int64) {
//	    fmt.Printf("%d / %d bytes\n", read, total)
//	})
type Client struct {
	httpClient *http.Client
	base       *url.URL
	timeout    time.Duration
	userAgent  string
	chunkSize  int
	log        logrus.FieldLogger
}

// NewClient creates a Client from opts. Zero fields in opts fall back to
// DefaultOptions.
func NewClient(opts Options, log logrus.FieldLogger) (*Client, error) {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", opts.BaseURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		MaxConnsPerHost:       1,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		base:       base,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		chunkSize:  opts.ChunkSize,
		log:        log,
	}, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// OnUpdate receives the bytes written so far and the expected total, which
// is -1 when the server did not announce a length.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Resolve requests the metadata document at query and returns the download
// location it names.
//
// The request is sent with JSON Accept and Content-Type headers; the response
// must be 200 with a JSON content type.
func (c *Client) Resolve(ctx context.Context, query string) (model.ResolvedAsset, error) {
	headers := map[string]string{
		"Accept":       "application/json;charset=UTF-8",
		"Content-Type": ContentTypeJSON,
	}

	data, err := c.download(ctx, query, ContentTypeJSON, headers, nil)
	if err != nil {
		return model.ResolvedAsset{}, err
	}

	var asset model.ResolvedAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return model.ResolvedAsset{}, errors.Wrapf(err, "decode metadata from %s", query)
	}
	if asset.URL == "" {
		return model.ResolvedAsset{}, errors.Wrap(ErrNoURL, query)
	}
	return asset, nil
}

// Fetch downloads the file at rawURL into memory.
//
// The response must be 200 with an octet-stream content type. The body is
// read in chunks; onProgress, when not nil, is called after every chunk with
// the bytes read so far and the announced length (-1 if unknown).
func (c *Client) Fetch(ctx context.Context, rawURL string, onProgress func(read, total int64)) ([]byte, error) {
	return c.download(ctx, rawURL, ContentTypeBinary, nil, onProgress)
}

func (c *Client) download(ctx context.Context, ref, wantType string, headers map[string]string, onProgress func(read, total int64)) ([]byte, error) {
	target, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", target)
	}
	defer resp.Body.Close()

	c.log.Infof("HTTP: %s %s", resp.Status, target)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &FetchError{
			Kind:       KindStatus,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     string(body),
		}
	}

	got := mediaType(resp.Header.Get("Content-Type"))
	if !strings.Contains(got, strings.ToLower(wantType)) {
		return nil, &FetchError{
			Kind:        KindContentType,
			URL:         target,
			StatusCode:  resp.StatusCode,
			Status:      resp.Status,
			ContentType: got,
			Detail:      wantType,
		}
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var idle atomic.Bool
	timer := time.AfterFunc(c.timeout, func() {
		idle.Store(true)
		cancel()
	})
	defer timer.Stop()
	body := &idleReader{r: resp.Body, timer: timer, timeout: c.timeout}

	var w io.Writer = &buf
	if onProgress != nil {
		w = &ProgressWriter{
			Writer:   &buf,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if err := copyChunks(w, body, c.chunkSize); err != nil {
		if idle.Load() {
			err = ErrIdleTimeout
		}
		return nil, errors.Wrapf(err, "read %s", target)
	}
	return buf.Bytes(), nil
}

// idleReader pushes timer back by timeout whenever a read returns data.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.Reset(r.timeout)
	}
	return n, err
}

// copyChunks copies r to w in writes of exactly size bytes, except for the
// last one.
func copyChunks(w io.Writer, r io.Reader, size int) error {
	chunk := make([]byte, size)
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// resolveRef turns a metadata path or a possibly relative download URL into
// an absolute URL on the configured host.
func (c *Client) resolveRef(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL %q", ref)
	}
	return c.base.ResolveReference(u).String(), nil
}

// mediaType returns the lower-cased media type of a Content-Type header,
// "text/plain" when the header is absent.
func mediaType(header string) string {
	if header == "" {
		return "text/plain"
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}

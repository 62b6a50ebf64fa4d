package model

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// MetadataPathPrefix is the metadata endpoint; the publication number is
// appended to it.
const MetadataPathPrefix = "/api/document/download/"

// StatusFilter selects manifest entries by their Doc_Status.
type StatusFilter string

const (
	// StatusCurrent matches currently supported files.
	StatusCurrent StatusFilter = "Current"

	// StatusArchive matches superseded files.
	StatusArchive StatusFilter = "Archive"
)

// StatusFor returns StatusArchive when archive is set, StatusCurrent otherwise.
func StatusFor(archive bool) StatusFilter {
	if archive {
		return StatusArchive
	}
	return StatusCurrent
}

// Matches reports whether docStatus contains the filter value.
func (s StatusFilter) Matches(docStatus string) bool {
	return strings.Contains(docStatus, string(s))
}

// DownloadItem is a manifest entry that passed filtering.
//
// Query is the metadata request path and Dir the destination directory
// ({destination}/{version}/{doctype}/{os}). Items are not modified after
// NewDownloadItem returns them.
type DownloadItem struct {
	// Query is the metadata request path, e.g. "/api/document/download/ABC123".
	Query string

	// Dir is the directory the resolved file is placed in.
	Dir string

	// Title is kept for reporting.
	Title string

	// PublicationNumber is kept for reporting.
	PublicationNumber string
}

// NewDownloadItem builds the DownloadItem for rec below destination.
//
// OS, AssetVersion and DocType are normalized with NormalizeComponent before
// they become path components, so Dir never leaves destination.
func NewDownloadItem(rec *ManifestRecord, destination string) DownloadItem {
	version := NormalizeComponent(rec.AssetVersion)
	docType := NormalizeComponent(&rec.DocType)
	opsys := NormalizeComponent(rec.OS)

	return DownloadItem{
		Query:             MetadataPathPrefix + rec.PublicationNumber,
		Dir:               filepath.Join(destination, version, docType, opsys),
		Title:             rec.Title,
		PublicationNumber: rec.PublicationNumber,
	}
}

// NormalizeField maps nil to "" and trims surrounding whitespace.
func NormalizeField(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// NormalizeOS normalizes an OS value: nil becomes "", whitespace is trimmed
// and "/" is replaced with "_". NormalizeOS is idempotent.
//
// Example:
//
//	os := "Windows/Server "
//	NormalizeOS(&os) // "Windows_Server"
func NormalizeOS(s *string) string {
	return strings.ReplaceAll(NormalizeField(s), "/", "_")
}

// NormalizeComponent is NormalizeOS extended to the platform separator, for
// values used as a single directory name. "." and ".." become "_" so the
// component always names a directory below its parent.
func NormalizeComponent(s *string) string {
	v := NormalizeOS(s)
	if filepath.Separator != '/' {
		v = strings.ReplaceAll(v, string(filepath.Separator), "_")
	}
	if v == "." || v == ".." {
		return "_"
	}
	return v
}

// ResolvedAsset is the metadata response for one DownloadItem.
type ResolvedAsset struct {
	// URL is the direct download location.
	URL string `json:"URL"`
}

// FileName returns the basename of the URL path, without query string.
func (a ResolvedAsset) FileName() string {
	p := a.URL
	if u, err := url.Parse(a.URL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Ext returns the extension of FileName, including the dot.
func (a ResolvedAsset) Ext() string {
	return path.Ext(a.FileName())
}

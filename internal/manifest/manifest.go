package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/handiism/broadcom-downloader/internal/model"
)

// SkipReason tells why a record was left out.
type SkipReason int

const (
	// SkipCategory means a category marker did not contain "Downloads".
	SkipCategory SkipReason = iota

	// SkipStatus means Doc_Status did not match the status filter.
	SkipStatus

	// SkipType means DocType is not an accepted document type.
	SkipType
)

func (r SkipReason) String() string {
	switch r {
	case SkipCategory:
		return "wrong category"
	case SkipStatus:
		return "wrong status"
	case SkipType:
		return "wrong type"
	default:
		return "unknown"
	}
}

// Skip describes one record that did not become a DownloadItem.
type Skip struct {
	Index  int
	Reason SkipReason
	Value  string
	Title  string
}

func (s Skip) String() string {
	return fmt.Sprintf("Skipping file %s (%s) - %s", s.Value, s.Reason, s.Title)
}

// ValidationError reports a record that passed the category checks but lacks
// a field filtering depends on.
type ValidationError struct {
	Index int
	Field string
	Title string
}

func (e *ValidationError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("manifest record %d (%s): missing field %q", e.Index, e.Title, e.Field)
	}
	return fmt.Sprintf("manifest record %d: missing field %q", e.Index, e.Field)
}

// Criteria selects the records to download.
type Criteria struct {
	// Status is matched as a substring of Doc_Status.
	Status model.StatusFilter

	// Types lists the accepted DocType values (exact match).
	Types []string

	// Destination is the root of the download tree.
	Destination string
}

// Accepts reports whether docType is one of the accepted types.
func (c Criteria) Accepts(docType string) bool {
	for _, t := range c.Types {
		if t == docType {
			return true
		}
	}
	return false
}

// Load reads and decodes the manifest file at path.
func Load(path string) ([]model.ManifestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open manifest")
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode manifest %s", path)
	}
	return records, nil
}

// Decode decodes a manifest JSON array from r.
func Decode(r io.Reader) ([]model.ManifestRecord, error) {
	var records []model.ManifestRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// requiredFields must be present once a record passed the category checks.
var requiredFields = []string{
	model.FieldDocStatus,
	model.FieldDocType,
	model.FieldPublicationNumber,
}

// Filter applies c to records and returns the resulting download items in
// manifest order. onSkip, when not nil, is called for every skipped record.
//
// A record missing a category marker is skipped. A record missing any of
// Doc_Status, DocType or PublicationNumber after passing the category checks
// aborts filtering with a *ValidationError.
func Filter(records []model.ManifestRecord, c Criteria, onSkip func(Skip)) ([]model.DownloadItem, error) {
	skip := func(s Skip) {
		if onSkip != nil {
			onSkip(s)
		}
	}

	var items []model.DownloadItem
	for i := range records {
		rec := &records[i]

		if field, value, ok := checkCategory(rec); !ok {
			skip(Skip{Index: i, Reason: SkipCategory, Value: field + "=" + value, Title: rec.Title})
			continue
		}

		for _, field := range requiredFields {
			if !rec.Has(field) {
				return nil, &ValidationError{Index: i, Field: field, Title: rec.Title}
			}
		}

		if !c.Status.Matches(rec.DocStatus) {
			skip(Skip{Index: i, Reason: SkipStatus, Value: rec.DocStatus, Title: rec.Title})
			continue
		}

		if !c.Accepts(rec.DocType) {
			skip(Skip{Index: i, Reason: SkipType, Value: rec.DocType, Title: rec.Title})
			continue
		}

		items = append(items, model.NewDownloadItem(rec, c.Destination))
	}

	return items, nil
}

// checkCategory returns the first category marker that is missing or does
// not contain "Downloads".
func checkCategory(rec *model.ManifestRecord) (field, value string, ok bool) {
	for _, f := range rec.CategoryFields() {
		if !rec.Has(f[0]) || !strings.Contains(f[1], model.DownloadsCategory) {
			return f[0], f[1], false
		}
	}
	return "", "", true
}

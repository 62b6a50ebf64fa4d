package model

import (
	"bytes"
	"encoding/json"
)

// DownloadsCategory is the value every category marker of a downloadable
// manifest entry must contain.
const DownloadsCategory = "Downloads"

// ManifestRecord is one entry of the vendor manifest.
//
// The manifest is a JSON array of these objects as published by the vendor
// web site. Three fields (ContentType, ContentTypeAlt and TypeName) carry the
// same category marker; only entries marked as "Downloads" describe files.
//
// OS and AssetVersion are nullable in the source document and therefore
// pointers. Has reports whether a key carried a value in the decoded object,
// so a missing or null key can be told apart from an empty string.
//
// Example:
//
//	var rec ManifestRecord
//	_ = json.Unmarshal([]byte(`{"DocType":"Firmware","OS":null}`), &rec)
//	rec.Has(FieldDocType)   // true
//	rec.Has(FieldOS)        // false
//	rec.Has(FieldDocStatus) // false
type ManifestRecord struct {
	// ContentType is the "contenttype" category marker.
	ContentType string `json:"contenttype"`

	// ContentTypeAlt is the "Content_Type" category marker.
	ContentTypeAlt string `json:"Content_Type"`

	// TypeName is the "TypeName" category marker.
	TypeName string `json:"TypeName"`

	// DocStatus is the lifecycle marker, "Current" or "Archive".
	DocStatus string `json:"Doc_Status"`

	// DocType is the vendor category label (Firmware, BIOS, Driver, ...).
	DocType string `json:"DocType"`

	// OS is the target operating system; nil when the vendor left it empty.
	OS *string `json:"OS"`

	// AssetVersion is the file version; nil when the vendor left it empty.
	AssetVersion *string `json:"AssetVersion"`

	// Title is the human readable name of the file.
	Title string `json:"Title"`

	// PublicationNumber identifies the file on the metadata endpoint.
	PublicationNumber string `json:"PublicationNumber"`

	present map[string]bool
}

// Manifest field names as they appear in the JSON document.
const (
	FieldContentType       = "contenttype"
	FieldContentTypeAlt    = "Content_Type"
	FieldTypeName          = "TypeName"
	FieldDocStatus         = "Doc_Status"
	FieldDocType           = "DocType"
	FieldOS                = "OS"
	FieldAssetVersion      = "AssetVersion"
	FieldTitle             = "Title"
	FieldPublicationNumber = "PublicationNumber"
)

// UnmarshalJSON decodes the record and remembers which keys were present
// with a non-null value.
func (r *ManifestRecord) UnmarshalJSON(data []byte) error {
	type plain ManifestRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	*r = ManifestRecord(p)
	r.present = make(map[string]bool, len(keys))
	for k, v := range keys {
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			r.present[k] = true
		}
	}
	return nil
}

// Has reports whether the named key was present in the decoded object with
// a value other than null.
//
// Records built in code rather than decoded from JSON report every field
// as present.
func (r *ManifestRecord) Has(field string) bool {
	if r.present == nil {
		return true
	}
	return r.present[field]
}

// CategoryFields returns the three category markers in manifest order,
// paired with their JSON names.
func (r *ManifestRecord) CategoryFields() [3][2]string {
	return [3][2]string{
		{FieldContentType, r.ContentType},
		{FieldContentTypeAlt, r.ContentTypeAlt},
		{FieldTypeName, r.TypeName},
	}
}

package model

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  string
	}{
		{"nil", nil, ""},
		{"empty", strPtr(""), ""},
		{"trim", strPtr("  Linux  "), "Linux"},
		{"slash", strPtr("Windows/Server"), "Windows_Server"},
		{"slash and spaces", strPtr(" Windows/Linux/VMware "), "Windows_Linux_VMware"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOS(tt.input)
			assert.Equal(t, tt.want, got)

			// normalizing again must not change anything
			assert.Equal(t, got, NormalizeOS(&got))
		})
	}
}

func TestNormalizeField(t *testing.T) {
	assert.Equal(t, "", NormalizeField(nil))
	assert.Equal(t, "1.2.3", NormalizeField(strPtr(" 1.2.3 ")))
	assert.Equal(t, "a/b", NormalizeField(strPtr("a/b")))
}

func TestStatusFilter(t *testing.T) {
	assert.Equal(t, StatusCurrent, StatusFor(false))
	assert.Equal(t, StatusArchive, StatusFor(true))

	assert.True(t, StatusCurrent.Matches("Current"))
	assert.True(t, StatusCurrent.Matches("Current Release"))
	assert.False(t, StatusCurrent.Matches("Archive"))
	assert.False(t, StatusCurrent.Matches("current"))
	assert.True(t, StatusArchive.Matches("Archive"))
}

func TestNewDownloadItem(t *testing.T) {
	rec := &ManifestRecord{
		ContentType:       "Downloads",
		ContentTypeAlt:    "Downloads",
		TypeName:          "Downloads",
		DocStatus:         "Current",
		DocType:           "Firmware",
		OS:                strPtr("Windows/Server"),
		AssetVersion:      strPtr(" 1.2.3 "),
		Title:             "Controller firmware",
		PublicationNumber: "ABC123",
	}

	item := NewDownloadItem(rec, "dl")
	assert.Equal(t, "/api/document/download/ABC123", item.Query)
	assert.Equal(t, filepath.Join("dl", "1.2.3", "Firmware", "Windows_Server"), item.Dir)
	assert.Equal(t, "Controller firmware", item.Title)
	assert.Equal(t, "ABC123", item.PublicationNumber)
}

func TestNewDownloadItem_NullFields(t *testing.T) {
	rec := &ManifestRecord{DocType: " BIOS ", PublicationNumber: "X1"}

	item := NewDownloadItem(rec, "out")
	assert.Equal(t, filepath.Join("out", "BIOS"), item.Dir)

	up, dot, osUp := "..", " . ", ".."
	rec = &ManifestRecord{DocType: "..", AssetVersion: &up, OS: &osUp, PublicationNumber: "X2"}
	item = NewDownloadItem(rec, "out")
	assert.Equal(t, filepath.Join("out", "_", "_", "_"), item.Dir)

	rec = &ManifestRecord{DocType: "BIOS", AssetVersion: &dot, PublicationNumber: "X3"}
	item = NewDownloadItem(rec, "out")
	assert.Equal(t, filepath.Join("out", "_", "BIOS"), item.Dir)
}

func TestNormalizeComponent(t *testing.T) {
	for in, want := range map[string]string{
		"..":      "_",
		".":       "_",
		"...":     "...",
		"1.2/3":   "1.2_3",
		" BIOS ":  "BIOS",
		"../../x": ".._.._x",
	} {
		v := in
		assert.Equal(t, want, NormalizeComponent(&v), in)
	}
	assert.Empty(t, NormalizeComponent(nil))
}

func TestManifestRecord_Has(t *testing.T) {
	var rec ManifestRecord
	require.NoError(t, json.Unmarshal([]byte(`{"DocType":"Firmware","OS":null,"PublicationNumber":"P1"}`), &rec))

	assert.True(t, rec.Has(FieldDocType))
	assert.False(t, rec.Has(FieldOS))
	assert.False(t, rec.Has(FieldDocStatus))
	assert.Nil(t, rec.OS)
	assert.Equal(t, "P1", rec.PublicationNumber)

	built := ManifestRecord{}
	assert.True(t, built.Has(FieldDocStatus))
}

func TestResolvedAsset_FileName(t *testing.T) {
	tests := []struct {
		url      string
		wantName string
		wantExt  string
	}{
		{"https://cdn.example.com/files/fw/9211_P20.zip", "9211_P20.zip", ".zip"},
		{"https://cdn.example.com/files/fw/9211_P20.zip?sig=abc&exp=1", "9211_P20.zip", ".zip"},
		{"/docs/driver.tar.gz", "driver.tar.gz", ".gz"},
		{"https://cdn.example.com/", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			a := ResolvedAsset{URL: tt.url}
			assert.Equal(t, tt.wantName, a.FileName())
			assert.Equal(t, tt.wantExt, a.Ext())
		})
	}
}

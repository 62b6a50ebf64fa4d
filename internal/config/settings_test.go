package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/broadcom-downloader/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "dl", s.Directory)
	assert.False(t, s.Archive)
	assert.Equal(t, []string{"Firmware"}, s.Types)
	assert.Equal(t, "https://docs.broadcom.com", s.Host)
	assert.Equal(t, Duration(60*time.Second), s.Timeout)
	assert.Equal(t, Duration(time.Second), s.Throttle)
	assert.Equal(t, 1<<20, s.ChunkSize)
	assert.True(t, s.Lock)
	assert.NoError(t, s.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"directory": "mirror",
		"archive": true,
		"types": ["BIOS", "UEFI"],
		"throttle": "250ms"
	}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mirror", s.Directory)
	assert.True(t, s.Archive)
	assert.Equal(t, []string{"BIOS", "UEFI"}, s.Types)
	assert.Equal(t, Duration(250*time.Millisecond), s.Throttle)
	// untouched fields keep their defaults
	assert.Equal(t, "https://docs.broadcom.com", s.Host)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
directory: /srv/mirror
types:
  - Firmware
  - Driver
timeout: 2m
lock: false
`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mirror", s.Directory)
	assert.Equal(t, []string{"Firmware", "Driver"}, s.Types)
	assert.Equal(t, Duration(2*time.Minute), s.Timeout)
	assert.False(t, s.Lock)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("throttle: soon\n"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"types": []}`), 0644))
	_, err = Load(empty)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			s := DefaultSettings()
			s.Directory = "out"
			s.Types = []string{"EFI"}
			s.Throttle = Duration(3 * time.Second)
			require.NoError(t, s.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, s, loaded)
		})
	}
}

func TestToCriteria(t *testing.T) {
	s := DefaultSettings()
	c := s.ToCriteria()
	assert.Equal(t, model.StatusCurrent, c.Status)
	assert.Equal(t, []string{"Firmware"}, c.Types)
	assert.Equal(t, "dl", c.Destination)

	s.Archive = true
	assert.Equal(t, model.StatusArchive, s.ToCriteria().Status)
}

func TestToClientOptions(t *testing.T) {
	s := DefaultSettings()
	s.Host = "http://127.0.0.1:8080"

	opts := s.ToClientOptions()
	assert.Equal(t, "http://127.0.0.1:8080", opts.BaseURL)
	assert.Equal(t, 60*time.Second, opts.Timeout)
	assert.Equal(t, 1<<20, opts.ChunkSize)
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	dlhttp "github.com/handiism/broadcom-downloader/internal/http"
	"github.com/handiism/broadcom-downloader/internal/manifest"
	"github.com/handiism/broadcom-downloader/internal/model"
)

// Duration is a time.Duration that reads and writes as a string such as
// "1s" or "500ms" in both JSON and YAML settings files.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// Settings holds all configuration options.
type Settings struct {
	// Download selection
	Directory string   `json:"directory" yaml:"directory"`
	Archive   bool     `json:"archive" yaml:"archive"`
	Types     []string `json:"types" yaml:"types"`

	// Remote
	Host      string   `json:"host" yaml:"host"`
	UserAgent string   `json:"user_agent" yaml:"user_agent"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	Throttle  Duration `json:"throttle" yaml:"throttle"`
	ChunkSize int      `json:"chunk_size" yaml:"chunk_size"`

	// Destination tree
	Lock bool `json:"lock" yaml:"lock"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	opts := dlhttp.DefaultOptions()
	return &Settings{
		Directory: "dl",
		Archive:   false,
		Types:     []string{"Firmware"},

		Host:      opts.BaseURL,
		UserAgent: opts.UserAgent,
		Timeout:   Duration(opts.Timeout),
		Throttle:  Duration(time.Second),
		ChunkSize: opts.ChunkSize,

		Lock: true,
	}
}

// Load reads settings from a JSON or YAML file. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON. A missing file yields the
// defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, errors.Wrap(err, "read settings")
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", path)
	}

	return settings, settings.Validate()
}

// Save writes settings to a JSON or YAML file, chosen by extension as in Load.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the downloader cannot work with.
func (s *Settings) Validate() error {
	if s.Directory == "" {
		return errors.New("settings: directory must not be empty")
	}
	if len(s.Types) == 0 {
		return errors.New("settings: at least one document type is required")
	}
	if s.ChunkSize < 0 {
		return errors.Errorf("settings: invalid chunk size %d", s.ChunkSize)
	}
	if s.Throttle < 0 {
		return errors.Errorf("settings: invalid throttle %s", time.Duration(s.Throttle))
	}
	return nil
}

// Status returns the status filter selected by Archive.
func (s *Settings) Status() model.StatusFilter {
	return model.StatusFor(s.Archive)
}

// ToCriteria converts settings to manifest filter criteria.
func (s *Settings) ToCriteria() manifest.Criteria {
	return manifest.Criteria{
		Status:      s.Status(),
		Types:       append([]string(nil), s.Types...),
		Destination: s.Directory,
	}
}

// ToClientOptions converts settings to HTTP client options.
func (s *Settings) ToClientOptions() dlhttp.Options {
	return dlhttp.Options{
		BaseURL:   s.Host,
		Timeout:   time.Duration(s.Timeout),
		UserAgent: s.UserAgent,
		ChunkSize: s.ChunkSize,
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Package config provides configuration management for broadcom-downloader.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings from JSON or YAML files
//   - Conversion to manifest.Criteria and http.Options for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads current firmware into ./dl
//	// One second pause between metadata and file requests
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/settings.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in .yaml or .yml are YAML, all others JSON:
//
//	directory: /srv/mirror/broadcom
//	types: [Firmware, BIOS, UEFI]
//	throttle: 2s
//
// Command line flags are applied on top of the loaded settings.
package config

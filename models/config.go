// Package models defines data structures for configuration, content
// processing, and stored file records.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProcessingConfig controls which pipeline stages run and how.
type ProcessingConfig struct {
	PreserveCodeBlocks bool `yaml:"preserve_code_blocks"`
	OptimizeForAI      bool `yaml:"optimize_for_ai"`
	CleanNavigation    bool `yaml:"clean_navigation"`
	IncludeMetadata    bool `yaml:"include_metadata"`

	HeadingNormalization  bool `yaml:"heading_normalization"`
	CodeLanguageDetection bool `yaml:"code_language_detection"`
	LinkValidation        bool `yaml:"link_validation"`
	RemoveHTMLArtifacts   bool `yaml:"remove_html_artifacts"`
}

// ExportConfig controls archive generation.
type ExportConfig struct {
	IncludeMetadata   bool   `yaml:"include_metadata"`
	DefaultFormat     string `yaml:"default_format"`
	PreserveStructure bool   `yaml:"preserve_structure"`
}

// StorageConfig controls file organization and index persistence.
type StorageConfig struct {
	DomainBasedFolders bool `yaml:"domain_based_folders"`
	TimestampNaming    bool `yaml:"timestamp_naming"`
	SanitizeFilenames  bool `yaml:"sanitize_filenames"`
	MaxFilenameLength  int  `yaml:"max_filename_length"`

	CompressionEnabled bool   `yaml:"compression_enabled"`
	BackupEnabled      bool   `yaml:"backup_enabled"`
	MaxFileSizeMB      int    `yaml:"max_file_size_mb"`
	DuplicateHandling  string `yaml:"duplicate_handling"`

	Export ExportConfig `yaml:"export"`
}

// Config is the full application configuration.
type Config struct {
	Processing ProcessingConfig `yaml:"processing"`
	Storage    StorageConfig    `yaml:"storage"`
	Workers    int              `yaml:"workers"`
}

// DefaultConfig returns the built-in configuration used when no config file
// is present or the file cannot be parsed.
func DefaultConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{
			PreserveCodeBlocks:    true,
			OptimizeForAI:         true,
			CleanNavigation:       true,
			IncludeMetadata:       true,
			HeadingNormalization:  true,
			CodeLanguageDetection: true,
			LinkValidation:        true,
			RemoveHTMLArtifacts:   true,
		},
		Storage: StorageConfig{
			DomainBasedFolders: true,
			TimestampNaming:    true,
			SanitizeFilenames:  true,
			MaxFilenameLength:  100,
			CompressionEnabled: true,
			BackupEnabled:      true,
			MaxFileSizeMB:      50,
			DuplicateHandling:  "skip",
			Export: ExportConfig{
				IncludeMetadata:   true,
				DefaultFormat:     "zip",
				PreserveStructure: true,
			},
		},
		Workers: 4,
	}
}

// LoadConfig reads a YAML config file. A missing or malformed file is not
// fatal: the built-in defaults are returned along with the error so callers
// can log it and continue.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Storage.MaxFilenameLength <= 0 {
		cfg.Storage.MaxFilenameLength = 100
	}
	if cfg.Storage.DuplicateHandling == "" {
		cfg.Storage.DuplicateHandling = "skip"
	}
	if cfg.Storage.Export.DefaultFormat == "" {
		cfg.Storage.Export.DefaultFormat = "zip"
	}

	return cfg, nil
}

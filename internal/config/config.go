// Package config loads the converter configuration. Layering, lowest to
// highest precedence: built-in defaults, an optional YAML file, environment
// variables.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment variables, e.g.
// NEUROCONV_PATHS_BASE_DIR.
const EnvPrefix = "NEUROCONV"

// Config represents the complete converter configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Convert ConvertConfig `yaml:"convert" envconfig:"CONVERT"`
}

// PathsConfig locates the legacy dataset and the output directory.
type PathsConfig struct {
	// BaseDir is the root of the legacy dataset, containing the raw and
	// analyzed subtrees.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required"`
	// RawDirName is the subtree holding per-tetrode spike files.
	RawDirName string `yaml:"raw_dir_name" envconfig:"RAW_DIR_NAME" validate:"required"`
	// AnalyzedDirName is the subtree holding per-tetrode binary map files.
	AnalyzedDirName string `yaml:"analyzed_dir_name" envconfig:"ANALYZED_DIR_NAME" validate:"required"`
	// OutputDir receives one directory per converted subject-session.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ConvertConfig tunes the conversion batch.
type ConvertConfig struct {
	// Workers bounds the number of files parsed concurrently.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	// StubTest caps each tetrode directory at two files for quick runs.
	StubTest bool `yaml:"stub_test" envconfig:"STUB_TEST"`
	// Subjects restricts the batch to the named subject folders; empty
	// means every known subject.
	Subjects []string `yaml:"subjects" envconfig:"SUBJECTS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			BaseDir:         "data",
			RawDirName:      "1_RAW_(original_files)",
			AnalyzedDirName: "ANALYZED_(original_files)",
			OutputDir:       "out",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/neuroconv.log",
		},
		Convert: ConvertConfig{
			Workers: 4,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file
// (empty path skips the file layer) and environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile layers a YAML file over cfg; keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gyeh/mrfingest/internal/model"

	"gopkg.in/yaml.v3"
)

// DefaultStreamThresholdMB is the file size above which the JSON parser
// switches from whole-document parsing to chunked streaming.
const DefaultStreamThresholdMB = 64

// Config holds all runtime configuration for a mrfingest run.
type Config struct {
	DSN          string
	FilePath     string
	DirPath      string
	HospitalName string
	LogFormat    string // "text" or "json"
	LogLevel     string
	PurgeFirst   bool // delete the hospital's documents before ingesting
	MaxItems     int  // stop each parser after N items (0 = no limit)

	StreamThresholdMB int      `yaml:"stream_threshold_mb"`
	Workers           int      `yaml:"workers"`    // directory ingest concurrency
	CodeTypes         []string `yaml:"code_types"` // subset of AllCodeTypes to index

	// Fetch settings.
	LinksPath string
	OutDir    string
	RateLimit float64 // downloads per second across all workers

	// Pricing settings.
	PricingBaseURL string
	PricingTTL     time.Duration
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	CodeTypes         []string `yaml:"code_types"`
	StreamThresholdMB int      `yaml:"stream_threshold_mb"`
	Workers           int      `yaml:"workers"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.CodeTypes = yc.CodeTypes
	if yc.StreamThresholdMB > 0 {
		c.StreamThresholdMB = yc.StreamThresholdMB
	}
	if yc.Workers > 0 {
		c.Workers = yc.Workers
	}
	return c.validateCodeTypes()
}

// validateCodeTypes checks that every entry in CodeTypes is a known code
// type name. If CodeTypes is empty, it defaults to all AllCodeTypes names.
func (c *Config) validateCodeTypes() error {
	if len(c.CodeTypes) == 0 {
		c.CodeTypes = make([]string, len(model.AllCodeTypes))
		for i, ct := range model.AllCodeTypes {
			c.CodeTypes[i] = string(ct)
		}
		return nil
	}
	for _, name := range c.CodeTypes {
		if !model.ParseCodeType(name).Known() {
			return fmt.Errorf("unknown code type %q in config", name)
		}
	}
	return nil
}

// StreamThresholdBytes returns the streaming cutover size in bytes.
func (c *Config) StreamThresholdBytes() int64 {
	mb := c.StreamThresholdMB
	if mb <= 0 {
		mb = DefaultStreamThresholdMB
	}
	return int64(mb) << 20
}

// EffectiveWorkers returns the directory-ingest concurrency limit.
func (c *Config) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.FilePath == "" && c.DirPath == "" {
		return fmt.Errorf("--file or --dir is required")
	}
	if c.FilePath != "" && c.DirPath != "" {
		return fmt.Errorf("--file and --dir are mutually exclusive")
	}
	path := c.FilePath
	if path == "" {
		path = c.DirPath
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("path not accessible: %w", err)
	}
	return c.validateCodeTypes()
}

// ValidateWithDSN checks both input path and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}

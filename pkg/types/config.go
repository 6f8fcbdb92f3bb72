// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

const (
	DefaultBaseURL        = "https://project.vrsevilla.is215.upou.io:5000"
	DefaultUserAgent      = "pixel8/0.1"
	DefaultTimeout        = 5 * time.Minute
	DefaultProgressCap    = 95
	DefaultProcessingTick = 150 * time.Millisecond
	DefaultProcessingStep = 5
	DefaultPDFName        = "Article.pdf"
	DefaultAttribution    = "Powered by IS215 2024–2025 · Pixel8 Co."
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Analysis can take minutes on the
	// server side, so the default is generous.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pixel8/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// UploadConfig holds settings for the upload stage.
type UploadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the analysis service root; /api/upload and /api/ping are
	// resolved against it.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxFileSizeBytes is the size ceiling for both flows (default 10 MB).
	MaxFileSizeBytes int64 `json:"max_file_size_bytes" yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes"`

	// ProgressCap is the highest progress shown while bytes are in flight
	// (default 95).
	ProgressCap int `json:"progress_cap" yaml:"progress_cap" mapstructure:"progress_cap"`

	// ProcessingTick is the cadence of the synthetic processing tail.
	ProcessingTick time.Duration `json:"processing_tick" yaml:"processing_tick" mapstructure:"processing_tick"`

	// ProcessingStep is how far each processing tick advances progress.
	ProcessingStep int `json:"processing_step" yaml:"processing_step" mapstructure:"processing_step"`
}

// ExportConfig holds settings for the PDF export stage.
type ExportConfig struct {
	// OutputDir is where the PDF is written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// FileName is the PDF file name (default "Article.pdf").
	FileName string `json:"file_name" yaml:"file_name" mapstructure:"file_name"`

	// Attribution is the footer text revealed only while exporting.
	Attribution string `json:"attribution" yaml:"attribution" mapstructure:"attribution"`

	// ImageScale is the raster scale applied to embedded images (default 2).
	ImageScale float64 `json:"image_scale" yaml:"image_scale" mapstructure:"image_scale"`

	// UserAgent is sent when fetching remote images. Empty means the
	// upload stage's User-Agent.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LoggingConfig controls the structured debug log.
type LoggingConfig struct {
	// Dir is the directory for debug.log; empty logs to stderr.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Level is DEBUG, INFO, WARN or ERROR (default WARN).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all stage configurations.
type Config struct {
	Upload  UploadConfig  `json:"upload" yaml:"upload" mapstructure:"upload"`
	Export  ExportConfig  `json:"export" yaml:"export" mapstructure:"export"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	u := &c.Upload
	if u.BaseURL == "" {
		u.BaseURL = DefaultBaseURL
	}
	if u.Timeout <= 0 {
		u.Timeout = DefaultTimeout
	}
	if u.UserAgent == "" {
		u.UserAgent = DefaultUserAgent
	}
	if u.MaxFileSizeBytes <= 0 {
		u.MaxFileSizeBytes = MaxFileSize
	}
	if u.ProgressCap <= 0 || u.ProgressCap >= 100 {
		u.ProgressCap = DefaultProgressCap
	}
	if u.ProcessingTick <= 0 {
		u.ProcessingTick = DefaultProcessingTick
	}
	if u.ProcessingStep <= 0 {
		u.ProcessingStep = DefaultProcessingStep
	}

	e := &c.Export
	if e.OutputDir == "" {
		e.OutputDir = "."
	}
	if e.FileName == "" {
		e.FileName = DefaultPDFName
	}
	if e.Attribution == "" {
		e.Attribution = DefaultAttribution
	}
	if e.ImageScale <= 0 {
		e.ImageScale = 2
	}
	if e.UserAgent == "" {
		e.UserAgent = u.UserAgent
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "WARN"
	}
}

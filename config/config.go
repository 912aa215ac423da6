// Package config defines the process configuration for planararm and how to read it.
package config

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/planararm/logging"
)

// Defaults filled in for omitted fields.
const (
	DefaultBindAddress = "localhost:8080"
	DefaultArmName     = "arm"
	DefaultArmModel    = "fake"
)

// A Config describes the configuration of a planararm process.
type Config struct {
	ConfigFilePath string `json:"-"`

	Debug    bool          `json:"debug,omitempty"`
	LogLevel string        `json:"log_level,omitempty"`
	LogFile  LogFileConfig `json:"log_file"`
	Network  NetworkConfig `json:"network"`
	Render   RenderConfig  `json:"render"`
	Arm      ArmConfig     `json:"arm"`
}

// LogFileConfig describes an optional rotated log file written next to the console output.
type LogFileConfig struct {
	Path       string `json:"path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// Enabled reports whether a log file is configured.
func (c LogFileConfig) Enabled() bool {
	return c.Path != ""
}

// NetworkConfig describes networking settings for the web server.
type NetworkConfig struct {
	BindAddress string `json:"bind_address,omitempty"`
}

// RenderConfig describes the frame loop and the rendered image.
type RenderConfig struct {
	FrameRate int     `json:"frame_rate,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// ArmConfig describes the arm to drive. Attributes are decoded by the arm model.
type ArmConfig struct {
	Name       string                 `json:"name,omitempty"`
	Model      string                 `json:"model,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return goutils.NewConfigValidationError("log_level", err)
		}
	}
	if c.LogFile.MaxSizeMB < 0 || c.LogFile.MaxBackups < 0 {
		return goutils.NewConfigValidationError("log_file",
			errors.Errorf("limits must not be negative, got max_size_mb %d and max_backups %d", c.LogFile.MaxSizeMB, c.LogFile.MaxBackups))
	}
	if err := c.Render.Validate("render"); err != nil {
		return err
	}
	return c.Arm.Validate("arm")
}

// Validate ensures all parts of the config are valid.
func (c *RenderConfig) Validate(path string) error {
	if c.FrameRate < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("frame_rate must not be negative, got %d", c.FrameRate))
	}
	if c.Width < 0 || c.Height < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("image size must not be negative, got %dx%d", c.Width, c.Height))
	}
	if c.Scale < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("scale must not be negative, got %v", c.Scale))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (c *ArmConfig) Validate(path string) error {
	if c.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if c.Model == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "model")
	}
	return nil
}

func (c *Config) ensureDefaults() {
	if c.Network.BindAddress == "" {
		c.Network.BindAddress = DefaultBindAddress
	}
	if c.Arm.Name == "" {
		c.Arm.Name = DefaultArmName
	}
	if c.Arm.Model == "" {
		c.Arm.Model = DefaultArmModel
	}
}

// Level returns the configured log level. Debug overrides log_level.
func (c *Config) Level() logging.Level {
	if c.Debug {
		return logging.DEBUG
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

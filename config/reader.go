package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/planararm/logging"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", filePath)
	}
	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := &Config{}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	cfg.ConfigFilePath = originalPath
	cfg.ensureDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.CDebugw(ctx, "config read", "path", originalPath, "arm", cfg.Arm.Name, "model", cfg.Arm.Model)
	return cfg, nil
}

// Default returns the config used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ensureDefaults()
	return cfg
}

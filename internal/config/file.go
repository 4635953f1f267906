package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/gcdtutor/internal/errors"
)

// FileConfig is the YAML layout of the configuration file. Absent keys keep
// their default.
type FileConfig struct {
	Mode           *string  `yaml:"mode"`
	Explain        *bool    `yaml:"explain"`
	Speak          *bool    `yaml:"speak"`
	Lang           *string  `yaml:"lang"`
	Model          *string  `yaml:"model"`
	SpeechModel    *string  `yaml:"speech_model"`
	Voice          *string  `yaml:"voice"`
	APIKey         *string  `yaml:"api_key"`
	Timeout        *string  `yaml:"timeout"`
	Retries        *int     `yaml:"retries"`
	RetryDelay     *string  `yaml:"retry_delay"`
	Listen         *string  `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Quiet          *bool    `yaml:"quiet"`
	NoColor        *bool    `yaml:"no_color"`
	LogLevel       *string  `yaml:"log_level"`
}

// DefaultFilePath returns the config file location. It respects
// XDG_CONFIG_HOME, falling back to ~/.config/gcdtutor/config.yaml.
func DefaultFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "gcdtutor", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gcdtutor", "config.yaml")
}

// LoadFile reads the YAML file at path. A missing file is not an error unless
// required is set; loaded reports whether a file was read.
func LoadFile(path string, required bool) (fc FileConfig, loaded bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, true, nil
}

// applyFile copies every value present in fc whose flag was not given.
func applyFile(cfg *AppConfig, fc FileConfig, fs *flag.FlagSet) error {
	set := func(flags ...string) bool { return !isFlagSetAny(fs, flags...) }

	if fc.Mode != nil && set("mode", "repl", "tui", "serve") {
		cfg.Mode = Mode(strings.ToLower(*fc.Mode))
	}
	if fc.Explain != nil && set("no-explain") {
		cfg.Explain = *fc.Explain
	}
	if fc.Speak != nil && set("speak") {
		cfg.Speak = *fc.Speak
	}
	if fc.Lang != nil && set("lang") {
		cfg.Lang = strings.ToLower(*fc.Lang)
	}
	if fc.Model != nil && set("model") {
		cfg.Model = *fc.Model
	}
	if fc.SpeechModel != nil && set("speech-model") {
		cfg.SpeechModel = *fc.SpeechModel
	}
	if fc.Voice != nil && set("voice") {
		cfg.Voice = *fc.Voice
	}
	if fc.APIKey != nil && set("api-key") {
		cfg.APIKey = *fc.APIKey
	}
	if fc.Timeout != nil && set("timeout") {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return apperrors.NewConfigError("invalid timeout %q in config file", *fc.Timeout)
		}
		cfg.Timeout = d
	}
	if fc.Retries != nil && set("retries") {
		cfg.Retries = *fc.Retries
	}
	if fc.RetryDelay != nil && set("retry-delay") {
		d, err := time.ParseDuration(*fc.RetryDelay)
		if err != nil {
			return apperrors.NewConfigError("invalid retry_delay %q in config file", *fc.RetryDelay)
		}
		cfg.RetryDelay = d
	}
	if fc.Listen != nil && set("listen") {
		cfg.Listen = *fc.Listen
	}
	if fc.AllowedOrigins != nil && set("allowed-origins") {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.Quiet != nil && set("quiet", "q") {
		cfg.Quiet = *fc.Quiet
	}
	if fc.NoColor != nil && set("no-color") {
		cfg.NoColor = *fc.NoColor
	}
	if fc.LogLevel != nil && set("log-level") {
		cfg.LogLevel = strings.ToLower(*fc.LogLevel)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [LoadFromReader] for fields left unset.
const (
	DefaultDebounceDelay    = 2 * time.Second
	DefaultPipelineDeadline = 25 * time.Second
	DefaultTranslateTimeout = 10 * time.Second
	DefaultUploadTimeout    = 30 * time.Second
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pipeline.DebounceDelay <= 0 {
		cfg.Pipeline.DebounceDelay = Duration(DefaultDebounceDelay)
	}
	if cfg.Pipeline.Deadline <= 0 {
		cfg.Pipeline.Deadline = Duration(DefaultPipelineDeadline)
	}
	if cfg.Translate.Timeout <= 0 {
		cfg.Translate.Timeout = Duration(DefaultTranslateTimeout)
	}
	if cfg.Upload.Timeout <= 0 {
		cfg.Upload.Timeout = Duration(DefaultUploadTimeout)
	}
	if tok := os.Getenv("TELEGRAM_BOT_TOKEN"); tok != "" {
		cfg.Telegram.Token = tok
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required (or set TELEGRAM_BOT_TOKEN)"))
	}
	if cfg.Telegram.AllowlistPath == "" {
		errs = append(errs, errors.New("telegram.allowlist_path is required"))
	}
	if cfg.Pipeline.Deadline.Std() <= cfg.Pipeline.DebounceDelay.Std() {
		errs = append(errs, fmt.Errorf("pipeline.deadline %s must exceed pipeline.debounce_delay %s",
			cfg.Pipeline.Deadline.Std(), cfg.Pipeline.DebounceDelay.Std()))
	}
	if cfg.Render.Width < 0 || cfg.Render.Height < 0 {
		errs = append(errs, errors.New("render.width and render.height must not be negative"))
	}
	if cfg.Render.FrameCount < 0 {
		errs = append(errs, errors.New("render.frame_count must not be negative"))
	}

	return errors.Join(errs...)
}

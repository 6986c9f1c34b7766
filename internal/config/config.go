// Package config provides the configuration schema and loader for the
// babelgif bot.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mzhaase/babelgif/pkg/render"
)

// LogLevel controls log verbosity for the bot.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps [time.Duration] so YAML values can be written as strings
// like "2s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML decodes a duration string via [time.ParseDuration].
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for babelgif. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Translate TranslateConfig `yaml:"translate"`
	Upload    UploadConfig    `yaml:"upload"`
	Render    RenderConfig    `yaml:"render"`
}

// ServerConfig holds settings for the ops HTTP listener and logging.
type ServerConfig struct {
	// ListenAddr is the TCP address the ops server (health, metrics)
	// listens on (e.g., ":8080"). Empty disables the ops listener.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// TelegramConfig holds the bot credentials and access control settings.
type TelegramConfig struct {
	// Token is the Telegram bot API token. May also be supplied via the
	// TELEGRAM_BOT_TOKEN environment variable, which takes precedence.
	Token string `yaml:"token"`

	// AllowlistPath points to a file of permitted user IDs, one per line.
	AllowlistPath string `yaml:"allowlist_path"`
}

// PipelineConfig controls request coalescing and the per-run deadline.
type PipelineConfig struct {
	// DebounceDelay is how long a user's input must stay unchanged before
	// work starts. Default: 2s.
	DebounceDelay Duration `yaml:"debounce_delay"`

	// Deadline bounds one full translate, render, upload run. Default: 25s.
	Deadline Duration `yaml:"deadline"`
}

// TranslateConfig holds settings for the translation endpoint.
type TranslateConfig struct {
	// Endpoint overrides the translation endpoint URL. Empty uses the
	// built-in default.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds one translation HTTP call. Default: 10s.
	Timeout Duration `yaml:"timeout"`
}

// UploadConfig holds settings for the artifact upload host.
type UploadConfig struct {
	// Endpoint overrides the upload endpoint URL. Empty uses the built-in
	// default.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds one upload HTTP call. Default: 30s.
	Timeout Duration `yaml:"timeout"`
}

// RenderConfig controls the animation geometry and text layout. Zero fields
// fall back to the renderer defaults.
type RenderConfig struct {
	Width           int      `yaml:"width"`
	Height          int      `yaml:"height"`
	FrameCount      int      `yaml:"frame_count"`
	FrameDuration   Duration `yaml:"frame_duration"`
	FontSize        float64  `yaml:"font_size"`
	CaptionFontSize float64  `yaml:"caption_font_size"`
	WrapWidth       int      `yaml:"wrap_width"`
	Saturation      float64  `yaml:"saturation"`
	Value           float64  `yaml:"value"`

	// LatinFonts and NonLatinFonts override the ordered font file candidate
	// lists. Empty keeps the built-in system paths.
	LatinFonts    []string `yaml:"latin_fonts"`
	NonLatinFonts []string `yaml:"non_latin_fonts"`
}

// Spec converts r into a [render.Spec], filling zero fields from
// [render.DefaultSpec].
func (r RenderConfig) Spec() render.Spec {
	spec := render.DefaultSpec()
	if r.Width > 0 {
		spec.Width = r.Width
	}
	if r.Height > 0 {
		spec.Height = r.Height
	}
	if r.FrameCount > 0 {
		spec.FrameCount = r.FrameCount
	}
	if r.FrameDuration > 0 {
		spec.FrameDuration = r.FrameDuration.Std()
	}
	if r.FontSize > 0 {
		spec.FontSize = r.FontSize
	}
	if r.CaptionFontSize > 0 {
		spec.CaptionFontSize = r.CaptionFontSize
	}
	if r.WrapWidth > 0 {
		spec.WrapWidth = r.WrapWidth
	}
	if r.Saturation > 0 {
		spec.Saturation = r.Saturation
	}
	if r.Value > 0 {
		spec.Value = r.Value
	}
	return spec
}

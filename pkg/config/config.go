// Package config loads vuet settings and module declarations from YAML, with
// environment overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	vuet "github.com/goliatone/go-vuet"
	"github.com/goliatone/go-vuet/pkg/activity"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VUET_"

// Settings is the root configuration structure.
type Settings struct {
	PathJoin string           `yaml:"path_join" env:"PATH_JOIN"`
	Log      LogSettings      `yaml:"log" envPrefix:"LOG_"`
	Activity ActivitySettings `yaml:"activity" envPrefix:"ACTIVITY_"`
	// Defaults is the base state every module starts from.
	Defaults map[string]any `yaml:"defaults"`
}

// LogSettings configures the diagnostic logger.
type LogSettings struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // "json" or "console"
}

// ActivitySettings configures store activity emission.
type ActivitySettings struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Channel string `yaml:"channel" env:"CHANNEL"`
}

// Default returns the settings used when nothing overrides them.
func Default() Settings {
	return Settings{
		PathJoin: vuet.DefaultPathJoin,
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
		Activity: ActivitySettings{
			Enabled: true,
			Channel: activity.DefaultChannel,
		},
	}
}

// Load reads settings from the YAML file at path, then applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (Settings, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// Parse is Load for an in-memory document.
func Parse(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Settings, error) {
	settings := Default()
	if len(data) > 0 {
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.ParseWithOptions(&settings, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validate config: %w", err)
	}
	return settings, nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.PathJoin == "" {
		return fmt.Errorf("path_join must not be empty")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(s.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch s.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console', got %q", s.Log.Format)
	}
	return nil
}

// Logger builds the diagnostic logger writing to w.
func (s Settings) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(s.Log.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if s.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Options converts the settings into vuet options. extra is appended last so
// callers can override any of them.
func (s Settings) Options(logger zerolog.Logger, extra ...vuet.Option) []vuet.Option {
	opts := []vuet.Option{
		vuet.WithPathJoin(s.PathJoin),
		vuet.WithLogger(logger),
		vuet.WithActivityConfig(activity.Config{
			Enabled: s.Activity.Enabled,
			Channel: s.Activity.Channel,
		}),
	}
	if s.Defaults != nil {
		defaults := vuet.StaticData(s.Defaults)
		opts = append(opts, vuet.WithData(func() vuet.State {
			return defaults("")
		}))
	}
	return append(opts, extra...)
}

// Package config loads blueprint settings from defaults, an optional YAML
// file and BLUEPRINT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/roach88/blueprint/internal/assist"
	"github.com/roach88/blueprint/internal/logging"
	"github.com/roach88/blueprint/internal/project"
)

// EnvPrefix prefixes every environment override, e.g. BLUEPRINT_LOG_LEVEL.
const EnvPrefix = "BLUEPRINT"

// DefaultFile is read when present and no explicit path is given.
const DefaultFile = "blueprint.yaml"

// Config is the full application configuration.
type Config struct {
	Log     logging.Config `mapstructure:"log"`
	Assist  AssistConfig   `mapstructure:"assist"`
	Project ProjectConfig  `mapstructure:"project"`
	Journal JournalConfig  `mapstructure:"journal"`
}

// AssistConfig tunes the simulated assistant.
type AssistConfig struct {
	Seed         uint64            `mapstructure:"seed"`
	DiscardStale bool              `mapstructure:"discard_stale"` // drop results superseded by a newer request
	Delays       assist.Delays     `mapstructure:"delays"`
	Load         assist.LoadConfig `mapstructure:"load" validate:"required"`
}

// ProjectConfig holds IDL projection names.
type ProjectConfig struct {
	Package string `mapstructure:"package" validate:"required"`
	Service string `mapstructure:"service" validate:"required"`
}

// Options converts the names to projection options.
func (p ProjectConfig) Options() []project.Option {
	return []project.Option{project.WithPackage(p.Package), project.WithService(p.Service)}
}

// JournalConfig locates the audit journal.
type JournalConfig struct {
	Path string `mapstructure:"path"` // empty disables journaling
}

// Load reads configuration. An empty path falls back to DefaultFile in the
// working directory; a missing default file is not an error, a missing
// explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || isNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	return &Config{
		Log: logging.Config{Level: "info"},
		Assist: AssistConfig{
			Delays: assist.DefaultDelays(),
			Load:   assist.DefaultLoadConfig(),
		},
		Project: ProjectConfig{Package: "api", Service: "APIService"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.verbose", d.Log.Verbose)
	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("assist.seed", d.Assist.Seed)
	v.SetDefault("assist.discard_stale", d.Assist.DiscardStale)
	v.SetDefault("assist.delays.suggestions", d.Assist.Delays.Suggestions)
	v.SetDefault("assist.delays.parameters", d.Assist.Delays.Parameters)
	v.SetDefault("assist.delays.fields", d.Assist.Delays.Fields)
	v.SetDefault("assist.delays.prompt", d.Assist.Delays.Prompt)
	v.SetDefault("assist.delays.performance", d.Assist.Delays.Performance)
	v.SetDefault("assist.delays.conversion", d.Assist.Delays.Conversion)
	v.SetDefault("assist.load.concurrent_users", d.Assist.Load.ConcurrentUsers)
	v.SetDefault("assist.load.duration", d.Assist.Load.Duration)

	v.SetDefault("project.package", d.Project.Package)
	v.SetDefault("project.service", d.Project.Service)

	v.SetDefault("journal.path", d.Journal.Path)
}

var checks = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges that defaults cannot guarantee once a file
// or environment overrides them.
func (c *Config) Validate() error {
	if err := checks.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"suggestions": c.Assist.Delays.Suggestions,
		"parameters":  c.Assist.Delays.Parameters,
		"fields":      c.Assist.Delays.Fields,
		"prompt":      c.Assist.Delays.Prompt,
		"performance": c.Assist.Delays.Performance,
		"conversion":  c.Assist.Delays.Conversion,
	} {
		if d < 0 {
			return fmt.Errorf("invalid config: assist.delays.%s must not be negative", name)
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

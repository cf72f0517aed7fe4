// Package config loads the search configuration from viper into typed structs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/findskill/pkg/github"
	"github.com/jingkaihe/findskill/pkg/skills"
)

// GitHubConfig controls remote search
type GitHubConfig struct {
	Enabled       bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Topic         string        `mapstructure:"topic" json:"topic" yaml:"topic"`
	Repos         []string      `mapstructure:"repos" json:"repos" yaml:"repos"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`
	APIURL        string        `mapstructure:"api_url" json:"api_url" yaml:"api_url"`
	RawURL        string        `mapstructure:"raw_url" json:"raw_url" yaml:"raw_url"`
}

// TracingConfig controls OpenTelemetry export
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" json:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" json:"ratio" yaml:"ratio"`
}

// Config is the full configuration of one findskill invocation
type Config struct {
	LocalPaths []string      `mapstructure:"local_paths" json:"local_paths" yaml:"local_paths"`
	Ignore     []string      `mapstructure:"ignore" json:"ignore" yaml:"ignore"`
	Limit      int           `mapstructure:"limit" json:"limit" yaml:"limit"`
	GitHub     GitHubConfig  `mapstructure:"github" json:"github" yaml:"github"`
	Tracing    TracingConfig `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		LocalPaths: []string{"~/skills/", "./skills/"},
		Ignore:     []string{},
		Limit:      skills.DefaultLimit,
		GitHub: GitHubConfig{
			Enabled:       true,
			Topic:         skills.DefaultTopic,
			Repos:         []string{},
			Timeout:       github.DefaultTimeout,
			RetryAttempts: 2,
			APIURL:        github.DefaultAPIURL,
			RawURL:        github.DefaultRawURL,
		},
		Tracing: TracingConfig{
			Enabled: false,
			Sampler: "always",
			Ratio:   1,
		},
	}
}

// SetDefaults registers every key with v so that environment overrides are
// picked up by AllSettings.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("local_paths", d.LocalPaths)
	v.SetDefault("ignore", d.Ignore)
	v.SetDefault("limit", d.Limit)
	v.SetDefault("github.enabled", d.GitHub.Enabled)
	v.SetDefault("github.topic", d.GitHub.Topic)
	v.SetDefault("github.repos", d.GitHub.Repos)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("github.retry_attempts", d.GitHub.RetryAttempts)
	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("github.raw_url", d.GitHub.RawURL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.sampler", d.Tracing.Sampler)
	v.SetDefault("tracing.ratio", d.Tracing.Ratio)
}

// Load decodes the settings held by v and validates them. v is expected to
// carry the defaults registered by SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	cfg.LocalPaths = compact(cfg.LocalPaths)
	cfg.Ignore = compact(cfg.Ignore)
	cfg.GitHub.Repos = compact(cfg.GitHub.Repos)
	cfg.GitHub.Topic = strings.TrimSpace(cfg.GitHub.Topic)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Limit < 0 {
		result = multierror.Append(result, errors.Errorf("limit must not be negative, got %d", c.Limit))
	}
	for _, repo := range c.GitHub.Repos {
		if _, _, err := github.SplitRepo(repo); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "github.repos"))
		}
	}
	if c.GitHub.Enabled && c.GitHub.Topic == "" {
		result = multierror.Append(result, errors.New("github.topic must not be empty when remote search is enabled"))
	}
	if c.GitHub.Timeout <= 0 {
		result = multierror.Append(result, errors.Errorf("github.timeout must be positive, got %s", c.GitHub.Timeout))
	}

	if result != nil {
		result.ErrorFormat = formatErrors
	}
	return result.ErrorOrNil()
}

func formatErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

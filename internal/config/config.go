package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Upstream     UpstreamConfig     `yaml:"upstream"`
	Cache        CacheConfig        `yaml:"cache"`
	Images       ImagesConfig       `yaml:"images"`
	Competitions CompetitionsConfig `yaml:"competitions"`
	GoldenBoot   GoldenBootConfig   `yaml:"golden_boot"`
	Matches      MatchesConfig      `yaml:"matches"`
	Log          LogConfig          `yaml:"log"`
}

// UpstreamConfig describes the football-data service
type UpstreamConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	APIKey  string `yaml:"api_key" env:"FOOTBALL_DATA_API_KEY"`
	Timeout string `yaml:"timeout" validate:"required"`
	Proxy   string `yaml:"proxy" validate:"omitempty,url"`
}

// CacheConfig contains document cache configuration
type CacheConfig struct {
	TTL    string `yaml:"ttl" validate:"required"`
	Folder string `yaml:"folder" validate:"required"`
}

// ImagesConfig contains crest cache configuration
type ImagesConfig struct {
	TTL     string `yaml:"ttl" validate:"required"`
	Folder  string `yaml:"folder" validate:"required"`
	Timeout string `yaml:"timeout" validate:"required"`
	// The API key is only sent to hosts of this domain
	CredentialDomain string `yaml:"credential_domain" validate:"required,hostname"`
}

// CompetitionsConfig lists competitions hidden from the competition list
type CompetitionsConfig struct {
	Excluded []string `yaml:"excluded"`
}

// GoldenBootConfig configures the cross-league top scorers ranking
type GoldenBootConfig struct {
	ScorersPerCompetition int           `yaml:"scorers_per_competition" validate:"gte=1"`
	Top                   int           `yaml:"top" validate:"gte=1"`
	Coefficients          []Coefficient `yaml:"coefficients" validate:"required,min=1,dive"`
}

// Coefficient weights goals scored in a competition
type Coefficient struct {
	Code  string  `yaml:"code" validate:"required"`
	Value float64 `yaml:"value" validate:"gt=0"`
}

// MatchesConfig configures the matches-around-today view
type MatchesConfig struct {
	WindowDays int `yaml:"window_days" validate:"gte=0"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL: "https://api.football-data.org/v4",
			Timeout: "10s",
		},
		Cache: CacheConfig{
			TTL:    "1h",
			Folder: "cache",
		},
		Images: ImagesConfig{
			TTL:              "168h",
			Folder:           "image_cache",
			Timeout:          "10s",
			CredentialDomain: "football-data.org",
		},
		Competitions: CompetitionsConfig{
			Excluded: []string{"WC", "CL", "EC"},
		},
		GoldenBoot: GoldenBootConfig{
			ScorersPerCompetition: 20,
			Top:                   20,
			Coefficients: []Coefficient{
				{Code: "PL", Value: 2.0},
				{Code: "PD", Value: 2.0},
				{Code: "BL1", Value: 2.0},
				{Code: "SA", Value: 2.0},
				{Code: "FL1", Value: 2.0},
				{Code: "DED", Value: 1.5},
				{Code: "PPL", Value: 1.5},
				{Code: "ELC", Value: 1.0},
			},
		},
		Matches: MatchesConfig{
			WindowDays: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
// A missing file is not an error. The API key environment variable overrides the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parsing config YAML: %w", err)
			}
		}
	}

	if err := env.Parse(&config.Upstream); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return config, nil
}

// GetTimeout parses and returns the upstream request timeout
func (c *Config) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Upstream.Timeout)
}

// GetCacheTTL parses and returns the document cache TTL
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetImageTTL parses and returns the crest cache TTL
func (c *Config) GetImageTTL() (time.Duration, error) {
	return time.ParseDuration(c.Images.TTL)
}

// GetImageTimeout parses and returns the crest download timeout
func (c *Config) GetImageTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Images.Timeout)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := []struct {
		name  string
		parse func() (time.Duration, error)
	}{
		{"upstream timeout", c.GetTimeout},
		{"cache TTL", c.GetCacheTTL},
		{"image TTL", c.GetImageTTL},
		{"image timeout", c.GetImageTimeout},
	}
	for _, d := range durations {
		v, err := d.parse()
		if err != nil {
			return fmt.Errorf("invalid %s format: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got: %s", d.name, v)
		}
	}

	seen := make(map[string]bool, len(c.GoldenBoot.Coefficients))
	for _, coef := range c.GoldenBoot.Coefficients {
		if seen[coef.Code] {
			return fmt.Errorf("duplicate golden boot coefficient for %s", coef.Code)
		}
		seen[coef.Code] = true
	}

	return nil
}

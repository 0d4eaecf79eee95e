package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "")

	// Create a temporary config file
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
upstream:
  api_key: "file-key"
  timeout: "5s"
cache:
  ttl: "30m"
  folder: "./test_cache"
competitions:
  excluded: ["WC"]
golden_boot:
  top: 5
  coefficients:
    - code: PL
      value: 2
    - code: DED
      value: 1.5
`

	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	config, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "file-key", config.Upstream.APIKey)
	assert.Equal(t, "5s", config.Upstream.Timeout)
	assert.Equal(t, "30m", config.Cache.TTL)
	assert.Equal(t, "./test_cache", config.Cache.Folder)
	assert.Equal(t, []string{"WC"}, config.Competitions.Excluded)
	assert.Equal(t, 5, config.GoldenBoot.Top)
	assert.Equal(t, []Coefficient{{Code: "PL", Value: 2}, {Code: "DED", Value: 1.5}}, config.GoldenBoot.Coefficients)

	// Untouched sections keep their defaults
	assert.Equal(t, "https://api.football-data.org/v4", config.Upstream.BaseURL)
	assert.Equal(t, "168h", config.Images.TTL)
	assert.Equal(t, 20, config.GoldenBoot.ScorersPerCompetition)
	assert.Equal(t, 3, config.Matches.WindowDays)

	require.NoError(t, config.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "")

	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "")

	config, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	require.NoError(t, config.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("upstream: [unterminated"), 0644))

	_, err := Load(configFile)
	assert.Error(t, err)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "env-key")

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("upstream:\n  api_key: file-key\n"), 0644))

	config, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "env-key", config.Upstream.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid base url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "not a url" },
			wantErr: true,
		},
		{
			name:    "invalid TTL",
			mutate:  func(c *Config) { c.Cache.TTL = "invalid" },
			wantErr: true,
		},
		{
			name:    "negative image TTL",
			mutate:  func(c *Config) { c.Images.TTL = "-1h" },
			wantErr: true,
		},
		{
			name:    "missing cache folder",
			mutate:  func(c *Config) { c.Cache.Folder = "" },
			wantErr: true,
		},
		{
			name:    "invalid proxy",
			mutate:  func(c *Config) { c.Upstream.Proxy = "::" },
			wantErr: true,
		},
		{
			name:    "zero coefficient",
			mutate:  func(c *Config) { c.GoldenBoot.Coefficients[0].Value = 0 },
			wantErr: true,
		},
		{
			name: "duplicate coefficient",
			mutate: func(c *Config) {
				c.GoldenBoot.Coefficients = append(c.GoldenBoot.Coefficients, Coefficient{Code: "PL", Value: 1})
			},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetCacheTTL(t *testing.T) {
	config := Config{
		Cache: CacheConfig{TTL: "1h30m"},
	}

	ttl, err := config.GetCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute, ttl)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes validation
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Twitter.BearerToken = "token"
	cfg.Crawl.Seeds = []string{"alice"}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.twitter.com/1.1", cfg.Twitter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, 5, cfg.Crawl.TweetsMin)
	assert.Equal(t, 10000, cfg.Crawl.FollowersMax)
	assert.Equal(t, 5000, cfg.Crawl.FriendsMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.CooldownWindow)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "./data", cfg.Output.BaseDirectory)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWGRAPH_BEARER_TOKEN", "env-token")
	t.Setenv("TWGRAPH_SEEDS", "alice, bob ,carol")
	t.Setenv("TWGRAPH_TWEETS_MIN", "10")
	t.Setenv("TWGRAPH_FOLLOWERS_MAX", "500")
	t.Setenv("TWGRAPH_COOLDOWN_WINDOW", "5m")
	t.Setenv("TWGRAPH_OUTPUT_DIR", "/tmp/crawl")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.Twitter.BearerToken)
	assert.Equal(t, []string{"alice", "bob", "carol"}, cfg.Crawl.Seeds)
	assert.Equal(t, 10, cfg.Crawl.TweetsMin)
	assert.Equal(t, 500, cfg.Crawl.FollowersMax)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.CooldownWindow)
	assert.Equal(t, "/tmp/crawl", cfg.Output.BaseDirectory)
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("TWGRAPH_FOLLOWERS_MAX", "not-a-number")
	t.Setenv("TWGRAPH_COOLDOWN_WINDOW", "-5m")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 10000, cfg.Crawl.FollowersMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.CooldownWindow)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
twitter:
  bearer_token: file-token
crawl:
  seeds:
    - alice
  tweets_min: 7
rate_limit:
  requests_per_minute: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-token", cfg.Twitter.BearerToken)
	assert.Equal(t, []string{"alice"}, cfg.Crawl.Seeds)
	assert.Equal(t, 7, cfg.Crawl.TweetsMin)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	// untouched keys keep their defaults
	assert.Equal(t, 10000, cfg.Crawl.FollowersMax)
}

func TestMergeFlags(t *testing.T) {
	cfg := validConfig()
	cfg.MergeFlags(map[string]interface{}{
		"seeds":        "dave,erin",
		"output":       "/tmp/out",
		"bearer-token": "flag-token",
		"rate-limit":   10,
		"log-level":    "debug",
	})

	assert.Equal(t, []string{"dave", "erin"}, cfg.Crawl.Seeds)
	assert.Equal(t, "/tmp/out", cfg.Output.BaseDirectory)
	assert.Equal(t, "flag-token", cfg.Twitter.BearerToken)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Twitter.BearerToken = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bearer token")
	})

	t.Run("key pair substitutes for bearer token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Twitter.BearerToken = ""
		cfg.Twitter.APIKey = "key"
		cfg.Twitter.APISecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing seeds", func(t *testing.T) {
		cfg := validConfig()
		cfg.Crawl.Seeds = nil
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed")
	})

	t.Run("multiple problems reported together", func(t *testing.T) {
		cfg := validConfig()
		cfg.Crawl.FollowersMax = 0
		cfg.Logging.Level = "shout"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "followers_max")
		assert.Contains(t, err.Error(), "log level")
	})
}

func TestSaveAndReload(t *testing.T) {
	cfg := validConfig()
	cfg.Crawl.TweetsMin = 9

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, 9, reloaded.Crawl.TweetsMin)
	assert.Equal(t, cfg.Twitter.BearerToken, reloaded.Twitter.BearerToken)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the crawler
type Config struct {
	// Twitter API credentials
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Crawl policy: seeds and disposition thresholds
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Metrics exposure
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds API credentials and endpoint settings
type TwitterConfig struct {
	APIKey       string        `yaml:"api_key" json:"api_key"`
	APISecret    string        `yaml:"api_secret" json:"api_secret"`
	AccessToken  string        `yaml:"access_token" json:"access_token"`
	AccessSecret string        `yaml:"access_secret" json:"access_secret"`
	BearerToken  string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
}

// CrawlConfig holds the seed list and the frontier classification thresholds
type CrawlConfig struct {
	// Seeds are the screen names the crawl starts from
	Seeds []string `yaml:"seeds" json:"seeds"`
	// TweetsMin is the floor below which an account counts as inactive
	TweetsMin int `yaml:"tweets_min" json:"tweets_min"`
	// FollowersMax and FriendsMax are the ceilings above which an account
	// counts as too big to expand
	FollowersMax int `yaml:"followers_max" json:"followers_max"`
	FriendsMax   int `yaml:"friends_max" json:"friends_max"`
}

// RateLimitConfig holds cooldown and pacing configuration
type RateLimitConfig struct {
	// CooldownWindow is how long issuance is suspended after a rate-limit
	// signal. The API's default window is 15 minutes.
	CooldownWindow time.Duration `yaml:"cooldown_window" json:"cooldown_window"`
	// RequestsPerMinute paces calls outside of cooldowns
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// MetricsConfig holds the optional prometheus listener address
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/1.1",
			Timeout: 30 * time.Second,
		},
		Crawl: CrawlConfig{
			TweetsMin:    5,
			FollowersMax: 10000,
			FriendsMax:   5000,
		},
		RateLimit: RateLimitConfig{
			CooldownWindow:    15 * time.Minute,
			RequestsPerMinute: 60,
		},
		Output: OutputConfig{
			BaseDirectory: "./data",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("TWGRAPH_API_KEY"); v != "" {
		c.Twitter.APIKey = v
	}
	if v := os.Getenv("TWGRAPH_API_SECRET"); v != "" {
		c.Twitter.APISecret = v
	}
	if v := os.Getenv("TWGRAPH_ACCESS_TOKEN"); v != "" {
		c.Twitter.AccessToken = v
	}
	if v := os.Getenv("TWGRAPH_ACCESS_SECRET"); v != "" {
		c.Twitter.AccessSecret = v
	}
	if v := os.Getenv("TWGRAPH_BEARER_TOKEN"); v != "" {
		c.Twitter.BearerToken = v
	}
	if v := os.Getenv("TWGRAPH_SEEDS"); v != "" {
		c.Crawl.Seeds = splitList(v)
	}
	if v := os.Getenv("TWGRAPH_TWEETS_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Crawl.TweetsMin = n
		}
	}
	if v := os.Getenv("TWGRAPH_FOLLOWERS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Crawl.FollowersMax = n
		}
	}
	if v := os.Getenv("TWGRAPH_FRIENDS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Crawl.FriendsMax = n
		}
	}
	if v := os.Getenv("TWGRAPH_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("TWGRAPH_COOLDOWN_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RateLimit.CooldownWindow = d
		}
	}
	if v := os.Getenv("TWGRAPH_OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv("TWGRAPH_METRICS_ADDR"); v != "" {
		c.Metrics.ListenAddr = v
	}
	if v := os.Getenv("TWGRAPH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".twgraph.yaml",
		".twgraph.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "twgraph", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "twgraph", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".twgraph.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BearerToken == "" && (c.Twitter.APIKey == "" || c.Twitter.APISecret == "") {
		errs = append(errs, errors.New("a bearer token or an API key/secret pair is required"))
	}
	if len(c.Crawl.Seeds) == 0 {
		errs = append(errs, errors.New("at least one seed account is required"))
	}
	if c.Crawl.TweetsMin < 0 {
		errs = append(errs, errors.New("tweets_min cannot be negative"))
	}
	if c.Crawl.FollowersMax <= 0 {
		errs = append(errs, errors.New("followers_max must be positive"))
	}
	if c.Crawl.FriendsMax <= 0 {
		errs = append(errs, errors.New("friends_max must be positive"))
	}
	if c.RateLimit.CooldownWindow <= 0 {
		errs = append(errs, errors.New("cooldown window must be positive"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeFlags merges command line flag values into the configuration
func (c *Config) MergeFlags(flags map[string]interface{}) {
	if seeds, ok := flags["seeds"].(string); ok && seeds != "" {
		c.Crawl.Seeds = splitList(seeds)
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if bearer, ok := flags["bearer-token"].(string); ok && bearer != "" {
		c.Twitter.BearerToken = bearer
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.ListenAddr = addr
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twgraph.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Ideas      IdeasConfig      `yaml:"ideas"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Discover   DiscoverConfig   `yaml:"discover"`
	Intent     IntentConfig     `yaml:"intent"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Server     ServerConfig     `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig holds the opportunity weight map. The raw map form is
// deliberate: the scorer rejects missing or unknown keys instead of silently
// zero-filling them.
type ScoringConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// ClusteringConfig configures the text clusterer.
type ClusteringConfig struct {
	MinClusterSize int   `yaml:"min_cluster_size"`
	MaxClusters    int   `yaml:"max_clusters"`
	Seed           int64 `yaml:"seed"`
}

// IdeasConfig configures content-idea synthesis.
type IdeasConfig struct {
	MinGroupSize int `yaml:"min_group_size"`
}

// ScheduleConfig configures the daemon intervals.
type ScheduleConfig struct {
	DiscoverInterval string `yaml:"discover_interval"`
	AnalyzeInterval  string `yaml:"analyze_interval"`
}

// ParseDiscoverInterval returns the discovery interval as time.Duration.
func (s ScheduleConfig) ParseDiscoverInterval() time.Duration {
	d, err := time.ParseDuration(s.DiscoverInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ParseAnalyzeInterval returns the re-analysis interval as time.Duration.
func (s ScheduleConfig) ParseAnalyzeInterval() time.Duration {
	d, err := time.ParseDuration(s.AnalyzeInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// DiscoverConfig configures candidate-phrase discovery from feeds.
type DiscoverConfig struct {
	Enabled        bool       `yaml:"enabled"`
	Feeds          []FeedItem `yaml:"feeds"`
	IncludePhrases []string   `yaml:"include_phrases"`
	ExcludePhrases []string   `yaml:"exclude_phrases"`
	MaxPhraseWords int        `yaml:"max_phrase_words"`
}

// FeedItem is a single RSS/Atom feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// IntentConfig configures the optional LLM intent tagger.
type IntentConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"` // "openai" or "anthropic"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // custom endpoint (optional)
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	MinQuickWins int           `yaml:"min_quick_wins"`
	Slack        SlackConfig   `yaml:"slack"`
	Discord      DiscordConfig `yaml:"discord"`
	Webhook      WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./kwradar.db"},
		Scoring: ScoringConfig{
			Weights: map[string]float64{
				"volume":     0.4,
				"difficulty": 0.3,
				"cpc":        0.2,
				"intent":     0.1,
			},
		},
		Clustering: ClusteringConfig{
			MinClusterSize: 3,
			MaxClusters:    10,
			Seed:           42,
		},
		Ideas: IdeasConfig{MinGroupSize: 3},
		Schedule: ScheduleConfig{
			DiscoverInterval: "6h",
			AnalyzeInterval:  "24h",
		},
		Discover: DiscoverConfig{
			Enabled:        false,
			MaxPhraseWords: 4,
		},
		Intent: IntentConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Alerts: AlertsConfig{MinQuickWins: 1},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KWRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Intent.APIKey = v
		cfg.Intent.Enabled = true
		cfg.Intent.Provider = "openai"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Intent.APIKey = v
		cfg.Intent.Enabled = true
		cfg.Intent.Provider = "anthropic"
	}
}

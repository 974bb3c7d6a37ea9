package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "./kwradar.db", cfg.Database.Path)
	require.Equal(t, 0.4, cfg.Scoring.Weights["volume"])
	require.Equal(t, 0.3, cfg.Scoring.Weights["difficulty"])
	require.Equal(t, 0.2, cfg.Scoring.Weights["cpc"])
	require.Equal(t, 0.1, cfg.Scoring.Weights["intent"])
	require.Equal(t, 3, cfg.Clustering.MinClusterSize)
	require.Equal(t, 10, cfg.Clustering.MaxClusters)
	require.Equal(t, int64(42), cfg.Clustering.Seed)
	require.Equal(t, 3, cfg.Ideas.MinGroupSize)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 1, cfg.Alerts.MinQuickWins)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  path: /tmp/test.db
scoring:
  weights:
    volume: 0.5
    difficulty: 0.2
    cpc: 0.2
    intent: 0.1
clustering:
  min_cluster_size: 2
  max_clusters: 5
schedule:
  discover_interval: 2h
  analyze_interval: 12h
discover:
  enabled: true
  feeds:
    - name: seo blog
      url: https://example.com/feed.xml
  max_phrase_words: 3
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/test.db", cfg.Database.Path)
	require.Equal(t, 0.5, cfg.Scoring.Weights["volume"])
	require.Equal(t, 2, cfg.Clustering.MinClusterSize)
	require.Equal(t, 5, cfg.Clustering.MaxClusters)
	require.True(t, cfg.Discover.Enabled)
	require.Len(t, cfg.Discover.Feeds, 1)
	require.Equal(t, "seo blog", cfg.Discover.Feeds[0].Name)
	require.Equal(t, 3, cfg.Discover.MaxPhraseWords)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Schedule.ParseDiscoverInterval())
	require.Equal(t, 12*time.Hour, cfg.Schedule.ParseAnalyzeInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Clustering, cfg.Clustering)
}

func TestScheduleIntervalFallbacks(t *testing.T) {
	s := ScheduleConfig{DiscoverInterval: "garbage", AnalyzeInterval: ""}
	require.Equal(t, 6*time.Hour, s.ParseDiscoverInterval())
	require.Equal(t, 24*time.Hour, s.ParseAnalyzeInterval())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KWRADAR_DB_PATH", "/env/path.db")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/x")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/env/path.db", cfg.Database.Path)
	require.True(t, cfg.Alerts.Slack.Enabled)
	require.Equal(t, "https://hooks.slack.com/services/x", cfg.Alerts.Slack.WebhookURL)
}

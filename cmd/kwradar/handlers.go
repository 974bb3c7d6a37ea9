package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"kwradar/internal/config"
	"kwradar/internal/ingest"
	"kwradar/internal/scheduler"
	"kwradar/internal/store"
	"kwradar/pkg/alert"
	"kwradar/pkg/cluster"
	"kwradar/pkg/discover"
	"kwradar/pkg/opportunity"
	"kwradar/pkg/pipeline"
	"kwradar/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	weights, err := opportunity.WeightsFromMap(cfg.Scoring.Weights)
	if err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}

	opts := cluster.Options{
		MinClusterSize: cfg.Clustering.MinClusterSize,
		MaxClusters:    cfg.Clustering.MaxClusters,
		Seed:           cfg.Clustering.Seed,
	}

	pipe, err := pipeline.New(weights, opts, cfg.Ideas.MinGroupSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	return pipe, nil
}

func buildDiscoverer(cfg *config.Config) *discover.Discoverer {
	if !cfg.Discover.Enabled || len(cfg.Discover.Feeds) == 0 {
		return nil
	}
	feeds := make([]discover.Feed, len(cfg.Discover.Feeds))
	for i, f := range cfg.Discover.Feeds {
		feeds[i] = discover.Feed{Name: f.Name, URL: f.URL}
	}
	filter := discover.NewFilter(cfg.Discover.IncludePhrases, cfg.Discover.ExcludePhrases)
	return discover.New(feeds, filter, cfg.Discover.MaxPhraseWords)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runAnalyze(file string, jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	records, err := ingest.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read keywords: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no keyword rows in %s", file)
	}
	fmt.Fprintf(os.Stderr, "loaded %d keywords from %s\n", len(records), file)

	ctx := context.Background()

	// Optional LLM intent tagging for untagged rows.
	if cfg.Intent.Enabled && cfg.Intent.APIKey != "" {
		tagger := opportunity.NewIntentTagger(cfg.Intent.Provider, cfg.Intent.Model, cfg.Intent.APIKey, cfg.Intent.BaseURL)
		tagged, err := tagger.TagRecords(ctx, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "intent tagging error: %v\n", err)
		} else {
			records = tagged
		}
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	result := pipe.Run(records)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	run := &store.Run{
		Source:    file,
		Weights:   pipe.Weights().Map(),
		QuickWins: result.Summary.QuickWins,
		Insights:  result.Insights,
		Keywords:  result.Keywords,
		Clusters:  result.Clusters,
		Ideas:     result.Ideas,
	}
	if err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Fprintf(os.Stderr, "saved run %d: %d keywords, %d clusters, %d ideas\n",
		run.ID, len(run.Keywords), len(run.Clusters), len(run.Ideas))

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if limit <= 0 || limit > len(result.Keywords) {
		limit = len(result.Keywords)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tSCORE\tCATEGORY\tVOLUME\tDIFFICULTY\tCPC\tINTENT")
	for _, kw := range result.Keywords[:limit] {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%.0f\t%.2f\t%s\n",
			kw.Keyword, kw.Opportunity, kw.Category, kw.Volume, kw.Difficulty, kw.CPC, kw.PrimaryIntent)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(result.Insights) > 0 {
		fmt.Println()
		for _, line := range result.Insights {
			fmt.Println("• " + line)
		}
	}
	return nil
}

func runIdeas(runID int64, minScore float64, jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if runID == 0 {
		latest, err := db.LatestRun(ctx)
		if err != nil {
			return fmt.Errorf("latest run: %w", err)
		}
		runID = latest.ID
	}

	ideas, err := db.ListIdeas(ctx, store.IdeaListOpts{RunID: runID, MinScore: minScore, Limit: limit})
	if err != nil {
		return fmt.Errorf("list ideas: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ideas)
	}

	if len(ideas) == 0 {
		fmt.Println("no ideas found (try analyzing a keyword file first: kwradar analyze --file keywords.csv)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tTYPE\tTITLE\tPRIMARY KEYWORDS")
	for _, idea := range ideas {
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%s\n",
			idea.CombinedScore, idea.ContentType, idea.Title,
			strings.Join(idea.PrimaryKeywords, ", "))
	}
	return w.Flush()
}

func runDiscover() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Discover.Feeds) == 0 {
		return fmt.Errorf("no discovery feeds configured")
	}

	feeds := make([]discover.Feed, len(cfg.Discover.Feeds))
	for i, f := range cfg.Discover.Feeds {
		feeds[i] = discover.Feed{Name: f.Name, URL: f.URL}
	}
	filter := discover.NewFilter(cfg.Discover.IncludePhrases, cfg.Discover.ExcludePhrases)
	d := discover.New(feeds, filter, cfg.Discover.MaxPhraseWords)

	ctx := context.Background()
	suggestions, err := d.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	if len(suggestions) == 0 {
		fmt.Println("no candidate phrases found")
		return nil
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.UpsertSuggestions(ctx, suggestions); err != nil {
		return fmt.Errorf("store suggestions: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHRASE\tFEED\tSEEN")
	for _, sg := range suggestions {
		fmt.Fprintf(w, "%s\t%s\t%d\n", sg.Phrase, sg.Feed, sg.SeenCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nstored %d candidate phrases\n", len(suggestions))
	return nil
}

func runExport(runID int64, out string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if runID == 0 {
		latest, err := db.LatestRun(ctx)
		if err != nil {
			return fmt.Errorf("latest run: %w", err)
		}
		runID = latest.ID
	}

	ideas, err := db.ListIdeas(ctx, store.IdeaListOpts{RunID: runID})
	if err != nil {
		return fmt.Errorf("list ideas: %w", err)
	}
	if len(ideas) == 0 {
		return fmt.Errorf("run %d has no ideas to export", runID)
	}

	dst := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		dst = f
	}

	cw := csv.NewWriter(dst)
	header := []string{
		"title", "topic", "content_type", "combined_score", "seo_score", "traffic_score",
		"total_volume", "avg_difficulty", "avg_cpc", "primary_keywords", "secondary_keywords",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, idea := range ideas {
		row := []string{
			idea.Title,
			idea.Topic,
			string(idea.ContentType),
			strconv.FormatFloat(idea.CombinedScore, 'f', 2, 64),
			strconv.FormatFloat(idea.SEOScore, 'f', 2, 64),
			strconv.FormatFloat(idea.TrafficScore, 'f', 2, 64),
			strconv.Itoa(idea.TotalVolume),
			strconv.FormatFloat(idea.AvgDifficulty, 'f', 1, 64),
			strconv.FormatFloat(idea.AvgCPC, 'f', 2, 64),
			strings.Join(idea.PrimaryKeywords, "; "),
			strings.Join(idea.SecondaryKeywords, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if out != "" {
		fmt.Fprintf(os.Stderr, "exported %d ideas to %s\n", len(ideas), out)
	}
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	srv := server.New(db, pipe, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	discoverer := buildDiscoverer(cfg)
	alertMgr := buildAlertManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, discoverer, pipe, alertMgr,
		cfg.Schedule.ParseDiscoverInterval(),
		cfg.Schedule.ParseAnalyzeInterval(),
		cfg.Alerts.MinQuickWins,
	)

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	// Start HTTP server.
	srv := server.New(db, pipe, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}

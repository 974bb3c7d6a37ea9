package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"kwradar/pkg/keyword"
)

// ErrNoRuns is returned when the store holds no analysis runs yet.
var ErrNoRuns = errors.New("no analysis runs stored")

// Run is one persisted analysis run with its derived entities.
type Run struct {
	ID           int64     `db:"id" json:"id"`
	Source       string    `db:"source" json:"source"`
	WeightsJSON  string    `db:"weights" json:"-"`
	KeywordCount int       `db:"keyword_count" json:"keyword_count"`
	ClusterCount int       `db:"cluster_count" json:"cluster_count"`
	IdeaCount    int       `db:"idea_count" json:"idea_count"`
	QuickWins    int       `db:"quick_wins" json:"quick_wins"`
	InsightsJSON string    `db:"insights" json:"-"`
	Alerted      bool      `db:"alerted" json:"alerted"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Weights  map[string]float64 `db:"-" json:"weights"`
	Insights []string           `db:"-" json:"insights"`
	Keywords []keyword.Scored   `db:"-" json:"keywords,omitempty"`
	Clusters []keyword.Cluster  `db:"-" json:"clusters,omitempty"`
	Ideas    []keyword.Idea     `db:"-" json:"ideas,omitempty"`
}

// KeywordListOpts controls scored keyword listing.
type KeywordListOpts struct {
	RunID          int64
	Category       string
	MinOpportunity float64
	Limit          int
}

// IdeaListOpts controls idea listing.
type IdeaListOpts struct {
	RunID    int64
	MinScore float64
	Limit    int
}

// Store is the persistence interface.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id int64) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	MarkAlerted(ctx context.Context, runID int64) error

	ListKeywords(ctx context.Context, opts KeywordListOpts) ([]keyword.Scored, error)
	ListIdeas(ctx context.Context, opts IdeaListOpts) ([]keyword.Idea, error)

	UpsertSuggestions(ctx context.Context, suggestions []keyword.Suggestion) error
	ListSuggestions(ctx context.Context, limit int) ([]keyword.Suggestion, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and all derived entities in one transaction and
// fills in run.ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	weightsJSON, _ := json.Marshal(run.Weights)
	insightsJSON, _ := json.Marshal(run.Insights)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (source, weights, keyword_count, cluster_count, idea_count, quick_wins, insights, alerted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Source, string(weightsJSON), len(run.Keywords), len(run.Clusters), len(run.Ideas),
		run.QuickWins, string(insightsJSON), run.Alerted, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for i, kw := range run.Keywords {
		intentsJSON, _ := json.Marshal(kw.Intents)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scored_keywords (run_id, position, keyword, volume, difficulty, cpc, intents,
				volume_score, difficulty_score, cpc_score, intent_score, opportunity, category, primary_intent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, kw.Keyword, kw.Volume, kw.Difficulty, kw.CPC, string(intentsJSON),
			kw.VolumeScore, kw.DifficultyScore, kw.CPCScore, kw.IntentScore,
			kw.Opportunity, kw.Category, kw.PrimaryIntent)
		if err != nil {
			return fmt.Errorf("insert keyword %q: %w", kw.Keyword, err)
		}
	}

	for i, cl := range run.Clusters {
		keywordsJSON, _ := json.Marshal(cl.Keywords)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clusters (run_id, position, label, score, keywords)
			VALUES (?, ?, ?, ?, ?)
		`, runID, i, cl.Label, cl.Score, string(keywordsJSON))
		if err != nil {
			return fmt.Errorf("insert cluster %q: %w", cl.Label, err)
		}
	}

	for i, idea := range run.Ideas {
		primaryJSON, _ := json.Marshal(idea.PrimaryKeywords)
		secondaryJSON, _ := json.Marshal(idea.SecondaryKeywords)
		tipsJSON, _ := json.Marshal(idea.Tips)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ideas (run_id, position, title, topic, content_type, primary_keywords, secondary_keywords,
				seo_score, traffic_score, combined_score, total_volume, avg_difficulty, avg_cpc, tips, outline)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, idea.Title, idea.Topic, idea.ContentType, string(primaryJSON), string(secondaryJSON),
			idea.SEOScore, idea.TrafficScore, idea.CombinedScore, idea.TotalVolume,
			idea.AvgDifficulty, idea.AvgCPC, string(tipsJSON), idea.Outline)
		if err != nil {
			return fmt.Errorf("insert idea %q: %w", idea.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	run.ID = runID
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `
		SELECT id, source, weights, keyword_count, cluster_count, idea_count, quick_wins, insights, alerted, created_at
		FROM runs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %d: %w", id, ErrNoRuns)
		}
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	if err := s.loadRunChildren(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `
		SELECT id, source, weights, keyword_count, cluster_count, idea_count, quick_wins, insights, alerted, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("latest run: %w", err)
	}
	if err := s.loadRunChildren(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) loadRunChildren(ctx context.Context, run *Run) error {
	json.Unmarshal([]byte(run.WeightsJSON), &run.Weights)
	json.Unmarshal([]byte(run.InsightsJSON), &run.Insights)

	keywords, err := s.ListKeywords(ctx, KeywordListOpts{RunID: run.ID, Limit: run.KeywordCount})
	if err != nil {
		return err
	}
	run.Keywords = keywords

	clusters, err := s.listClusters(ctx, run.ID)
	if err != nil {
		return err
	}
	run.Clusters = clusters

	ideas, err := s.ListIdeas(ctx, IdeaListOpts{RunID: run.ID, Limit: run.IdeaCount})
	if err != nil {
		return err
	}
	run.Ideas = ideas
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, source, weights, keyword_count, cluster_count, idea_count, quick_wins, insights, alerted, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		json.Unmarshal([]byte(runs[i].WeightsJSON), &runs[i].Weights)
		json.Unmarshal([]byte(runs[i].InsightsJSON), &runs[i].Insights)
	}
	return runs, nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, runID int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE runs SET alerted = 1 WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("mark alerted %d: %w", runID, err)
	}
	return nil
}

func (s *SQLiteStore) ListKeywords(ctx context.Context, opts KeywordListOpts) ([]keyword.Scored, error) {
	query := `SELECT keyword, volume, difficulty, cpc, intents, volume_score, difficulty_score,
		cpc_score, intent_score, opportunity, category, primary_intent
		FROM scored_keywords WHERE 1=1`
	var args []any

	if opts.RunID > 0 {
		query += " AND run_id = ?"
		args = append(args, opts.RunID)
	}
	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}
	if opts.MinOpportunity > 0 {
		query += " AND opportunity >= ?"
		args = append(args, opts.MinOpportunity)
	}

	query += " ORDER BY run_id, position"

	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var keywords []keyword.Scored
	if err := s.db.SelectContext(ctx, &keywords, query, args...); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	for i := range keywords {
		json.Unmarshal([]byte(keywords[i].IntentsJSON), &keywords[i].Intents)
		keywords[i].IntentsJSON = ""
	}
	return keywords, nil
}

func (s *SQLiteStore) listClusters(ctx context.Context, runID int64) ([]keyword.Cluster, error) {
	var clusters []keyword.Cluster
	err := s.db.SelectContext(ctx, &clusters,
		"SELECT label, score, keywords FROM clusters WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	for i := range clusters {
		json.Unmarshal([]byte(clusters[i].KeywordsJSON), &clusters[i].Keywords)
		clusters[i].KeywordsJSON = ""
	}
	return clusters, nil
}

func (s *SQLiteStore) ListIdeas(ctx context.Context, opts IdeaListOpts) ([]keyword.Idea, error) {
	query := `SELECT title, topic, content_type, primary_keywords, secondary_keywords, seo_score,
		traffic_score, combined_score, total_volume, avg_difficulty, avg_cpc, tips, outline
		FROM ideas WHERE 1=1`
	var args []any

	if opts.RunID > 0 {
		query += " AND run_id = ?"
		args = append(args, opts.RunID)
	}
	if opts.MinScore > 0 {
		query += " AND combined_score >= ?"
		args = append(args, opts.MinScore)
	}

	query += " ORDER BY run_id, position"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var ideas []keyword.Idea
	if err := s.db.SelectContext(ctx, &ideas, query, args...); err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	for i := range ideas {
		json.Unmarshal([]byte(ideas[i].PrimaryJSON), &ideas[i].PrimaryKeywords)
		json.Unmarshal([]byte(ideas[i].SecondaryJSON), &ideas[i].SecondaryKeywords)
		json.Unmarshal([]byte(ideas[i].TipsJSON), &ideas[i].Tips)
		ideas[i].PrimaryJSON, ideas[i].SecondaryJSON, ideas[i].TipsJSON = "", "", ""
	}
	return ideas, nil
}

func (s *SQLiteStore) UpsertSuggestions(ctx context.Context, suggestions []keyword.Suggestion) error {
	now := time.Now().UTC()
	for _, sg := range suggestions {
		first := sg.FirstSeen
		if first.IsZero() {
			first = now
		}
		last := sg.LastSeen
		if last.IsZero() {
			last = now
		}
		count := sg.SeenCount
		if count <= 0 {
			count = 1
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO suggestions (phrase, feed, seen_count, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(phrase, feed) DO UPDATE SET
				seen_count = seen_count + excluded.seen_count,
				last_seen = excluded.last_seen
		`, sg.Phrase, sg.Feed, count, first, last)
		if err != nil {
			return fmt.Errorf("upsert suggestion %q: %w", sg.Phrase, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListSuggestions(ctx context.Context, limit int) ([]keyword.Suggestion, error) {
	if limit <= 0 {
		limit = 100
	}
	var suggestions []keyword.Suggestion
	err := s.db.SelectContext(ctx, &suggestions, `
		SELECT phrase, feed, seen_count, first_seen, last_seen
		FROM suggestions ORDER BY seen_count DESC, last_seen DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

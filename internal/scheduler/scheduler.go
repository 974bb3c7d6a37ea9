package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"kwradar/internal/store"
	"kwradar/pkg/alert"
	"kwradar/pkg/discover"
	"kwradar/pkg/keyword"
	"kwradar/pkg/opportunity"
	"kwradar/pkg/pipeline"
)

// Scheduler runs periodic phrase discovery and keyword re-analysis.
type Scheduler struct {
	store        store.Store
	discoverer   *discover.Discoverer
	pipe         *pipeline.Pipeline
	alertMgr     *alert.Manager
	discoverInt  time.Duration
	analyzeInt   time.Duration
	minQuickWins int
}

// New creates a new scheduler. discoverer may be nil when feed discovery is
// disabled.
func New(
	s store.Store,
	discoverer *discover.Discoverer,
	pipe *pipeline.Pipeline,
	alertMgr *alert.Manager,
	discoverInt, analyzeInt time.Duration,
	minQuickWins int,
) *Scheduler {
	if discoverInt == 0 {
		discoverInt = 6 * time.Hour
	}
	if analyzeInt == 0 {
		analyzeInt = 24 * time.Hour
	}
	if minQuickWins <= 0 {
		minQuickWins = 1
	}
	return &Scheduler{
		store:        s,
		discoverer:   discoverer,
		pipe:         pipe,
		alertMgr:     alertMgr,
		discoverInt:  discoverInt,
		analyzeInt:   analyzeInt,
		minQuickWins: minQuickWins,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	discoverTicker := time.NewTicker(s.discoverInt)
	analyzeTicker := time.NewTicker(s.analyzeInt)
	defer discoverTicker.Stop()
	defer analyzeTicker.Stop()

	// Run immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: initial discovery...")
	s.discoverAll(ctx)
	fmt.Fprintln(os.Stderr, "scheduler: initial analysis...")
	s.analyzeAndAlert(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (discover every %s, analyze every %s)\n",
		s.discoverInt, s.analyzeInt)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-discoverTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: discovering...")
			s.discoverAll(ctx)
		case <-analyzeTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: analyzing...")
			s.analyzeAndAlert(ctx)
		}
	}
}

func (s *Scheduler) discoverAll(ctx context.Context) {
	if s.discoverer == nil {
		return
	}

	suggestions, err := s.discoverer.Discover(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  discovery error: %v\n", err)
		return
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(os.Stderr, "  no phrases discovered")
		return
	}

	if err := s.store.UpsertSuggestions(ctx, suggestions); err != nil {
		fmt.Fprintf(os.Stderr, "  suggestion store error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "  %d phrases discovered\n", len(suggestions))
}

// analyzeAndAlert re-runs the pipeline on the latest stored batch and alerts
// when the run surfaces enough quick wins.
func (s *Scheduler) analyzeAndAlert(ctx context.Context) {
	latest, err := s.store.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoRuns) {
			fmt.Fprintln(os.Stderr, "  no batch to re-analyze yet")
			return
		}
		fmt.Fprintf(os.Stderr, "  load latest run error: %v\n", err)
		return
	}

	records := make([]keyword.Record, len(latest.Keywords))
	for i, kw := range latest.Keywords {
		records[i] = kw.Record
	}

	result := s.pipe.Run(records)

	run := &store.Run{
		Source:    "scheduled",
		Weights:   s.pipe.Weights().Map(),
		QuickWins: result.Summary.QuickWins,
		Insights:  result.Insights,
		Keywords:  result.Keywords,
		Clusters:  result.Clusters,
		Ideas:     result.Ideas,
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "  save run error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "  run %d: %d keywords, %d quick wins\n",
		run.ID, len(run.Keywords), run.QuickWins)

	if !s.alertMgr.HasNotifiers() || run.QuickWins < s.minQuickWins {
		return
	}

	var wins []keyword.Scored
	for _, kw := range result.Keywords {
		if opportunity.IsQuickWin(kw) {
			wins = append(wins, kw)
		}
	}

	notification := &alert.Notification{
		Title:     "Keyword quick wins detected",
		Body:      fmt.Sprintf("%d of %d keywords are low-difficulty opportunities", run.QuickWins, len(run.Keywords)),
		QuickWins: run.QuickWins,
		RunID:     run.ID,
		Keywords:  wins,
	}
	if err := s.alertMgr.Broadcast(ctx, notification); err != nil {
		fmt.Fprintf(os.Stderr, "  alert error: %v\n", err)
		return
	}

	_ = s.store.MarkAlerted(ctx, run.ID)
	fmt.Fprintf(os.Stderr, "  alerted: %d quick wins\n", run.QuickWins)
}

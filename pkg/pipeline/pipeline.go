// Package pipeline wires the scoring, clustering, synthesis, and insight
// stages into one analysis run. Every stage is a pure function over in-memory
// collections; the pipeline itself holds only validated configuration and is
// safe for concurrent use across independent runs.
package pipeline

import (
	"math"

	"kwradar/pkg/cluster"
	"kwradar/pkg/ideas"
	"kwradar/pkg/keyword"
	"kwradar/pkg/opportunity"
)

// Result is the complete output bundle of one analysis run. The caller owns
// persistence; a changed weighting or keyword set always produces a fresh
// Result.
type Result struct {
	Keywords []keyword.Scored    `json:"keywords"`
	Clusters []keyword.Cluster   `json:"clusters"`
	Ideas    []keyword.Idea      `json:"ideas"`
	Insights []string            `json:"insights"`
	Summary  opportunity.Summary `json:"summary"`
}

// Pipeline runs a full keyword analysis. Construct it explicitly; the
// components are stateless and need no singleton lifecycle.
type Pipeline struct {
	scorer      *opportunity.Scorer
	clusterer   *cluster.Clusterer
	synthesizer *ideas.Synthesizer
}

// New validates the configuration and builds a pipeline. Configuration errors
// are fatal for every run the pipeline would serve, so they surface here.
func New(weights opportunity.Weights, opts cluster.Options, minGroupSize int) (*Pipeline, error) {
	scorer, err := opportunity.NewScorer(weights)
	if err != nil {
		return nil, err
	}
	clusterer, err := cluster.New(opts)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		scorer:      scorer,
		clusterer:   clusterer,
		synthesizer: ideas.New(minGroupSize),
	}, nil
}

// Default builds a pipeline with the standard weights and options.
func Default() *Pipeline {
	p, err := New(opportunity.DefaultWeights(), cluster.DefaultOptions(), ideas.DefaultMinGroupSize)
	if err != nil {
		// Defaults are validated by tests; this cannot fail at runtime.
		panic(err)
	}
	return p
}

// Run executes the full analysis. An empty batch is a valid, reportable
// outcome and returns an empty Result rather than an error. Re-running on an
// unchanged batch yields byte-identical output.
func (p *Pipeline) Run(records []keyword.Record) *Result {
	if len(records) == 0 {
		return &Result{}
	}

	scored := p.scorer.ScoreAll(records)

	texts := make([]string, len(scored))
	for i, kw := range scored {
		texts[i] = kw.Keyword
	}
	clusters := p.clusterer.Cluster(texts)
	attachClusterScores(clusters, scored)

	// Cluster-derived groups feed the synthesizer when clustering produced
	// anything; otherwise fall back to the simpler topic-pattern grouping.
	var groups []ideas.Group
	if len(clusters) > 0 {
		groups = ideas.GroupsFromClusters(clusters, scored)
	} else {
		groups = ideas.GroupByTopic(scored)
	}

	return &Result{
		Keywords: scored,
		Clusters: clusters,
		Ideas:    p.synthesizer.Synthesize(groups),
		Insights: opportunity.Insights(scored),
		Summary:  opportunity.Summarize(scored),
	}
}

// Weights returns the pipeline's validated scoring weights.
func (p *Pipeline) Weights() opportunity.Weights { return p.scorer.Weights() }

// WithWeights returns a pipeline that scores with different weights but keeps
// this one's clustering and synthesis configuration.
func (p *Pipeline) WithWeights(weights opportunity.Weights) (*Pipeline, error) {
	scorer, err := opportunity.NewScorer(weights)
	if err != nil {
		return nil, err
	}
	return &Pipeline{scorer: scorer, clusterer: p.clusterer, synthesizer: p.synthesizer}, nil
}

// FindSimilar exposes similarity ranking against an arbitrary population.
func (p *Pipeline) FindSimilar(target string, population []string, topN int) []cluster.Match {
	return p.clusterer.FindSimilar(target, population, topN)
}

// attachClusterScores sets each cluster's aggregate score to the mean
// opportunity of its members. Guarded against empty member sets.
func attachClusterScores(clusters []keyword.Cluster, scored []keyword.Scored) {
	byText := make(map[string]float64, len(scored))
	for _, kw := range scored {
		byText[kw.Keyword] = kw.Opportunity
	}

	for i := range clusters {
		if len(clusters[i].Keywords) == 0 {
			continue
		}
		sum := 0.0
		for _, text := range clusters[i].Keywords {
			sum += byText[text]
		}
		mean := sum / float64(len(clusters[i].Keywords))
		clusters[i].Score = roundScore(mean)
	}
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

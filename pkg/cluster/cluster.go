// Package cluster groups keyword texts into topic clusters using TF-IDF
// lexical similarity and k-means partitioning. Given identical input and the
// same seed, output is bit-for-bit reproducible.
package cluster

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"kwradar/pkg/keyword"
)

// DefaultSeed keeps clustering reproducible across runs. Determinism is part
// of the contract, not a nice-to-have.
const DefaultSeed = 42

// minClusterableSize is the population below which clustering degenerates to
// a single cluster containing everything. This silent fallback is documented
// behavior.
const minClusterableSize = 4

// ConfigError reports invalid clustering parameters; fatal for the call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Options tunes a clustering run.
type Options struct {
	MinClusterSize int
	MaxClusters    int
	Seed           int64
}

// DefaultOptions returns the standard parameters.
func DefaultOptions() Options {
	return Options{MinClusterSize: 3, MaxClusters: 10, Seed: DefaultSeed}
}

func (o Options) validate() error {
	if o.MinClusterSize <= 0 {
		return &ConfigError{Field: "min_cluster_size", Reason: fmt.Sprintf("must be positive, got %d", o.MinClusterSize)}
	}
	if o.MaxClusters <= 0 {
		return &ConfigError{Field: "max_clusters", Reason: fmt.Sprintf("must be positive, got %d", o.MaxClusters)}
	}
	return nil
}

// Clusterer groups keyword batches. Stateless across calls.
type Clusterer struct {
	opts Options
}

// New validates the options up front.
func New(opts Options) (*Clusterer, error) {
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Clusterer{opts: opts}, nil
}

// Cluster partitions the keyword texts into topic clusters. Batches below the
// minimum clusterable size return one cluster holding everything; clusters
// smaller than MinClusterSize are dropped from the result, so callers must
// tolerate fewer returned members than input keywords.
func (c *Clusterer) Cluster(texts []string) []keyword.Cluster {
	if len(texts) == 0 {
		return nil
	}
	if len(texts) < minClusterableSize {
		return []keyword.Cluster{{
			Label:    deriveLabel(texts),
			Keywords: append([]string(nil), texts...),
		}}
	}

	v := newVectorizer(texts)
	data := v.matrix(texts)
	rng := rand.New(rand.NewSource(c.opts.Seed))

	maxK := c.opts.MaxClusters
	if half := len(texts) / 2; half < maxK {
		maxK = half
	}

	// Run k-means for every candidate k and keep each partition; the elbow of
	// the inertia curve picks the winner.
	type kRun struct {
		k   int
		res kmeansResult
	}
	var runs []kRun
	for k := 2; k <= maxK; k++ {
		runs = append(runs, kRun{k: k, res: runKMeans(data, k, rng)})
	}
	if len(runs) == 0 {
		return []keyword.Cluster{{
			Label:    deriveLabel(texts),
			Keywords: append([]string(nil), texts...),
		}}
	}

	chosen := runs[0] // k=2 default when the curve is too short for an elbow
	if len(runs) >= 3 {
		bestCurvature := 0.0
		for i := 1; i < len(runs)-1; i++ {
			// Second discrete derivative of inertia; the sharpest bend wins.
			curvature := runs[i-1].res.inertia - 2*runs[i].res.inertia + runs[i+1].res.inertia
			if curvature > bestCurvature {
				bestCurvature = curvature
				chosen = runs[i]
			}
		}
	}

	groups := make(map[int][]string)
	var order []int
	for i, text := range texts {
		id := chosen.res.assignments[i]
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], text)
	}

	var clusters []keyword.Cluster
	for _, id := range order {
		members := groups[id]
		if len(members) < c.opts.MinClusterSize {
			continue
		}
		clusters = append(clusters, keyword.Cluster{
			Label:    deriveLabel(members),
			Keywords: members,
		})
	}
	return clusters
}

// Match is one similarity-ranked neighbor of a target keyword.
type Match struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// FindSimilar ranks the population keywords by cosine similarity of their
// TF-IDF vectors against the target, descending, ties broken by input order.
func (c *Clusterer) FindSimilar(target string, population []string, topN int) []Match {
	if len(population) == 0 || topN <= 0 {
		return nil
	}

	batch := append([]string{target}, population...)
	v := newVectorizer(batch)
	targetVec := v.vector(target)

	matches := make([]Match, 0, len(population))
	for _, text := range population {
		if text == target {
			continue
		}
		matches = append(matches, Match{Keyword: text, Score: cosineSimilarity(targetVec, v.vector(text))})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topN < len(matches) {
		matches = matches[:topN]
	}
	return matches
}

// deriveLabel names a cluster after its most frequent non-stopword tokens.
func deriveLabel(members []string) string {
	freq := make(map[string]int)
	var order []string
	for _, text := range members {
		for _, token := range tokenize(text) {
			if freq[token] == 0 {
				order = append(order, token)
			}
			freq[token]++
		}
	}
	if len(order) == 0 {
		return strings.TrimSpace(preprocess(members[0]))
	}

	sort.SliceStable(order, func(i, j int) bool {
		if freq[order[i]] != freq[order[j]] {
			return freq[order[i]] > freq[order[j]]
		}
		return order[i] < order[j]
	})
	if len(order) > 2 {
		order = order[:2]
	}
	return strings.Join(order, " ")
}

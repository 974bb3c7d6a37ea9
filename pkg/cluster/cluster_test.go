package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var clusterBatch = []string{
	"best coffee grinder",
	"coffee grinder review",
	"how to clean coffee grinder",
	"manual coffee grinder",
	"standing desk review",
	"best standing desk",
	"standing desk height",
	"adjustable standing desk",
	"protein powder benefits",
	"best protein powder",
	"protein powder for women",
	"vegan protein powder",
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{MinClusterSize: 0, MaxClusters: 10})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "min_cluster_size", cfgErr.Field)

	_, err = New(Options{MinClusterSize: 3, MaxClusters: -1})
	require.Error(t, err)

	c, err := New(DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestClusterDeterministic(t *testing.T) {
	c1, err := New(DefaultOptions())
	require.NoError(t, err)
	c2, err := New(DefaultOptions())
	require.NoError(t, err)

	first := c1.Cluster(clusterBatch)
	second := c2.Cluster(clusterBatch)
	require.Equal(t, first, second)

	// Repeated calls on the same clusterer are reproducible too.
	require.Equal(t, first, c1.Cluster(clusterBatch))
}

func TestClusterSmallBatchSingleCluster(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	texts := []string{"coffee grinder", "coffee maker", "espresso machine"}
	clusters := c.Cluster(texts)
	require.Len(t, clusters, 1)
	require.Equal(t, texts, clusters[0].Keywords)
	require.NotEmpty(t, clusters[0].Label)
}

func TestClusterEmpty(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)
	require.Nil(t, c.Cluster(nil))
}

func TestClusterDropsSmallGroups(t *testing.T) {
	opts := DefaultOptions()
	opts.MinClusterSize = 3
	c, err := New(opts)
	require.NoError(t, err)

	clusters := c.Cluster(clusterBatch)
	total := 0
	for _, cl := range clusters {
		require.GreaterOrEqual(t, len(cl.Keywords), opts.MinClusterSize)
		total += len(cl.Keywords)
	}
	require.LessOrEqual(t, total, len(clusterBatch))
}

func TestClusterLabels(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	clusters := c.Cluster([]string{
		"best coffee grinder",
		"coffee grinder review",
		"how to clean coffee grinder",
	})
	require.Len(t, clusters, 1)
	require.Equal(t, "coffee grinder", clusters[0].Label)
}

func TestClusterIsPartition(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	clusters := c.Cluster(clusterBatch)
	require.NotEmpty(t, clusters)

	input := make(map[string]bool, len(clusterBatch))
	for _, kw := range clusterBatch {
		input[kw] = true
	}

	seen := make(map[string]bool)
	for _, cl := range clusters {
		require.NotEmpty(t, cl.Label)
		for _, kw := range cl.Keywords {
			require.True(t, input[kw], "unknown member %q", kw)
			require.False(t, seen[kw], "member %q appears twice", kw)
			seen[kw] = true
		}
	}
}

func containsWord(text, word string) bool {
	for _, token := range tokenize(text) {
		if token == word {
			return true
		}
	}
	return false
}

func TestFindSimilar(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	matches := c.FindSimilar("coffee grinder", clusterBatch, 3)
	require.Len(t, matches, 3)
	for _, m := range matches {
		require.True(t, containsWord(m.Keyword, "coffee"), "unexpected neighbor %q", m.Keyword)
	}
	// Scores are descending.
	for i := 1; i < len(matches); i++ {
		require.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestFindSimilarExcludesTarget(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)

	matches := c.FindSimilar("coffee grinder review", clusterBatch, len(clusterBatch))
	for _, m := range matches {
		require.NotEqual(t, "coffee grinder review", m.Keyword)
	}
}

func TestFindSimilarEmpty(t *testing.T) {
	c, err := New(DefaultOptions())
	require.NoError(t, err)
	require.Nil(t, c.FindSimilar("anything", nil, 5))
	require.Nil(t, c.FindSimilar("anything", clusterBatch, 0))
}

func TestClusterLargeBatchDeterministic(t *testing.T) {
	var texts []string
	for i := 0; i < 10; i++ {
		texts = append(texts,
			fmt.Sprintf("coffee grinder model %d", i),
			fmt.Sprintf("standing desk model %d", i),
		)
	}

	c1, err := New(DefaultOptions())
	require.NoError(t, err)
	c2, err := New(DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, c1.Cluster(texts), c2.Cluster(texts))
}

package opportunity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kwradar/pkg/keyword"
)

func scoredFixture() []keyword.Scored {
	return []keyword.Scored{
		{
			Record:   keyword.Record{Keyword: "easy win", Volume: 500, Difficulty: 10, CPC: 0.5},
			Category: keyword.CategoryHigh, Opportunity: 85,
		},
		{
			Record:   keyword.Record{Keyword: "big head term", Volume: 20000, Difficulty: 70, CPC: 3.5},
			Category: keyword.CategoryMedium, Opportunity: 65,
		},
		{
			Record:   keyword.Record{Keyword: "long shot", Volume: 50, Difficulty: 90, CPC: 0.1},
			Category: keyword.CategoryLow, Opportunity: 20,
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(scoredFixture())
	require.Equal(t, 3, sum.Total)
	require.Equal(t, 1, sum.High)
	require.Equal(t, 1, sum.Medium)
	require.Equal(t, 1, sum.Low)
	require.Equal(t, 1, sum.QuickWins)
	require.Equal(t, 1, sum.HighVolume)
	require.Equal(t, 1, sum.HighCPC)
}

func TestSummarizeEmpty(t *testing.T) {
	require.Equal(t, Summary{}, Summarize(nil))
}

func TestIsQuickWin(t *testing.T) {
	tests := []struct {
		name       string
		volume     int
		difficulty float64
		want       bool
	}{
		{"both thresholds met", 200, 25, true},
		{"comfortably inside", 5000, 5, true},
		{"difficulty too high", 200, 26, false},
		{"volume too low", 199, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw := keyword.Scored{Record: keyword.Record{Volume: tt.volume, Difficulty: tt.difficulty}}
			require.Equal(t, tt.want, IsQuickWin(kw))
		})
	}
}

func TestInsights(t *testing.T) {
	lines := Insights(scoredFixture())
	require.Len(t, lines, 5)
	require.Contains(t, lines[0], "high-opportunity")
	require.Contains(t, lines[1], "medium-opportunity")
	require.Contains(t, lines[2], "quick wins")
	require.Contains(t, lines[3], "pillar pages")
	require.Contains(t, lines[4], "CPC")
}

func TestInsightsEmptyPopulation(t *testing.T) {
	require.Nil(t, Insights(nil))
}

func TestInsightsAllLow(t *testing.T) {
	scored := []keyword.Scored{
		{Record: keyword.Record{Keyword: "a", Volume: 5, Difficulty: 95}, Category: keyword.CategoryLow},
		{Record: keyword.Record{Keyword: "b", Volume: 3, Difficulty: 98}, Category: keyword.CategoryLow},
	}
	lines := Insights(scored)
	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	require.True(t, strings.Contains(last, "every keyword scored low-opportunity"), last)
}

func TestInsightsDeterministicOrder(t *testing.T) {
	first := Insights(scoredFixture())
	second := Insights(scoredFixture())
	require.Equal(t, first, second)
}

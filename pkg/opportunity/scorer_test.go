package opportunity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kwradar/pkg/keyword"
)

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"exact sum", Weights{Volume: 0.25, Difficulty: 0.25, CPC: 0.25, Intent: 0.25}, false},
		{"sum 0.999 within tolerance", Weights{Volume: 0.399, Difficulty: 0.3, CPC: 0.2, Intent: 0.1}, false},
		{"sum 1.001 within tolerance", Weights{Volume: 0.401, Difficulty: 0.3, CPC: 0.2, Intent: 0.1}, false},
		{"sum 0.9 rejected", Weights{Volume: 0.3, Difficulty: 0.3, CPC: 0.2, Intent: 0.1}, true},
		{"sum 1.1 rejected", Weights{Volume: 0.5, Difficulty: 0.3, CPC: 0.2, Intent: 0.1}, true},
		{"negative weight rejected", Weights{Volume: 1.2, Difficulty: -0.2, CPC: 0, Intent: 0}, true},
		{"single weight carries all", Weights{Volume: 1.0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *ConfigError
				require.ErrorAs(t, err, &cfgErr)
				require.NotEmpty(t, cfgErr.Field)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWeightsFromMap(t *testing.T) {
	w, err := WeightsFromMap(map[string]float64{
		"volume": 0.4, "difficulty": 0.3, "cpc": 0.2, "intent": 0.1,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultWeights(), w)

	// 0.399+0.3+0.2+0.1 evaluates to 0.99899999...; the rounding must not
	// push a nominal 0.999 sum outside the tolerance band.
	_, err = WeightsFromMap(map[string]float64{
		"volume": 0.399, "difficulty": 0.3, "cpc": 0.2, "intent": 0.1,
	})
	require.NoError(t, err)

	_, err = WeightsFromMap(map[string]float64{
		"volume": 0.5, "difficulty": 0.3, "cpc": 0.2,
	})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "weights.intent", cfgErr.Field)

	_, err = WeightsFromMap(map[string]float64{
		"volume": 0.4, "difficulty": 0.3, "cpc": 0.2, "intent": 0.1, "freshness": 0.0,
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "weights.freshness", cfgErr.Field)
}

func TestWeightsMapRoundTrip(t *testing.T) {
	w := DefaultWeights()
	got, err := WeightsFromMap(w.Map())
	require.NoError(t, err)
	require.Equal(t, w, got)
}

func TestNewScorerRejectsBadWeights(t *testing.T) {
	_, err := NewScorer(Weights{Volume: 0.9})
	require.Error(t, err)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score float64
		want  keyword.Category
	}{
		{100, keyword.CategoryHigh},
		{80.0, keyword.CategoryHigh},
		{79.99, keyword.CategoryMedium},
		{60.0, keyword.CategoryMedium},
		{59.99, keyword.CategoryLow},
		{0, keyword.CategoryLow},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Categorize(tt.score), "score %.2f", tt.score)
	}
}

func TestScoreBlendsComponents(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	rec := keyword.Record{
		Keyword:    "best espresso machine",
		Volume:     100000,
		Difficulty: 0,
		CPC:        10,
		Intents:    []string{"informational"},
	}
	got := scorer.Score(rec)

	require.Equal(t, 100.0, got.VolumeScore)
	require.Equal(t, 100.0, got.DifficultyScore)
	require.Equal(t, 100.0, got.CPCScore)
	require.Equal(t, 90.0, got.IntentScore)
	// 100*0.4 + 100*0.3 + 100*0.2 + 90*0.1
	require.Equal(t, 99.0, got.Opportunity)
	require.Equal(t, keyword.CategoryHigh, got.Category)
	require.Equal(t, keyword.IntentInformational, got.PrimaryIntent)
}

func TestScoreZeroRecord(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	got := scorer.Score(keyword.Record{Keyword: "nobody searches this"})
	// Difficulty 0 is the easiest band, so its score is 100; volume and CPC
	// stay at zero and the missing intent falls back to neutral 50.
	// 100*0.3 + 50*0.1.
	require.Equal(t, 35.0, got.Opportunity)
	require.Equal(t, keyword.CategoryLow, got.Category)
}

func TestScoreAllPreservesOrder(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights())
	require.NoError(t, err)

	records := []keyword.Record{
		{Keyword: "c keyword", Volume: 10},
		{Keyword: "a keyword", Volume: 9000},
		{Keyword: "b keyword", Volume: 500},
	}
	scored := scorer.ScoreAll(records)
	require.Len(t, scored, 3)
	for i, rec := range records {
		require.Equal(t, rec.Keyword, scored[i].Keyword)
	}

	require.Nil(t, scorer.ScoreAll(nil))
}

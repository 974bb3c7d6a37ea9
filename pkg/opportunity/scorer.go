package opportunity

import (
	"fmt"
	"math"

	"kwradar/pkg/keyword"
)

// weightSumTolerance is how far the weight sum may drift from 1.0 before the
// configuration is rejected rather than silently renormalized.
const weightSumTolerance = 0.001

// weightSumEpsilon absorbs float64 rounding in the tolerance check, so a
// nominal sum of 0.999 is accepted even when it evaluates to 0.99899999...
const weightSumEpsilon = 1e-9

// Category thresholds, inclusive on the lower bound of each band.
const (
	highThreshold   = 80.0
	mediumThreshold = 60.0
)

// ConfigError reports an invalid scoring or clustering configuration. It is
// fatal for the whole batch, never per-record.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Weights blends the four component scores into one opportunity score.
// They must be non-negative and sum to 1.0 within tolerance.
type Weights struct {
	Volume     float64 `json:"volume" yaml:"volume"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
	CPC        float64 `json:"cpc" yaml:"cpc"`
	Intent     float64 `json:"intent" yaml:"intent"`
}

// DefaultWeights favors volume and low difficulty, the usual content-marketing
// posture.
func DefaultWeights() Weights {
	return Weights{Volume: 0.4, Difficulty: 0.3, CPC: 0.2, Intent: 0.1}
}

// WeightsFromMap builds Weights from a string-keyed map, requiring exactly the
// keys volume, difficulty, cpc, and intent.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	var w Weights
	required := map[string]*float64{
		"volume":     &w.Volume,
		"difficulty": &w.Difficulty,
		"cpc":        &w.CPC,
		"intent":     &w.Intent,
	}

	for key, dst := range required {
		v, ok := m[key]
		if !ok {
			return Weights{}, &ConfigError{Field: "weights." + key, Reason: "missing key"}
		}
		*dst = v
	}
	for key := range m {
		if _, ok := required[key]; !ok {
			return Weights{}, &ConfigError{Field: "weights." + key, Reason: "unknown key"}
		}
	}

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Map returns the weights keyed the way configuration spells them.
func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		"volume":     w.Volume,
		"difficulty": w.Difficulty,
		"cpc":        w.CPC,
		"intent":     w.Intent,
	}
}

// Validate checks non-negativity and the sum tolerance.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"weights.volume", w.Volume},
		{"weights.difficulty", w.Difficulty},
		{"weights.cpc", w.CPC},
		{"weights.intent", w.Intent},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigError{Field: f.name, Reason: "not a finite number"}
		}
		if f.value < 0 {
			return &ConfigError{Field: f.name, Reason: fmt.Sprintf("negative value %.4f", f.value)}
		}
	}

	sum := w.Volume + w.Difficulty + w.CPC + w.Intent
	if math.Abs(sum-1.0) > weightSumTolerance+weightSumEpsilon {
		return &ConfigError{
			Field:  "weights",
			Reason: fmt.Sprintf("sum %.4f outside 1.0±%.3f", sum, weightSumTolerance),
		}
	}
	return nil
}

// Scorer turns raw keyword records into scored ones. It is stateless and safe
// for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weights up front so every later call is infallible.
func NewScorer(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// Weights returns the validated weight configuration.
func (s *Scorer) Weights() Weights { return s.weights }

// Score computes the component scores and the combined opportunity score for
// one record.
func (s *Scorer) Score(rec keyword.Record) keyword.Scored {
	scored := keyword.Scored{
		Record:          rec,
		VolumeScore:     NormalizeVolume(rec.Volume),
		DifficultyScore: NormalizeDifficulty(rec.Difficulty),
		CPCScore:        NormalizeCPC(rec.CPC),
		IntentScore:     ScoreIntents(rec.Intents),
		PrimaryIntent:   PrimaryIntent(rec.Intents),
	}

	opportunity := scored.VolumeScore*s.weights.Volume +
		scored.DifficultyScore*s.weights.Difficulty +
		scored.CPCScore*s.weights.CPC +
		scored.IntentScore*s.weights.Intent

	scored.Opportunity = round2(opportunity)
	scored.Category = Categorize(scored.Opportunity)
	return scored
}

// ScoreAll scores a batch, preserving input order. An empty batch is a valid,
// reportable outcome and returns an empty slice.
func (s *Scorer) ScoreAll(records []keyword.Record) []keyword.Scored {
	if len(records) == 0 {
		return nil
	}
	scored := make([]keyword.Scored, len(records))
	for i, rec := range records {
		scored[i] = s.Score(rec)
	}
	return scored
}

// Categorize buckets an opportunity score: >=80 high, >=60 medium, else low.
func Categorize(opportunity float64) keyword.Category {
	switch {
	case opportunity >= highThreshold:
		return keyword.CategoryHigh
	case opportunity >= mediumThreshold:
		return keyword.CategoryMedium
	default:
		return keyword.CategoryLow
	}
}

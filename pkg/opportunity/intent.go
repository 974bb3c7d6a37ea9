package opportunity

import (
	"strings"

	"kwradar/pkg/keyword"
)

// Intent quality table. Informational ranks highest: it signals content demand,
// which is what a content pipeline can actually serve. Tags outside the table
// and empty tag sets both get a neutral 50.
const (
	intentDefaultScore = 50.0
)

var intentScores = map[string]float64{
	keyword.IntentInformational: 90,
	keyword.IntentCommercial:    80,
	keyword.IntentTransactional: 70,
	keyword.IntentNavigational:  60,
}

// Tie-break priority for resolving a primary intent from a mixed tag set.
var intentPriority = []string{
	keyword.IntentInformational,
	keyword.IntentCommercial,
	keyword.IntentTransactional,
	keyword.IntentNavigational,
}

// ScoreIntents returns the quality score for a tag set. The maximum wins:
// any strong-intent signal is valuable even when mixed with weaker ones.
func ScoreIntents(tags []string) float64 {
	if len(tags) == 0 {
		return intentDefaultScore
	}
	best := 0.0
	for _, tag := range tags {
		score, ok := intentScores[CanonicalIntent(tag)]
		if !ok {
			score = intentDefaultScore
		}
		if score > best {
			best = score
		}
	}
	return best
}

// PrimaryIntent picks a single representative tag. Known intents win by fixed
// priority order; a set of only unknown tags yields the first listed one.
func PrimaryIntent(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	present := make(map[string]bool, len(tags))
	for _, tag := range tags {
		present[CanonicalIntent(tag)] = true
	}

	for _, intent := range intentPriority {
		if present[intent] {
			return intent
		}
	}
	return tags[0]
}

// CanonicalIntent normalizes the four known intents case-insensitively and
// leaves unknown tags untouched.
func CanonicalIntent(tag string) string {
	for _, intent := range intentPriority {
		if strings.EqualFold(tag, intent) {
			return intent
		}
	}
	return tag
}

// Package ideas synthesizes content-idea candidates from grouped, scored
// keywords. Everything here is template-driven and deterministic: no
// randomness, no external calls.
package ideas

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"kwradar/pkg/keyword"
	"kwradar/pkg/opportunity"
)

// DefaultMinGroupSize is the smallest keyword group worth an idea.
const DefaultMinGroupSize = 3

const (
	primaryCount   = 3
	secondaryCount = 3
)

// Internal blend constants for the idea-level scores. These are deliberately
// fixed rather than shared with the configurable opportunity weights; the two
// score families answer different questions.
const (
	seoOpportunityWeight     = 0.6
	seoKeywordDiversityWt    = 0.2
	seoIntentDiversityWt     = 0.2
	trafficVolumeWeight      = 0.7
	trafficDifficultyWeight  = 0.3
	keywordDiversityPerCount = 10.0
	intentDiversityPerCount  = 25.0
)

// topicPatterns maps keyword substrings to topic names, checked in order with
// first match winning. Keywords matching nothing land in the general topic.
var topicPatterns = []struct {
	Pattern string
	Topic   string
}{
	{"how to", "how-to"},
	{"review", "reviews"},
	{"best", "buying guides"},
	{" vs ", "comparisons"},
	{"price", "pricing"},
	{"cost", "pricing"},
	{"cheap", "budget picks"},
	{"free", "free resources"},
	{"near me", "local search"},
	{"diy", "diy projects"},
	{"beginner", "beginner guides"},
}

const generalTopic = "general"

// formatChecks detect the content format from a group's combined keyword
// text. The checks run in order and the first match wins; the order is part
// of the output contract, so do not reorder casually.
var formatChecks = []struct {
	Patterns []string
	Type     keyword.ContentType
}{
	{[]string{"review", "rating"}, keyword.ContentReview},
	{[]string{"best", "top", "list"}, keyword.ContentListArticle},
	{[]string{"how to", "guide", "tutorial"}, keyword.ContentHowToGuide},
	{[]string{" vs ", "versus", "compare"}, keyword.ContentComparison},
	{[]string{"learn", "course"}, keyword.ContentTutorial},
	{[]string{"case study", "example"}, keyword.ContentCaseStudy},
}

// Group is a named set of scored keywords feeding one potential idea. The
// synthesizer does not care whether the grouping came from topic-pattern
// matching or from text clustering.
type Group struct {
	Topic   string
	Members []keyword.Scored
}

// Synthesizer turns keyword groups into content ideas.
type Synthesizer struct {
	minGroupSize int
}

// New creates a synthesizer; a non-positive minGroupSize falls back to the
// default of 3.
func New(minGroupSize int) *Synthesizer {
	if minGroupSize <= 0 {
		minGroupSize = DefaultMinGroupSize
	}
	return &Synthesizer{minGroupSize: minGroupSize}
}

// GroupByTopic buckets scored keywords by the fixed topic-pattern list.
// Output group order follows the pattern list, with general last; member
// order within a group follows input order.
func GroupByTopic(scored []keyword.Scored) []Group {
	buckets := make(map[string][]keyword.Scored)
	for _, kw := range scored {
		topic := matchTopic(kw.Keyword)
		buckets[topic] = append(buckets[topic], kw)
	}

	var groups []Group
	seen := make(map[string]bool)
	for _, tp := range topicPatterns {
		if seen[tp.Topic] {
			continue
		}
		seen[tp.Topic] = true
		if members, ok := buckets[tp.Topic]; ok {
			groups = append(groups, Group{Topic: tp.Topic, Members: members})
		}
	}
	if members, ok := buckets[generalTopic]; ok {
		groups = append(groups, Group{Topic: generalTopic, Members: members})
	}
	return groups
}

// GroupsFromClusters converts clustering output into synthesizer groups,
// resolving each member text back to its scored record. Cluster order is
// preserved.
func GroupsFromClusters(clusters []keyword.Cluster, scored []keyword.Scored) []Group {
	byText := make(map[string]keyword.Scored, len(scored))
	for _, kw := range scored {
		if _, ok := byText[kw.Keyword]; !ok {
			byText[kw.Keyword] = kw
		}
	}

	var groups []Group
	for _, cl := range clusters {
		var members []keyword.Scored
		for _, text := range cl.Keywords {
			if kw, ok := byText[text]; ok {
				members = append(members, kw)
			}
		}
		if len(members) > 0 {
			groups = append(groups, Group{Topic: cl.Label, Members: members})
		}
	}
	return groups
}

// Synthesize produces one idea per sufficiently large group, sorted by
// combined score descending with ties keeping group order.
func (s *Synthesizer) Synthesize(groups []Group) []keyword.Idea {
	var out []keyword.Idea
	for _, g := range groups {
		if len(g.Members) < s.minGroupSize {
			continue
		}
		out = append(out, s.synthesizeOne(g))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	return out
}

func (s *Synthesizer) synthesizeOne(g Group) keyword.Idea {
	// Rank members by opportunity, ties keeping input order.
	ranked := make([]keyword.Scored, len(g.Members))
	copy(ranked, g.Members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Opportunity > ranked[j].Opportunity
	})

	var primary, secondary []string
	for i, kw := range ranked {
		switch {
		case i < primaryCount:
			primary = append(primary, kw.Keyword)
		case i < primaryCount+secondaryCount:
			secondary = append(secondary, kw.Keyword)
		}
	}

	totalVolume := 0
	sumDifficulty, sumCPC, sumOpportunity := 0.0, 0.0, 0.0
	intents := make(map[string]bool)
	distinct := make(map[string]bool)
	for _, kw := range g.Members {
		totalVolume += kw.Volume
		sumDifficulty += kw.Difficulty
		sumCPC += kw.CPC
		sumOpportunity += kw.Opportunity
		distinct[strings.ToLower(kw.Keyword)] = true
		for _, tag := range kw.Intents {
			intents[opportunity.CanonicalIntent(tag)] = true
		}
	}
	n := float64(len(g.Members)) // never zero: minGroupSize gate is above
	avgDifficulty := sumDifficulty / n
	avgCPC := sumCPC / n
	avgOpportunity := sumOpportunity / n

	contentType := DetectContentType(keywordTexts(g.Members))

	keywordDiversity := capAt100(float64(len(distinct)) * keywordDiversityPerCount)
	intentDiversity := capAt100(float64(len(intents)) * intentDiversityPerCount)
	seo := round2(seoOpportunityWeight*avgOpportunity +
		seoKeywordDiversityWt*keywordDiversity +
		seoIntentDiversityWt*intentDiversity)
	traffic := round2(trafficVolumeWeight*opportunity.NormalizeVolume(totalVolume) +
		trafficDifficultyWeight*opportunity.NormalizeDifficulty(avgDifficulty))

	return keyword.Idea{
		Title:             makeTitle(contentType, g.Topic),
		Topic:             g.Topic,
		ContentType:       contentType,
		PrimaryKeywords:   primary,
		SecondaryKeywords: secondary,
		SEOScore:          seo,
		TrafficScore:      traffic,
		CombinedScore:     round2((seo + traffic) / 2),
		TotalVolume:       totalVolume,
		AvgDifficulty:     round2(avgDifficulty),
		AvgCPC:            round2(avgCPC),
		Tips:              makeTips(primary, secondary, avgDifficulty, intents),
		Outline:           makeOutline(contentType, g.Topic),
	}
}

// DetectContentType runs the ordered format checks over the combined keyword
// text of a group.
func DetectContentType(texts []string) keyword.ContentType {
	combined := " " + strings.ToLower(strings.Join(texts, " ")) + " "
	for _, check := range formatChecks {
		for _, p := range check.Patterns {
			if strings.Contains(combined, p) {
				return check.Type
			}
		}
	}
	return keyword.ContentInformational
}

func matchTopic(text string) string {
	padded := " " + strings.ToLower(text) + " "
	for _, tp := range topicPatterns {
		if strings.Contains(padded, tp.Pattern) {
			return tp.Topic
		}
	}
	return generalTopic
}

var titleTemplates = map[keyword.ContentType]string{
	keyword.ContentReview:        "%s Review: What to Know Before You Buy",
	keyword.ContentListArticle:   "The Best %s: Top Picks Ranked",
	keyword.ContentHowToGuide:    "How to Get Started with %s: A Step-by-Step Guide",
	keyword.ContentComparison:    "%s Compared: Which Option Wins?",
	keyword.ContentTutorial:      "Learn %s: A Practical Tutorial",
	keyword.ContentCaseStudy:     "%s in Practice: Real-World Examples",
	keyword.ContentInformational: "%s Explained: The Complete Overview",
}

var outlineTemplates = map[keyword.ContentType]string{
	keyword.ContentReview:        "hook intro -> product overview -> hands-on findings -> pros and cons -> verdict -> faq",
	keyword.ContentListArticle:   "hook intro -> selection criteria -> ranked picks -> comparison table -> buying advice -> faq",
	keyword.ContentHowToGuide:    "problem framing -> prerequisites -> numbered steps -> common mistakes -> next steps",
	keyword.ContentComparison:    "contenders intro -> criteria -> head-to-head breakdown -> winner by use case -> verdict",
	keyword.ContentTutorial:      "learning goals -> setup -> guided walkthrough -> practice exercises -> further reading",
	keyword.ContentCaseStudy:     "context -> challenge -> approach -> results with numbers -> takeaways",
	keyword.ContentInformational: "definition -> why it matters -> key concepts -> practical implications -> summary",
}

func makeTitle(ct keyword.ContentType, topic string) string {
	return fmt.Sprintf(titleTemplates[ct], titleCase(topic))
}

func makeOutline(ct keyword.ContentType, topic string) string {
	return fmt.Sprintf("%s: %s", topic, outlineTemplates[ct])
}

func makeTips(primary, secondary []string, avgDifficulty float64, intents map[string]bool) []string {
	var tips []string
	if len(primary) > 0 {
		tips = append(tips, fmt.Sprintf("Target %q in the title, H1, and first paragraph.", primary[0]))
	}
	if len(primary) > 1 {
		tips = append(tips, fmt.Sprintf("Use the remaining primary keywords as H2 subheadings: %s.",
			strings.Join(primary[1:], ", ")))
	}
	if len(secondary) > 0 {
		tips = append(tips, fmt.Sprintf("Weave secondary keywords into body copy naturally: %s.",
			strings.Join(secondary, ", ")))
	}
	if avgDifficulty <= 30 {
		tips = append(tips, fmt.Sprintf("Average difficulty is low (%.0f): a well-structured post can rank with few backlinks.", avgDifficulty))
	} else {
		tips = append(tips, fmt.Sprintf("Average difficulty is %.0f: plan internal links and a few authoritative backlinks.", avgDifficulty))
	}
	if intents[keyword.IntentCommercial] || intents[keyword.IntentTransactional] {
		tips = append(tips, "Commercial intent present: include comparison tables and clear calls to action.")
	}
	return tips
}

func keywordTexts(members []keyword.Scored) []string {
	out := make([]string, len(members))
	for i, kw := range members {
		out[i] = kw.Keyword
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func capAt100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

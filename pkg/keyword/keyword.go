package keyword

import "time"

// Category buckets a keyword by its opportunity score.
type Category string

const (
	CategoryHigh   Category = "high"
	CategoryMedium Category = "medium"
	CategoryLow    Category = "low"
)

// ContentType classifies the article format an idea targets.
type ContentType string

const (
	ContentListArticle   ContentType = "list-article"
	ContentHowToGuide    ContentType = "how-to-guide"
	ContentComparison    ContentType = "comparison"
	ContentReview        ContentType = "review"
	ContentTutorial      ContentType = "tutorial"
	ContentCaseStudy     ContentType = "case-study"
	ContentInformational ContentType = "informational"
)

// Well-known search intent labels. The intent vocabulary is open; anything
// outside this set is still accepted and scored with a neutral default.
const (
	IntentInformational = "Informational"
	IntentCommercial    = "Commercial"
	IntentTransactional = "Transactional"
	IntentNavigational  = "Navigational"
)

// Record is one row of an exported keyword-research file. Immutable once parsed.
type Record struct {
	Keyword     string   `json:"keyword" db:"keyword"`
	Volume      int      `json:"volume" db:"volume"`
	Difficulty  float64  `json:"difficulty" db:"difficulty"`
	CPC         float64  `json:"cpc" db:"cpc"`
	Intents     []string `json:"intents" db:"-"`
	IntentsJSON string   `json:"-" db:"intents"`
}

// Scored is a Record with its normalized component scores and the combined
// opportunity score attached.
type Scored struct {
	Record

	VolumeScore     float64  `json:"volume_score" db:"volume_score"`
	DifficultyScore float64  `json:"difficulty_score" db:"difficulty_score"`
	CPCScore        float64  `json:"cpc_score" db:"cpc_score"`
	IntentScore     float64  `json:"intent_score" db:"intent_score"`
	Opportunity     float64  `json:"opportunity" db:"opportunity"`
	Category        Category `json:"category" db:"category"`
	PrimaryIntent   string   `json:"primary_intent" db:"primary_intent"`
}

// Cluster is a group of topically related keyword texts from one clustering run.
type Cluster struct {
	Label        string   `json:"label" db:"label"`
	Keywords     []string `json:"keywords" db:"-"`
	Score        float64  `json:"score" db:"score"`
	KeywordsJSON string   `json:"-" db:"keywords"`
}

// Idea is a synthesized content concept generated from one keyword group.
type Idea struct {
	Title             string      `json:"title" db:"title"`
	Topic             string      `json:"topic" db:"topic"`
	ContentType       ContentType `json:"content_type" db:"content_type"`
	PrimaryKeywords   []string    `json:"primary_keywords" db:"-"`
	SecondaryKeywords []string    `json:"secondary_keywords" db:"-"`
	SEOScore          float64     `json:"seo_score" db:"seo_score"`
	TrafficScore      float64     `json:"traffic_score" db:"traffic_score"`
	CombinedScore     float64     `json:"combined_score" db:"combined_score"`
	TotalVolume       int         `json:"total_volume" db:"total_volume"`
	AvgDifficulty     float64     `json:"avg_difficulty" db:"avg_difficulty"`
	AvgCPC            float64     `json:"avg_cpc" db:"avg_cpc"`
	Tips              []string    `json:"tips" db:"-"`
	Outline           string      `json:"outline" db:"outline"`

	PrimaryJSON   string `json:"-" db:"primary_keywords"`
	SecondaryJSON string `json:"-" db:"secondary_keywords"`
	TipsJSON      string `json:"-" db:"tips"`
}

// Suggestion is a candidate keyword phrase harvested by the discovery layer.
type Suggestion struct {
	Phrase    string    `json:"phrase" db:"phrase"`
	Feed      string    `json:"feed" db:"feed"`
	SeenCount int       `json:"seen_count" db:"seen_count"`
	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
}

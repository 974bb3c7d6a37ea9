package cluster

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"
)

// maxVocabulary caps the batch-local vocabulary so pathological batches stay
// cheap to cluster.
const maxVocabulary = 1000

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "i": true, "we": true, "you": true,
	"he": true, "she": true, "they": true, "my": true, "your": true,
	"how": true, "what": true, "when": true, "where": true, "why": true,
	"not": true, "no": true, "if": true, "so": true, "can": true,
	"all": true, "more": true, "also": true, "than": true, "very": true,
	"about": true, "up": true, "out": true, "just": true,
}

// preprocess lowercases, strips punctuation to whitespace, and collapses
// repeated whitespace.
func preprocess(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

// tokenize returns the stopword-pruned unigrams of a preprocessed text.
func tokenize(text string) []string {
	var tokens []string
	for _, w := range strings.Fields(preprocess(text)) {
		if !stopwords[w] {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// terms returns the unigrams and bigrams a document contributes to the
// vocabulary. Bigrams are formed over the stopword-pruned token stream.
func terms(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// vectorizer holds a batch-local TF-IDF model. The vocabulary, its ordering,
// and every produced vector are deterministic for a given input batch.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// newVectorizer builds the vocabulary and inverse document frequencies from
// the batch itself. Terms are capped at maxVocabulary, kept by descending
// document frequency with alphabetical tie-breaks.
func newVectorizer(texts []string) *vectorizer {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range terms(text) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	selected := make([]string, 0, len(df))
	for term := range df {
		selected = append(selected, term)
	}
	sort.Slice(selected, func(i, j int) bool {
		if df[selected[i]] != df[selected[j]] {
			return df[selected[i]] > df[selected[j]]
		}
		return selected[i] < selected[j]
	})
	if len(selected) > maxVocabulary {
		selected = selected[:maxVocabulary]
	}
	// Index order is alphabetical so vectors do not depend on frequency ties.
	sort.Strings(selected)

	v := &vectorizer{
		vocab: make(map[string]int, len(selected)),
		idf:   make([]float64, len(selected)),
	}
	n := float64(len(texts))
	for i, term := range selected {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// dims returns the vocabulary size.
func (v *vectorizer) dims() int { return len(v.idf) }

// vector produces the L2-normalized TF-IDF vector for one text.
func (v *vectorizer) vector(text string) []float64 {
	vec := make([]float64, v.dims())
	for _, term := range terms(text) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx]++
		}
	}

	norm := 0.0
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// matrix vectorizes a batch into one dense row-per-document matrix.
func (v *vectorizer) matrix(texts []string) *mat.Dense {
	d := v.dims()
	if d == 0 {
		d = 1 // keep gonum happy on an all-stopword batch
	}
	m := mat.NewDense(len(texts), d, nil)
	if v.dims() == 0 {
		return m
	}
	for i, text := range texts {
		m.SetRow(i, v.vector(text))
	}
	return m
}

// cosineSimilarity over two equal-length vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

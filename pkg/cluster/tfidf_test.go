package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Best Coffee Grinder", "best coffee grinder"},
		{"coffee-grinder (2024)!", "coffee grinder 2024"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, preprocess(tt.in))
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	require.Equal(t, []string{"clean", "coffee", "grinder"}, tokenize("how to clean a coffee grinder"))
	require.Nil(t, tokenize("how to be in it"))
}

func TestTermsIncludeBigrams(t *testing.T) {
	got := terms("best coffee grinder")
	require.Contains(t, got, "best")
	require.Contains(t, got, "coffee")
	require.Contains(t, got, "grinder")
	require.Contains(t, got, "best coffee")
	require.Contains(t, got, "coffee grinder")
}

func TestVectorizerDeterministicVocabulary(t *testing.T) {
	texts := []string{"coffee grinder", "coffee maker", "espresso machine", "coffee beans"}
	v1 := newVectorizer(texts)
	v2 := newVectorizer(texts)
	require.Equal(t, v1.vocab, v2.vocab)
	require.Equal(t, v1.idf, v2.idf)
}

func TestVectorsAreNormalized(t *testing.T) {
	texts := []string{"coffee grinder", "coffee maker", "espresso machine"}
	v := newVectorizer(texts)
	for _, text := range texts {
		vec := v.vector(text)
		norm := 0.0
		for _, x := range vec {
			norm += x * x
		}
		require.InDelta(t, 1.0, norm, 1e-9, "vector for %q", text)
	}
}

func TestCosineSimilarity(t *testing.T) {
	texts := []string{"coffee grinder", "coffee grinder", "standing desk"}
	v := newVectorizer(texts)

	same := cosineSimilarity(v.vector("coffee grinder"), v.vector("coffee grinder"))
	require.InDelta(t, 1.0, same, 1e-9)

	disjoint := cosineSimilarity(v.vector("coffee grinder"), v.vector("standing desk"))
	require.InDelta(t, 0.0, disjoint, 1e-9)
}

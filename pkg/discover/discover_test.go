package discover

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPhrases(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{
			"stopwords split runs",
			"The Best Coffee Grinders for Espresso Lovers",
			[]string{"best coffee grinders", "espresso lovers"},
		},
		{
			"punctuation stripped and run capped",
			"Coffee Grinders: Burr vs. Blade!",
			[]string{"coffee grinders burr vs"},
		},
		{
			"single words dropped",
			"Espresso and Coffee",
			nil,
		},
		{
			"empty title",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractPhrases(tt.title, 4))
		})
	}
}

func TestExtractPhrasesCapsLength(t *testing.T) {
	got := ExtractPhrases("ultra quiet conical burr coffee grinder machine", 3)
	require.Equal(t, []string{"ultra quiet conical"}, got)
}

func TestFilterIncludeExclude(t *testing.T) {
	f := NewFilter([]string{"coffee"}, []string{"decaf"})
	require.True(t, f.Matches("best coffee grinder"))
	require.False(t, f.Matches("standing desk review"))
	require.False(t, f.Matches("decaf coffee beans"))
}

func TestFilterEmptyIncludeAcceptsAll(t *testing.T) {
	f := NewFilter(nil, []string{"spam"})
	require.True(t, f.Matches("anything goes"))
	require.False(t, f.Matches("pure spam phrase"))
}

func TestFilterCaseInsensitive(t *testing.T) {
	f := NewFilter([]string{"Coffee"}, nil)
	require.True(t, f.Matches("COFFEE GRINDER"))
}

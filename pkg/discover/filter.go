package discover

import "strings"

// Filter narrows harvested phrases with include and exclude lists.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a filter. An empty include list accepts every phrase;
// exclude always wins over include.
func NewFilter(includePhrases, excludePhrases []string) *Filter {
	include := make([]string, len(includePhrases))
	for i, p := range includePhrases {
		include[i] = strings.ToLower(p)
	}

	exclude := make([]string, len(excludePhrases))
	for i, p := range excludePhrases {
		exclude[i] = strings.ToLower(p)
	}

	return &Filter{include: include, exclude: exclude}
}

// Matches returns true if the phrase passes the filter.
func (f *Filter) Matches(phrase string) bool {
	lower := strings.ToLower(phrase)

	for _, ex := range f.exclude {
		if strings.Contains(lower, ex) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, in := range f.include {
		if strings.Contains(lower, in) {
			return true
		}
	}
	return false
}

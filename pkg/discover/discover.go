// Package discover harvests candidate keyword phrases from RSS/Atom feeds.
// Feed item titles are split into content-word runs which become suggestion
// phrases for later research.
package discover

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"

	"kwradar/pkg/keyword"
)

const defaultMaxPhraseWords = 4

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// Discoverer pulls feeds and extracts candidate phrases from item titles.
type Discoverer struct {
	client         *http.Client
	parser         *gofeed.Parser
	feeds          []Feed
	filter         *Filter
	maxPhraseWords int
}

// New creates a Discoverer for the given feeds.
func New(feeds []Feed, filter *Filter, maxPhraseWords int) *Discoverer {
	if maxPhraseWords <= 0 {
		maxPhraseWords = defaultMaxPhraseWords
	}
	return &Discoverer{
		client:         &http.Client{Timeout: 30 * time.Second},
		parser:         gofeed.NewParser(),
		feeds:          feeds,
		filter:         filter,
		maxPhraseWords: maxPhraseWords,
	}
}

// Discover fetches every feed and returns deduplicated phrase suggestions.
// Feeds that fail are skipped with a warning so one dead feed does not sink
// the whole harvest.
func (d *Discoverer) Discover(ctx context.Context) ([]keyword.Suggestion, error) {
	var all []keyword.Suggestion

	for _, feed := range d.feeds {
		suggestions, err := d.discoverFeed(ctx, feed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  feed %s error: %v\n", feed.Name, err)
			continue
		}
		all = append(all, suggestions...)
	}

	return all, nil
}

func (d *Discoverer) discoverFeed(ctx context.Context, feed Feed) ([]keyword.Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "kwradar/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := d.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	type seen struct {
		count int
		first time.Time
		last  time.Time
	}
	counts := make(map[string]*seen)
	var order []string

	for _, entry := range parsed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		for _, phrase := range ExtractPhrases(entry.Title, d.maxPhraseWords) {
			if d.filter != nil && !d.filter.Matches(phrase) {
				continue
			}
			st, ok := counts[phrase]
			if !ok {
				st = &seen{first: published, last: published}
				counts[phrase] = st
				order = append(order, phrase)
			}
			st.count++
			if published.Before(st.first) {
				st.first = published
			}
			if published.After(st.last) {
				st.last = published
			}
		}
	}

	suggestions := make([]keyword.Suggestion, 0, len(order))
	for _, phrase := range order {
		st := counts[phrase]
		suggestions = append(suggestions, keyword.Suggestion{
			Phrase:    phrase,
			Feed:      feed.Name,
			SeenCount: st.count,
			FirstSeen: st.first,
			LastSeen:  st.last,
		})
	}
	return suggestions, nil
}

// phraseStopwords breaks titles into content-word runs. Deliberately small:
// discovery keeps modifiers like "how" and "best" because they carry search
// intent.
var phraseStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "from": true, "by": true, "as": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "this": true,
	"that": true, "it": true, "its": true, "your": true, "you": true,
	"we": true, "our": true,
}

// ExtractPhrases splits a title into candidate phrases: contiguous runs of
// content words, at least two and at most maxWords words long.
func ExtractPhrases(title string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = defaultMaxPhraseWords
	}

	var runs [][]string
	var current []string
	flush := func() {
		if len(current) >= 2 {
			runs = append(runs, current)
		}
		current = nil
	}

	for _, raw := range strings.Fields(strings.ToLower(title)) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" || phraseStopwords[word] {
			flush()
			continue
		}
		current = append(current, word)
	}
	flush()

	var phrases []string
	for _, run := range runs {
		if len(run) > maxWords {
			run = run[:maxWords]
		}
		phrases = append(phrases, strings.Join(run, " "))
	}
	return phrases
}

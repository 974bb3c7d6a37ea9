// Package ingest reads exported keyword-research files into keyword records.
// Exports from research tools vary in column order and formatting, so the
// reader is header-driven and deliberately permissive: malformed numerics
// become zero values rather than rejecting the row, and only rows without a
// keyword are skipped. Validating exports is the exporting tool's job.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kwradar/pkg/keyword"
)

// Column aliases seen across common keyword-research exports.
var (
	keywordCols    = []string{"keyword", "keywords", "query", "term"}
	volumeCols     = []string{"volume", "search volume", "monthly searches", "searches"}
	difficultyCols = []string{"difficulty", "keyword difficulty", "kd", "competition"}
	cpcCols        = []string{"cpc", "cost per click", "cpc (usd)"}
	intentCols     = []string{"intents", "intent", "search intent"}
)

// ReadFile loads a TSV or CSV keyword export. The delimiter follows the file
// extension: tab for .tsv, comma otherwise.
func ReadFile(path string) ([]keyword.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword export %s: %w", path, err)
	}
	defer f.Close()

	delim := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		delim = '\t'
	}
	records, err := Read(f, delim)
	if err != nil {
		return nil, fmt.Errorf("parse keyword export %s: %w", path, err)
	}
	return records, nil
}

// Read parses a keyword export from a reader with the given delimiter.
func Read(r io.Reader, delim rune) ([]keyword.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}

	cols := mapColumns(rows[0])
	if cols.keyword < 0 {
		return nil, errors.New("no keyword column in header")
	}

	var records []keyword.Record
	for _, row := range rows[1:] {
		kw := strings.TrimSpace(field(row, cols.keyword))
		if kw == "" {
			continue
		}
		records = append(records, keyword.Record{
			Keyword:    kw,
			Volume:     parseInt(field(row, cols.volume)),
			Difficulty: parseFloat(field(row, cols.difficulty)),
			CPC:        parseFloat(field(row, cols.cpc)),
			Intents:    parseIntents(field(row, cols.intents)),
		})
	}
	return records, nil
}

type columnMap struct {
	keyword    int
	volume     int
	difficulty int
	cpc        int
	intents    int
}

func mapColumns(header []string) columnMap {
	cols := columnMap{keyword: -1, volume: -1, difficulty: -1, cpc: -1, intents: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.keyword < 0 && matches(name, keywordCols):
			cols.keyword = i
		case cols.volume < 0 && matches(name, volumeCols):
			cols.volume = i
		case cols.difficulty < 0 && matches(name, difficultyCols):
			cols.difficulty = i
		case cols.cpc < 0 && matches(name, cpcCols):
			cols.cpc = i
		case cols.intents < 0 && matches(name, intentCols):
			cols.intents = i
		}
	}
	return cols
}

func matches(name string, aliases []string) bool {
	for _, a := range aliases {
		if name == a {
			return true
		}
	}
	return false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(s string) int {
	s = cleanNumber(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// Some tools export volume as a float ("1200.0").
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}

func parseFloat(s string) float64 {
	s = cleanNumber(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// cleanNumber strips currency symbols and thousands separators.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	return strings.ReplaceAll(s, ",", "")
}

// parseIntents splits an intent cell on commas or semicolons, preserving
// order and dropping empties.
func parseIntents(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	var intents []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			intents = append(intents, p)
		}
	}
	return intents
}

package opportunity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kwradar/pkg/keyword"
)

const tagPrompt = `You are an SEO analyst. For each keyword below, classify the searcher intent.

Use only these labels (one or more per keyword):
- Informational: the searcher wants to learn something
- Commercial: the searcher is researching a purchase
- Transactional: the searcher wants to buy or act now
- Navigational: the searcher wants a specific site or brand

Keywords to classify:
%s

Respond with a JSON array. Each element must have: "keyword" (the exact keyword text) and "intents" (array of label strings).
Example: [{"keyword":"best coffee grinder","intents":["Commercial"]}]

Return ONLY the JSON array, no other text.`

// IntentTagger uses an LLM to batch-classify intent for keywords that arrive
// without intent tags. It is optional; a nil tagger means the neutral default
// score path is used instead.
type IntentTagger struct {
	client   *http.Client
	provider string // "openai" or "anthropic"
	model    string
	apiKey   string
	baseURL  string
}

// tagResult is the per-keyword classification from the LLM.
type tagResult struct {
	Keyword string   `json:"keyword"`
	Intents []string `json:"intents"`
}

// NewIntentTagger creates a tagger for the given provider.
func NewIntentTagger(provider, model, apiKey, baseURL string) *IntentTagger {
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-20250514"
		default:
			model = "gpt-4o-mini"
		}
	}
	return &IntentTagger{
		client:   &http.Client{Timeout: 60 * time.Second},
		provider: provider,
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
	}
}

// TagRecords fills in intent tags for records that have none, using a single
// batched call. Records that already carry tags are left alone. On any error
// the original records are returned so scoring can proceed untagged.
func (t *IntentTagger) TagRecords(ctx context.Context, records []keyword.Record) ([]keyword.Record, error) {
	var untagged []string
	for _, rec := range records {
		if len(rec.Intents) == 0 {
			untagged = append(untagged, rec.Keyword)
		}
	}
	if len(untagged) == 0 {
		return records, nil
	}

	var lines []string
	for _, kw := range untagged {
		lines = append(lines, "- "+kw)
	}
	prompt := fmt.Sprintf(tagPrompt, strings.Join(lines, "\n"))

	var raw string
	var err error
	switch t.provider {
	case "anthropic":
		raw, err = t.callAnthropic(ctx, prompt)
	default:
		raw, err = t.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return records, err
	}

	raw = stripCodeFence(raw)

	var results []tagResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return records, fmt.Errorf("parse llm response: %w\nraw: %s", err, truncateStr(raw, 500))
	}

	tags := make(map[string][]string, len(results))
	for _, r := range results {
		tags[strings.ToLower(r.Keyword)] = r.Intents
	}

	tagged := make([]keyword.Record, len(records))
	copy(tagged, records)
	for i := range tagged {
		if len(tagged[i].Intents) != 0 {
			continue
		}
		if intents, ok := tags[strings.ToLower(tagged[i].Keyword)]; ok {
			tagged[i].Intents = intents
		}
	}
	return tagged, nil
}

func (t *IntentTagger) callOpenAI(ctx context.Context, prompt string) (string, error) {
	baseURL := t.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	payload := map[string]any{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.1,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

func (t *IntentTagger) callAnthropic(ctx context.Context, prompt string) (string, error) {
	baseURL := t.baseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	payload := map[string]any{
		"model":      t.model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", t.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("anthropic status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content returned")
	}
	return result.Content[0].Text, nil
}

// stripCodeFence removes markdown code block wrapping some models add.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw[3:], "\n"); idx >= 0 {
			raw = raw[3+idx+1:]
		}
		if strings.HasSuffix(raw, "```") {
			raw = raw[:len(raw)-3]
		}
		raw = strings.TrimSpace(raw)
	}
	return raw
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

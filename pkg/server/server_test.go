package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kwradar/internal/store"
	"kwradar/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, pipeline.Default(), 0)
}

const analyzeBody = `{
	"keywords": [
		{"keyword": "best coffee grinder", "volume": 4400, "difficulty": 35, "cpc": 1.2, "intents": ["Commercial"]},
		{"keyword": "coffee grinder review", "volume": 900, "difficulty": 28, "cpc": 0.8, "intents": ["Commercial"]},
		{"keyword": "how to clean coffee grinder", "volume": 300, "difficulty": 15, "cpc": 0.3, "intents": ["Informational"]}
	]
}`

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(analyzeBody))
	s.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RunID    int64            `json:"run_id"`
		Keywords []map[string]any `json:"keywords"`
		Clusters []map[string]any `json:"clusters"`
		Ideas    []map[string]any `json:"ideas"`
		Insights []string         `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Greater(t, resp.RunID, int64(0))
	require.Len(t, resp.Keywords, 3)
	require.Len(t, resp.Clusters, 1)
	require.Len(t, resp.Ideas, 1)
	require.NotEmpty(t, resp.Insights)
}

func TestHandleAnalyzeRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"keywords": []}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	badWeights := `{
		"keywords": [{"keyword": "coffee grinder", "volume": 100}],
		"weights": {"volume": 0.5, "difficulty": 0.2, "cpc": 0.1, "intent": 0.1}
	}`
	rec = httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(badWeights)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "weights")
}

func TestHandleAnalyzeWeightOverride(t *testing.T) {
	s := newTestServer(t)

	body := `{
		"keywords": [
			{"keyword": "best coffee grinder", "volume": 4400, "difficulty": 35, "cpc": 1.2},
			{"keyword": "coffee grinder review", "volume": 900, "difficulty": 28, "cpc": 0.8},
			{"keyword": "manual coffee grinder", "volume": 1200, "difficulty": 30, "cpc": 0.9}
		],
		"weights": {"volume": 0.7, "difficulty": 0.1, "cpc": 0.1, "intent": 0.1}
	}`
	rec := httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"volume":0.7`)
}

func TestHandleRunsAndChildren(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleAnalyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(analyzeBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Count)

	rec = httptest.NewRecorder()
	s.handleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?id=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "best coffee grinder")

	rec = httptest.NewRecorder()
	s.handleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?id=999", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.handleKeywords(rec, httptest.NewRequest(http.MethodGet, "/api/v1/keywords?run=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var kwResp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kwResp))
	require.Equal(t, 3, kwResp.Count)

	rec = httptest.NewRecorder()
	s.handleIdeas(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ideas?run=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Review")
}

func TestHandleSuggestionsEmpty(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleSuggestions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suggestions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Count)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25", nil)
	require.Equal(t, 25, queryInt(req, "limit", 50))
	require.Equal(t, 50, queryInt(req, "missing", 50))

	bad := httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	require.Equal(t, 50, queryInt(bad, "limit", 50))
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"kwradar/internal/store"
	"kwradar/pkg/keyword"
	"kwradar/pkg/opportunity"
	"kwradar/pkg/pipeline"
)

// Server provides the HTTP API.
type Server struct {
	store store.Store
	pipe  *pipeline.Pipeline
	port  int
}

// New creates a new HTTP server.
func New(s store.Store, pipe *pipeline.Pipeline, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store: s,
		pipe:  pipe,
		port:  port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/keywords", s.handleKeywords)
	mux.HandleFunc("/api/v1/ideas", s.handleIdeas)
	mux.HandleFunc("/api/v1/suggestions", s.handleSuggestions)

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("kwradar server listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze scores, clusters, and synthesizes ideas for a posted keyword
// batch, persists the run, and returns the full result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Keywords []keyword.Record   `json:"keywords"`
		Weights  map[string]float64 `json:"weights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Keywords) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keywords list is empty"})
		return
	}

	// Per-request weight override; the server config weights are the default.
	pipe := s.pipe
	if req.Weights != nil {
		weights, err := opportunity.WeightsFromMap(req.Weights)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		pipe, err = s.pipe.WithWeights(weights)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	result := pipe.Run(req.Keywords)

	run := &store.Run{
		Source:    "api",
		Weights:   pipe.Weights().Map(),
		QuickWins: result.Summary.QuickWins,
		Insights:  result.Insights,
		Keywords:  result.Keywords,
		Clusters:  result.Clusters,
		Ideas:     result.Ideas,
	}
	if err := s.store.SaveRun(r.Context(), run); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":   run.ID,
		"weights":  run.Weights,
		"summary":  result.Summary,
		"keywords": result.Keywords,
		"clusters": result.Clusters,
		"ideas":    result.Ideas,
		"insights": result.Insights,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
			return
		}
		run, err := s.store.GetRun(r.Context(), id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrNoRuns) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}

	runs, err := s.store.ListRuns(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.KeywordListOpts{Limit: queryInt(r, "limit", 100)}
	if runStr := r.URL.Query().Get("run"); runStr != "" {
		if id, err := strconv.ParseInt(runStr, 10, 64); err == nil {
			opts.RunID = id
		}
	}
	opts.Category = r.URL.Query().Get("category")
	if minStr := r.URL.Query().Get("min_score"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			opts.MinOpportunity = min
		}
	}

	keywords, err := s.store.ListKeywords(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  keywords,
		"count": len(keywords),
	})
}

func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.IdeaListOpts{Limit: queryInt(r, "limit", 50)}
	if runStr := r.URL.Query().Get("run"); runStr != "" {
		if id, err := strconv.ParseInt(runStr, 10, 64); err == nil {
			opts.RunID = id
		}
	}
	if minStr := r.URL.Query().Get("min_score"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			opts.MinScore = min
		}
	}

	ideas, err := s.store.ListIdeas(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  ideas,
		"count": len(ideas),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	suggestions, err := s.store.ListSuggestions(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  suggestions,
		"count": len(suggestions),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

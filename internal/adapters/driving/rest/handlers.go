package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question      string   `json:"question"`
	AllowedCities []string `json:"allowed_cities"`
	FutureOnly    *bool    `json:"future_only"`
}

// SourceResponse describes one event an answer was built from.
type SourceResponse struct {
	domain.EventMetadata
	Excerpt string `json:"excerpt,omitempty"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	ID         string           `json:"id"`
	Answer     string           `json:"answer"`
	Verdict    domain.Verdict   `json:"verdict"`
	Sources    []SourceResponse `json:"sources"`
	SourceUIDs []string         `json:"source_uids"`
}

// RebuildResponse is the body returned by POST /rebuild.
type RebuildResponse struct {
	Status    domain.RebuildStatus  `json:"status"`
	Message   string                `json:"message"`
	DurationS float64               `json:"duration_s"`
	Details   domain.RebuildDetails `json:"details"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "RAG API is running",
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := domain.NewAskRequest(body.Question)
	req.AllowedCities = body.AllowedCities
	if body.FutureOnly != nil {
		req.FutureOnly = *body.FutureOnly
	}

	ans, err := s.ports.Answer.Ask(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("ask: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error while generating the answer")
		return
	}

	resp := AskResponse{
		ID:         ans.ID,
		Answer:     ans.Text,
		Verdict:    ans.Verdict,
		Sources:    make([]SourceResponse, 0, len(ans.Citations)),
		SourceUIDs: ans.Sources,
	}
	if resp.SourceUIDs == nil {
		resp.SourceUIDs = []string{}
	}
	for _, c := range ans.Citations {
		resp.Sources = append(resp.Sources, SourceResponse{EventMetadata: c.Metadata, Excerpt: c.Excerpt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRebuild reports build failures with status "error" and a 200,
// so callers always get the diagnostics.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.ports.Rebuild == nil {
		writeError(w, http.StatusNotImplemented, "rebuild is not configured")
		return
	}

	res, err := s.ports.Rebuild.Rebuild(r.Context())
	switch {
	case errors.Is(err, domain.ErrRebuildInProgress):
		writeError(w, http.StatusConflict, "a rebuild is already running")
		return
	case res == nil:
		logger.Error("rebuild: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error while rebuilding the vectorstore")
		return
	}

	writeJSON(w, http.StatusOK, RebuildResponse{
		Status:    res.Status,
		Message:   res.Message,
		DurationS: res.DurationSeconds(),
		Details:   res.Details,
	})
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"allowed_cities": s.ports.Answer.AllowedCities()})
}

func (s *Server) handleAskHistory(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusNotImplemented, "history is not configured")
		return
	}
	asks, err := s.ports.History.Asks(r.Context(), queryLimit(r))
	if err != nil {
		logger.Error("ask history: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error while reading history")
		return
	}

	type askItem struct {
		ID            string         `json:"id"`
		Question      string         `json:"question"`
		AllowedCities []string       `json:"allowed_cities"`
		FutureOnly    bool           `json:"future_only"`
		Verdict       domain.Verdict `json:"verdict"`
		Sources       []string       `json:"sources"`
		BestDistance  *float64       `json:"best_distance"`
		Relaxed       bool           `json:"relaxed"`
		DurationMS    int64          `json:"duration_ms"`
		Error         string         `json:"error,omitempty"`
		CreatedAt     string         `json:"created_at"`
	}
	items := make([]askItem, len(asks))
	for i, a := range asks {
		items[i] = askItem{
			ID:            a.ID,
			Question:      a.Question,
			AllowedCities: a.AllowedCities,
			FutureOnly:    a.FutureOnly,
			Verdict:       a.Verdict,
			Sources:       a.Sources,
			BestDistance:  a.BestDistance,
			Relaxed:       a.Relaxed,
			DurationMS:    a.Duration.Milliseconds(),
			Error:         a.Error,
			CreatedAt:     a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRebuildHistory(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusNotImplemented, "history is not configured")
		return
	}
	rebuilds, err := s.ports.History.Rebuilds(r.Context(), queryLimit(r))
	if err != nil {
		logger.Error("rebuild history: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error while reading history")
		return
	}
	writeJSON(w, http.StatusOK, rebuilds)
}

// queryLimit reads ?limit=, 0 meaning the store default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/historia-ai/historia/internal/chat"
	"github.com/historia-ai/historia/internal/storage"
)

// NewSearchHandler serves POST /search: embed the query, return the top-10
// closest documents. A failed search is a 500 with a detail string, never an
// empty 200 - an empty result set is a valid, distinct outcome.
func NewSearchHandler(svc Searcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		results, err := svc.Search(r.Context(), req.Query, 0)
		if err != nil {
			logger.Error("search failed", "query", req.Query, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if results == nil {
			results = []storage.DocumentView{}
		}

		writeJSON(w, http.StatusOK, SearchResponse{Results: results})
	}
}

// NewIngestHandler serves POST /ingest: run one ingestion pass over the
// configured source list, then a backfill pass, and confirm.
func NewIngestHandler(ingester Ingester, backfiller Backfiller, sources []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		report := ingester.Ingest(r.Context(), sources)
		updated, err := backfiller.Run(r.Context())
		if err != nil {
			logger.Error("backfill after ingest failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, IngestResponse{
			Message: fmt.Sprintf("ingested %d/%d sources, backfilled %d documents",
				report.Succeeded, report.Total, updated),
		})
	}
}

// NewChatHandler serves POST /chat by forwarding to the LLM collaborator.
func NewChatHandler(responder Responder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		answer, err := responder.Respond(r.Context(), req.Message, req.Language)
		if err != nil {
			if errors.Is(err, chat.ErrDisabled) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			logger.Error("chat failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ChatResponse{Response: answer})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"verisearch/pipeline"

	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

// Runner answers a single query.
type Runner interface {
	Run(ctx context.Context, query string) (pipeline.CompositeResponse, error)
}

// SearchRequest represents the body of POST /search
type SearchRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SearchHandler runs the pipeline for the posted query and returns the
// composite response as JSON.
func SearchHandler(runner Runner, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		var req SearchRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"}, logger)
			return
		}

		if strings.TrimSpace(req.Query) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query parameter is required"}, logger)
			return
		}

		query := req.Query
		resp, err := runner.Run(r.Context(), query)
		switch {
		case errors.Is(err, pipeline.ErrNoResults):
			writeJSON(w, http.StatusOK, errorResponse{Error: err.Error()}, logger)
		case err != nil:
			logger.Error("search_failed", zap.String("query", query), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"}, logger)
		default:
			writeJSON(w, http.StatusOK, resp, logger)
		}
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response_encode_failed", zap.Error(err))
	}
}

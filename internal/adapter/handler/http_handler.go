package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"
)

const maxRequestBody = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	schema graphql.Schema
	store  Pinger
	log    *slog.Logger
}

type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

func NewHTTPHandler(schema graphql.Schema, store Pinger, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{schema: schema, store: store, log: log}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Post("/graphql", h.GraphQL)
	r.Get("/graphql", h.GraphQL)
	// Django-style trailing slash used by some clients.
	r.Post("/graphql/", h.GraphQL)

	return r
}

func (h *HTTPHandler) GraphQL(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest

	if r.Method == http.MethodGet {
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if vars := r.URL.Query().Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody("invalid variables"))
				return
			}
		}
	} else {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
	}

	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing query"))
		return
	}

	start := time.Now()
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	h.log.Debug("graphql request",
		"operation", req.OperationName,
		"errors", len(result.Errors),
		"duration", time.Since(start),
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func errorBody(message string) map[string]any {
	return map[string]any{"errors": []map[string]string{{"message": message}}}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

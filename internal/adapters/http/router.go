package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/saarthi-qa-gateway/internal/config"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
	"github.com/kirillkom/saarthi-qa-gateway/internal/observability/metrics"
)

const (
	maxQueryBodyBytes     = 1 << 20
	missingQuestionError  = "Missing question parameter"
	serviceInfoMessage    = "Intelligent Q&A API Server"
	healthyMessage        = "Q&A system is running"
	answerFailedMessage   = "failed to answer question"
	statsFailedMessage    = "failed to read knowledge base stats"
	methodNotAllowedError = "method not allowed"
)

type RouterOptions struct {
	Metrics *metrics.HTTPServerMetrics
	OpenAPI *openapi3.T
}

type Router struct {
	cfg       config.Config
	answerer  ports.QuestionAnswerer
	inspector ports.KnowledgeInspector
	metrics   *metrics.HTTPServerMetrics
	openAPI   []byte
}

func NewRouter(
	cfg config.Config,
	answerer ports.QuestionAnswerer,
	inspector ports.KnowledgeInspector,
	opts RouterOptions,
) *Router {
	rt := &Router{
		cfg:       cfg,
		answerer:  answerer,
		inspector: inspector,
		metrics:   opts.Metrics,
	}
	if opts.OpenAPI != nil {
		if raw, err := json.Marshal(opts.OpenAPI); err == nil {
			rt.openAPI = raw
		}
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", rt.index)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/query", rt.query)
	mux.HandleFunc("/stats", rt.stats)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	if rt.openAPI != nil {
		mux.HandleFunc("/openapi.json", rt.openAPIDocument)
	}
	if rt.cfg.MCPEnabled {
		mux.Handle("/mcp", newMCPHandler(rt.answerer))
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = corsMiddleware(handler, rt.cfg.CORSAllowedOrigins)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return recoveryMiddleware(handler)
}

func (rt *Router) index(w http.ResponseWriter, _ *http.Request) {
	endpoints := map[string]string{
		"/query":  "POST - Query the Q&A system",
		"/health": "GET - Health check",
		"/stats":  "GET - Knowledge base statistics",
	}
	if rt.cfg.MCPEnabled {
		endpoints["/mcp"] = "POST - MCP tool endpoint (ask_question)"
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Message:           serviceInfoMessage,
		Status:            "running",
		EnhancerAvailable: rt.inspector.Capability().Ready,
		Endpoints:         endpoints,
	})
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: methodNotAllowedError})
		return
	}
	if _, err := rt.inspector.Stats(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, healthResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	available := rt.inspector.Capability().Ready
	writeJSON(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		Message:           healthyMessage,
		EnhancerAvailable: &available,
	})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: methodNotAllowedError})
		return
	}

	var req queryRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)).Decode(&req)
	switch {
	case errors.Is(err, io.EOF):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingQuestionError})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingQuestionError})
		return
	}

	result, err := rt.answerer.Answer(r.Context(), domain.QueryRequest{
		Question:    req.Question,
		TopK:        req.TopK,
		UseEnhancer: req.enhancerRequested(),
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status == http.StatusBadRequest {
			writeJSON(w, status, errorResponse{Error: missingQuestionError})
			return
		}
		writeJSON(w, status, errorResponse{Error: answerFailedMessage, Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, toQueryResponse(result))
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: methodNotAllowedError})
		return
	}
	stats, err := rt.inspector.Stats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorResponse{Error: statsFailedMessage, Details: err.Error()})
		return
	}

	capability := rt.inspector.Capability()
	datasets := rt.cfg.KnowledgeDatasets
	if datasets == nil {
		datasets = []string{}
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalChunks:       stats.TotalChunks,
		Method:            stats.Method,
		EnhancerAvailable: capability.Ready,
		EnhancerProvider:  capability.Provider,
		Datasets:          datasets,
	})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: methodNotAllowedError})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.openAPI)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

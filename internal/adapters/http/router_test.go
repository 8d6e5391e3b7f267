package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/saarthi-qa-gateway/internal/config"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/observability/metrics"
)

type answererFake struct {
	result *domain.QueryResult
	err    error
	calls  []domain.QueryRequest
}

func (f *answererFake) Answer(_ context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.QueryResult{
		Question: req.Question,
		Composition: domain.Composition{
			Outcome: domain.OutcomeDirect,
			Response: domain.EnhancedResponse{
				Answer:     "Based on soil_health: Sandy soil drains fast.",
				Confidence: 0.82,
				Sources:    []domain.SourceSnippet{{Dataset: "soil_health", Chunk: "Sandy soil drains fast.", Relevance: 0.82}},
			},
		},
		NumResults: 4,
	}, nil
}

type inspectorFake struct {
	stats      domain.StoreStats
	err        error
	capability domain.EnhancerCapability
}

func (f inspectorFake) Stats(context.Context) (domain.StoreStats, error) {
	return f.stats, f.err
}

func (f inspectorFake) Capability() domain.EnhancerCapability {
	return f.capability
}

func newTestHandler(cfg config.Config, answerer *answererFake, inspector inspectorFake) http.Handler {
	return NewRouter(cfg, answerer, inspector, RouterOptions{}).Handler()
}

func postQuery(t *testing.T, handler http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var payload map[string]any
	if err := json.NewDecoder(bytes.NewReader(res.Body.Bytes())).Decode(&payload); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
	return res, payload
}

func TestQueryReturnsEnvelope(t *testing.T) {
	answerer := &answererFake{}
	handler := newTestHandler(config.Config{}, answerer, inspectorFake{})

	res, payload := postQuery(t, handler, `{"question":"What grows in sandy soil?","top_k":5}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	for _, key := range []string{"question", "answer", "confidence", "sources", "num_results", "ai_enhanced"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %q in envelope %v", key, payload)
		}
	}
	for _, key := range []string{"general_guidance", "fallback"} {
		if _, ok := payload[key]; ok {
			t.Fatalf("direct envelope must not carry %q: %v", key, payload)
		}
	}
	if payload["num_results"] != float64(4) || payload["confidence"] != 0.82 {
		t.Fatalf("unexpected envelope %v", payload)
	}
	sources := payload["sources"].([]any)
	first := sources[0].(map[string]any)
	if first["relevance"] != 0.82 {
		t.Fatalf("expected numeric relevance, got %v", first["relevance"])
	}
	if _, ok := first["details"]; ok {
		t.Fatalf("empty details should be omitted")
	}
	if len(answerer.calls) != 1 || answerer.calls[0].TopK != 5 || !answerer.calls[0].UseEnhancer {
		t.Fatalf("unexpected forwarded request %+v", answerer.calls)
	}
}

func TestQueryEnhancerFlags(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"question":"q"}`, true},
		{`{"question":"q","use_gemini":false}`, false},
		{`{"question":"q","use_enhancer":false}`, false},
		{`{"question":"q","use_enhancer":true,"use_gemini":false}`, true},
	}
	for _, tc := range cases {
		answerer := &answererFake{}
		handler := newTestHandler(config.Config{}, answerer, inspectorFake{})
		res, _ := postQuery(t, handler, tc.body)
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.body, res.Code)
		}
		if got := answerer.calls[0].UseEnhancer; got != tc.want {
			t.Fatalf("%s: expected use enhancer %v, got %v", tc.body, tc.want, got)
		}
	}
}

func TestQueryFallbackEnvelopeCarriesFlag(t *testing.T) {
	answerer := &answererFake{result: &domain.QueryResult{
		Question: "q",
		Composition: domain.Composition{
			Outcome: domain.OutcomeFallback,
			Response: domain.EnhancedResponse{
				Answer:   "canned",
				Fallback: domain.BoolPtr(true),
			},
		},
	}}
	handler := newTestHandler(config.Config{}, answerer, inspectorFake{})

	_, payload := postQuery(t, handler, `{"question":"q"}`)
	if payload["fallback"] != true || payload["ai_enhanced"] != false {
		t.Fatalf("unexpected fallback envelope %v", payload)
	}
	if sources, ok := payload["sources"].([]any); !ok || len(sources) != 0 {
		t.Fatalf("expected empty sources array, got %v", payload["sources"])
	}
}

func TestQueryRejectsMissingQuestion(t *testing.T) {
	for _, body := range []string{``, `{}`, `{"question":"   "}`} {
		answerer := &answererFake{}
		handler := newTestHandler(config.Config{}, answerer, inspectorFake{})
		res, payload := postQuery(t, handler, body)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, res.Code)
		}
		if payload["error"] != missingQuestionError {
			t.Fatalf("body %q: unexpected error %v", body, payload["error"])
		}
		if len(answerer.calls) != 0 {
			t.Fatalf("body %q: answerer must not be called", body)
		}
	}
}

func TestQueryRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{})
	res, _ := postQuery(t, handler, `{"question":`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryMapsRetrieverFailures(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("vector store exploded"), http.StatusInternalServerError},
		{domain.WrapError(domain.ErrTemporary, "qdrant search", errors.New("connection refused")), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		handler := newTestHandler(config.Config{}, &answererFake{err: tc.err}, inspectorFake{})
		res, payload := postQuery(t, handler, `{"question":"q"}`)
		if res.Code != tc.want {
			t.Fatalf("expected %d, got %d", tc.want, res.Code)
		}
		if payload["error"] != answerFailedMessage {
			t.Fatalf("unexpected error payload %v", payload)
		}
		if details, _ := payload["details"].(string); !strings.Contains(details, tc.err.Error()) {
			t.Fatalf("expected details to carry cause, got %v", payload["details"])
		}
	}
}

func TestQueryRejectsGet(t *testing.T) {
	handler := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/query", nil))
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestHealthReportsStoreProbe(t *testing.T) {
	healthy := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{
		capability: domain.EnhancerCapability{Ready: true, Provider: "gemini"},
	})
	res := httptest.NewRecorder()
	healthy.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
	var payload map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	if res.Code != http.StatusOK || payload["status"] != "healthy" || payload["enhancer_available"] != true {
		t.Fatalf("unexpected health response %d %v", res.Code, payload)
	}

	broken := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{err: errors.New("qdrant unreachable")})
	res = httptest.NewRecorder()
	broken.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
	payload = nil
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	if res.Code != http.StatusInternalServerError || payload["status"] != "error" || payload["message"] != "qdrant unreachable" {
		t.Fatalf("unexpected failing health response %d %v", res.Code, payload)
	}
}

func TestStatsIncludesCapabilityAndDatasets(t *testing.T) {
	handler := newTestHandler(
		config.Config{KnowledgeDatasets: []string{"crop_production", "soil_health"}},
		&answererFake{},
		inspectorFake{
			stats:      domain.StoreStats{TotalChunks: 1284, Method: "qdrant"},
			capability: domain.EnhancerCapability{Ready: false, Provider: "gemini", Reason: "missing key"},
		},
	)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var payload statsResponse
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if payload.TotalChunks != 1284 || payload.Method != "qdrant" || payload.EnhancerAvailable || payload.EnhancerProvider != "gemini" {
		t.Fatalf("unexpected stats %+v", payload)
	}
	if len(payload.Datasets) != 2 {
		t.Fatalf("expected datasets, got %v", payload.Datasets)
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	handler := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	var payload infoResponse
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if payload.Status != "running" || payload.Endpoints["/query"] == "" {
		t.Fatalf("unexpected info %+v", payload)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", res.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	handler := newTestHandler(config.Config{}, &answererFake{}, inspectorFake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	m := metrics.NewHTTPServerMetrics("qa-api")
	handler := NewRouter(config.Config{}, &answererFake{}, inspectorFake{}, RouterOptions{Metrics: m}).Handler()

	postQuery(t, handler, `{"question":"q"}`)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(res.Body.String(), `qa_http_requests_total{method="POST",path="/query",service="qa-api",status="200"} 1`) {
		t.Fatalf("expected query request counted, got:\n%s", res.Body.String())
	}
}

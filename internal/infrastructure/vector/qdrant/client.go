package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

// Client searches a prebuilt Qdrant collection. Points carry the
// snippet in their payload under dataset, chunk (or text) and details.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.SourceSnippet, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.post(ctx, "search", "/points/search", reqBody, &searchResp); err != nil {
		return nil, err
	}

	out := make([]domain.SourceSnippet, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		chunk := getStringPayload(r.Payload, "chunk")
		if chunk == "" {
			chunk = getStringPayload(r.Payload, "text")
		}
		out = append(out, domain.SourceSnippet{
			Dataset:   getStringPayload(r.Payload, "dataset"),
			Chunk:     chunk,
			Details:   getStringPayload(r.Payload, "details"),
			Relevance: r.Score,
		})
	}
	return out, nil
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := c.post(ctx, "count", "/points/count", map[string]any{"exact": true}, &countResp); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) post(ctx context.Context, op, path string, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", op, err)
	}

	url := fmt.Sprintf("%s/collections/%s%s", c.baseURL, c.collection, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "qdrant "+op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := fmt.Errorf("qdrant %s status: %s", op, resp.Status)
		if msg := strings.TrimSpace(string(body)); msg != "" {
			statusErr = fmt.Errorf("qdrant %s status: %s: %s", op, resp.Status, msg)
		}
		if resp.StatusCode >= 500 {
			return domain.WrapError(domain.ErrTemporary, "qdrant "+op, statusErr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

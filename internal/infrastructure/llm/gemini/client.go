// Package gemini completes enhancer prompts with Google Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL         string
	Temperature     *float32
	MaxOutputTokens int32
}

type Client struct {
	client *genai.Client
	model  string
	config Config
}

func New(ctx context.Context, model string, cfg Config) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client: client,
		model:  model,
		config: cfg,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.generateConfig())
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &llm.StatusError{
				Provider:   "gemini",
				Operation:  "generate content",
				StatusCode: apiErr.Code,
				Status:     apiErr.Status,
				Body:       apiErr.Message,
			}
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate content: no text in response%s", finishReason(resp))
	}
	return text, nil
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if c.config.Temperature != nil {
		config.Temperature = genai.Ptr(*c.config.Temperature)
	}
	if c.config.MaxOutputTokens > 0 {
		config.MaxOutputTokens = c.config.MaxOutputTokens
	}
	return config
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	if reason := resp.Candidates[0].FinishReason; reason != "" {
		return fmt.Sprintf(" (finish reason %s)", reason)
	}
	return ""
}

// Package openaicompat completes enhancer prompts against OpenAI-compatible chat APIs.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey      string
	BaseURL     string
	Temperature *float64
}

type Client struct {
	client *openai.Client
	model  shared.ChatModel
	config Config
}

func New(model string, cfg Config) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Fallback answers replace retries.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &Client{
		client: &client,
		model:  shared.ChatModel(model),
		config: cfg,
	}, nil
}

func (c *Client) Model() string {
	return string(c.model)
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.config.Temperature != nil {
		params.Temperature = openai.Float(*c.config.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &llm.StatusError{
				Provider:   "openai",
				Operation:  "chat completion",
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Message,
			}
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

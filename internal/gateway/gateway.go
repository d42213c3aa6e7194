// Copyright 2025 Aura Wellness Engine Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gateway is the single choke-point for calling the generative
// backend. It performs exactly one attempt per call with a bounded timeout
// and classifies failures; retry policy belongs to the orchestrator so each
// feature can choose its own budget.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// DefaultRefusalPhrases flags responses where the backend declined to
// answer. Phrase matching is configuration data, not logic: deployments
// override the list as backend behavior evolves.
var DefaultRefusalPhrases = []string{
	"i'm sorry, but i can't",
	"i cannot assist with",
	"i can't help with",
	"i am unable to provide",
	"as an ai, i cannot",
}

// completer abstracts the go-openai client for tests
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the go-openai client with timeout and failure classification
type Client struct {
	api            completer
	logger         *zap.Logger
	timeout        time.Duration
	refusalPhrases []string
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout bounds each model call
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithRefusalPhrases replaces the refusal detection phrase list
func WithRefusalPhrases(phrases []string) Option {
	return func(c *Client) {
		if len(phrases) > 0 {
			c.refusalPhrases = phrases
		}
	}
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// withCompleter swaps the backend, for tests
func withCompleter(api completer) Option {
	return func(c *Client) { c.api = api }
}

// NewClient creates a gateway client for the given API key and endpoint.
// An empty endpoint uses the backend's default.
func NewClient(apiKey, endpoint string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	c := &Client{
		api:            openai.NewClientWithConfig(cfg),
		logger:         zap.NewNop(),
		timeout:        resilience.DefaultModelTimeout,
		refusalPhrases: DefaultRefusalPhrases,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete performs a single chat completion and returns the raw response
// text. Failures come back classified as model_unavailable or model_refused;
// the gateway never retries and never mutates shared state.
func (c *Client) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Messages:    buildMessages(p),
	}

	c.logger.Debug("Calling generative backend",
		zap.String("model", p.Model),
		zap.Float64("temperature", float64(p.Temperature)),
		zap.Int("max_tokens", p.MaxTokens),
		zap.Bool("vision", p.Image != nil),
	)

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", resilience.NewModelUnavailableError("backend returned no choices", nil)
	}

	content := resp.Choices[0].Message.Content
	if c.isRefusal(content) {
		c.logger.Warn("Backend refused to answer",
			zap.String("model", p.Model),
			zap.String("preview", truncate(content, 120)))
		return "", resilience.NewModelRefusedError("backend declined to answer")
	}

	c.logger.Debug("Model call completed",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return content, nil
}

// buildMessages assembles the chat messages, attaching an inline image part
// for vision prompts
func buildMessages(p prompt.Prompt) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if p.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.SystemMessage,
		})
	}

	if p.Image == nil {
		return append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: p.UserMessage,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: p.UserMessage,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", p.Image.MediaType, p.Image.Base64),
				},
			},
		},
	})
}

// classify maps transport and API errors onto the pipeline taxonomy
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return resilience.NewModelUnavailableError("model call timed out", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return resilience.NewModelUnavailableError(
				fmt.Sprintf("backend error (status %d)", apiErr.HTTPStatusCode), err)
		default:
			return resilience.NewModelUnavailableError(
				fmt.Sprintf("backend rejected request (status %d)", apiErr.HTTPStatusCode), err)
		}
	}

	return resilience.NewModelUnavailableError("model call failed", err)
}

// isRefusal checks the response text against the configured phrase list
func (c *Client) isRefusal(content string) bool {
	lowered := strings.ToLower(content)
	for _, phrase := range c.refusalPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + "..."
}

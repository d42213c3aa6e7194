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

package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// mockCompleter captures the outbound request and returns a canned response
type mockCompleter struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
	delay   time.Duration
}

func (m *mockCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastReq = req
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return openai.ChatCompletionResponse{}, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	return m.resp, m.err
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func newTestClient(t *testing.T, mock *mockCompleter, opts ...Option) *Client {
	t.Helper()
	opts = append(opts, withCompleter(mock))
	c, err := NewClient("test-key", "", opts...)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Error("Expected error for empty API key")
	}
}

func TestCompleteReturnsContent(t *testing.T) {
	mock := &mockCompleter{resp: textResponse(`{"prediction": "good"}`)}
	c := newTestClient(t, mock)

	got, err := c.Complete(context.Background(), prompt.Prompt{
		SystemMessage: "You are an astrologer.",
		UserMessage:   "Read for Leo.",
		Model:         "gpt-4o",
		Temperature:   0.7,
		MaxTokens:     500,
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if got != `{"prediction": "good"}` {
		t.Errorf("Unexpected content: %q", got)
	}

	if mock.lastReq.Model != "gpt-4o" || mock.lastReq.MaxTokens != 500 {
		t.Error("Expected generation parameters to carry through")
	}
	if len(mock.lastReq.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(mock.lastReq.Messages))
	}
	if mock.lastReq.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("Expected first message to be system, got %s", mock.lastReq.Messages[0].Role)
	}
}

func TestCompleteVisionAttachesImagePart(t *testing.T) {
	mock := &mockCompleter{resp: textResponse("{}")}
	c := newTestClient(t, mock)

	_, err := c.Complete(context.Background(), prompt.Prompt{
		UserMessage: "Read this palm.",
		Model:       "gpt-4o",
		Image:       &prompt.Image{MediaType: "image/jpeg", Base64: "aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	userMsg := mock.lastReq.Messages[len(mock.lastReq.Messages)-1]
	if len(userMsg.MultiContent) != 2 {
		t.Fatalf("Expected text + image parts, got %d", len(userMsg.MultiContent))
	}
	imagePart := userMsg.MultiContent[1]
	if imagePart.Type != openai.ChatMessagePartTypeImageURL {
		t.Errorf("Expected image part, got %s", imagePart.Type)
	}
	if !strings.HasPrefix(imagePart.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Errorf("Expected data URL, got %q", imagePart.ImageURL.URL)
	}
}

func TestCompleteClassifiesAPIErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "rate limited", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}},
		{name: "server error", err: &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}},
		{name: "bad request", err: &openai.APIError{HTTPStatusCode: http.StatusBadRequest}},
		{name: "transport failure", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &mockCompleter{err: tt.err})
			_, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"})
			if !resilience.IsKind(err, resilience.KindModelUnavailable) {
				t.Errorf("Expected model_unavailable, got %v", err)
			}
		})
	}
}

func TestCompleteTimesOut(t *testing.T) {
	mock := &mockCompleter{resp: textResponse("{}"), delay: time.Second}
	c := newTestClient(t, mock, WithTimeout(10*time.Millisecond))

	_, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"})
	if !resilience.IsKind(err, resilience.KindModelUnavailable) {
		t.Errorf("Expected model_unavailable on timeout, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := newTestClient(t, &mockCompleter{})

	_, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"})
	if !resilience.IsKind(err, resilience.KindModelUnavailable) {
		t.Errorf("Expected model_unavailable for empty choices, got %v", err)
	}
}

func TestCompleteDetectsRefusal(t *testing.T) {
	mock := &mockCompleter{resp: textResponse("I'm sorry, but I can't predict the future for you.")}
	c := newTestClient(t, mock)

	_, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"})
	if !resilience.IsKind(err, resilience.KindModelRefused) {
		t.Errorf("Expected model_refused, got %v", err)
	}
}

func TestCompleteCustomRefusalPhrases(t *testing.T) {
	mock := &mockCompleter{resp: textResponse("Lo siento, no puedo ayudar con eso.")}
	c := newTestClient(t, mock, WithRefusalPhrases([]string{"no puedo ayudar"}))

	_, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"})
	if !resilience.IsKind(err, resilience.KindModelRefused) {
		t.Errorf("Expected model_refused with custom phrases, got %v", err)
	}

	// Default phrases no longer apply once replaced
	mock.resp = textResponse("I'm sorry, but I can't do that.")
	if _, err := c.Complete(context.Background(), prompt.Prompt{UserMessage: "hi", Model: "gpt-4o"}); err != nil {
		t.Errorf("Expected default phrase to be ignored after override, got %v", err)
	}
}

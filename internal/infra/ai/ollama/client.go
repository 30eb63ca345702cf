package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/ai/prompt"
)

const defaultModel = "llama3:8b"

// Client talks to a local Ollama instance through its OpenAI-compatible
// endpoint. Assistant answers can take a while on CPU-bound hosts, so the
// timeout here is deliberately generous.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the key but the client requires one
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &Client{api: openai.NewClientWithConfig(cfg), model: model, timeout: timeout}
}

// Ask sends one question, optionally with a photo, and returns the reply text.
func (c *Client) Ask(ctx context.Context, message, imageBase64 string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message}
	if imageBase64 != "" {
		user = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: message},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL: "data:image/jpeg;base64," + imageBase64,
				}},
			},
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.AssistantSystem},
			user,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %v: %w", err, analysis.ErrUpstreamUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no choices: %w", analysis.ErrUpstreamUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

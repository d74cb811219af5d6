package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

// Completer sends one system + user exchange to a model and returns the
// reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyResponse indicates the model returned no text.
var ErrEmptyResponse = errors.New("empty model response")

const (
	maxTokens   = 1024
	temperature = 0.3
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAICompleter talks to any OpenAI-compatible chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter returns a completer for model. An empty baseURL means
// api.openai.com.
func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicCompleter talks to the Anthropic Messages API. SDK retries are
// disabled so a run issues at most one request.
type AnthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicCompleter returns a completer for model.
func NewAnthropicCompleter(apiKey, baseURL, model string) *AnthropicCompleter {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicCompleter{client: anthropic.NewClient(opts...), model: anthropic.Model(model)}
}

// Complete implements Completer.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

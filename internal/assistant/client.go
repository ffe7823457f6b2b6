// Package assistant talks to an OpenAI-compatible chat completion endpoint
// and keeps the chat transcript shown next to the transactions.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	applog "spendlog/internal/log"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.5
)

var (
	ErrMissingAPIKey = errors.New("assistant API key is not configured")
	ErrEmptyResponse = errors.New("assistant returned no choices")
	ErrRequestFailed = errors.New("assistant request failed")
)

const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces the assistant's reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
	Configured() bool
}

// ServerError carries the message the endpoint put in its error body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

type Client struct {
	api         *openai.Client
	configured  bool
	model       string
	maxTokens   int
	temperature float32
}

// NewClient fills unset fields with the Groq defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		configured:  strings.TrimSpace(cfg.APIKey) != "",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *Client) Configured() bool { return c.configured }

func (c *Client) Complete(ctx context.Context, system string, history []Message) (string, error) {
	if !c.configured {
		return "", ErrMissingAPIKey
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", c.translate(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	slog.DebugContext(ctx, "Assistant replied",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) translate(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &ServerError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	slog.WarnContext(ctx, "Assistant request failed",
		applog.FieldComponent, applog.ComponentAssistant,
		applog.FieldErrorType, applog.ErrorTypeNetwork,
		"model", c.model,
		applog.FieldError, err)
	return ErrRequestFailed
}

var _ Completer = (*Client)(nil)

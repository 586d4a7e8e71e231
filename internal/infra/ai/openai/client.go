package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryanwahyu/automaton-a11y/internal/domain/ai"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/ai/prompt"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL     = "https://models.inference.ai.azure.com"
	DefaultModel       = "gpt-4.1"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 8000
	DefaultTimeout     = 60 * time.Second
)

// Options configure the chat-completion client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL     string
	Token       string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
	MaxTokens   int

	token string
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.Token)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &bodyCapturingTransport{base: http.DefaultTransport},
	}

	c := &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		token:       opts.Token,
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// Complete sends a single request. There is no retry.
func (c *Client) Complete(ctx context.Context, userPrompt string) (string, error) {
	if c.token == "" {
		return "", ai.ErrMissingCredential
	}

	capture := &capturedBody{}
	ctx = context.WithValue(ctx, captureKey{}, capture)

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err, capture)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// mapError turns a provider status error into *ai.StatusError carrying the raw body.
func mapError(err error, capture *capturedBody) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		return fmt.Errorf("failed to create chat completion: %w", err)
	}

	body := capture.body
	if body == nil && reqErr != nil {
		body = reqErr.Body
	}
	if body == nil && apiErr != nil {
		body = []byte(apiErr.Message)
	}
	return &ai.StatusError{StatusCode: status, Body: string(body)}
}

type captureKey struct{}

type capturedBody struct {
	body []byte
}

// bodyCapturingTransport keeps a copy of every non-200 response body for the
// request's capturedBody, so error reports can quote the provider verbatim.
type bodyCapturingTransport struct {
	base http.RoundTripper
}

func (t *bodyCapturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode == http.StatusOK {
		return resp, err
	}
	capture, ok := req.Context().Value(captureKey{}).(*capturedBody)
	if !ok {
		return resp, nil
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	capture.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

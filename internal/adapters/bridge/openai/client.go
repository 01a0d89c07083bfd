package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	completionPath = "chat/completions"

	maxResponseBytes = 1 << 20
)

// Client talks to an OpenAI-compatible chat completion endpoint. Structured
// refusals surface as *domain.BlockedError, everything else that goes wrong
// as *domain.ServiceError.
type Client struct {
	BaseURL        string
	APIKey         string
	Model          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.ModelBridge = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
		Refusal string `json:"refusal"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, history []domain.Turn) (string, error) {
	if len(history) == 0 {
		return "", &domain.ServiceError{Cause: errors.New("call history is empty")}
	}

	endpoint, err := buildAPIURL(c.baseURL(), completionPath)
	if err != nil {
		return "", &domain.ServiceError{Cause: err}
	}

	payload := chatRequest{Model: c.model(), Messages: toMessages(history)}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &domain.ServiceError{Cause: fmt.Errorf("encode completion request: %w", err)}
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &domain.ServiceError{Cause: fmt.Errorf("create completion request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &domain.ServiceError{Cause: fmt.Errorf("request completion: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", decodeAPIError(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return "", &domain.ServiceError{Cause: fmt.Errorf("decode completion response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &domain.ServiceError{Cause: errors.New("completion response has no choices")}
	}

	choice := parsed.Choices[0]
	if choice.Message.Refusal != "" {
		return "", &domain.BlockedError{Reason: choice.Message.Refusal}
	}
	if choice.FinishReason == "content_filter" {
		return "", &domain.BlockedError{Reason: "content filtered"}
	}
	if choice.Message.Content == "" {
		return "", &domain.ServiceError{Cause: errors.New("completion response has no content")}
	}
	return choice.Message.Content, nil
}

func toMessages(history []domain.Turn) []chatMessage {
	messages := make([]chatMessage, 0, len(history))
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: string(turn.Speaker), Content: turn.Text})
	}
	return messages
}

// decodeAPIError classifies a non-2xx response: content-policy rejections are
// refusals, everything else a service failure.
func decodeAPIError(resp *http.Response) error {
	var apiErr apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&apiErr); err != nil {
		return &domain.ServiceError{Cause: fmt.Errorf("completion request failed: status %d", resp.StatusCode)}
	}

	if apiErr.Error.Code == "content_policy_violation" || apiErr.Error.Type == "content_policy_violation" {
		return &domain.BlockedError{Reason: apiErr.Error.Message}
	}

	message := apiErr.Error.Message
	if message == "" {
		return &domain.ServiceError{Cause: fmt.Errorf("completion request failed: status %d", resp.StatusCode)}
	}
	return &domain.ServiceError{Cause: fmt.Errorf("completion request failed: %s", message)}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) model() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModel
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, requestTimeout)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return parsed.JoinPath(path).String(), nil
}

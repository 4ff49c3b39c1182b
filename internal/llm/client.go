package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatRequest holds the parameters for one chat-completion call.
type ChatRequest struct {
	Kind         CallKind
	APIKey       string
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses Config.Temperature
	MaxTokens    *int     // nil uses Config.MaxTokens
	JSONObject   bool     // ask the endpoint to constrain output to one JSON object
}

// ChatResponse holds the result of a chat-completion call.
type ChatResponse struct {
	RequestID    string
	Text         string
	Model        string
	FinishReason string
	LatencyMs    int64
}

// ChatClient sends chat-completion requests to a remote model.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// httpChatClient implements ChatClient against an OpenAI-compatible
// /chat/completions endpoint.
type httpChatClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewChatClient creates a ChatClient for cfg.Endpoint.
func NewChatClient(cfg Config, observer Observer) ChatClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpChatClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequestBody is the JSON body sent to POST /chat/completions.
type chatRequestBody struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResponseBody is the JSON body returned by POST /chat/completions.
type chatResponseBody struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (c *httpChatClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()

	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrNoCredential
	}

	temp := c.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := c.cfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	body := chatRequestBody{
		Model:       c.cfg.Model,
		Temperature: temp,
		MaxTokens:   maxTok,
		Stream:      false,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.UserPrompt})
	if req.JSONObject {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var lastErr error
	attempts := 0
	for attempts < 1+c.cfg.MaxRetries {
		attempts++
		resp, err := c.attempt(ctx, req.APIKey, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				RequestID: requestID,
				Kind:      req.Kind,
				Model:     c.cfg.Model,
				LatencyMs: latency,
				Attempts:  attempts,
				Success:   true,
			})
			resp.RequestID = requestID
			resp.LatencyMs = latency
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	err := classify(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		RequestID: requestID,
		Kind:      req.Kind,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  attempts,
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return nil, err
}

// attempt performs one HTTP exchange under its own timeout.
func (c *httpChatClient) attempt(ctx context.Context, apiKey string, body chatRequestBody) (*ChatResponse, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, httpResp.StatusCode)
	case httpResp.StatusCode != http.StatusOK:
		return nil, &statusError{Code: httpResp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var resp chatResponseBody
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &ChatResponse{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}

func retryable(err error) bool {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se.retryable()
	case errors.Is(err, ErrTimeout), isConnectionError(err):
		return true
	default:
		return false
	}
}

// classify maps the last attempt error onto the package sentinels.
func classify(ctx context.Context, err error) error {
	var se *statusError
	switch {
	case ctx.Err() != nil, errors.Is(err, ErrTimeout):
		return ErrTimeout
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrEmptyResponse):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.As(err, &se) && !se.retryable():
		return fmt.Errorf("%w: %v", ErrRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds one message round-trip.
const DefaultRequestTimeout = 30 * time.Second

// envelope is the wire frame every message travels in.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// response is the collaborator's uniform reply frame.
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HTTPClient implements Client over a single message endpoint with bearer
// auth, mirroring the collaborator's runtime message dispatch.
type HTTPClient struct {
	log      *zap.Logger
	http     *http.Client
	endpoint string
	token    string
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient substitutes the underlying transport, mainly for tests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.http = c }
}

// NewHTTPClient creates a message client for the given endpoint. token is
// the bearer token identifying the user; it is sent verbatim.
func NewHTTPClient(log *zap.Logger, endpoint, token string, opts ...HTTPOption) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	h := &HTTPClient{
		log:      log,
		http:     &http.Client{Timeout: DefaultRequestTimeout},
		endpoint: endpoint,
		token:    token,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Token returns the configured bearer token. Identity resolution reads the
// user ID out of it without verification.
func (h *HTTPClient) Token() string { return h.token }

// DropdownData fetches companies and CVs for the tracking dropdowns.
func (h *HTTPClient) DropdownData(ctx context.Context) (DropdownData, error) {
	var data DropdownData
	if err := h.send(ctx, MsgGetDropdownData, nil, &data); err != nil {
		return DropdownData{}, err
	}
	return data, nil
}

// SaveTrackedApplication syncs the application record and its questions out.
func (h *HTTPClient) SaveTrackedApplication(ctx context.Context, req SaveRequest) error {
	return h.send(ctx, MsgSaveTrackedApplication, req, nil)
}

// AnswersBatch requests answers for all questions in one call.
func (h *HTTPClient) AnswersBatch(ctx context.Context, req BatchAnswerRequest) ([]string, error) {
	var answers []string
	if err := h.send(ctx, MsgAutoFillGetAnswersBatch, req, &answers); err != nil {
		return nil, err
	}
	if len(answers) != len(req.Questions) {
		return nil, fmt.Errorf("%s: answer count mismatch: got %d, want %d",
			MsgAutoFillGetAnswersBatch, len(answers), len(req.Questions))
	}
	return answers, nil
}

// Answer requests a single fallback answer.
func (h *HTTPClient) Answer(ctx context.Context, req SingleAnswerRequest) (string, error) {
	var answer string
	if err := h.send(ctx, MsgAutoFillGetAnswer, req, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// send posts one enveloped message and decodes the uniform reply. out may be
// nil for messages whose reply carries no data.
func (h *HTTPClient) send(ctx context.Context, msgType string, payload any, out any) error {
	env := envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode payload: %w", msgType, err)
		}
		env.Payload = raw
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%s: encode message: %w", msgType, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", msgType, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", msgType, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", msgType, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", msgType, resp.StatusCode)
	}

	var reply response
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("%s: decode response: %w", msgType, err)
	}
	if !reply.Success {
		if reply.Error == "" {
			reply.Error = "collaborator reported failure"
		}
		return fmt.Errorf("%s: %s", msgType, reply.Error)
	}
	if out != nil && len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", msgType, err)
		}
	}

	h.log.Debug("bridge message completed", zap.String("type", msgType))
	return nil
}

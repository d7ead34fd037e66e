package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/equipbook/bookings-mcp/internal/common"
	"github.com/equipbook/bookings-mcp/internal/config"
)

// Executor issues HTTP requests against the upstream bookings API.
// The shared http.Client is safe for concurrent use; everything else
// is read-only after construction.
type Executor struct {
	baseURL           string
	httpClient        *http.Client
	logger            *common.Logger
	headers           http.Header
	timeout           time.Duration
	maxResponseBytes  int64
	maxErrorBodyBytes int64
}

// NewExecutor creates an executor targeting the configured API.
// Static headers (bearer token plus any configured extras) are applied
// to every request.
func NewExecutor(cfg *config.Config, logger *common.Logger) *Executor {
	headers := make(http.Header)
	if cfg.API.BearerToken != "" {
		headers.Set("Authorization", "Bearer "+cfg.API.BearerToken)
	}
	for key, val := range cfg.API.Headers {
		headers.Set(key, val)
	}

	maxResponse := cfg.API.MaxResponseBytes
	if maxResponse <= 0 {
		maxResponse = 4 << 20
	}
	maxErrorBody := cfg.API.MaxErrorBodyBytes
	if maxErrorBody <= 0 {
		maxErrorBody = 8 << 10
	}

	return &Executor{
		baseURL:           strings.TrimRight(cfg.API.URL, "/"),
		httpClient:        &http.Client{},
		logger:            logger,
		headers:           headers,
		timeout:           cfg.API.GetTimeout(),
		maxResponseBytes:  maxResponse,
		maxErrorBodyBytes: maxErrorBody,
	}
}

// BaseURL returns the configured API base URL.
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Timeout returns the per-call timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute issues exactly one HTTP request for the descriptor and normalizes
// the outcome into a Result. Transport failures and timeouts become
// network_error; status >= 400 becomes api_error with a truncated body;
// anything else is a success carrying the parsed payload.
func (e *Executor) Execute(ctx context.Context, rd *RequestDescriptor) Result {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var bodyReader io.Reader
	if rd.Body != nil {
		jsonData, err := json.Marshal(rd.Body)
		if err != nil {
			return failureResult(&CallError{Kind: KindNetwork, Message: fmt.Sprintf("failed to marshal request body: %v", err), Err: err})
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, rd.Method, e.baseURL+rd.Path, bodyReader)
	if err != nil {
		return failureResult(&CallError{Kind: KindNetwork, Message: fmt.Sprintf("failed to build request: %v", err), Err: err})
	}
	if rd.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, vals := range e.headers {
		for _, v := range vals {
			req.Header.Set(key, v)
		}
	}

	e.logger.Debug().Str("method", rd.Method).Str("path", rd.Path).Msg("api request")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		e.logger.Error().Str("method", rd.Method).Str("path", rd.Path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("api request failed")
		return failureResult(e.classifyTransportError(err, duration))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxResponseBytes))
	if err != nil {
		return failureResult(&CallError{Kind: KindNetwork, Message: fmt.Sprintf("failed to read response: %v", err), Err: err})
	}

	e.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("api response")

	if resp.StatusCode >= 400 {
		return failureResult(e.apiError(resp.StatusCode, body))
	}

	return successResult(resp.StatusCode, parsePayload(body))
}

// classifyTransportError distinguishes timeouts from other transport failures.
func (e *Executor) classifyTransportError(err error, duration time.Duration) *CallError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("request timed out after %s", duration.Round(time.Millisecond)),
			Err:     err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &CallError{Kind: KindNetwork, Message: "request cancelled", Err: err}
	}
	return &CallError{Kind: KindNetwork, Message: fmt.Sprintf("request failed: %v", err), Err: err}
}

// apiError builds an api_error from a >= 400 response, keeping a bounded
// slice of the body for diagnosis.
func (e *Executor) apiError(status int, body []byte) *CallError {
	truncated := body
	if int64(len(truncated)) > e.maxErrorBodyBytes {
		truncated = truncated[:e.maxErrorBodyBytes]
	}

	msg := extractErrorMessage(truncated)
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &CallError{
		Kind:    KindAPI,
		Message: msg,
		Status:  status,
		Body:    string(truncated),
	}
}

// extractErrorMessage pulls a human-readable message out of a JSON error
// body. The bookings API reports {"detail": ...}; other servers use
// {"error": ...}.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &errResp) != nil {
		return ""
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	if len(errResp.Detail) > 0 {
		var s string
		if json.Unmarshal(errResp.Detail, &s) == nil {
			return s
		}
		return string(errResp.Detail)
	}
	return ""
}

// parsePayload returns the decoded JSON value for JSON bodies,
// or the raw text otherwise.
func parsePayload(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		return payload
	}
	return string(body)
}

// Package dispatch executes the backend API calls attached to catalog
// actions.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sahayakhq/sahayak/pkg/models"
	"github.com/sahayakhq/sahayak/pkg/template"
)

const (
	defaultTimeout = 30 * time.Second
	retryAttempts  = 2
)

// ErrServerError is returned when a call exhausts its retries on 5xx
// responses.
var ErrServerError = errors.New("server error during api call")

// Result captures the outcome of one API call.
type Result struct {
	StatusCode int
	Body       any
	Payload    any
}

// Dispatcher renders each call's path, headers, and payload against the
// collected form bindings and performs the requests in order.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewDispatcher(baseURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("module", "dispatch"),
	}
}

// Execute runs every call of the endpoint in order and returns the last
// result. A failing call aborts the sequence; its rendered payload is
// returned alongside the error so callers can report what was sent.
func (d *Dispatcher) Execute(ctx context.Context, endpoint *models.APIEndpoint, bindings map[string]any) (*Result, error) {
	var result *Result

	for _, call := range endpoint.APIDetails {
		var err error

		result, err = d.executeCall(ctx, &call, bindings)
		if err != nil {
			return result, fmt.Errorf("api call %s %s failed: %w", call.HTTPMethod, call.EndpointPath, err)
		}
	}

	return result, nil
}

func (d *Dispatcher) executeCall(ctx context.Context, call *models.APICallDetail, bindings map[string]any) (*Result, error) {
	payload := template.Substitute(call.RequestPayloadTemplate, bindings)
	result := &Result{Payload: payload}

	var lastErr error

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if attempt > 1 {
			d.logger.InfoContext(ctx, "Retrying API call",
				"attempt", attempt, "path", call.EndpointPath)
		}

		req, err := d.buildRequest(ctx, call, payload, bindings)
		if err != nil {
			return result, err
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request failed: %w", err)

			continue
		}

		if resp.StatusCode >= 500 && attempt < retryAttempts {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %w", resp.StatusCode, ErrServerError)

			continue
		}

		return d.processResponse(ctx, resp, result)
	}

	return result, lastErr
}

func (d *Dispatcher) buildRequest(ctx context.Context, call *models.APICallDetail, payload any, bindings map[string]any) (*http.Request, error) {
	var body io.Reader = strings.NewReader("")

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	url := template.SubstituteString(call.EndpointPath, bindings)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = d.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, call.HTTPMethod, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range call.Headers {
		req.Header.Set(key, template.SubstituteString(value, bindings))
	}

	return req, nil
}

func (d *Dispatcher) processResponse(ctx context.Context, resp *http.Response, result *Result) (*Result, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response body: %w", err)
	}

	var body any
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		body = string(bodyBytes)
	}

	result.StatusCode = resp.StatusCode
	result.Body = body

	if resp.StatusCode >= 400 {
		d.logger.WarnContext(ctx, "API call returned error status",
			"status", resp.StatusCode)

		return result, fmt.Errorf("status %d: %w", resp.StatusCode, ErrServerError)
	}

	d.logger.InfoContext(ctx, "API call completed",
		"status", resp.StatusCode, "body_length", len(bodyBytes))

	return result, nil
}

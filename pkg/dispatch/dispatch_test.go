package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/models"
)

func loginEndpoint() *models.APIEndpoint {
	return &models.APIEndpoint{
		ID:   "login-api",
		Type: "REST",
		APIDetails: []models.APICallDetail{
			{
				HTTPMethod:   http.MethodPost,
				EndpointPath: "/api/login",
				Headers:      map[string]string{"X-Request-Source": "{{source}}"},
				RequestPayloadTemplate: map[string]any{
					"username": "{{username}}",
					"password": "{{password}}",
				},
			},
		},
	}
}

func TestExecute_RendersPayloadAndHeaders(t *testing.T) {
	var gotPath, gotSource string

	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSource = r.Header.Get("X-Request-Source")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "abc123"})
	}))
	defer server.Close()

	dispatcher := NewDispatcher(server.URL, slog.Default())

	result, err := dispatcher.Execute(context.Background(), loginEndpoint(), map[string]any{
		"username": "alice",
		"password": "s3cret",
		"source":   "mobile-app",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/login", gotPath)
	assert.Equal(t, "mobile-app", gotSource)
	assert.Equal(t, map[string]string{"username": "alice", "password": "s3cret"}, gotBody)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, map[string]any{"token": "abc123"}, result.Body)
}

func TestExecute_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	dispatcher := NewDispatcher(server.URL, slog.Default())

	result, err := dispatcher.Execute(context.Background(), loginEndpoint(), map[string]any{
		"username": "alice", "password": "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestExecute_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
	}))
	defer server.Close()

	dispatcher := NewDispatcher(server.URL, slog.Default())

	result, err := dispatcher.Execute(context.Background(), loginEndpoint(), map[string]any{
		"username": "alice", "password": "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// The rendered payload survives the failure so the caller can report it.
	require.NotNil(t, result)
	assert.Equal(t, map[string]any{"username": "alice", "password": "wrong"}, result.Payload)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
}

func TestExecute_AbsoluteURLBypassesBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	endpoint := &models.APIEndpoint{
		ID: "external-api",
		APIDetails: []models.APICallDetail{
			{HTTPMethod: http.MethodGet, EndpointPath: server.URL + "/health"},
		},
	}

	dispatcher := NewDispatcher("http://unreachable.invalid", slog.Default())

	result, err := dispatcher.Execute(context.Background(), endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestExecute_SequentialCallsReturnLastResult(t *testing.T) {
	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	defer server.Close()

	endpoint := &models.APIEndpoint{
		ID: "chained-api",
		APIDetails: []models.APICallDetail{
			{HTTPMethod: http.MethodPost, EndpointPath: "/api/first"},
			{HTTPMethod: http.MethodPost, EndpointPath: "/api/second"},
		},
	}

	dispatcher := NewDispatcher(server.URL, slog.Default())

	result, err := dispatcher.Execute(context.Background(), endpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/first", "/api/second"}, paths)
	assert.Equal(t, map[string]any{"path": "/api/second"}, result.Body)
}

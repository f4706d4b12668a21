package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/summarizer"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sentences = []string{
	"The central bank raised interest rates by half a point on Tuesday.",
	"Markets fell sharply after the central bank announced the rate decision.",
	"Analysts had expected a smaller increase in interest rates.",
	"Bank officials said further rate increases remain possible.",
	"Weather stayed mild and sunny.",
}

func setupTestServer(t *testing.T, opts ...func(*Config)) *Server {
	t.Helper()
	svc, err := summarizer.New(summarizer.DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	server, err := NewServer(svc, zap.NewNop(), cfg)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNewServer(t *testing.T) {
	svc, err := summarizer.New(summarizer.DefaultConfig())
	require.NoError(t, err)

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(svc, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9191, server.config.Port)
		assert.NotNil(t, server.Echo())
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(svc, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when summarizer is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "summarizer cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHandleSummarize(t *testing.T) {
	t.Run("selects top sentences", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{
			WeightsRequest: WeightsRequest{Sentences: sentences},
			TopK:           intPtr(2),
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp SummarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		require.Len(t, resp.Indices, 2)
		assert.Less(t, resp.Indices[0], resp.Indices[1])
		assert.Len(t, resp.Weights, len(sentences))
		assert.Len(t, resp.Ranking, len(sentences))
		assert.Len(t, resp.Components, 4)
		assert.Equal(t, strings.Join(resp.Sentences, " "), resp.Summary)
		assert.Empty(t, resp.Warnings)
	})

	t.Run("segments text", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{
			WeightsRequest: WeightsRequest{Text: strings.Join(sentences, " ")},
			Compression:    floatPtr(0.4),
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp SummarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Weights, len(sentences))
		assert.Len(t, resp.Indices, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp SummarizeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Indices)
		assert.Empty(t, resp.Summary)
	})

	t.Run("invalid compression", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{
			WeightsRequest: WeightsRequest{Sentences: sentences},
			Compression:    floatPtr(1.5),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "compression")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := setupTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", strings.NewReader("{not json"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		server := setupTestServer(t, func(c *Config) { c.BodyLimit = "1K" })

		long := strings.Repeat("word ", 1000)
		rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{
			WeightsRequest: WeightsRequest{Text: long},
		})

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandleWeights(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/weights", WeightsRequest{
		Sentences:     sentences[:3],
		BoundaryProbs: []float64{0.2, -1, 0.9},
		DocumentID:    "doc-42",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp WeightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, sentences[:3], resp.Sentences)
	assert.Len(t, resp.Weights, 3)
	assert.Contains(t, resp.Components, "cnn_prob")
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, diagnostics.KindConfiguration, resp.Warnings[0].Kind)
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, summarizer.Request) (*summarizer.Result, error) {
	return nil, errors.New("boom")
}

func (failingSummarizer) ComputeSentenceWeights(context.Context, []string, string, []float64) (*summarizer.Weights, error) {
	return nil, errors.New("boom")
}

func TestHandlers_InternalError(t *testing.T) {
	logger := logging.NewTestLogger()
	server, err := NewServer(failingSummarizer{}, logger.Zap(), nil)
	require.NoError(t, err)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/summarize", SummarizeRequest{
		WeightsRequest: WeightsRequest{Sentences: sentences},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")

	rec = doJSON(t, server, http.MethodPost, "/api/v1/weights", WeightsRequest{Sentences: sentences})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	logger.AssertLogged(t, zapcore.ErrorLevel, "summarization failed")
	logger.AssertLogged(t, zapcore.ErrorLevel, "weights computation failed")
	logger.AssertField(t, "http request", "status", int64(http.StatusInternalServerError))
}

func TestRequestID(t *testing.T) {
	logger := logging.NewTestLogger()
	svc, err := summarizer.New(summarizer.DefaultConfig())
	require.NoError(t, err)
	server, err := NewServer(svc, logger.Zap(), nil)
	require.NoError(t, err)

	t.Run("client id is echoed and logged", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(echo.HeaderXRequestID, "client-req-7")
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, "client-req-7", rec.Header().Get(echo.HeaderXRequestID))
		logger.AssertField(t, "http request", "request.id", "client-req-7")
	})

	t.Run("malformed id is not propagated", func(t *testing.T) {
		logger.Reset()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(echo.HeaderXRequestID, "bad id with spaces")
		rec := httptest.NewRecorder()

		assert.NotPanics(t, func() { server.echo.ServeHTTP(rec, req) })
		assert.Equal(t, http.StatusOK, rec.Code)
		for _, entry := range logger.Entries() {
			assert.NotContains(t, entry.ContextMap(), "request.id")
		}
	})
}

func TestRateLimiter(t *testing.T) {
	server := setupTestServer(t, func(c *Config) {
		c.RateLimit = 1
		c.Burst = 2
	})

	var codes []int
	for i := 0; i < 4; i++ {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/weights", WeightsRequest{Sentences: sentences[:1]})
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	// Health is outside the limited group.
	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartShutdown(t *testing.T) {
	server := setupTestServer(t, func(c *Config) {
		c.Host = "127.0.0.1"
		c.Port = 0
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	err := <-done
	assert.ErrorIs(t, err, http.ErrServerClosed)
}

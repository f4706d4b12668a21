package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTEIServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewService(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL required")

	svc, err := NewService(Config{BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", svc.config.BaseURL)
}

func TestService_EmbedDocuments(t *testing.T) {
	var got teiRequest
	var auth string
	srv := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		out := make([][]float32, len(got.Inputs))
		for i := range out {
			out[i] = []float32{float32(i), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	svc, err := NewService(Config{BaseURL: srv.URL, APIKey: config.Secret("tok")})
	require.NoError(t, err)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{0, 1}, {1, 1}}, vectors)
	assert.Equal(t, []string{"a", "b"}, got.Inputs)
	assert.True(t, got.Truncate)
	assert.Equal(t, "Bearer tok", auth)
}

func TestService_EmbedDocuments_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		texts   []string
		wantErr error
	}{
		{
			name:    "empty input",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			texts:   nil,
			wantErr: ErrEmptyInput,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model overloaded", http.StatusServiceUnavailable)
			},
			texts:   []string{"a"},
			wantErr: ErrEmbeddingFailed,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			texts:   []string{"a"},
			wantErr: ErrEmbeddingFailed,
		},
		{
			name: "vector count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("[[1,2]]"))
			},
			texts:   []string{"a", "b"},
			wantErr: ErrEmbeddingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTEIServer(t, tt.handler)
			svc, err := NewService(Config{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = svc.EmbedDocuments(context.Background(), tt.texts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_NoAuthHeaderWithoutKey(t *testing.T) {
	srv := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("[[1]]"))
	})
	svc, err := NewService(Config{BaseURL: srv.URL}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = svc.EmbedDocuments(context.Background(), []string{"x"})
	require.NoError(t, err)
}

func TestService_ContextCancelled(t *testing.T) {
	srv := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[[1]]"))
	})
	svc, err := NewService(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.EmbedDocuments(ctx, []string{"x"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

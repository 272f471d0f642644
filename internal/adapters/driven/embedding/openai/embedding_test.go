package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

type embedCall struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

// newEmbeddingsServer answers /embeddings with a 2-d vector per input,
// returned in reverse order to exercise index mapping.
func newEmbeddingsServer(t *testing.T, calls *[]embedCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))

		var call embedCall
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&call)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*calls = append(*calls, call)

		data := make([]map[string]any, 0, len(call.Input))
		for i := len(call.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float64{float64(i), 1},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  call.Model,
			"data":   data,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: domain.NewSecret("k")})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 1536, s.Dimensions())

	s, err = NewEmbeddingService(Config{APIKey: domain.NewSecret("k"), Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 1536, s.Dimensions())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var calls []embedCall
	srv := newEmbeddingsServer(t, &calls)

	s, err := NewEmbeddingService(Config{APIKey: domain.NewSecret("sk-test-key"), BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 1}, {2, 1}}, vecs)

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"a", "b", "c"}, calls[0].Input)
	assert.Equal(t, "m", calls[0].Model)
	assert.Zero(t, calls[0].Dimensions)
}

func TestEmbed_SendsDimensionOverride(t *testing.T) {
	var calls []embedCall
	srv := newEmbeddingsServer(t, &calls)

	s, err := NewEmbeddingService(Config{APIKey: domain.NewSecret("sk-test-key"), BaseURL: srv.URL, Dimensions: 2})
	require.NoError(t, err)

	vec, err := s.Embed(context.Background(), "only")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Dimensions)
}

func TestEmbedBatch_Empty(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: domain.NewSecret("k")})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_ErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key sk-secret-123","type":"auth"}}`))
	}))
	defer srv.Close()

	s, err := NewEmbeddingService(Config{APIKey: domain.NewSecret("sk-secret-123"), BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.NotContains(t, err.Error(), "sk-secret-123")
}

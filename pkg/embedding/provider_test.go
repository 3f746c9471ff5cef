package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pin-support-be/pkg/capability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestOllamaProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "", time.Second)
	vecs, err := p.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.6, vecs[0][0], 1e-6)
	assert.InDelta(t, 0.8, vecs[0][1], 1e-6)
}

func TestOllamaProviderNonSuccessIsCapabilityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing", time.Second).Embed(context.Background(), []string{"x"})

	var capErr *capability.Error
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, http.StatusNotFound, capErr.StatusCode)
	assert.Equal(t, "embed", capErr.Op)
}

func TestOllamaProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "", 50*time.Millisecond).Embed(context.Background(), []string{"x"})

	assert.True(t, capability.IsCapabilityError(err))
}

func TestGeminiProviderBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:batchEmbedContents", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		var req geminiBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 2)
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1,0]},{"values":[0,1]}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", time.Second)
	p.BaseURL = srv.URL

	vecs, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestGeminiProviderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", time.Second)
	p.BaseURL = srv.URL

	_, err := p.Embed(context.Background(), []string{"a"})
	assert.True(t, capability.IsCapabilityError(err))
}

func TestMockProviderIsDeterministicAndSimilarityAware(t *testing.T) {
	p := NewMockProvider(64)

	vecs, err := p.Embed(context.Background(), []string{"vpn error 809", "VPN error 809", "printer toner"})
	require.NoError(t, err)

	assert.Equal(t, vecs[0], vecs[1])
	assert.Len(t, vecs[2], 64)
	assert.NotEqual(t, vecs[0], vecs[2])
}

func TestWithRateLimit(t *testing.T) {
	p := NewMockProvider(8)
	assert.Same(t, p, WithRateLimit(p, nil))

	limited := WithRateLimit(p, rate.NewLimiter(rate.Every(time.Hour), 1))
	_, err := limited.Embed(context.Background(), []string{"first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Embed(ctx, []string{"second"})
	assert.True(t, capability.IsCapabilityError(err))
}

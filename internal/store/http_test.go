package store

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/value"
)

// cacheServer is a minimal in-memory implementation of the remote cache
// protocol.
type cacheServer struct {
	mu   sync.Mutex
	blob map[string][]byte
}

func (s *cacheServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodHead, http.MethodGet:
		data, ok := s.blob[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.blob[r.URL.Path] = data
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newHTTPStore(t *testing.T) (*HTTP, *cacheServer) {
	t.Helper()
	server := &cacheServer{blob: make(map[string][]byte)}
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	h := NewHTTP(ts.URL, nil)
	t.Cleanup(func() { _ = h.Close() })
	return h, server
}

func TestHTTPPutGet(t *testing.T) {
	h, _ := newHTTPStore(t)
	artifact := value.Map{"k": value.NewInt(7)}
	digest := someDigest(artifact)

	_, err := h.Get("poly:add", digest)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.Put("poly:add", digest, artifact))

	ok, err := h.Exists("poly:add", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := h.Get("poly:add", digest)
	require.NoError(t, err)
	assert.True(t, value.Equal(artifact, got))

	stats := h.Stats()
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Puts: 1}, stats)
}

func TestHTTPCorruptBody(t *testing.T) {
	h, server := newHTTPStore(t)
	artifact := value.NewInt(1)
	digest := someDigest(artifact)
	require.NoError(t, h.Put("op", digest, artifact))

	for path := range server.blob {
		server.blob[path] = []byte("junk")
	}
	_, err := h.Get("op", digest)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestHTTPComposesUnderChain(t *testing.T) {
	h, _ := newHTTPStore(t)
	c := NewChain(NewMemory(), h)
	artifact := value.Str("shared")
	digest := someDigest(artifact)

	require.NoError(t, c.Put("op", digest, artifact))

	// A fresh chain over the same remote recovers the artifact.
	fresh := NewChain(NewMemory(), h)
	got, err := fresh.Get("op", digest)
	require.NoError(t, err)
	assert.True(t, value.Equal(artifact, got))
}

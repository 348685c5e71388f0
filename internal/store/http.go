package store

import (
	"fmt"
	"net/http"
	"net/url"

	"resty.dev/v3"

	"github.com/vk/invariant/internal/value"
)

// HTTP is a remote shared cache tier. Artifacts travel as envelope bodies:
//
//	HEAD /artifacts/{op}/{digest}  -> 200 | 404
//	GET  /artifacts/{op}/{digest}  -> 200 envelope | 404
//	PUT  /artifacts/{op}/{digest}  <- envelope (idempotent)
//
// It composes under Chain as a persistent L2 shared between machines.
type HTTP struct {
	counters
	client *resty.Client
	types  *value.TypeRegistry
}

// NewHTTP returns a remote store against baseURL. The type registry
// resolves Domain payloads on read; it may be nil for native-only
// workloads.
func NewHTTP(baseURL string, types *value.TypeRegistry) *HTTP {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/octet-stream")
	return &HTTP{client: client, types: types}
}

// Close releases the underlying HTTP client.
func (h *HTTP) Close() error { return h.client.Close() }

func artifactPath(op, digest string) string {
	return fmt.Sprintf("/artifacts/%s/%s", url.PathEscape(op), url.PathEscape(digest))
}

// Exists issues a HEAD probe.
func (h *HTTP) Exists(op, digest string) (bool, error) {
	res, err := h.client.R().Head(artifactPath(op, digest))
	if err != nil {
		return false, fmt.Errorf("remote cache probe (%s, %s): %w", op, digest, err)
	}
	switch res.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("remote cache probe (%s, %s): unexpected status %d", op, digest, res.StatusCode())
}

// Get fetches and decodes the artifact. A 404 is ErrNotFound; a body that
// fails to decode is ErrCorrupt.
func (h *HTTP) Get(op, digest string) (value.Value, error) {
	res, err := h.client.R().Get(artifactPath(op, digest))
	if err != nil {
		return nil, fmt.Errorf("remote cache read (%s, %s): %w", op, digest, err)
	}
	switch res.StatusCode() {
	case http.StatusOK:
		v, err := Unmarshal(res.Bytes(), h.types)
		if err != nil {
			return nil, fmt.Errorf("%w: remote (%s, %s): %w", ErrCorrupt, op, digest, err)
		}
		h.hit()
		return v, nil
	case http.StatusNotFound:
		h.miss()
		return nil, fmt.Errorf("%w: (%s, %s)", ErrNotFound, op, digest)
	}
	return nil, fmt.Errorf("remote cache read (%s, %s): unexpected status %d", op, digest, res.StatusCode())
}

// Put uploads the envelope. The server treats re-puts of the same key as
// idempotent, mirroring the local stores.
func (h *HTTP) Put(op, digest string, artifact value.Value) error {
	data, err := Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encoding artifact (%s, %s): %w", op, digest, err)
	}
	res, err := h.client.R().SetBody(data).Put(artifactPath(op, digest))
	if err != nil {
		return fmt.Errorf("remote cache write (%s, %s): %w", op, digest, err)
	}
	if res.IsError() {
		return fmt.Errorf("remote cache write (%s, %s): unexpected status %d", op, digest, res.StatusCode())
	}
	h.put()
	return nil
}

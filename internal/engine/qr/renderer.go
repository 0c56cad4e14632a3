package qr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// Renderer fetches rendered image bytes for a fully built request URL.
type Renderer interface {
	Render(ctx context.Context, requestURL string) ([]byte, error)
}

// HTTPRenderer renders through the remote QR endpoint with a single bounded GET.
type HTTPRenderer struct {
	client *http.Client
}

func NewHTTPRenderer(timeout time.Duration) *HTTPRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPRenderer{client: &http.Client{Timeout: timeout}}
}

func (r *HTTPRenderer) Render(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, newError(ErrNetwork, "failed to build request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, newError(ErrNetwork, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrNetwork, fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrNetwork, "failed to read response", err)
	}
	return body, nil
}

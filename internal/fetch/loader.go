package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rshade/wishboard/pkg/version"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 8 << 20

// ErrBadStatus is returned for non-2xx responses.
var ErrBadStatus = errors.New("unexpected response status")

// Loader loads the resource at a URL and returns its body.
type Loader interface {
	Load(ctx context.Context, rawURL string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, rawURL string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// HTTPLoader loads resources with an http.Client.
type HTTPLoader struct {
	Client *http.Client
	Accept string
}

// Load performs a GET request. The response body is always closed.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if l.Accept != "" {
		req.Header.Set("Accept", l.Accept)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Cache-Control", "no-cache")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

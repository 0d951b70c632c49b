// Package httpprovider implements a remote.Provider backed by a plain HTTP
// server exposing GET/HEAD/PUT on "<url>/<entry-key>", with the framed
// entry blob streamed directly as the request/response body. It registers
// itself for the "http" and "https" schemes.
package httpprovider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buildcache/buildcache/pkg/remote"
)

func init() {
	remote.Register("http", open)
	remote.Register("https", open)
}

func open(parsed *url.URL, timeout time.Duration) (remote.Provider, error) {
	return &Provider{
		baseURL: strings.TrimSuffix(parsed.String(), "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Provider is an HTTP-backed remote.Provider.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New creates a provider rooted at baseURL using the specified client
// timeout.
func New(baseURL string, timeout time.Duration) *Provider {
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) entryURL(key string) string {
	return p.baseURL + "/" + url.PathEscape(key)
}

// Has implements remote.Provider.Has via an HTTP HEAD request.
func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodHead, p.entryURL(key), nil)
	if err != nil {
		return false, fmt.Errorf("unable to construct request: %w", err)
	}

	response, err := p.client.Do(request)
	if err != nil {
		return false, fmt.Errorf("unable to perform request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return false, nil
	} else if response.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}
	return true, nil
}

// Get implements remote.Provider.Get via an HTTP GET request.
func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.entryURL(key), nil)
	if err != nil {
		return nil, false, fmt.Errorf("unable to construct request: %w", err)
	}

	response, err := p.client.Do(request)
	if err != nil {
		return nil, false, fmt.Errorf("unable to perform request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, false, nil
	} else if response.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}

	blob, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, false, fmt.Errorf("unable to read response body: %w", err)
	}
	return blob, true, nil
}

// Put implements remote.Provider.Put via an HTTP PUT request.
func (p *Provider) Put(ctx context.Context, key string, blob []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, p.entryURL(key), bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("unable to construct request: %w", err)
	}
	request.ContentLength = int64(len(blob))

	response, err := p.client.Do(request)
	if err != nil {
		return fmt.Errorf("unable to perform request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}
	return nil
}

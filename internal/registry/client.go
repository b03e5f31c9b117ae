// Package registry implements the npm-compatible metadata client: it GETs
// {registry}/{name}, parses the JSON document, and memoizes the result for
// the lifetime of the process.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/pacmjs/pacm/internal/httpretry"
	"github.com/pacmjs/pacm/internal/pacmerr"
)

// DefaultRegistry is used when no config source specifies one.
const DefaultRegistry = "https://registry.npmjs.org"

// Client fetches and memoizes package metadata from an npm-compatible registry.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	memo       sync.Map // name -> *PackageMetadata
}

// NewClient builds a metadata client against baseURL, logging retries
// through logger exactly as the rest of pacm logs HTTP activity.
func NewClient(baseURL string, logger hclog.Logger) *Client {
	return &Client{baseURL: baseURL, httpClient: httpretry.New(logger, 30*time.Second)}
}

// FetchMetadata fetches and memoizes the metadata document for name.
func (c *Client) FetchMetadata(ctx context.Context, name string) (*PackageMetadata, error) {
	if cached, ok := c.memo.Load(name); ok {
		return cached.(*PackageMetadata), nil
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(name))
	// Scoped names (@scope/name) must keep their slash, PathEscape would
	// otherwise %-encode it into a single opaque segment.
	if len(name) > 0 && name[0] == '@' {
		scope, rest, ok := splitScope(name)
		if ok {
			endpoint = fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(scope), url.PathEscape(rest))
		}
	}

	req, err := retryablehttp.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryTransport, Package: name, Err: err}
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryTransport, Package: name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryNotFound, Package: name, Err: fmt.Errorf("package not found")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryTransport, Package: name, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryTransport, Package: name, Err: err}
	}

	var meta PackageMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &pacmerr.RegistryError{Kind: pacmerr.RegistryParse, Package: name, Err: err}
	}

	actual, _ := c.memo.LoadOrStore(name, &meta)
	return actual.(*PackageMetadata), nil
}

func splitScope(name string) (scope, rest string, ok bool) {
	for i := 1; i < len(name); i++ {
		if name[i] == '/' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

// Package upstream talks to the REST collaborators behind the tools: algod,
// indexer and the third-party Algorand APIs.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/jsonvalue"
)

const (
	maxResponseBytes = 32 << 20
	cacheCapacity    = 1024
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	API     string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.API, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.API, e.Status, e.Message)
}

// Options configures a Client.
type Options struct {
	// Name identifies the API in errors and logs, e.g. "algod".
	Name    string
	BaseURL string
	// Header is sent with every request, typically an API token.
	Header     http.Header
	HTTPClient *http.Client
	// CacheTTL enables caching of successful GET responses when positive.
	CacheTTL time.Duration
}

// Client issues requests against one upstream base URL. It is safe for
// concurrent use.
type Client struct {
	name   string
	base   *url.URL
	header http.Header
	http   *http.Client
	cache  *ttlcache.Cache[string, jsonvalue.Value]
}

func NewClient(opts Options) (*Client, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("new upstream client: name is required")
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("new upstream client %s: base url is required", opts.Name)
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("new upstream client %s: %w", opts.Name, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("new upstream client %s: unsupported scheme %q", opts.Name, base.Scheme)
	}

	c := &Client{
		name:   opts.Name,
		base:   base,
		header: opts.Header.Clone(),
		http:   opts.HTTPClient,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if opts.CacheTTL > 0 {
		c.cache = ttlcache.New[string, jsonvalue.Value](
			ttlcache.WithTTL[string, jsonvalue.Value](opts.CacheTTL),
			ttlcache.WithCapacity[string, jsonvalue.Value](cacheCapacity),
		)
	}
	return c, nil
}

// Name returns the API name used in errors.
func (c *Client) Name() string { return c.name }

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Get fetches path relative to the base URL and decodes the JSON response.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (jsonvalue.Value, error) {
	u := c.resolve(path, query)
	if c.cache != nil {
		if item := c.cache.Get(u); item != nil {
			logging.Logger().Debug("upstream cache hit", "api", c.name, "url", u)
			return item.Value(), nil
		}
	}

	v, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if c.cache != nil {
		c.cache.Set(u, v, ttlcache.DefaultTTL)
	}
	return v, nil
}

// Post sends body with the given content type and decodes the JSON response.
func (c *Client) Post(ctx context.Context, path string, query url.Values, contentType string, body []byte) (jsonvalue.Value, error) {
	return c.do(ctx, http.MethodPost, c.resolve(path, query), contentType, body)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, u, contentType string, body []byte) (jsonvalue.Value, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%s: read response: %w", c.name, err)
	}
	logging.Logger().Debug("upstream request",
		"api", c.name,
		"method", method,
		"url", u,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return jsonvalue.Value{}, &StatusError{API: c.name, Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return decodeBody(resp.Header.Get("Content-Type"), data)
}

// decodeBody parses JSON bodies; other content types come back as a string.
func decodeBody(contentType string, data []byte) (jsonvalue.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return jsonvalue.NullValue(), nil
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	v, err := jsonvalue.Parse(data)
	if err != nil {
		if mediaType == "" || strings.HasSuffix(mediaType, "json") {
			return jsonvalue.Value{}, fmt.Errorf("decode response: %w", err)
		}
		return jsonvalue.StringValue(string(data)), nil
	}
	return v, nil
}

// errorMessage extracts the upstream's explanation from an error body.
func errorMessage(data []byte) string {
	if v, err := jsonvalue.Parse(data); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if m, ok := v.Get(key); ok && m.Kind() == jsonvalue.String {
				return m.Str()
			}
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

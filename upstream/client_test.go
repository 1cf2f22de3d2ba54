package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/tool"
)

func TestClientGet(t *testing.T) {
	var gotPath, gotQuery, gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotToken = r.Header.Get("X-Algo-API-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"round":18446744073709551615,"address":"ABC"}`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "algod", BaseURL: ts.URL + "/", Header: tokenHeader("X-Algo-API-Token", "secret")})
	require.NoError(t, err)

	v, err := c.Get(context.Background(), "/v2/accounts/ABC", url.Values{"format": {"json"}})
	require.NoError(t, err)

	assert.Equal(t, "/v2/accounts/ABC", gotPath)
	assert.Equal(t, "format=json", gotQuery)
	assert.Equal(t, "secret", gotToken)

	b, err := jsonvalue.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"round":18446744073709551615,"address":"ABC"}`, string(b))
}

func TestClientBasePath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `[]`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "tinyman", BaseURL: ts.URL + "/api/v1"})
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "pools/", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/pools/", gotPath)
}

func TestClientPost(t *testing.T) {
	var gotBody []byte
	var gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"txId":"XYZ"}`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "algod", BaseURL: ts.URL})
	require.NoError(t, err)

	v, err := c.Post(context.Background(), "/v2/transactions", nil, "application/x-binary", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, gotBody)
	assert.Equal(t, "application/x-binary", gotType)
	txID, _ := v.Get("txId")
	assert.Equal(t, "XYZ", txID.Str())
}

func TestClientStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"no accounts found for address"}`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "indexer", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/v2/accounts/X", nil)
	require.Error(t, err)

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusNotFound, status.Status)
	assert.Equal(t, "indexer: HTTP 404: no accounts found for address", err.Error())

	wrapped := tool.Upstream(err, "lookup account %s", "X")
	assert.Equal(t, tool.UpstreamFailure, tool.KindOf(wrapped))
	assert.Equal(t, "lookup account X: indexer: HTTP 404: no accounts found for address", wrapped.Error())
}

func TestClientNonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "pong")
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "nfd", BaseURL: ts.URL})
	require.NoError(t, err)
	v, err := c.Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", v.Str())
}

func TestClientMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"broken":`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "vestige", BaseURL: ts.URL})
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClientCache(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		_, _ = fmt.Fprintf(w, `{"n":%d}`, n)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "algod", BaseURL: ts.URL, CacheTTL: time.Minute})
	require.NoError(t, err)

	for range 3 {
		v, err := c.Get(context.Background(), "/v2/status", nil)
		require.NoError(t, err)
		n, _ := v.Get("n")
		assert.Equal(t, "1", n.Number().String())
	}
	_, err = c.Get(context.Background(), "/v2/status", url.Values{"round": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "distinct queries are cached separately")

	_, err = c.Post(context.Background(), "/v2/status", nil, "application/json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load(), "posts are never cached")
}

func TestClientContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ts.Close()

	c, err := NewClient(Options{Name: "algod", BaseURL: ts.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, "/v2/status", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "https://example.com"})
	require.Error(t, err)
	_, err = NewClient(Options{Name: "x"})
	require.Error(t, err)
	_, err = NewClient(Options{Name: "x", BaseURL: "ftp://example.com"})
	require.Error(t, err)
}

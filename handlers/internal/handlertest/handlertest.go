// Package handlertest provides fake upstreams for handler tests.
package handlertest

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/upstream"
)

// ParamsJSON is an algod /v2/transactions/params body.
var ParamsJSON = `{"consensus-version":"future","fee":0,"genesis-hash":"` +
	base64.StdEncoding.EncodeToString(make([]byte, 32)) +
	`","genesis-id":"testnet-v1.0","last-round":1000,"min-fee":1000}`

// Factory returns a factory whose every service on "testnet" points at h.
// Paths are prefixed with the service name, e.g. /algod/v2/status.
func Factory(t *testing.T, h http.Handler) *upstream.Factory {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	f, err := upstream.NewFactory(func(network string) (upstream.Endpoints, error) {
		if network != "testnet" {
			return upstream.Endpoints{}, errUnknown(network)
		}
		return upstream.Endpoints{
			AlgodURL:   ts.URL + "/algod",
			IndexerURL: ts.URL + "/indexer",
			NFDURL:     ts.URL + "/nfd",
			VestigeURL: ts.URL + "/vestige",
			TinymanURL: ts.URL + "/tinyman",
			UltradeURL: ts.URL + "/ultrade",
		}, nil
	}, "testnet", upstream.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return f
}

type errUnknown string

func (e errUnknown) Error() string { return "unknown network \"" + string(e) + "\"" }

// Algod returns a handler serving suggested params and delegating other
// requests to next, which may be nil.
func Algod(next http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/algod/v2/transactions/params", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ParamsJSON))
	})
	if next != nil {
		mux.Handle("/", next)
	}
	return mux
}

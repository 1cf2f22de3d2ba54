package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/tool"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("utility", time.Millisecond, nil)
	m.Observe("utility", time.Millisecond, nil)
	m.Observe("api", 2*time.Millisecond, tool.Upstream(errors.New("boom"), "algod"))
	m.Observe("accounts", time.Millisecond, tool.InvalidParamsf("bad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("utility", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("api", "upstream_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("accounts", "invalid_params")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.calls))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("plain")))
	assert.Equal(t, "unknown_tool", Outcome(tool.NewUnknownTool("x")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe("wallet", time.Millisecond, nil)

	ts := httptest.NewServer(m.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `algorand_mcp_tool_calls_total{category="wallet",outcome="ok"} 1`)
	assert.Contains(t, string(body), "algorand_mcp_tool_call_duration_seconds_bucket")
}

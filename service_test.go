package algorandmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/internal/config"
	"github.com/bpowers/algorand-mcp/knowledge"
	"github.com/bpowers/algorand-mcp/mcp"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
	"github.com/bpowers/algorand-mcp/wallet"
)

func testFactory(t *testing.T, h http.Handler) *upstream.Factory {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	f, err := upstream.NewFactory(func(network string) (upstream.Endpoints, error) {
		if network != config.Testnet {
			return upstream.Endpoints{}, fmt.Errorf("unknown network %q", network)
		}
		return upstream.Endpoints{
			AlgodURL:   ts.URL + "/algod",
			IndexerURL: ts.URL + "/indexer",
			NFDURL:     ts.URL + "/nfd",
		}, nil
	}, config.Testnet, upstream.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return f
}

func newService(t *testing.T, h http.Handler) *Service {
	t.Helper()
	if h == nil {
		h = http.NotFoundHandler()
	}
	s, err := New(config.Default(),
		WithFactory(testFactory(t, h)),
		WithStore(wallet.NewMemoryStore()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Metadata *struct {
		TotalItems  int    `json:"totalItems"`
		CurrentPage int    `json:"currentPage"`
		TotalPages  int    `json:"totalPages"`
		HasNextPage bool   `json:"hasNextPage"`
		PageToken   string `json:"pageToken"`
		ArrayField  string `json:"arrayField"`
	} `json:"metadata"`
}

func call(t *testing.T, s *Service, name, args string) envelope {
	t.Helper()
	result, err := s.CallTool(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &env))
	return env
}

func TestRoutingDisjointness(t *testing.T) {
	s := newService(t, nil)
	table := Table()

	names := s.Names()
	assert.Greater(t, len(names), 100)
	for _, name := range names {
		assert.Len(t, table.Matches(name), 1, "tool %q must match exactly one rule", name)
	}
	require.NoError(t, table.Validate(names))
}

func TestRoutingBoundaryPairs(t *testing.T) {
	table := Table()
	tests := []struct {
		name     string
		category string
	}{
		{"sign_bytes", CategoryUtility},
		{"wallet_sign_bytes", CategoryWallet},
		{"sign_transaction", CategoryTxn},
		{"wallet_sign_transaction", CategoryWallet},
		{"get_application_address", CategoryUtility},
		{"get_knowledge_doc", CategoryKnowledge},
		{"create_account", CategoryAccounts},
		{"rekey_account", CategoryAccounts},
		{"mnemonic_to_secret_key", CategoryAccounts},
		{"secret_key_to_mnemonic", CategoryAccounts},
		{"seed_from_mnemonic", CategoryAccounts},
		{"encode_address", CategoryUtility},
		{"encode_obj", CategoryUtility},
		{"simulate_transactions", CategoryAlgod},
		{"send_raw_transaction", CategoryAlgod},
		{"make_app_call_txn", CategoryTxn},
		{"assign_group_id", CategoryTxn},
		{"api_indexer_lookup_account_transactions", CategoryAPI},
		{"generate_algorand_uri", CategoryURI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.category, got)
		})
	}

	for _, name := range []string{"get_account", "sign", "wallet", "api", "make", "generate_algorand_url"} {
		_, ok := table.Resolve(name)
		assert.False(t, ok, "%q must not route", name)
	}
}

func TestCallPaginates(t *testing.T) {
	s := newService(t, nil)

	first := call(t, s, "api_example_list_items", `{"count":25,"itemsPerPage":10}`)
	require.NotNil(t, first.Metadata)
	assert.Equal(t, 25, first.Metadata.TotalItems)
	assert.Equal(t, 3, first.Metadata.TotalPages)
	assert.True(t, first.Metadata.HasNextPage)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(first.Data, &items))
	assert.Len(t, items, 10)

	last := call(t, s, "api_example_list_items",
		fmt.Sprintf(`{"count":25,"itemsPerPage":10,"pageToken":%q}`, "cGFnZV8z"))
	require.NotNil(t, last.Metadata)
	assert.Equal(t, 3, last.Metadata.CurrentPage)
	assert.False(t, last.Metadata.HasNextPage)
	require.NoError(t, json.Unmarshal(last.Data, &items))
	assert.Len(t, items, 5)
}

func TestCallDefaultPageSize(t *testing.T) {
	s := newService(t, nil)
	env := call(t, s, "api_example_get_account_summary", `{"count":12}`)
	require.NotNil(t, env.Metadata)
	assert.Equal(t, "assets", env.Metadata.ArrayField)
	assert.Equal(t, 2, env.Metadata.TotalPages)
	assert.Contains(t, string(env.Data), `"amount":18446744073709551615`)
}

func TestCallSmallResultUnpaginated(t *testing.T) {
	s := newService(t, nil)
	env := call(t, s, "ping", `{}`)
	assert.Nil(t, env.Metadata)
	assert.JSONEq(t, `{"status":"pong"}`, string(env.Data))
}

func TestCallErrors(t *testing.T) {
	s := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args string
		kind tool.Kind
	}{
		{"unknown tool", "no_such_tool", `{}`, tool.UnknownTool},
		{"unknown api tool", "api_nowhere_thing", `{}`, tool.UnknownTool},
		{"zero page size", "ping", `{"itemsPerPage":0}`, tool.InvalidParams},
		{"negative page size", "ping", `{"itemsPerPage":-3}`, tool.InvalidParams},
		{"non-object args", "ping", `[1,2]`, tool.InvalidParams},
		{"bad token type", "ping", `{"pageToken":7}`, tool.InvalidParams},
		{"upstream 404", "api_algod_get_account_info", `{"address":"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAY5HFKQ"}`, tool.UpstreamFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(ctx, tt.tool, json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Equal(t, tt.kind, tool.KindOf(err), "error: %v", err)
		})
	}
}

func TestPaginationArgsStripped(t *testing.T) {
	var gotQuery string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"transactions":[]}`)
	})
	s := newService(t, h)

	call(t, s, "api_indexer_search_for_transactions", `{"limit":5,"itemsPerPage":3,"pageToken":"cGFnZV8y"}`)
	assert.Equal(t, "limit=5", gotQuery)
}

func TestToolDefinitionsAdvertisePagination(t *testing.T) {
	s := newService(t, nil)
	defs := s.Registry().Definitions()
	require.NotEmpty(t, defs)
	for _, def := range defs {
		var in struct {
			Type       string                     `json:"type"`
			Properties map[string]json.RawMessage `json:"properties"`
		}
		require.NoError(t, json.Unmarshal(def.InputSchema, &in), def.Name)
		assert.Equal(t, "object", in.Type, def.Name)
		assert.Contains(t, in.Properties, PageTokenArg, def.Name)
		assert.Contains(t, in.Properties, ItemsPerPageArg, def.Name)
	}
}

func TestReadResource(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll("guides", 0o755))
	require.NoError(t, fsys.WriteFile("guides/fees.md", []byte("# Fees\n\nMinimum fee is 1000 microAlgos.\n"), 0o644))

	store := wallet.NewMemoryStore()
	s, err := New(config.Default(),
		WithFactory(testFactory(t, http.NotFoundHandler())),
		WithStore(store),
		WithDocs(knowledge.New(fsys)),
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.CallTool(ctx, "wallet_add_account", json.RawMessage(`{"name":"alice"}`))
	require.NoError(t, err)

	accounts, err := s.ReadResource(ctx, "algorand://wallet/accounts")
	require.NoError(t, err)
	require.Len(t, accounts.Contents, 1)
	assert.Contains(t, accounts.Contents[0].Text, `"name":"alice"`)

	doc, err := s.ReadResource(ctx, "algorand://knowledge/guides/fees")
	require.NoError(t, err)
	assert.Contains(t, doc.Contents[0].Text, "Minimum fee")

	_, err = s.ReadResource(ctx, "algorand://nowhere/x")
	require.Error(t, err)
	assert.Equal(t, tool.UnknownTool, tool.KindOf(err))

	resources := s.Registry().Resources()
	uris := []string{}
	for _, r := range resources {
		uris = append(uris, r.URI)
	}
	assert.ElementsMatch(t, []string{"algorand://wallet/accounts", "algorand://knowledge/taxonomy"}, uris)
	assert.NotEmpty(t, s.Registry().Templates())
}

func TestMetricsRecordCategories(t *testing.T) {
	s := newService(t, nil)
	ctx := context.Background()

	_, err := s.CallTool(ctx, "ping", nil)
	require.NoError(t, err)
	_, err = s.CallTool(ctx, "decode_uint64", json.RawMessage(`{"bytes":"zz"}`))
	require.Error(t, err)

	n, err := testutil.GatherAndCount(s.Metrics().Registry(), "algorand_mcp_tool_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per category and outcome")
}

func TestServerEndToEnd(t *testing.T) {
	s := newService(t, nil)
	server, err := mcp.NewServer(s.Registry(), s, mcp.Implementation{Name: "algorand-mcp", Version: "test"})
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := server.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}`))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, "nope", resp.Error.Data)

	resp, err = server.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"validate_address","arguments":{}}}`))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)

	resp, err = server.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"ping"}}`))
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(mcp.CallToolResult)
	require.True(t, ok)
	assert.JSONEq(t, `{"data":{"status":"pong"}}`, result.Content[0].Text)
}

func TestNewOwnsDefaultStore(t *testing.T) {
	cfg := config.Default()
	cfg.WalletDB = ":memory:"
	s, err := New(cfg, WithFactory(testFactory(t, http.NotFoundHandler())))
	require.NoError(t, err)
	assert.True(t, s.ownsStore)
	require.NoError(t, s.Close())
}

func TestNewRejectsBadPageSize(t *testing.T) {
	cfg := config.Default()
	cfg.ItemsPerPage = 0
	_, err := New(cfg, WithStore(wallet.NewMemoryStore()))
	require.Error(t, err)
}

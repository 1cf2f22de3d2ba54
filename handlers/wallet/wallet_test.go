package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/handlers/internal/handlertest"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/tool"
	keystore "github.com/bpowers/algorand-mcp/wallet"
	"github.com/bpowers/algorand-mcp/wallet/sqlitestore"
)

func str(t *testing.T, v jsonvalue.Value, key string) string {
	t.Helper()
	f, ok := v.Get(key)
	require.True(t, ok, "missing %q", key)
	return f.Str()
}

func newHandler(t *testing.T, h http.Handler) (*Handler, *tool.Set) {
	t.Helper()
	store, err := sqlitestore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	if h == nil {
		h = http.NotFoundHandler()
	}
	handler := New(store, handlertest.Factory(t, h))
	return handler, handler.Tools()
}

func TestAddGeneratedAccount(t *testing.T) {
	_, set := newHandler(t, nil)
	ctx := context.Background()

	v, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", str(t, v, "name"))

	phrase := str(t, v, "mnemonic")
	sk, err := mnemonic.ToPrivateKey(phrase)
	require.NoError(t, err)
	account, err := crypto.AccountFromPrivateKey(sk)
	require.NoError(t, err)
	assert.Equal(t, account.Address.String(), str(t, v, "address"))

	got, err := set.Handle(ctx, "wallet_get_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, account.Address.String(), str(t, got, "address"))
	_, hasMnemonic := got.Get("mnemonic")
	assert.False(t, hasMnemonic, "stored accounts never echo their mnemonic")
}

func TestImportAccount(t *testing.T) {
	_, set := newHandler(t, nil)
	account := crypto.GenerateAccount()
	phrase, err := mnemonic.FromPrivateKey(account.PrivateKey)
	require.NoError(t, err)

	v, err := set.Handle(context.Background(), "wallet_add_account", tool.Args{"name": "imported", "mnemonic": phrase})
	require.NoError(t, err)
	assert.Equal(t, account.Address.String(), str(t, v, "address"))
	_, hasMnemonic := v.Get("mnemonic")
	assert.False(t, hasMnemonic)
}

func TestListAndRemoveAccounts(t *testing.T) {
	handler, set := newHandler(t, nil)
	ctx := context.Background()
	for _, name := range []string{"bob", "alice"} {
		_, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": name})
		require.NoError(t, err)
	}

	v, err := set.Handle(ctx, "wallet_list_accounts", tool.Args{})
	require.NoError(t, err)
	accounts, _ := v.Get("accounts")
	require.Equal(t, 2, accounts.Len())
	assert.Equal(t, "alice", str(t, accounts.Elems()[0], "name"))
	assert.Equal(t, "bob", str(t, accounts.Elems()[1], "name"))

	result, err := handler.ReadResource(ctx, "algorand://wallet/accounts")
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MimeType)
	assert.Contains(t, result.Contents[0].Text, `"name":"alice"`)
	assert.NotContains(t, result.Contents[0].Text, "secret")

	_, err = set.Handle(ctx, "wallet_remove_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	v, err = set.Handle(ctx, "wallet_list_accounts", tool.Args{})
	require.NoError(t, err)
	accounts, _ = v.Get("accounts")
	assert.Equal(t, 1, accounts.Len())
}

func TestWalletErrors(t *testing.T) {
	_, set := newHandler(t, nil)
	ctx := context.Background()
	_, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)

	tests := []struct {
		name string
		tool string
		args tool.Args
	}{
		{"duplicate name", "wallet_add_account", tool.Args{"name": "alice"}},
		{"blank name", "wallet_add_account", tool.Args{"name": "  "}},
		{"bad mnemonic", "wallet_add_account", tool.Args{"name": "bob", "mnemonic": "not a mnemonic"}},
		{"missing name", "wallet_get_account", tool.Args{}},
		{"unknown account", "wallet_get_account", tool.Args{"name": "nobody"}},
		{"remove unknown", "wallet_remove_account", tool.Args{"name": "nobody"}},
		{"sign unknown", "wallet_sign_bytes", tool.Args{"name": "nobody", "bytes": "00"}},
		{"sign bad hex", "wallet_sign_bytes", tool.Args{"name": "alice", "bytes": "zz"}},
		{"sign bad txn", "wallet_sign_transaction", tool.Args{"name": "alice", "txn": "AAAA"}},
		{"info unknown network", "wallet_get_info", tool.Args{"name": "alice", "network": "betanet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := set.Handle(ctx, tt.tool, tt.args)
			require.Error(t, err)
			assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
		})
	}
}

func TestSignBytes(t *testing.T) {
	_, set := newHandler(t, nil)
	ctx := context.Background()
	v, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	addr, err := types.DecodeAddress(str(t, v, "address"))
	require.NoError(t, err)

	msg := []byte("hello")
	signed, err := set.Handle(ctx, "wallet_sign_bytes", tool.Args{"name": "alice", "bytes": hex.EncodeToString(msg)})
	require.NoError(t, err)
	sig, err := hex.DecodeString(str(t, signed, "signature"))
	require.NoError(t, err)
	assert.True(t, crypto.VerifyBytes(ed25519.PublicKey(addr[:]), msg, sig))
}

func TestSignTransaction(t *testing.T) {
	_, set := newHandler(t, nil)
	ctx := context.Background()
	v, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	sender, err := types.DecodeAddress(str(t, v, "address"))
	require.NoError(t, err)

	tx := types.Transaction{
		Type: types.PaymentTx,
		Header: types.Header{
			Sender:     sender,
			Fee:        1000,
			FirstValid: 1,
			LastValid:  1001,
			GenesisID:  "testnet-v1.0",
		},
		PaymentTxnFields: types.PaymentTxnFields{Receiver: crypto.GenerateAccount().Address, Amount: 7},
	}
	encoded := base64.StdEncoding.EncodeToString(msgpack.Encode(tx))

	out, err := set.Handle(ctx, "wallet_sign_transaction", tool.Args{"name": "alice", "txn": encoded})
	require.NoError(t, err)
	assert.Equal(t, crypto.GetTxID(tx), str(t, out, "txID"))

	blob, err := base64.StdEncoding.DecodeString(str(t, out, "blob"))
	require.NoError(t, err)
	var stx types.SignedTxn
	require.NoError(t, msgpack.Decode(blob, &stx))
	assert.Equal(t, uint64(7), uint64(stx.Txn.Amount))
	assert.NotEqual(t, types.Signature{}, stx.Sig)
}

func TestAccountInfoAndAssets(t *testing.T) {
	var gotPath string
	algod := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"amount":18446744073709551615,"assets":[{"asset-id":31566704,"amount":5}]}`)
	})
	_, set := newHandler(t, algod)
	ctx := context.Background()
	v, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)
	address := str(t, v, "address")

	info, err := set.Handle(ctx, "wallet_get_info", tool.Args{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "/algod/v2/accounts/"+address, gotPath)
	amount, _ := info.Get("amount")
	assert.Equal(t, "18446744073709551615", amount.Number().String())

	assets, err := set.Handle(ctx, "wallet_get_assets", tool.Args{"name": "alice", "network": "testnet"})
	require.NoError(t, err)
	assert.Equal(t, address, str(t, assets, "address"))
	list, _ := assets.Get("assets")
	assert.Equal(t, 1, list.Len())
}

func TestAccountInfoUpstreamFailure(t *testing.T) {
	algod := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"account not found"}`)
	})
	_, set := newHandler(t, algod)
	ctx := context.Background()
	_, err := set.Handle(ctx, "wallet_add_account", tool.Args{"name": "alice"})
	require.NoError(t, err)

	_, err = set.Handle(ctx, "wallet_get_assets", tool.Args{"name": "alice"})
	require.Error(t, err)
	assert.Equal(t, tool.UpstreamFailure, tool.KindOf(err))
	assert.Contains(t, err.Error(), "algod: HTTP 404: account not found")
}

func TestReadUnknownResource(t *testing.T) {
	handler := New(keystore.NewMemoryStore(), nil)
	_, err := handler.ReadResource(context.Background(), "algorand://wallet/keys")
	require.Error(t, err)
	assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
	assert.Len(t, handler.Resources(), 1)
}

// brokenStore fails every operation the way a store with a bad disk would.
type brokenStore struct{}

var errDisk = errors.New("disk I/O error")

func (brokenStore) AddAccount(keystore.Account) error { return errDisk }
func (brokenStore) GetAccount(string) (keystore.Account, error) { return keystore.Account{}, errDisk }
func (brokenStore) ListAccounts() ([]keystore.Account, error) { return nil, errDisk }
func (brokenStore) RemoveAccount(string) error { return errDisk }
func (brokenStore) Close() error { return nil }

func TestStoreFailuresAreUpstreamFailures(t *testing.T) {
	handler := New(brokenStore{}, nil)
	set := handler.Tools()
	ctx := context.Background()

	tests := []struct {
		tool string
		args tool.Args
	}{
		{"wallet_add_account", tool.Args{"name": "alice"}},
		{"wallet_get_account", tool.Args{"name": "alice"}},
		{"wallet_list_accounts", tool.Args{}},
		{"wallet_remove_account", tool.Args{"name": "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			_, err := set.Handle(ctx, tt.tool, tt.args)
			require.Error(t, err)
			assert.Equal(t, tool.UpstreamFailure, tool.KindOf(err))
			assert.Contains(t, err.Error(), "wallet store: disk I/O error")
		})
	}

	_, err := handler.ReadResource(ctx, accountsURI)
	require.Error(t, err)
	assert.Equal(t, tool.UpstreamFailure, tool.KindOf(err))
}

package algod

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/handlers/internal/handlertest"
	"github.com/bpowers/algorand-mcp/tool"
)

type recorded struct {
	path        string
	query       string
	contentType string
	body        []byte
}

func fakeAlgod(reply string) (*recorded, http.Handler) {
	rec := &recorded{}
	return rec, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.contentType = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	})
}

func paymentTxn(t *testing.T) types.Transaction {
	t.Helper()
	from := crypto.GenerateAccount().Address
	to := crypto.GenerateAccount().Address
	return types.Transaction{
		Type: types.PaymentTx,
		Header: types.Header{
			Sender:     from,
			Fee:        1000,
			FirstValid: 1,
			LastValid:  1001,
			GenesisID:  "testnet-v1.0",
		},
		PaymentTxnFields: types.PaymentTxnFields{Receiver: to, Amount: 5},
	}
}

func TestCompileTEAL(t *testing.T) {
	rec, h := fakeAlgod(`{"hash":"ABC","result":"BoEB"}`)
	set := Tools(handlertest.Factory(t, h))

	v, err := set.Handle(context.Background(), "compile_teal", tool.Args{"source": "#pragma version 8\nint 1"})
	require.NoError(t, err)
	assert.Equal(t, "/algod/v2/teal/compile", rec.path)
	assert.Equal(t, "text/plain", rec.contentType)
	assert.Equal(t, "#pragma version 8\nint 1", string(rec.body))

	result, _ := v.Get("result")
	assert.Equal(t, "BoEB", result.Str())
}

func TestDisassembleTEAL(t *testing.T) {
	rec, h := fakeAlgod(`{"result":"#pragma version 8\nint 1"}`)
	set := Tools(handlertest.Factory(t, h))

	_, err := set.Handle(context.Background(), "disassemble_teal", tool.Args{"bytecode": "CIEB"})
	require.NoError(t, err)
	assert.Equal(t, "/algod/v2/teal/disassemble", rec.path)
	assert.Equal(t, []byte{0x08, 0x81, 0x01}, rec.body)
}

func TestSendRawTransactionConcatenatesGroup(t *testing.T) {
	rec, h := fakeAlgod(`{"txId":"TXID"}`)
	set := Tools(handlertest.Factory(t, h))

	first := msgpack.Encode(types.SignedTxn{Txn: paymentTxn(t)})
	second := msgpack.Encode(types.SignedTxn{Txn: paymentTxn(t)})
	v, err := set.Handle(context.Background(), "send_raw_transaction", tool.Args{
		"signedTxns": []any{base64.StdEncoding.EncodeToString(first), base64.StdEncoding.EncodeToString(second)},
	})
	require.NoError(t, err)
	assert.Equal(t, "/algod/v2/transactions", rec.path)
	assert.Equal(t, append(append([]byte{}, first...), second...), rec.body)

	txID, _ := v.Get("txId")
	assert.Equal(t, "TXID", txID.Str())
}

func TestSimulateTransactions(t *testing.T) {
	rec, h := fakeAlgod(`{"last-round":10,"txn-groups":[{"txn-results":[]}],"version":2}`)
	set := Tools(handlertest.Factory(t, h))

	tx := paymentTxn(t)
	_, err := set.Handle(context.Background(), "simulate_transactions", tool.Args{
		"txns":              []any{base64.StdEncoding.EncodeToString(msgpack.Encode(tx))},
		"extraOpcodeBudget": "700",
	})
	require.NoError(t, err)
	assert.Equal(t, "/algod/v2/transactions/simulate", rec.path)
	assert.Equal(t, "format=json", rec.query)
	assert.Equal(t, "application/msgpack", rec.contentType)

	var req models.SimulateRequest
	require.NoError(t, msgpack.Decode(rec.body, &req))
	assert.True(t, req.AllowEmptySignatures, "unsigned simulation allows empty signatures")
	assert.Equal(t, uint64(700), req.ExtraOpcodeBudget)
	require.Len(t, req.TxnGroups, 1)
	require.Len(t, req.TxnGroups[0].Txns, 1)
	assert.Equal(t, tx.Receiver, req.TxnGroups[0].Txns[0].Txn.Receiver)
}

func TestSimulateRawKeepsSignatureRequirement(t *testing.T) {
	rec, h := fakeAlgod(`{"txn-groups":[]}`)
	set := Tools(handlertest.Factory(t, h))

	blob := msgpack.Encode(types.SignedTxn{Txn: paymentTxn(t)})
	_, err := set.Handle(context.Background(), "simulate_raw_transactions", tool.Args{
		"txns": []any{base64.StdEncoding.EncodeToString(blob)},
	})
	require.NoError(t, err)

	var req models.SimulateRequest
	require.NoError(t, msgpack.Decode(rec.body, &req))
	assert.False(t, req.AllowEmptySignatures)
}

func TestUpstreamFailure(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"1: unknown opcode"}`)
	})
	set := Tools(handlertest.Factory(t, h))

	_, err := set.Handle(context.Background(), "compile_teal", tool.Args{"source": "bogus"})
	require.Error(t, err)
	assert.Equal(t, tool.UpstreamFailure, tool.KindOf(err))
	assert.Contains(t, err.Error(), "compile teal")
	assert.Contains(t, err.Error(), "unknown opcode")
}

func TestInvalidParams(t *testing.T) {
	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	set := Tools(handlertest.Factory(t, h))

	tests := []struct {
		name string
		tool string
		args tool.Args
	}{
		{"missing source", "compile_teal", tool.Args{}},
		{"bad bytecode", "disassemble_teal", tool.Args{"bytecode": "%%%"}},
		{"empty group", "send_raw_transaction", tool.Args{"signedTxns": []any{}}},
		{"not msgpack", "send_raw_transaction", tool.Args{"signedTxns": []any{"AAAA"}}},
		{"not a txn", "simulate_transactions", tool.Args{"txns": []any{"AAAA"}}},
		{"unknown network", "compile_teal", tool.Args{"source": "int 1", "network": "betanet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := set.Handle(context.Background(), tt.tool, tt.args)
			require.Error(t, err)
			assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
		})
	}
	assert.False(t, called, "invalid params never reach algod")
}

// Package algod implements the tools that post directly to an algod node:
// TEAL compilation, raw transaction submission and simulation.
package algod

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/url"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/bpowers/algorand-mcp/handlers/internal/txnutil"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
)

type handler struct {
	clients *upstream.Factory
}

// Tools returns the algod tools.
func Tools(clients *upstream.Factory) *tool.Set {
	h := &handler{clients: clients}
	simulateProps := []schema.Prop{
		{Name: "allowEmptySignatures", Schema: schema.Bool("Allow transactions without signatures")},
		{Name: "allowUnnamedResources", Schema: schema.Bool("Allow access to resources not listed in the transactions")},
		{Name: "extraOpcodeBudget", Schema: schema.Int("Additional opcode budget for app calls")},
		{Name: "round", Schema: schema.Int("Round to simulate against")},
		txnutil.NetworkProp,
	}

	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{
				Name:        "compile_teal",
				Description: "Compile TEAL source to bytecode",
				InputSchema: schema.Obj(
					schema.Prop{Name: "source", Schema: schema.Str("TEAL source code"), Required: true},
					txnutil.NetworkProp,
				),
			},
			Func: h.compileTEAL,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "disassemble_teal",
				Description: "Disassemble TEAL bytecode to source",
				InputSchema: schema.Obj(
					schema.Prop{Name: "bytecode", Schema: schema.Str("Base64 TEAL bytecode"), Required: true},
					txnutil.NetworkProp,
				),
			},
			Func: h.disassembleTEAL,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "send_raw_transaction",
				Description: "Submit signed transactions to the network",
				InputSchema: schema.Obj(
					schema.Prop{Name: "signedTxns", Schema: schema.Arr(schema.Str("Base64 signed transaction"), "Signed transactions, in group order"), Required: true},
					txnutil.NetworkProp,
				),
			},
			Func: h.sendRawTransaction,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "simulate_raw_transactions",
				Description: "Simulate signed transactions without submitting them",
				InputSchema: schema.Obj(append([]schema.Prop{
					{Name: "txns", Schema: schema.Arr(schema.Str("Base64 signed transaction"), "Signed transactions, in group order"), Required: true},
				}, simulateProps...)...),
			},
			Func: h.simulateRaw,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "simulate_transactions",
				Description: "Simulate unsigned transactions without submitting them",
				InputSchema: schema.Obj(append([]schema.Prop{
					{Name: "txns", Schema: schema.Arr(schema.Str("Base64 unsigned transaction"), "Unsigned transactions, in group order"), Required: true},
				}, simulateProps...)...),
			},
			Func: h.simulateUnsigned,
		},
	)
}

func (h *handler) compileTEAL(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	source, err := args.String("source")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	algod, err := txnutil.Service(h.clients, args, "algod")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := algod.Post(ctx, "/v2/teal/compile", nil, "text/plain", []byte(source))
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "compile teal")
	}
	return v, nil
}

func (h *handler) disassembleTEAL(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	program, err := args.Base64("bytecode")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	algod, err := txnutil.Service(h.clients, args, "algod")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := algod.Post(ctx, "/v2/teal/disassemble", nil, "application/x-binary", program)
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "disassemble teal")
	}
	return v, nil
}

func (h *handler) sendRawTransaction(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	blobs, err := blobArgs(args, "signedTxns")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var body bytes.Buffer
	for i, b := range blobs {
		if _, err := decodeSigned(b, i); err != nil {
			return jsonvalue.Value{}, err
		}
		body.Write(b)
	}
	algod, err := txnutil.Service(h.clients, args, "algod")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := algod.Post(ctx, "/v2/transactions", nil, "application/x-binary", body.Bytes())
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "send raw transaction")
	}
	return v, nil
}

func (h *handler) simulateRaw(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	blobs, err := blobArgs(args, "txns")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	txns := make([]types.SignedTxn, 0, len(blobs))
	for i, b := range blobs {
		stx, err := decodeSigned(b, i)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		txns = append(txns, stx)
	}
	return h.simulate(ctx, args, txns, false)
}

func (h *handler) simulateUnsigned(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	blobs, err := blobArgs(args, "txns")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	txns := make([]types.SignedTxn, 0, len(blobs))
	for i, b := range blobs {
		var tx types.Transaction
		if err := msgpack.Decode(b, &tx); err != nil || tx.Type == "" {
			return jsonvalue.Value{}, tool.InvalidParamsf("txns[%d] is not a msgpack transaction", i)
		}
		txns = append(txns, types.SignedTxn{Txn: tx})
	}
	return h.simulate(ctx, args, txns, true)
}

func (h *handler) simulate(ctx context.Context, args tool.Args, txns []types.SignedTxn, emptySigs bool) (jsonvalue.Value, error) {
	req := models.SimulateRequest{
		TxnGroups: []models.SimulateRequestTransactionGroup{{Txns: txns}},
	}
	var err error
	if req.AllowEmptySignatures, err = args.Bool("allowEmptySignatures", emptySigs); err != nil {
		return jsonvalue.Value{}, err
	}
	if req.AllowUnnamedResources, err = args.Bool("allowUnnamedResources", false); err != nil {
		return jsonvalue.Value{}, err
	}
	if req.ExtraOpcodeBudget, err = args.OptUint64("extraOpcodeBudget", 0); err != nil {
		return jsonvalue.Value{}, err
	}
	if req.Round, err = args.OptUint64("round", 0); err != nil {
		return jsonvalue.Value{}, err
	}

	algod, err := txnutil.Service(h.clients, args, "algod")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	query := url.Values{"format": {"json"}}
	v, err := algod.Post(ctx, "/v2/transactions/simulate", query, "application/msgpack", msgpack.Encode(&req))
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "simulate %d transactions", len(txns))
	}
	return v, nil
}

func blobArgs(args tool.Args, key string) ([][]byte, error) {
	encoded, err := args.Strings(key)
	if err != nil {
		return nil, err
	}
	if len(encoded) == 0 {
		return nil, tool.InvalidParamsf("argument %q must list at least one transaction", key)
	}
	blobs := make([][]byte, 0, len(encoded))
	for i, s := range encoded {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, tool.InvalidParamsf("%s[%d] must be base64: %v", key, i, err)
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

func decodeSigned(b []byte, i int) (types.SignedTxn, error) {
	var stx types.SignedTxn
	if err := msgpack.Decode(b, &stx); err != nil || stx.Txn.Type == "" {
		return types.SignedTxn{}, tool.InvalidParamsf("transaction %d is not a msgpack signed transaction", i)
	}
	return stx, nil
}

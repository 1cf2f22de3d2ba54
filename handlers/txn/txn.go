// Package txn builds unsigned transactions, assigns group ids and signs
// transactions with a caller-supplied key.
package txn

import (
	"context"
	"crypto/ed25519"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
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

// buildFunc constructs a transaction once suggested params and the note are
// known.
type buildFunc func(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error)

func props(own ...schema.Prop) *schema.JSON {
	return schema.Obj(append(own, txnutil.ParamProps()...)...)
}

func req(name string, s *schema.JSON) schema.Prop {
	return schema.Prop{Name: name, Schema: s, Required: true}
}

func opt(name string, s *schema.JSON) schema.Prop {
	return schema.Prop{Name: name, Schema: s}
}

// Tools returns the transaction tools.
func Tools(clients *upstream.Factory) *tool.Set {
	h := &handler{clients: clients}
	builder := func(name, desc string, input *schema.JSON, fn buildFunc) tool.Tool {
		return tool.Tool{
			Definition: tool.Definition{Name: name, Description: desc, InputSchema: input},
			Func: func(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
				return h.build(ctx, args, name, fn)
			},
		}
	}

	tools := []tool.Tool{
		builder("make_payment_txn", "Build an unsigned payment transaction", props(
			req("from", schema.Str("Sender address")),
			req("to", schema.Str("Receiver address")),
			req("amount", schema.Int("Amount in microAlgos")),
			opt("closeRemainderTo", schema.Str("Address receiving the remaining balance")),
		), payment),
		builder("make_keyreg_txn", "Build an unsigned key registration transaction", props(
			req("from", schema.Str("Account registering keys")),
			opt("voteKey", schema.Str("Base64 participation vote key")),
			opt("selectionKey", schema.Str("Base64 VRF selection key")),
			opt("stateProofKey", schema.Str("Base64 state proof key")),
			opt("voteFirst", schema.Int("First round the keys are valid")),
			opt("voteLast", schema.Int("Last round the keys are valid")),
			opt("voteKeyDilution", schema.Int("Key dilution")),
			opt("nonParticipation", schema.Bool("Mark the account as permanently non-participating")),
		), keyreg),
		builder("make_asset_create_txn", "Build an unsigned asset creation transaction", props(
			req("from", schema.Str("Creator address")),
			req("total", schema.Int("Total base units")),
			req("decimals", schema.Int("Decimal places")),
			opt("defaultFrozen", schema.Bool("Holdings start frozen")),
			opt("unitName", schema.Str("Unit name")),
			opt("assetName", schema.Str("Asset name")),
			opt("assetURL", schema.Str("Asset URL")),
			opt("assetMetadataHash", schema.Str("32-byte metadata hash")),
			opt("manager", schema.Str("Manager address")),
			opt("reserve", schema.Str("Reserve address")),
			opt("freeze", schema.Str("Freeze address")),
			opt("clawback", schema.Str("Clawback address")),
		), assetCreate),
		builder("make_asset_config_txn", "Build an unsigned asset reconfiguration transaction", props(
			req("from", schema.Str("Current manager address")),
			req("assetIndex", schema.Int("Asset id")),
			opt("manager", schema.Str("New manager address")),
			opt("reserve", schema.Str("New reserve address")),
			opt("freeze", schema.Str("New freeze address")),
			opt("clawback", schema.Str("New clawback address")),
			opt("strictEmptyAddressChecking", schema.Bool("Reject empty addresses, which permanently clear a role")),
		), assetConfig),
		builder("make_asset_destroy_txn", "Build an unsigned asset destroy transaction", props(
			req("from", schema.Str("Manager address")),
			req("assetIndex", schema.Int("Asset id")),
		), assetDestroy),
		builder("make_asset_freeze_txn", "Build an unsigned asset freeze transaction", props(
			req("from", schema.Str("Freeze address")),
			req("assetIndex", schema.Int("Asset id")),
			req("freezeTarget", schema.Str("Account to freeze or unfreeze")),
			req("freezeState", schema.Bool("New frozen state")),
		), assetFreeze),
		builder("make_asset_transfer_txn", "Build an unsigned asset transfer or opt-in transaction", props(
			req("from", schema.Str("Sender address")),
			req("to", schema.Str("Receiver address")),
			req("assetIndex", schema.Int("Asset id")),
			req("amount", schema.Int("Amount in base units")),
			opt("closeRemainderTo", schema.Str("Address receiving the remaining holding")),
		), assetTransfer),
		builder("make_app_create_txn", "Build an unsigned application creation transaction", props(append([]schema.Prop{
			req("from", schema.Str("Creator address")),
			req("approvalProgram", schema.Str("Base64 compiled approval program")),
			req("clearProgram", schema.Str("Base64 compiled clear-state program")),
			opt("numGlobalInts", schema.Int("Global uint slots")),
			opt("numGlobalByteSlices", schema.Int("Global byte-slice slots")),
			opt("numLocalInts", schema.Int("Local uint slots")),
			opt("numLocalByteSlices", schema.Int("Local byte-slice slots")),
			opt("extraPages", schema.Int("Extra program pages")),
			opt("optIn", schema.Bool("Opt the creator in")),
		}, appRefProps()...)...), appCreate),
		builder("make_app_update_txn", "Build an unsigned application update transaction", props(append([]schema.Prop{
			req("from", schema.Str("Sender address")),
			req("appIndex", schema.Int("Application id")),
			req("approvalProgram", schema.Str("Base64 compiled approval program")),
			req("clearProgram", schema.Str("Base64 compiled clear-state program")),
		}, appRefProps()...)...), appCall(types.UpdateApplicationOC)),
		builder("make_app_delete_txn", "Build an unsigned application delete transaction", appProps(), appCall(types.DeleteApplicationOC)),
		builder("make_app_optin_txn", "Build an unsigned application opt-in transaction", appProps(), appCall(types.OptInOC)),
		builder("make_app_closeout_txn", "Build an unsigned application close-out transaction", appProps(), appCall(types.CloseOutOC)),
		builder("make_app_clear_txn", "Build an unsigned application clear-state transaction", appProps(), appCall(types.ClearStateOC)),
		builder("make_app_call_txn", "Build an unsigned application no-op call transaction", appProps(), appCall(types.NoOpOC)),
		{
			Definition: tool.Definition{
				Name:        "assign_group_id",
				Description: "Assign a group id to transactions so they execute atomically",
				InputSchema: schema.Obj(req("txns", schema.Arr(schema.Str("Base64 unsigned transaction"), "Transactions in group order"))),
			},
			Func: assignGroupID,
		},
		{
			Definition: tool.Definition{
				Name:        "sign_transaction",
				Description: "Sign an unsigned transaction with a secret key",
				InputSchema: schema.Obj(
					req("txn", schema.Str("Base64 unsigned transaction")),
					req("secretKey", schema.Str("Hex 64-byte secret key")),
				),
			},
			Func: signTransaction,
		},
	}
	return tool.MustSet(tools...)
}

func appRefProps() []schema.Prop {
	return []schema.Prop{
		opt("appArgs", schema.Arr(schema.Str("Base64 argument"), "Application arguments")),
		opt("accounts", schema.Arr(schema.Str("Address"), "Accounts the program may read")),
		opt("foreignApps", schema.Arr(schema.Int("Application id"), "Applications the program may read")),
		opt("foreignAssets", schema.Arr(schema.Int("Asset id"), "Assets the program may read")),
	}
}

func appProps() *schema.JSON {
	return props(append([]schema.Prop{
		req("from", schema.Str("Sender address")),
		req("appIndex", schema.Int("Application id")),
	}, appRefProps()...)...)
}

func (h *handler) build(ctx context.Context, args tool.Args, name string, fn buildFunc) (jsonvalue.Value, error) {
	note, err := txnutil.Note(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	// Check the sender before touching the network.
	if _, err := txnutil.Address(args, "from"); err != nil {
		return jsonvalue.Value{}, err
	}
	sp, err := txnutil.Params(ctx, h.clients, args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	tx, err := fn(args, sp, note)
	if err != nil {
		return jsonvalue.Value{}, classify(err, name)
	}
	return txnutil.Encode(tx), nil
}

// classify keeps argument errors as they are and reports SDK rejections as
// invalid parameters, since they are raised before anything is sent.
func classify(err error, name string) error {
	if tool.KindOf(err) != 0 {
		return err
	}
	return tool.InvalidParamsf("%s: %v", name, err)
}

func assignGroupID(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	encoded, err := args.Strings("txns")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(encoded) == 0 {
		return jsonvalue.Value{}, tool.InvalidParamsf("argument %q must list at least one transaction", "txns")
	}
	txns := make([]types.Transaction, 0, len(encoded))
	for i, s := range encoded {
		tx, err := txnutil.Decode(tool.Args{"txn": s}, "txn")
		if err != nil {
			return jsonvalue.Value{}, tool.InvalidParamsf("txns[%d]: %v", i, err)
		}
		txns = append(txns, tx)
	}
	grouped, err := transaction.AssignGroupID(txns, "")
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("assign group id: %v", err)
	}
	out := make([]jsonvalue.Value, 0, len(grouped))
	for _, tx := range grouped {
		out = append(out, txnutil.Encode(tx))
	}
	return jsonvalue.ArrayValue(out...), nil
}

func signTransaction(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	tx, err := txnutil.Decode(args, "txn")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sk, err := args.Hex("secretKey")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(sk) != ed25519.PrivateKeySize {
		return jsonvalue.Value{}, tool.InvalidParamsf("secretKey must be %d bytes, got %d", ed25519.PrivateKeySize, len(sk))
	}
	txID, signed, err := crypto.SignTransaction(ed25519.PrivateKey(sk), tx)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("sign transaction: %v", err)
	}
	return txnutil.EncodeSigned(txID, signed), nil
}

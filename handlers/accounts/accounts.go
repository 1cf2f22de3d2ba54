// Package accounts implements the key and mnemonic tools.
package accounts

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
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

// Tools returns the account tools. Only rekey_account talks to algod.
func Tools(clients *upstream.Factory) *tool.Set {
	h := &handler{clients: clients}
	mnemonicProp := schema.Prop{Name: "mnemonic", Schema: schema.Str("25-word Algorand mnemonic"), Required: true}

	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{
				Name:        "create_account",
				Description: "Create a new Algorand account and return its address and mnemonic",
				InputSchema: schema.Obj(),
			},
			Func: h.createAccount,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "rekey_account",
				Description: "Build an unsigned transaction rekeying an account to a new authorizing address",
				InputSchema: schema.Obj(append([]schema.Prop{
					{Name: "sourceAddress", Schema: schema.Str("Account to rekey"), Required: true},
					{Name: "targetAddress", Schema: schema.Str("New authorizing address"), Required: true},
				}, txnutil.ParamProps()...)...),
			},
			Func: h.rekeyAccount,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "mnemonic_to_mdk",
				Description: "Convert a mnemonic to a master derivation key",
				InputSchema: schema.Obj(mnemonicProp),
			},
			Func: mnemonicToMDK,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "mdk_to_mnemonic",
				Description: "Convert a master derivation key to a mnemonic",
				InputSchema: schema.Obj(schema.Prop{Name: "mdk", Schema: schema.Str("Hex master derivation key"), Required: true}),
			},
			Func: mdkToMnemonic,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "secret_key_to_mnemonic",
				Description: "Convert a secret key to a mnemonic",
				InputSchema: schema.Obj(schema.Prop{Name: "secretKey", Schema: schema.Str("Hex 64-byte ed25519 secret key"), Required: true}),
			},
			Func: secretKeyToMnemonic,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "mnemonic_to_secret_key",
				Description: "Convert a mnemonic to an address and secret key",
				InputSchema: schema.Obj(mnemonicProp),
			},
			Func: mnemonicToSecretKey,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "seed_from_mnemonic",
				Description: "Recover the 32-byte seed encoded by a mnemonic",
				InputSchema: schema.Obj(mnemonicProp),
			},
			Func: seedFromMnemonic,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "mnemonic_from_seed",
				Description: "Encode a 32-byte seed as a mnemonic",
				InputSchema: schema.Obj(schema.Prop{Name: "seed", Schema: schema.Str("Hex 32-byte seed"), Required: true}),
			},
			Func: mnemonicFromSeed,
		},
	)
}

func (h *handler) createAccount(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	account := crypto.GenerateAccount()
	m, err := mnemonic.FromPrivateKey(account.PrivateKey)
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "create account")
	}
	return jsonvalue.ObjectValue(
		jsonvalue.M("address", jsonvalue.StringValue(account.Address.String())),
		jsonvalue.M("mnemonic", jsonvalue.StringValue(m)),
	), nil
}

func (h *handler) rekeyAccount(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	source, err := txnutil.Address(args, "sourceAddress")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	target, err := txnutil.Address(args, "targetAddress")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	note, err := txnutil.Note(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sp, err := txnutil.Params(ctx, h.clients, args)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	tx, err := transaction.MakePaymentTxn(source, source, 0, note, "", sp)
	if err != nil {
		return jsonvalue.Value{}, tool.Upstream(err, "build rekey transaction")
	}
	if err := tx.Rekey(target); err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("targetAddress: %v", err)
	}
	return txnutil.Encode(tx), nil
}

func mnemonicToMDK(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	m, err := args.String("mnemonic")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	mdk, err := mnemonic.ToMasterDerivationKey(m)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("mdk", jsonvalue.StringValue(hex.EncodeToString(mdk[:])))), nil
}

func mdkToMnemonic(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	raw, err := args.Hex("mdk")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var mdk types.MasterDerivationKey
	if len(raw) != len(mdk) {
		return jsonvalue.Value{}, tool.InvalidParamsf("mdk must be %d bytes, got %d", len(mdk), len(raw))
	}
	copy(mdk[:], raw)
	m, err := mnemonic.FromMasterDerivationKey(mdk)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid mdk: %v", err)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("mnemonic", jsonvalue.StringValue(m))), nil
}

func secretKeyToMnemonic(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	raw, err := args.Hex("secretKey")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(raw) != ed25519.PrivateKeySize {
		return jsonvalue.Value{}, tool.InvalidParamsf("secretKey must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	m, err := mnemonic.FromPrivateKey(ed25519.PrivateKey(raw))
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid secret key: %v", err)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("mnemonic", jsonvalue.StringValue(m))), nil
}

func mnemonicToSecretKey(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	m, err := args.String("mnemonic")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sk, err := mnemonic.ToPrivateKey(m)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
	}
	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
	}
	return jsonvalue.ObjectValue(
		jsonvalue.M("address", jsonvalue.StringValue(account.Address.String())),
		jsonvalue.M("secretKey", jsonvalue.StringValue(hex.EncodeToString(sk))),
	), nil
}

func seedFromMnemonic(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	m, err := args.String("mnemonic")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	seed, err := mnemonic.ToKey(m)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("seed", jsonvalue.StringValue(hex.EncodeToString(seed)))), nil
}

func mnemonicFromSeed(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	seed, err := args.Hex("seed")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(seed) != ed25519.SeedSize {
		return jsonvalue.Value{}, tool.InvalidParamsf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	m, err := mnemonic.FromKey(seed)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid seed: %v", err)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("mnemonic", jsonvalue.StringValue(m))), nil
}

// Package wallet implements the wallet tools: named accounts kept in a
// keystore that can sign on the caller's behalf.
package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"

	"github.com/bpowers/algorand-mcp/handlers/internal/txnutil"
	"github.com/bpowers/algorand-mcp/internal/logging"
	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/mcp"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
	keystore "github.com/bpowers/algorand-mcp/wallet"
)

const (
	// URIPrefix is the resource namespace served by Handler.
	URIPrefix   = "algorand://wallet/"
	accountsURI = URIPrefix + "accounts"
)

// Handler serves the wallet tools and resources over a keystore.
type Handler struct {
	store   keystore.Store
	clients *upstream.Factory
}

func New(store keystore.Store, clients *upstream.Factory) *Handler {
	return &Handler{store: store, clients: clients}
}

func (h *Handler) Tools() *tool.Set {
	nameProp := schema.Prop{Name: "name", Schema: schema.Str("Wallet account name"), Required: true}

	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_add_account",
				Description: "Add a named account to the wallet, importing a mnemonic or generating a new key",
				InputSchema: schema.Obj(
					nameProp,
					schema.Prop{Name: "mnemonic", Schema: schema.Str("25-word mnemonic to import; a new account is generated when omitted")},
				),
			},
			Func: h.addAccount,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_list_accounts",
				Description: "List the wallet's accounts",
				InputSchema: schema.Obj(),
			},
			Func: h.listAccounts,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_get_account",
				Description: "Get a wallet account's address",
				InputSchema: schema.Obj(nameProp),
			},
			Func: h.getAccount,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_remove_account",
				Description: "Remove an account from the wallet",
				InputSchema: schema.Obj(nameProp),
			},
			Func: h.removeAccount,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_get_info",
				Description: "Get on-chain account information for a wallet account",
				InputSchema: schema.Obj(nameProp, txnutil.NetworkProp),
			},
			Func: h.getInfo,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_get_assets",
				Description: "Get the asset holdings of a wallet account",
				InputSchema: schema.Obj(nameProp, txnutil.NetworkProp),
			},
			Func: h.getAssets,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_sign_transaction",
				Description: "Sign a base64 msgpack transaction with a wallet account",
				InputSchema: schema.Obj(
					nameProp,
					schema.Prop{Name: "txn", Schema: schema.Str("Base64 msgpack unsigned transaction"), Required: true},
				),
			},
			Func: h.signTransaction,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "wallet_sign_bytes",
				Description: "Sign arbitrary bytes with a wallet account",
				InputSchema: schema.Obj(
					nameProp,
					schema.Prop{Name: "bytes", Schema: schema.Str("Hex bytes to sign"), Required: true},
				),
			},
			Func: h.signBytes,
		},
	)
}

// storeErr classifies keystore errors. Lookups of unknown names and
// duplicate names are the caller's mistake; anything else is a failure of
// the store itself.
func storeErr(err error) error {
	if errors.Is(err, keystore.ErrNotFound) || errors.Is(err, keystore.ErrExists) {
		return tool.InvalidParamsf("%s", err.Error())
	}
	return tool.Upstream(err, "wallet store")
}

func (h *Handler) account(args tool.Args) (keystore.Account, error) {
	name, err := args.String("name")
	if err != nil {
		return keystore.Account{}, err
	}
	acct, err := h.store.GetAccount(name)
	if err != nil {
		return keystore.Account{}, storeErr(err)
	}
	return acct, nil
}

func describe(acct keystore.Account) jsonvalue.Value {
	return jsonvalue.ObjectValue(
		jsonvalue.M("name", jsonvalue.StringValue(acct.Name)),
		jsonvalue.M("address", jsonvalue.StringValue(acct.Address)),
		jsonvalue.M("createdAt", jsonvalue.StringValue(acct.CreatedAt.UTC().Format(time.RFC3339))),
	)
}

func (h *Handler) addAccount(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	name, err := args.String("name")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return jsonvalue.Value{}, tool.InvalidParamsf("name must not be blank")
	}
	phrase, err := args.OptString("mnemonic", "")
	if err != nil {
		return jsonvalue.Value{}, err
	}

	var account crypto.Account
	generated := phrase == ""
	if generated {
		account = crypto.GenerateAccount()
		if phrase, err = mnemonic.FromPrivateKey(account.PrivateKey); err != nil {
			return jsonvalue.Value{}, err
		}
	} else {
		sk, err := mnemonic.ToPrivateKey(phrase)
		if err != nil {
			return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
		}
		if account, err = crypto.AccountFromPrivateKey(sk); err != nil {
			return jsonvalue.Value{}, tool.InvalidParamsf("invalid mnemonic: %v", err)
		}
	}

	acct := keystore.Account{
		Name:      name,
		Address:   account.Address.String(),
		SecretKey: account.PrivateKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.AddAccount(acct); err != nil {
		return jsonvalue.Value{}, storeErr(err)
	}
	logging.Component("wallet").Info("added wallet account", "name", name, "address", acct.Address, "generated", generated)

	members := describe(acct).Members()
	if generated {
		members = append(members, jsonvalue.M("mnemonic", jsonvalue.StringValue(phrase)))
	}
	return jsonvalue.ObjectValue(members...), nil
}

func (h *Handler) accountList() (jsonvalue.Value, error) {
	accounts, err := h.store.ListAccounts()
	if err != nil {
		return jsonvalue.Value{}, storeErr(err)
	}
	elems := make([]jsonvalue.Value, len(accounts))
	for i, a := range accounts {
		elems[i] = describe(a)
	}
	return jsonvalue.ObjectValue(jsonvalue.M("accounts", jsonvalue.ArrayValue(elems...))), nil
}

func (h *Handler) listAccounts(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	return h.accountList()
}

func (h *Handler) getAccount(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	acct, err := h.account(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return describe(acct), nil
}

func (h *Handler) removeAccount(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	name, err := args.String("name")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if err := h.store.RemoveAccount(name); err != nil {
		return jsonvalue.Value{}, storeErr(err)
	}
	logging.Component("wallet").Info("removed wallet account", "name", name)
	return jsonvalue.ObjectValue(
		jsonvalue.M("name", jsonvalue.StringValue(name)),
		jsonvalue.M("removed", jsonvalue.BoolValue(true)),
	), nil
}

func (h *Handler) accountInfo(ctx context.Context, args tool.Args) (string, jsonvalue.Value, error) {
	acct, err := h.account(args)
	if err != nil {
		return "", jsonvalue.Value{}, err
	}
	algod, err := txnutil.Service(h.clients, args, "algod")
	if err != nil {
		return "", jsonvalue.Value{}, err
	}
	info, err := algod.Get(ctx, "/v2/accounts/"+acct.Address, nil)
	if err != nil {
		return "", jsonvalue.Value{}, tool.Upstream(err, "account info address=%s", acct.Address)
	}
	return acct.Address, info, nil
}

func (h *Handler) getInfo(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	_, info, err := h.accountInfo(ctx, args)
	return info, err
}

func (h *Handler) getAssets(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	address, info, err := h.accountInfo(ctx, args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	assets, ok := info.Get("assets")
	if !ok || assets.Kind() != jsonvalue.Array {
		assets = jsonvalue.ArrayValue()
	}
	return jsonvalue.ObjectValue(
		jsonvalue.M("address", jsonvalue.StringValue(address)),
		jsonvalue.M("assets", assets),
	), nil
}

func (h *Handler) signTransaction(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	tx, err := txnutil.Decode(args, "txn")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	acct, err := h.account(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	txID, signed, err := crypto.SignTransaction(acct.SecretKey, tx)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("sign transaction: %v", err)
	}
	return txnutil.EncodeSigned(txID, signed), nil
}

func (h *Handler) signBytes(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	msg, err := args.Hex("bytes")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	acct, err := h.account(args)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sig, err := crypto.SignBytes(acct.SecretKey, msg)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("sign bytes: %v", err)
	}
	return jsonvalue.ObjectValue(
		jsonvalue.M("address", jsonvalue.StringValue(acct.Address)),
		jsonvalue.M("signature", jsonvalue.StringValue(hex.EncodeToString(sig))),
	), nil
}

// Resources returns the wallet resources.
func (h *Handler) Resources() []mcp.ResourceDefinition {
	return []mcp.ResourceDefinition{{
		URI:         accountsURI,
		Name:        "Wallet accounts",
		Description: "Names and addresses of the wallet's accounts",
		MimeType:    "application/json",
	}}
}

// ReadResource serves algorand://wallet/accounts.
func (h *Handler) ReadResource(ctx context.Context, uri string) (mcp.ReadResourceResult, error) {
	if uri != accountsURI {
		return mcp.ReadResourceResult{}, tool.InvalidParamsf("unknown wallet resource %q", uri)
	}
	v, err := h.accountList()
	if err != nil {
		return mcp.ReadResourceResult{}, err
	}
	text, err := jsonvalue.Marshal(v)
	if err != nil {
		return mcp.ReadResourceResult{}, err
	}
	return mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{{URI: uri, MimeType: "application/json", Text: string(text)}},
	}, nil
}

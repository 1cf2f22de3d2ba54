// Package txnutil holds the transaction plumbing shared by the transaction,
// account and wallet tools.
package txnutil

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
	"github.com/bpowers/algorand-mcp/upstream"
)

// ValidityWindow is the number of rounds a built transaction stays valid.
const ValidityWindow = 1000

// SuggestedParams fetches /v2/transactions/params from algod.
func SuggestedParams(ctx context.Context, algod *upstream.Client) (types.SuggestedParams, error) {
	v, err := algod.Get(ctx, "/v2/transactions/params", nil)
	if err != nil {
		return types.SuggestedParams{}, tool.Upstream(err, "fetch suggested params")
	}
	return ParseParams(v)
}

// ParseParams converts an algod transaction-params response.
func ParseParams(v jsonvalue.Value) (types.SuggestedParams, error) {
	num := func(key string) (uint64, error) {
		f, ok := v.Get(key)
		if !ok || f.Kind() != jsonvalue.Number {
			return 0, tool.Upstream(fmt.Errorf("missing %q", key), "parse suggested params")
		}
		var n uint64
		if _, err := fmt.Sscan(f.Number().String(), &n); err != nil {
			return 0, tool.Upstream(err, "parse suggested params %q", key)
		}
		return n, nil
	}

	fee, err := num("fee")
	if err != nil {
		return types.SuggestedParams{}, err
	}
	minFee, err := num("min-fee")
	if err != nil {
		return types.SuggestedParams{}, err
	}
	lastRound, err := num("last-round")
	if err != nil {
		return types.SuggestedParams{}, err
	}
	gh, _ := v.Get("genesis-hash")
	genesisHash, err := base64.StdEncoding.DecodeString(gh.Str())
	if err != nil || len(genesisHash) != 32 {
		return types.SuggestedParams{}, tool.Upstream(fmt.Errorf("bad genesis-hash %q", gh.Str()), "parse suggested params")
	}
	gid, _ := v.Get("genesis-id")
	cv, _ := v.Get("consensus-version")

	return types.SuggestedParams{
		Fee:              types.MicroAlgos(fee),
		GenesisID:        gid.Str(),
		GenesisHash:      genesisHash,
		FirstRoundValid:  types.Round(lastRound),
		LastRoundValid:   types.Round(lastRound + ValidityWindow),
		ConsensusVersion: cv.Str(),
		MinFee:           minFee,
	}, nil
}

// NetworkProp selects the network a tool talks to.
var NetworkProp = schema.Prop{
	Name:   "network",
	Schema: schema.Enum("Network to use; defaults to the server's network", "mainnet", "testnet", "localnet"),
}

// ParamProps are the optional overrides every builder accepts.
func ParamProps() []schema.Prop {
	return []schema.Prop{
		NetworkProp,
		{Name: "fee", Schema: schema.Int("Fee in microAlgos; per byte unless flatFee is set")},
		{Name: "flatFee", Schema: schema.Bool("Treat fee as the total fee")},
		{Name: "firstValid", Schema: schema.Int("First valid round")},
		{Name: "lastValid", Schema: schema.Int("Last valid round")},
		{Name: "note", Schema: schema.Str("Optional note, UTF-8 text")},
	}
}

// ApplyOverrides applies the ParamProps arguments to sp.
func ApplyOverrides(sp types.SuggestedParams, args tool.Args) (types.SuggestedParams, error) {
	if args.Has("fee") {
		fee, err := args.Uint64("fee")
		if err != nil {
			return sp, err
		}
		sp.Fee = types.MicroAlgos(fee)
	}
	flat, err := args.Bool("flatFee", sp.FlatFee)
	if err != nil {
		return sp, err
	}
	sp.FlatFee = flat
	if args.Has("firstValid") {
		first, err := args.Uint64("firstValid")
		if err != nil {
			return sp, err
		}
		sp.FirstRoundValid = types.Round(first)
		sp.LastRoundValid = types.Round(first + ValidityWindow)
	}
	if args.Has("lastValid") {
		last, err := args.Uint64("lastValid")
		if err != nil {
			return sp, err
		}
		sp.LastRoundValid = types.Round(last)
	}
	if sp.LastRoundValid < sp.FirstRoundValid {
		return sp, tool.InvalidParamsf("lastValid %d is before firstValid %d", sp.LastRoundValid, sp.FirstRoundValid)
	}
	return sp, nil
}

// Note returns the optional note argument as bytes.
func Note(args tool.Args) ([]byte, error) {
	s, err := args.OptString("note", "")
	if err != nil || s == "" {
		return nil, err
	}
	return []byte(s), nil
}

// Encode describes an unsigned transaction: its id, the base64 msgpack
// encoding and a readable summary.
func Encode(tx types.Transaction) jsonvalue.Value {
	return jsonvalue.ObjectValue(
		jsonvalue.M("txID", jsonvalue.StringValue(crypto.GetTxID(tx))),
		jsonvalue.M("encoded", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(msgpack.Encode(tx)))),
		jsonvalue.M("txn", Summary(tx)),
	)
}

// EncodeSigned describes a signed transaction blob.
func EncodeSigned(txID string, signed []byte) jsonvalue.Value {
	return jsonvalue.ObjectValue(
		jsonvalue.M("txID", jsonvalue.StringValue(txID)),
		jsonvalue.M("blob", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(signed))),
	)
}

// Summary renders the commonly inspected transaction fields.
func Summary(tx types.Transaction) jsonvalue.Value {
	members := []jsonvalue.Member{
		jsonvalue.M("type", jsonvalue.StringValue(string(tx.Type))),
		jsonvalue.M("sender", jsonvalue.StringValue(tx.Sender.String())),
		jsonvalue.M("fee", jsonvalue.Uint(uint64(tx.Fee))),
		jsonvalue.M("firstValid", jsonvalue.Uint(uint64(tx.FirstValid))),
		jsonvalue.M("lastValid", jsonvalue.Uint(uint64(tx.LastValid))),
		jsonvalue.M("genesisID", jsonvalue.StringValue(tx.GenesisID)),
		jsonvalue.M("genesisHash", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(tx.GenesisHash[:]))),
	}
	if len(tx.Note) > 0 {
		members = append(members, jsonvalue.M("note", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(tx.Note))))
	}
	if tx.Group != (types.Digest{}) {
		members = append(members, jsonvalue.M("group", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(tx.Group[:]))))
	}
	if tx.RekeyTo != (types.Address{}) {
		members = append(members, jsonvalue.M("rekeyTo", jsonvalue.StringValue(tx.RekeyTo.String())))
	}

	switch tx.Type {
	case types.PaymentTx:
		members = append(members,
			jsonvalue.M("receiver", jsonvalue.StringValue(tx.Receiver.String())),
			jsonvalue.M("amount", jsonvalue.Uint(uint64(tx.Amount))),
		)
		if tx.CloseRemainderTo != (types.Address{}) {
			members = append(members, jsonvalue.M("closeRemainderTo", jsonvalue.StringValue(tx.CloseRemainderTo.String())))
		}
	case types.AssetTransferTx:
		members = append(members,
			jsonvalue.M("assetID", jsonvalue.Uint(uint64(tx.XferAsset))),
			jsonvalue.M("receiver", jsonvalue.StringValue(tx.AssetReceiver.String())),
			jsonvalue.M("amount", jsonvalue.Uint(tx.AssetAmount)),
		)
	case types.AssetConfigTx:
		members = append(members, jsonvalue.M("assetID", jsonvalue.Uint(uint64(tx.ConfigAsset))))
		if tx.AssetParams.Total > 0 {
			members = append(members,
				jsonvalue.M("total", jsonvalue.Uint(tx.AssetParams.Total)),
				jsonvalue.M("decimals", jsonvalue.Uint(uint64(tx.AssetParams.Decimals))),
				jsonvalue.M("unitName", jsonvalue.StringValue(tx.AssetParams.UnitName)),
				jsonvalue.M("assetName", jsonvalue.StringValue(tx.AssetParams.AssetName)),
			)
		}
	case types.AssetFreezeTx:
		members = append(members,
			jsonvalue.M("assetID", jsonvalue.Uint(uint64(tx.FreezeAsset))),
			jsonvalue.M("freezeAccount", jsonvalue.StringValue(tx.FreezeAccount.String())),
			jsonvalue.M("frozen", jsonvalue.BoolValue(tx.AssetFrozen)),
		)
	case types.ApplicationCallTx:
		members = append(members,
			jsonvalue.M("appID", jsonvalue.Uint(uint64(tx.ApplicationID))),
			jsonvalue.M("onComplete", jsonvalue.Uint(uint64(tx.OnCompletion))),
		)
	case types.KeyRegistrationTx:
		members = append(members,
			jsonvalue.M("voteFirst", jsonvalue.Uint(uint64(tx.VoteFirst))),
			jsonvalue.M("voteLast", jsonvalue.Uint(uint64(tx.VoteLast))),
			jsonvalue.M("nonparticipation", jsonvalue.BoolValue(tx.Nonparticipation)),
		)
	}
	return jsonvalue.ObjectValue(members...)
}

// Decode parses a base64 msgpack unsigned transaction argument.
func Decode(args tool.Args, key string) (types.Transaction, error) {
	raw, err := args.Base64(key)
	if err != nil {
		return types.Transaction{}, err
	}
	var tx types.Transaction
	if err := msgpack.Decode(raw, &tx); err != nil {
		return types.Transaction{}, tool.InvalidParamsf("argument %q is not a msgpack transaction: %v", key, err)
	}
	if tx.Type == "" {
		return types.Transaction{}, tool.InvalidParamsf("argument %q has no transaction type", key)
	}
	return tx, nil
}

// DecodeSigned parses a base64 msgpack signed transaction.
func DecodeSigned(b64 string) (types.SignedTxn, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return types.SignedTxn{}, tool.InvalidParamsf("signed transaction must be base64: %v", err)
	}
	var stx types.SignedTxn
	if err := msgpack.Decode(raw, &stx); err != nil {
		return types.SignedTxn{}, tool.InvalidParamsf("not a msgpack signed transaction: %v", err)
	}
	return stx, nil
}

// Address returns a required argument holding a valid Algorand address.
func Address(args tool.Args, key string) (string, error) {
	s, err := args.String(key)
	if err != nil {
		return "", err
	}
	if _, err := types.DecodeAddress(s); err != nil {
		return "", tool.InvalidParamsf("argument %q is not a valid address: %v", key, err)
	}
	return s, nil
}

// Service selects the network named by the optional "network" argument and
// returns its client for the named upstream service.
func Service(clients *upstream.Factory, args tool.Args, name string) (*upstream.Client, error) {
	network, err := args.OptString("network", "")
	if err != nil {
		return nil, err
	}
	selected, err := clients.Select(network)
	if err != nil {
		return nil, err
	}
	return selected.Service(name)
}

// Params fetches suggested params for the call's network and applies the
// ParamProps overrides.
func Params(ctx context.Context, clients *upstream.Factory, args tool.Args) (types.SuggestedParams, error) {
	algod, err := Service(clients, args, "algod")
	if err != nil {
		return types.SuggestedParams{}, err
	}
	sp, err := SuggestedParams(ctx, algod)
	if err != nil {
		return types.SuggestedParams{}, err
	}
	return ApplyOverrides(sp, args)
}

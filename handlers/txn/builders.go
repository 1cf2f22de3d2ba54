package txn

import (
	"encoding/base64"

	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/bpowers/algorand-mcp/handlers/internal/txnutil"
	"github.com/bpowers/algorand-mcp/tool"
)

// minFee applies when algod reports no minimum.
const minFee = 1000

func optAddress(args tool.Args, key string) (string, error) {
	if !args.Has(key) {
		return "", nil
	}
	return txnutil.Address(args, key)
}

func payment(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	to, err := txnutil.Address(args, "to")
	if err != nil {
		return types.Transaction{}, err
	}
	amount, err := args.Uint64("amount")
	if err != nil {
		return types.Transaction{}, err
	}
	closeTo, err := optAddress(args, "closeRemainderTo")
	if err != nil {
		return types.Transaction{}, err
	}
	return transaction.MakePaymentTxn(from, to, amount, note, closeTo, sp)
}

func keyreg(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	voteKey, err := args.OptString("voteKey", "")
	if err != nil {
		return types.Transaction{}, err
	}
	selectionKey, err := args.OptString("selectionKey", "")
	if err != nil {
		return types.Transaction{}, err
	}
	stateProofKey, err := args.OptString("stateProofKey", "")
	if err != nil {
		return types.Transaction{}, err
	}
	voteFirst, err := args.OptUint64("voteFirst", 0)
	if err != nil {
		return types.Transaction{}, err
	}
	voteLast, err := args.OptUint64("voteLast", 0)
	if err != nil {
		return types.Transaction{}, err
	}
	dilution, err := args.OptUint64("voteKeyDilution", 0)
	if err != nil {
		return types.Transaction{}, err
	}
	nonpart, err := args.Bool("nonParticipation", false)
	if err != nil {
		return types.Transaction{}, err
	}
	online := voteKey != "" || selectionKey != ""
	if online && (voteKey == "" || selectionKey == "" || voteLast <= voteFirst) {
		return types.Transaction{}, tool.InvalidParamsf("online registration needs voteKey, selectionKey and voteLast > voteFirst")
	}
	return transaction.MakeKeyRegTxnWithStateProofKey(from, note, sp, voteKey, selectionKey, stateProofKey, voteFirst, voteLast, dilution, nonpart)
}

func assetCreate(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	total, err := args.Uint64("total")
	if err != nil {
		return types.Transaction{}, err
	}
	decimals, err := args.Uint64("decimals")
	if err != nil {
		return types.Transaction{}, err
	}
	if decimals > 19 {
		return types.Transaction{}, tool.InvalidParamsf("decimals must be at most 19, got %d", decimals)
	}
	frozen, err := args.Bool("defaultFrozen", false)
	if err != nil {
		return types.Transaction{}, err
	}
	var text [4]string
	for i, key := range []string{"unitName", "assetName", "assetURL", "assetMetadataHash"} {
		if text[i], err = args.OptString(key, ""); err != nil {
			return types.Transaction{}, err
		}
	}
	var roles [4]string
	for i, key := range []string{"manager", "reserve", "freeze", "clawback"} {
		if roles[i], err = optAddress(args, key); err != nil {
			return types.Transaction{}, err
		}
	}
	return transaction.MakeAssetCreateTxn(from, note, sp, total, uint32(decimals), frozen,
		roles[0], roles[1], roles[2], roles[3], text[0], text[1], text[2], text[3])
}

func assetConfig(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	index, err := args.Uint64("assetIndex")
	if err != nil {
		return types.Transaction{}, err
	}
	var roles [4]string
	for i, key := range []string{"manager", "reserve", "freeze", "clawback"} {
		if roles[i], err = optAddress(args, key); err != nil {
			return types.Transaction{}, err
		}
	}
	strict, err := args.Bool("strictEmptyAddressChecking", true)
	if err != nil {
		return types.Transaction{}, err
	}
	return transaction.MakeAssetConfigTxn(from, note, sp, index, roles[0], roles[1], roles[2], roles[3], strict)
}

func assetDestroy(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	index, err := args.Uint64("assetIndex")
	if err != nil {
		return types.Transaction{}, err
	}
	return transaction.MakeAssetDestroyTxn(from, note, sp, index)
}

func assetFreeze(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	index, err := args.Uint64("assetIndex")
	if err != nil {
		return types.Transaction{}, err
	}
	target, err := txnutil.Address(args, "freezeTarget")
	if err != nil {
		return types.Transaction{}, err
	}
	if !args.Has("freezeState") {
		return types.Transaction{}, tool.InvalidParamsf("missing required argument %q", "freezeState")
	}
	state, err := args.Bool("freezeState", false)
	if err != nil {
		return types.Transaction{}, err
	}
	return transaction.MakeAssetFreezeTxn(from, note, sp, index, target, state)
}

func assetTransfer(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	from, _ := args.String("from")
	to, err := txnutil.Address(args, "to")
	if err != nil {
		return types.Transaction{}, err
	}
	index, err := args.Uint64("assetIndex")
	if err != nil {
		return types.Transaction{}, err
	}
	amount, err := args.Uint64("amount")
	if err != nil {
		return types.Transaction{}, err
	}
	closeTo, err := optAddress(args, "closeRemainderTo")
	if err != nil {
		return types.Transaction{}, err
	}
	return transaction.MakeAssetTransferTxn(from, to, amount, note, sp, closeTo, index)
}

func appCreate(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
	fields, err := appRefs(args)
	if err != nil {
		return types.Transaction{}, err
	}
	if fields.ApprovalProgram, err = args.Base64("approvalProgram"); err != nil {
		return types.Transaction{}, err
	}
	if fields.ClearStateProgram, err = args.Base64("clearProgram"); err != nil {
		return types.Transaction{}, err
	}
	schemaKeys := []struct {
		key string
		dst *uint64
	}{
		{"numGlobalInts", &fields.GlobalStateSchema.NumUint},
		{"numGlobalByteSlices", &fields.GlobalStateSchema.NumByteSlice},
		{"numLocalInts", &fields.LocalStateSchema.NumUint},
		{"numLocalByteSlices", &fields.LocalStateSchema.NumByteSlice},
	}
	for _, s := range schemaKeys {
		if *s.dst, err = args.OptUint64(s.key, 0); err != nil {
			return types.Transaction{}, err
		}
	}
	pages, err := args.OptUint64("extraPages", 0)
	if err != nil {
		return types.Transaction{}, err
	}
	if pages > 3 {
		return types.Transaction{}, tool.InvalidParamsf("extraPages must be at most 3, got %d", pages)
	}
	fields.ExtraProgramPages = uint32(pages)

	optIn, err := args.Bool("optIn", false)
	if err != nil {
		return types.Transaction{}, err
	}
	fields.OnCompletion = types.NoOpOC
	if optIn {
		fields.OnCompletion = types.OptInOC
	}
	return appTxn(args, sp, note, fields)
}

func appCall(oc types.OnCompletion) buildFunc {
	return func(args tool.Args, sp types.SuggestedParams, note []byte) (types.Transaction, error) {
		fields, err := appRefs(args)
		if err != nil {
			return types.Transaction{}, err
		}
		id, err := args.Uint64("appIndex")
		if err != nil {
			return types.Transaction{}, err
		}
		if id == 0 {
			return types.Transaction{}, tool.InvalidParamsf("appIndex must be non-zero")
		}
		fields.ApplicationID = types.AppIndex(id)
		fields.OnCompletion = oc
		if oc == types.UpdateApplicationOC {
			if fields.ApprovalProgram, err = args.Base64("approvalProgram"); err != nil {
				return types.Transaction{}, err
			}
			if fields.ClearStateProgram, err = args.Base64("clearProgram"); err != nil {
				return types.Transaction{}, err
			}
		}
		return appTxn(args, sp, note, fields)
	}
}

// appRefs reads the arguments and references shared by every app call.
func appRefs(args tool.Args) (types.ApplicationCallTxnFields, error) {
	var fields types.ApplicationCallTxnFields

	encodedArgs, err := args.Strings("appArgs")
	if err != nil {
		return fields, err
	}
	for i, s := range encodedArgs {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fields, tool.InvalidParamsf("appArgs[%d] must be base64: %v", i, err)
		}
		fields.ApplicationArgs = append(fields.ApplicationArgs, b)
	}

	accounts, err := args.Strings("accounts")
	if err != nil {
		return fields, err
	}
	for i, s := range accounts {
		addr, err := types.DecodeAddress(s)
		if err != nil {
			return fields, tool.InvalidParamsf("accounts[%d] is not a valid address: %v", i, err)
		}
		fields.Accounts = append(fields.Accounts, addr)
	}

	apps, err := args.Uint64s("foreignApps")
	if err != nil {
		return fields, err
	}
	for _, id := range apps {
		fields.ForeignApps = append(fields.ForeignApps, types.AppIndex(id))
	}
	assets, err := args.Uint64s("foreignAssets")
	if err != nil {
		return fields, err
	}
	for _, id := range assets {
		fields.ForeignAssets = append(fields.ForeignAssets, types.AssetIndex(id))
	}
	return fields, nil
}

// appTxn assembles an application call and sets its fee the way the SDK's
// builders do: per byte unless the fee is flat, never below the minimum.
func appTxn(args tool.Args, sp types.SuggestedParams, note []byte, fields types.ApplicationCallTxnFields) (types.Transaction, error) {
	from, _ := args.String("from")
	sender, err := types.DecodeAddress(from)
	if err != nil {
		return types.Transaction{}, tool.InvalidParamsf("argument %q is not a valid address: %v", "from", err)
	}
	var genesisHash types.Digest
	if len(sp.GenesisHash) != len(genesisHash) {
		return types.Transaction{}, tool.InvalidParamsf("suggested params have a %d-byte genesis hash", len(sp.GenesisHash))
	}
	copy(genesisHash[:], sp.GenesisHash)

	tx := types.Transaction{
		Type: types.ApplicationCallTx,
		Header: types.Header{
			Sender:      sender,
			FirstValid:  sp.FirstRoundValid,
			LastValid:   sp.LastRoundValid,
			Note:        note,
			GenesisID:   sp.GenesisID,
			GenesisHash: genesisHash,
		},
		ApplicationFields: types.ApplicationFields{ApplicationCallTxnFields: fields},
	}

	floor := types.MicroAlgos(sp.MinFee)
	if floor == 0 {
		floor = minFee
	}
	if sp.FlatFee {
		tx.Fee = sp.Fee
	} else {
		size, err := transaction.EstimateSize(tx)
		if err != nil {
			return types.Transaction{}, tool.InvalidParamsf("estimate transaction size: %v", err)
		}
		tx.Fee = sp.Fee * types.MicroAlgos(size)
	}
	if tx.Fee < floor {
		tx.Fee = floor
	}
	return tx, nil
}

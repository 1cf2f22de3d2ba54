// Package utility implements address, integer and signing helpers that need
// no network access.
package utility

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
	"github.com/bpowers/algorand-mcp/tool"
)

// Tools returns the utility tools.
func Tools() *tool.Set {
	hexBytes := func(desc string) schema.Prop {
		return schema.Prop{Name: "bytes", Schema: schema.Str(desc), Required: true}
	}
	addressProp := schema.Prop{Name: "address", Schema: schema.Str("Algorand address"), Required: true}

	return tool.MustSet(
		tool.Tool{
			Definition: tool.Definition{Name: "ping", Description: "Check that the server is responsive", InputSchema: schema.Obj()},
			Func:       ping,
		},
		tool.Tool{
			Definition: tool.Definition{Name: "validate_address", Description: "Check whether a string is a valid Algorand address", InputSchema: schema.Obj(addressProp)},
			Func:       validateAddress,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "encode_address",
				Description: "Encode a 32-byte public key as an Algorand address",
				InputSchema: schema.Obj(schema.Prop{Name: "publicKey", Schema: schema.Str("Hex public key"), Required: true}),
			},
			Func: encodeAddress,
		},
		tool.Tool{
			Definition: tool.Definition{Name: "decode_address", Description: "Decode an Algorand address to its public key", InputSchema: schema.Obj(addressProp)},
			Func:       decodeAddress,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "get_application_address",
				Description: "Get the escrow address of an application",
				InputSchema: schema.Obj(schema.Prop{Name: "appId", Schema: schema.Int("Application id"), Required: true}),
			},
			Func: applicationAddress,
		},
		tool.Tool{
			Definition: tool.Definition{Name: "bytes_to_bigint", Description: "Interpret big-endian bytes as an unsigned integer", InputSchema: schema.Obj(hexBytes("Hex bytes"))},
			Func:       bytesToBigint,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "bigint_to_bytes",
				Description: "Encode an unsigned integer as fixed-size big-endian bytes",
				InputSchema: schema.Obj(
					schema.Prop{Name: "value", Schema: schema.Str("Decimal integer"), Required: true},
					schema.Prop{Name: "size", Schema: schema.Int("Output size in bytes, at most 64"), Required: true},
				),
			},
			Func: bigintToBytes,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "encode_uint64",
				Description: "Encode a uint64 as 8 big-endian bytes",
				InputSchema: schema.Obj(schema.Prop{Name: "value", Schema: schema.Str("Decimal integer"), Required: true}),
			},
			Func: encodeUint64,
		},
		tool.Tool{
			Definition: tool.Definition{Name: "decode_uint64", Description: "Decode up to 8 big-endian bytes as a uint64", InputSchema: schema.Obj(hexBytes("Hex bytes"))},
			Func:       decodeUint64,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "verify_bytes",
				Description: "Verify a signature produced by sign_bytes",
				InputSchema: schema.Obj(
					hexBytes("Hex message"),
					schema.Prop{Name: "signature", Schema: schema.Str("Hex signature"), Required: true},
					addressProp,
				),
			},
			Func: verifyBytes,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "sign_bytes",
				Description: "Sign arbitrary bytes with the MX domain prefix",
				InputSchema: schema.Obj(
					hexBytes("Hex message"),
					schema.Prop{Name: "secretKey", Schema: schema.Str("Hex 64-byte secret key"), Required: true},
				),
			},
			Func: signBytes,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "encode_obj",
				Description: "Encode a JSON object as base64 msgpack",
				InputSchema: schema.Obj(schema.Prop{Name: "obj", Schema: &schema.JSON{Type: schema.Object, Description: "Object to encode"}, Required: true}),
			},
			Func: encodeObj,
		},
		tool.Tool{
			Definition: tool.Definition{
				Name:        "decode_obj",
				Description: "Decode base64 msgpack into a JSON object",
				InputSchema: schema.Obj(schema.Prop{Name: "bytes", Schema: schema.Str("Base64 msgpack"), Required: true}),
			},
			Func: decodeObj,
		},
	)
}

func obj(key string, v jsonvalue.Value) jsonvalue.Value {
	return jsonvalue.ObjectValue(jsonvalue.M(key, v))
}

func ping(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	return obj("status", jsonvalue.StringValue("pong")), nil
}

func validateAddress(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	s, err := args.String("address")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	_, decodeErr := types.DecodeAddress(s)
	return obj("isValid", jsonvalue.BoolValue(decodeErr == nil)), nil
}

func encodeAddress(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	pk, err := args.Hex("publicKey")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var addr types.Address
	if len(pk) != len(addr) {
		return jsonvalue.Value{}, tool.InvalidParamsf("publicKey must be %d bytes, got %d", len(addr), len(pk))
	}
	copy(addr[:], pk)
	return obj("address", jsonvalue.StringValue(addr.String())), nil
}

func decodeAddress(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	s, err := args.String("address")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	addr, err := types.DecodeAddress(s)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid address: %v", err)
	}
	return obj("publicKey", jsonvalue.StringValue(hex.EncodeToString(addr[:]))), nil
}

func applicationAddress(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	id, err := args.Uint64("appId")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return obj("address", jsonvalue.StringValue(crypto.GetApplicationAddress(id).String())), nil
}

func bytesToBigint(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	b, err := args.Hex("bytes")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return obj("value", jsonvalue.BigInt(new(big.Int).SetBytes(b))), nil
}

// maxBigintBytes bounds bigint_to_bytes output; 64 bytes covers ABI uint512.
const maxBigintBytes = 64

func bigintToBytes(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	n, err := bigArg(args, "value")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	size, err := args.OptInt("size", 0)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if size <= 0 || size > maxBigintBytes {
		return jsonvalue.Value{}, tool.InvalidParamsf("size must be between 1 and %d, got %d", maxBigintBytes, size)
	}
	if (n.BitLen()+7)/8 > size {
		return jsonvalue.Value{}, tool.InvalidParamsf("value does not fit in %d bytes", size)
	}
	return obj("bytes", jsonvalue.StringValue(hex.EncodeToString(n.FillBytes(make([]byte, size))))), nil
}

func encodeUint64(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	n, err := args.Uint64("value")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return obj("bytes", jsonvalue.StringValue(hex.EncodeToString(binary.BigEndian.AppendUint64(nil, n)))), nil
}

func decodeUint64(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	b, err := args.Hex("bytes")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(b) > 8 {
		return jsonvalue.Value{}, tool.InvalidParamsf("bytes must be at most 8 long, got %d", len(b))
	}
	padded := make([]byte, 8)
	copy(padded[8-len(b):], b)
	return obj("value", jsonvalue.Uint(binary.BigEndian.Uint64(padded))), nil
}

func verifyBytes(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	msg, err := args.Hex("bytes")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sig, err := args.Hex("signature")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := args.String("address")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	addr, err := types.DecodeAddress(s)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid address: %v", err)
	}
	ok := len(sig) == ed25519.SignatureSize && crypto.VerifyBytes(ed25519.PublicKey(addr[:]), msg, sig)
	return obj("verified", jsonvalue.BoolValue(ok)), nil
}

func signBytes(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	msg, err := args.Hex("bytes")
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
	sig, err := crypto.SignBytes(ed25519.PrivateKey(sk), msg)
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("sign bytes: %v", err)
	}
	return obj("signature", jsonvalue.StringValue(hex.EncodeToString(sig))), nil
}

func encodeObj(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	o, err := args.Object("obj")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if o == nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("missing required argument %q", "obj")
	}
	encoded := msgpack.Encode(toMsgpack(o))
	return obj("encoded", jsonvalue.StringValue(base64.StdEncoding.EncodeToString(encoded))), nil
}

func decodeObj(ctx context.Context, args tool.Args) (jsonvalue.Value, error) {
	raw, err := args.Base64("bytes")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var decoded any
	if err := msgpack.Decode(raw, &decoded); err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("invalid msgpack: %v", err)
	}
	v, err := jsonvalue.FromGo(fromMsgpack(decoded))
	if err != nil {
		return jsonvalue.Value{}, tool.InvalidParamsf("decoded value is not representable as JSON: %v", err)
	}
	return obj("decoded", v), nil
}

func bigArg(args tool.Args, key string) (*big.Int, error) {
	if !args.Has(key) {
		return nil, tool.InvalidParamsf("missing required argument %q", key)
	}
	var text string
	switch v := args[key].(type) {
	case json.Number:
		text = v.String()
	case string:
		text = v
	default:
		return nil, tool.InvalidParamsf("argument %q must be an integer", key)
	}
	n, ok := new(big.Int).SetString(text, 10)
	if !ok || n.Sign() < 0 {
		return nil, tool.InvalidParamsf("argument %q must be a non-negative integer", key)
	}
	return n, nil
}

// toMsgpack replaces json.Number with concrete integer or float types so
// the codec encodes numbers rather than strings.
func toMsgpack(x any) any {
	switch v := x.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, ok := new(big.Int).SetString(v.String(), 10); ok && u.IsUint64() {
			return u.Uint64()
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = toMsgpack(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toMsgpack(e)
		}
		return out
	default:
		return x
	}
}

// fromMsgpack converts codec output into values jsonvalue.FromGo accepts.
func fromMsgpack(x any) any {
	switch v := x.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[keyString(k)] = fromMsgpack(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = fromMsgpack(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fromMsgpack(e)
		}
		return out
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
		return base64.StdEncoding.EncodeToString(v)
	default:
		return x
	}
}

func keyString(k any) string {
	switch v := k.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

package utility

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/tool"
)

func call(t *testing.T, name string, args tool.Args) jsonvalue.Value {
	t.Helper()
	v, err := Tools().Handle(context.Background(), name, args)
	require.NoError(t, err)
	return v
}

func text(t *testing.T, v jsonvalue.Value) string {
	t.Helper()
	b, err := jsonvalue.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestPing(t *testing.T) {
	assert.Equal(t, `{"status":"pong"}`, text(t, call(t, "ping", nil)))
}

func TestAddressRoundTrip(t *testing.T) {
	account := crypto.GenerateAccount()
	addr := account.Address.String()

	assert.Equal(t, `{"isValid":true}`, text(t, call(t, "validate_address", tool.Args{"address": addr})))
	assert.Equal(t, `{"isValid":false}`, text(t, call(t, "validate_address", tool.Args{"address": "not-an-address"})))

	decoded := call(t, "decode_address", tool.Args{"address": addr})
	pk, _ := decoded.Get("publicKey")
	assert.Equal(t, hex.EncodeToString(account.PublicKey), pk.Str())

	encoded := call(t, "encode_address", tool.Args{"publicKey": pk.Str()})
	got, _ := encoded.Get("address")
	assert.Equal(t, addr, got.Str())
}

func TestApplicationAddress(t *testing.T) {
	v := call(t, "get_application_address", tool.Args{"appId": "123"})
	addr, _ := v.Get("address")
	assert.Equal(t, crypto.GetApplicationAddress(123).String(), addr.Str())
}

func TestBigIntConversions(t *testing.T) {
	v := call(t, "bigint_to_bytes", tool.Args{"value": "18446744073709551616", "size": "9"})
	assert.Equal(t, `{"bytes":"010000000000000000"}`, text(t, v))

	back := call(t, "bytes_to_bigint", tool.Args{"bytes": "010000000000000000"})
	assert.Equal(t, `{"value":18446744073709551616}`, text(t, back))

	wide := call(t, "bigint_to_bytes", tool.Args{"value": "1", "size": "64"})
	assert.Equal(t, `{"bytes":"`+strings.Repeat("00", 63)+`01"}`, text(t, wide))

	_, err := Tools().Handle(context.Background(), "bigint_to_bytes", tool.Args{"value": "65536", "size": "2"})
	require.Error(t, err)
	assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
}

func TestUint64Conversions(t *testing.T) {
	v := call(t, "encode_uint64", tool.Args{"value": "18446744073709551615"})
	assert.Equal(t, `{"bytes":"ffffffffffffffff"}`, text(t, v))

	back := call(t, "decode_uint64", tool.Args{"bytes": "ffffffffffffffff"})
	assert.Equal(t, `{"value":18446744073709551615}`, text(t, back))

	short := call(t, "decode_uint64", tool.Args{"bytes": "0102"})
	assert.Equal(t, `{"value":258}`, text(t, short))

	_, err := Tools().Handle(context.Background(), "decode_uint64", tool.Args{"bytes": "010203040506070809"})
	assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
}

func TestSignAndVerifyBytes(t *testing.T) {
	account := crypto.GenerateAccount()
	msg := hex.EncodeToString([]byte("hello algorand"))

	signed := call(t, "sign_bytes", tool.Args{"bytes": msg, "secretKey": hex.EncodeToString(account.PrivateKey)})
	sig, _ := signed.Get("signature")
	require.Len(t, sig.Str(), 2*ed25519.SignatureSize)

	ok := call(t, "verify_bytes", tool.Args{"bytes": msg, "signature": sig.Str(), "address": account.Address.String()})
	assert.Equal(t, `{"verified":true}`, text(t, ok))

	other := crypto.GenerateAccount()
	bad := call(t, "verify_bytes", tool.Args{"bytes": msg, "signature": sig.Str(), "address": other.Address.String()})
	assert.Equal(t, `{"verified":false}`, text(t, bad))
}

func TestEncodeDecodeObj(t *testing.T) {
	args, err := tool.DecodeArgs([]byte(`{"obj":{"name":"algo","amount":12,"nested":{"ok":true},"list":[1,2]}}`))
	require.NoError(t, err)

	encoded := call(t, "encode_obj", args)
	blob, _ := encoded.Get("encoded")
	require.NotEmpty(t, blob.Str())

	decoded := call(t, "decode_obj", tool.Args{"bytes": blob.Str()})
	obj, ok := decoded.Get("decoded")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"algo","amount":12,"nested":{"ok":true},"list":[1,2]}`, text(t, obj))
}

func TestInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args tool.Args
	}{
		{"short public key", "encode_address", tool.Args{"publicKey": "abcd"}},
		{"bad address", "decode_address", tool.Args{"address": "nope"}},
		{"missing app id", "get_application_address", tool.Args{}},
		{"negative bigint", "bigint_to_bytes", tool.Args{"value": "-1", "size": "4"}},
		{"zero size", "bigint_to_bytes", tool.Args{"value": "1", "size": "0"}},
		{"oversized size", "bigint_to_bytes", tool.Args{"value": "1", "size": "65"}},
		{"absurd size", "bigint_to_bytes", tool.Args{"value": "1", "size": "1125899906842624"}},
		{"bad secret key", "sign_bytes", tool.Args{"bytes": "00", "secretKey": "00"}},
		{"missing obj", "encode_obj", tool.Args{}},
		{"bad msgpack", "decode_obj", tool.Args{"bytes": "!!!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tools().Handle(context.Background(), tt.tool, tt.args)
			require.Error(t, err)
			assert.Equal(t, tool.InvalidParams, tool.KindOf(err))
		})
	}
}

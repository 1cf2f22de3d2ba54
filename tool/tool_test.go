package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/algorand-mcp/jsonvalue"
	"github.com/bpowers/algorand-mcp/schema"
)

func TestUpstreamWrapsGenericErrors(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Upstream(cause, "indexer lookup account %s", "ABC")
	require.Error(t, err)

	assert.Equal(t, UpstreamFailure, KindOf(err))
	assert.Equal(t, "indexer lookup account ABC: dial tcp: connection refused", err.Error())
	assert.False(t, errors.Is(err, cause), "original error identity is not preserved")
}

func TestUpstreamDoesNotDoubleWrap(t *testing.T) {
	for _, typed := range []error{
		NewUnknownTool("nope"),
		InvalidParamsf("missing required argument %q", "address"),
		Upstream(errors.New("boom"), "algod"),
	} {
		wrapped := Upstream(typed, "outer")
		assert.Same(t, typed, wrapped)
	}

	assert.NoError(t, Upstream(nil, "nothing"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, UnknownTool, KindOf(NewUnknownTool("x")))
	assert.Equal(t, InvalidParams, KindOf(fmt.Errorf("context: %w", InvalidParamsf("bad"))))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "unknown tool: x", NewUnknownTool("x").Error())
}

func TestDecodeArgs(t *testing.T) {
	args, err := DecodeArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = DecodeArgs(json.RawMessage(" null "))
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = DecodeArgs(json.RawMessage(`{"amount":18446744073709551615}`))
	require.NoError(t, err)
	n, err := args.Uint64("amount")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), n)

	_, err = DecodeArgs(json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.Equal(t, InvalidParams, KindOf(err))
}

func TestArgsAccessors(t *testing.T) {
	args, err := DecodeArgs(json.RawMessage(`{
		"address": "ADDR",
		"empty": "",
		"count": 3,
		"countStr": "42",
		"negative": -1,
		"flag": true,
		"b64": "aGVsbG8=",
		"hex": "0x0a0b",
		"names": ["a", "b"],
		"ids": [1, "2"],
		"obj": {"k": 1}
	}`))
	require.NoError(t, err)

	s, err := args.String("address")
	require.NoError(t, err)
	assert.Equal(t, "ADDR", s)

	_, err = args.String("empty")
	assert.Equal(t, InvalidParams, KindOf(err))

	_, err = args.String("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required argument "missing"`)

	def, err := args.OptString("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", def)

	n, err := args.Uint64("countStr")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	_, err = args.Uint64("negative")
	assert.Equal(t, InvalidParams, KindOf(err))

	i, err := args.OptInt("negative", 0)
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	opt, err := args.OptUint64("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), opt)

	flag, err := args.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, flag)

	_, err = args.Bool("count", false)
	assert.Equal(t, InvalidParams, KindOf(err))

	b, err := args.Base64("b64")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)

	h, err := args.Hex("hex")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b}, h)

	names, err := args.Strings("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = args.Strings("ids")
	assert.Equal(t, InvalidParams, KindOf(err))

	ids, err := args.Uint64s("ids")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)

	obj, err := args.Object("obj")
	require.NoError(t, err)
	assert.Contains(t, obj, "k")

	without := args.Without("address", "flag")
	assert.False(t, without.Has("address"))
	assert.True(t, args.Has("address"))
}

func TestSetDispatch(t *testing.T) {
	set, err := NewSet(Tool{
		Definition: Definition{Name: "echo", InputSchema: schema.Obj()},
		Func: func(ctx context.Context, args Args) (jsonvalue.Value, error) {
			msg, err := args.String("msg")
			if err != nil {
				return jsonvalue.Value{}, err
			}
			return jsonvalue.StringValue(msg), nil
		},
	})
	require.NoError(t, err)

	v, err := set.Handle(context.Background(), "echo", Args{"msg": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", v.Str())

	_, err = set.Handle(context.Background(), "other", nil)
	assert.Equal(t, UnknownTool, KindOf(err))

	assert.Equal(t, []string{"echo"}, set.Names())
	require.Len(t, set.Definitions(), 1)
}

func TestNewSetValidation(t *testing.T) {
	noop := func(context.Context, Args) (jsonvalue.Value, error) { return jsonvalue.Value{}, nil }

	_, err := NewSet(Tool{Definition: Definition{Name: "a", InputSchema: schema.Obj()}, Func: noop},
		Tool{Definition: Definition{Name: "a", InputSchema: schema.Obj()}, Func: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewSet(Tool{Definition: Definition{Name: "b"}, Func: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing input schema")

	_, err = NewSet(Tool{Definition: Definition{Name: "c", InputSchema: schema.Obj()}})
	require.Error(t, err)
}

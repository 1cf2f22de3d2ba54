package tool

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Args is the decoded argument bag of a tool call. Numbers are kept as
// json.Number so 64-bit values arrive intact.
type Args map[string]any

// DecodeArgs parses raw JSON arguments. Empty input and null yield an empty
// bag; anything other than an object is an InvalidParams error.
func DecodeArgs(raw json.RawMessage) (Args, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Args{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var args Args
	if err := dec.Decode(&args); err != nil {
		return nil, InvalidParamsf("arguments must be a JSON object: %v", err)
	}
	if args == nil {
		args = Args{}
	}
	return args, nil
}

// Has reports whether key is present and not null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Without returns a copy of a with keys removed.
func (a Args) Without(keys ...string) Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// String returns a required, non-empty string argument.
func (a Args) String(key string) (string, error) {
	if !a.Has(key) {
		return "", missing(key)
	}
	s, ok := a[key].(string)
	if !ok {
		return "", InvalidParamsf("argument %q must be a string", key)
	}
	if s == "" {
		return "", InvalidParamsf("argument %q must not be empty", key)
	}
	return s, nil
}

// OptString returns an optional string argument, or def when absent.
func (a Args) OptString(key, def string) (string, error) {
	if !a.Has(key) {
		return def, nil
	}
	s, ok := a[key].(string)
	if !ok {
		return "", InvalidParamsf("argument %q must be a string", key)
	}
	return s, nil
}

// Uint64 returns a required unsigned integer argument. Numeric strings are
// accepted so callers can pass values above 2^53.
func (a Args) Uint64(key string) (uint64, error) {
	if !a.Has(key) {
		return 0, missing(key)
	}
	return toUint64(key, a[key])
}

// OptUint64 returns an optional unsigned integer argument, or def when absent.
func (a Args) OptUint64(key string, def uint64) (uint64, error) {
	if !a.Has(key) {
		return def, nil
	}
	return toUint64(key, a[key])
}

// OptInt returns an optional signed integer argument, or def when absent.
func (a Args) OptInt(key string, def int) (int, error) {
	if !a.Has(key) {
		return def, nil
	}
	s, err := numericText(key, a[key])
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, InvalidParamsf("argument %q must be an integer", key)
	}
	return n, nil
}

// Bool returns an optional boolean argument, or def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	if !a.Has(key) {
		return def, nil
	}
	switch v := a[key].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, InvalidParamsf("argument %q must be a boolean", key)
		}
		return b, nil
	default:
		return false, InvalidParamsf("argument %q must be a boolean", key)
	}
}

// Base64 returns a required base64-encoded byte argument.
func (a Args) Base64(key string) ([]byte, error) {
	s, err := a.String(key)
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, InvalidParamsf("argument %q must be base64: %v", key, err)
	}
	return b, nil
}

// Hex returns a required hex-encoded byte argument. A leading 0x is ignored.
func (a Args) Hex(key string) ([]byte, error) {
	s, err := a.String(key)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, InvalidParamsf("argument %q must be hex: %v", key, err)
	}
	return b, nil
}

// Strings returns an optional array-of-strings argument; nil when absent.
func (a Args) Strings(key string) ([]string, error) {
	if !a.Has(key) {
		return nil, nil
	}
	raw, ok := a[key].([]any)
	if !ok {
		return nil, InvalidParamsf("argument %q must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, InvalidParamsf("argument %q[%d] must be a string", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// Uint64s returns an optional array-of-integers argument; nil when absent.
func (a Args) Uint64s(key string) ([]uint64, error) {
	if !a.Has(key) {
		return nil, nil
	}
	raw, ok := a[key].([]any)
	if !ok {
		return nil, InvalidParamsf("argument %q must be an array of integers", key)
	}
	out := make([]uint64, 0, len(raw))
	for i, v := range raw {
		n, err := toUint64(fmt.Sprintf("%s[%d]", key, i), v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Object returns an optional nested object argument; nil when absent.
func (a Args) Object(key string) (map[string]any, error) {
	if !a.Has(key) {
		return nil, nil
	}
	m, ok := a[key].(map[string]any)
	if !ok {
		return nil, InvalidParamsf("argument %q must be an object", key)
	}
	return m, nil
}

func toUint64(key string, v any) (uint64, error) {
	s, err := numericText(key, v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, InvalidParamsf("argument %q must be a non-negative integer", key)
	}
	return n, nil
}

func numericText(key string, v any) (string, error) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), nil
	case string:
		return strings.TrimSpace(n), nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	default:
		return "", InvalidParamsf("argument %q must be a number", key)
	}
}

func missing(key string) error {
	return InvalidParamsf("missing required argument %q", key)
}

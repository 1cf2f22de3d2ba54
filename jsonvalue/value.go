// Package jsonvalue provides a closed, order-preserving representation of JSON
// documents.
//
// Upstream Algorand APIs return arbitrarily shaped JSON that frequently carries
// 64-bit integers (round numbers, asset totals, micro-Algo amounts) outside the
// range a float64 can hold exactly. A [Value] keeps numbers as their literal
// digits and objects in their original key order, so a document can be reshaped
// and re-encoded with [Marshal] without losing either.
package jsonvalue

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value. The zero Value is JSON null.
type Value struct {
	kind    Kind
	b       bool
	s       string // string contents, or the literal digits of a number
	elems   []Value
	members []Member
}

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// NumberValue returns a JSON number with the given literal representation.
// The literal must be a valid JSON number.
func NumberValue(n json.Number) (Value, error) {
	if !validNumber(string(n)) {
		return Value{}, fmt.Errorf("invalid json number %q", string(n))
	}
	return Value{kind: Number, s: string(n)}, nil
}

// ArrayValue returns a JSON array holding elems.
func ArrayValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: Array, elems: elems}
}

// ObjectValue returns a JSON object holding members in the given order.
func ObjectValue(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: Object, members: members}
}

// M is shorthand for constructing an object Member.
func M(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean held by v; false for other kinds.
func (v Value) Bool() bool { return v.kind == Bool && v.b }

// Str returns the string held by v; empty for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.s
}

// Number returns the literal digits of a number; empty for other kinds.
func (v Value) Number() json.Number {
	if v.kind != Number {
		return ""
	}
	return json.Number(v.s)
}

// Elems returns the elements of an array; nil for other kinds.
// The returned slice must not be modified.
func (v Value) Elems() []Value {
	if v.kind != Array {
		return nil
	}
	return v.elems
}

// Members returns the members of an object in order; nil for other kinds.
// The returned slice must not be modified.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Len returns the number of elements of an array or keys of an object,
// and zero for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elems)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Path walks nested objects by key and returns the value at the end.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// MarshalJSON implements json.Marshaler using Marshal.
func (v Value) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler using Parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func validNumber(s string) bool {
	// json.Valid accepts exactly the JSON number grammar for a bare number token.
	if s == "" {
		return false
	}
	c := s[0]
	if c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

// Package gqljson is a small ordered JSON value model for walking Twitch GraphQL responses.
//
// Twitch payloads are deeply nested, optional almost everywhere and occasionally carry types
// nobody has seen before, so instead of unmarshalling into structs the ingestion code walks a
// Value and asks for what it needs. Object keys are kept in document order.
package gqljson

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// Missing is the zero Kind, it is what lookups of absent keys return.
	Missing Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
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
		return "unknown"
	}
}

// TypenameKey is the GraphQL discriminator field.
const TypenameKey = "__typename"

// Value is an immutable JSON value. The zero Value is Missing.
type Value struct {
	kind Kind
	// the unescaped string for String, the literal for Number
	scalar  string
	boolean bool
	items   []Value
	keys    []string
	fields  map[string]Value
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsNull is true for both an explicit null and a missing value.
func (v Value) IsNull() bool {
	return v.kind == Missing || v.kind == Null
}

// Empty reports whether the value carries nothing worth storing: missing, null, "", {} or [].
func (v Value) Empty() bool {
	switch v.kind {
	case Missing, Null:
		return true
	case String:
		return v.scalar == ""
	case Array:
		return len(v.items) == 0
	case Object:
		return len(v.keys) == 0
	default:
		return false
	}
}

// Get walks into nested objects by key, any step that is not an object yields Missing.
func (v Value) Get(path ...string) Value {
	current := v
	for _, key := range path {
		if current.kind != Object {
			return Value{}
		}
		next, ok := current.fields[key]
		if !ok {
			return Value{}
		}
		current = next
	}
	return current
}

// Has reports whether the object has the key, even if it is null.
func (v Value) Has(key string) bool {
	if v.kind != Object {
		return false
	}
	_, ok := v.fields[key]
	return ok
}

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	return v.keys
}

// Items returns the array elements, nil for anything that is not an array.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.scalar, true
}

// Int accepts integral numbers and numeric strings, Twitch is not consistent about which one it sends.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case Number, String:
		n, err := strconv.ParseInt(v.scalar, 10, 64)
		if err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(v.scalar, 64)
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func (v Value) Bool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.boolean, true
}

// Time parses an RFC 3339 string such as "2024-08-12T05:59:59.999Z" and returns it in UTC.
func (v Value) Time() (time.Time, bool) {
	if v.kind != String || v.scalar == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v.scalar)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Typename returns the `__typename` of an object or "" when there is none.
func (v Value) Typename() string {
	s, _ := v.Get(TypenameKey).Str()
	return s
}

// ID returns the `id` of an object, numeric ids are returned in their literal form.
func (v Value) ID() string {
	id := v.Get("id")
	switch id.kind {
	case String, Number:
		return id.scalar
	default:
		return ""
	}
}

// MarshalJSON encodes the value back to JSON with keys in their original order.
// A Missing value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Missing, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.scalar)
	case String:
		encoded, err := json.Marshal(v.scalar)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			if err := v.fields[key].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// String returns the compact JSON encoding, it is meant for log params.
func (v Value) String() string {
	out, err := v.MarshalJSON()
	if err != nil {
		return "<unencodable>"
	}
	return string(out)
}

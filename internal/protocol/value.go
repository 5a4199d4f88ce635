// Package protocol implements the wire-protocol value model and the
// streaming codec that parses and serializes it.
package protocol

import (
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind byte

const (
	KindNull Kind = iota
	KindSimpleString
	KindBulkString
	KindInteger
	KindBoolean
	KindError
	KindArray
)

// Value is the tagged variant for every wire-representable value: Null,
// SimpleString, BulkString, Integer, Boolean, Error, or Array. Exactly one
// of the typed fields is meaningful for a given Kind.
type Value struct {
	Kind  Kind
	Str   string  // SimpleString / Error text
	Bulk  []byte  // BulkString bytes (nil distinguishes a null bulk string)
	Int   int64   // Integer
	Bool  bool    // Boolean
	Array []Value // Array elements (nil distinguishes a null array)
}

// Null is the shared Null value.
func Null() Value { return Value{Kind: KindNull} }

// SimpleString constructs a SimpleString value.
func SimpleString(text string) Value { return Value{Kind: KindSimpleString, Str: text} }

// BulkString constructs a non-null BulkString value from the given bytes.
// An empty, non-nil slice is a valid empty bulk string.
func BulkString(data []byte) Value {
	if data == nil {
		data = []byte{}
	}
	return Value{Kind: KindBulkString, Bulk: data}
}

// NullBulkString constructs the null-distinct BulkString form ($-1\r\n).
func NullBulkString() Value { return Value{Kind: KindBulkString, Bulk: nil} }

// Integer constructs an Integer value.
func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }

// Boolean constructs a Boolean value.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Error constructs an Error value. Callers are responsible for any "ERR "
// prefix convention; the wire model itself only carries the text.
func Error(text string) Value { return Value{Kind: KindError, Str: text} }

// Array constructs a non-null Array value. A nil, non-empty-slice distinction
// is preserved by NullArray below.
func Array(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// NullArray constructs the null-distinct Array form (*-1\r\n).
func NullArray() Value { return Value{Kind: KindArray, Array: nil} }

// IsNull reports whether the value is Null, a null bulk string, or a null array.
func (v Value) IsNull() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindBulkString:
		return v.Bulk == nil
	case KindArray:
		return v.Array == nil
	default:
		return false
	}
}

// CoerceString renders a value as a string the way command handlers expect
// argument coercion to behave: SimpleString/BulkString pass through,
// Integer/Boolean render to their canonical decimal/true|false text, and
// anything else (Null, Error, Array) coerces to the empty string.
func (v Value) CoerceString() string {
	switch v.Kind {
	case KindSimpleString:
		return v.Str
	case KindBulkString:
		if v.Bulk == nil {
			return ""
		}
		return string(v.Bulk)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Package jsonvalue holds an untyped JSON value that keeps object keys in
// the order they were written.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

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
		return "null"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged JSON value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	text   string // string contents, or the number literal as written
	items  []Value
	fields []Member
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a number literal such as "12" or "1.5e3".
func NumberValue(literal string) Value { return Value{kind: Number, text: literal} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// ArrayValue builds an array from its elements.
func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: append([]Value{}, items...)}
}

// ObjectValue builds an object. Members keep the given order; a repeated key
// keeps its first position and takes the last value.
func ObjectValue(members ...Member) Value {
	v := Value{kind: Object, fields: []Member{}}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

// Field is shorthand for building a Member.
func Field(key string, value Value) Member {
	return Member{Key: key, Value: value}
}

func (v *Value) set(key string, val Value) {
	for i := range v.fields {
		if v.fields[i].Key == key {
			v.fields[i].Value = val
			return
		}
	}
	v.fields = append(v.fields, Member{Key: key, Value: val})
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsObject reports whether v is a JSON object.
func (v Value) IsObject() bool { return v.kind == Object }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Items returns the elements of an array.
func (v Value) Items() []Value { return v.items }

// Fields returns the members of an object in document order.
func (v Value) Fields() []Member { return v.fields }

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.fields {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Len reports the number of members or elements; scalars report 0.
func (v Value) Len() int {
	switch v.kind {
	case Object:
		return len(v.fields)
	case Array:
		return len(v.items)
	default:
		return 0
	}
}

// Text renders the value as display text. Strings are returned as-is,
// numbers as their literal, booleans as true/false, null as the empty
// string and containers as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Number, String:
		return v.text
	default:
		var buf bytes.Buffer
		v.encode(&buf)
		return buf.String()
	}
}

// MarshalJSON writes the value with object members in their original order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into v, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) encode(buf *bytes.Buffer) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(v.text)
	case String:
		writeString(buf, v.text)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.encode(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, m.Key)
			buf.WriteByte(':')
			m.Value.encode(buf)
		}
		buf.WriteByte('}')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.WriteString(strings.TrimSuffix(tmp.String(), "\n"))
}

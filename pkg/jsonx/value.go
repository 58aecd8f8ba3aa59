// Package jsonx holds lenient JSON scalar types for decoding loosely typed
// upstream payloads without letting one odd field fail a whole document.
package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tells how a scalar appeared in the source document.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

// Value is a JSON scalar that may be a string, number, bool or null.
// The zero value means the key was absent.
type Value struct {
	kind Kind
	text string
}

// String builds a string Value, mostly for tests.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number builds a number Value from its literal text.
func Number(lit string) Value { return Value{kind: KindNumber, text: lit} }

// UnmarshalJSON implements json.Unmarshaler. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("jsonx: empty value")
	}
	switch data[0] {
	case 'n':
		*v = Value{kind: KindNull}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{kind: KindString, text: s}
	case 't', 'f':
		*v = Value{kind: KindBool, text: string(data)}
	case '{', '[':
		return fmt.Errorf("jsonx: expected scalar, got %c", data[0])
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value{kind: KindNumber, text: n.String()}
	}
	return nil
}

// MarshalJSON writes the value back in its original kind.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindNumber, KindBool:
		return []byte(v.text), nil
	default:
		return []byte("null"), nil
	}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Absent() bool   { return v.kind == KindAbsent }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) Text() string   { return v.text }

// Equals reports whether v is the string s.
func (v Value) Equals(s string) bool {
	return v.kind == KindString && v.text == s
}

// Present reports whether the value carries usable content: a non-empty
// string or any number.
func (v Value) Present() bool {
	switch v.kind {
	case KindString:
		return v.text != ""
	case KindNumber:
		return true
	default:
		return false
	}
}

// StringOr returns the text of a present value, or def.
func (v Value) StringOr(def string) string {
	if v.kind == KindString || v.kind == KindNumber {
		return v.text
	}
	return def
}

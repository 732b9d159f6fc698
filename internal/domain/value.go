package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindMulti
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindMulti:
		return "multi"
	default:
		return "empty"
	}
}

// Value is the answer payload: text, number, a set of selections, or nothing.
// On the wire it is a JSON string, number, array of strings, or null.
type Value struct {
	kind  ValueKind
	text  string
	num   float64
	multi []string
}

func EmptyValue() Value { return Value{} }

func TextValue(s string) Value { return Value{kind: KindText, text: s} }

func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

func MultiValue(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindMulti, multi: cp}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Multi() ([]string, bool) {
	if v.kind != KindMulti {
		return nil, false
	}
	cp := make([]string, len(v.multi))
	copy(cp, v.multi)
	return cp, true
}

// IsEmpty reports the "no answer" cases: null, empty string, empty selection.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return strings.TrimSpace(v.text) == ""
	case KindNumber:
		return false
	case KindMulti:
		return len(v.multi) == 0
	default:
		return true
	}
}

// Truthy mirrors loose truthiness: non-empty text, non-zero number, any selection list.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindText:
		return v.text != ""
	case KindNumber:
		return v.num != 0
	case KindMulti:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindMulti:
		return strings.Join(v.multi, ", ")
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	case KindMulti:
		if v.multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.multi)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode selection: %w", err)
		}
		*v = MultiValue(items...)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported value %s: %w", string(data), err)
		}
		*v = NumberValue(n)
	}
	return nil
}

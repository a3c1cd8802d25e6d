package nskeyed

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which case of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one decoded node of an archive. The zero Value is null.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	dict   map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Scalar wraps a plist scalar (string, integer, float, bool, date or data).
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// List wraps an ordered sequence.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Map wraps a string-keyed mapping.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, dict: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Scalar returns the wrapped scalar when v is a scalar.
func (v Value) Scalar() (any, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// List returns the elements when v is a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Map returns the entries when v is a map.
func (v Value) Map() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.dict, true
}

// Get returns the entry for key when v is a map holding it.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.dict[key]
	return child, ok
}

// Lookup walks a path of map keys. A missing key or a non-map node anywhere
// along the path reports false.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Text renders scalars as strings and lists as their elements joined with
// ", ". Null and map values have no text form.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindScalar:
		return formatScalar(v.scalar), true
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if s, ok := item.Text(); ok {
				parts = append(parts, s)
			} else if item.kind == KindMap {
				parts = append(parts, fmt.Sprint(item.Interface()))
			}
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}

// Interface converts v to plain Go values: nil, the scalar, []any or
// map[string]any. Useful for JSON or YAML dumps.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		if b, ok := v.scalar.([]byte); ok {
			return hex.EncodeToString(b)
		}
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.dict))
		for k, item := range v.dict {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Keys returns the sorted keys of a map value.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.dict))
	for k := range v.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatScalar(s any) string {
	switch t := s.(type) {
	case string:
		return t
	case []byte:
		return hex.EncodeToString(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

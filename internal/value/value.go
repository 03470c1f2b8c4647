// Package value implements the tagged-union document model that every
// parsed test specification is reduced to before validation or evaluation.
package value

import "fmt"

// Kind discriminates the variant stored in a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindSeq
	KindMap
)

// TypeName returns the diagnostic name used throughout violation messages.
func (k Kind) TypeName() string {
	switch k {
	case KindNull:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the tagged union Null|Bool|Int|Uint|Float|String|Seq|Map.
//
// Only the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string
	Seq    []Value
	Map    *Map
}

// Map is an insertion-ordered string-keyed map of Values, mirroring the
// indexmap::IndexMap the original evaluator relies on to keep `let` and
// process declaration order stable.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{values: map[string]Value{}}
}

// Set inserts or overwrites key, preserving first-insertion order.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// TypeName returns the diagnostic discriminator for v.
func (v Value) TypeName() string {
	return v.Kind.TypeName()
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func Uint(u uint64) Value        { return Value{Kind: KindUint, Uint: u} }
func Float(f float64) Value      { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value         { return Value{Kind: KindString, String: s} }
func SeqOf(items []Value) Value  { return Value{Kind: KindSeq, Seq: items} }
func MapOf(m *Map) Value         { return Value{Kind: KindMap, Map: m} }

// GoString implements fmt.GoStringer for debugging and test failure output.
func (v Value) GoString() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindFloat:
		return fmt.Sprintf("%v", v.Float)
	case KindString:
		return fmt.Sprintf("%q", v.String)
	case KindSeq:
		return fmt.Sprintf("seq[%d]", len(v.Seq))
	case KindMap:
		return fmt.Sprintf("map[%d]", v.Map.Len())
	default:
		return "?"
	}
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindTypeNames(t *testing.T) {
	cases := map[Kind]string{
		KindNull:   "nil",
		KindBool:   "bool",
		KindInt:    "int",
		KindUint:   "uint",
		KindFloat:  "float",
		KindString: "string",
		KindSeq:    "seq",
		KindMap:    "map",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.TypeName())
	}
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, KindNull, Null().Kind)
	assert.True(t, Bool(true).Bool)
	assert.Equal(t, int64(7), Int(7).Int)
	assert.Equal(t, uint64(7), Uint(7).Uint)
	assert.Equal(t, 1.5, Float(1.5).Float)
	assert.Equal(t, "x", Str("x").String)

	seq := SeqOf([]Value{Int(1), Int(2)})
	assert.Equal(t, KindSeq, seq.Kind)
	assert.Len(t, seq.Seq, 2)

	m := NewMap()
	m.Set("a", Int(1))
	mv := MapOf(m)
	assert.Equal(t, KindMap, mv.Kind)
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("m", Int(3))
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
	assert.Equal(t, 3, m.Len())
}

func TestMapSetOverwritesWithoutReordering(t *testing.T) {
	m := NewMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Set("a", Int(99))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(99), v.Int)
}

func TestMapGetMissingKey(t *testing.T) {
	m := NewMap()
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestGoStringRendersEachKind(t *testing.T) {
	assert.Equal(t, "null", Null().GoString())
	assert.Equal(t, "true", Bool(true).GoString())
	assert.Equal(t, "7", Int(7).GoString())
	assert.Equal(t, `"hi"`, Str("hi").GoString())

	m := NewMap()
	m.Set("a", Int(1))
	assert.Equal(t, "map[1]", MapOf(m).GoString())
	assert.Equal(t, "seq[2]", SeqOf([]Value{Null(), Null()}).GoString())
}

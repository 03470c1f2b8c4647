package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texest/internal/value"
)

func TestParseScalars(t *testing.T) {
	doc, err := Parse("t.yaml", []byte(`
str: hello
num: 42
flt: 3.5
flag: true
nothing: null
`))
	require.NoError(t, err)
	require.Equal(t, value.KindMap, doc.Kind)

	str, _ := doc.Map.Get("str")
	assert.Equal(t, "hello", str.String)

	num, _ := doc.Map.Get("num")
	assert.Equal(t, int64(42), num.Int)

	flt, _ := doc.Map.Get("flt")
	assert.Equal(t, 3.5, flt.Float)

	flag, _ := doc.Map.Get("flag")
	assert.True(t, flag.Bool)

	nothing, _ := doc.Map.Get("nothing")
	assert.Equal(t, value.KindNull, nothing.Kind)
}

func TestParsePreservesKeyOrder(t *testing.T) {
	doc, err := Parse("t.yaml", []byte(`
zeta: 1
alpha: 2
mu: 3
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, doc.Map.Keys())
}

func TestParseNestedSequenceAndMap(t *testing.T) {
	doc, err := Parse("t.yaml", []byte(`
tests:
  - command: ["echo", "hi"]
    expect:
      status: {eq: 0}
`))
	require.NoError(t, err)

	tests, ok := doc.Map.Get("tests")
	require.True(t, ok)
	require.Equal(t, value.KindSeq, tests.Kind)
	require.Len(t, tests.Seq, 1)

	tc := tests.Seq[0]
	require.Equal(t, value.KindMap, tc.Kind)

	command, ok := tc.Map.Get("command")
	require.True(t, ok)
	require.Equal(t, value.KindSeq, command.Kind)
	assert.Equal(t, "echo", command.Seq[0].String)
	assert.Equal(t, "hi", command.Seq[1].String)

	expect, ok := tc.Map.Get("expect")
	require.True(t, ok)
	status, ok := expect.Map.Get("status")
	require.True(t, ok)
	eq, ok := status.Map.Get("eq")
	require.True(t, ok)
	assert.Equal(t, int64(0), eq.Int)
}

func TestParseEmptyDocument(t *testing.T) {
	doc, err := Parse("t.yaml", []byte(``))
	require.NoError(t, err)
	assert.Equal(t, value.KindMap, doc.Kind)
	assert.Equal(t, 0, doc.Map.Len())
}

func TestParseInvalidYAMLReturnsFilenamePrefixedError(t *testing.T) {
	_, err := Parse("broken.yaml", []byte("key: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}


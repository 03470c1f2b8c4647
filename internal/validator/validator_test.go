package validator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"texest/internal/validator"
	"texest/internal/value"
)

func TestMustBeString(t *testing.T) {
	v, violation := validator.NewForTest()

	s, ok := v.MustBeString(value.Str("hello"))
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
	assert.Empty(t, v.Violations)

	_, ok = v.MustBeString(value.Int(1))
	assert.False(t, ok)
	assert.Equal(t, []validator.Violation{violation("", "should be string, but is int")}, v.Violations)
}

func TestInFieldScopesPath(t *testing.T) {
	v, violation := validator.NewForTest()

	validator.InField(v, "command", func(v *validator.Validator) any {
		v.AddViolation("boom")
		return nil
	})

	assert.Equal(t, []validator.Violation{violation(".command", "boom")}, v.Violations)
	assert.Equal(t, "$", v.CurrentPath())
}

func TestInIndexScopesPath(t *testing.T) {
	v, violation := validator.NewForTest()

	validator.InIndex(v, 1, func(v *validator.Validator) any {
		v.AddViolation("bad")
		return nil
	})

	assert.Equal(t, []validator.Violation{violation("[1]", "bad")}, v.Violations)
}

func TestMustBeDuration(t *testing.T) {
	cases := []struct {
		name     string
		in       value.Value
		expected time.Duration
		ok       bool
	}{
		{"uint seconds", value.Uint(42), 42 * time.Second, true},
		{"duration string", value.Str("1m30s"), 90 * time.Second, true},
		{"day unit", value.Str("2d"), 48 * time.Hour, true},
		{"negative int", value.Int(-1), 0, false},
		{"float", value.Float(1.5), 0, false},
		{"bool", value.Bool(true), 0, false},
		{"invalid string", value.Str("nope"), 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := validator.New("test.yaml")
			d, ok := v.MustBeDuration(c.in)
			assert.Equal(t, c.ok, ok, c.name)
			if c.ok {
				assert.Equal(t, c.expected, d)
			}
		})
	}
}

func TestMustHaveString(t *testing.T) {
	v, violation := validator.NewForTest()
	m := value.NewMap()

	_, ok := v.MustHaveString(m, "name")
	assert.False(t, ok)
	assert.Equal(t, []validator.Violation{violation("", "should have .name as string")}, v.Violations)
}

func TestMayBeQualified(t *testing.T) {
	v := validator.New("test.yaml")
	m := value.NewMap()
	m.Set("$env", value.Str("HOME"))

	name, param, ok := v.MayBeQualified(value.MapOf(m))
	assert.True(t, ok)
	assert.Equal(t, "$env", name)
	assert.Equal(t, value.Str("HOME"), param)

	plain := value.NewMap()
	plain.Set("command", value.Str("true"))
	_, _, ok = v.MayBeQualified(value.MapOf(plain))
	assert.False(t, ok)
}

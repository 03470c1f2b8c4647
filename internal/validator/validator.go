// Package validator implements the path-tracked structural checker described
// throughout the document-evaluation pipeline: it accumulates Violations
// tagged with a JSON-Pointer-like path while typed accessors destructure the
// parsed document.
package validator

import (
	"fmt"
	"strings"
	"time"

	"texest/internal/value"
)

// Violation is a single structural complaint about the input document.
type Violation struct {
	Filename string
	Path     string
	Message  string
}

// String renders the violation the way the driver prints it:
// "<filename> <path>: <message>".
func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s", v.Filename, v.Path, v.Message)
}

// Validator accumulates Violations while a cursor of path segments tracks
// the current structural location inside the document being checked.
type Validator struct {
	filename   string
	pathStack  []string
	Violations []Violation
}

// New returns a validator rooted at "$" for filename.
func New(filename string) *Validator {
	return &Validator{filename: filename, pathStack: []string{"$"}}
}

// NewWithPaths returns a validator rooted at the given path segments, used
// when a test-case expression already carries its own root path (e.g. its
// index within a multi-document file: "$.tests[3]").
func NewWithPaths(filename string, paths []string) *Validator {
	stack := append([]string{}, paths...)
	if len(stack) == 0 {
		stack = []string{"$"}
	}
	return &Validator{filename: filename, pathStack: stack}
}

// CurrentPath returns the path as it would appear in a Violation right now.
func (v *Validator) CurrentPath() string {
	return strings.Join(v.pathStack, "")
}

// AddViolation records a violation at the current path.
func (v *Validator) AddViolation(message string) {
	v.Violations = append(v.Violations, Violation{
		Filename: v.filename,
		Path:     v.CurrentPath(),
		Message:  message,
	})
}

// InField pushes ".name" onto the path for the duration of f.
func InField[T any](v *Validator, name string, f func(*Validator) T) T {
	v.pathStack = append(v.pathStack, "."+name)
	defer func() { v.pathStack = v.pathStack[:len(v.pathStack)-1] }()
	return f(v)
}

// InIndex pushes "[i]" onto the path for the duration of f.
func InIndex[T any](v *Validator, i int, f func(*Validator) T) T {
	v.pathStack = append(v.pathStack, fmt.Sprintf("[%d]", i))
	defer func() { v.pathStack = v.pathStack[:len(v.pathStack)-1] }()
	return f(v)
}

// InFieldOk is InField for callbacks that report their own presence/success
// alongside their result, the shape most parser helpers that can fail need.
func InFieldOk[T any](v *Validator, name string, f func(*Validator) (T, bool)) (T, bool) {
	v.pathStack = append(v.pathStack, "."+name)
	defer func() { v.pathStack = v.pathStack[:len(v.pathStack)-1] }()
	return f(v)
}

// MustBeMap requires v to be a map whose keys are strings (which is always
// true of value.Map, so this only enforces the Kind).
func (va *Validator) MustBeMap(v value.Value) (*value.Map, bool) {
	if v.Kind != value.KindMap {
		va.AddViolation(fmt.Sprintf("should be map, but is %s", v.TypeName()))
		return nil, false
	}
	return v.Map, true
}

// MustBeSeq requires a sequence.
func (va *Validator) MustBeSeq(v value.Value) ([]value.Value, bool) {
	if v.Kind != value.KindSeq {
		va.AddViolation(fmt.Sprintf("should be seq, but is %s", v.TypeName()))
		return nil, false
	}
	return v.Seq, true
}

// MustBeBool requires a bool.
func (va *Validator) MustBeBool(v value.Value) (bool, bool) {
	if v.Kind != value.KindBool {
		va.AddViolation(fmt.Sprintf("should be bool, but is %s", v.TypeName()))
		return false, false
	}
	return v.Bool, true
}

// MustBeUint requires a non-negative integer.
func (va *Validator) MustBeUint(v value.Value) (uint64, bool) {
	switch v.Kind {
	case value.KindUint:
		return v.Uint, true
	case value.KindInt:
		if v.Int >= 0 {
			return uint64(v.Int), true
		}
	}
	va.AddViolation(fmt.Sprintf("should be uint, but is %s", v.TypeName()))
	return 0, false
}

// MustBeString returns (s, true) when v is a string, and ("", false) with a
// recorded violation otherwise. It is not meant to be called on an absent
// value - use MayHaveString for that.
func (va *Validator) MustBeString(v value.Value) (string, bool) {
	if v.Kind != value.KindString {
		va.AddViolation(fmt.Sprintf("should be string, but is %s", v.TypeName()))
		return "", false
	}
	return v.String, true
}

// MustBeDuration accepts a non-negative integer (seconds) or a duration
// string following the compact <N><unit> grammar.
func (va *Validator) MustBeDuration(v value.Value) (time.Duration, bool) {
	switch v.Kind {
	case value.KindUint:
		return time.Duration(v.Uint) * time.Second, true
	case value.KindInt:
		if v.Int < 0 {
			va.AddViolation(fmt.Sprintf("should be positive integer or duration string, but is %s", v.TypeName()))
			return 0, false
		}
		return time.Duration(v.Int) * time.Second, true
	case value.KindString:
		d, err := ParseDuration(v.String)
		if err != nil {
			va.AddViolation(fmt.Sprintf("should be positive integer or duration string, but is invalid string %q", v.String))
			return 0, false
		}
		return d, true
	default:
		va.AddViolation(fmt.Sprintf("should be positive integer or duration string, but is %s", v.TypeName()))
		return 0, false
	}
}

// MayBeQualified recognises the "single-key map whose key starts with $"
// expression-node convention, returning (name, paramValue, true) when v
// matches it.
func (va *Validator) MayBeQualified(v value.Value) (string, value.Value, bool) {
	if v.Kind != value.KindMap || v.Map.Len() != 1 {
		return "", value.Value{}, false
	}
	key := v.Map.Keys()[0]
	if !strings.HasPrefix(key, "$") {
		return "", value.Value{}, false
	}
	val, _ := v.Map.Get(key)
	return key, val, true
}

// MayHave looks up key in m and runs f over its value when present.
func MayHave[T any](va *Validator, m *value.Map, key string, f func(*Validator, value.Value) (T, bool)) (T, bool) {
	v, ok := m.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	va.pathStack = append(va.pathStack, "."+key)
	defer func() { va.pathStack = va.pathStack[:len(va.pathStack)-1] }()
	return f(va, v)
}

// MustHave is MayHave but records "should have .<key> as <kind>" when absent.
func MustHave[T any](va *Validator, m *value.Map, key string, kindDesc string, f func(*Validator, value.Value) (T, bool)) (T, bool) {
	v, ok := MayHave(va, m, key, f)
	if !ok {
		if _, present := m.Get(key); !present {
			va.AddViolation(fmt.Sprintf("should have .%s as %s", key, kindDesc))
		}
	}
	return v, ok
}

// MayHaveMap, MayHaveSeq / MustHaveSeq, MayHaveBool, MayHaveString /
// MustHaveString, MayHaveDuration and MustHaveUintField are thin
// specializations used pervasively by the test-case-expression parser.

func (va *Validator) MayHaveMap(m *value.Map, key string) (*value.Map, bool) {
	return MayHave(va, m, key, (*Validator).MustBeMap)
}

func (va *Validator) MayHaveSeq(m *value.Map, key string) ([]value.Value, bool) {
	return MayHave(va, m, key, (*Validator).MustBeSeq)
}

func (va *Validator) MustHaveSeq(m *value.Map, key string) ([]value.Value, bool) {
	return MustHave(va, m, key, "seq", (*Validator).MustBeSeq)
}

func (va *Validator) MayHaveBool(m *value.Map, key string) (bool, bool) {
	return MayHave(va, m, key, (*Validator).MustBeBool)
}

func (va *Validator) MayHaveString(m *value.Map, key string) (string, bool) {
	return MayHave(va, m, key, (*Validator).MustBeString)
}

func (va *Validator) MustHaveString(m *value.Map, key string) (string, bool) {
	return MustHave(va, m, key, "string", (*Validator).MustBeString)
}

func (va *Validator) MayHaveDuration(m *value.Map, key string) (time.Duration, bool) {
	return MayHave(va, m, key, (*Validator).MustBeDuration)
}

func (va *Validator) MustHaveUintField(m *value.Map, key string) (uint64, bool) {
	return MustHave(va, m, key, "uint", (*Validator).MustBeUint)
}

// MapSeq validates each element of a sequence under an index-scoped path,
// collecting every per-element violation before returning. Elements that
// fail validation are omitted from the returned slice.
func MapSeq[T any](va *Validator, items []value.Value, f func(*Validator, int, value.Value) (T, bool)) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		va.pathStack = append(va.pathStack, fmt.Sprintf("[%d]", i))
		result, ok := f(va, i, item)
		va.pathStack = va.pathStack[:len(va.pathStack)-1]
		if ok {
			out = append(out, result)
		}
	}
	return out
}

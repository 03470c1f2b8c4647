package matcher

import (
	"fmt"

	"texest/internal/validator"
	"texest/internal/value"
)

// streamEqMatcher asserts the actual bytes equal the UTF-8 encoding of
// Expected exactly.
type streamEqMatcher struct {
	Expected string
}

func (m *streamEqMatcher) Matches(actual []byte) (Result, error) {
	if string(actual) == m.Expected {
		return Result{Passed: true, Message: fmt.Sprintf("should not be %q, but got it", m.Expected)}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should be %q, but got %q", m.Expected, string(actual))}, nil
}

func parseStreamEq(v *validator.Validator, param value.Value) (StreamMatcher, bool) {
	s, ok := v.MustBeString(param)
	if !ok {
		return nil, false
	}
	return &streamEqMatcher{Expected: s}, true
}

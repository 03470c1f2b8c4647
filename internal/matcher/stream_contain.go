package matcher

import (
	"bytes"
	"fmt"

	"texest/internal/validator"
	"texest/internal/value"
)

// streamContainMatcher asserts the actual bytes contain Expected as a
// contiguous window.
type streamContainMatcher struct {
	Expected string
}

func (m *streamContainMatcher) Matches(actual []byte) (Result, error) {
	if bytes.Contains(actual, []byte(m.Expected)) {
		return Result{Passed: true, Message: fmt.Sprintf("should not contain %q, but contain it", m.Expected)}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should contain %q, but not", m.Expected)}, nil
}

func parseStreamContain(v *validator.Validator, param value.Value) (StreamMatcher, bool) {
	s, ok := v.MustBeString(param)
	if !ok {
		return nil, false
	}
	return &streamContainMatcher{Expected: s}, true
}

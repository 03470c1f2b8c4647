package matcher

import (
	"fmt"

	"texest/internal/validator"
	"texest/internal/value"
)

// statusEqMatcher asserts the actual exit code equals Expected.
type statusEqMatcher struct {
	Expected int32
}

func (m *statusEqMatcher) Matches(actual int) (Result, error) {
	if actual == int(m.Expected) {
		return Result{Passed: true, Message: fmt.Sprintf("should not be %d, but got it", actual)}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should be %d, but got %d", m.Expected, actual)}, nil
}

func parseStatusEq(v *validator.Validator, param value.Value) (StatusMatcher, bool) {
	n, ok := v.MustBeUint(param)
	if !ok {
		return nil, false
	}
	if n > 0x7fffffff {
		v.AddViolation(fmt.Sprintf("cannot treat %d as i32", n))
		return nil, false
	}
	return &statusEqMatcher{Expected: int32(n)}, true
}

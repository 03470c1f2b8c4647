package matcher

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"texest/internal/validator"
	"texest/internal/value"
)

// streamMatchMatcher asserts the actual bytes, interpreted as UTF-8, match
// Pattern as a regular expression.
type streamMatchMatcher struct {
	Pattern *regexp.Regexp
}

func (m *streamMatchMatcher) Matches(actual []byte) (Result, error) {
	if !utf8.Valid(actual) {
		return Result{Passed: false, Message: fmt.Sprintf("should match %q, but is not valid UTF-8", m.Pattern.String())}, nil
	}
	if m.Pattern.Match(actual) {
		return Result{Passed: true, Message: fmt.Sprintf("should not match %q, but match it", m.Pattern.String())}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should match %q, but not", m.Pattern.String())}, nil
}

func parseStreamMatch(v *validator.Validator, param value.Value) (StreamMatcher, bool) {
	s, ok := v.MustBeString(param)
	if !ok {
		return nil, false
	}
	re, err := regexp.Compile(s)
	if err != nil {
		v.AddViolation("should be valid regular expression pattern")
		return nil, false
	}
	return &streamMatchMatcher{Pattern: re}, true
}

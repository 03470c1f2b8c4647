// Package matcher implements the pluggable, negation-aware matcher
// registries applied to exit statuses and byte streams.
package matcher

import (
	"fmt"
	"strings"

	"texest/internal/validator"
	"texest/internal/value"
)

// Result is what Matches returns: whether the subject passed, and a
// human-readable message (populated on failure, and for the negated case
// on success too, mirroring the originals' "should not X, but got it").
type Result struct {
	Passed  bool
	Message string
}

// StatusMatcher asserts a property of an integer exit code.
type StatusMatcher interface {
	Matches(actual int) (Result, error)
}

// StreamMatcher asserts a property of a captured byte stream.
type StreamMatcher interface {
	Matches(actual []byte) (Result, error)
}

// ParseName strips the "not." negation prefix, returning the bare matcher
// name and the "positive" flag recorded alongside the parsed matcher.
//
// A matcher (m, positive) fails the subject iff
// m.Matches(actual).Passed XOR positive == false, i.e. iff Passed == positive.
// For a bare name (no "not." prefix), positive is false: the subject fails
// exactly when Matches reports not-passed, the usual case. For a
// "not."-prefixed name, positive is true: the subject fails exactly when
// Matches reports passed - e.g. not.contain:"hello" fails when the stream
// *does* contain "hello".
func ParseName(name string) (string, bool) {
	if strings.HasPrefix(name, "not.") {
		return strings.TrimPrefix(name, "not."), true
	}
	return name, false
}

// StatusMatcherEntry pairs a parsed matcher with its negation flag.
type StatusMatcherEntry struct {
	Matcher  StatusMatcher
	Positive bool
}

// StreamMatcherEntry is the stream-subject equivalent of StatusMatcherEntry.
type StreamMatcherEntry struct {
	Matcher  StreamMatcher
	Positive bool
}

// StatusParser builds a StatusMatcher from a parameter value.
type StatusParser func(v *validator.Validator, param value.Value) (StatusMatcher, bool)

// StreamParser builds a StreamMatcher from a parameter value.
type StreamParser func(v *validator.Validator, param value.Value) (StreamMatcher, bool)

// StatusMatcherRegistry is a name->parser map for the "status" subject.
type StatusMatcherRegistry struct {
	parsers map[string]StatusParser
}

// StreamMatcherRegistry is a name->parser map for the "stream" subject
// (stdout, stderr, and file contents all share it).
type StreamMatcherRegistry struct {
	parsers map[string]StreamParser
}

// NewStatusMatcherRegistry registers the built-in status matchers.
func NewStatusMatcherRegistry() *StatusMatcherRegistry {
	r := &StatusMatcherRegistry{parsers: map[string]StatusParser{}}
	r.register("eq", parseStatusEq)
	return r
}

func (r *StatusMatcherRegistry) register(name string, p StatusParser) {
	if _, exists := r.parsers[name]; exists {
		panic(fmt.Sprintf("status matcher %q already registered", name))
	}
	r.parsers[name] = p
}

// Parse looks up name (after stripping "not."), reports an unknown-matcher
// violation under the matcher's own field scope otherwise, and returns the
// parsed entry.
func (r *StatusMatcherRegistry) Parse(v *validator.Validator, name string, param value.Value) (StatusMatcherEntry, bool) {
	bare, positive := ParseName(name)
	parser, ok := r.parsers[bare]
	if !ok {
		validator.InField(v, name, func(v *validator.Validator) any {
			v.AddViolation(fmt.Sprintf("status matcher %q is not defined", bare))
			return nil
		})
		return StatusMatcherEntry{}, false
	}
	m, ok := validator.InFieldOk(v, name, func(v *validator.Validator) (StatusMatcher, bool) {
		return parser(v, param)
	})
	if !ok {
		return StatusMatcherEntry{}, false
	}
	return StatusMatcherEntry{Matcher: m, Positive: positive}, true
}

// NewStreamMatcherRegistry registers the built-in stream matchers.
func NewStreamMatcherRegistry() *StreamMatcherRegistry {
	r := &StreamMatcherRegistry{parsers: map[string]StreamParser{}}
	r.register("eq", parseStreamEq)
	r.register("contain", parseStreamContain)
	r.register("match", parseStreamMatch)
	r.register("eq_json", parseStreamEqJSON)
	r.register("include_json", parseStreamIncludeJSON)
	return r
}

func (r *StreamMatcherRegistry) register(name string, p StreamParser) {
	if _, exists := r.parsers[name]; exists {
		panic(fmt.Sprintf("stream matcher %q already registered", name))
	}
	r.parsers[name] = p
}

// Parse is the stream-subject equivalent of StatusMatcherRegistry.Parse.
func (r *StreamMatcherRegistry) Parse(v *validator.Validator, name string, param value.Value) (StreamMatcherEntry, bool) {
	bare, positive := ParseName(name)
	parser, ok := r.parsers[bare]
	if !ok {
		validator.InField(v, name, func(v *validator.Validator) any {
			v.AddViolation(fmt.Sprintf("stream matcher %q is not defined", bare))
			return nil
		})
		return StreamMatcherEntry{}, false
	}
	m, ok := validator.InFieldOk(v, name, func(v *validator.Validator) (StreamMatcher, bool) {
		return parser(v, param)
	})
	if !ok {
		return StreamMatcherEntry{}, false
	}
	return StreamMatcherEntry{Matcher: m, Positive: positive}, true
}

// EvaluateStatus runs entry against actual and reports whether the subject
// should be recorded as failing, plus the message to attach when it does.
// A matcher (m, positive) fails the subject iff m.Matches(actual).Passed
// == positive (see ParseName).
func EvaluateStatus(entry StatusMatcherEntry, actual int) (failed bool, message string) {
	res, err := entry.Matcher.Matches(actual)
	if err != nil {
		return true, err.Error()
	}
	if res.Passed != entry.Positive {
		return false, ""
	}
	return true, res.Message
}

// EvaluateStream is the stream-subject equivalent of EvaluateStatus.
func EvaluateStream(entry StreamMatcherEntry, actual []byte) (failed bool, message string) {
	res, err := entry.Matcher.Matches(actual)
	if err != nil {
		return true, err.Error()
	}
	if res.Passed != entry.Positive {
		return false, ""
	}
	return true, res.Message
}

package matcher

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"texest/internal/validator"
	"texest/internal/value"
)

// streamEqJSONMatcher asserts the actual bytes parse as JSON and equal
// Expected deeply, ignoring whitespace and key order.
type streamEqJSONMatcher struct {
	ExpectedRaw string
	Expected    interface{}
}

func (m *streamEqJSONMatcher) Matches(actual []byte) (Result, error) {
	var actualVal interface{}
	if err := json.Unmarshal(actual, &actualVal); err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("should be JSON equal to %s, but failed to parse actual as JSON: %s", m.ExpectedRaw, err)}, nil
	}
	if cmp.Equal(m.Expected, actualVal) {
		return Result{Passed: true, Message: fmt.Sprintf("should not be JSON equal to %s, but is", m.ExpectedRaw)}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should be JSON equal to %s, but is %s", m.ExpectedRaw, string(actual))}, nil
}

func parseStreamEqJSON(v *validator.Validator, param value.Value) (StreamMatcher, bool) {
	raw, ok := v.MustBeString(param)
	if !ok {
		return nil, false
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		v.AddViolation(fmt.Sprintf("should be valid JSON, but is invalid: %s", err))
		return nil, false
	}
	return &streamEqJSONMatcher{ExpectedRaw: raw, Expected: parsed}, true
}

// streamIncludeJSONMatcher asserts the actual bytes parse as JSON and
// inclusively contain Expected: every key/element present in Expected must
// appear, with an equal value, in actual; extra keys/elements in actual are
// permitted.
type streamIncludeJSONMatcher struct {
	ExpectedRaw string
	Expected    interface{}
}

func (m *streamIncludeJSONMatcher) Matches(actual []byte) (Result, error) {
	var actualVal interface{}
	if err := json.Unmarshal(actual, &actualVal); err != nil {
		return Result{Passed: false, Message: fmt.Sprintf("should include JSON %s, but failed to parse actual as JSON: %s", m.ExpectedRaw, err)}, nil
	}
	if jsonIncludes(m.Expected, actualVal) {
		return Result{Passed: true, Message: fmt.Sprintf("should not include JSON %s, but does", m.ExpectedRaw)}, nil
	}
	return Result{Passed: false, Message: fmt.Sprintf("should include JSON %s, but is %s", m.ExpectedRaw, string(actual))}, nil
}

func parseStreamIncludeJSON(v *validator.Validator, param value.Value) (StreamMatcher, bool) {
	raw, ok := v.MustBeString(param)
	if !ok {
		return nil, false
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		v.AddViolation(fmt.Sprintf("should be valid JSON, but is invalid: %s", err))
		return nil, false
	}
	return &streamIncludeJSONMatcher{ExpectedRaw: raw, Expected: parsed}, true
}

// jsonIncludes reports whether actual inclusively contains expected: maps
// compare key-by-key (actual may have extra keys), sequences compare
// element-by-element by index (actual may have extra trailing elements),
// and scalars compare by deep equality. This is reflexive (x includes x)
// and monotonic under addition of keys/elements to actual.
func jsonIncludes(expected, actual interface{}) bool {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return false
		}
		for k, ev := range exp {
			av, present := act[k]
			if !present || !jsonIncludes(ev, av) {
				return false
			}
		}
		return true
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok || len(act) < len(exp) {
			return false
		}
		for i, ev := range exp {
			if !jsonIncludes(ev, act[i]) {
				return false
			}
		}
		return true
	default:
		return cmp.Equal(expected, actual)
	}
}

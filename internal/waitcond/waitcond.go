// Package waitcond implements the three built-in background-process
// readiness conditions: sleep, HTTP probe, and stdout pattern.
package waitcond

import (
	"context"
	"fmt"

	"texest/internal/validator"
	"texest/internal/value"
)

// WaitCondition is the evaluated, ready-to-run form of a readiness
// condition. stdoutLines delivers the background process's stdout one line
// at a time, for the benefit of the stdout-pattern condition; other
// conditions ignore it.
type WaitCondition interface {
	Wait(ctx context.Context, stdoutLines <-chan string) error
}

// Parse dispatches on the condition's type name to the matching parser,
// recording "<type> is not defined"-style violations for unknown types.
func Parse(v *validator.Validator, typeName string, params map[string]value.Value) (WaitCondition, bool) {
	switch typeName {
	case "sleep":
		return parseSleep(v, params)
	case "http":
		return parseHTTP(v, params)
	case "stdout":
		return parseStdout(v, params)
	default:
		v.AddViolation(fmt.Sprintf("wait condition %q is not defined", typeName))
		return nil, false
	}
}

// paramsAsMap wraps the evaluated params into a *value.Map so the
// validator's MayHave*/MustHave* helpers, which all expect a *value.Map,
// can be reused unchanged for wait-condition parsing. Key order doesn't
// matter here: these are leaf scalar parameters, not an ordered matcher
// list whose reporting order is user-visible.
func paramsAsMap(params map[string]value.Value) *value.Map {
	m := value.NewMap()
	for k, v := range params {
		m.Set(k, v)
	}
	return m
}

package waitcond

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"texest/internal/validator"
	"texest/internal/value"
)

type stdoutCondition struct {
	pattern *regexp.Regexp
	timeout time.Duration
}

// Wait consumes stdoutLines until one matches pattern, the channel closes
// (stream ended, never matched), or timeout elapses.
func (c *stdoutCondition) Wait(ctx context.Context, stdoutLines <-chan string) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case line, ok := <-stdoutLines:
			if !ok {
				return fmt.Errorf("stdout never output %q", c.pattern.String())
			}
			if c.pattern.MatchString(line) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("stdout did not output %q in %s", c.pattern.String(), validator.HumanFormat(c.timeout))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseStdout(v *validator.Validator, params map[string]value.Value) (WaitCondition, bool) {
	m := paramsAsMap(params)

	patternStr, patternOK := v.MustHaveString(m, "pattern")
	var re *regexp.Regexp
	if patternOK {
		compiled, err := regexp.Compile(patternStr)
		if err != nil {
			validator.InField(v, "pattern", func(v *validator.Validator) any {
				v.AddViolation("should be valid regular expression pattern")
				return nil
			})
			patternOK = false
		} else {
			re = compiled
		}
	}

	timeout, hasTimeout := v.MayHaveDuration(m, "timeout")
	if !hasTimeout {
		timeout = 3 * time.Second
	}

	if !patternOK {
		return nil, false
	}
	return &stdoutCondition{pattern: re, timeout: timeout}, true
}

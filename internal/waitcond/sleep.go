package waitcond

import (
	"context"
	"time"

	"texest/internal/validator"
	"texest/internal/value"
)

type sleepCondition struct {
	duration time.Duration
}

func (c *sleepCondition) Wait(ctx context.Context, _ <-chan string) error {
	select {
	case <-time.After(c.duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseSleep(v *validator.Validator, params map[string]value.Value) (WaitCondition, bool) {
	m := paramsAsMap(params)
	dur, hasDuration := v.MayHaveDuration(m, "duration")
	if !hasDuration {
		if _, present := m.Get("duration"); present {
			return nil, false
		}
		dur = time.Second
	}
	return &sleepCondition{duration: dur}, true
}

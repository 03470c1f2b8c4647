package waitcond

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"texest/internal/validator"
	"texest/internal/value"
)

type httpCondition struct {
	port         int
	path         string
	initialDelay time.Duration
	interval     time.Duration
	maxRetry     int
	timeout      time.Duration
}

// Wait sleeps initialDelay, then GETs http://localhost:<port><path> with a
// per-request timeout, retrying up to maxRetry times with interval between
// attempts. Total attempts = 1 + maxRetry. Success iff any attempt gets a
// 2xx response.
func (c *httpCondition) Wait(ctx context.Context, _ <-chan string) error {
	if err := sleepCtx(ctx, c.initialDelay); err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d%s", c.port, c.path)
	client := &http.Client{Timeout: c.timeout}

	attempts := 1 + c.maxRetry
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, c.interval); err != nil {
				return err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err == nil {
			resp, err := client.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("HTTP endpoint %s is not ready", c.path)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseHTTP(v *validator.Validator, params map[string]value.Value) (WaitCondition, bool) {
	m := paramsAsMap(params)

	port, portOK := v.MustHaveUintField(m, "port")
	path, pathOK := v.MustHaveString(m, "path")

	if port > 65535 {
		validator.InField(v, "port", func(v *validator.Validator) any {
			v.AddViolation("should be in range of u16")
			return nil
		})
		portOK = false
	}

	initialDelay, _ := v.MayHaveDuration(m, "initial_delay")
	interval, _ := v.MayHaveDuration(m, "interval")

	maxRetry := 3
	if mrVal, present := m.Get("max_retry"); present {
		if n, ok := validator.InFieldOk(v, "max_retry", func(v *validator.Validator) (uint64, bool) { return v.MustBeUint(mrVal) }); ok {
			maxRetry = int(n)
		}
	}

	timeout, hasTimeout := v.MayHaveDuration(m, "timeout")
	if !hasTimeout {
		timeout = time.Second
	}

	if !portOK || !pathOK {
		return nil, false
	}

	return &httpCondition{
		port:         int(port),
		path:         path,
		initialDelay: initialDelay,
		interval:     interval,
		maxRetry:     maxRetry,
		timeout:      timeout,
	}, true
}

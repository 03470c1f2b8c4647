// Package orchestrator drives one evaluated test case through its full
// lifecycle: setup hooks, background process startup and readiness,
// foreground process execution, background teardown, matcher evaluation,
// and teardown hooks.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"texest/internal/matcher"
	"texest/internal/process"
	"texest/internal/testcase"
)

// TeardownGrace is the interval between sending SIGTERM to a background
// process and escalating to SIGKILL.
const TeardownGrace = 3 * time.Second

// Failure is one recorded assertion/run failure under a subject.
type Failure struct {
	Subject  string
	Messages []string
}

// TestResult is the outcome of running one test case.
type TestResult struct {
	Name     string
	Failures []Failure
}

// Passed reports whether the test case produced no failures.
func (r *TestResult) Passed() bool {
	return len(r.Failures) == 0
}

// collector accumulates failure messages per subject, preserving each
// subject's first-seen order, matching the reporting order guarantee. The
// mutex lets multiple background processes' readiness probes, run
// concurrently under an errgroup, report into it safely.
type collector struct {
	mu     sync.Mutex
	order  []string
	bucket map[string][]string
}

func newCollector() *collector {
	return &collector{bucket: map[string][]string{}}
}

func (c *collector) add(subject, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bucket[subject]; !ok {
		c.order = append(c.order, subject)
	}
	c.bucket[subject] = append(c.bucket[subject], message)
}

func (c *collector) result(name string) *TestResult {
	r := &TestResult{Name: name}
	for _, subject := range c.order {
		r.Failures = append(r.Failures, Failure{Subject: subject, Messages: c.bucket[subject]})
	}
	return r
}

// Orchestrator runs test cases using the shared matcher registries captured
// at evaluation time.
type Orchestrator struct{}

// New constructs an Orchestrator.
func New() *Orchestrator {
	return &Orchestrator{}
}

// Run executes tc's full lifecycle and returns its result.
func (o *Orchestrator) Run(ctx context.Context, tc *testcase.TestCase) *TestResult {
	c := newCollector()

	if !runSetupHooks(c, tc) {
		return c.result(tc.Name)
	}
	defer runTeardownHooks(c, tc)

	// Ports are reserved (bound) during evaluation only to pin down a free
	// number; release them now, right before any process can race to grab
	// the same port back.
	for _, p := range tc.ReservedPorts {
		_ = p.Release()
	}

	var background, foreground []string
	for _, name := range tc.ProcessNames {
		p := tc.Processes[name]
		if p.Mode == testcase.ProcessBackground {
			background = append(background, name)
		} else {
			foreground = append(foreground, name)
		}
	}

	// Background processes are all started up front, then their readiness
	// probes run concurrently under one errgroup tied to ctx: a probe
	// failure cancels the context the others are watching, so a broken
	// background dependency doesn't make its siblings wait out their full
	// timeout before the test case can report and tear down.
	handles := map[string]*process.Handle{}
	for _, name := range background {
		p := tc.Processes[name]
		h, err := startProcess(p)
		if err != nil {
			c.add(name+":exec", err.Error())
			continue
		}
		handles[name] = h
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, name := range background {
		h, ok := handles[name]
		if !ok {
			continue
		}
		name, h := name, h
		p := tc.Processes[name]
		group.Go(func() error {
			lines, unsubscribe := h.StdoutLines()
			defer unsubscribe()
			err := p.Wait.Wait(gctx, lines)
			if err != nil {
				c.add(name+":wait", err.Error())
			}
			return err
		})
	}
	_ = group.Wait()

	results := map[string]process.Result{}
	for _, name := range foreground {
		p := tc.Processes[name]
		h, err := startProcess(p)
		if err != nil {
			c.add(name+":exec", err.Error())
			continue
		}
		results[name] = h.Wait(p.Timeout)
	}

	for _, name := range background {
		h, ok := handles[name]
		if !ok {
			continue
		}
		results[name] = h.Stop(TeardownGrace)
	}

	for _, name := range tc.ProcessNames {
		p := tc.Processes[name]
		res, ok := results[name]
		if !ok {
			continue
		}
		evaluateProcessResult(c, name, p, res)
	}

	evaluateFileMatchers(c, tc)

	return c.result(tc.Name)
}

func runSetupHooks(c *collector, tc *testcase.TestCase) bool {
	for _, hook := range tc.SetupHooks {
		if err := hook.Setup(); err != nil {
			c.add("setup", fmt.Sprintf("%s: %s", hook.Describe(), err))
			return false
		}
	}
	return true
}

func runTeardownHooks(c *collector, tc *testcase.TestCase) {
	for i := len(tc.TeardownHooks) - 1; i >= 0; i-- {
		hook := tc.TeardownHooks[i]
		if err := hook.Teardown(); err != nil {
			c.add("teardown", fmt.Sprintf("%s: %s", hook.Describe(), err))
		}
	}
}

func startProcess(p *testcase.Process) (*process.Handle, error) {
	spec := process.Spec{
		Command: p.Command,
		Args:    p.Args,
		Stdin:   p.Stdin,
		Timeout: p.Timeout,
	}
	if len(p.Env) > 0 {
		env := append([]string{}, os.Environ()...)
		for _, e := range p.Env {
			env = append(env, e.Name+"="+e.Value)
		}
		spec.Env = env
	}
	if p.TeeStdout {
		spec.StdoutSink = os.Stdout
	}
	if p.TeeStderr {
		spec.StderrSink = os.Stderr
	}
	return process.Start(spec)
}

func evaluateProcessResult(c *collector, name string, p *testcase.Process, res process.Result) {
	switch res.Status.Kind {
	case process.StatusExit:
		for _, entry := range p.StatusMatchers {
			if failed, msg := matcher.EvaluateStatus(entry, res.Status.Code); failed {
				c.add(name+":status", msg)
			}
		}
	case process.StatusSignal:
		c.add(name+":status", fmt.Sprintf("signaled with %d", res.Status.Signal))
	case process.StatusTimeout:
		c.add(name+":status", "timed out")
	}

	for _, entry := range p.StdoutMatchers {
		if failed, msg := matcher.EvaluateStream(entry, res.Stdout); failed {
			c.add(name+":stdout", msg)
		}
	}
	for _, entry := range p.StderrMatchers {
		if failed, msg := matcher.EvaluateStream(entry, res.Stderr); failed {
			c.add(name+":stderr", msg)
		}
	}
}

func evaluateFileMatchers(c *collector, tc *testcase.TestCase) {
	for _, fm := range tc.FileMatchers {
		subject := "file:" + fm.Path
		data, err := os.ReadFile(fm.Path)
		if err != nil {
			c.add(subject, fmt.Sprintf("%s: file does not exist", fm.Path))
			continue
		}
		for _, entry := range fm.Matchers {
			if failed, msg := matcher.EvaluateStream(entry, data); failed {
				c.add(subject, msg)
			}
		}
	}
}

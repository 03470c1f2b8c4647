// Package report observes a test run and renders it through a chosen
// formatter (simple text or JSON), mirroring the teacher's formatting
// package split between a shared interface and per-format implementations.
package report

import (
	"texest/internal/orchestrator"
)

// Summary aggregates every test result produced by a run.
type Summary struct {
	Results []*orchestrator.TestResult
}

// NumTestCases is the total number of test cases in the run.
func (s *Summary) NumTestCases() int { return len(s.Results) }

// NumPassed is how many test cases produced no failures.
func (s *Summary) NumPassed() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed() {
			n++
		}
	}
	return n
}

// NumFailed is how many test cases produced at least one failure.
func (s *Summary) NumFailed() int {
	return s.NumTestCases() - s.NumPassed()
}

// Success reports whether every test case in the run passed.
func (s *Summary) Success() bool {
	return s.NumFailed() == 0
}

// Reporter observes a run's lifecycle. Every method returns an error so
// I/O failures (a broken pipe, a full disk) can abort the run rather than
// being silently swallowed.
type Reporter interface {
	OnRunStart() error
	OnTestCaseStart(name string) error
	OnTestCaseEnd(result *orchestrator.TestResult) error
	OnRunEnd(summary *Summary) error
}

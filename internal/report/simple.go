package report

import (
	"bufio"
	"fmt"
	"io"

	"texest/internal/orchestrator"
)

// SimpleReporter emits "." per passing test case and "F" per failing one
// as the run progresses, then a failures section and a one-line summary.
type SimpleReporter struct {
	w       *bufio.Writer
	color   *ColorMarker
	results []*orchestrator.TestResult
}

// NewSimpleReporter builds a SimpleReporter writing to w.
func NewSimpleReporter(w io.Writer, color *ColorMarker) *SimpleReporter {
	return &SimpleReporter{w: bufio.NewWriter(w), color: color}
}

func (r *SimpleReporter) OnRunStart() error {
	return nil
}

func (r *SimpleReporter) OnTestCaseStart(name string) error {
	return nil
}

func (r *SimpleReporter) OnTestCaseEnd(result *orchestrator.TestResult) error {
	r.results = append(r.results, result)
	mark := "."
	if !result.Passed() {
		mark = "F"
	}
	if result.Passed() {
		mark = r.color.Pass(mark)
	} else {
		mark = r.color.Fail(mark)
	}
	if _, err := r.w.WriteString(mark); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *SimpleReporter) OnRunEnd(summary *Summary) error {
	if _, err := r.w.WriteString("\n"); err != nil {
		return err
	}
	for _, result := range r.results {
		if result.Passed() {
			continue
		}
		if err := r.writeFailures(result); err != nil {
			return err
		}
	}
	line := fmt.Sprintf("%d test cases, %d failures\n", summary.NumTestCases(), summary.NumFailed())
	if _, err := r.w.WriteString(line); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *SimpleReporter) writeFailures(result *orchestrator.TestResult) error {
	header := fmt.Sprintf("%s\n", r.color.Fail(result.Name))
	if _, err := r.w.WriteString(header); err != nil {
		return err
	}
	for _, failure := range result.Failures {
		if _, err := fmt.Fprintf(r.w, "  %s:\n", failure.Subject); err != nil {
			return err
		}
		for _, msg := range failure.Messages {
			if _, err := fmt.Fprintf(r.w, "    %s\n", msg); err != nil {
				return err
			}
		}
	}
	return nil
}

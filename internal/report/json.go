package report

import (
	"encoding/json"
	"io"

	"texest/internal/orchestrator"
)

// JSONReporter buffers every test result and emits a single JSON object
// at OnRunEnd, matching the documented summary shape.
type JSONReporter struct {
	w       io.Writer
	results []*orchestrator.TestResult
}

// NewJSONReporter builds a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) OnRunStart() error {
	return nil
}

func (r *JSONReporter) OnTestCaseStart(name string) error {
	return nil
}

func (r *JSONReporter) OnTestCaseEnd(result *orchestrator.TestResult) error {
	r.results = append(r.results, result)
	return nil
}

type jsonFailure struct {
	Subject  string   `json:"subject"`
	Messages []string `json:"messages"`
}

type jsonTestResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Failures []jsonFailure `json:"failures,omitempty"`
}

type jsonSummary struct {
	NumTestCases       int              `json:"num_test_cases"`
	NumPassedTestCases int              `json:"num_passed_test_cases"`
	NumFailedTestCases int              `json:"num_failed_test_cases"`
	Success            bool             `json:"success"`
	TestResults        []jsonTestResult `json:"test_results"`
}

func (r *JSONReporter) OnRunEnd(summary *Summary) error {
	out := jsonSummary{
		NumTestCases:       summary.NumTestCases(),
		NumPassedTestCases: summary.NumPassed(),
		NumFailedTestCases: summary.NumFailed(),
		Success:            summary.Success(),
		TestResults:        make([]jsonTestResult, 0, len(r.results)),
	}
	for _, result := range r.results {
		tr := jsonTestResult{Name: result.Name, Passed: result.Passed()}
		for _, failure := range result.Failures {
			tr.Failures = append(tr.Failures, jsonFailure{Subject: failure.Subject, Messages: failure.Messages})
		}
		out.TestResults = append(out.TestResults, tr)
	}
	enc := json.NewEncoder(r.w)
	return enc.Encode(out)
}

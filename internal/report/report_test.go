package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texest/internal/orchestrator"
)

func passingResult(name string) *orchestrator.TestResult {
	return &orchestrator.TestResult{Name: name}
}

func failingResult(name string) *orchestrator.TestResult {
	return &orchestrator.TestResult{
		Name: name,
		Failures: []orchestrator.Failure{
			{Subject: "main:status", Messages: []string{"expected exit(0), got exit(1)"}},
		},
	}
}

func TestSimpleReporterAllPassed(t *testing.T) {
	var buf bytes.Buffer
	r := NewSimpleReporter(&buf, NewColorMarker(ColorNever))

	require.NoError(t, r.OnRunStart())
	require.NoError(t, r.OnTestCaseEnd(passingResult("a")))
	require.NoError(t, r.OnRunEnd(&Summary{Results: []*orchestrator.TestResult{passingResult("a")}}))

	assert.Equal(t, ".\n1 test cases, 0 failures\n", buf.String())
}

func TestSimpleReporterWithFailure(t *testing.T) {
	var buf bytes.Buffer
	r := NewSimpleReporter(&buf, NewColorMarker(ColorNever))

	fail := failingResult("broken")
	require.NoError(t, r.OnTestCaseEnd(fail))
	require.NoError(t, r.OnRunEnd(&Summary{Results: []*orchestrator.TestResult{fail}}))

	out := buf.String()
	assert.Contains(t, out, "F\n")
	assert.Contains(t, out, "broken\n")
	assert.Contains(t, out, "  main:status:\n")
	assert.Contains(t, out, "    expected exit(0), got exit(1)\n")
	assert.Contains(t, out, "1 test cases, 1 failures\n")
}

func TestJSONReporterOmitsEmptyFailures(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	pass := passingResult("a")
	fail := failingResult("b")
	require.NoError(t, r.OnTestCaseEnd(pass))
	require.NoError(t, r.OnTestCaseEnd(fail))
	require.NoError(t, r.OnRunEnd(&Summary{Results: []*orchestrator.TestResult{pass, fail}}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, float64(2), decoded["num_test_cases"])
	assert.Equal(t, float64(1), decoded["num_passed_test_cases"])
	assert.Equal(t, float64(1), decoded["num_failed_test_cases"])
	assert.Equal(t, false, decoded["success"])

	results := decoded["test_results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "a", first["name"])
	_, hasFailures := first["failures"]
	assert.False(t, hasFailures, "passing result must omit failures key")

	second := results[1].(map[string]any)
	assert.Equal(t, "b", second["name"])
	assert.NotEmpty(t, second["failures"])
}

func TestSummaryAggregation(t *testing.T) {
	s := &Summary{Results: []*orchestrator.TestResult{
		passingResult("a"), passingResult("b"), failingResult("c"),
	}}
	assert.Equal(t, 3, s.NumTestCases())
	assert.Equal(t, 2, s.NumPassed())
	assert.Equal(t, 1, s.NumFailed())
	assert.False(t, s.Success())
}

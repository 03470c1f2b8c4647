package driver

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texest/internal/driverr"
	"texest/internal/expr"
	"texest/internal/report"
)

const passingDoc = `
tests:
  - command: ["true"]
    expect:
      status: {eq: 0}
`

const failingDoc = `
tests:
  - command: ["false"]
    expect:
      status: {eq: 0}
`

const invalidDoc = `
tests:
  - expect:
      status: {eq: 0}
`

func newTestDriver(format string) (*Driver, *bytes.Buffer) {
	var buf bytes.Buffer
	var reporter report.Reporter
	if format == "json" {
		reporter = report.NewJSONReporter(&buf)
	} else {
		reporter = report.NewSimpleReporter(&buf, report.NewColorMarker(report.ColorNever))
	}
	return New(reporter, expr.DefaultPortReserver{}), &buf
}

func TestDriverRunAllPassed(t *testing.T) {
	d, buf := newTestDriver("simple")
	err := d.Run(context.Background(), []Input{{Name: "t.yaml", Data: []byte(passingDoc)}})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 test cases, 0 failures")
}

func TestDriverRunSomeFailed(t *testing.T) {
	d, _ := newTestDriver("simple")
	err := d.Run(context.Background(), []Input{{Name: "t.yaml", Data: []byte(failingDoc)}})

	require.Error(t, err)
	var failed *driverr.TestFailedError
	assert.ErrorAs(t, err, &failed)
}

func TestDriverRunInvalidInput(t *testing.T) {
	d, _ := newTestDriver("simple")
	err := d.Run(context.Background(), []Input{{Name: "t.yaml", Data: []byte(invalidDoc)}})

	require.Error(t, err)
	var invalid *driverr.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.NotEmpty(t, invalid.Messages)
}

const multiViolationDoc = `
tests:
  - expect:
      status: {eq: 0}
  - expect:
      status: {eq: 1}
`

// Two test cases each missing a required field must surface as two distinct
// violation lines, and Error() must not truncate to the first one.
func TestDriverRunInvalidInputReportsEveryViolation(t *testing.T) {
	d, _ := newTestDriver("simple")
	err := d.Run(context.Background(), []Input{{Name: "t.yaml", Data: []byte(multiViolationDoc)}})

	require.Error(t, err)
	var invalid *driverr.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Messages, 2)

	rendered := err.Error()
	for _, msg := range invalid.Messages {
		assert.Contains(t, rendered, msg)
	}
}

func TestDriverRunParseError(t *testing.T) {
	d, _ := newTestDriver("simple")
	err := d.Run(context.Background(), []Input{{Name: "t.yaml", Data: []byte("not: [valid: yaml")}})

	require.Error(t, err)
	var invalid *driverr.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestReadInputStdinFallback(t *testing.T) {
	in, err := ReadInput("-", strings.NewReader("hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, "<stdin>", in.Name)
	assert.Equal(t, "hello", string(in.Data))
}

func TestReadInputFile(t *testing.T) {
	in, err := ReadInput("spec.yaml", nil, func(name string) ([]byte, error) {
		assert.Equal(t, "spec.yaml", name)
		return []byte("contents"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "spec.yaml", in.Name)
	assert.Equal(t, "contents", string(in.Data))
}

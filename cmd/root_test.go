package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"texest/internal/driverr"
)

func TestPrintErrorWritesEveryViolation(t *testing.T) {
	var buf bytes.Buffer
	err := &driverr.InvalidInputError{Messages: []string{
		"t.yaml $.tests[0].command[0]: should have .command as string",
		"t.yaml $.tests[1].command[0]: should have .command as string",
	}}

	printError(&buf, err)

	out := buf.String()
	for _, msg := range err.Messages {
		assert.Contains(t, out, msg)
	}
}

func TestPrintErrorFallsBackToErrorString(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestPrintErrorNoopOnNil(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, nil)
	assert.Empty(t, buf.String())
}

package process

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndWaitCapturesOutput(t *testing.T) {
	h, err := Start(Spec{Command: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, StatusExit, res.Status.Kind)
	assert.Equal(t, 0, res.Status.Code)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
}

func TestNonZeroExitCode(t *testing.T) {
	h, err := Start(Spec{Command: "sh", Args: []string{"-c", "exit 7"}})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, StatusExit, res.Status.Kind)
	assert.Equal(t, 7, res.Status.Code)
}

func TestSignaled(t *testing.T) {
	h, err := Start(Spec{Command: "sh", Args: []string{"-c", "kill -TERM $$"}})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, StatusSignal, res.Status.Kind)
	assert.Equal(t, 15, res.Status.Signal)
}

func TestWaitTimeoutKillsProcess(t *testing.T) {
	h, err := Start(Spec{Command: "sleep", Args: []string{"5"}})
	require.NoError(t, err)

	start := time.Now()
	res := h.Wait(50 * time.Millisecond)
	assert.Equal(t, StatusTimeout, res.Status.Kind)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestStdin(t *testing.T) {
	h, err := Start(Spec{Command: "cat", Stdin: "hello from stdin"})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, "hello from stdin", string(res.Stdout))
}

func TestStopSendsTermAndWaits(t *testing.T) {
	h, err := Start(Spec{Command: "sleep", Args: []string{"30"}})
	require.NoError(t, err)

	res := h.Stop(2 * time.Second)
	assert.NotEqual(t, StatusTimeout, res.Status.Kind)
}

func TestTeeWritesToSink(t *testing.T) {
	var sink bytes.Buffer
	h, err := Start(Spec{Command: "echo", Args: []string{"teed"}, StdoutSink: &sink})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, "teed\n", string(res.Stdout))
	assert.Equal(t, "teed\n", sink.String())
}

func TestStdoutLinesPublishesLiveLines(t *testing.T) {
	h, err := Start(Spec{Command: "sh", Args: []string{"-c", "echo first; sleep 0.05; echo second"}})
	require.NoError(t, err)

	lines, unsubscribe := h.StdoutLines()
	defer unsubscribe()

	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("channel closed before two lines arrived")
			}
			got = append(got, line)
		case <-timeout:
			t.Fatal("timed out waiting for lines")
		}
	}
	assert.Equal(t, []string{"first", "second"}, got)

	h.Wait(5 * time.Second)
}

func TestFailedStartReturnsError(t *testing.T) {
	_, err := Start(Spec{Command: "/no/such/binary-texest"})
	assert.Error(t, err)
}

func TestEnvIsPropagated(t *testing.T) {
	h, err := Start(Spec{
		Command: "sh",
		Args:    []string{"-c", "echo $TEXEST_PROCESS_TEST_VAR"},
		Env:     append([]string{"TEXEST_PROCESS_TEST_VAR=injected"}),
	})
	require.NoError(t, err)

	res := h.Wait(5 * time.Second)
	assert.Equal(t, "injected\n", string(res.Stdout))
}

package testcase

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texest/internal/expr"
	"texest/internal/tmpres"
)

func evalFirst(t *testing.T, yaml string) *TestCase {
	t.Helper()
	exprs := mustParseDoc(t, yaml)
	require.Len(t, exprs, 1)

	tmpDirs := tmpres.NewFactory()
	t.Cleanup(func() { _ = tmpDirs.Cleanup() })

	tc, violations := EvalTestExpr(NewRegistries(), tmpDirs, expr.DefaultPortReserver{}, exprs[0])
	require.Empty(t, violations)
	require.NotNil(t, tc)
	return tc
}

func TestEvalSimpleCommand(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - command: ["echo", "hi"]
    expect:
      status: {eq: 0}
`)
	proc := tc.Processes[DefaultProcessName]
	require.NotNil(t, proc)
	assert.Equal(t, "echo", proc.Command)
	assert.Equal(t, []string{"hi"}, proc.Args)
	require.Len(t, proc.StatusMatchers, 1)
	assert.Equal(t, "echo hi", tc.Name)
}

func TestEvalDerivesNameFromCommand(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - command: ["echo", "has spaces here"]
`)
	assert.Contains(t, tc.Name, "echo")
}

func TestEvalExplicitNameWins(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - name: "custom name"
    command: ["true"]
`)
	assert.Equal(t, "custom name", tc.Name)
}

func TestEvalLetBindingIsVisibleToCommand(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - let:
      word: "hello"
    command: ["echo", {$var: word}]
`)
	proc := tc.Processes[DefaultProcessName]
	assert.Equal(t, []string{"hello"}, proc.Args)
}

func TestEvalUndefinedVarIsViolation(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - command: ["echo", {$var: nope}]
`)
	tmpDirs := tmpres.NewFactory()
	defer tmpDirs.Cleanup()

	_, violations := EvalTestExpr(NewRegistries(), tmpDirs, expr.DefaultPortReserver{}, exprs[0])
	assert.NotEmpty(t, violations)
}

func TestEvalTmpFileRegistersSetupHook(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - command: ["cat", {$tmp_file: {name: "in.txt", contents: "payload"}}]
`)
	require.Len(t, tc.SetupHooks, 1)
	hook, ok := tc.SetupHooks[0].(*expr.TmpFileHook)
	require.True(t, ok)
	assert.Equal(t, "payload", hook.Contents)
}

func TestEvalTmpPortReservationReleasedByOrchestratorContract(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - command: ["echo", {$tmp_port: server}]
`)
	require.Len(t, tc.ReservedPorts, 1)
	port := tc.ReservedPorts[0].Port()
	assert.Greater(t, port, 0)

	proc := tc.Processes[DefaultProcessName]
	assert.Equal(t, strconv.Itoa(port), proc.Args[0])

	require.NoError(t, tc.ReservedPorts[0].Release())
}

func TestEvalMultiProcessMatchersScopedPerProcess(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - processes:
      server:
        command: ["sleep", "1"]
        background:
          wait_for: {type: sleep, duration: "1ms"}
      client:
        command: ["true"]
    expect:
      client:
        status: {eq: 0}
`)
	server := tc.Processes["server"]
	client := tc.Processes["client"]
	assert.Empty(t, server.StatusMatchers)
	require.Len(t, client.StatusMatchers, 1)
	assert.Equal(t, ProcessBackground, server.Mode)
	assert.NotNil(t, server.Wait)
}

func TestEvalBackgroundDefaultWaitCondition(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - processes:
      server:
        command: ["sleep", "1"]
        background: {}
`)
	server := tc.Processes["server"]
	assert.NotNil(t, server.Wait)
}

func TestEvalFileMatchers(t *testing.T) {
	tc := evalFirst(t, `
tests:
  - command: ["true"]
    expect:
      files:
        "/tmp/texest-eval-test.txt":
          contain: "hello"
`)
	require.Len(t, tc.FileMatchers, 1)
	assert.Equal(t, "/tmp/texest-eval-test.txt", tc.FileMatchers[0].Path)
	require.Len(t, tc.FileMatchers[0].Matchers, 1)
}

func TestEvalUnknownMatcherIsViolation(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - command: ["true"]
    expect:
      status: {bogus_matcher: 1}
`)
	tmpDirs := tmpres.NewFactory()
	defer tmpDirs.Cleanup()

	_, violations := EvalTestExpr(NewRegistries(), tmpDirs, expr.DefaultPortReserver{}, exprs[0])
	assert.NotEmpty(t, violations)
}

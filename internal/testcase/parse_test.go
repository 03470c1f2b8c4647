package testcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texest/internal/document"
)

func mustParseDoc(t *testing.T, yaml string) []*TestCaseExpr {
	t.Helper()
	doc, err := document.Parse("t.yaml", []byte(yaml))
	require.NoError(t, err)
	exprs, violations := ParseFile("t.yaml", doc)
	require.Empty(t, violations)
	return exprs
}

func TestParseSingleProcessShorthand(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - command: ["echo", "hi"]
    expect:
      status: {eq: 0}
`)
	require.Len(t, exprs, 1)
	tce := exprs[0]
	assert.Equal(t, []string{DefaultProcessName}, tce.ProcessNames)

	pe := tce.Processes[DefaultProcessName]
	require.NotNil(t, pe)
	assert.Len(t, pe.Args, 1)

	pme := tce.ProcessMatchers[DefaultProcessName]
	require.NotNil(t, pme)
	assert.Equal(t, []string{"eq"}, pme.Status.Names)
}

func TestParseMultiProcess(t *testing.T) {
	exprs := mustParseDoc(t, `
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
	require.Len(t, exprs, 1)
	tce := exprs[0]
	assert.ElementsMatch(t, []string{"server", "client"}, tce.ProcessNames)

	server := tce.Processes["server"]
	require.NotNil(t, server)
	assert.Equal(t, ProcessBackground, server.Mode)
	require.NotNil(t, server.Wait)
	assert.Equal(t, "sleep", server.Wait.Name)

	client := tce.Processes["client"]
	assert.Equal(t, ProcessForeground, client.Mode)

	assert.NotContains(t, tce.ProcessMatchers, "server")
	require.Contains(t, tce.ProcessMatchers, "client")
}

func TestParseFilesMatchers(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - command: ["true"]
    expect:
      files:
        "/tmp/out.txt":
          contain: "hello"
`)
	tce := exprs[0]
	assert.Equal(t, []string{"/tmp/out.txt"}, tce.FilePaths)
	me := tce.FileMatchers["/tmp/out.txt"]
	assert.Equal(t, []string{"contain"}, me.Names)
}

func TestParseLetBindings(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - let:
      greeting: "hello"
    command: ["echo", {$var: greeting}]
`)
	tce := exprs[0]
	assert.Equal(t, []string{"greeting"}, tce.LetNames)
	assert.Contains(t, tce.LetDecls, "greeting")
}

func TestParseMissingCommandIsViolation(t *testing.T) {
	doc, err := document.Parse("t.yaml", []byte(`
tests:
  - expect:
      status: {eq: 0}
`))
	require.NoError(t, err)
	_, violations := ParseFile("t.yaml", doc)
	require.NotEmpty(t, violations)
}

func TestParseMissingTestsKeyIsViolation(t *testing.T) {
	doc, err := document.Parse("t.yaml", []byte(`foo: bar`))
	require.NoError(t, err)
	_, violations := ParseFile("t.yaml", doc)
	require.NotEmpty(t, violations)
}

func TestParseExplicitName(t *testing.T) {
	exprs := mustParseDoc(t, `
tests:
  - name: "my test"
    command: ["true"]
`)
	tce := exprs[0]
	require.NotNil(t, tce.Name)
}

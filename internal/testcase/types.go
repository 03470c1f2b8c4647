// Package testcase implements the desugared test-case-expression tree, its
// parser from the raw document Value, and the evaluator that turns a
// TestCaseExpr into an executable TestCase.
package testcase

import (
	"time"

	"texest/internal/expr"
	"texest/internal/matcher"
	"texest/internal/waitcond"
)

// DefaultProcessName is the synthetic name used for a test case's sole
// process when it is declared in single-process shorthand form.
const DefaultProcessName = "main"

// ProcessMode discriminates a process's scheduling: run to completion
// before the next step, or start now and keep running until teardown.
type ProcessMode int

const (
	ProcessForeground ProcessMode = iota
	ProcessBackground
)

// WaitConditionExpr is the not-yet-evaluated form of a background
// process's readiness condition.
type WaitConditionExpr struct {
	Name   string
	Params map[string]*expr.Expr
}

// ProcessExpr is the desugared, pre-evaluation form of a single process
// declaration.
type ProcessExpr struct {
	Command *expr.Expr
	Args    []*expr.Expr
	Stdin   *expr.Expr
	Env     []EnvExpr
	Timeout *expr.Expr
	Mode    ProcessMode
	Wait    *WaitConditionExpr // only set when Mode == ProcessBackground

	TeeStdout bool
	TeeStderr bool
}

// EnvExpr pairs an environment variable name with its (not yet evaluated)
// value expression.
type EnvExpr struct {
	Name  string
	Value *expr.Expr
}

// MatcherExprs holds the raw matcher-name -> parameter-expression pairs for
// one subject (status, stdout, stderr, or one file path), in declaration
// order.
type MatcherExprs struct {
	Names  []string
	Params map[string]*expr.Expr
}

// ProcessMatchersExpr bundles the three matcher buckets that apply to one
// process.
type ProcessMatchersExpr struct {
	Status MatcherExprs
	Stdout MatcherExprs
	Stderr MatcherExprs
}

// TestCaseExpr is the fully desugared, pre-evaluation form of one test
// case: every parameter position holds an expr.Expr rather than a plain
// value.
type TestCaseExpr struct {
	Filename string
	Path     string

	Name *expr.Expr // nil => derive from last process's command+args

	LetNames []string
	LetDecls map[string]*expr.Expr

	ProcessNames    []string
	Processes       map[string]*ProcessExpr
	ProcessMatchers map[string]*ProcessMatchersExpr

	FilePaths    []string
	FileMatchers map[string]MatcherExprs
}

// ---- evaluated, executable forms ----

// Process is the fully evaluated form of a process declaration.
type Process struct {
	Name    string
	Command string
	Args    []string
	Stdin   string
	Env     []EnvPair
	Timeout time.Duration
	Mode    ProcessMode
	Wait    waitcond.WaitCondition

	TeeStdout bool
	TeeStderr bool

	StatusMatchers []matcher.StatusMatcherEntry
	StdoutMatchers []matcher.StreamMatcherEntry
	StderrMatchers []matcher.StreamMatcherEntry
}

// EnvPair is a single evaluated environment variable assignment.
type EnvPair struct {
	Name  string
	Value string
}

// FileMatcher is the evaluated form of one expect.files.<path> entry.
type FileMatcher struct {
	Path     string
	Matchers []matcher.StreamMatcherEntry
}

// TestCase is the executable result of evaluating a TestCaseExpr.
type TestCase struct {
	Name     string
	Filename string
	Path     string

	ProcessNames []string
	Processes    map[string]*Process

	FileMatchers []FileMatcher

	SetupHooks    []expr.SetupHook
	TeardownHooks []TeardownHook

	// ReservedPorts are the tmp_port reservations held open during
	// evaluation so the chosen port numbers can't be stolen before the
	// processes that use them spawn. The orchestrator releases them
	// itself, right before starting any process.
	ReservedPorts []expr.ReservedPort
}

// TeardownHook is run, in reverse registration order, after a test case's
// processes have all finished.
type TeardownHook interface {
	Teardown() error
	Describe() string
}

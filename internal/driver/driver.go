// Package driver wires the rest of the runtime together: load documents,
// parse and evaluate them into test cases, run them through the
// orchestrator, and report the outcome, mapping final state to one of the
// documented exit codes.
package driver

import (
	"context"
	"fmt"
	"io"

	"texest/internal/document"
	"texest/internal/driverr"
	"texest/internal/expr"
	"texest/internal/obs"
	"texest/internal/orchestrator"
	"texest/internal/report"
	"texest/internal/testcase"
	"texest/internal/tmpres"
	"texest/internal/validator"
)

// Input is one unit of work for the driver: a named byte source. Name is
// used as the filename in violation messages; it is "<stdin>" for piped
// input.
type Input struct {
	Name string
	Data []byte
}

// Driver loads, evaluates, runs, and reports a set of inputs.
type Driver struct {
	reporter report.Reporter
	tmpDirs  *tmpres.Factory
	ports    expr.PortReserver
}

// New builds a Driver that reports through reporter. ports defaults to
// expr.DefaultPortReserver when nil.
func New(reporter report.Reporter, ports expr.PortReserver) *Driver {
	if ports == nil {
		ports = expr.DefaultPortReserver{}
	}
	return &Driver{reporter: reporter, tmpDirs: tmpres.NewFactory(), ports: ports}
}

// Run executes the full pipeline over inputs and returns the error the CLI
// entry point should map to an exit code via driverr.ExitCode. A nil error
// means every test case passed.
func (d *Driver) Run(ctx context.Context, inputs []Input) error {
	defer func() {
		if err := d.tmpDirs.Cleanup(); err != nil {
			obs.Warn("driver", "failed to clean up temp directories: %v", err)
		}
	}()

	tceFiles, violations := d.parseAll(inputs)
	if len(violations) > 0 {
		return &driverr.InvalidInputError{Messages: violationMessages(violations)}
	}

	registries := testcase.NewRegistries()
	testCases, violations := d.evaluateAll(registries, tceFiles)
	if len(violations) > 0 {
		return &driverr.InvalidInputError{Messages: violationMessages(violations)}
	}

	return d.runAll(ctx, testCases)
}

func (d *Driver) parseAll(inputs []Input) ([]*testcase.TestCaseExpr, []validator.Violation) {
	var all []*testcase.TestCaseExpr
	var violations []validator.Violation

	for _, in := range inputs {
		doc, err := document.Parse(in.Name, in.Data)
		if err != nil {
			violations = append(violations, validator.Violation{Filename: in.Name, Message: err.Error()})
			continue
		}
		tces, v := testcase.ParseFile(in.Name, doc)
		violations = append(violations, v...)
		all = append(all, tces...)
	}
	return all, violations
}

func (d *Driver) evaluateAll(registries *testcase.Registries, tceFiles []*testcase.TestCaseExpr) ([]*testcase.TestCase, []validator.Violation) {
	var testCases []*testcase.TestCase
	var violations []validator.Violation

	for _, tce := range tceFiles {
		tc, v := testcase.EvalTestExpr(registries, d.tmpDirs, d.ports, tce)
		if len(v) > 0 {
			violations = append(violations, v...)
			continue
		}
		testCases = append(testCases, tc)
	}
	return testCases, violations
}

func (d *Driver) runAll(ctx context.Context, testCases []*testcase.TestCase) error {
	orch := orchestrator.New()

	if err := d.reporter.OnRunStart(); err != nil {
		return &driverr.InternalError{Reason: err}
	}

	results := make([]*orchestrator.TestResult, 0, len(testCases))
	for _, tc := range testCases {
		if err := d.reporter.OnTestCaseStart(tc.Name); err != nil {
			return &driverr.InternalError{Reason: err}
		}

		result := orch.Run(ctx, tc)
		results = append(results, result)

		if err := d.reporter.OnTestCaseEnd(result); err != nil {
			return &driverr.InternalError{Reason: err}
		}
	}

	summary := &report.Summary{Results: results}
	if err := d.reporter.OnRunEnd(summary); err != nil {
		return &driverr.InternalError{Reason: err}
	}

	if !summary.Success() {
		return &driverr.TestFailedError{NumFailed: summary.NumFailed()}
	}
	return nil
}

func violationMessages(violations []validator.Violation) []string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Path == "" {
			// Parse errors carry no path; their message already starts
			// with the filename.
			msgs = append(msgs, v.Message)
			continue
		}
		msgs = append(msgs, v.String())
	}
	return msgs
}

// ReadInput reads one positional argument into an Input: "-" or an empty
// name means read stdin, anything else is a file path.
func ReadInput(name string, stdin io.Reader, readFile func(string) ([]byte, error)) (Input, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return Input{}, fmt.Errorf("<stdin>: %w", err)
		}
		return Input{Name: "<stdin>", Data: data}, nil
	}
	data, err := readFile(name)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", name, err)
	}
	return Input{Name: name, Data: data}, nil
}

package testcase

import (
	"fmt"
	"time"

	"github.com/apparentlymart/go-shquot/shquot"

	"texest/internal/expr"
	"texest/internal/matcher"
	"texest/internal/validator"
	"texest/internal/value"
	"texest/internal/waitcond"
)

// Registries bundles the two matcher registries shared by every test-case
// evaluation in a run.
type Registries struct {
	Status *matcher.StatusMatcherRegistry
	Stream *matcher.StreamMatcherRegistry
}

// NewRegistries constructs the default registries (all built-in matchers).
func NewRegistries() *Registries {
	return &Registries{
		Status: matcher.NewStatusMatcherRegistry(),
		Stream: matcher.NewStreamMatcherRegistry(),
	}
}

// EvalTestExpr evaluates a TestCaseExpr (already parsed from the document)
// into an executable TestCase, following the algorithm in the component
// design: let-bindings in order, matcher buckets, per-process evaluation,
// file matchers, then the display name.
func EvalTestExpr(registries *Registries, supplier expr.TmpDirSupplier, reserver expr.PortReserver, tce *TestCaseExpr) (*TestCase, []validator.Violation) {
	v := validator.NewWithPaths(tce.Filename, []string{tce.Path})
	ctx := expr.NewContext(supplier, reserver)

	var setupHooks []expr.SetupHook

	// Step 2: let-bindings, in declaration order.
	validator.InField(v, "let", func(v *validator.Validator) any {
		for _, name := range tce.LetNames {
			validator.InField(v, name, func(v *validator.Validator) any {
				out, err := ctx.Eval(tce.LetDecls[name])
				if err != nil {
					v.AddViolation(fmt.Sprintf("eval error: %s", err))
					return nil
				}
				setupHooks = append(setupHooks, out.SetupHooks...)
				ctx.DefineVar(name, out.Value)
				return nil
			})
		}
		return nil
	})

	// Step 3/4/5: evaluate matcher buckets and processes together, keyed
	// by process name; every matcher bucket must be consumed by a real
	// process.
	processes := make(map[string]*Process, len(tce.ProcessNames))
	validator.InField(v, "expect", func(v *validator.Validator) any {
		for _, name := range tce.ProcessNames {
			pme := tce.ProcessMatchers[name]
			if pme == nil {
				pme = &ProcessMatchersExpr{}
			}
			var statusEntries []matcher.StatusMatcherEntry
			var stdoutEntries, stderrEntries []matcher.StreamMatcherEntry

			scope := func(v *validator.Validator) any {
				statusEntries = evalStatusMatchers(v, ctx, registries, "status", pme.Status)
				stdoutEntries = evalStreamMatchers(v, ctx, registries, "stdout", pme.Stdout)
				stderrEntries = evalStreamMatchers(v, ctx, registries, "stderr", pme.Stderr)
				return nil
			}
			if len(tce.ProcessNames) == 1 && name == DefaultProcessName {
				scope(v)
			} else {
				validator.InField(v, name, scope)
			}

			processes[name] = evalProcessExpr(v, ctx, &setupHooks, tce.Processes[name], name)
			processes[name].StatusMatchers = statusEntries
			processes[name].StdoutMatchers = stdoutEntries
			processes[name].StderrMatchers = stderrEntries
		}
		return nil
	})

	// Step 6: files matchers.
	var fileMatchers []FileMatcher
	validator.InField(v, "expect.files", func(v *validator.Validator) any {
		for _, path := range tce.FilePaths {
			entries := evalStreamMatchers(v, ctx, registries, path, tce.FileMatchers[path])
			fileMatchers = append(fileMatchers, FileMatcher{Path: path, Matchers: entries})
		}
		return nil
	})

	// Step 7: display name.
	name := deriveName(v, ctx, tce, processes)

	if len(v.Violations) > 0 {
		return nil, v.Violations
	}

	ports := make([]expr.ReservedPort, 0, len(ctx.ReservedPorts()))
	for _, p := range ctx.ReservedPorts() {
		ports = append(ports, p)
	}

	return &TestCase{
		Name:          name,
		Filename:      tce.Filename,
		Path:          tce.Path,
		ProcessNames:  tce.ProcessNames,
		Processes:     processes,
		FileMatchers:  fileMatchers,
		SetupHooks:    setupHooks,
		TeardownHooks: nil,
		ReservedPorts: ports,
	}, nil
}

func evalStatusMatchers(v *validator.Validator, ctx *expr.Context, registries *Registries, field string, me MatcherExprs) []matcher.StatusMatcherEntry {
	return validator.InField(v, field, func(v *validator.Validator) []matcher.StatusMatcherEntry {
		var out []matcher.StatusMatcherEntry
		for _, name := range me.Names {
			out = appendStatusEntry(v, ctx, registries, name, me.Params[name], out)
		}
		return out
	})
}

func appendStatusEntry(v *validator.Validator, ctx *expr.Context, registries *Registries, name string, e *expr.Expr, out []matcher.StatusMatcherEntry) []matcher.StatusMatcherEntry {
	out2, err := ctx.Eval(e)
	if err != nil {
		validator.InField(v, name, func(v *validator.Validator) any {
			v.AddViolation(fmt.Sprintf("eval error: %s", err))
			return nil
		})
		return out
	}
	entry, ok := registries.Status.Parse(v, name, out2.Value)
	if !ok {
		return out
	}
	return append(out, entry)
}

func evalStreamMatchers(v *validator.Validator, ctx *expr.Context, registries *Registries, field string, me MatcherExprs) []matcher.StreamMatcherEntry {
	return validator.InField(v, field, func(v *validator.Validator) []matcher.StreamMatcherEntry {
		var out []matcher.StreamMatcherEntry
		for _, name := range me.Names {
			out2, err := ctx.Eval(me.Params[name])
			if err != nil {
				validator.InField(v, name, func(v *validator.Validator) any {
					v.AddViolation(fmt.Sprintf("eval error: %s", err))
					return nil
				})
				continue
			}
			entry, ok := registries.Stream.Parse(v, name, out2.Value)
			if !ok {
				continue
			}
			out = append(out, entry)
		}
		return out
	})
}

// defaultWaitCondition is used for a background process that omits
// background.wait_for entirely: sleep 1s, matching the sleep condition's
// own default.
func defaultWaitCondition() waitcond.WaitCondition {
	wc, _ := waitcond.Parse(validator.New("<default>"), "sleep", nil)
	return wc
}

// deriveName returns the test case's display name: the explicit name
// expression if given, otherwise a shell-quoted rendering of the last
// declared process's command and arguments.
func deriveName(v *validator.Validator, ctx *expr.Context, tce *TestCaseExpr, processes map[string]*Process) string {
	if tce.Name != nil {
		return validator.InField(v, "name", func(v *validator.Validator) string {
			out, err := ctx.Eval(tce.Name)
			if err != nil {
				v.AddViolation(fmt.Sprintf("eval error: %s", err))
				return ""
			}
			s, _ := v.MustBeString(out.Value)
			return s
		})
	}

	if len(tce.ProcessNames) == 0 {
		return ""
	}
	last := tce.ProcessNames[len(tce.ProcessNames)-1]
	proc := processes[last]
	if proc == nil {
		return ""
	}
	words := append([]string{proc.Command}, proc.Args...)
	return shquot.POSIXShell(words)
}

func evalProcessExpr(v *validator.Validator, ctx *expr.Context, setupHooks *[]expr.SetupHook, pe *ProcessExpr, name string) *Process {
	proc := &Process{Name: name, Mode: pe.Mode, TeeStdout: pe.TeeStdout, TeeStderr: pe.TeeStderr}

	proc.Command = validator.InField(v, "command[0]", func(v *validator.Validator) string {
		out, err := ctx.Eval(pe.Command)
		if err != nil {
			v.AddViolation(fmt.Sprintf("eval error: %s", err))
			return ""
		}
		*setupHooks = append(*setupHooks, out.SetupHooks...)
		s, _ := v.MustBeString(out.Value)
		return s
	})

	proc.Args = validator.InField(v, "command", func(v *validator.Validator) []string {
		var args []string
		for i, a := range pe.Args {
			validator.InIndex(v, i+1, func(v *validator.Validator) any {
				out, err := ctx.Eval(a)
				if err != nil {
					v.AddViolation(fmt.Sprintf("eval error: %s", err))
					return nil
				}
				*setupHooks = append(*setupHooks, out.SetupHooks...)
				if s, ok := v.MustBeString(out.Value); ok {
					args = append(args, s)
				}
				return nil
			})
		}
		return args
	})

	proc.Stdin = validator.InField(v, "stdin", func(v *validator.Validator) string {
		out, err := ctx.Eval(pe.Stdin)
		if err != nil {
			v.AddViolation(fmt.Sprintf("eval error: %s", err))
			return ""
		}
		*setupHooks = append(*setupHooks, out.SetupHooks...)
		s, _ := v.MustBeString(out.Value)
		return s
	})

	validator.InField(v, "env", func(v *validator.Validator) any {
		for _, e := range pe.Env {
			validator.InField(v, e.Name, func(v *validator.Validator) any {
				out, err := ctx.Eval(e.Value)
				if err != nil {
					v.AddViolation(fmt.Sprintf("eval error: %s", err))
					return nil
				}
				*setupHooks = append(*setupHooks, out.SetupHooks...)
				if s, ok := v.MustBeString(out.Value); ok {
					proc.Env = append(proc.Env, EnvPair{Name: e.Name, Value: s})
				}
				return nil
			})
		}
		return nil
	})

	if pe.Timeout != nil {
		proc.Timeout = validator.InField(v, "timeout", func(v *validator.Validator) time.Duration {
			out, err := ctx.Eval(pe.Timeout)
			if err != nil {
				v.AddViolation(fmt.Sprintf("eval error: %s", err))
				return 0
			}
			*setupHooks = append(*setupHooks, out.SetupHooks...)
			d, _ := v.MustBeDuration(out.Value)
			return d
		})
	}

	if pe.Mode == ProcessBackground {
		validator.InField(v, "background", func(v *validator.Validator) any {
			validator.InField(v, "wait_for", func(v *validator.Validator) any {
				if pe.Wait == nil {
					proc.Wait = defaultWaitCondition()
					return nil
				}
				params := map[string]value.Value{}
				for k, paramExpr := range pe.Wait.Params {
					validator.InField(v, k, func(v *validator.Validator) any {
						out, err := ctx.Eval(paramExpr)
						if err != nil {
							v.AddViolation(fmt.Sprintf("eval error: %s", err))
							return nil
						}
						*setupHooks = append(*setupHooks, out.SetupHooks...)
						params[k] = out.Value
						return nil
					})
				}
				wc, ok := waitcond.Parse(v, pe.Wait.Name, params)
				if !ok {
					proc.Wait = defaultWaitCondition()
					return nil
				}
				proc.Wait = wc
				return nil
			})
			return nil
		})
	}

	return proc
}

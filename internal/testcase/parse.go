package testcase

import (
	"fmt"

	"texest/internal/expr"
	"texest/internal/validator"
	"texest/internal/value"
)

// ParseFile desugars one input file's top-level document into its
// constituent TestCaseExprs. It reports every structural violation before
// returning; a non-empty violation slice means the file is invalid.
func ParseFile(filename string, doc value.Value) ([]*TestCaseExpr, []validator.Violation) {
	v := validator.New(filename)

	m, ok := v.MustBeMap(doc)
	if !ok {
		return nil, v.Violations
	}

	items, ok := v.MustHaveSeq(m, "tests")
	if !ok {
		return nil, v.Violations
	}

	exprs := validator.InField(v, "tests", func(v *validator.Validator) []*TestCaseExpr {
		return validator.MapSeq(v, items, func(v *validator.Validator, i int, item value.Value) (*TestCaseExpr, bool) {
			tc, ok := parseTestCaseExpr(v, filename, fmt.Sprintf("$.tests[%d]", i), item)
			return tc, ok
		})
	})

	return exprs, v.Violations
}

func parseTestCaseExpr(v *validator.Validator, filename, path string, doc value.Value) (*TestCaseExpr, bool) {
	m, ok := v.MustBeMap(doc)
	if !ok {
		return nil, false
	}

	tce := &TestCaseExpr{
		Filename:        filename,
		Path:            path,
		LetDecls:        map[string]*expr.Expr{},
		Processes:       map[string]*ProcessExpr{},
		ProcessMatchers: map[string]*ProcessMatchersExpr{},
		FileMatchers:    map[string]MatcherExprs{},
	}

	if nameVal, present := m.Get("name"); present {
		tce.Name = validator.InField(v, "name", func(v *validator.Validator) *expr.Expr {
			return ParseExpr(v, nameVal)
		})
	}

	parseLetDecls(v, m, tce)
	parseProcesses(v, m, tce)
	parseExpect(v, m, tce)

	return tce, true
}

func parseLetDecls(v *validator.Validator, m *value.Map, tce *TestCaseExpr) {
	letMap, ok := v.MayHaveMap(m, "let")
	if !ok {
		return
	}
	validator.InField(v, "let", func(v *validator.Validator) any {
		for _, k := range letMap.Keys() {
			val, _ := letMap.Get(k)
			e := validator.InField(v, k, func(v *validator.Validator) *expr.Expr {
				return ParseExpr(v, val)
			})
			tce.LetNames = append(tce.LetNames, k)
			tce.LetDecls[k] = e
		}
		return nil
	})
}

func parseProcesses(v *validator.Validator, m *value.Map, tce *TestCaseExpr) {
	if processesVal, present := m.Get("processes"); present {
		processesMap, ok := validator.InFieldOk(v, "processes", func(v *validator.Validator) (*value.Map, bool) {
			return v.MustBeMap(processesVal)
		})
		if !ok {
			return
		}
		validator.InField(v, "processes", func(v *validator.Validator) any {
			for _, name := range processesMap.Keys() {
				procVal, _ := processesMap.Get(name)
				pe := validator.InField(v, name, func(v *validator.Validator) *ProcessExpr {
					return parseProcessExpr(v, procVal)
				})
				tce.ProcessNames = append(tce.ProcessNames, name)
				tce.Processes[name] = pe
			}
			return nil
		})
		return
	}

	// single-process shorthand
	pe := parseProcessExpr(v, value.MapOf(m))
	tce.ProcessNames = []string{DefaultProcessName}
	tce.Processes[DefaultProcessName] = pe
}

func parseProcessExpr(v *validator.Validator, doc value.Value) *ProcessExpr {
	m, ok := v.MustBeMap(doc)
	pe := &ProcessExpr{Mode: ProcessForeground}
	if !ok {
		pe.Command = Literal(value.Str(""))
		return pe
	}

	pe.Command = validator.InField(v, "command[0]", func(v *validator.Validator) *expr.Expr {
		cmdVal, present := m.Get("command")
		if !present {
			v.AddViolation("should have .command as string")
			return Literal(value.Str(""))
		}
		// `command` may be a bare string (the program) or a sequence
		// whose first element is the program and the rest are args.
		if cmdVal.Kind == value.KindSeq {
			if len(cmdVal.Seq) == 0 {
				v.AddViolation("should have at least one element")
				return Literal(value.Str(""))
			}
			return ParseExpr(v, cmdVal.Seq[0])
		}
		return ParseExpr(v, cmdVal)
	})

	pe.Args = validator.InField(v, "command", func(v *validator.Validator) []*expr.Expr {
		cmdVal, present := m.Get("command")
		var rest []value.Value
		if present && cmdVal.Kind == value.KindSeq && len(cmdVal.Seq) > 1 {
			rest = cmdVal.Seq[1:]
		}
		if argsVal, ok := v.MayHaveSeq(m, "args"); ok {
			rest = append(rest, argsVal...)
		}
		out := make([]*expr.Expr, len(rest))
		for i, a := range rest {
			out[i] = validator.InIndex(v, i+1, func(v *validator.Validator) *expr.Expr {
				return ParseExpr(v, a)
			})
		}
		return out
	})

	if stdinVal, present := m.Get("stdin"); present {
		pe.Stdin = validator.InField(v, "stdin", func(v *validator.Validator) *expr.Expr {
			return ParseExpr(v, stdinVal)
		})
	} else {
		pe.Stdin = Literal(value.Str(""))
	}

	if envMap, ok := v.MayHaveMap(m, "env"); ok {
		validator.InField(v, "env", func(v *validator.Validator) any {
			for _, k := range envMap.Keys() {
				val, _ := envMap.Get(k)
				e := validator.InField(v, k, func(v *validator.Validator) *expr.Expr {
					return ParseExpr(v, val)
				})
				pe.Env = append(pe.Env, EnvExpr{Name: k, Value: e})
			}
			return nil
		})
	}

	if timeoutVal, present := m.Get("timeout"); present {
		pe.Timeout = validator.InField(v, "timeout", func(v *validator.Validator) *expr.Expr {
			return ParseExpr(v, timeoutVal)
		})
	}

	if b, ok := v.MayHaveBool(m, "tee_stdout"); ok {
		pe.TeeStdout = b
	}
	if b, ok := v.MayHaveBool(m, "tee_stderr"); ok {
		pe.TeeStderr = b
	}

	if bgVal, present := m.Get("background"); present {
		pe.Mode = ProcessBackground
		validator.InField(v, "background", func(v *validator.Validator) any {
			bgMap, ok := v.MustBeMap(bgVal)
			if !ok {
				return nil
			}
			waitVal, present := bgMap.Get("wait_for")
			if !present {
				return nil
			}
			pe.Wait = validator.InField(v, "wait_for", func(v *validator.Validator) *WaitConditionExpr {
				return parseWaitConditionExpr(v, waitVal)
			})
			return nil
		})
	}

	return pe
}

func parseWaitConditionExpr(v *validator.Validator, doc value.Value) *WaitConditionExpr {
	m, ok := v.MustBeMap(doc)
	if !ok {
		return nil
	}
	typeName, ok := v.MustHaveString(m, "type")
	if !ok {
		return nil
	}
	wce := &WaitConditionExpr{Name: typeName, Params: map[string]*expr.Expr{}}
	for _, k := range m.Keys() {
		if k == "type" {
			continue
		}
		val, _ := m.Get(k)
		wce.Params[k] = validator.InField(v, k, func(v *validator.Validator) *expr.Expr {
			return ParseExpr(v, val)
		})
	}
	return wce
}

func parseExpect(v *validator.Validator, m *value.Map, tce *TestCaseExpr) {
	expectMap, ok := v.MayHaveMap(m, "expect")
	if !ok {
		return
	}
	validator.InField(v, "expect", func(v *validator.Validator) any {
		if len(tce.ProcessNames) == 1 && tce.ProcessNames[0] == DefaultProcessName {
			if _, hasProcessShaped := expectMap.Get(DefaultProcessName); !hasProcessShaped {
				tce.ProcessMatchers[DefaultProcessName] = parseProcessMatchersExpr(v, expectMap)
				parseFilesMatchers(v, expectMap, tce)
				return nil
			}
		}
		for _, name := range tce.ProcessNames {
			procExpectVal, present := expectMap.Get(name)
			if !present {
				continue
			}
			tce.ProcessMatchers[name] = validator.InField(v, name, func(v *validator.Validator) *ProcessMatchersExpr {
				procExpectMap, ok := v.MustBeMap(procExpectVal)
				if !ok {
					return &ProcessMatchersExpr{}
				}
				return parseProcessMatchersExpr(v, procExpectMap)
			})
		}
		parseFilesMatchers(v, expectMap, tce)
		return nil
	})
}

func parseProcessMatchersExpr(v *validator.Validator, expectMap *value.Map) *ProcessMatchersExpr {
	pme := &ProcessMatchersExpr{}
	pme.Status = parseMatcherExprs(v, expectMap, "status")
	pme.Stdout = parseMatcherExprs(v, expectMap, "stdout")
	pme.Stderr = parseMatcherExprs(v, expectMap, "stderr")
	return pme
}

func parseMatcherExprs(v *validator.Validator, expectMap *value.Map, field string) MatcherExprs {
	me := MatcherExprs{Params: map[string]*expr.Expr{}}
	subMap, ok := v.MayHaveMap(expectMap, field)
	if !ok {
		return me
	}
	validator.InField(v, field, func(v *validator.Validator) any {
		for _, name := range subMap.Keys() {
			val, _ := subMap.Get(name)
			me.Names = append(me.Names, name)
			me.Params[name] = validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
				return ParseExpr(v, val)
			})
		}
		return nil
	})
	return me
}

func parseFilesMatchers(v *validator.Validator, expectMap *value.Map, tce *TestCaseExpr) {
	filesMap, ok := v.MayHaveMap(expectMap, "files")
	if !ok {
		return
	}
	validator.InField(v, "files", func(v *validator.Validator) any {
		for _, path := range filesMap.Keys() {
			matchersVal, _ := filesMap.Get(path)
			me := validator.InField(v, path, func(v *validator.Validator) MatcherExprs {
				matchersMap, ok := v.MustBeMap(matchersVal)
				result := MatcherExprs{Params: map[string]*expr.Expr{}}
				if !ok {
					return result
				}
				for _, name := range matchersMap.Keys() {
					val, _ := matchersMap.Get(name)
					result.Names = append(result.Names, name)
					result.Params[name] = validator.InField(v, name, func(v *validator.Validator) *expr.Expr {
						return ParseExpr(v, val)
					})
				}
				return result
			})
			tce.FilePaths = append(tce.FilePaths, path)
			tce.FileMatchers[path] = me
		}
		return nil
	})
}

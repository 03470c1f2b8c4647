// Package expr implements the expression tree that a parsed document is
// desugared into, and the Context that evaluates it.
package expr

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	sigsyaml "sigs.k8s.io/yaml"

	"texest/internal/value"
)

// Kind discriminates the Expr variants.
type Kind int

const (
	KindLiteral Kind = iota
	KindVar
	KindEnvVar
	KindYamlOf
	KindJsonOf
	KindTmpFile
	KindTmpPort
)

// Expr is the desugared form of a document node in parameter position.
type Expr struct {
	Kind Kind

	Literal value.Value

	VarName string

	EnvName    string
	EnvDefault *string

	Inner *Expr // YamlOf / JsonOf

	TmpFileName string
	TmpFileBody *Expr

	TmpPortAlias string
}

// SetupHook is a piece of deferred work materialized during evaluation but
// not run until the orchestrator's setup phase.
type SetupHook interface {
	Setup() error
	Describe() string
}

// TmpFileHook writes Contents to Path when Setup is invoked. The file is
// deliberately not created during expression evaluation.
type TmpFileHook struct {
	Path     string
	Contents string
}

func (h *TmpFileHook) Setup() error {
	if err := os.WriteFile(h.Path, []byte(h.Contents), 0o644); err != nil {
		return fmt.Errorf("failed to write tmp file %s: %w", h.Path, err)
	}
	return nil
}

func (h *TmpFileHook) Describe() string {
	return fmt.Sprintf("tmp file %s", h.Path)
}

// EvalOutput is the result of evaluating a single Expr: a pure value plus
// any setup hooks it caused to be registered.
type EvalOutput struct {
	Value      value.Value
	SetupHooks []SetupHook
}

// TmpDirSupplier lazily creates the per-test temp directory.
type TmpDirSupplier interface {
	NewTmpDir() (string, error)
}

// PortReserver hands out an OS-assigned free TCP port, returning a handle
// that must be released just before the dependent process is spawned.
type PortReserver interface {
	Reserve() (ReservedPort, error)
}

// ReservedPort is a bound-but-unused listener standing in for a port
// reservation; Port() is valid for as long as Release() hasn't been called.
type ReservedPort interface {
	Port() int
	Release() error
}

type tcpReservedPort struct {
	ln net.Listener
}

func (p *tcpReservedPort) Port() int {
	return p.ln.Addr().(*net.TCPAddr).Port
}

func (p *tcpReservedPort) Release() error {
	return p.ln.Close()
}

// DefaultPortReserver binds "127.0.0.1:0" to obtain a free port.
type DefaultPortReserver struct{}

func (DefaultPortReserver) Reserve() (ReservedPort, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &tcpReservedPort{ln: ln}, nil
}

// Context threads the three resources an evaluation needs: a lazily
// created per-test temp directory, a map of reserved ports keyed by alias,
// and let-bound variables.
type Context struct {
	supplier TmpDirSupplier
	reserver PortReserver

	tmpDirOnce sync.Once
	tmpDir     string
	tmpDirErr  error

	ports map[string]ReservedPort
	vars  map[string]value.Value
}

// NewContext constructs a Context borrowing supplier and reserver for the
// duration of one test case's evaluation and execution.
func NewContext(supplier TmpDirSupplier, reserver PortReserver) *Context {
	return &Context{
		supplier: supplier,
		reserver: reserver,
		ports:    map[string]ReservedPort{},
		vars:     map[string]value.Value{},
	}
}

// DefineVar binds name to v for subsequent Var lookups.
func (c *Context) DefineVar(name string, v value.Value) {
	c.vars[name] = v
}

func (c *Context) tmpDirPath() (string, error) {
	c.tmpDirOnce.Do(func() {
		c.tmpDir, c.tmpDirErr = c.supplier.NewTmpDir()
	})
	return c.tmpDir, c.tmpDirErr
}

// ReservedPorts returns the ports reserved so far, keyed by alias. The
// test-case evaluator copies them onto the TestCase, whose ports the
// orchestrator releases immediately before process spawn.
func (c *Context) ReservedPorts() map[string]ReservedPort {
	return c.ports
}

// Eval evaluates e under c, returning the produced value and any setup
// hooks it accumulated.
func (c *Context) Eval(e *Expr) (EvalOutput, error) {
	switch e.Kind {
	case KindLiteral:
		return EvalOutput{Value: e.Literal}, nil

	case KindVar:
		v, ok := c.vars[e.VarName]
		if !ok {
			return EvalOutput{}, fmt.Errorf("variable %s is not defined", e.VarName)
		}
		return EvalOutput{Value: v}, nil

	case KindEnvVar:
		if v, ok := os.LookupEnv(e.EnvName); ok {
			return EvalOutput{Value: value.Str(v)}, nil
		}
		if e.EnvDefault != nil {
			return EvalOutput{Value: value.Str(*e.EnvDefault)}, nil
		}
		return EvalOutput{}, fmt.Errorf("env var %s is not defined", e.EnvName)

	case KindYamlOf:
		out, err := c.Eval(e.Inner)
		if err != nil {
			return EvalOutput{}, err
		}
		s, err := toYAML(out.Value)
		if err != nil {
			return EvalOutput{}, err
		}
		return EvalOutput{Value: value.Str(s), SetupHooks: out.SetupHooks}, nil

	case KindJsonOf:
		out, err := c.Eval(e.Inner)
		if err != nil {
			return EvalOutput{}, err
		}
		s, err := toJSON(out.Value)
		if err != nil {
			return EvalOutput{}, err
		}
		return EvalOutput{Value: value.Str(s), SetupHooks: out.SetupHooks}, nil

	case KindTmpFile:
		out, err := c.Eval(e.TmpFileBody)
		if err != nil {
			return EvalOutput{}, err
		}
		if out.Value.Kind != value.KindString {
			return EvalOutput{}, fmt.Errorf("tmp file contents should be string, but not")
		}
		dir, err := c.tmpDirPath()
		if err != nil {
			return EvalOutput{}, err
		}
		path := filepath.Join(dir, e.TmpFileName)
		hook := &TmpFileHook{Path: path, Contents: out.Value.String}
		hooks := append(append([]SetupHook{}, out.SetupHooks...), hook)
		return EvalOutput{Value: value.Str(path), SetupHooks: hooks}, nil

	case KindTmpPort:
		if p, ok := c.ports[e.TmpPortAlias]; ok {
			return EvalOutput{Value: value.Str(fmt.Sprintf("%d", p.Port()))}, nil
		}
		p, err := c.reserver.Reserve()
		if err != nil {
			return EvalOutput{}, fmt.Errorf("failed to reserve tmp port: %w", err)
		}
		c.ports[e.TmpPortAlias] = p
		return EvalOutput{Value: value.Str(fmt.Sprintf("%d", p.Port()))}, nil

	default:
		return EvalOutput{}, fmt.Errorf("unknown expression kind")
	}
}

// ReleasePorts releases every port reserved during this context's
// evaluation so a real server can bind them. The orchestrator does not call
// it; it releases the TestCase's copy of the same ports instead.
func (c *Context) ReleasePorts() {
	for _, p := range c.ports {
		_ = p.Release()
	}
}

func toJSON(v value.Value) (string, error) {
	goVal, err := toGoValue(v)
	if err != nil {
		return "", err
	}
	b, err := marshalJSONBytes(goVal)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toYAML(v value.Value) (string, error) {
	goVal, err := toGoValue(v)
	if err != nil {
		return "", err
	}
	jsonBytes, err := marshalJSONBytes(goVal)
	if err != nil {
		return "", err
	}
	yamlBytes, err := sigsyaml.JSONToYAML(jsonBytes)
	if err != nil {
		return "", err
	}
	return string(yamlBytes), nil
}

// Package guest implements a minimal dynamically-typed expression
// language whose only interaction with heap state is through the
// public allocator and wrapper API in pkg/heap: it never reads or
// writes region bytes directly.
package guest

import (
	"fmt"
	"io"

	"github.com/chazu/maggie/pkg/heap"
)

// Evaluator runs a parsed guest program against a heap allocator.
type Evaluator struct {
	alloc *heap.Allocator
	env   map[string]heap.Address
	out   io.Writer
	gc    func(*heap.Allocator) *heap.Fault
}

// NewEvaluator returns an Evaluator that allocates through alloc and
// writes print output to out, collecting with heap.MinorGC on
// exhaustion.
func NewEvaluator(alloc *heap.Allocator, out io.Writer) *Evaluator {
	return &Evaluator{alloc: alloc, env: make(map[string]heap.Address), out: out, gc: heap.MinorGC}
}

// SetGC overrides the collector invoked on heap exhaustion, e.g. to
// wrap heap.MinorGCWithStats and record cycle telemetry.
func (e *Evaluator) SetGC(gc func(*heap.Allocator) *heap.Fault) {
	e.gc = gc
}

// Run parses and executes source in order, statement by statement.
func (e *Evaluator) Run(source string) error {
	stmts, err := NewParser(source).ParseProgram()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := e.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case LetStmt:
		addr, err := e.eval(s.Value)
		if err != nil {
			return err
		}
		e.env[s.Name] = addr
		return nil
	case PrintStmt:
		addr, err := e.eval(s.Value)
		if err != nil {
			return err
		}
		text, err := e.describe(addr)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.out, text)
		return nil
	case ExprStmt:
		_, err := e.eval(s.Value)
		return err
	default:
		return fmt.Errorf("guest: unknown statement %T", stmt)
	}
}

func (e *Evaluator) eval(expr Expr) (heap.Address, error) {
	switch v := expr.(type) {
	case IntLit:
		m, f := e.alloc.Int32(v.Value, e.gc)
		if f != nil {
			return 0, f
		}
		return m.Address(), nil
	case FloatLit:
		m, f := e.alloc.Float64(v.Value, e.gc)
		if f != nil {
			return 0, f
		}
		return m.Address(), nil
	case Ident:
		addr, ok := e.env[v.Name]
		if !ok {
			return 0, fmt.Errorf("guest: undefined name %q", v.Name)
		}
		return addr, nil
	case BinaryExpr:
		return e.evalBinary(v)
	case ArrayLit:
		return e.evalArrayLit(v)
	case MethodCall:
		return e.evalMethodCall(v)
	default:
		return 0, fmt.Errorf("guest: unknown expression %T", expr)
	}
}

// numeric reads a scalar mono as a float64 and reports whether the
// original value was an INT32 (so arithmetic between two ints stays
// integral).
func (e *Evaluator) numeric(addr heap.Address) (value float64, wasInt bool, err error) {
	w, f := heap.Wrap(e.alloc, addr)
	if f != nil {
		return 0, false, f
	}
	m, ok := w.(*heap.Mono)
	if !ok {
		return 0, false, fmt.Errorf("guest: value at %d is not numeric", addr)
	}
	switch m.Kind() {
	case heap.MonoInt32:
		v, f := m.ReadInt32()
		if f != nil {
			return 0, false, f
		}
		return float64(v), true, nil
	case heap.MonoFloat64:
		v, f := m.ReadFloat64()
		if f != nil {
			return 0, false, f
		}
		return v, false, nil
	default:
		return 0, false, fmt.Errorf("guest: value at %d is not numeric", addr)
	}
}

func (e *Evaluator) evalBinary(v BinaryExpr) (heap.Address, error) {
	leftAddr, err := e.eval(v.Left)
	if err != nil {
		return 0, err
	}
	rightAddr, err := e.eval(v.Right)
	if err != nil {
		return 0, err
	}
	left, leftInt, err := e.numeric(leftAddr)
	if err != nil {
		return 0, err
	}
	right, rightInt, err := e.numeric(rightAddr)
	if err != nil {
		return 0, err
	}

	var result float64
	switch v.Op {
	case TokenPlus:
		result = left + right
	case TokenMinus:
		result = left - right
	case TokenStar:
		result = left * right
	case TokenSlash:
		if right == 0 {
			return 0, fmt.Errorf("guest: division by zero")
		}
		result = left / right
		leftInt, rightInt = false, false // division always yields a float
	default:
		return 0, fmt.Errorf("guest: unsupported operator %s", v.Op)
	}

	if leftInt && rightInt {
		m, f := e.alloc.Int32(int32(result), e.gc)
		if f != nil {
			return 0, f
		}
		return m.Address(), nil
	}
	m, f := e.alloc.Float64(result, e.gc)
	if f != nil {
		return 0, f
	}
	return m.Address(), nil
}

func (e *Evaluator) evalArrayLit(v ArrayLit) (heap.Address, error) {
	arr, f := e.alloc.Array(e.gc)
	if f != nil {
		return 0, f
	}
	for _, elemExpr := range v.Elements {
		addr, err := e.eval(elemExpr)
		if err != nil {
			return 0, err
		}
		if f := arr.Append(addr, e.gc); f != nil {
			return 0, f
		}
	}
	return arr.Address(), nil
}

func (e *Evaluator) arrayAt(addr heap.Address) (*heap.ArrayWrapper, error) {
	w, f := heap.Wrap(e.alloc, addr)
	if f != nil {
		return nil, f
	}
	arr, ok := w.(*heap.ArrayWrapper)
	if !ok {
		return nil, fmt.Errorf("guest: value at %d is not an array", addr)
	}
	return arr, nil
}

func (e *Evaluator) evalMethodCall(v MethodCall) (heap.Address, error) {
	recv, err := e.eval(v.Receiver)
	if err != nil {
		return 0, err
	}
	arr, err := e.arrayAt(recv)
	if err != nil {
		return 0, err
	}

	switch v.Method {
	case "push":
		if len(v.Args) != 1 {
			return 0, fmt.Errorf("guest: push expects 1 argument, got %d", len(v.Args))
		}
		argAddr, err := e.eval(v.Args[0])
		if err != nil {
			return 0, err
		}
		if f := arr.Push(argAddr, e.gc); f != nil {
			return 0, f
		}
		return recv, nil
	case "len":
		n, f := arr.Length()
		if f != nil {
			return 0, f
		}
		m, f := e.alloc.Int32(int32(n), e.gc)
		if f != nil {
			return 0, f
		}
		return m.Address(), nil
	case "get":
		if len(v.Args) != 1 {
			return 0, fmt.Errorf("guest: get expects 1 argument, got %d", len(v.Args))
		}
		idxAddr, err := e.eval(v.Args[0])
		if err != nil {
			return 0, err
		}
		idx, _, err := e.numeric(idxAddr)
		if err != nil {
			return 0, err
		}
		elemAddr, f := arr.Index(uint32(idx))
		if f != nil {
			return 0, f
		}
		return elemAddr, nil
	case "pop":
		removed, rest, f := arr.Pop(e.gc)
		if f != nil {
			return 0, f
		}
		if id, ok := v.Receiver.(Ident); ok {
			e.env[id.Name] = rest.Address()
		}
		return removed, nil
	default:
		return 0, fmt.Errorf("guest: unknown method %q", v.Method)
	}
}

// describe renders a heap value as human-readable text for print
// statements.
func (e *Evaluator) describe(addr heap.Address) (string, error) {
	w, f := heap.Wrap(e.alloc, addr)
	if f != nil {
		return "", f
	}
	switch v := w.(type) {
	case *heap.Mono:
		switch v.Kind() {
		case heap.MonoInt32:
			n, f := v.ReadInt32()
			if f != nil {
				return "", f
			}
			return fmt.Sprintf("%d", n), nil
		case heap.MonoFloat64:
			n, f := v.ReadFloat64()
			if f != nil {
				return "", f
			}
			return fmt.Sprintf("%g", n), nil
		default:
			return fmt.Sprintf("<mono kind=%d at %d>", v.Kind(), addr), nil
		}
	case *heap.ArrayWrapper:
		n, f := v.Length()
		if f != nil {
			return "", f
		}
		out := "["
		for i := uint32(0); i < n; i++ {
			elemAddr, f := v.Index(i)
			if f != nil {
				return "", f
			}
			text, err := e.describe(elemAddr)
			if err != nil {
				return "", err
			}
			if i > 0 {
				out += ", "
			}
			out += text
		}
		return out + "]", nil
	default:
		return fmt.Sprintf("<value at %d>", addr), nil
	}
}

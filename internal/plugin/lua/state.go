package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single chunk or hook call.
const DefaultTimeout = 50 * time.Millisecond

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe: a State must be used by one
// goroutine at a time. Calls may nest, as when a Go function called from
// Lua triggers another hook on the same state.
type State struct {
	L *lua.LState

	timeout time.Duration
	modules []string
	depth   int

	mu     sync.Mutex
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout bounds every call. The running script is interrupted through
// the state's context when it expires. Zero disables the bound.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithModule allows require(name) in addition to the safe built-ins.
// The module itself is added with RegisterModule.
func WithModule(name string) StateOption {
	return func(s *State) {
		s.modules = append(s.modules, name)
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	installSandbox(L, s.modules)
	s.L = L
	return s
}

// openSafeLibraries opens only the standard libraries without I/O.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	return s.run(func() error { return s.L.DoFile(path) })
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	return s.run(func() error { return s.L.DoString(code) })
}

// Call calls fn with args and returns its results.
func (s *State) Call(fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: got %s", ErrNotFunction, fn.Type())
	}

	var results []lua.LValue
	err := s.run(func() error {
		top := s.L.GetTop()
		s.L.Push(fn)
		for _, arg := range args {
			s.L.Push(arg)
		}
		if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
			return err
		}
		n := s.L.GetTop() - top
		results = make([]lua.LValue, n)
		for i := range n {
			results[i] = s.L.Get(top + i + 1)
		}
		s.L.Pop(n)
		return nil
	})
	return results, err
}

// run executes fn with the timeout installed and panics recovered. Nested
// calls run under the outermost call's deadline.
func (s *State) run(fn func() error) (err error) {
	if s.IsClosed() {
		return ErrStateClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	if s.depth > 0 {
		return fn()
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	s.depth++
	defer func() {
		s.depth--
		s.L.RemoveContext()
	}()

	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// GetGlobal returns a global variable.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.IsClosed() {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterModule installs funcs as a table reachable both as the global
// name and through require(name).
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) *lua.LTable {
	if s.IsClosed() {
		return nil
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	s.L.PreloadModule(name, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	return mod
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

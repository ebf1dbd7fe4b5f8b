package lua

import (
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNumber(2) {
		t.Errorf("x = %v, want 2", v)
	}
}

func TestStateDoStringSyntaxError(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`x = = 1`); err == nil {
		t.Error("DoString() should fail on a syntax error")
	}
}

func TestStateCall(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`function pair(a, b) return a + b, a * b end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := state.Call(state.GetGlobal("pair"), glua.LNumber(3), glua.LNumber(4))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 2 || results[0] != glua.LNumber(7) || results[1] != glua.LNumber(12) {
		t.Errorf("Call() = %v, want [7 12]", results)
	}
}

func TestStateCallNotFunction(t *testing.T) {
	state := NewState()
	defer state.Close()

	_, err := state.Call(state.GetGlobal("missing"))
	if !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(nil) error = %v, want ErrNotFunction", err)
	}
}

func TestStateCallRuntimeError(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`function bad() local t = nil; return t.x end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if _, err := state.Call(state.GetGlobal("bad")); err == nil {
		t.Error("Call() should report the runtime error")
	}
}

func TestStateTimeout(t *testing.T) {
	state := NewState(WithTimeout(20 * time.Millisecond))
	defer state.Close()

	start := time.Now()
	err := state.DoString(`while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("DoString() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state stays usable after an interrupted call.
	if err := state.DoString(`y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateNestedCall(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`function inner() return 5 end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	state.RegisterModule("host", map[string]glua.LGFunction{
		"reenter": func(L *glua.LState) int {
			results, err := state.Call(state.GetGlobal("inner"))
			if err != nil {
				L.RaiseError("%v", err)
			}
			L.Push(results[0])
			return 1
		},
	})

	if err := state.DoString(`z = host.reenter() + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("z"); v != glua.LNumber(6) {
		t.Errorf("z = %v, want 6", v)
	}
}

func TestStateRegisterModule(t *testing.T) {
	state := NewState(WithModule("greet"))
	defer state.Close()

	state.RegisterModule("greet", map[string]glua.LGFunction{
		"hello": func(L *glua.LState) int {
			L.Push(glua.LString("hello " + L.CheckString(1)))
			return 1
		},
	})

	code := `
		local g = require("greet")
		a = g.hello("lua")
		b = greet.hello("go")
	`
	if err := state.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("a").String(); v != "hello lua" {
		t.Errorf("a = %q", v)
	}
	if v := state.GetGlobal("b").String(); v != "hello go" {
		t.Errorf("b = %q", v)
	}
}

func TestStateClose(t *testing.T) {
	state := NewState()
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() after Close = %v", v)
	}
}

func TestStateNoIOLibraries(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, name := range []string{"io", "os", "debug"} {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("%s should not be opened, got %s", name, v.Type())
		}
	}
	if err := state.DoString(`os.exit(1)`); err == nil {
		t.Error("os.exit should not be reachable")
	}
}

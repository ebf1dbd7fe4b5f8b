package lua

import (
	"strings"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestSandboxRemovesLoaders(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, fn := range removedGlobals {
		if v := state.GetGlobal(fn); v != glua.LNil {
			t.Errorf("%s should be removed, got %s", fn, v.Type())
		}
	}
}

func TestSandboxSafeRequire(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, mod := range safeModules {
		if err := state.DoString(`local m = require("` + mod + `")`); err != nil {
			t.Errorf("require(%q) error = %v", mod, err)
		}
	}
}

func TestSandboxRejectsUnknownModules(t *testing.T) {
	state := NewState()
	defer state.Close()

	for _, mod := range []string{"io", "os", "debug", "socket", "sm"} {
		err := state.DoString(`local m = require("` + mod + `")`)
		if err == nil {
			t.Errorf("require(%q) should fail", mod)
			continue
		}
		if !strings.Contains(err.Error(), "not available") {
			t.Errorf("require(%q) error = %v", mod, err)
		}
	}
}

func TestSandboxPackagePathCleared(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(`p = package.path`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("p").String(); v != "" {
		t.Errorf("package.path = %q, want empty", v)
	}
}

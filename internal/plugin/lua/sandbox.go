package lua

import (
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// safeModules are the built-in libraries require may return.
var safeModules = []string{"string", "table", "math"}

// removedGlobals load code from disk or strings and would bypass require.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "module"}

// installSandbox strips file and code loading and restricts require to the
// safe built-ins plus the allowed modules.
func installSandbox(L *lua.LState, allowed []string) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	// Nothing may be found on disk.
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !slices.Contains(safeModules, name) && !slices.Contains(allowed, name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

package lua

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// Definition gives typed access to the fields of a table a script hands
// to the host, such as its plugin table. A nil table reads as empty.
type Definition struct {
	t *lua.LTable
}

// Define wraps t.
func Define(t *lua.LTable) Definition {
	return Definition{t: t}
}

func (d Definition) get(key string) lua.LValue {
	if d.t == nil {
		return lua.LNil
	}
	return d.t.RawGetString(key)
}

// String returns a string field.
func (d Definition) String(key string) (string, bool) {
	s, ok := d.get(key).(lua.LString)
	return string(s), ok
}

// Number returns a number field.
func (d Definition) Number(key string) (float64, bool) {
	n, ok := d.get(key).(lua.LNumber)
	return float64(n), ok
}

// Bool returns a boolean field.
func (d Definition) Bool(key string) (bool, bool) {
	b, ok := d.get(key).(lua.LBool)
	return bool(b), ok
}

// Func returns a function field, typically a hook.
func (d Definition) Func(key string) (*lua.LFunction, bool) {
	f, ok := d.get(key).(*lua.LFunction)
	return f, ok
}

// Strings returns the string entries of a list field in order. A single
// string is accepted as a list of one.
func (d Definition) Strings(key string) []string {
	switch v := d.get(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= v.Len(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
	return nil
}

// Set stores v under key, converted with ToLua.
func (d Definition) Set(L *lua.LState, key string, v any) {
	if d.t != nil {
		d.t.RawSetString(key, ToLua(L, v))
	}
}

// ToLua converts the values found in decoded config files and interaction
// attributes: scalars, string lists and maps, and nested []any and
// map[string]any. Anything else becomes nil.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		t := L.CreateTable(len(val), 0)
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.CreateTable(len(val), 0)
		for _, x := range val {
			t.Append(ToLua(L, x))
		}
		return t
	case map[string]string:
		t := L.CreateTable(0, len(val))
		for _, k := range sortedKeys(val) {
			t.RawSetString(k, lua.LString(val[k]))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(val))
		for _, k := range sortedKeys(val) {
			t.RawSetString(k, ToLua(L, val[k]))
		}
		return t
	}
	return lua.LNil
}

// sortedKeys keeps table construction deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

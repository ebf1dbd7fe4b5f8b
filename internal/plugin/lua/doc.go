// Package lua hosts sandboxed gopher-lua states for script plugins.
//
// A State opens only the base, package, table, string and math libraries.
// File and code loaders are removed and require resolves only the safe
// built-ins plus modules the host allows with WithModule:
//
//	st := lua.NewState(lua.WithModule("sm"), lua.WithTimeout(20*time.Millisecond))
//	defer st.Close()
//
//	st.RegisterModule("sm", funcs)
//	if err := st.DoFile("sparkle.lua"); err != nil {
//	    return err
//	}
//
// Every call runs under a deadline. A script that overruns it is
// interrupted and the call returns ErrTimeout.
//
// Definition reads the tables scripts hand to the host and ToLua passes
// config settings and attributes the other way.
package lua

// Package loader loads Lua theme packs into Go structs at startup.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/crawlcore/types"
	lua "github.com/yuin/gopher-lua"
)

// Themes maps theme name to its compiled definition.
type Themes map[string]*types.ThemeDef

// Get returns the theme with the given name, falling back to the built-in
// default theme when the name is unknown or empty.
func (t Themes) Get(name string) *types.ThemeDef {
	if def, ok := t[name]; ok {
		return def
	}
	return DefaultTheme()
}

// rawTheme holds a theme table before compilation.
type rawTheme struct {
	name  string
	table *lua.LTable
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	themes []rawTheme
}

// Load reads all .lua files from dir, compiles them into theme definitions,
// validates them, and returns the immutable Themes set.
func Load(dir string) (Themes, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading theme directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	themes, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling theme data: %w", err)
	}

	if err := validate(themes); err != nil {
		return nil, err
	}

	return themes, nil
}

// registerAPI registers the Lua theme constructor as a global.
// Theme "id" { ... } — curried: Theme("id") returns a function that takes
// a table (same constructor shape the engine uses for game content).
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Theme", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.themes = append(coll.themes, rawTheme{name: name, table: tbl})
			return 0
		}))
		return 1
	}))
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

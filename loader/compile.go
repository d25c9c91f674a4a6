package loader

import (
	"fmt"

	"github.com/nathoo/crawlcore/types"
	lua "github.com/yuin/gopher-lua"
)

// getInt returns an int field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getStringList returns a list field as []string, skipping non-strings.
func getStringList(tbl *lua.LTable, key string) []string {
	v := tbl.RawGetString(key)
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	t.ForEach(func(_, val lua.LValue) {
		if s, ok := val.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

// getIntMap returns a table field as map[string]int, skipping other types.
func getIntMap(tbl *lua.LTable, key string) map[string]int {
	v := tbl.RawGetString(key)
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	out := map[string]int{}
	t.ForEach(func(k, val lua.LValue) {
		ks, kok := k.(lua.LString)
		n, nok := val.(lua.LNumber)
		if kok && nok {
			out[string(ks)] = int(n)
		}
	})
	return out
}

// compile turns collected raw theme tables into ThemeDefs. Fields omitted
// in the Lua table inherit from the built-in default theme, so a pack can
// override just the parts it cares about.
func compile(coll *collector) (Themes, error) {
	themes := Themes{}
	for _, raw := range coll.themes {
		if _, dup := themes[raw.name]; dup {
			return nil, fmt.Errorf("duplicate theme %q", raw.name)
		}

		base := DefaultTheme()
		def := &types.ThemeDef{
			Name:      raw.name,
			Biomes:    getStringList(raw.table, "biomes"),
			Lighting:  getStringList(raw.table, "lighting"),
			Creatures: getStringList(raw.table, "creatures"),
			ItemKinds: getStringList(raw.table, "items"),
			Hazards:   getStringList(raw.table, "hazards"),
			HitPoints: getIntMap(raw.table, "hit_points"),
			DefaultHP: getInt(raw.table, "default_hp", base.DefaultHP),
		}
		if def.Biomes == nil {
			def.Biomes = base.Biomes
		}
		if def.Lighting == nil {
			def.Lighting = base.Lighting
		}
		if def.Creatures == nil {
			def.Creatures = base.Creatures
		}
		if def.ItemKinds == nil {
			def.ItemKinds = base.ItemKinds
		}
		if def.Hazards == nil {
			def.Hazards = base.Hazards
		}
		if def.HitPoints == nil {
			def.HitPoints = base.HitPoints
		}
		themes[raw.name] = def
	}
	return themes, nil
}

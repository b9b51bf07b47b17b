// Package loader loads Lua content into Go structs at load time.
// The Lua VM is discarded after loading, so no Lua runs while spinning.
package loader

import (
	"errors"
	"fmt"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// rawWheel holds a wheel table before compilation.
type rawWheel struct {
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// field returns tbl[key] when it holds a T.
func field[T lua.LValue](tbl *lua.LTable, key string) (T, bool) {
	v, ok := tbl.RawGetString(key).(T)
	return v, ok
}

func str(tbl *lua.LTable, key string) string {
	s, _ := field[lua.LString](tbl, key)
	return string(s)
}

func num(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := field[lua.LNumber](tbl, key); ok {
		return float64(n)
	}
	return def
}

func subtable(tbl *lua.LTable, key string) *lua.LTable {
	t, _ := field[*lua.LTable](tbl, key)
	return t
}

// tables returns the tables in the array part of list, in order. Entries
// that are not tables are reported by index in bad.
func tables(list *lua.LTable) (out []*lua.LTable, bad []int) {
	for i := 1; i <= list.MaxN(); i++ {
		if t, ok := list.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		} else {
			bad = append(bad, i)
		}
	}
	return out, bad
}

// params copies every string-keyed field except "type" into a Go map.
func params(tbl *lua.LTable) map[string]any {
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && ks != "type" {
			m[string(ks)] = goValue(v)
		}
	})
	return m
}

// goValue converts a Lua value to plain Go data. Whole numbers become int,
// sequences become []any, and other tables become map[string]any.
func goValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LString:
		return string(val)
	case lua.LNumber:
		if f := float64(val); f != float64(int(f)) {
			return f
		}
		return int(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			seq := make([]any, n)
			for i := range seq {
				seq[i] = goValue(val.RawGetInt(i + 1))
			}
			return seq
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = goValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, errors.New("no Game{} definition found")
	}
	switch n := len(coll.wheels); {
	case n == 0:
		return nil, errors.New("no Wheel definition found")
	case n > 1:
		return nil, fmt.Errorf("found %d Wheel definitions, expected one", n)
	}

	defs := &state.Defs{Game: compileGame(coll.game)}

	wheel, err := compileWheel(coll.wheels[0])
	if err != nil {
		return nil, fmt.Errorf("compiling wheel %s: %w", coll.wheels[0].id, err)
	}
	defs.Wheel = wheel

	for i, raw := range coll.handlers {
		handler, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler #%d: %w", i+1, err)
		}
		defs.Handlers = append(defs.Handlers, handler)
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	game := types.GameDef{
		Title:         str(tbl, "title"),
		Author:        str(tbl, "author"),
		Version:       str(tbl, "version"),
		Intro:         str(tbl, "intro"),
		SpinsPerRound: int(num(tbl, "spins_per_round", 0)),
		StartMoney:    int(num(tbl, "start_money", 0)),
	}
	if speed := subtable(tbl, "spin_speed"); speed != nil {
		game.SpinSpeed = types.SpeedRange{
			Min: num(speed, "min", 0),
			Max: num(speed, "max", 0),
		}
	}
	return game
}

func compileWheel(raw rawWheel) (types.WheelDef, error) {
	wheel := types.WheelDef{
		ID:   raw.id,
		Name: str(raw.table, "name"),
		UUID: str(raw.table, "uuid"),
	}
	if wheel.Name == "" {
		wheel.Name = raw.id
	}

	list := subtable(raw.table, "segments")
	if list == nil {
		return wheel, nil
	}
	segs, bad := tables(list)
	if len(bad) > 0 {
		return wheel, fmt.Errorf("segment %d is not a table", bad[0])
	}
	for _, seg := range segs {
		wheel.Segments = append(wheel.Segments, compileSegment(seg))
	}
	return wheel, nil
}

func compileSegment(tbl *lua.LTable) types.SegmentDef {
	seg := types.SegmentDef{
		ID:     str(tbl, "id"),
		Name:   str(tbl, "name"),
		Prize:  int(num(tbl, "prize", 0)),
		Weight: num(tbl, "weight", 1),
		Color:  str(tbl, "color"),
	}
	if seg.Name == "" {
		seg.Name = seg.ID
	}
	return seg
}

func compileConditions(list *lua.LTable) []types.Condition {
	tbls, _ := tables(list)
	conds := make([]types.Condition, 0, len(tbls))
	for _, tbl := range tbls {
		conds = append(conds, compileCondition(tbl))
	}
	return conds
}

func compileCondition(tbl *lua.LTable) types.Condition {
	cond := types.Condition{Type: str(tbl, "type")}
	if inner := subtable(tbl, "inner"); cond.Type == "not" && inner != nil {
		c := compileCondition(inner)
		cond.Negate = true
		cond.Inner = &c
		return cond
	}
	cond.Params = params(tbl)
	return cond
}

func compileEffects(list *lua.LTable) []types.Effect {
	tbls, _ := tables(list)
	effs := make([]types.Effect, 0, len(tbls))
	for _, tbl := range tbls {
		effs = append(effs, types.Effect{Type: str(tbl, "type"), Params: params(tbl)})
	}
	return effs
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	handler := types.EventHandler{EventType: raw.eventType}
	if list := subtable(raw.table, "conditions"); list != nil {
		handler.Conditions = compileConditions(list)
	}
	if list := subtable(raw.table, "effects"); list != nil {
		handler.Effects = compileEffects(list)
	}
	if len(handler.Effects) == 0 {
		return handler, fmt.Errorf("handler for %q has no effects", raw.eventType)
	}
	return handler, nil
}

// sortedLuaFiles orders content files so game.lua runs first and the rest
// run alphabetically.
func sortedLuaFiles(files []string) []string {
	out := slices.Clone(files)
	slices.SortFunc(out, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "game.lua":
			return -1
		case b == "game.lua":
			return 1
		case a < b:
			return -1
		default:
			return 1
		}
	})
	return out
}

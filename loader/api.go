package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// argKind is the Lua type a helper argument must have.
type argKind int

const (
	argString argKind = iota
	argNumber
	argBool
	argTable
)

// param binds one positional helper argument to a field of the built table.
type param struct {
	field string
	kind  argKind
}

// check reads argument n from the stack, raising a Lua error on a type
// mismatch.
func (p param) check(L *lua.LState, n int) lua.LValue {
	switch p.kind {
	case argNumber:
		return L.CheckNumber(n)
	case argBool:
		return lua.LBool(L.CheckBool(n))
	case argTable:
		return L.CheckTable(n)
	default:
		return lua.LString(L.CheckString(n))
	}
}

// helper is a global Lua function returning a {type = ...} table that
// compiles into a condition or an effect.
type helper struct {
	name   string
	typ    string
	params []param
}

var (
	valueArg   = param{"value", argNumber}
	amountArg  = param{"amount", argNumber}
	segmentArg = param{"segment", argString}
	flagArg    = param{"flag", argString}
	counterArg = param{"counter", argString}
)

var conditionHelpers = []helper{
	{"PrizeAtLeast", "prize_at_least", []param{valueArg}},
	{"PrizeBelow", "prize_below", []param{valueArg}},
	{"SegmentIs", "segment_is", []param{segmentArg}},
	{"MoneyAtLeast", "money_at_least", []param{valueArg}},
	{"SpinsLeftBelow", "spins_left_below", []param{valueArg}},
	{"FlagSet", "flag_set", []param{flagArg}},
	{"FlagNot", "flag_not", []param{flagArg}},
	{"CounterGt", "counter_gt", []param{counterArg, valueArg}},
	{"CounterLt", "counter_lt", []param{counterArg, valueArg}},
	{"Not", "not", []param{{"inner", argTable}}},
}

var effectHelpers = []helper{
	{"Say", "say", []param{{"text", argString}}},
	{"AddMoney", "add_money", []param{amountArg}},
	{"AddSpins", "add_spins", []param{amountArg}},
	{"SetFlag", "set_flag", []param{flagArg, {"value", argBool}}},
	{"IncCounter", "inc_counter", []param{counterArg, amountArg}},
	{"SetCounter", "set_counter", []param{counterArg, valueArg}},
	{"SetWeight", "set_weight", []param{segmentArg, {"weight", argNumber}}},
	{"RemoveSegment", "remove_segment", []param{segmentArg}},
	{"EmitEvent", "emit_event", []param{{"event", argString}}},
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	for _, h := range conditionHelpers {
		registerHelper(L, h)
	}
	for _, h := range effectHelpers {
		registerHelper(L, h)
	}

	// AddSegment(Segment "id" { ... }) flattens the segment fields into
	// the effect table.
	L.SetGlobal("AddSegment", L.NewFunction(func(L *lua.LState) int {
		seg := L.CheckTable(1)
		tbl := L.NewTable()
		seg.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok && ks != "type" {
				tbl.RawSetString(string(ks), v)
			}
		})
		tbl.RawSetString("type", lua.LString("add_segment"))
		L.Push(tbl)
		return 1
	}))
}

func registerHelper(L *lua.LState, h helper) {
	L.SetGlobal(h.name, L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(h.typ))
		for i, p := range h.params {
			tbl.RawSetString(p.field, p.check(L, i+1))
		}
		L.Push(tbl)
		return 1
	}))
}

// curried returns a Lua function taking the id, which in turn returns a
// function taking the body table. It backs the `Name "id" { ... }` syntax.
func curried(L *lua.LState, body func(L *lua.LState, id string, tbl *lua.LTable) int) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			return body(L, id, L.CheckTable(1))
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Wheel", curried(L, func(L *lua.LState, id string, tbl *lua.LTable) int {
		coll.wheels = append(coll.wheels, rawWheel{id: id, table: tbl})
		return 0
	}))

	// Segments are returned tagged with their id for a Wheel's list.
	L.SetGlobal("Segment", curried(L, func(L *lua.LState, id string, tbl *lua.LTable) int {
		tbl.RawSetString("id", lua.LString(id))
		L.Push(tbl)
		return 1
	}))

	// On("event_type", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

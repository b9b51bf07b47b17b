// Package rules evaluates handler conditions against the game state and
// the event that triggered them.
package rules

import (
	"strings"

	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// Context describes the spin an event belongs to. Zero for events that
// are not about a spin.
type Context struct {
	Prize   int
	Segment string // segment ID
	Name    string // segment display name
}

// ContextFromEvent extracts the spin context from an event's data.
func ContextFromEvent(e types.Event) Context {
	var ctx Context
	ctx.Prize = toInt(e.Data["prize"])
	ctx.Segment, _ = e.Data["segment"].(string)
	ctx.Name, _ = e.Data["name"].(string)
	return ctx
}

// EvalCondition evaluates a single condition against the current state.
func EvalCondition(c types.Condition, s *types.State, ctx Context) bool {
	switch c.Type {
	case "prize_at_least":
		return ctx.Prize >= toInt(c.Params["value"])

	case "prize_below":
		return ctx.Prize < toInt(c.Params["value"])

	case "segment_is":
		seg, _ := c.Params["segment"].(string)
		return seg != "" && (seg == ctx.Segment || strings.EqualFold(seg, ctx.Name))

	case "money_at_least":
		return s.Player.Money >= toInt(c.Params["value"])

	case "spins_left_below":
		return s.Player.SpinsLeft < toInt(c.Params["value"])

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) > toInt(c.Params["value"])

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) < toInt(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s, ctx)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.State, ctx Context) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s, ctx) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

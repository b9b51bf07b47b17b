// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"github.com/nathoo/spinwheel/engine/rules"
	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// Fired is a handler that matched an event, along with the spin context
// its effects should be applied in.
type Fired struct {
	Event   types.Event
	Context rules.Context
	Effects []types.Effect
}

// Dispatch runs event handlers against the emitted events. Single pass,
// no recursion. Returns the handlers that matched, in event then
// declaration order.
func Dispatch(events []types.Event, s *types.State, defs *state.Defs) []Fired {
	var result []Fired

	for _, event := range events {
		ctx := rules.ContextFromEvent(event)
		for _, handler := range defs.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, s, ctx) {
				continue
			}
			result = append(result, Fired{Event: event, Context: ctx, Effects: handler.Effects})
		}
	}

	return result
}

// Effects flattens fired handlers into one effect list.
func Effects(fired []Fired) []types.Effect {
	var out []types.Effect
	for _, f := range fired {
		out = append(out, f.Effects...)
	}
	return out
}

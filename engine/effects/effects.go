// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"fmt"
	"strings"

	"github.com/nathoo/spinwheel/engine/resolve"
	"github.com/nathoo/spinwheel/engine/rules"
	"github.com/nathoo/spinwheel/engine/wheel"
	"github.com/nathoo/spinwheel/types"
)

// Segments is the part of a wheel that effects may reshape.
type Segments interface {
	Segments() []wheel.Segment
	AddSegment(wheel.Segment) bool
	RemoveSegment(i int) bool
	SetWeight(i int, w float64) bool
}

// Apply applies a list of effects to the game state and the wheel,
// mutating both. Returns events emitted and output text collected.
func Apply(s *types.State, w Segments, effects []types.Effect, ctx rules.Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, ctx))

		case "add_money":
			amount := toInt(eff.Params["amount"])
			s.Player.Money += amount
			events = append(events, types.Event{
				Type: "money_changed",
				Data: map[string]any{"amount": amount, "money": s.Player.Money},
			})

		case "add_spins":
			amount := toInt(eff.Params["amount"])
			s.Player.SpinsLeft += amount
			if s.Player.SpinsLeft < 0 {
				s.Player.SpinsLeft = 0
			}
			if s.Player.SpinsLeft > 0 {
				s.Flags["game_over"] = false
			}

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, _ := eff.Params["value"].(bool)
			s.Flags[flag] = value
			events = append(events, types.Event{
				Type: "flag_changed",
				Data: map[string]any{"flag": flag, "value": value},
			})

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			s.Counters[counter] += toInt(eff.Params["amount"])

		case "set_counter":
			counter, _ := eff.Params["counter"].(string)
			s.Counters[counter] = toInt(eff.Params["value"])

		case "set_weight":
			ref := resolveTemplate(paramString(eff.Params["segment"]), ctx)
			weight := toFloat(eff.Params["weight"])
			idx, err := resolve.Segment(w.Segments(), ref)
			if err != nil {
				output = append(output, err.Error())
				continue
			}
			if w.SetWeight(idx, weight) {
				seg := w.Segments()[idx]
				events = append(events, types.Event{
					Type: "weight_changed",
					Data: map[string]any{"segment": seg.ID, "name": seg.Name, "weight": seg.Weight},
				})
			}

		case "add_segment":
			seg := wheel.Segment{
				ID:     paramString(eff.Params["id"]),
				Name:   paramString(eff.Params["name"]),
				Prize:  toInt(eff.Params["prize"]),
				Weight: toFloat(eff.Params["weight"]),
				Color:  paramString(eff.Params["color"]),
			}
			if seg.Weight <= 0 {
				seg.Weight = 1
			}
			if seg.Name == "" {
				seg.Name = seg.ID
			}
			w.AddSegment(seg)
			events = append(events, types.Event{
				Type: "segment_added",
				Data: map[string]any{"segment": seg.ID, "name": seg.Name, "prize": seg.Prize},
			})

		case "remove_segment":
			ref := resolveTemplate(paramString(eff.Params["segment"]), ctx)
			segs := w.Segments()
			idx, err := resolve.Segment(segs, ref)
			if err != nil {
				output = append(output, err.Error())
				continue
			}
			if w.RemoveSegment(idx) {
				events = append(events, types.Event{
					Type: "segment_removed",
					Data: map[string]any{"segment": segs[idx].ID, "name": segs[idx].Name},
				})
			}

		case "emit_event":
			event, _ := eff.Params["event"].(string)
			events = append(events, types.Event{
				Type: event,
				Data: map[string]any{},
			})

		default:
			// Unknown effect type; ignore silently.
		}
	}

	return events, output
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.State, ctx rules.Context) string {
	r := strings.NewReplacer(
		"{prize}", fmt.Sprint(ctx.Prize),
		"{segment}", ctx.Name,
		"{money}", fmt.Sprint(s.Player.Money),
		"{spins}", fmt.Sprint(s.Player.SpinsLeft),
		"{round}", fmt.Sprint(s.Round),
	)
	return r.Replace(text)
}

// resolveTemplate handles {segment} in effect params like SetWeight("{segment}", 2).
func resolveTemplate(ref string, ctx rules.Context) string {
	if ref != "{segment}" {
		return ref
	}
	if ctx.Segment != "" {
		return ctx.Segment
	}
	return ctx.Name
}

func paramString(v any) string {
	s, _ := v.(string)
	return s
}

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

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

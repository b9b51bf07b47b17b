package loader

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known condition and effect types, one per Lua helper.
var (
	validConditionTypes = helperTypes(conditionHelpers)
	validEffectTypes    = helperTypes(effectHelpers, "add_segment")
)

func helperTypes(helpers []helper, extra ...string) map[string]bool {
	known := make(map[string]bool, len(helpers)+len(extra))
	for _, h := range helpers {
		known[h.typ] = true
	}
	for _, t := range extra {
		known[t] = true
	}
	return known
}

// Events the engine and effects emit on their own.
var builtinEvents = map[string]bool{
	"spin_started":    true,
	"prize_won":       true,
	"round_over":      true,
	"round_started":   true,
	"money_changed":   true,
	"flag_changed":    true,
	"weight_changed":  true,
	"segment_added":   true,
	"segment_removed": true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Warnings are returned even when validation passes.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	// Game title required.
	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}

	if defs.Game.SpinsPerRound < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Game.spins_per_round must not be negative, got %d", defs.Game.SpinsPerRound))
	}

	// Speed range, when given.
	if r := defs.Game.SpinSpeed; r.Min != 0 || r.Max != 0 {
		if r.Min <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"Game.spin_speed.min must be positive, got %v", r.Min))
		}
		if r.Max < r.Min {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"Game.spin_speed.max %v is below min %v", r.Max, r.Min))
		}
	}

	// Wheel identity.
	if defs.Wheel.UUID != "" {
		if _, err := uuid.Parse(defs.Wheel.UUID); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"wheel %q has invalid uuid %q", defs.Wheel.ID, defs.Wheel.UUID))
		}
	}

	// Segments.
	known := validateSegments(defs.Wheel, ve)

	// Segments added by effects may be referenced later.
	emitted := map[string]bool{}
	for _, handler := range defs.Handlers {
		for _, eff := range handler.Effects {
			switch eff.Type {
			case "add_segment":
				if id, ok := eff.Params["id"].(string); ok && id != "" {
					known[strings.ToLower(id)] = true
				}
				if name, ok := eff.Params["name"].(string); ok && name != "" {
					known[strings.ToLower(name)] = true
				}
			case "emit_event":
				if ev, ok := eff.Params["event"].(string); ok {
					emitted[ev] = true
				}
			}
		}
	}

	// Handlers.
	for _, handler := range defs.Handlers {
		validateConditions(handler.Conditions, known, ve)
		validateEffects(handler.Effects, known, ve)

		if !builtinEvents[handler.EventType] && !emitted[handler.EventType] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"handler for %q will never fire: nothing emits that event", handler.EventType))
		}
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

// validateSegments checks the wheel's segments and returns the set of
// lower-cased IDs and names that references may use.
func validateSegments(wheel types.WheelDef, ve *ValidationError) map[string]bool {
	known := map[string]bool{}

	if len(wheel.Segments) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"wheel %q has no segments", wheel.ID))
		return known
	}

	ids := map[string]bool{}
	names := map[string]bool{}
	for i, seg := range wheel.Segments {
		label := seg.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"segment %s has no id", label))
		}
		if seg.Weight <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"segment %s weight must be positive, got %v", label, seg.Weight))
		}

		id := strings.ToLower(seg.ID)
		if id != "" && ids[id] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"duplicate segment id %q", seg.ID))
		}
		ids[id] = true

		name := strings.ToLower(seg.Name)
		if names[name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"duplicate segment name %q", seg.Name))
		}
		names[name] = true

		known[id] = true
		known[name] = true
	}
	return known
}

func validateConditions(conditions []types.Condition, known map[string]bool, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown condition type %q", cond.Type))
		}

		switch cond.Type {
		case "segment_is":
			if seg, ok := cond.Params["segment"].(string); ok && !isTemplate(seg) {
				if !known[strings.ToLower(seg)] {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition segment_is references undefined segment %q", seg))
				}
			}
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, known, ve)
			}
		}
	}
}

func validateEffects(effects []types.Effect, known map[string]bool, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown effect type %q", eff.Type))
		}

		switch eff.Type {
		case "set_weight", "remove_segment":
			if seg, ok := eff.Params["segment"].(string); ok && !isTemplate(seg) {
				if !known[strings.ToLower(seg)] {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect %s references undefined segment %q", eff.Type, seg))
				}
			}
		case "add_segment":
			if id, _ := eff.Params["id"].(string); id == "" {
				ve.Errors = append(ve.Errors, "effect add_segment needs a Segment with an id")
			}
		}
	}
}

// isTemplate returns true if the string contains a template variable.
func isTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

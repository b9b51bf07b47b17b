// Package engine provides the Step() and Tick() orchestrators that wire
// together parsing, resolution, rules, effects, events and the wheel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/spinwheel/engine/effects"
	"github.com/nathoo/spinwheel/engine/events"
	"github.com/nathoo/spinwheel/engine/ledger"
	"github.com/nathoo/spinwheel/engine/odds"
	"github.com/nathoo/spinwheel/engine/parser"
	"github.com/nathoo/spinwheel/engine/resolve"
	"github.com/nathoo/spinwheel/engine/rules"
	"github.com/nathoo/spinwheel/engine/save"
	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/engine/wheel"
	"github.com/nathoo/spinwheel/types"
)

// ErrSpinning is returned by operations that need an idle wheel.
var ErrSpinning = errors.New("the wheel is spinning")

// Recorder persists completed spins. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the spin speed RNG.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.State.RNGSeed = seed }
}

// WithLogger sets the structured logger. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder records every completed spin.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// Engine holds the game definitions, mutable state and the wheel.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *RNG
	Wheel *wheel.Wheel

	recorder  Recorder
	log       *slog.Logger
	lastSpeed float64
	pending   types.Result // produced by completions during Tick
}

// New creates a new engine from definitions.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:  defs,
		State: state.NewState(defs),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	base := e.log
	e.log = base.With("component", "engine")
	e.RNG = NewRNG(e.State.RNGSeed)

	// An empty or malformed uuid leaves the zero id, which the wheel
	// replaces with a random one.
	var id uuid.UUID
	if defs.Wheel.UUID != "" {
		var err error
		if id, err = uuid.Parse(defs.Wheel.UUID); err != nil {
			e.log.Warn("invalid wheel uuid, using a random id", "uuid", defs.Wheel.UUID, "error", err)
		}
	}
	e.Wheel = wheel.New(Segments(defs.Wheel), wheel.Options{ID: id, Logger: base})
	e.Wheel.OnSpinCompleted(e.onSpinCompleted)
	return e
}

// Segments converts wheel definitions to runtime segments.
func Segments(def types.WheelDef) []wheel.Segment {
	segs := make([]wheel.Segment, len(def.Segments))
	for i, sd := range def.Segments {
		segs[i] = wheel.Segment{
			ID:     sd.ID,
			Name:   sd.Name,
			Prize:  sd.Prize,
			Weight: sd.Weight,
			Color:  sd.Color,
		}
	}
	return segs
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
	e.State.RNGSeed = seed
	e.State.RNGPosition = position
}

// Spinning reports whether the wheel is in motion.
func (e *Engine) Spinning() bool {
	return e.Wheel.Spinning()
}

// Save serializes player progress. It fails with ErrSpinning while a spin
// is in flight.
func (e *Engine) Save() ([]byte, error) {
	if e.Wheel.Spinning() {
		return nil, ErrSpinning
	}
	e.State.Rotation = e.Wheel.Rotation()
	return save.Save(e.State, e.Defs)
}

// Restore applies a loaded save. It fails while the wheel is spinning.
func (e *Engine) Restore(sd *save.SaveData) error {
	if e.Wheel.Spinning() {
		return ErrSpinning
	}
	save.ApplySave(e.State, sd)
	e.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	e.Wheel.SetRotation(sd.Rotation)
	return nil
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	e.State.CommandLog = append(e.State.CommandLog, input)

	// 3. Empty input.
	if intent.Verb == "" {
		result.Output = append(result.Output, "What do you want to do?")
		return result
	}

	// 4. Built-in behavior for the verb.
	var effs []types.Effect
	var evts []types.Event
	var out []string

	switch intent.Verb {
	case "spin":
		evts, out = e.builtinSpin(intent)
	case "weight":
		effs, out = e.builtinWeight(intent)
	case "add":
		effs, out = e.builtinAdd(intent)
	case "remove":
		effs, out = e.builtinRemove(intent)
	case "odds":
		out = odds.Compute(e.Wheel.Segments()).Format()
	case "segments":
		out = e.describeSegments()
	case "status":
		out = e.describeStatus()
	case "new":
		evts, out = e.builtinNewRound()
	case "help":
		out = helpText()
	default:
		out = []string{fmt.Sprintf("I don't know how to %q. Type 'help' for a list of commands.", intent.Verb)}
	}
	result.Output = append(result.Output, out...)

	// 5. Apply effects and dispatch events.
	e.run(&result, effs, evts, rules.Context{})

	// 6. Track RNG position for save/load.
	e.State.RNGPosition = e.RNG.Position()

	return result
}

// Tick advances the wheel by dt seconds and returns whatever a completed
// spin produced.
func (e *Engine) Tick(dt float64) types.Result {
	if !e.Wheel.Spinning() {
		return types.Result{}
	}
	e.Wheel.Tick(dt)
	e.State.Rotation = e.Wheel.Rotation()

	result := e.pending
	e.pending = types.Result{}
	return result
}

// run applies effects, then dispatches the emitted events (single pass) and
// applies handler effects. Handler events are NOT re-dispatched.
func (e *Engine) run(result *types.Result, effs []types.Effect, evts []types.Event, ctx rules.Context) {
	if len(effs) > 0 {
		evts2, output := effects.Apply(e.State, e.Wheel, effs, ctx)
		result.Effects = append(result.Effects, effs...)
		evts = append(evts, evts2...)
		result.Output = append(result.Output, output...)
	}
	result.Events = append(result.Events, evts...)

	for _, fired := range events.Dispatch(evts, e.State, e.Defs) {
		evts3, output := effects.Apply(e.State, e.Wheel, fired.Effects, fired.Context)
		result.Effects = append(result.Effects, fired.Effects...)
		result.Events = append(result.Events, evts3...)
		result.Output = append(result.Output, output...)
	}
}

// onSpinCompleted credits the prize, runs handlers and records the spin.
// The wheel is already idle here.
func (e *Engine) onSpinCompleted(c wheel.Completion) {
	e.State.Rotation = c.Rotation
	result := &e.pending

	if c.Prize > 0 {
		result.Output = append(result.Output, fmt.Sprintf("The wheel stops on %s! You win %d.", c.Segment.Name, c.Prize))
	} else {
		result.Output = append(result.Output, fmt.Sprintf("The wheel stops on %s.", c.Segment.Name))
	}

	ctx := rules.Context{Prize: c.Prize, Segment: c.Segment.ID, Name: c.Segment.Name}
	won := types.Event{
		Type: "prize_won",
		Data: map[string]any{
			"prize":   c.Prize,
			"segment": c.Segment.ID,
			"name":    c.Segment.Name,
			"index":   c.Index,
		},
	}
	var credit []types.Effect
	if c.Prize != 0 {
		credit = append(credit, types.Effect{Type: "add_money", Params: map[string]any{"amount": c.Prize}})
	}
	e.run(result, credit, []types.Event{won}, ctx)

	e.record(c)

	if e.State.Player.SpinsLeft <= 0 && !state.GameOver(e.State) {
		e.State.Flags["game_over"] = true
		over := types.Event{
			Type: "round_over",
			Data: map[string]any{"round": e.State.Round, "money": e.State.Player.Money},
		}
		e.run(result, nil, []types.Event{over}, rules.Context{})
		if state.GameOver(e.State) {
			result.Output = append(result.Output, fmt.Sprintf(
				"Round %d is over. You have %d. Type 'new' to play another round.",
				e.State.Round, e.State.Player.Money))
		}
	}

	e.log.Info("prize credited",
		"round", e.State.Round,
		"spin", e.State.SpinCount,
		"segment", c.Segment.Name,
		"prize", c.Prize,
		"money", e.State.Player.Money,
	)
}

func (e *Engine) record(c wheel.Completion) {
	if e.recorder == nil {
		return
	}
	_, err := e.recorder.Record(context.Background(), ledger.Entry{
		WheelID:  c.WheelID,
		Round:    e.State.Round,
		Spin:     e.State.SpinCount,
		Index:    c.Index,
		Segment:  c.Segment.ID,
		Name:     c.Segment.Name,
		Prize:    c.Prize,
		Speed:    e.lastSpeed,
		Rotation: c.Rotation,
		Money:    e.State.Player.Money,
	})
	if err != nil {
		e.log.Warn("failed to record spin", "error", err)
	}
}

func (e *Engine) builtinSpin(intent types.Intent) ([]types.Event, []string) {
	if e.Wheel.Spinning() {
		return nil, []string{"The wheel is already spinning."}
	}
	if state.GameOver(e.State) || e.State.Player.SpinsLeft <= 0 {
		return nil, []string{"You have no spins left this round. Type 'new' to start another."}
	}
	if !e.Wheel.Valid() {
		return nil, []string{"The wheel has nothing to land on."}
	}

	var speed float64
	if arg := firstNonEmpty(intent.Object, intent.Target); arg != "" {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) {
			return nil, []string{"Spin speed must be a positive number of degrees per second."}
		}
		speed = v
	} else {
		r := e.Defs.SpinSpeed()
		speed = e.RNG.Range(r.Min, r.Max)
	}

	if !e.Wheel.Spin(speed) {
		return nil, []string{"The wheel won't budge."}
	}
	e.lastSpeed = speed
	e.State.Player.SpinsLeft--
	e.State.SpinCount++

	e.log.Debug("spin started", "speed", speed, "spins_left", e.State.Player.SpinsLeft)
	evt := types.Event{
		Type: "spin_started",
		Data: map[string]any{"speed": speed, "spins_left": e.State.Player.SpinsLeft},
	}
	return []types.Event{evt}, []string{fmt.Sprintf("The wheel spins at %.0f°/s...", speed)}
}

func (e *Engine) builtinWeight(intent types.Intent) ([]types.Effect, []string) {
	if intent.Object == "" || intent.Target == "" {
		return nil, []string{"Usage: weight <segment> to <weight>"}
	}
	w, err := strconv.ParseFloat(intent.Target, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return nil, []string{"Weight must be a number."}
	}
	idx, seg, msg := e.lookup(intent.Object)
	if msg != "" {
		return nil, []string{msg}
	}
	if w < wheel.MinWeight {
		w = wheel.MinWeight
	}

	out := []string{fmt.Sprintf("%s now has weight %s.", seg.Name, strconv.FormatFloat(w, 'f', -1, 64))}
	if e.Wheel.Spinning() {
		out = append(out, "The change applies from the next spin.")
	}
	eff := types.Effect{Type: "set_weight", Params: map[string]any{"segment": strconv.Itoa(idx + 1), "weight": w}}
	return []types.Effect{eff}, out
}

func (e *Engine) builtinAdd(intent types.Intent) ([]types.Effect, []string) {
	if intent.Object == "" || intent.Target == "" {
		return nil, []string{"Usage: add <name> for <prize> [at <weight>]"}
	}

	fields := strings.Fields(intent.Target)
	if len(fields) != 1 && (len(fields) != 3 || fields[1] != "at") {
		return nil, []string{"Usage: add <name> for <prize> [at <weight>]"}
	}
	prize, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, []string{"Prize must be a whole number."}
	}
	weight := 1.0
	if len(fields) == 3 {
		weight, err = strconv.ParseFloat(fields[2], 64)
		if err != nil || weight <= 0 {
			return nil, []string{"Weight must be a positive number."}
		}
	}

	name := titleCase(intent.Object)
	id := strings.ReplaceAll(strings.ToLower(intent.Object), " ", "_")
	for _, seg := range e.Wheel.Segments() {
		if seg.ID == id {
			return nil, []string{fmt.Sprintf("The wheel already has a segment called %q.", id)}
		}
	}
	eff := types.Effect{Type: "add_segment", Params: map[string]any{
		"id": id, "name": name, "prize": prize, "weight": weight,
	}}
	return []types.Effect{eff}, []string{fmt.Sprintf("Added %s (prize %d, weight %s).",
		name, prize, strconv.FormatFloat(weight, 'f', -1, 64))}
}

func (e *Engine) builtinRemove(intent types.Intent) ([]types.Effect, []string) {
	if intent.Object == "" {
		return nil, []string{"Usage: remove <segment>"}
	}
	idx, seg, msg := e.lookup(intent.Object)
	if msg != "" {
		return nil, []string{msg}
	}
	out := []string{fmt.Sprintf("Removed %s.", seg.Name)}
	if e.Wheel.Spinning() {
		out = append(out, "The change applies from the next spin.")
	}
	eff := types.Effect{Type: "remove_segment", Params: map[string]any{"segment": strconv.Itoa(idx + 1)}}
	return []types.Effect{eff}, out
}

func (e *Engine) builtinNewRound() ([]types.Event, []string) {
	if e.Wheel.Spinning() {
		return nil, []string{"Wait for the wheel to stop."}
	}
	if !state.GameOver(e.State) && e.State.Player.SpinsLeft > 0 {
		return nil, []string{fmt.Sprintf("You still have %d spin(s) left this round.", e.State.Player.SpinsLeft)}
	}
	state.StartRound(e.State, e.Defs)
	evt := types.Event{Type: "round_started", Data: map[string]any{"round": e.State.Round}}
	return []types.Event{evt}, []string{fmt.Sprintf("Round %d begins. You have %d spin(s).",
		e.State.Round, e.State.Player.SpinsLeft)}
}

// lookup resolves a segment reference, returning a player-facing message
// on failure.
func (e *Engine) lookup(ref string) (int, wheel.Segment, string) {
	segs := e.Wheel.Segments()
	idx, err := resolve.Segment(segs, ref)
	if err != nil {
		return -1, wheel.Segment{}, capitalize(err.Error()) + "."
	}
	return idx, segs[idx], ""
}

func (e *Engine) describeSegments() []string {
	segs := e.Wheel.Segments()
	if len(segs) == 0 {
		return []string{"The wheel has no segments."}
	}
	under := e.Wheel.PointerIndex()
	out := make([]string, len(segs))
	for i, seg := range segs {
		marker := "  "
		if i == under {
			marker = "▶ "
		}
		out[i] = fmt.Sprintf("%s%d. %s (prize %d, weight %s)", marker, i+1, seg.Name, seg.Prize,
			strconv.FormatFloat(seg.Weight, 'f', -1, 64))
	}
	return out
}

func (e *Engine) describeStatus() []string {
	s := e.State
	out := []string{
		fmt.Sprintf("Money: %d", s.Player.Money),
		fmt.Sprintf("Spins left: %d", s.Player.SpinsLeft),
		fmt.Sprintf("Round: %d", s.Round),
		fmt.Sprintf("Spins taken: %d", s.SpinCount),
	}
	if e.Wheel.Spinning() {
		out = append(out, fmt.Sprintf("The wheel is %s.", e.Wheel.Phase()))
	} else if state.GameOver(s) {
		out = append(out, "The round is over.")
	}
	return out
}

func helpText() []string {
	return []string{
		"Commands:",
		"  spin [speed] (s, go, pull)      Spin the wheel",
		"  weight <segment> to <w> (w)     Change a segment's weight",
		"  add <name> for <prize> [at <w>] Add a segment",
		"  remove <segment> (rm)           Remove a segment",
		"  odds (layout)                   Show landing chances",
		"  segments (list)                 List the segments",
		"  status (st)                     Show money, spins and round",
		"  new                             Start the next round",
		"Segments can be named by position, id or name.",
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

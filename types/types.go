// Package types defines the shared data structures for the SpinWheel game.
// This package contains only type definitions, no logic, no methods.
package types

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single command or tick.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
}

// Condition is a predicate that must be true for a handler to fire.
type Condition struct {
	Type   string         // "prize_at_least", "segment_is", "flag_set", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// EventHandler is a scripted reaction to a game event.
type EventHandler struct {
	EventType  string
	Conditions []Condition
	Effects    []Effect
}

// SegmentDef is the definition of one wheel segment.
type SegmentDef struct {
	ID     string
	Name   string
	Prize  int
	Weight float64
	Color  string
}

// WheelDef is the definition of the wheel the player spins.
type WheelDef struct {
	ID       string
	Name     string
	UUID     string // optional fixed identity
	Segments []SegmentDef
}

// SpeedRange bounds the random initial speed of a spin, in deg/s.
type SpeedRange struct {
	Min float64
	Max float64
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title         string
	Author        string
	Version       string
	Intro         string
	SpinsPerRound int
	StartMoney    int
	SpinSpeed     SpeedRange
}

// Player holds the player's runtime state.
type Player struct {
	Money     int
	SpinsLeft int
}

// State is the complete mutable game state.
type State struct {
	Player      Player
	Round       int
	SpinCount   int
	Flags       map[string]bool
	Counters    map[string]int
	RNGSeed     int64
	RNGPosition int64
	Rotation    float64
	CommandLog  []string
}

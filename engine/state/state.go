// Package state manages the mutable game state and the immutable
// definitions it was created from.
package state

import "github.com/nathoo/spinwheel/types"

// Default tuning used when the content leaves a field unset.
const (
	DefaultSpinsPerRound = 1
	DefaultMinSpeed      = 720.0
	DefaultMaxSpeed      = 1440.0
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game     types.GameDef
	Wheel    types.WheelDef
	Handlers []types.EventHandler
}

// SpinsPerRound returns the configured spins per round, defaulted.
func (d *Defs) SpinsPerRound() int {
	if d.Game.SpinsPerRound <= 0 {
		return DefaultSpinsPerRound
	}
	return d.Game.SpinsPerRound
}

// SpinSpeed returns the configured initial speed range, defaulted.
func (d *Defs) SpinSpeed() types.SpeedRange {
	r := d.Game.SpinSpeed
	if r.Min <= 0 && r.Max <= 0 {
		return types.SpeedRange{Min: DefaultMinSpeed, Max: DefaultMaxSpeed}
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// NewState creates a fresh game state from definitions: round 1 with a full
// allowance of spins.
func NewState(defs *Defs) *types.State {
	return &types.State{
		Player: types.Player{
			Money:     defs.Game.StartMoney,
			SpinsLeft: defs.SpinsPerRound(),
		},
		Round:      1,
		Flags:      map[string]bool{},
		Counters:   map[string]int{},
		CommandLog: []string{},
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}

// GameOver reports whether the current round has run out of spins.
func GameOver(s *types.State) bool {
	return GetFlag(s, "game_over")
}

// StartRound resets the spin allowance and clears the game-over flag.
// Money carries over between rounds.
func StartRound(s *types.State, defs *Defs) {
	s.Round++
	s.Player.SpinsLeft = defs.SpinsPerRound()
	s.Flags["game_over"] = false
}

// Package save implements JSON serialization and deserialization of player
// progress. The wheel's segment configuration is content, not progress, and
// is not saved.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/spinwheel/engine/state"
	"github.com/nathoo/spinwheel/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string          `json:"version"`
	Game        string          `json:"game"`
	Round       int             `json:"round"`
	SpinCount   int             `json:"spin_count"`
	Player      types.Player    `json:"player"`
	Flags       map[string]bool `json:"flags"`
	Counters    map[string]int  `json:"counters"`
	RNGSeed     int64           `json:"rng_seed"`
	RNGPosition int64           `json:"rng_position"`
	Rotation    float64         `json:"rotation"`
	CommandLog  []string        `json:"command_log"`
}

// Save serializes game state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:     defs.Game.Version,
		Game:        defs.Game.Title,
		Round:       s.Round,
		SpinCount:   s.SpinCount,
		Player:      s.Player,
		Flags:       s.Flags,
		Counters:    s.Counters,
		RNGSeed:     s.RNGSeed,
		RNGPosition: s.RNGPosition,
		Rotation:    s.Rotation,
		CommandLog:  s.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	// Ensure maps are never nil after load.
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	if sd.Counters == nil {
		sd.Counters = map[string]int{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	if sd.Round < 1 {
		sd.Round = 1
	}
	if sd.Player.SpinsLeft < 0 {
		sd.Player.SpinsLeft = 0
	}
	return &sd, nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.Player = sd.Player
	s.Round = sd.Round
	s.SpinCount = sd.SpinCount
	s.Flags = sd.Flags
	s.Counters = sd.Counters
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.Rotation = sd.Rotation
	s.CommandLog = sd.CommandLog
}

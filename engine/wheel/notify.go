package wheel

import "github.com/google/uuid"

// Completion is delivered once for every spin that runs to the end.
type Completion struct {
	WheelID  uuid.UUID
	Index    int
	Segment  Segment
	Prize    int
	Rotation float64
}

// Listener receives spin completions.
type Listener func(Completion)

type listeners []Listener

func (ls listeners) notify(c Completion) {
	for _, fn := range ls {
		fn(c)
	}
}

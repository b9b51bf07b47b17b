// Package wheel implements a weighted prize wheel: segment layout, a
// tick-driven spin state machine, pointer resolution and the settle onto
// the winning segment.
//
// A Wheel is not safe for concurrent use. It advances only when Tick is
// called, typically once per rendered frame.
package wheel

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// Phase is the spin state of a wheel.
type Phase int

const (
	Idle Phase = iota
	Decelerating
	Settling
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Decelerating:
		return "decelerating"
	case Settling:
		return "settling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Tuning constants.
const (
	// StopSpeed is the angular speed (deg/s) below which deceleration ends.
	StopSpeed = 10.0
	// SettleRate is the exponential smoothing rate of the settle phase.
	SettleRate = 10.0
	// SettleEpsilon is how close (deg) the settle must get before snapping.
	SettleEpsilon = 0.05
	// DecelerationTime is the divisor turning initial speed into deceleration.
	DecelerationTime = 3.0
)

// Options configures a Wheel.
type Options struct {
	ID     uuid.UUID // zero value picks a random id
	Logger *slog.Logger
}

// Wheel is a weighted prize wheel with a fixed pointer at the top.
type Wheel struct {
	SegmentSet

	id  uuid.UUID
	log *slog.Logger

	rotation float64
	phase    Phase
	speed    float64
	decel    float64

	// spin holds the segments as they were when the running spin started.
	spin     SegmentSet
	selected int
	target   float64

	listeners listeners
}

// New creates an idle wheel with the given segments in order.
func New(segs []Segment, opts Options) *Wheel {
	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Wheel{
		SegmentSet: NewSegmentSet(segs),
		id:         id,
		log:        logger.With("component", "wheel", "wheel", id.String()),
		selected:   -1,
	}
}

// ID returns the wheel identity carried by completions.
func (w *Wheel) ID() uuid.UUID { return w.id }

// Phase returns the current spin phase.
func (w *Wheel) Phase() Phase { return w.phase }

// Spinning reports whether a spin is in progress.
func (w *Wheel) Spinning() bool { return w.phase != Idle }

// Rotation returns the accumulated rotation in degrees.
func (w *Wheel) Rotation() float64 { return w.rotation }

// Speed returns the current angular speed while decelerating.
func (w *Wheel) Speed() float64 { return w.speed }

// Target returns the settle target; only meaningful while settling.
func (w *Wheel) Target() float64 { return w.target }

// Selected returns the locked winning index of the running spin.
func (w *Wheel) Selected() (int, bool) {
	if w.phase != Settling {
		return -1, false
	}
	return w.selected, true
}

// SetRotation moves an idle wheel to an absolute rotation. It is ignored
// while spinning.
func (w *Wheel) SetRotation(r float64) bool {
	if w.phase != Idle || math.IsNaN(r) || math.IsInf(r, 0) {
		return false
	}
	w.rotation = r
	return true
}

// PointerIndex returns the segment currently under the pointer, using the
// spin snapshot while spinning and the live layout otherwise. It returns -1
// when the layout is empty.
func (w *Wheel) PointerIndex() int {
	arcs := w.Layout()
	if w.phase != Idle {
		arcs = w.spin.Layout()
	}
	return Resolve(arcs, PointerAngle(w.rotation))
}

// OnSpinCompleted registers fn to be called after every completed spin.
func (w *Wheel) OnSpinCompleted(fn Listener) {
	w.listeners = append(w.listeners, fn)
}

// Spin starts a spin with the given initial angular speed in deg/s. The
// request is ignored while another spin is running or when the wheel has no
// positive weight. It reports whether the spin was accepted.
func (w *Wheel) Spin(initialSpeed float64) bool {
	if w.phase != Idle {
		w.log.Debug("spin request ignored", "phase", w.phase)
		return false
	}
	if !w.Valid() {
		w.log.Warn("spin refused: wheel has no positive weight", "segments", w.Len())
		return false
	}
	if math.IsNaN(initialSpeed) || math.IsInf(initialSpeed, 0) {
		return false
	}

	w.rotation = Normalize(w.rotation)
	w.spin = w.SegmentSet.clone()
	w.speed = initialSpeed
	w.decel = initialSpeed / DecelerationTime
	w.selected = -1
	w.target = 0
	w.phase = Decelerating

	w.log.Debug("spin accepted", "speed", initialSpeed, "rotation", w.rotation)
	return true
}

// Tick advances the wheel by dt seconds. Negative dt counts as zero.
func (w *Wheel) Tick(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	switch w.phase {
	case Decelerating:
		if w.speed > StopSpeed {
			w.rotation += w.speed * dt
			w.speed -= w.decel * dt
		}
		if w.speed <= StopSpeed {
			w.lock()
		}

	case Settling:
		w.rotation = lerp(w.rotation, w.target, SettleRate*dt)
		if math.Abs(w.rotation-w.target) < SettleEpsilon {
			w.finish()
		}
	}
}

// lock resolves the winning segment against the spin snapshot and computes
// the settle target.
func (w *Wheel) lock() {
	arcs := w.spin.Layout()
	idx := Resolve(arcs, PointerAngle(w.rotation))
	if idx < 0 {
		// Unreachable: Spin only accepts a valid layout.
		idx = 0
	}

	w.selected = idx
	w.target = SettleTarget(w.rotation, arcs[idx])
	w.speed = 0
	w.phase = Settling

	w.log.Debug("selection locked", "index", idx, "rotation", w.rotation, "target", w.target)
}

// finish snaps onto the target, returns to Idle and notifies listeners.
func (w *Wheel) finish() {
	w.rotation = w.target
	w.phase = Idle

	seg, _ := w.spin.Segment(w.selected)
	c := Completion{
		WheelID:  w.id,
		Index:    w.selected,
		Segment:  seg,
		Prize:    seg.Prize,
		Rotation: w.rotation,
	}
	w.spin = SegmentSet{}

	w.log.Info("spin completed", "segment", seg.Name, "prize", seg.Prize, "index", c.Index)
	w.listeners.notify(c)
}

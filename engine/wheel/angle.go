package wheel

import "math"

// pointerOffset places the pointer at 90° of the layout frame. Layout angles
// grow counter-clockwise from the local +x axis while rotation turns the
// wheel clockwise, so the pointer sees layout angle 450-rotation.
const pointerOffset = 450.0

// Normalize maps any angle in degrees into [0, 360).
func Normalize(angle float64) float64 {
	n := math.Mod(math.Mod(angle, 360)+360, 360)
	// Mod of a tiny negative value can round up to exactly 360.
	if n >= 360 {
		return 0
	}
	return n
}

// PointerAngle returns the layout-frame angle under the pointer after the
// wheel has turned by rotation degrees.
func PointerAngle(rotation float64) float64 {
	return Normalize(pointerOffset - Normalize(rotation))
}

// RotationFor is the inverse of PointerAngle: the normalized rotation that
// puts layout angle a under the pointer.
func RotationFor(a float64) float64 {
	return Normalize(pointerOffset - a)
}

// ShortestDelta returns the signed turn from one normalized angle to another,
// always within [-180, 180].
func ShortestDelta(from, to float64) float64 {
	delta := Normalize(to) - Normalize(from)
	if delta > 180 {
		delta -= 360
	}
	if delta < -180 {
		delta += 360
	}
	return delta
}

// Resolve returns the index of the arc containing pointerAngle. Arcs are
// half-open: [start, start+sweep). If floating error leaves the angle
// outside every arc, the last arc with a positive sweep wins. An empty
// layout resolves to -1.
func Resolve(arcs []Arc, pointerAngle float64) int {
	last := -1
	for i, a := range arcs {
		if a.Sweep <= 0 {
			continue
		}
		if pointerAngle >= a.Start && pointerAngle < a.Start+a.Sweep {
			return i
		}
		last = i
	}
	return last
}

// SettleTarget computes the absolute rotation that centres the pointer on
// arc, reached from rotation by the shorter way round.
func SettleTarget(rotation float64, arc Arc) float64 {
	desired := RotationFor(arc.Center())
	return rotation + ShortestDelta(Normalize(rotation), desired)
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}

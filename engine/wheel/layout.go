package wheel

// MinWeight is the floor SetWeight clamps to, so a reweighted segment never
// collapses to a zero-width slice.
const MinWeight = 0.1

// Segment is one weighted slice of the wheel.
type Segment struct {
	ID     string // stable key used by scripts; may be empty
	Name   string
	Prize  int
	Weight float64
	Color  string // passed through to renderers
}

// Arc is the angular extent of a segment in the layout frame, in degrees.
type Arc struct {
	Start float64
	Sweep float64
}

// End returns the exclusive upper bound of the arc.
func (a Arc) End() float64 { return a.Start + a.Sweep }

// Center returns the midpoint angle of the arc.
func (a Arc) Center() float64 { return a.Start + a.Sweep/2 }

// SegmentSet is the ordered segment collection and its derived layout.
// The layout is cached and rebuilt lazily after any mutation.
type SegmentSet struct {
	segments []Segment
	arcs     []Arc
	dirty    bool
}

// NewSegmentSet copies segs into a new set.
func NewSegmentSet(segs []Segment) SegmentSet {
	s := SegmentSet{dirty: true}
	s.segments = append(s.segments, segs...)
	return s
}

// Len returns the number of segments.
func (s *SegmentSet) Len() int { return len(s.segments) }

// Segment returns the segment at i.
func (s *SegmentSet) Segment(i int) (Segment, bool) {
	if i < 0 || i >= len(s.segments) {
		return Segment{}, false
	}
	return s.segments[i], true
}

// Segments returns a copy of the segments in layout order.
func (s *SegmentSet) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// TotalWeight sums the segment weights. Non-positive weights count as zero.
func (s *SegmentSet) TotalWeight() float64 {
	total := 0.0
	for _, seg := range s.segments {
		total += effectiveWeight(seg.Weight)
	}
	return total
}

// Valid reports whether the set can be laid out, i.e. has positive weight.
func (s *SegmentSet) Valid() bool {
	return s.TotalWeight() > 0
}

// Layout returns the arc of every segment in order. The first segment starts
// at 0° and each following one starts where the previous ended. The result
// is nil when the total weight is not positive.
func (s *SegmentSet) Layout() []Arc {
	if s.dirty {
		s.arcs = computeArcs(s.segments)
		s.dirty = false
	}
	if s.arcs == nil {
		return nil
	}
	out := make([]Arc, len(s.arcs))
	copy(out, s.arcs)
	return out
}

// AddSegment appends a segment at the end of the wheel.
func (s *SegmentSet) AddSegment(seg Segment) bool {
	s.segments = append(s.segments, seg)
	s.dirty = true
	return true
}

// RemoveSegment deletes the segment at i. Out-of-range indices are ignored.
func (s *SegmentSet) RemoveSegment(i int) bool {
	if i < 0 || i >= len(s.segments) {
		return false
	}
	s.segments = append(s.segments[:i], s.segments[i+1:]...)
	s.dirty = true
	return true
}

// SetWeight changes the weight of segment i, clamped to MinWeight.
// Out-of-range indices are ignored.
func (s *SegmentSet) SetWeight(i int, w float64) bool {
	if i < 0 || i >= len(s.segments) {
		return false
	}
	if w < MinWeight {
		w = MinWeight
	}
	s.segments[i].Weight = w
	s.dirty = true
	return true
}

// clone returns a deep copy with a fresh layout.
func (s *SegmentSet) clone() SegmentSet {
	c := NewSegmentSet(s.segments)
	c.Layout()
	return c
}

func computeArcs(segs []Segment) []Arc {
	total := 0.0
	for _, seg := range segs {
		total += effectiveWeight(seg.Weight)
	}
	if total <= 0 {
		return nil
	}

	arcs := make([]Arc, len(segs))
	angle := 0.0
	for i, seg := range segs {
		sweep := 360 * effectiveWeight(seg.Weight) / total
		arcs[i] = Arc{Start: angle, Sweep: sweep}
		angle += sweep
	}
	return arcs
}

func effectiveWeight(w float64) float64 {
	if w > 0 {
		return w
	}
	return 0
}

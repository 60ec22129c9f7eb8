package trace

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// GateKind distinguishes the two trigger volumes on a track.
type GateKind string

const (
	GateCheckpoint GateKind = "checkpoint"
	GateFinish     GateKind = "finish"
)

// Gate is a vertical plane through Center facing Normal, limited to
// HalfWidth either side of Center. Moving from behind the plane (negative
// side) to in front of it counts as a crossing.
type Gate struct {
	Kind      GateKind
	Center    r3.Vec
	Normal    r3.Vec
	HalfWidth float64
}

// crossed reports whether the segment a->b crosses the gate forwards.
func (g Gate) crossed(a, b r3.Vec) bool {
	da := r3.Dot(r3.Sub(a, g.Center), g.Normal)
	db := r3.Dot(r3.Sub(b, g.Center), g.Normal)
	if !(da < 0 && db >= 0) {
		return false
	}
	f := da / (da - db)
	hit := r3.Add(a, r3.Scale(f, r3.Sub(b, a)))
	off := r3.Sub(hit, g.Center)
	off = r3.Sub(off, r3.Scale(r3.Dot(off, g.Normal), g.Normal))
	return r3.Norm(off) <= g.HalfWidth
}

// minGateStep is the smallest horizontal move that defines a heading.
const minGateStep = 1e-3

// GatesFor places gates on a recorded path: the finish line through the first
// sample facing the direction of travel, and the checkpoint halfway along the
// first lap. The first lap ends at the first return across the finish line, or
// at the end of the trace when it never returns.
func GatesFor(tr *Trace, halfWidth float64) ([]Gate, error) {
	if tr == nil || len(tr.Samples) < 2 {
		return nil, fmt.Errorf("trace: need at least two samples to place gates")
	}
	if halfWidth <= 0 {
		return nil, fmt.Errorf("trace: gate half width must be positive, got %.2f", halfWidth)
	}
	start := tr.Samples[0].Pose.Position
	normal, ok := headingAt(tr.Samples, 0)
	if !ok {
		return nil, fmt.Errorf("trace: path never moves, cannot place gates")
	}
	finish := Gate{Kind: GateFinish, Center: start, Normal: normal, HalfWidth: halfWidth}

	end := len(tr.Samples) - 1
	for i := 1; i < len(tr.Samples); i++ {
		if finish.crossed(tr.Samples[i-1].Pose.Position, tr.Samples[i].Pose.Position) {
			end = i
			break
		}
	}
	dist := make([]float64, end+1)
	for i := 1; i <= end; i++ {
		dist[i] = dist[i-1] + r3.Norm(r3.Sub(tr.Samples[i].Pose.Position, tr.Samples[i-1].Pose.Position))
	}
	mid := sort.SearchFloat64s(dist, dist[end]/2)
	cpNormal, ok := headingAt(tr.Samples, mid)
	if !ok {
		return nil, fmt.Errorf("trace: no heading at checkpoint sample %d", mid)
	}
	checkpoint := Gate{Kind: GateCheckpoint, Center: tr.Samples[mid].Pose.Position, Normal: cpNormal, HalfWidth: halfWidth}
	return []Gate{finish, checkpoint}, nil
}

// headingAt is the unit horizontal direction of travel at sample i, looking
// ahead first and behind when the path stops.
func headingAt(samples []Sample, i int) (r3.Vec, bool) {
	at := samples[i].Pose.Position
	flat := func(d r3.Vec) (r3.Vec, bool) {
		d.Y = 0
		if n := r3.Norm(d); n > minGateStep {
			return r3.Scale(1/n, d), true
		}
		return r3.Vec{}, false
	}
	for j := i + 1; j < len(samples); j++ {
		if d, ok := flat(r3.Sub(samples[j].Pose.Position, at)); ok {
			return d, true
		}
	}
	for j := i - 1; j >= 0; j-- {
		if d, ok := flat(r3.Sub(at, samples[j].Pose.Position)); ok {
			return d, true
		}
	}
	return r3.Vec{}, false
}

// GateEvent is one gate crossing.
type GateEvent struct {
	Kind GateKind
	At   time.Duration
}

// Vehicle plays a trace as the live tracked entity. It implements
// ghost.PoseSource; Advance moves it along and reports gate crossings.
type Vehicle struct {
	trace *Trace
	gates []Gate
	t     time.Duration
	pose  ghost.Pose
}

var _ ghost.PoseSource = (*Vehicle)(nil)

// NewVehicle places a vehicle at the start of tr.
func NewVehicle(tr *Trace, gates ...Gate) *Vehicle {
	return &Vehicle{trace: tr, gates: gates, pose: tr.PoseAt(0)}
}

// Pose returns the current pose.
func (v *Vehicle) Pose() ghost.Pose { return v.pose }

// Elapsed is the trace time driven so far.
func (v *Vehicle) Elapsed() time.Duration { return v.t }

// Done reports whether the end of the trace has been reached.
func (v *Vehicle) Done() bool { return v.t >= v.trace.Duration() }

// Advance moves the vehicle forward by dt and returns the gates crossed on
// the way, in order. Every trace sample passed is checked so a long step
// cannot jump over a gate.
func (v *Vehicle) Advance(dt time.Duration) []GateEvent {
	if dt <= 0 || v.Done() {
		return nil
	}
	from, to := v.t, v.t+dt
	if end := v.trace.Duration(); to > end {
		to = end
	}

	var events []GateEvent
	prev := v.pose.Position
	check := func(at time.Duration, pos r3.Vec) {
		for _, g := range v.gates {
			if g.crossed(prev, pos) {
				events = append(events, GateEvent{Kind: g.Kind, At: at})
			}
		}
		prev = pos
	}
	samples := v.trace.Samples
	for i := sort.Search(len(samples), func(i int) bool { return samples[i].At > from }); i < len(samples) && samples[i].At < to; i++ {
		check(samples[i].At, samples[i].Pose.Position)
	}
	v.t = to
	v.pose = v.trace.PoseAt(to)
	check(to, v.pose.Position)
	return events
}

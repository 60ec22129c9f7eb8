package ghost

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a rigid-body transform snapshot taken at one sampling tick.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

func (p Pose) String() string {
	return fmt.Sprintf("pos=(%.3f, %.3f, %.3f) rot=(%.4f, %.4f, %.4f, %.4f)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Real, p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag)
}

// YawPose builds a pose at pos rotated yaw radians about the vertical (Y) axis.
func YawPose(pos r3.Vec, yaw float64) Pose {
	s, c := math.Sincos(yaw / 2)
	return Pose{Position: pos, Orientation: quat.Number{Real: c, Jmag: s}}
}

// Blend selects how orientations are blended between two samples.
type Blend string

const (
	// BlendSlerp interpolates along the shortest arc and renormalises.
	BlendSlerp Blend = "slerp"
	// BlendLinear blends quaternion components without renormalising.
	// Large rotation deltas drift off the unit sphere.
	BlendLinear Blend = "linear"
)

// ParseBlend maps a config string to a Blend. Empty selects BlendSlerp.
func ParseBlend(s string) (Blend, error) {
	switch Blend(s) {
	case "", BlendSlerp:
		return BlendSlerp, nil
	case BlendLinear:
		return BlendLinear, nil
	}
	return "", fmt.Errorf("ghost: unknown rotation blend %q", s)
}

// Interpolate blends from a to b by f. Positions are linearly interpolated and
// orientations follow blend. f is clamped to [0,1] and the end points are
// returned unchanged so sample boundaries replay losslessly.
func Interpolate(a, b Pose, f float64, blend Blend) Pose {
	if f <= 0 || math.IsNaN(f) {
		return a
	}
	if f >= 1 {
		return b
	}
	out := Pose{Position: lerpVec(a.Position, b.Position, f)}
	if blend == BlendLinear {
		out.Orientation = lerpQuat(a.Orientation, b.Orientation, f)
	} else {
		out.Orientation = slerp(a.Orientation, b.Orientation, f)
	}
	return out
}

func lerpVec(a, b r3.Vec, f float64) r3.Vec {
	return r3.Add(a, r3.Scale(f, r3.Sub(b, a)))
}

func lerpQuat(a, b quat.Number, f float64) quat.Number {
	return quat.Add(a, quat.Scale(f, quat.Sub(b, a)))
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// nearlyParallel is the cosine above which slerp degrades to normalised lerp.
const nearlyParallel = 0.9995

func slerp(a, b quat.Number, f float64) quat.Number {
	a = normalize(a)
	b = normalize(b)
	d := dot(a, b)
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}
	if d > nearlyParallel {
		return normalize(lerpQuat(a, b, f))
	}
	theta := math.Acos(d)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-f)*theta) / sinTheta
	wb := math.Sin(f*theta) / sinTheta
	return normalize(quat.Add(quat.Scale(wa, a), quat.Scale(wb, b)))
}

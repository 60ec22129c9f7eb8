package ghost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestInterpolate_EndpointsAreExact(t *testing.T) {
	a := YawPose(r3.Vec{X: 1.25, Y: 0.5, Z: -3}, 0.3)
	b := YawPose(r3.Vec{X: 7.5, Y: 0.75, Z: 2}, 2.9)

	for _, blend := range []Blend{BlendSlerp, BlendLinear} {
		assert.Equal(t, a, Interpolate(a, b, 0, blend), "f=0 with %s", blend)
		assert.Equal(t, b, Interpolate(a, b, 1, blend), "f=1 with %s", blend)
		assert.Equal(t, a, Interpolate(a, b, -0.5, blend), "f<0 clamps with %s", blend)
		assert.Equal(t, b, Interpolate(a, b, 1.5, blend), "f>1 clamps with %s", blend)
	}
}

func TestInterpolate_PositionIsLinear(t *testing.T) {
	a := Pose{Position: r3.Vec{X: 0, Y: 10, Z: -4}, Orientation: quat.Number{Real: 1}}
	b := Pose{Position: r3.Vec{X: 10, Y: 20, Z: 4}, Orientation: quat.Number{Real: 1}}

	mid := Interpolate(a, b, 0.25, BlendSlerp)
	assert.InDelta(t, 2.5, mid.Position.X, 1e-12)
	assert.InDelta(t, 12.5, mid.Position.Y, 1e-12)
	assert.InDelta(t, -2, mid.Position.Z, 1e-12)
}

func TestInterpolate_SlerpStaysUnit(t *testing.T) {
	a := YawPose(r3.Vec{}, 0)
	b := YawPose(r3.Vec{}, math.Pi*0.9)

	for _, f := range []float64{0.1, 0.33, 0.5, 0.77, 0.99} {
		q := Interpolate(a, b, f, BlendSlerp).Orientation
		assert.InDelta(t, 1, quat.Abs(q), 1e-12, "f=%v", f)
	}

	// Halfway between 0 and 0.9π about Y is a 0.45π yaw.
	want := YawPose(r3.Vec{}, math.Pi*0.45).Orientation
	got := Interpolate(a, b, 0.5, BlendSlerp).Orientation
	assert.InDelta(t, want.Real, got.Real, 1e-9)
	assert.InDelta(t, want.Jmag, got.Jmag, 1e-9)
}

func TestInterpolate_LinearDriftsOffUnitSphere(t *testing.T) {
	a := YawPose(r3.Vec{}, 0)
	b := YawPose(r3.Vec{}, math.Pi)

	q := Interpolate(a, b, 0.5, BlendLinear).Orientation
	assert.Less(t, quat.Abs(q), 0.99, "component lerp is not renormalised")
}

func TestInterpolate_SlerpTakesShortestPath(t *testing.T) {
	a := YawPose(r3.Vec{}, 0.1)
	b := YawPose(r3.Vec{}, 0.3)
	b.Orientation = quat.Scale(-1, b.Orientation) // same rotation, opposite hemisphere

	got := Interpolate(a, b, 0.5, BlendSlerp).Orientation
	want := YawPose(r3.Vec{}, 0.2).Orientation
	assert.InDelta(t, math.Abs(want.Real), math.Abs(got.Real), 1e-9)
	assert.InDelta(t, math.Abs(want.Jmag), math.Abs(got.Jmag), 1e-9)
}

func TestParseBlend(t *testing.T) {
	tests := []struct {
		in      string
		want    Blend
		wantErr bool
	}{
		{"", BlendSlerp, false},
		{"slerp", BlendSlerp, false},
		{"linear", BlendLinear, false},
		{"nlerp", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBlend(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIdentityPose(t *testing.T) {
	p := IdentityPose()
	assert.Equal(t, r3.Vec{}, p.Position)
	assert.InDelta(t, 1.0, quat.Abs(p.Orientation), 1e-15)
	assert.Contains(t, p.String(), "pos=(0.000, 0.000, 0.000)")
}

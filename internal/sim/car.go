package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// GhostCar is the pose sink standing in for the rendered ghost vehicle.
type GhostCar struct {
	Last     ghost.Pose
	Updates  int
	Released bool
}

// SetPose implements ghost.PoseSink.
func (c *GhostCar) SetPose(p ghost.Pose) {
	c.Last = p
	c.Updates++
}

// Release implements ghost.Releaser.
func (c *GhostCar) Release() {
	c.Released = true
	logf("ghost car released after %d updates", c.Updates)
}

// Distance is the length of the path sampled in the attempt's recording.
func (r *Result) Distance() float64 {
	if r.Recording == nil {
		return 0
	}
	var (
		total float64
		prev  r3.Vec
		have  bool
	)
	for lap := 0; lap < r.Recording.LapCount(); lap++ {
		for _, p := range r.Recording.Lap(lap) {
			if have {
				total += r3.Norm(r3.Sub(p.Position, prev))
			}
			prev, have = p.Position, true
		}
	}
	return total
}

// AverageSpeed is Distance over the recorded race time, in metres per second.
func (r *Result) AverageSpeed() float64 {
	if r.Total <= 0 {
		return 0
	}
	return r.Distance() / r.Total.Seconds()
}

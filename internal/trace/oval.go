package trace

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// OvalConfig describes a stadium-shaped track in the XZ plane: two straights
// of length Straight joined by semicircles of radius Radius. The start/finish
// line sits at the middle of the lower straight with cars heading +X.
type OvalConfig struct {
	Straight float64 // metres
	Radius   float64 // metres
	Speed    float64 // metres per second
	Laps     int
	// LapSpeeds scales Speed per lap; missing entries are 1.
	LapSpeeds []float64
	// Step is the trace resolution; zero means 5ms.
	Step time.Duration
	// Overrun drives this fraction of a lap past the final finish crossing.
	Overrun float64
}

// DefaultOval is a 500m oval driven at 25 m/s for three laps.
func DefaultOval() OvalConfig {
	return OvalConfig{Straight: 150, Radius: 100 / math.Pi, Speed: 25, Laps: 3, Overrun: 0.1}
}

// Perimeter is the length of one lap.
func (c OvalConfig) Perimeter() float64 {
	return 2*c.Straight + 2*math.Pi*c.Radius
}

// LapTime is the time a lap takes at the given lap's speed.
func (c OvalConfig) LapTime(lap int) time.Duration {
	return time.Duration(math.Round(c.Perimeter() / c.lapSpeed(lap) * float64(time.Second)))
}

func (c OvalConfig) lapSpeed(lap int) float64 {
	if lap >= 0 && lap < len(c.LapSpeeds) && c.LapSpeeds[lap] > 0 {
		return c.Speed * c.LapSpeeds[lap]
	}
	return c.Speed
}

// Gates returns the finish line and the checkpoint halfway round. Both span
// the track width either side of the centre line.
func (c OvalConfig) Gates() []Gate {
	halfWidth := c.Radius / 2
	return []Gate{
		{Kind: GateFinish, Center: r3.Vec{Z: -c.Radius}, Normal: r3.Vec{X: 1}, HalfWidth: halfWidth},
		{Kind: GateCheckpoint, Center: r3.Vec{Z: c.Radius}, Normal: r3.Vec{X: -1}, HalfWidth: halfWidth},
	}
}

// At returns the pose at arc length s from the start line.
func (c OvalConfig) At(s float64) ghost.Pose {
	p := c.Perimeter()
	s = math.Mod(s, p)
	if s < 0 {
		s += p
	}
	half := c.Straight / 2
	arc := math.Pi * c.Radius

	var pos, heading r3.Vec
	switch {
	case s < half:
		pos = r3.Vec{X: s, Z: -c.Radius}
		heading = r3.Vec{X: 1}
	case s < half+arc:
		th := -math.Pi/2 + (s-half)/c.Radius
		pos = r3.Vec{X: half + c.Radius*math.Cos(th), Z: c.Radius * math.Sin(th)}
		heading = r3.Vec{X: -math.Sin(th), Z: math.Cos(th)}
	case s < half+arc+c.Straight:
		pos = r3.Vec{X: half - (s - half - arc), Z: c.Radius}
		heading = r3.Vec{X: -1}
	case s < half+2*arc+c.Straight:
		th := math.Pi/2 + (s-half-arc-c.Straight)/c.Radius
		pos = r3.Vec{X: -half + c.Radius*math.Cos(th), Z: c.Radius * math.Sin(th)}
		heading = r3.Vec{X: -math.Sin(th), Z: math.Cos(th)}
	default:
		pos = r3.Vec{X: -half + (s - half - 2*arc - c.Straight), Z: -c.Radius}
		heading = r3.Vec{X: 1}
	}
	return ghost.YawPose(pos, math.Atan2(heading.X, heading.Z))
}

// Oval generates a trace driving cfg.Laps laps plus the overrun.
func Oval(cfg OvalConfig) (*Trace, error) {
	if cfg.Straight < 0 || cfg.Radius <= 0 {
		return nil, fmt.Errorf("trace: invalid oval geometry (straight %.1f, radius %.1f)", cfg.Straight, cfg.Radius)
	}
	if cfg.Speed <= 0 {
		return nil, fmt.Errorf("trace: speed must be positive, got %.2f", cfg.Speed)
	}
	if cfg.Laps < 1 {
		return nil, fmt.Errorf("trace: lap count must be at least 1, got %d", cfg.Laps)
	}
	step := cfg.Step
	if step <= 0 {
		step = 5 * time.Millisecond
	}

	perim := cfg.Perimeter()
	end := (float64(cfg.Laps) + math.Max(cfg.Overrun, 0)) * perim
	tr := &Trace{}
	var (
		s  float64
		at time.Duration
	)
	for {
		tr.Samples = append(tr.Samples, Sample{At: at, Pose: cfg.At(s)})
		if s >= end {
			break
		}
		s += cfg.lapSpeed(int(s/perim)) * step.Seconds()
		at += step
	}
	return tr, nil
}

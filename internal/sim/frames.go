package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/timeutil"
)

// Frames yields the delta time of each simulated frame.
type Frames interface {
	Next(ctx context.Context) (time.Duration, error)
}

// FixedFrames ticks by the same step every frame.
type FixedFrames time.Duration

// Next implements Frames.
func (f FixedFrames) Next(ctx context.Context) (time.Duration, error) {
	return time.Duration(f), ctx.Err()
}

// JitteredFrames varies each step uniformly by up to ±Jitter of Step, the way
// a real render loop drifts around its target rate.
type JitteredFrames struct {
	Step   time.Duration
	Jitter float64
	rng    *rand.Rand
}

// NewJitteredFrames returns deterministic jittered frames for seed.
func NewJitteredFrames(step time.Duration, jitter float64, seed uint64) *JitteredFrames {
	return &JitteredFrames{Step: step, Jitter: jitter, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next implements Frames.
func (f *JitteredFrames) Next(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	scale := 1 + f.Jitter*(2*f.rng.Float64()-1)
	if scale < 0 {
		scale = 0
	}
	return time.Duration(float64(f.Step) * scale), nil
}

// PacedFrames waits for a clock ticker and reports the measured time between
// frames.
type PacedFrames struct {
	ticker timeutil.Ticker
	timer  *timeutil.FrameTimer
}

// NewPacedFrames starts a ticker on clock firing every step. Measured deltas
// are capped at maxDelta.
func NewPacedFrames(clock timeutil.Clock, step, maxDelta time.Duration) (*PacedFrames, error) {
	if step <= 0 {
		return nil, fmt.Errorf("sim: frame step must be positive, got %s", step)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	p := &PacedFrames{
		ticker: clock.NewTicker(step),
		timer:  timeutil.NewFrameTimer(clock, maxDelta),
	}
	p.timer.Frame()
	return p, nil
}

// Next implements Frames.
func (p *PacedFrames) Next(ctx context.Context) (time.Duration, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-p.ticker.C():
		return p.timer.Frame(), nil
	}
}

// Stop releases the ticker.
func (p *PacedFrames) Stop() { p.ticker.Stop() }

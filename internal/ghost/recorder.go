package ghost

import "time"

// Recorder captures a tracked entity's pose once per sampling interval into
// the lap buffer named by the race's current lap.
type Recorder struct {
	race RaceState
	src  PoseSource
	rec  *Recording

	interval time.Duration
	elapsed  time.Duration
	samples  int
	done     bool
}

// NewRecorder validates its collaborators up front; a recorder without a pose
// source would silently produce empty buffers.
func NewRecorder(race RaceState, src PoseSource, rec *Recording) (*Recorder, error) {
	if isNil(race) {
		return nil, ErrMissingRaceState
	}
	if isNil(src) {
		return nil, ErrMissingPoseSource
	}
	if rec == nil {
		return nil, ErrMissingRecording
	}
	if rec.Sealed() {
		return nil, ErrSealed
	}
	return &Recorder{
		race:     race,
		src:      src,
		rec:      rec,
		interval: rec.Interval(),
	}, nil
}

// Tick advances the recorder by dt. Zero, one or several samples may be
// appended; all of them carry the pose read at this tick.
func (r *Recorder) Tick(dt time.Duration) {
	if r.done || dt <= 0 || !r.race.IsRaceActive() {
		return
	}
	lap := r.race.CurrentLap()
	if lap < 0 || lap >= r.rec.LapCount() || lap >= r.race.LapCount() {
		return
	}

	r.elapsed += dt
	if r.elapsed < r.interval {
		return
	}
	pose := r.src.Pose()
	for r.elapsed >= r.interval {
		r.elapsed -= r.interval
		if err := r.rec.Append(lap, pose); err != nil {
			logf("recorder append failed: %v", err)
			r.done = true
			return
		}
		r.samples++
	}
}

// Elapsed is the time carried over towards the next sample.
func (r *Recorder) Elapsed() time.Duration { return r.elapsed }

// Samples is the number of samples appended by this recorder.
func (r *Recorder) Samples() int { return r.samples }

// Recording returns the live recording, or nil after Finish.
func (r *Recorder) Recording() *Recording { return r.rec }

// Finish seals the live recording and hands ownership to the caller. The
// recorder is inert afterwards.
func (r *Recorder) Finish() *Recording {
	if r.done && r.rec == nil {
		return nil
	}
	rec := r.rec
	r.rec = nil
	r.done = true
	if rec != nil {
		rec.Seal()
		logf("recording for %q finished: %d samples over %d laps", rec.Track(), rec.TotalSamples(), rec.LapCount())
	}
	return rec
}

package ghost

import (
	"fmt"
	"time"
)

// Recording holds the pose history of one race attempt on one track, one
// append-only buffer per lap. It is sized once from the race's lap count and
// never grows extra laps.
type Recording struct {
	track    string
	interval time.Duration
	laps     [][]Pose
	sealed   bool
}

// NewRecording creates an empty recording with one buffer per lap.
func NewRecording(track string, laps int, interval time.Duration) (*Recording, error) {
	if laps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLapCount, laps)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}
	return &Recording{
		track:    track,
		interval: interval,
		laps:     make([][]Pose, laps),
	}, nil
}

// FromLaps builds a sealed recording from already captured lap buffers, as
// loaded back from persistent storage. The buffers are copied.
func FromLaps(track string, interval time.Duration, laps [][]Pose) (*Recording, error) {
	rec, err := NewRecording(track, len(laps), interval)
	if err != nil {
		return nil, err
	}
	for i, lap := range laps {
		rec.laps[i] = append([]Pose(nil), lap...)
	}
	rec.sealed = true
	return rec, nil
}

// Track returns the track identifier the recording belongs to.
func (r *Recording) Track() string { return r.track }

// Interval returns the sampling interval the recording was captured at.
func (r *Recording) Interval() time.Duration { return r.interval }

// LapCount returns the number of lap buffers.
func (r *Recording) LapCount() int { return len(r.laps) }

// Append adds p to the end of lap's buffer.
func (r *Recording) Append(lap int, p Pose) error {
	if r.sealed {
		return ErrSealed
	}
	if lap < 0 || lap >= len(r.laps) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrLapOutOfRange, lap, len(r.laps))
	}
	r.laps[lap] = append(r.laps[lap], p)
	return nil
}

// SampleAt returns the pose at the given lap and sample index.
func (r *Recording) SampleAt(lap, sample int) (Pose, error) {
	if lap < 0 || lap >= len(r.laps) {
		return Pose{}, fmt.Errorf("%w: %w: %d not in [0, %d)", ErrSampleOutOfRange, ErrLapOutOfRange, lap, len(r.laps))
	}
	buf := r.laps[lap]
	if sample < 0 || sample >= len(buf) {
		return Pose{}, fmt.Errorf("%w: lap %d sample %d not in [0, %d)", ErrSampleOutOfRange, lap, sample, len(buf))
	}
	return buf[sample], nil
}

// LapLength returns the number of samples captured for lap. Laps outside the
// recording report zero so readers can treat them as having no data.
func (r *Recording) LapLength(lap int) int {
	if lap < 0 || lap >= len(r.laps) {
		return 0
	}
	return len(r.laps[lap])
}

// TotalSamples returns the number of samples across every lap.
func (r *Recording) TotalSamples() int {
	n := 0
	for _, lap := range r.laps {
		n += len(lap)
	}
	return n
}

// Duration is the recorded time covered by all samples.
func (r *Recording) Duration() time.Duration {
	return time.Duration(r.TotalSamples()) * r.interval
}

// Lap returns a copy of one lap buffer.
func (r *Recording) Lap(lap int) []Pose {
	if lap < 0 || lap >= len(r.laps) {
		return nil
	}
	return append([]Pose(nil), r.laps[lap]...)
}

// Seal marks the recording immutable. Sealing is how a finished attempt is
// published as a best run; further appends fail with ErrSealed.
func (r *Recording) Seal() { r.sealed = true }

// Sealed reports whether the recording has been published.
func (r *Recording) Sealed() bool { return r.sealed }

// Clone returns an unsealed deep copy.
func (r *Recording) Clone() *Recording {
	out := &Recording{
		track:    r.track,
		interval: r.interval,
		laps:     make([][]Pose, len(r.laps)),
	}
	for i, lap := range r.laps {
		out.laps[i] = append([]Pose(nil), lap...)
	}
	return out
}

// firstSample returns the position of the earliest recorded sample.
func (r *Recording) firstSample() (lap int, ok bool) {
	for i, buf := range r.laps {
		if len(buf) > 0 {
			return i, true
		}
	}
	return 0, false
}

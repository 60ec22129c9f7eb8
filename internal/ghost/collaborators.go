package ghost

import "reflect"

// RaceState is the slice of race bookkeeping the recorder and player need.
// Lap indices are zero-based.
type RaceState interface {
	CurrentLap() int
	LapCount() int
	IsRaceActive() bool
}

// LapEvent describes a completed lap crossing.
type LapEvent struct {
	Lap     int // zero-based index of the lap just completed
	NextLap int
	Final   bool
}

// LapNotifier delivers lap-completed events. The returned func removes the
// subscription and is safe to call more than once.
type LapNotifier interface {
	OnLapCompleted(fn func(LapEvent)) (unsubscribe func())
}

// PoseSource is the tracked entity sampled by a Recorder.
type PoseSource interface {
	Pose() Pose
}

// PoseSink is the entity a Player drives.
type PoseSink interface {
	SetPose(Pose)
}

// Releaser is implemented by sinks that should be despawned once playback
// finishes.
type Releaser interface {
	Release()
}

// PoseSourceFunc adapts a function to PoseSource.
type PoseSourceFunc func() Pose

// Pose implements PoseSource.
func (f PoseSourceFunc) Pose() Pose { return f() }

// isNil reports whether v is nil or an interface holding a nil pointer, func,
// map, slice or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

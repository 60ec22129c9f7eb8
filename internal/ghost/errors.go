package ghost

import "errors"

var (
	// ErrMissingPoseSource is returned when a Recorder has nothing to sample.
	ErrMissingPoseSource = errors.New("ghost: pose source is required")
	// ErrMissingPoseSink is returned when a Player has nothing to drive.
	ErrMissingPoseSink = errors.New("ghost: pose sink is required")
	// ErrMissingRaceState is returned when no race state collaborator is supplied.
	ErrMissingRaceState = errors.New("ghost: race state is required")
	// ErrMissingRecording is returned when a Recorder has no buffer to write.
	ErrMissingRecording = errors.New("ghost: recording is required")
	// ErrInvalidInterval is returned for a non-positive sampling interval.
	ErrInvalidInterval = errors.New("ghost: sampling interval must be positive")
	// ErrInvalidLapCount is returned when a recording is sized to fewer than one lap.
	ErrInvalidLapCount = errors.New("ghost: lap count must be at least 1")

	// ErrLapOutOfRange reports a lap index outside the recording.
	ErrLapOutOfRange = errors.New("ghost: lap index out of range")
	// ErrSampleOutOfRange reports a sample index outside a lap buffer.
	ErrSampleOutOfRange = errors.New("ghost: sample index out of range")
	// ErrSealed is returned when appending to a published recording.
	ErrSealed = errors.New("ghost: recording is sealed")

	// ErrNotReady is returned by Player.Start while no recorded sample exists.
	ErrNotReady = errors.New("ghost: no recorded samples to play yet")
)

// Package ghost records a moving body's pose at a fixed sampling interval and
// replays those samples onto a second body.
//
// Everything here is driven by a single simulation tick: the Recorder appends
// samples into per-lap buffers of a Recording and the Player walks a cursor
// over a Recording, blending between consecutive samples to hide frame-rate
// mismatches between the recording and the replay. No type in this package is
// safe for concurrent mutation; a sealed Recording may be read from any number
// of goroutines.
package ghost

import "github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"

var logf = monitoring.Component("ghost")

// Package ghostlog reads and writes ghost recordings, either as a single
// binary stream (used for database blobs) or as a log directory holding a
// JSON header next to the binary lap data.
package ghostlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// Magic prefixes every encoded recording.
var Magic = [4]byte{'G', 'H', 'S', 'T'}

// Version is the current binary format version.
const Version uint16 = 1

// Limits applied when decoding untrusted input.
const (
	maxTrackLen = 1 << 10
	maxLaps     = 1 << 10
	maxSamples  = 1 << 24

	// allocChunk caps the up-front sample allocation per lap.
	allocChunk = 4096
)

// ErrBadMagic is returned when the input is not a ghost recording.
var ErrBadMagic = errors.New("ghostlog: bad magic")

// ErrUnsupportedVersion is returned for a format version this package cannot read.
var ErrUnsupportedVersion = errors.New("ghostlog: unsupported version")

// Encode writes rec to w.
//
// Layout (little endian):
//
//	magic[4] version:u16 trackLen:u16 track intervalNs:i64 laps:u32
//	per lap: samples:u32 then samples * 7 float64 (px py pz qw qx qy qz)
func Encode(w io.Writer, rec *ghost.Recording) error {
	if rec == nil {
		return ghost.ErrMissingRecording
	}
	bw := bufio.NewWriter(w)
	track := rec.Track()
	if len(track) > maxTrackLen {
		return fmt.Errorf("ghostlog: track name too long (%d bytes)", len(track))
	}

	hdr := []any{Magic, Version, uint16(len(track))}
	for _, v := range hdr {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if _, err := bw.WriteString(track); err != nil {
		return fmt.Errorf("failed to write track: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, int64(rec.Interval())); err != nil {
		return fmt.Errorf("failed to write interval: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(rec.LapCount())); err != nil {
		return fmt.Errorf("failed to write lap count: %w", err)
	}

	var buf [7 * 8]byte
	for lap := 0; lap < rec.LapCount(); lap++ {
		poses := rec.Lap(lap)
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(poses))); err != nil {
			return fmt.Errorf("failed to write lap %d length: %w", lap, err)
		}
		for _, p := range poses {
			putPose(buf[:], p)
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("failed to write lap %d: %w", lap, err)
			}
		}
	}
	return bw.Flush()
}

// Decode reads a recording written by Encode. The result is sealed.
func Decode(r io.Reader) (*ghost.Recording, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != Magic {
		return nil, ErrBadMagic
	}
	var version, trackLen uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err := binary.Read(br, binary.LittleEndian, &trackLen); err != nil {
		return nil, fmt.Errorf("failed to read track length: %w", err)
	}
	if trackLen > maxTrackLen {
		return nil, fmt.Errorf("ghostlog: track name too long (%d bytes)", trackLen)
	}
	track := make([]byte, trackLen)
	if _, err := io.ReadFull(br, track); err != nil {
		return nil, fmt.Errorf("failed to read track: %w", err)
	}
	var intervalNs int64
	if err := binary.Read(br, binary.LittleEndian, &intervalNs); err != nil {
		return nil, fmt.Errorf("failed to read interval: %w", err)
	}
	var lapCount uint32
	if err := binary.Read(br, binary.LittleEndian, &lapCount); err != nil {
		return nil, fmt.Errorf("failed to read lap count: %w", err)
	}
	if lapCount > maxLaps {
		return nil, fmt.Errorf("ghostlog: too many laps (%d)", lapCount)
	}

	laps := make([][]ghost.Pose, lapCount)
	var buf [7 * 8]byte
	for lap := range laps {
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read lap %d length: %w", lap, err)
		}
		if n > maxSamples {
			return nil, fmt.Errorf("ghostlog: lap %d too long (%d samples)", lap, n)
		}
		// The count is untrusted; grow as samples actually arrive.
		poses := make([]ghost.Pose, 0, min(int(n), allocChunk))
		for i := 0; i < int(n); i++ {
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				return nil, fmt.Errorf("failed to read lap %d sample %d: %w", lap, i, err)
			}
			poses = append(poses, getPose(buf[:]))
		}
		laps[lap] = poses
	}

	return ghost.FromLaps(string(track), time.Duration(intervalNs), laps)
}

func putPose(b []byte, p ghost.Pose) {
	vals := [7]float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Real, p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
}

func getPose(b []byte) ghost.Pose {
	f := func(i int) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:])) }
	return ghost.Pose{
		Position:    r3.Vec{X: f(0), Y: f(1), Z: f(2)},
		Orientation: quat.Number{Real: f(3), Imag: f(4), Jmag: f(5), Kmag: f(6)},
	}
}

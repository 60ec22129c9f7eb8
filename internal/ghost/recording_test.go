package ghost

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewRecording_Validation(t *testing.T) {
	_, err := NewRecording("t", 0, time.Second)
	assert.ErrorIs(t, err, ErrInvalidLapCount)

	_, err = NewRecording("t", 3, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	rec, err := NewRecording("oval", 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "oval", rec.Track())
	assert.Equal(t, 3, rec.LapCount())
	assert.Equal(t, 10*time.Millisecond, rec.Interval())
	assert.Zero(t, rec.TotalSamples())
}

func TestRecording_AppendAndRead(t *testing.T) {
	rec := linearRecording(t, 100*time.Millisecond, 3, 2)

	assert.Equal(t, 3, rec.LapLength(0))
	assert.Equal(t, 2, rec.LapLength(1))
	assert.Equal(t, 5, rec.TotalSamples())
	assert.Equal(t, 500*time.Millisecond, rec.Duration())

	p, err := rec.SampleAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Position.X)
}

func TestRecording_AppendOutOfRange(t *testing.T) {
	rec, err := NewRecording("t", 2, time.Second)
	require.NoError(t, err)

	for _, lap := range []int{-1, 2, 10} {
		err := rec.Append(lap, IdentityPose())
		assert.ErrorIs(t, err, ErrLapOutOfRange, "lap %d", lap)
	}
	assert.Zero(t, rec.TotalSamples(), "failed appends must not mutate")
}

func TestRecording_SampleAtOutOfRange(t *testing.T) {
	rec := linearRecording(t, time.Second, 2, 0)

	tests := []struct {
		name        string
		lap, sample int
		lapErr      bool
	}{
		{"negative lap", -1, 0, true},
		{"lap past end", 2, 0, true},
		{"negative sample", 0, -1, false},
		{"sample past end", 0, 2, false},
		{"empty lap", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.SampleAt(tt.lap, tt.sample)
			require.ErrorIs(t, err, ErrSampleOutOfRange)
			assert.Equal(t, tt.lapErr, errors.Is(err, ErrLapOutOfRange))
		})
	}
}

func TestRecording_LapLengthOutsideRangeIsZero(t *testing.T) {
	rec := linearRecording(t, time.Second, 4)
	assert.Zero(t, rec.LapLength(-1))
	assert.Zero(t, rec.LapLength(1))
	assert.Nil(t, rec.Lap(3))
}

func TestRecording_SealBlocksAppend(t *testing.T) {
	rec := linearRecording(t, time.Second, 1)
	rec.Seal()
	assert.True(t, rec.Sealed())
	assert.ErrorIs(t, rec.Append(0, IdentityPose()), ErrSealed)
	assert.Equal(t, 1, rec.TotalSamples())
}

func TestRecording_CloneIsIndependent(t *testing.T) {
	rec := linearRecording(t, time.Second, 2, 1)
	rec.Seal()

	clone := rec.Clone()
	assert.False(t, clone.Sealed())
	require.NoError(t, clone.Append(1, YawPose(r3.Vec{X: 99}, 0)))

	assert.Equal(t, 1, rec.LapLength(1))
	assert.Equal(t, 2, clone.LapLength(1))
	if diff := cmp.Diff(rec.Lap(0), clone.Lap(0)); diff != "" {
		t.Errorf("lap 0 mismatch (-orig +clone):\n%s", diff)
	}
}

func TestFromLaps(t *testing.T) {
	laps := [][]Pose{
		{YawPose(r3.Vec{X: 1}, 0), YawPose(r3.Vec{X: 2}, 0)},
		nil,
	}
	rec, err := FromLaps("loaded", 20*time.Millisecond, laps)
	require.NoError(t, err)
	assert.True(t, rec.Sealed())
	assert.Equal(t, 2, rec.LapCount())
	assert.Equal(t, 2, rec.LapLength(0))
	assert.Zero(t, rec.LapLength(1))

	laps[0][0] = IdentityPose()
	p, err := rec.SampleAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Position.X, "FromLaps must copy its input")

	_, err = FromLaps("none", time.Second, nil)
	assert.ErrorIs(t, err, ErrInvalidLapCount)
}

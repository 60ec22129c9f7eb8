package ghost

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const step = 100 * time.Millisecond

func newTestPlayer(t *testing.T, laps int, src Source) (*Player, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	p, err := NewPlayer(&fakeRace{laps: laps, active: true}, sink, src, PlayerConfig{Interval: step})
	require.NoError(t, err)
	return p, sink
}

func TestNewPlayer_SetupErrors(t *testing.T) {
	_, err := NewPlayer(nil, &recordingSink{}, Source{}, PlayerConfig{})
	assert.ErrorIs(t, err, ErrMissingRaceState)

	_, err = NewPlayer(&fakeRace{laps: 1}, nil, Source{}, PlayerConfig{})
	assert.ErrorIs(t, err, ErrMissingPoseSink)

	_, err = NewPlayer(&fakeRace{laps: 1}, (*recordingSink)(nil), Source{}, PlayerConfig{})
	assert.ErrorIs(t, err, ErrMissingPoseSink, "nil pointer")

	_, err = NewPlayer((*fakeRace)(nil), &recordingSink{}, Source{}, PlayerConfig{})
	assert.ErrorIs(t, err, ErrMissingRaceState, "nil pointer")
}

func TestSource_Select(t *testing.T) {
	best := linearRecording(t, step, 3)
	emptyBest := linearRecording(t, step, 0)
	live := linearRecording(t, step, 1)

	assert.Same(t, best, Source{Best: best, Live: live}.Select())
	assert.Same(t, live, Source{Best: emptyBest, Live: live}.Select())
	assert.Same(t, live, Source{Live: live}.Select())
	assert.Nil(t, Source{}.Select())
}

func TestPlayer_StartNotReady(t *testing.T) {
	live := linearRecording(t, step, 0, 0)
	p, sink := newTestPlayer(t, 2, Source{Live: live})

	assert.ErrorIs(t, p.Start(), ErrNotReady)
	assert.Equal(t, PlayerNotStarted, p.State())
	assert.Empty(t, sink.poses)

	p.Tick(time.Second)
	assert.Equal(t, PlayerNotStarted, p.State(), "ticks without a start request stay inert")
	assert.Empty(t, sink.poses)
}

func TestPlayer_RequestStartWaitsForLiveSample(t *testing.T) {
	live, err := NewRecording("live", 1, step)
	require.NoError(t, err)
	p, sink := newTestPlayer(t, 1, Source{Live: live})

	p.RequestStart()
	assert.Equal(t, PlayerNotStarted, p.State())

	p.Tick(step)
	assert.Equal(t, PlayerNotStarted, p.State())

	require.NoError(t, live.Append(0, YawPose(r3.Vec{X: 42}, 0)))
	p.Tick(step)
	assert.Equal(t, PlayerPlaying, p.State())
	require.NotEmpty(t, sink.poses)
	assert.Equal(t, 42.0, sink.poses[0].Position.X)
}

func TestPlayer_StartSnapsToFirstSample(t *testing.T) {
	rec := linearRecording(t, step, 4)
	p, sink := newTestPlayer(t, 1, Source{Best: rec})

	require.NoError(t, p.Start())
	assert.Equal(t, PlayerPlaying, p.State())
	require.Len(t, sink.poses, 1)
	first, _ := rec.SampleAt(0, 0)
	assert.Equal(t, first, sink.poses[0])
	assert.Equal(t, Cursor{}, p.Cursor())
	assert.Same(t, rec, p.Recording())

	require.NoError(t, p.Start(), "starting twice is harmless")
	assert.Len(t, sink.poses, 1)
}

func TestPlayer_StartSkipsLeadingEmptyLaps(t *testing.T) {
	rec := linearRecording(t, step, 0, 3)
	p, sink := newTestPlayer(t, 2, Source{Best: rec})

	require.NoError(t, p.Start())
	assert.Equal(t, 1, p.Cursor().Lap)
	assert.Equal(t, 0.0, sink.last().Position.X)
}

func TestPlayer_ZeroTickIsIdempotent(t *testing.T) {
	rec := linearRecording(t, step, 10)
	p, sink := newTestPlayer(t, 1, Source{Best: rec})
	require.NoError(t, p.Start())
	p.Tick(250 * time.Millisecond)
	before := p.Cursor()
	pose := sink.last()

	for i := 0; i < 5; i++ {
		p.Tick(0)
	}
	assert.Equal(t, before, p.Cursor())
	assert.Equal(t, pose, sink.last())
}

func TestPlayer_InterpolatesBetweenSamples(t *testing.T) {
	rec := linearRecording(t, step, 5)
	p, sink := newTestPlayer(t, 1, Source{Best: rec})
	require.NoError(t, p.Start())

	p.Tick(25 * time.Millisecond)
	assert.InDelta(t, 0.25, sink.last().Position.X, 1e-12)
	assert.InDelta(t, 0.25, p.Cursor().Fraction, 1e-12)

	p.Tick(100 * time.Millisecond)
	assert.Equal(t, 1, p.Cursor().Sample)
	assert.InDelta(t, 1.25, sink.last().Position.X, 1e-12)
}

func TestPlayer_LongTickCatchesUp(t *testing.T) {
	rec := linearRecording(t, step, 10)
	p, sink := newTestPlayer(t, 1, Source{Best: rec})
	require.NoError(t, p.Start())

	p.Tick(370 * time.Millisecond)
	c := p.Cursor()
	assert.Equal(t, 3, c.Sample)
	assert.InDelta(t, 0.7, c.Fraction, 1e-12)
	assert.InDelta(t, 3.7, sink.last().Position.X, 1e-12)
}

func TestPlayer_InterpolatesAcrossLapBoundary(t *testing.T) {
	rec := linearRecording(t, step, 3, 3)
	p, sink := newTestPlayer(t, 2, Source{Best: rec})
	require.NoError(t, p.Start())

	p.Tick(2*step + 50*time.Millisecond)
	assert.Equal(t, Cursor{Lap: 0, Sample: 2, Fraction: 0.5}, p.Cursor())
	assert.InDelta(t, 2.5, sink.last().Position.X, 1e-12, "last sample of lap 0 blends into lap 1")

	p.Tick(50 * time.Millisecond)
	assert.Equal(t, 1, p.Cursor().Lap)
	assert.Equal(t, 0, p.Cursor().Sample)
	assert.Equal(t, 3.0, sink.last().Position.X)
}

func TestPlayer_ShortRecordingFinishesWithoutFault(t *testing.T) {
	// Two configured laps, only lap 0 was ever recorded.
	rec := linearRecording(t, step, 5)
	p, sink := newTestPlayer(t, 2, Source{Best: rec})
	require.NoError(t, p.Start())

	for i := 0; i < 4; i++ {
		p.Tick(step)
		assert.Equal(t, PlayerPlaying, p.State())
	}
	assert.Equal(t, 4, p.Cursor().Sample)

	p.Tick(step)
	assert.Equal(t, PlayerFinished, p.State())
	assert.True(t, sink.released)

	n := len(sink.poses)
	p.Tick(time.Second)
	assert.Len(t, sink.poses, n, "finished player stops driving the sink")
}

func TestPlayer_EmptyTrailingLapFinishes(t *testing.T) {
	rec := linearRecording(t, step, 5, 0)
	p, sink := newTestPlayer(t, 2, Source{Best: rec})
	require.NoError(t, p.Start())

	p.Tick(10 * step)
	assert.Equal(t, PlayerFinished, p.State())
	assert.True(t, sink.released)
}

func TestPlayer_CursorStaysInRange(t *testing.T) {
	rec := linearRecording(t, step, 7, 2, 5)
	p, _ := newTestPlayer(t, 3, Source{Best: rec})
	require.NoError(t, p.Start())

	ticks := []time.Duration{13, 170, 45, 2, 333, 90, 61, 250, 17, 410}
	for i := 0; p.State() == PlayerPlaying && i < 1000; i++ {
		p.Tick(ticks[i%len(ticks)] * time.Millisecond)
		if p.State() != PlayerPlaying {
			break
		}
		c := p.Cursor()
		require.GreaterOrEqual(t, c.Sample, 0)
		require.Less(t, c.Sample, rec.LapLength(c.Lap), "cursor %+v", c)
		require.GreaterOrEqual(t, c.Fraction, 0.0)
		require.Less(t, c.Fraction, 1.0)
	}
	assert.Equal(t, PlayerFinished, p.State())
}

func TestPlayer_UsesRecordingInterval(t *testing.T) {
	rec := linearRecording(t, 50*time.Millisecond, 10)
	p, _ := newTestPlayer(t, 1, Source{Best: rec})
	require.NoError(t, p.Start())

	p.Tick(step)
	assert.Equal(t, 2, p.Cursor().Sample)
}

func TestPlayer_StopAbandonsInPlace(t *testing.T) {
	rec := linearRecording(t, step, 10)
	p, sink := newTestPlayer(t, 1, Source{Best: rec})
	require.NoError(t, p.Start())
	p.Tick(150 * time.Millisecond)
	n := len(sink.poses)

	p.Stop()
	assert.Equal(t, PlayerFinished, p.State())
	assert.False(t, sink.released)
	p.Tick(step)
	assert.Len(t, sink.poses, n)
}

func TestRecordThenReplay_RoundTrip(t *testing.T) {
	const samples = 20
	race := &fakeRace{laps: 1, active: true}
	rec, err := NewRecording("round-trip", 1, step)
	require.NoError(t, err)
	body := &movingBody{speed: 12.5}
	r, err := NewRecorder(race, body, rec)
	require.NoError(t, err)

	for i := 0; i < samples; i++ {
		body.advance(step)
		r.Tick(step)
	}
	best := r.Finish()
	require.Equal(t, samples, best.TotalSamples())

	sink := &recordingSink{}
	p, err := NewPlayer(race, sink, Source{Best: best}, PlayerConfig{})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	for p.State() == PlayerPlaying {
		p.Tick(step)
	}

	var want, got []r3.Vec
	for _, pose := range best.Lap(0) {
		want = append(want, pose.Position)
	}
	for _, pose := range sink.poses {
		got = append(got, pose.Position)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("replayed positions mismatch (-recorded +replayed):\n%s", diff)
	}
}

func TestLiveGhost_RacesCurrentRecording(t *testing.T) {
	race := &fakeRace{laps: 2, active: true}
	live, err := NewRecording("self", 2, step)
	require.NoError(t, err)
	body := &movingBody{speed: 1}
	r, err := NewRecorder(race, body, live)
	require.NoError(t, err)

	sink := &recordingSink{}
	p, err := NewPlayer(race, sink, Source{Live: live}, PlayerConfig{})
	require.NoError(t, err)
	p.RequestStart()

	for i := 0; i < 30; i++ {
		if i == 15 {
			race.lap = 1
		}
		body.advance(step)
		r.Tick(step)
		p.Tick(step)
	}
	assert.Equal(t, PlayerPlaying, p.State())
	assert.NotEmpty(t, sink.poses)
}

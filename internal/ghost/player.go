package ghost

import "time"

// PlayerState represents the lifecycle state of a Player.
type PlayerState string

const (
	PlayerNotStarted PlayerState = "not_started"
	PlayerPlaying    PlayerState = "playing"
	PlayerFinished   PlayerState = "finished"
)

// Cursor is the player's read position: the most recently reached sample and
// the blend progress towards the one after it.
type Cursor struct {
	Lap      int
	Sample   int
	Fraction float64
}

// Source names the recordings a player may replay.
type Source struct {
	// Best is a persisted best run. It must not be mutated once handed over.
	Best *Recording
	// Live is the recording currently being written for this attempt.
	Live *Recording
}

// Select prefers a best run with at least one sample over the live recording.
func (s Source) Select() *Recording {
	if s.Best != nil && s.Best.TotalSamples() > 0 {
		return s.Best
	}
	return s.Live
}

// PlayerConfig holds playback parameters.
type PlayerConfig struct {
	// Interval is used when the selected recording carries none.
	Interval time.Duration
	Blend    Blend
}

// Player drives a PoseSink through a recording, independent of the tick rate.
type Player struct {
	race RaceState
	sink PoseSink
	src  Source
	cfg  PlayerConfig

	state          PlayerState
	startRequested bool

	rec      *Recording
	interval time.Duration
	elapsed  time.Duration
	lap      int
	sample   int
}

// NewPlayer creates a player in the NotStarted state.
func NewPlayer(race RaceState, sink PoseSink, src Source, cfg PlayerConfig) (*Player, error) {
	if isNil(race) {
		return nil, ErrMissingRaceState
	}
	if isNil(sink) {
		return nil, ErrMissingPoseSink
	}
	if cfg.Blend == "" {
		cfg.Blend = BlendSlerp
	}
	return &Player{
		race:  race,
		sink:  sink,
		src:   src,
		cfg:   cfg,
		state: PlayerNotStarted,
	}, nil
}

// State returns the current lifecycle state.
func (p *Player) State() PlayerState { return p.state }

// Recording returns the recording being replayed, nil before Start succeeds.
func (p *Player) Recording() *Recording { return p.rec }

// Cursor returns the current read position.
func (p *Player) Cursor() Cursor {
	c := Cursor{Lap: p.lap, Sample: p.sample}
	if p.interval > 0 {
		c.Fraction = clamp01(float64(p.elapsed) / float64(p.interval))
	}
	return c
}

// Start begins playback. With no recorded sample available it returns
// ErrNotReady and the player stays NotStarted.
func (p *Player) Start() error {
	if p.state != PlayerNotStarted {
		return nil
	}
	rec := p.src.Select()
	if rec == nil {
		return ErrNotReady
	}
	lap, ok := rec.firstSample()
	if !ok || lap >= p.race.LapCount() {
		return ErrNotReady
	}
	interval := rec.Interval()
	if interval <= 0 {
		interval = p.cfg.Interval
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	p.rec = rec
	p.interval = interval
	p.elapsed = 0
	p.lap = lap
	p.sample = 0
	p.state = PlayerPlaying
	p.startRequested = false

	first, _ := rec.SampleAt(lap, 0)
	p.sink.SetPose(first)
	logf("playback started on %q (%d samples, interval %s)", rec.Track(), rec.TotalSamples(), interval)
	return nil
}

// RequestStart arms a deferred start. Each Tick retries Start until a sample
// is available, which covers racing against the recording still being made.
func (p *Player) RequestStart() {
	if p.state != PlayerNotStarted {
		return
	}
	if err := p.Start(); err != nil {
		p.startRequested = true
	}
}

// Stop abandons playback where it is. The sink keeps its last pose and is not
// released.
func (p *Player) Stop() {
	p.startRequested = false
	if p.state == PlayerPlaying {
		p.state = PlayerFinished
	}
}

// Tick advances playback by dt and updates the sink.
func (p *Player) Tick(dt time.Duration) {
	if p.state == PlayerNotStarted && p.startRequested {
		// A deferred start only snaps; this tick's time predates the first sample.
		_ = p.Start()
		return
	}
	if p.state != PlayerPlaying || dt < 0 {
		return
	}

	p.elapsed += dt
	if whole := int(p.elapsed / p.interval); whole > 0 {
		p.elapsed -= time.Duration(whole) * p.interval
		p.advance(whole)
		if p.state != PlayerPlaying {
			return
		}
	}

	cur, next := p.window()
	p.sink.SetPose(Interpolate(cur, next, float64(p.elapsed)/float64(p.interval), p.cfg.Blend))
}

// advance moves the cursor by n whole samples. Crossing the end of a lap
// resets to the first sample of the next lap with data.
func (p *Player) advance(n int) {
	p.sample += n
	if p.sample < p.rec.LapLength(p.lap) {
		return
	}
	p.sample = 0
	p.lap++
	for p.lap < p.race.LapCount() && p.rec.LapLength(p.lap) == 0 {
		p.lap++
	}
	if p.lap >= p.race.LapCount() {
		p.finish()
	}
}

// window returns the cursor sample and the sample after it. The first sample
// of the next lap with data follows the last sample of a lap; at the very end
// the cursor sample is held.
func (p *Player) window() (cur, next Pose) {
	cur, _ = p.rec.SampleAt(p.lap, p.sample)
	if p.sample+1 < p.rec.LapLength(p.lap) {
		next, _ = p.rec.SampleAt(p.lap, p.sample+1)
		return cur, next
	}
	for lap := p.lap + 1; lap < p.race.LapCount(); lap++ {
		if p.rec.LapLength(lap) > 0 {
			next, _ = p.rec.SampleAt(lap, 0)
			return cur, next
		}
	}
	return cur, cur
}

func (p *Player) finish() {
	p.state = PlayerFinished
	p.elapsed = 0
	if r, ok := p.sink.(Releaser); ok {
		r.Release()
	}
	if p.rec != nil {
		logf("playback of %q finished", p.rec.Track())
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

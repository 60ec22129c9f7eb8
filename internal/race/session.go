// Package race tracks the state of a single race attempt: countdown, lap
// crossings gated by a checkpoint, per-lap timing and lap-completed
// notifications. A Session satisfies ghost.RaceState and ghost.LapNotifier so
// recorders and players receive it by injection.
package race

import (
	"fmt"
	"sort"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
)

var logf = monitoring.Component("race")

// State is the lifecycle state of a race session.
type State string

const (
	StateMenu      State = "menu"      // not started
	StateCountdown State = "countdown" // start lights, nothing recorded yet
	StateRacing    State = "racing"
	StateFinished  State = "finished"
)

// DefaultCountdown matches the five-step start sequence.
const DefaultCountdown = 5 * time.Second

// Config configures one race attempt.
type Config struct {
	Track     string
	Laps      int
	Countdown time.Duration // zero uses DefaultCountdown; negative skips it
}

// Session is a tick-driven race attempt. It is not safe for concurrent use.
type Session struct {
	cfg Config

	state         State
	countdownLeft time.Duration
	currentLap    int
	lapTimes      []time.Duration
	lapTime       time.Duration
	armed         bool

	nextID      int
	lapSubs     map[int]func(ghost.LapEvent)
	stateSubs   map[int]func(from, to State)
	lastCallout int
}

// NewSession validates cfg and returns a session in StateMenu.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Laps < 1 {
		return nil, fmt.Errorf("race: lap count must be at least 1, got %d", cfg.Laps)
	}
	if cfg.Countdown == 0 {
		cfg.Countdown = DefaultCountdown
	}
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	return &Session{
		cfg:       cfg,
		state:     StateMenu,
		lapTimes:  make([]time.Duration, cfg.Laps),
		lapSubs:   make(map[int]func(ghost.LapEvent)),
		stateSubs: make(map[int]func(from, to State)),
	}, nil
}

// Track returns the configured track identifier.
func (s *Session) Track() string { return s.cfg.Track }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// CurrentLap returns the zero-based lap being driven. After the final lap it
// equals LapCount.
func (s *Session) CurrentLap() int { return s.currentLap }

// LapCount returns the configured number of laps.
func (s *Session) LapCount() int { return s.cfg.Laps }

// IsRaceActive reports whether the race clock is running.
func (s *Session) IsRaceActive() bool { return s.state == StateRacing }

// CurrentLapTime is the time spent on the lap in progress.
func (s *Session) CurrentLapTime() time.Duration { return s.lapTime }

// Start begins the countdown. It is a no-op unless the session is in the menu.
func (s *Session) Start() {
	if s.state != StateMenu {
		return
	}
	s.countdownLeft = s.cfg.Countdown
	s.lastCallout = -1
	s.setState(StateCountdown)
	if s.countdownLeft == 0 {
		s.setState(StateRacing)
	}
}

// Tick advances the countdown or the lap clock by dt.
func (s *Session) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	switch s.state {
	case StateCountdown:
		s.countdownLeft -= dt
		if secs := int((s.countdownLeft + time.Second - 1) / time.Second); secs > 0 && secs != s.lastCallout && secs <= 3 {
			s.lastCallout = secs
			logf("%d..", secs)
		}
		if s.countdownLeft <= 0 {
			// Time past the lights counts towards the first lap.
			s.lapTime = -s.countdownLeft
			s.countdownLeft = 0
			logf("GO!")
			s.setState(StateRacing)
		}
	case StateRacing:
		s.lapTime += dt
	}
}

// PassCheckpoint arms the finish line so the next crossing counts as a lap.
func (s *Session) PassCheckpoint() {
	if s.state == StateRacing {
		s.armed = true
	}
}

// CrossFinishLine completes a lap if a checkpoint was passed since the last
// crossing. It reports whether a lap was completed.
func (s *Session) CrossFinishLine() bool {
	if s.state != StateRacing || !s.armed {
		return false
	}
	s.armed = false
	s.CompleteLap()
	return true
}

// CompleteLap records the current lap time and moves to the next lap. The
// final lap finishes the race.
func (s *Session) CompleteLap() {
	if s.state != StateRacing {
		return
	}
	lap := s.currentLap
	s.lapTimes[lap] = s.lapTime
	logf("lap %d/%d: %s", lap+1, s.cfg.Laps, FormatLapTime(s.lapTime))
	s.currentLap++
	s.lapTime = 0

	final := s.currentLap >= s.cfg.Laps
	if s.currentLap == s.cfg.Laps-1 {
		logf("LAST LAP!")
	}
	s.notifyLap(ghost.LapEvent{Lap: lap, NextLap: s.currentLap, Final: final})
	if final {
		s.setState(StateFinished)
	}
}

// Abort ends the race early; completed laps are kept.
func (s *Session) Abort() {
	if s.state == StateCountdown || s.state == StateRacing {
		s.setState(StateFinished)
	}
}

// OnLapCompleted registers fn for lap-completed events. Call the returned
// func to unsubscribe.
func (s *Session) OnLapCompleted(fn func(ghost.LapEvent)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.lapSubs[id] = fn
	return func() { delete(s.lapSubs, id) }
}

// OnStateChange registers fn for state transitions.
func (s *Session) OnStateChange(fn func(from, to State)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.stateSubs[id] = fn
	return func() { delete(s.stateSubs, id) }
}

func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	for _, id := range sortedKeys(s.stateSubs) {
		if fn, ok := s.stateSubs[id]; ok {
			fn(from, to)
		}
	}
}

func (s *Session) notifyLap(ev ghost.LapEvent) {
	for _, id := range sortedKeys(s.lapSubs) {
		if fn, ok := s.lapSubs[id]; ok {
			fn(ev)
		}
	}
}

// sortedKeys yields subscribers in registration order. Handlers may
// unsubscribe themselves while being notified.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

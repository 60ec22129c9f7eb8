// Package sim drives complete race attempts frame by frame: a race session,
// a vehicle following a trace, the ghost recorder sampling it and a ghost
// player racing the best run. Finished attempts are folded into the high
// score table.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/db"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/highscore"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/trace"
)

var logf = monitoring.Component("sim")

// ErrTraceEnded is returned when the trace runs out before the last lap.
var ErrTraceEnded = errors.New("sim: trace ended before the race finished")

// DefaultMaxFrames bounds a single attempt.
const DefaultMaxFrames = 1 << 22

// ResultRecorder keeps a history of finished attempts.
type ResultRecorder interface {
	RecordRaceResult(r db.RaceResult) error
}

// Config holds the per-attempt settings shared by a Runner.
type Config struct {
	Race     race.Config
	Interval time.Duration
	Player   ghost.PlayerConfig

	GhostEnabled bool
	// FallbackLive races the recording being made when no best run exists.
	FallbackLive bool
	MaxFrames    int
}

// Attempt is one driver going round a track.
type Attempt struct {
	Driver string
	Trace  *trace.Trace
	Gates  []trace.Gate
}

// Result summarises a finished attempt.
type Result struct {
	RunID      string
	Track      string
	Driver     string
	Completed  bool
	LapTimes   []time.Duration
	FastestLap time.Duration
	Total      time.Duration
	Frames     int

	// Recording is the attempt's sealed recording. When the attempt set a new
	// fastest total it is also the published best ghost.
	Recording *ghost.Recording
	Ghost     *GhostCar
	Outcome   highscore.Outcome
}

// Runner runs attempts against a high score table.
type Runner struct {
	cfg     Config
	table   *highscore.Table
	results ResultRecorder
}

// NewRunner returns a Runner. results may be nil.
func NewRunner(cfg Config, table *highscore.Table, results ResultRecorder) (*Runner, error) {
	if table == nil {
		return nil, fmt.Errorf("sim: high score table is required")
	}
	if cfg.Race.Track == "" {
		return nil, fmt.Errorf("sim: track is required")
	}
	if cfg.Interval <= 0 {
		return nil, ghost.ErrInvalidInterval
	}
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = DefaultMaxFrames
	}
	return &Runner{cfg: cfg, table: table, results: results}, nil
}

// Run drives one attempt to the end of the race. An attempt whose trace runs
// out is aborted and reported with ErrTraceEnded alongside its partial result;
// only completed attempts update the high score table.
func (r *Runner) Run(ctx context.Context, att Attempt, frames Frames) (*Result, error) {
	if att.Trace == nil || len(att.Trace.Samples) == 0 {
		return nil, fmt.Errorf("sim: attempt has no trace")
	}
	session, err := race.NewSession(r.cfg.Race)
	if err != nil {
		return nil, err
	}
	live, err := ghost.NewRecording(session.Track(), session.LapCount(), r.cfg.Interval)
	if err != nil {
		return nil, err
	}
	vehicle := trace.NewVehicle(att.Trace, att.Gates...)
	recorder, err := ghost.NewRecorder(session, vehicle, live)
	if err != nil {
		return nil, err
	}

	car := &GhostCar{}
	player, err := r.newPlayer(session, car, live)
	if err != nil {
		return nil, err
	}
	if player != nil {
		unsubscribe := session.OnStateChange(func(_, to race.State) {
			if to == race.StateRacing {
				player.RequestStart()
			}
		})
		defer unsubscribe()
	}

	res := &Result{RunID: uuid.NewString(), Track: session.Track(), Driver: att.Driver, Ghost: car}
	session.Start()

	var runErr error
	for session.State() != race.StateFinished {
		if res.Frames >= r.cfg.MaxFrames {
			runErr = fmt.Errorf("sim: attempt exceeded %d frames", r.cfg.MaxFrames)
			break
		}
		dt, err := frames.Next(ctx)
		if err != nil {
			runErr = err
			break
		}
		res.Frames++
		r.step(session, vehicle, recorder, player, dt)

		if vehicle.Done() && session.State() != race.StateFinished {
			runErr = ErrTraceEnded
			break
		}
	}
	if runErr != nil {
		session.Abort()
	}
	if player != nil {
		player.Stop()
	}

	res.Recording = recorder.Finish()
	res.LapTimes = session.LapTimes()
	res.FastestLap = session.FastestLap()
	res.Total = session.TotalTime()
	res.Completed = len(res.LapTimes) == session.LapCount()
	logf("attempt %s on %q: %d/%d laps in %s after %d frames", res.RunID, res.Track,
		len(res.LapTimes), session.LapCount(), race.FormatLapTime(res.Total), res.Frames)

	if !res.Completed {
		return res, runErr
	}
	if err := r.finish(res); err != nil {
		return res, err
	}
	return res, nil
}

// step advances every participant by one frame. The vehicle only moves while
// the race clock runs, so on the frame the lights go green it covers just the
// time past the countdown.
func (r *Runner) step(session *race.Session, vehicle *trace.Vehicle, recorder *ghost.Recorder, player *ghost.Player, dt time.Duration) {
	wasRacing := session.IsRaceActive()
	session.Tick(dt)
	if !session.IsRaceActive() {
		if player != nil {
			player.Tick(dt)
		}
		return
	}

	move := dt
	if !wasRacing {
		move = session.CurrentLapTime()
	}
	// Sample before gate events so the crossing frame lands on the lap it ends.
	recorder.Tick(move)
	for _, ev := range vehicle.Advance(move) {
		switch ev.Kind {
		case trace.GateCheckpoint:
			session.PassCheckpoint()
		case trace.GateFinish:
			session.CrossFinishLine()
		}
	}
	if player != nil {
		player.Tick(move)
	}
}

func (r *Runner) newPlayer(session *race.Session, car *GhostCar, live *ghost.Recording) (*ghost.Player, error) {
	if !r.cfg.GhostEnabled {
		return nil, nil
	}
	best, err := r.table.BestGhost(session.Track())
	if err != nil {
		return nil, err
	}
	src := ghost.Source{Best: best}
	if r.cfg.FallbackLive {
		src.Live = live
	}
	if src.Select() == nil {
		return nil, nil
	}
	cfg := r.cfg.Player
	if cfg.Interval <= 0 {
		cfg.Interval = r.cfg.Interval
	}
	return ghost.NewPlayer(session, car, src, cfg)
}

func (r *Runner) finish(res *Result) error {
	out, err := r.table.Update(highscore.Result{
		Track:      res.Track,
		Driver:     res.Driver,
		RunID:      res.RunID,
		FastestLap: res.FastestLap,
		Total:      res.Total,
		Ghost:      res.Recording,
	})
	if err != nil {
		return fmt.Errorf("failed to update high scores: %w", err)
	}
	res.Outcome = out

	if r.results == nil {
		return nil
	}
	err = r.results.RecordRaceResult(db.RaceResult{
		RunID:      res.RunID,
		Track:      res.Track,
		Driver:     res.Driver,
		FastestLap: res.FastestLap,
		Total:      res.Total,
		LapTimes:   res.LapTimes,
	})
	if err != nil {
		return fmt.Errorf("failed to record race result: %w", err)
	}
	return nil
}

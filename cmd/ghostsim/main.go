// Command ghostsim runs simulated race attempts against the ghost of the best
// run on a track and keeps the high score table up to date.
//
// Usage:
//
//	go run ./cmd/ghostsim [flags]
//
// Each attempt drives an oval (or a recorded CSV trace, with its finish line
// on the first sample) with slightly varied lap speeds, records it, races the
// current best ghost and folds the result into the track records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/config"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/db"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghostlog"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghostplot"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/highscore"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/sim"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/timeutil"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/trace"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/units"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/version"
)

func main() {
	environ, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	track := flag.String("track", "oval", "Track identifier")
	attempts := flag.Int("attempts", 3, "Number of attempts to run")
	driver := flag.String("driver", environ.Driver, "Driver name recorded with results")
	csvPath := flag.String("csv", "", "Drive a recorded CSV trace instead of the synthetic oval")
	mode := flag.String("mode", "fixed", "Frame pacing: fixed, jitter or realtime")
	tick := flag.Duration("tick", 11*time.Millisecond, "Frame step")
	jitter := flag.Float64("jitter", 0.3, "Frame step variation for -mode jitter")
	spread := flag.Float64("spread", 0.05, "Per-lap speed variation for the oval")
	gateWidth := flag.Float64("gate-width", 20, "Gate half width in metres for a CSV trace")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	dbPath := flag.String("db", environ.DBPath, "SQLite database path")
	memory := flag.Bool("memory", false, "Keep records in memory only")
	configPath := flag.String("config", environ.ConfigPath, "Ghost config JSON file")
	exportDir := flag.String("export", "", "Directory to write each attempt's ghost log into")
	plotPath := flag.String("plot", "", "PNG path for a top-down plot of the best and latest runs")
	quiet := flag.Bool("quiet", environ.Quiet, "Suppress component logging")
	speedUnits := flag.String("units", "kph", "Speed units for reports: mps, kph or mph")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("ghostsim"))
		return
	}
	speed, err := units.ParseSpeed(*speedUnits)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if *quiet {
		monitoring.SetLogger(nil)
	}
	if *attempts < 1 {
		log.Fatalf("Error: -attempts must be at least 1")
	}

	environ.ConfigPath = *configPath
	cfg, err := environ.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		store   highscore.Store
		results sim.ResultRecorder
	)
	if *memory {
		store = highscore.NewMemoryStore()
	} else {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()
		store = db.NewHighScoreStore(database)
		results = database
		log.Printf("Using database %s", database.Path())
	}
	table := highscore.NewTable(store)

	runner, err := sim.NewRunner(sim.Config{
		Race:         cfg.RaceConfig(*track),
		Interval:     cfg.GetSamplingInterval(),
		Player:       cfg.PlayerConfig(),
		GhostEnabled: cfg.GetGhostEnabled(),
		FallbackLive: cfg.GetGhostFallbackLive(),
	}, table, results)
	if err != nil {
		log.Fatalf("Failed to set up runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewPCG(*seed, *seed+1))
	oval := trace.DefaultOval()
	oval.Laps = cfg.GetLapCount()

	var recorded *trace.Trace
	if *csvPath != "" {
		recorded, err = trace.LoadCSV(*csvPath)
		if err != nil {
			log.Fatalf("Failed to load trace: %v", err)
		}
		log.Printf("Loaded %d samples (%s) from %s", len(recorded.Samples), recorded.Duration(), *csvPath)
	}
	gates, err := attemptGates(recorded, oval, *gateWidth)
	if err != nil {
		log.Fatalf("Failed to place gates: %v", err)
	}

	var last *sim.Result
	for i := 0; i < *attempts; i++ {
		att := sim.Attempt{Driver: *driver, Trace: recorded, Gates: gates}
		if recorded == nil {
			att.Trace, err = trace.Oval(varyLaps(oval, rng, *spread))
			if err != nil {
				log.Fatalf("Failed to build oval: %v", err)
			}
		}

		frames, cleanup, err := newFrames(*mode, *tick, *jitter, rng.Uint64())
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		res, err := runner.Run(ctx, att, frames)
		cleanup()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("Interrupted")
				break
			}
			log.Fatalf("Attempt %d failed: %v", i+1, err)
		}
		last = res
		report(i+1, res, speed)

		if *exportDir != "" {
			dir := filepath.Join(*exportDir, fmt.Sprintf("%s_%s%s", res.Track, res.RunID, ghostlog.DirExtension))
			if _, err := ghostlog.Write(dir, res.Recording, res.RunID); err != nil {
				log.Fatalf("Failed to export ghost log: %v", err)
			}
			log.Printf("✓ Exported: %s", dir)
		}
	}

	if *plotPath != "" && last != nil {
		best, err := table.BestGhost(*track)
		if err != nil {
			log.Fatalf("Failed to load best ghost: %v", err)
		}
		err = ghostplot.RenderPaths(*plotPath, "Ghost paths: "+*track,
			ghostplot.Series{Name: "best", Recording: best},
			ghostplot.Series{Name: "latest", Recording: last.Recording},
		)
		if err != nil {
			log.Fatalf("Failed to render plot: %v", err)
		}
		log.Printf("✓ Created: %s", *plotPath)
	}
}

// attemptGates returns the oval's gates, or gates placed along a recorded
// trace when one is given.
func attemptGates(recorded *trace.Trace, oval trace.OvalConfig, halfWidth float64) ([]trace.Gate, error) {
	if recorded == nil {
		return oval.Gates(), nil
	}
	return trace.GatesFor(recorded, halfWidth)
}

// varyLaps scales each lap's speed by up to ±spread.
func varyLaps(cfg trace.OvalConfig, rng *rand.Rand, spread float64) trace.OvalConfig {
	cfg.LapSpeeds = make([]float64, cfg.Laps)
	for i := range cfg.LapSpeeds {
		cfg.LapSpeeds[i] = 1 + spread*(2*rng.Float64()-1)
	}
	return cfg
}

func newFrames(mode string, tick time.Duration, jitter float64, seed uint64) (sim.Frames, func(), error) {
	switch mode {
	case "fixed":
		return sim.FixedFrames(tick), func() {}, nil
	case "jitter":
		return sim.NewJitteredFrames(tick, jitter, seed), func() {}, nil
	case "realtime":
		p, err := sim.NewPacedFrames(timeutil.RealClock{}, tick, 10*tick)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Stop, nil
	default:
		return nil, nil, fmt.Errorf("unknown -mode %q (want fixed, jitter or realtime)", mode)
	}
}

func report(n int, res *sim.Result, speed units.Speed) {
	log.Printf("Attempt %d (%s): total %s, fastest lap %s, average %s",
		n, res.Driver, race.FormatLapTime(res.Total), race.FormatLapTime(res.FastestLap), speed.Format(res.AverageSpeed()))
	for i, lap := range res.LapTimes {
		log.Printf("  lap %d: %s", i+1, race.FormatLapTime(lap))
	}
	switch {
	case res.Outcome.NewFastestTotal:
		log.Printf("  ★ new track record (was %s)", race.FormatLapTime(res.Outcome.PreviousTotal.Time))
	case res.Outcome.NewFastestLap:
		log.Printf("  ★ new fastest lap (was %s)", race.FormatLapTime(res.Outcome.PreviousLap.Time))
	}
	if stats := res.Outcome.Stats; stats != nil {
		log.Printf("  record %s by %s, play time %s",
			race.FormatLapTime(stats.FastestTotal.Time), stats.FastestTotal.Driver, stats.TotalPlayTime.Round(time.Second))
	}
}

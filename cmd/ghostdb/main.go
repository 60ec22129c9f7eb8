// Command ghostdb inspects and maintains the ghost lap database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/config"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/db"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghostlog"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/highscore"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/version"
)

func main() {
	environ, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	dbPath := flag.String("db", environ.DBPath, "SQLite database path")
	flag.Usage = printUsage
	flag.Parse()

	if environ.Quiet {
		monitoring.SetLogger(nil)
	}
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "migrate":
		db.RunMigrateCommand(args, *dbPath)
	case "tracks":
		handleTracks(*dbPath)
	case "results":
		handleResults(*dbPath, args)
	case "export":
		handleExport(*dbPath, args)
	case "version":
		fmt.Println(version.String("ghostdb"))
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ghostdb - ghost lap database tool

Usage: ghostdb [-db path] <command> [args]

Commands:
  migrate <action>          Manage schema migrations (see 'ghostdb migrate help')
  tracks                    List track records
  results <track> [limit]   List recent race results for a track
  export <track> [dir]      Write the track's best ghost as a ghost log directory
  version                   Show build version
  help                      Show this help message

Environment:
  GHOSTLAP_DB_PATH          Default database path (default: ghostlap.db)`)
}

func openStore(path string) (*db.DB, *highscore.Table) {
	database, err := db.NewDB(path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return database, highscore.NewTable(db.NewHighScoreStore(database))
}

func handleTracks(path string) {
	database, table := openStore(path)
	defer database.Close()

	tracks, err := table.Tracks()
	if err != nil {
		log.Fatalf("Failed to list tracks: %v", err)
	}
	if len(tracks) == 0 {
		fmt.Println("No tracks recorded yet")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tFASTEST TOTAL\tFASTEST LAP\tPLAY TIME\tGHOST")
	for _, track := range tracks {
		stats, err := table.GetOrCreate(track)
		if err != nil {
			log.Fatalf("Failed to load %q: %v", track, err)
		}
		ghostInfo := "-"
		if stats.Ghost != nil {
			ghostInfo = fmt.Sprintf("%s (%d samples)", stats.GhostRunID, stats.Ghost.TotalSamples())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			track,
			formatEntry(stats.FastestTotal),
			formatEntry(stats.FastestLap),
			stats.TotalPlayTime.Round(time.Second),
			ghostInfo,
		)
	}
	w.Flush()
}

func formatEntry(e highscore.Entry) string {
	if !e.IsSet() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", race.FormatLapTime(e.Time), e.Driver)
}

func handleResults(path string, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: ghostdb results <track> [limit]")
	}
	limit := 20
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			log.Fatalf("Invalid limit %q", args[1])
		}
		limit = n
	}

	database, _ := openStore(path)
	defer database.Close()

	results, err := database.RaceResults(args[0], limit)
	if err != nil {
		log.Fatalf("Failed to load results: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tDRIVER\tTOTAL\tFASTEST LAP\tLAPS\tRUN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.FinishedAt.Local().Format(time.DateTime),
			r.Driver,
			race.FormatLapTime(r.Total),
			race.FormatLapTime(r.FastestLap),
			len(r.LapTimes),
			r.RunID,
		)
	}
	w.Flush()
}

func handleExport(path string, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: ghostdb export <track> [dir]")
	}
	track := args[0]
	dir := ""
	if len(args) > 1 {
		dir = args[1]
	}

	database, table := openStore(path)
	defer database.Close()

	stats, err := table.GetOrCreate(track)
	if err != nil {
		log.Fatalf("Failed to load %q: %v", track, err)
	}
	if stats.Ghost == nil {
		log.Fatalf("No ghost recorded for %q", track)
	}
	out, err := ghostlog.Write(dir, stats.Ghost, stats.GhostRunID)
	if err != nil {
		log.Fatalf("Failed to export ghost: %v", err)
	}
	log.Printf("✓ Exported %d samples to %s", stats.Ghost.TotalSamples(), out)
}

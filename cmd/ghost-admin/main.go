// Command ghost-admin serves the ghost lap admin pages: per-track lap charts,
// a JSON record listing and the SQL debugger.
package main

import (
	"flag"
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/config"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/db"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghostplot"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/highscore"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/httputil"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/monitoring"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/version"
)

func main() {
	environ, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	addr := flag.String("addr", environ.AdminAddr, "Listen address")
	dbPath := flag.String("db", environ.DBPath, "SQLite database path")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("ghost-admin"))
		return
	}

	if environ.Quiet {
		monitoring.SetLogger(nil)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	mux := http.NewServeMux()
	database.AttachAdminRoutes(mux)
	newAdmin(database).register(mux)

	log.Printf("Admin server listening on http://%s (database %s)", *addr, database.Path())
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

type admin struct {
	db    *db.DB
	table *highscore.Table
}

func newAdmin(database *db.DB) *admin {
	return &admin{db: database, table: highscore.NewTable(db.NewHighScoreStore(database))}
}

func (a *admin) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /tracks", a.handleTracks)
	mux.HandleFunc("GET /laps", a.handleLaps)
}

func (a *admin) handleIndex(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.table.Tracks()
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html><title>Ghost laps</title><h1>Tracks</h1><ul>")
	for _, t := range tracks {
		fmt.Fprintf(w, `<li><a href="/laps?track=%s">%s</a></li>`, html.EscapeString(t), html.EscapeString(t))
	}
	fmt.Fprint(w, `</ul><p><a href="/tracks">JSON</a> | <a href="/debug/tailsql/">SQL</a></p>`)
}

type trackSummary struct {
	Track         string `json:"track"`
	FastestTotal  string `json:"fastest_total,omitempty"`
	TotalDriver   string `json:"fastest_total_driver,omitempty"`
	FastestLap    string `json:"fastest_lap,omitempty"`
	LapDriver     string `json:"fastest_lap_driver,omitempty"`
	TotalPlayTime string `json:"total_play_time"`
	GhostRunID    string `json:"ghost_run_id,omitempty"`
	GhostSamples  int    `json:"ghost_samples"`
}

func (a *admin) handleTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.table.Tracks()
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	out := make([]trackSummary, 0, len(tracks))
	for _, t := range tracks {
		stats, err := a.table.GetOrCreate(t)
		if err != nil {
			httputil.InternalServerError(w, err)
			return
		}
		s := trackSummary{
			Track:         t,
			TotalPlayTime: stats.TotalPlayTime.String(),
			GhostRunID:    stats.GhostRunID,
		}
		if stats.FastestTotal.IsSet() {
			s.FastestTotal = race.FormatLapTime(stats.FastestTotal.Time)
			s.TotalDriver = stats.FastestTotal.Driver
		}
		if stats.FastestLap.IsSet() {
			s.FastestLap = race.FormatLapTime(stats.FastestLap.Time)
			s.LapDriver = stats.FastestLap.Driver
		}
		if stats.Ghost != nil {
			s.GhostSamples = stats.Ghost.TotalSamples()
		}
		out = append(out, s)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (a *admin) handleLaps(w http.ResponseWriter, r *http.Request) {
	track := r.URL.Query().Get("track")
	if track == "" {
		httputil.BadRequest(w, "missing 'track' parameter")
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = n
	}

	results, err := a.db.RaceResults(track, limit)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	stats, err := a.table.GetOrCreate(track)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}

	// Oldest first so the chart reads left to right.
	attempts := make([]ghostplot.Attempt, len(results))
	for i, res := range results {
		attempts[len(results)-1-i] = ghostplot.Attempt{
			Label:    fmt.Sprintf("%s %s", res.Driver, res.FinishedAt.Local().Format("01-02 15:04:05")),
			LapTimes: res.LapTimes,
			Total:    res.Total,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ghostplot.LapChart(w, track, attempts, stats.FastestTotal.Time); err != nil {
		log.Printf("Failed to render lap chart: %v", err)
	}
}

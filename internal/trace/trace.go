// Package trace supplies motion for the live tracked entity: timestamped pose
// traces loaded from CSV or generated on a synthetic oval, and a Vehicle that
// plays a trace while reporting checkpoint and finish-line crossings.
package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// Sample is one timestamped pose.
type Sample struct {
	At   time.Duration
	Pose ghost.Pose
}

// Trace is a time-ordered pose sequence starting at At == 0.
type Trace struct {
	Samples []Sample
}

// Duration is the timestamp of the last sample.
func (tr *Trace) Duration() time.Duration {
	if len(tr.Samples) == 0 {
		return 0
	}
	return tr.Samples[len(tr.Samples)-1].At
}

// PoseAt returns the pose at t, blending the neighbouring samples. Times
// outside the trace clamp to its ends.
func (tr *Trace) PoseAt(t time.Duration) ghost.Pose {
	n := len(tr.Samples)
	if n == 0 {
		return ghost.IdentityPose()
	}
	i := sort.Search(n, func(i int) bool { return tr.Samples[i].At >= t })
	if i == 0 {
		return tr.Samples[0].Pose
	}
	if i == n {
		return tr.Samples[n-1].Pose
	}
	a, b := tr.Samples[i-1], tr.Samples[i]
	f := float64(t-a.At) / float64(b.At-a.At)
	return ghost.Interpolate(a.Pose, b.Pose, f, ghost.BlendSlerp)
}

var requiredColumns = []string{"timestamp_ms", "pos_x", "pos_y", "pos_z"}
var rotationColumns = []string{"rot_w", "rot_x", "rot_y", "rot_z"}

// LoadCSV reads a pose trace. Column names are matched case-insensitively;
// timestamp_ms and pos_x/y/z are required and rot_w/x/y/z are optional
// (identity when absent). Timestamps are rebased so the first row is at 0 and
// must not decrease.
func LoadCSV(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, r := range requiredColumns {
		if _, ok := cols[r]; !ok {
			return nil, fmt.Errorf("missing required column: %s", r)
		}
	}
	hasRot := true
	for _, r := range rotationColumns {
		if _, ok := cols[r]; !ok {
			hasRot = false
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	tr := &Trace{Samples: make([]Sample, 0, len(rows))}
	var origin float64
	for line, row := range rows {
		num := func(col string) (float64, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[cols[col]]), 64)
			if err != nil {
				return 0, fmt.Errorf("row %d: bad %s %q", line+2, col, row[cols[col]])
			}
			return v, nil
		}
		var vals [8]float64
		names := append(append([]string(nil), requiredColumns...), rotationColumns...)
		if !hasRot {
			names = requiredColumns
		}
		for i, name := range names {
			if vals[i], err = num(name); err != nil {
				return nil, err
			}
		}
		if line == 0 {
			origin = vals[0]
		}
		at := time.Duration((vals[0] - origin) * float64(time.Millisecond))
		if n := len(tr.Samples); n > 0 && at < tr.Samples[n-1].At {
			return nil, fmt.Errorf("row %d: timestamp goes backwards", line+2)
		}
		p := ghost.Pose{
			Position:    r3.Vec{X: vals[1], Y: vals[2], Z: vals[3]},
			Orientation: quat.Number{Real: 1},
		}
		if hasRot {
			p.Orientation = quat.Number{Real: vals[4], Imag: vals[5], Jmag: vals[6], Kmag: vals[7]}
		}
		tr.Samples = append(tr.Samples, Sample{At: at, Pose: p})
	}
	if len(tr.Samples) == 0 {
		return nil, fmt.Errorf("trace %s has no samples", path)
	}
	return tr, nil
}

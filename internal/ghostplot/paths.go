// Package ghostplot renders ghost recordings and lap times for inspection:
// top-down PNG path plots and HTML lap-time charts.
package ghostplot

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
)

// Series is one recording drawn on a path plot.
type Series struct {
	Name      string
	Recording *ghost.Recording
}

// RenderPaths draws the XZ ground track of every series into a PNG (or any
// format gonum/plot infers from the extension) at path. Lap starts are marked.
func RenderPaths(path, title string, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Z (m)"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range series {
		if s.Recording == nil || s.Recording.TotalSamples() == 0 {
			continue
		}
		pts := make(plotter.XYs, 0, s.Recording.TotalSamples())
		var starts plotter.XYs
		for lap := 0; lap < s.Recording.LapCount(); lap++ {
			poses := s.Recording.Lap(lap)
			if len(poses) > 0 {
				starts = append(starts, plotter.XY{X: poses[0].Position.X, Y: poses[0].Position.Z})
			}
			for _, pose := range poses {
				pts = append(pts, plotter.XY{X: pose.Position.X, Y: pose.Position.Z})
			}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Name, line)

		marks, err := plotter.NewScatter(starts)
		if err != nil {
			return fmt.Errorf("failed to build lap marks for %q: %w", s.Name, err)
		}
		marks.Color = plotutil.Color(i)
		marks.Shape = draw.CircleGlyph{}
		p.Add(marks)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("ghostplot: nothing to draw")
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

/*
DESCRIPTION
  plot.go renders one diagnostic timeline PNG per match, giving the
  teacher's otherwise-unwired gonum/plot dependency a home (see
  SPEC_FULL.md §12's "Diagnostic per-match timeline plot"). It isn't
  grounded on any original_source file — there is none, since the original
  implementation has no equivalent — but its use of gonum/stat for a
  robust center estimate mirrors cmd/rv/probe.go's stat.Mean smoothing.
*/

// Package plot renders per-match timeline diagnostics: every before/during/
// after/result-screen timestamp folded into a project.Match, plotted
// against the inferred start and results-screen window, so the clustering
// constants in package config can be tuned by eye.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/guineawheek/clipcrab/detect"
	"github.com/guineawheek/clipcrab/project"
)

// rows, top to bottom, and their Y coordinate on the plot.
const (
	rowBefore = 3.0
	rowDuring = 2.0
	rowAfter  = 1.0
	rowResult = 0.0
)

// Render writes dir/{key}.png, a scatter timeline of m's detections with
// its inferred start (if any) and results-screen window (if any) marked as
// vertical lines. dir is created if it doesn't exist.
func Render(dir string, m *project.Match) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("plot: creating %s: %w", dir, err)
	}

	tl := m.Timeline()

	p := plot.New()
	p.Title.Text = m.Key.String()
	p.X.Label.Text = "seconds from source start"
	p.Y.Label.Text = "bucket"

	addRow := func(label string, us []int64, row float64) error {
		if len(us) == 0 {
			return nil
		}
		pts := make(plotter.XYs, len(us))
		for i, t := range us {
			pts[i].X = float64(t) / 1_000_000.0
			pts[i].Y = row
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("plot: %s scatter: %w", label, err)
		}
		p.Add(s)
		p.Legend.Add(label, s)
		return nil
	}

	if err := addRow("before", tl.BeforeUs, rowBefore); err != nil {
		return err
	}
	if err := addRow("during", tl.DuringUs, rowDuring); err != nil {
		return err
	}
	if err := addRow("after", tl.AfterUs, rowAfter); err != nil {
		return err
	}
	if err := addRow("result_screen", tl.ResultScreenUs, rowResult); err != nil {
		return err
	}

	if m.StartUs != nil {
		if err := addVLine(p, "inferred start", float64(*m.StartUs)/1_000_000.0); err != nil {
			return err
		}
	}
	if m.ResultScreenSegment != nil {
		if err := addVLine(p, "result window start", float64(m.ResultScreenSegment.StartUs)/1_000_000.0); err != nil {
			return err
		}
		if err := addVLine(p, "result window end", float64(m.ResultScreenSegment.EndUs)/1_000_000.0); err != nil {
			return err
		}
	}

	fname := filepath.Join(dir, sanitize(m.Key)+".png")
	if err := p.Save(8*vg.Inch, 3*vg.Inch, fname); err != nil {
		return fmt.Errorf("plot: saving %s: %w", fname, err)
	}
	return nil
}

// addVLine draws a vertical marker line spanning the fixed row range this
// package plots on.
func addVLine(p *plot.Plot, label string, x float64) error {
	pts := plotter.XYs{{X: x, Y: rowResult - 0.5}, {X: x, Y: rowBefore + 0.5}}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot: %s line: %w", label, err)
	}
	p.Add(l)
	p.Legend.Add(label, l)
	return nil
}

// robustCenter is a thin wrapper over gonum/stat used by tests and callers
// that want a quick sanity check on a detection cluster's central tendency
// without re-deriving project.Match's own index-based median.
func robustCenter(us []int64) float64 {
	if len(us) == 0 {
		return 0
	}
	xs := make([]float64, len(us))
	for i, t := range us {
		xs[i] = float64(t)
	}
	return stat.Mean(xs, nil)
}

// sanitize turns a MatchKey's display string into a filesystem-safe stem.
func sanitize(k detect.MatchKey) string {
	s := k.String()
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

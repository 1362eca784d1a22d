package geometry

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func newTestFrame(w, h int) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetUCharAt(y, x, uchar(x+y))
		}
	}
	return m
}

func uchar(v int) uint8 { return uint8(v % 256) }

func TestExtractROIWithinBounds(t *testing.T) {
	frame := newTestFrame(100, 100)
	defer frame.Close()

	roi := ExtractROI(frame, nil, Point{X: 0.1, Y: 0.1}, Size{W: 0.2, H: 0.2})
	defer roi.Close()

	if roi.Cols() != 20 || roi.Rows() != 20 {
		t.Errorf("ExtractROI size = %dx%d, want 20x20", roi.Cols(), roi.Rows())
	}
}

func TestExtractROIPadsAtEdge(t *testing.T) {
	frame := newTestFrame(100, 100)
	defer frame.Close()

	// Requests a 20x20 box starting 10px from the right/bottom edge, so half
	// of it falls outside the frame and must be edge-replicated.
	roi := ExtractROI(frame, nil, Point{X: 0.9, Y: 0.9}, Size{W: 0.2, H: 0.2})
	defer roi.Close()

	if roi.Cols() != 20 || roi.Rows() != 20 {
		t.Fatalf("ExtractROI size = %dx%d, want 20x20", roi.Cols(), roi.Rows())
	}

	// The last valid column (index 9, frame's column 99) should have been
	// replicated out to fill columns 10..19.
	edge := roi.GetUCharAt(0, 9)
	padded := roi.GetUCharAt(0, 19)
	if edge != padded {
		t.Errorf("replicated padding mismatch: edge=%d padded=%d", edge, padded)
	}
}

func TestExtractROIFullyOutOfBounds(t *testing.T) {
	frame := newTestFrame(100, 100)
	defer frame.Close()

	roi := ExtractROI(frame, nil, Point{X: 2.0, Y: 2.0}, Size{W: 0.1, H: 0.1})
	defer roi.Close()

	if roi.Cols() != 10 || roi.Rows() != 10 {
		t.Errorf("ExtractROI size = %dx%d, want 10x10 (clamped+padded)", roi.Cols(), roi.Rows())
	}
}

func TestExtractROIWithExplicitRefDims(t *testing.T) {
	frame := newTestFrame(50, 50)
	defer frame.Close()

	ref := image.Pt(100, 100)
	roi := ExtractROI(frame, &ref, Point{X: 0.0, Y: 0.0}, Size{W: 0.2, H: 0.2})
	defer roi.Close()

	// 0.2 of a 100-wide reference is 20px, but the frame itself is only
	// 50px wide -- still within bounds here since 20 < 50.
	if roi.Cols() != 20 || roi.Rows() != 20 {
		t.Errorf("ExtractROI size = %dx%d, want 20x20", roi.Cols(), roi.Rows())
	}
}

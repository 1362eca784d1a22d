// Package geometry provides resolution-agnostic points and sizes, and
// region-of-interest extraction with replicated-edge padding, grounded on
// the ROI-handling idiom used throughout github.com/ausocean/av's device and
// filter packages (sub-Mat extraction followed by explicit size
// normalization).
package geometry

import (
	"image"

	"gocv.io/x/gocv"
)

// Point is a normalized (0.0..1.0 of frame dimensions) position.
type Point struct {
	X, Y float64
}

// Size is a normalized (0.0..1.0 of frame dimensions) width/height, or, when
// returned from Res1080p, an absolute pixel count used purely as a reference
// scale.
type Size struct {
	W, H float64
}

// Res1080p is the reference resolution every season's geometry constants are
// declared against.
func Res1080p() Size { return Size{W: 1920, H: 1080} }

// Scale returns a Size multiplied componentwise by s.
func (sz Size) Scale(s float64) Size { return Size{W: sz.W * s, H: sz.H * s} }

// pixelRect converts a normalized top-left point and size into an absolute
// pixel rectangle against refDims.
func pixelRect(refDims image.Point, pos Point, size Size) image.Rectangle {
	x0 := int(pos.X*float64(refDims.X) + 0.5)
	y0 := int(pos.Y*float64(refDims.Y) + 0.5)
	w := int(size.W*float64(refDims.X) + 0.5)
	h := int(size.H*float64(refDims.Y) + 0.5)
	return image.Rect(x0, y0, x0+w, y0+h)
}

// ExtractROI extracts the rectangle given by relPos/relSize (normalized
// against refDims, or against the frame's own dimensions if refDims is nil)
// out of frame. If the requested rectangle extends past frame, the
// returned Mat is the valid intersection padded with replicated edge pixels
// out to the full requested pixel size, so callers always see a fixed-shape
// input regardless of where the ROI falls relative to the frame edge.
//
// The caller owns the returned Mat and must Close it.
func ExtractROI(frame gocv.Mat, refDims *image.Point, relPos Point, relSize Size) gocv.Mat {
	ref := image.Pt(frame.Cols(), frame.Rows())
	if refDims != nil {
		ref = *refDims
	}
	want := pixelRect(ref, relPos, relSize)
	frameRect := image.Rect(0, 0, frame.Cols(), frame.Rows())

	valid := want.Intersect(frameRect)
	if valid.Empty() {
		// Nothing overlaps the frame at all; return a border-replicated
		// Mat built entirely from the single nearest clamped pixel.
		px := image.Pt(clampInt(want.Min.X, 0, frame.Cols()-1), clampInt(want.Min.Y, 0, frame.Rows()-1))
		one := frame.Region(image.Rect(px.X, px.Y, px.X+1, px.Y+1))
		defer one.Close()
		out := gocv.NewMat()
		gocv.CopyMakeBorder(one, &out, 0, want.Dy()-1, 0, want.Dx()-1, gocv.BorderReplicate, gocv.Scalar{})
		return out
	}

	sub := frame.Region(valid)
	defer sub.Close()

	top := valid.Min.Y - want.Min.Y
	left := valid.Min.X - want.Min.X
	bottom := want.Max.Y - valid.Max.Y
	right := want.Max.X - valid.Max.X

	if top == 0 && left == 0 && bottom == 0 && right == 0 {
		return sub.Clone()
	}

	out := gocv.NewMat()
	gocv.CopyMakeBorder(sub, &out, top, bottom, left, right, gocv.BorderReplicate, gocv.Scalar{})
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

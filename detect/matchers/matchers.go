// Package matchers provides template matching and the match-phase
// sub-detector, grounded on the gocv idioms demonstrated in
// github.com/ausocean/av's exp/gocv-exp (gocv.Resize / gocv.CvtColor /
// gocv.MatchTemplate / gocv.MinMaxLoc) and on
// original_source/clipcrab-detect/src/matchers.rs for the algorithm itself.
package matchers

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/guineawheek/clipcrab/detect/geometry"
)

// TemplateMatch is the normalized position and size of a located template.
type TemplateMatch struct {
	RelX, RelY float64
	RelSize    geometry.Size
}

// TemplateMatcher locates a reference sprite inside a frame using normalized
// cross-correlation. It is stateless after construction and safe to share
// read-only across worker goroutines.
type TemplateMatcher struct {
	template    gocv.Mat // grayscale, pre-resized to matchSize
	relTmplSize geometry.Size
	matchSize   image.Point
	threshold   float64
}

// NewTemplateMatcher builds a matcher for templateImg (as decoded, any
// color order), which was sampled at refSize (typically 1920x1080).
// Comparisons are performed at matchSize (typically 1280x720) against a
// threshold in [0,1].
func NewTemplateMatcher(templateImg gocv.Mat, refSize geometry.Size, matchSize image.Point, threshold float64) (*TemplateMatcher, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if templateImg.Channels() > 1 {
		gocv.CvtColor(templateImg, &gray, gocv.ColorBGRToGray)
	} else {
		templateImg.CopyTo(&gray)
	}

	scaled := gocv.NewMat()
	fx := float64(matchSize.X) / refSize.W
	fy := float64(matchSize.Y) / refSize.H
	gocv.Resize(gray, &scaled, image.Point{}, fx, fy, gocv.InterpolationArea)

	if scaled.Empty() {
		scaled.Close()
		return nil, errors.New("matchers: resized template is empty")
	}

	return &TemplateMatcher{
		template: scaled,
		relTmplSize: geometry.Size{
			W: float64(templateImg.Cols()) / refSize.W,
			H: float64(templateImg.Rows()) / refSize.H,
		},
		matchSize: matchSize,
		threshold: threshold,
	}, nil
}

// Close releases the matcher's resized template Mat.
func (m *TemplateMatcher) Close() error { return m.template.Close() }

// Matches runs normalized cross-correlation (TM_CCOEFF_NORMED) of the
// matcher's template against frame, resized to the matcher's comparison
// resolution. It returns the global maximum's position, normalized, if its
// score meets the matcher's threshold.
func (m *TemplateMatcher) Matches(frame gocv.Mat) (TemplateMatch, bool) {
	result := m.matchTemplateRaw(frame)
	defer result.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	if float64(maxVal) < m.threshold {
		return TemplateMatch{}, false
	}
	return TemplateMatch{
		RelX:    float64(maxLoc.X) / float64(m.matchSize.X),
		RelY:    float64(maxLoc.Y) / float64(m.matchSize.Y),
		RelSize: m.relTmplSize,
	}, true
}

func (m *TemplateMatcher) matchTemplateRaw(frame gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	fx := float64(m.matchSize.X) / float64(frame.Cols())
	fy := float64(m.matchSize.Y) / float64(frame.Rows())
	gocv.Resize(gray, &resized, image.Point{}, fx, fy, gocv.InterpolationArea)

	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.NewMat()
	gocv.MatchTemplate(resized, m.template, &result, gocv.TmCcoeffNormed, mask)
	return result
}

// MatchPhase mirrors detect.MatchPhase without importing the detect package,
// to keep matchers a leaf dependency; detect.MatchPhase's int values line up
// with this one so callers can convert with a direct cast.
type MatchPhase int

const (
	PhaseNotStarted MatchPhase = iota
	PhaseAutonomous
	PhaseTransition
	PhaseTeleop
	PhaseEnded
)

// MatchPhaseDetector derives a match's phase from the seconds remaining on
// its clock, consulting a phase-icon template only at the two ambiguous
// boundaries (150s and the 1-8s auto/teleop transition window).
type MatchPhaseDetector struct {
	autonomousIcon *TemplateMatcher
	transitionIcon *TemplateMatcher
}

// NewMatchPhaseDetector builds a phase detector from the two phase-icon
// templates.
func NewMatchPhaseDetector(autonomousIcon, transitionIcon *TemplateMatcher) *MatchPhaseDetector {
	return &MatchPhaseDetector{autonomousIcon: autonomousIcon, transitionIcon: transitionIcon}
}

// DetectMatchPhase classifies the phase given the seconds remaining on the
// clock (secondsRemaining) and a phase-icon ROI (iconROI) to disambiguate
// the two boundary cases. It returns false for an invalid (out of range)
// clock reading.
func (d *MatchPhaseDetector) DetectMatchPhase(iconROI gocv.Mat, secondsRemaining int64) (MatchPhase, bool) {
	switch {
	case secondsRemaining > 150:
		return 0, false
	case secondsRemaining == 150:
		if _, ok := d.autonomousIcon.Matches(iconROI); ok {
			return PhaseAutonomous, true
		}
		return PhaseNotStarted, true
	case secondsRemaining >= 121:
		return PhaseAutonomous, true
	case secondsRemaining >= 9:
		return PhaseTeleop, true
	case secondsRemaining >= 1:
		if _, ok := d.transitionIcon.Matches(iconROI); ok {
			return PhaseTransition, true
		}
		return PhaseTeleop, true
	case secondsRemaining == 0:
		return PhaseEnded, true
	default:
		return 0, false
	}
}

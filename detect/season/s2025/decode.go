// Package s2025 composes the geometry, template-matching, OCR and QR leaf
// packages into a single per-frame classifier for the 2025 broadcast
// overlay, grounded on
// original_source/clipcrab-detect/src/seasons/s2025_decode.rs. Season
// geometry is pluggable in principle (spec: "season-specific geometry is
// pluggable") but only this one season need ship, per spec's Non-goals.
package s2025

import (
	"image"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"github.com/guineawheek/clipcrab/config"
	"github.com/guineawheek/clipcrab/detect"
	"github.com/guineawheek/clipcrab/detect/geometry"
	"github.com/guineawheek/clipcrab/detect/matchers"
	"github.com/guineawheek/clipcrab/detect/ocr"
	"github.com/guineawheek/clipcrab/detect/season/s2025/assets"
)

// comparisonResolution is the fixed resolution template matching is
// performed at, independent of the source frame's native resolution.
var comparisonResolution = image.Pt(1280, 720)

// DecodeDetector is the season-2025 frame classifier: detect.Detector.
type DecodeDetector struct {
	logoDetector         *matchers.TemplateMatcher
	notAPreviewDetector  *matchers.TemplateMatcher
	matchPhaseDetector    *matchers.MatchPhaseDetector
	autoIconDetector     *matchers.TemplateMatcher
	transIconDetector    *matchers.TemplateMatcher
	matchNameOCR         *ocr.Ocr
	textOCR              *ocr.Ocr
	numberOCR            *ocr.Ocr
	matchTimeOCR         *ocr.Ocr
}

// New builds a DecodeDetector, loading and resizing its templates once and
// standing up the four OCR engines it needs, three of them whitelist-biased
// and one unrestricted (matching the
// Rust source's Ocr::new calls one for one).
func New() (*DecodeDetector, error) {
	logoImg, err := gocv.IMDecode(assets.Logo, gocv.IMReadGrayScale)
	if err != nil {
		return nil, err
	}
	defer logoImg.Close()

	blueScoreImg, err := gocv.IMDecode(assets.BlueScore, gocv.IMReadGrayScale)
	if err != nil {
		return nil, err
	}
	defer blueScoreImg.Close()

	autoIconImg, err := gocv.IMDecode(assets.AutonomousIcon, gocv.IMReadGrayScale)
	if err != nil {
		return nil, err
	}
	defer autoIconImg.Close()

	transIconImg, err := gocv.IMDecode(assets.TransitionIcon, gocv.IMReadGrayScale)
	if err != nil {
		return nil, err
	}
	defer transIconImg.Close()

	res1080p := geometry.Res1080p()

	logoDetector, err := matchers.NewTemplateMatcher(logoImg, res1080p, comparisonResolution, config.S2025LogoThreshold)
	if err != nil {
		return nil, err
	}
	notAPreviewDetector, err := matchers.NewTemplateMatcher(blueScoreImg, res1080p, comparisonResolution, config.S2025BlueScoreThreshold)
	if err != nil {
		return nil, err
	}
	autoIconDetector, err := matchers.NewTemplateMatcher(autoIconImg, res1080p, comparisonResolution, config.S2025LogoThreshold)
	if err != nil {
		return nil, err
	}
	transIconDetector, err := matchers.NewTemplateMatcher(transIconImg, res1080p, comparisonResolution, config.S2025LogoThreshold)
	if err != nil {
		return nil, err
	}

	return &DecodeDetector{
		logoDetector:        logoDetector,
		notAPreviewDetector: notAPreviewDetector,
		matchPhaseDetector:  matchers.NewMatchPhaseDetector(autoIconDetector, transIconDetector),
		autoIconDetector:    autoIconDetector,
		transIconDetector:   transIconDetector,
		matchNameOCR:        ocr.New("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "),
		textOCR:             ocr.New(""),
		numberOCR:           ocr.New("0123456789"),
		matchTimeOCR:        ocr.New("0123456789:"),
	}, nil
}

// Close releases the detector's templates and OCR engines.
func (d *DecodeDetector) Close() error {
	d.logoDetector.Close()
	d.notAPreviewDetector.Close()
	d.autoIconDetector.Close()
	d.transIconDetector.Close()
	d.matchNameOCR.Close()
	d.textOCR.Close()
	d.numberOCR.Close()
	d.matchTimeOCR.Close()
	return nil
}

// Detect runs the season-2025 nine-step classification pipeline described in
// spec §4.6 against frame.
func (d *DecodeDetector) Detect(frame gocv.Mat) (detect.MatchDetection, bool) {
	// Step 1: locate the HUD via the season logo.
	logo, ok := d.logoDetector.Matches(frame)
	if !ok {
		return detect.MatchDetection{}, false
	}

	// Step 2: compute the scoring-display rectangle, immediately below the
	// name bar, offset from the logo by a fixed distance, full frame width.
	displayTL := geometry.Point{
		X: logo.RelX + logo.RelSize.W + config.S2025LogoDistToRightEdge - 1.0,
		Y: logo.RelY + config.S2025NameBarHeight,
	}
	scoringDisplay := geometry.ExtractROI(frame, nil, displayTL, geometry.Size{W: 1.0, H: config.S2025ScoringDisplayHeight})
	defer scoringDisplay.Close()

	// Step 3: reject preview screens lacking the live blue-score chip.
	if _, ok := d.notAPreviewDetector.Matches(scoringDisplay); !ok {
		return detect.MatchDetection{}, false
	}

	// Step 4: read the match name.
	nameROI := geometry.ExtractROI(frame, nil,
		geometry.Point{X: config.S2025MatchNameX, Y: displayTL.Y - config.S2025NameBarHeight + 10.0/1080.0},
		geometry.Size{W: config.S2025MatchNameWidth, H: config.S2025NameBarHeight - 15.0/1080.0},
	)
	matchName := strings.TrimSpace(d.matchNameOCR.ExtractText(nameROI))
	nameROI.Close()

	if strings.Contains(matchName, "Example") {
		// The broadcaster's demo screen.
		return detect.MatchDetection{}, false
	}

	frameDims := image.Pt(frame.Cols(), frame.Rows())

	// Step 5: read and parse the match clock.
	timerROI := geometry.ExtractROI(scoringDisplay, &frameDims,
		geometry.Point{X: config.S2025TimerX, Y: config.S2025TimerY},
		geometry.Size{W: config.S2025TimerWidth, H: config.S2025TimerHeight},
	)
	matchTime := d.matchTimeOCR.ExtractText(timerROI)
	timerROI.Close()

	seconds, ok := parseMatchClock(matchTime)
	if !ok {
		return detect.MatchDetection{}, false
	}

	// Step 6: classify the phase.
	phaseROI := geometry.ExtractROI(scoringDisplay, &frameDims,
		geometry.Point{X: config.S2025TimerX, Y: 0},
		geometry.Size{W: config.S2025TimerWidth, H: config.S2025TimerPhaseHeight},
	)
	phase, ok := d.matchPhaseDetector.DetectMatchPhase(phaseROI, seconds)
	phaseROI.Close()
	if !ok {
		return detect.MatchDetection{}, false
	}

	// Step 7: read alliance team numbers from the left/right alliance boxes.
	leftROI := geometry.ExtractROI(scoringDisplay, &frameDims,
		geometry.Point{X: 0, Y: 0},
		geometry.Size{W: config.S2025AllianceScoringWidth, H: 1.0},
	)
	leftTeams := parseTeamList(d.numberOCR.ExtractText(leftROI))
	leftROI.Close()

	rightROI := geometry.ExtractROI(scoringDisplay, &frameDims,
		geometry.Point{X: 1.0 - config.S2025AllianceScoringWidth, Y: 0},
		geometry.Size{W: config.S2025AllianceScoringWidth, H: 1.0},
	)
	rightTeams := parseTeamList(d.numberOCR.ExtractText(rightROI))
	rightROI.Close()

	// Step 8: sample the left total-score chip and threshold its hue to
	// decide whether the display is flipped (blue on the left).
	chipROI := geometry.ExtractROI(scoringDisplay, &frameDims,
		geometry.Point{X: config.S2025AllianceScoringWidth, Y: (config.S2025TimerY + config.S2025TimerHeight - config.S2025ScoreChipHeight) / 2},
		geometry.Size{W: config.S2025ScoreChipWidth, H: config.S2025ScoreChipHeight},
	)
	flipped := isBlueChip(chipROI)
	chipROI.Close()

	info := detect.MatchDisplayInfo{DisplayFlipped: flipped}
	if flipped {
		info.RedAlliance, info.BlueAlliance = rightTeams, leftTeams
	} else {
		info.RedAlliance, info.BlueAlliance = leftTeams, rightTeams
	}

	// Step 9: done.
	return detect.MatchDetection{
		Name:        matchName,
		Time:        seconds,
		Phase:       detect.MatchPhase(phase),
		DisplayInfo: info,
	}, true
}

// parseMatchClock parses an OCR'd "MM:SS" clock reading into seconds
// remaining.
func parseMatchClock(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	mm, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	ss, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return mm*60 + ss, true
}

// parseTeamList parses a newline-delimited OCR'd list of team numbers.
// Unparseable lines become 0, a gap marker, rather than being dropped —
// dropping a line would silently shift every subsequent team up a slot.
func parseTeamList(s string) []uint64 {
	lines := strings.Split(s, "\n")
	out := make([]uint64, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			out = append(out, 0)
			continue
		}
		out = append(out, n)
	}
	return out
}

// isBlueChip converts chip to HSV and reports whether at least
// S2025BlueFlipThreshold of its pixels fall within the blue hue range,
// indicating the blue alliance's score chip (and therefore the blue
// alliance itself) is on the left.
func isBlueChip(chip gocv.Mat) bool {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(chip, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lb := gocv.NewScalar(float64(config.S2025BlueHueMin), 0, 0, 0)
	ub := gocv.NewScalar(float64(config.S2025BlueHueMax), 255, 255, 0)
	gocv.InRangeWithScalar(hsv, lb, ub, &mask)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return false
	}
	blue := gocv.CountNonZero(mask)
	return float64(blue)/float64(total) >= config.S2025BlueFlipThreshold
}

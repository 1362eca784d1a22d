// Package qr locates and decodes the post-match results screen's QR code,
// whose payload is an ftc.events URL identifying the match that was just
// played. Grounded on original_source/clipcrab-detect/src/qr.rs, translated
// from the `rqrr` crate onto github.com/makiuchi-d/gozxing, a Go port of
// ZXing capable of decoding from an arbitrary binary bitmap the way `rqrr`
// is used there.
package qr

import (
	"fmt"
	"image"
	"net/url"
	"strconv"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"gocv.io/x/gocv"

	"github.com/guineawheek/clipcrab/detect/geometry"
)

// FTCEventsQR is the parsed payload of a results-screen QR code.
type FTCEventsQR struct {
	EventCode string
	// Playoff/Num mirror detect.MatchKey's tagging, but Tiebreaker here is
	// the *raw*, unshifted tiebreaker count as it appears in the URL path —
	// it does NOT follow detect.MatchKey's tiebreaker+1 convention. See
	// detect.ParseMatchKey's doc comment for why these disagree and where
	// the conversion between them happens.
	Playoff    bool
	Num        uint64
	Tiebreaker uint64 // only meaningful if Playoff
}

const qrHost = "ftc.events"

// qrROIPos and qrROISize are the package-level ROI the results QR is
// expected to appear at, in 1080p-normalized terms (724,788)-(879,943).
var (
	qrROIPos  = geometry.Point{X: 724.0 / 1920.0, Y: 788.0 / 1080.0}
	qrROISize = geometry.Size{W: 155.0 / 1920.0, H: 155.0 / 1080.0}
)

const qrScanSize = 400

// Detect extracts the fixed results-QR ROI from frame, binarizes it, and
// attempts to decode and parse an ftc.events URL out of it. Every failure
// mode (no QR found, undecodable QR, decoded but wrong host/shape) collapses
// to (FTCEventsQR{}, false); Detect does not log or otherwise report which
// of these failures occurred.
func Detect(frame gocv.Mat) (FTCEventsQR, bool) {
	roi := geometry.ExtractROI(frame, nil, qrROIPos, qrROISize)
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if roi.Channels() > 1 {
		gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)
	} else {
		roi.CopyTo(&gray)
	}

	big := gocv.NewMat()
	defer big.Close()
	gocv.Resize(gray, &big, image.Pt(qrScanSize, qrScanSize), 0, 0, gocv.InterpolationNearestNeighbor)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(big, &bin, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	img, err := bin.ToImage()
	if err != nil {
		return FTCEventsQR{}, false
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return FTCEventsQR{}, false
	}

	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bitmap, nil)
	if err != nil {
		return FTCEventsQR{}, false
	}

	qr, err := Parse(result.GetText())
	if err != nil {
		return FTCEventsQR{}, false
	}
	return qr, true
}

// Parse parses an ftc.events match-results URL into an FTCEventsQR. Only
// URLs with host "ftc.events" and a path shaped
// "/{event}/qualifications/{n}/..." or "/{event}/playoffs/{n}/{tiebreaker}/..."
// are accepted; everything else is an error.
func Parse(rawURL string) (FTCEventsQR, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FTCEventsQR{}, fmt.Errorf("qr: %w", err)
	}
	if u.Host != qrHost {
		return FTCEventsQR{}, fmt.Errorf("qr: not a valid host: %s", u.Host)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 3 {
		return FTCEventsQR{}, fmt.Errorf("qr: unparseable ftc.events url %q", rawURL)
	}

	event := segs[0]
	switch segs[1] {
	case "qualifications":
		n, err := strconv.ParseUint(segs[2], 10, 64)
		if err != nil {
			return FTCEventsQR{}, fmt.Errorf("qr: bad qualification number in %q: %w", rawURL, err)
		}
		return FTCEventsQR{EventCode: event, Playoff: false, Num: n}, nil
	case "playoffs":
		if len(segs) < 4 {
			return FTCEventsQR{}, fmt.Errorf("qr: unparseable playoffs url %q", rawURL)
		}
		n, err := strconv.ParseUint(segs[2], 10, 64)
		if err != nil {
			return FTCEventsQR{}, fmt.Errorf("qr: bad playoff number in %q: %w", rawURL, err)
		}
		tb, err := strconv.ParseUint(segs[3], 10, 64)
		if err != nil {
			return FTCEventsQR{}, fmt.Errorf("qr: bad tiebreaker in %q: %w", rawURL, err)
		}
		return FTCEventsQR{EventCode: event, Playoff: true, Num: n, Tiebreaker: tb}, nil
	default:
		return FTCEventsQR{}, fmt.Errorf("qr: unparseable ftc.events url %q", rawURL)
	}
}

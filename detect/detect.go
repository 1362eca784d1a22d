// Package detect provides per-frame classification of a decoded broadcast
// frame into either a live scoring HUD reading or a post-match results QR
// code reading.
//
// Conventions carried over from the codebase this package grew out of:
// frames are gocv.Mat values in whatever color order the capture layer
// produces them in (BGR, per OpenCV/gocv convention) and detectors never
// mutate the Mat they're given.
package detect

import (
	"fmt"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Detector classifies a single decoded frame. Implementations must be safe
// for concurrent use by multiple callers against distinct frames (no shared
// mutable state beyond read-only template/model bytes).
type Detector interface {
	Detect(frame gocv.Mat) (MatchDetection, bool)
}

// MatchPhase is the phase of a match as read off the on-screen clock and,
// at its boundaries, a phase-icon sprite.
type MatchPhase int

const (
	PhaseNotStarted MatchPhase = iota
	PhaseAutonomous
	PhaseTransition
	PhaseTeleop
	PhaseEnded
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseAutonomous:
		return "Autonomous"
	case PhaseTransition:
		return "Transition"
	case PhaseTeleop:
		return "Teleop"
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("MatchPhase(%d)", int(p))
	}
}

// MatchDisplayInfo records the alliance rosters read from a HUD frame and
// whether red/blue were swapped from their usual left/right placement.
type MatchDisplayInfo struct {
	RedAlliance    []uint64
	BlueAlliance   []uint64
	DisplayFlipped bool
}

// MatchDetection is the structured result of reading a live scoring HUD
// frame. A Detector does not check that Name parses as a MatchKey; the
// coordinator discards detections whose name doesn't parse before they reach
// the match table.
type MatchDetection struct {
	Name        string
	Time        int64 // seconds remaining on the match clock
	Phase       MatchPhase
	DisplayInfo MatchDisplayInfo
}

// MatchKey is the canonical identity of a played match: either a
// qualification match or a playoff match (optionally a tiebreaker replay of
// one).
type MatchKey struct {
	Playoff bool
	Num     uint64

	// Tiebreaker is only meaningful when Playoff is true. 1 means "not a
	// tiebreaker"; 2 means "Tiebreaker" with no explicit number; n>2 means
	// "Tiebreaker (n-1)" in the broadcast's own numbering. See
	// ParseMatchKey for why this is shifted by one from the number actually
	// shown on screen.
	Tiebreaker uint64
}

// Qualification builds the MatchKey for qualification match num.
func Qualification(num uint64) MatchKey {
	return MatchKey{Playoff: false, Num: num}
}

// PlayoffMatch builds the MatchKey for a playoff match, tiebreaker==1
// meaning the original (non-tiebreaker) match.
func PlayoffMatch(num, tiebreaker uint64) MatchKey {
	if tiebreaker == 0 {
		tiebreaker = 1
	}
	return MatchKey{Playoff: true, Num: num, Tiebreaker: tiebreaker}
}

// Less gives MatchKey its total order: all qualifications precede all
// playoffs; within a kind, ascending by (num, tiebreaker).
func (k MatchKey) Less(o MatchKey) bool {
	if k.Playoff != o.Playoff {
		return !k.Playoff
	}
	if k.Num != o.Num {
		return k.Num < o.Num
	}
	return k.Tiebreaker < o.Tiebreaker
}

// String renders the canonical, round-tripping text form of a MatchKey.
func (k MatchKey) String() string {
	if !k.Playoff {
		return fmt.Sprintf("Qualification %d", k.Num)
	}
	switch k.Tiebreaker {
	case 0, 1:
		return fmt.Sprintf("Playoff Match %d", k.Num)
	case 2:
		return fmt.Sprintf("Playoff Match %d Tiebreaker", k.Num)
	default:
		return fmt.Sprintf("Playoff Match %d Tiebreaker %d", k.Num, k.Tiebreaker-1)
	}
}

// ParseMatchKey parses the text form a broadcast HUD renders a match name
// as. It tolerates an optional leading "Playoff " token (different seasons
// render it differently) and trailing tokens beyond what it needs.
//
// The tiebreaker arithmetic here is load-bearing: the broadcast displays
// "Tiebreaker" with no number for the first tiebreaker and "Tiebreaker k"
// (k>=2) for subsequent ones, but MatchKey.Tiebreaker stores k+1 so that 1
// always means "not a tiebreaker" and 2 always means "the first tiebreaker".
// FTCEventsQR's tiebreaker field (detect/qr) follows the broadcast's raw,
// unshifted numbering instead — the two types disagree on purpose and must
// each be converted at the boundary where they meet (in project/coordinator, when a QR
// detection is folded into the match table).
func ParseMatchKey(s string) (MatchKey, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return MatchKey{}, fmt.Errorf("detect: empty match name")
	}

	if strings.EqualFold(fields[0], "Qualification") {
		if len(fields) < 2 {
			return MatchKey{}, fmt.Errorf("detect: %q: missing qualification number", s)
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return MatchKey{}, fmt.Errorf("detect: %q: bad qualification number: %w", s, err)
		}
		return Qualification(n), nil
	}

	// Tolerate a leading "Playoff" token or its absence.
	if strings.EqualFold(fields[0], "Playoff") {
		fields = fields[1:]
	}
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Match") {
		return MatchKey{}, fmt.Errorf("detect: %q: not a recognized match name", s)
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return MatchKey{}, fmt.Errorf("detect: %q: bad playoff number: %w", s, err)
	}
	rest := fields[2:]
	if len(rest) == 0 {
		return PlayoffMatch(n, 1), nil
	}
	if !strings.EqualFold(rest[0], "Tiebreaker") {
		// Trailing tokens we don't recognize are tolerated per spec.
		return PlayoffMatch(n, 1), nil
	}
	if len(rest) == 1 {
		return PlayoffMatch(n, 2), nil
	}
	k, err := strconv.ParseUint(rest[1], 10, 64)
	if err != nil {
		// An unparseable trailing token after "Tiebreaker" is tolerated
		// and treated as absent, per the parser's general tolerance of
		// trailing tokens.
		return PlayoffMatch(n, 2), nil
	}
	return PlayoffMatch(n, k+1), nil
}

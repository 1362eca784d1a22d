package config

// Season2025 geometry constants, declared once as normalized-to-1080p
// ratios so everything scales automatically to other input resolutions.
// Grounded on original_source/clipcrab-detect/src/seasons/s2025_decode.rs's
// scale_x!/scale_y! macros, which do the same division at compile time;
// Go has no const-evaluable float division trick as terse as a macro, so
// these are declared as typed constants computed the same way.
const (
	// Distance from the logo template to the right edge of the match display.
	S2025LogoDistToRightEdge = 72.0 / 1920.0

	// Height of the bar containing the season logo, match name, and event name.
	S2025NameBarHeight = 75.0 / 1080.0

	// Position and width of the match name relative to the left of the screen.
	S2025MatchNameX     = 980.0 / 1920.0
	S2025MatchNameWidth = 670.0 / 1920.0

	// Height of the scoring display proper.
	S2025ScoringDisplayHeight = 180.0 / 1080.0

	// Width of an alliance-specific scoring display, from the edge of the
	// screen to the team alliance list.
	S2025AllianceScoringWidth = 480.0 / 1920.0

	// Offset and width of the timer text ROI, relative to the scoring
	// display's top-left.
	S2025TimerX     = 860.0 / 1920.0
	S2025TimerWidth = 200.0 / 1920.0

	// Offset and height of the timer text ROI.
	S2025TimerY      = 50.0 / 1080.0
	S2025TimerHeight = 80.0 / 1080.0

	// Height of the timer phase icon ROI.
	S2025TimerPhaseHeight = 56.0 / 1080.0

	// Width of the left/right total-score chip used to determine
	// display-flip, sampled between the alliance list and the timer.
	S2025ScoreChipWidth  = 120.0 / 1920.0
	S2025ScoreChipHeight = 60.0 / 1080.0
)

// Template match thresholds.
const (
	S2025LogoThreshold      = 0.7
	S2025BlueScoreThreshold = 0.5
)

// Blue-hue HSV range used to determine whether the display is flipped
// (blue alliance rendered on the left).
const (
	S2025BlueHueMin        = 98
	S2025BlueHueMax        = 108
	S2025BlueFlipThreshold = 0.7
)

// calc_start's phase-specific "total elapsed time at clock==0" constants,
// used to back-project a during-match detection to the match's wall-clock
// start.
const (
	AutonomousTotalSeconds = 150
	TransitionTotalSeconds = 38  // 30s auto + 8s transition
	TeleopTotalSeconds     = 158 // 30s auto + 8s transition + 120s teleop
)

// Clustering constants used by project.Match's calc_start/calc_result_screen.
const (
	ReplaySpanThresholdUs   = 10_000_000
	ClusterSeparationUs     = 5_000_000
	ReplayClusterMinSize    = 5
	ResultScreenMinCluster  = 3
	ResultScreenLeadInUs    = 13_000_000
	ResultScreenTrailUs     = 12_000_000
	ResultScreenTeardownGap = 2_000_000
)

// Match duration and 1Hz sampling cadence.
const (
	MatchClipDurationUs = 180_000_000 // 150s match + margin
	SampleIntervalUs    = 1_000_000
)

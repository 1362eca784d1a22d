// Package assets embeds the season-2025 template sprites at build time, the
// way original_source/clipcrab-detect/src/seasons/s2025_decode.rs embeds its
// templates with include_bytes!.
package assets

import _ "embed"

//go:embed s2025_logo.png
var Logo []byte

//go:embed s2025_blue_score.png
var BlueScore []byte

//go:embed s2025_autonomous_icon.png
var AutonomousIcon []byte

//go:embed s2025_transition_icon.png
var TransitionIcon []byte

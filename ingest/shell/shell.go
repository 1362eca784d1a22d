/*
DESCRIPTION
  shell.go shells out to ffprobe and ffmpeg for the two pieces of this
  pipeline spec treats as external collaborators: measuring the source
  recording's duration, and re-encoding the final per-match clips. Grounded
  on original_source/clipcrab-io/src/shell.rs and on the
  exec.Command("ffmpeg", ...) idiom used throughout
  github.com/ausocean/av/device (see device/webcam.Start).
*/

package shell

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

// durationJSON mirrors the subset of `ffprobe -show_entries format=duration`
// JSON output this package needs.
type durationJSON struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// VideoDurationUs invokes ffprobe on fname and returns its duration in
// microseconds.
func VideoDurationUs(fname string) (int64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_entries", "format=duration",
		fname,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("shell: ffprobe: %w", err)
	}

	var dj durationJSON
	if err := json.Unmarshal(out, &dj); err != nil {
		return 0, fmt.Errorf("shell: parsing ffprobe output: %w", err)
	}
	secs, err := strconv.ParseFloat(dj.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("shell: parsing ffprobe duration %q: %w", dj.Format.Duration, err)
	}
	return int64(secs * 1_000_000), nil
}

// Pair is a (start, duration) microsecond segment to splice into a clip.
type Pair struct {
	StartUs    int64
	DurationUs int64
}

// ClipSegments invokes ffmpeg to concatenate the given segments of
// inputFile into a single re-encoded outputFile: AV1 video
// (libsvtav1, CRF 23) and Opus audio (96 kbps), matching
// original_source/clipcrab-io/src/shell.rs's clip_segments.
func ClipSegments(inputFile, outputFile string, pairs []Pair) error {
	if len(pairs) == 0 {
		return fmt.Errorf("shell: no segments to clip")
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, p := range pairs {
		args = append(args,
			"-ss", fmt.Sprintf("%f", float64(p.StartUs)/1_000_000.0),
			"-t", fmt.Sprintf("%f", float64(p.DurationUs)/1_000_000.0),
			"-i", inputFile,
		)
	}

	filter := ""
	for i := range pairs {
		filter += fmt.Sprintf("[%d:v][%d:a]", i, i)
	}
	filter += fmt.Sprintf("concat=n=%d:v=1:a=1[outv][outa]", len(pairs))

	args = append(args,
		"-filter_complex", filter,
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", "libsvtav1", "-crf", "23",
		"-c:a", "libopus", "-b:a", "96k",
		outputFile,
	)

	if err := exec.Command("ffmpeg", args...).Run(); err != nil {
		return fmt.Errorf("shell: ffmpeg clip of %s: %w", filepath.Base(outputFile), err)
	}
	return nil
}

/*
DESCRIPTION
  seek.go provides frame-accurate random access into the source recording.
  Grounded on original_source/clipcrab-io/src/seek.rs, whose comment this
  package's doc preserves the reasoning of: tearing an ffmpeg process up and
  down per sampled timestamp is expensive, so the file is opened once per
  worker and seeked within repeatedly instead.
*/

// Package seek wraps gocv's VideoCapture to provide frame-accurate seeking
// into a video file by microsecond timestamp. A Seeker owns a single
// underlying decoder/demuxer and, like the Rust FFMpegger it's grounded on,
// is not safe for concurrent use — the worker pool harness in
// project/pool gives every worker its own Seeker.
package seek

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Seeker extracts decoded frames from a single source file at arbitrary
// microsecond timestamps.
type Seeker struct {
	fname      string
	cap        *gocv.VideoCapture
	durationUs int64
}

// New opens fname for seeking and probes its duration from the capture's
// own frame count and FPS.
func New(fname string) (*Seeker, error) {
	cap, err := gocv.VideoCaptureFile(fname)
	if err != nil {
		return nil, fmt.Errorf("seek: opening %s: %w", fname, err)
	}

	fps := cap.Get(gocv.VideoCaptureFPS)
	frames := cap.Get(gocv.VideoCaptureFrameCount)
	var durationUs int64
	if fps > 0 {
		durationUs = int64(frames / fps * 1_000_000)
	}

	return &Seeker{fname: fname, cap: cap, durationUs: durationUs}, nil
}

// Close releases the underlying capture.
func (s *Seeker) Close() error { return s.cap.Close() }

// DurationUs is this Seeker's best estimate of the source's duration. The
// CLI entrypoint prefers ffprobe's answer (ingest/shell.VideoDurationUs) as
// the authoritative source; this is a fallback for callers that only have
// a Seeker in hand.
func (s *Seeker) DurationUs() int64 { return s.durationUs }

// ExtractFrame seeks to tsUs microseconds into the source and decodes the
// frame there into dst (which the caller owns and must Close). It returns
// an error if the seek or decode fails — workers surface this as a fatal
// TaskResult error per spec §7.2.
func (s *Seeker) ExtractFrame(tsUs int64, dst *gocv.Mat) error {
	ms := float64(tsUs) / 1000.0
	if !s.cap.Set(gocv.VideoCapturePosMsec, ms) {
		return fmt.Errorf("seek: could not seek %s to %d us", s.fname, tsUs)
	}
	if ok := s.cap.Read(dst); !ok || dst.Empty() {
		return fmt.Errorf("seek: could not decode frame at %d us in %s", tsUs, s.fname)
	}
	return nil
}

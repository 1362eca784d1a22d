package project

import (
	"testing"

	"github.com/guineawheek/clipcrab/detect"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func det(phase detect.MatchPhase, secondsRemaining int64) detect.MatchDetection {
	return detect.MatchDetection{Name: "Qualification 1", Time: secondsRemaining, Phase: phase}
}

func TestCalcStartNoDetections(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	m.CalcStart(&dumbLogger{})
	if m.StartUs != nil {
		t.Errorf("CalcStart with no during-detects: got StartUs=%v, want nil", *m.StartUs)
	}
}

// A tight cluster of during-match detections, all consistent with a single
// start time, should produce that start with no replay handling triggered.
func TestCalcStartSingleCluster(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	const startUs = 1_000_000_000
	// Three autonomous-phase readings a second apart, each implying the
	// same start via (ts - (150-remaining)*1e6).
	m.AddDetection(startUs+(150-149)*1_000_000, det(detect.PhaseAutonomous, 149))
	m.AddDetection(startUs+(150-148)*1_000_000, det(detect.PhaseAutonomous, 148))
	m.AddDetection(startUs+(150-147)*1_000_000, det(detect.PhaseAutonomous, 147))

	m.CalcStart(&dumbLogger{})
	if m.StartUs == nil {
		t.Fatal("CalcStart: got nil StartUs, want a value")
	}
	if *m.StartUs != startUs {
		t.Errorf("CalcStart = %d, want %d", *m.StartUs, startUs)
	}
}

// Detections spanning two widely-separated clusters (a live broadcast of
// the match, then a rebroadcast replay later) should pick the later,
// larger cluster's median as the real start.
func TestCalcStartReplayPicksLargerLaterCluster(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	const liveStart = 1_000_000_000
	const replayStart = 2_000_000_000

	// Small live cluster (2 points).
	m.AddDetection(liveStart+(150-149)*1_000_000, det(detect.PhaseAutonomous, 149))
	m.AddDetection(liveStart+(150-148)*1_000_000, det(detect.PhaseAutonomous, 148))

	// Larger replay cluster (5 points) broadcast later, clearing the
	// replay-cluster minimum size.
	for i, remaining := range []int64{149, 148, 147, 146, 145} {
		ts := replayStart + (150-remaining)*1_000_000 + int64(i)*0
		m.AddDetection(ts, det(detect.PhaseAutonomous, remaining))
	}

	m.CalcStart(&dumbLogger{})
	if m.StartUs == nil {
		t.Fatal("CalcStart: got nil StartUs, want a value")
	}
	if *m.StartUs != replayStart {
		t.Errorf("CalcStart = %d, want replay cluster's start %d", *m.StartUs, replayStart)
	}
}

func TestCalcResultScreenNoDetections(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	if _, ok := m.CalcResultScreen(); ok {
		t.Error("CalcResultScreen with no detections: want false")
	}
}

func TestCalcResultScreenSingleCluster(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	const base = 5_000_000_000
	for _, d := range []int64{0, 1_000_000, 2_000_000, 3_000_000} {
		m.AddResultsScreen(base + d)
	}

	seg, ok := m.CalcResultScreen()
	if !ok {
		t.Fatal("CalcResultScreen: want true")
	}
	wantStart := base - 13_000_000
	if seg.StartUs != wantStart {
		t.Errorf("segment start = %d, want %d", seg.StartUs, wantStart)
	}
	if seg.EndUs <= seg.StartUs {
		t.Errorf("segment end %d should be after start %d", seg.EndUs, seg.StartUs)
	}
}

func TestCalcResultScreenTooSmallClusterIgnored(t *testing.T) {
	m := NewMatch(detect.Qualification(1))
	m.AddResultsScreen(1_000_000)
	m.AddResultsScreen(2_000_000)
	// Only two points; below ResultScreenMinCluster of 3.
	if _, ok := m.CalcResultScreen(); ok {
		t.Error("CalcResultScreen with an undersized cluster: want false")
	}
}

func TestSegmentDuration(t *testing.T) {
	s := Segment{StartUs: 10, EndUs: 30}
	if got := s.Duration(); got != 20 {
		t.Errorf("Duration() = %d, want 20", got)
	}
	inverted := Segment{StartUs: 30, EndUs: 10}
	if got := inverted.Duration(); got != 0 {
		t.Errorf("Duration() of inverted segment = %d, want 0", got)
	}
}

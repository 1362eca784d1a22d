package coordinator

import (
	"testing"

	"github.com/guineawheek/clipcrab/config"
	"github.com/guineawheek/clipcrab/detect"
	"github.com/guineawheek/clipcrab/detect/qr"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

// drive pulls and resolves every AnalyzeFrame task with resolve until the
// coordinator transitions out of InitialScan, then returns the first task
// of the new state (without resolving it, so the caller can inspect it).
func drive(t *testing.T, p *OfflineEventProject, resolve func(Task) TaskResult) Task {
	t.Helper()
	for {
		task, ok := p.Next()
		if !ok {
			continue
		}
		if task.Kind != AnalyzeFrame {
			return task
		}
		p.ProcessSubmission(TaskSubmission{Task: task, TimeUs: task.TimeUs, Result: resolve(task)})
	}
}

func TestOfflineEventProjectScansThenClips(t *testing.T) {
	p := New(&dumbLogger{}, 0, 3_000_000, 1_000_000)

	resolve := func(task Task) TaskResult {
		switch task.TimeUs {
		case 0:
			return TaskResult{Kind: ResultMatchDetection, Detection: detect.MatchDetection{
				Name: "Qualification 1", Time: 150, Phase: detect.PhaseAutonomous,
			}}
		case 1_000_000:
			return TaskResult{Kind: ResultMatchDetection, Detection: detect.MatchDetection{
				Name: "Qualification 1", Time: 149, Phase: detect.PhaseAutonomous,
			}}
		default:
			return TaskResult{Kind: ResultNone}
		}
	}
	clipTask := drive(t, p, resolve)

	if p.state != stateClipMatches {
		t.Fatalf("after scan: state = %v, want stateClipMatches", p.state)
	}
	if clipTask.Kind != ClipMatch {
		t.Fatalf("queued task kind = %v, want ClipMatch", clipTask.Kind)
	}
	if clipTask.Key != detect.Qualification(1) {
		t.Errorf("clip task key = %v, want Qualification(1)", clipTask.Key)
	}
	if clipTask.MatchSegment.EndUs-clipTask.MatchSegment.StartUs != config.MatchClipDurationUs {
		t.Errorf("clip segment duration = %d, want %d", clipTask.MatchSegment.EndUs-clipTask.MatchSegment.StartUs, config.MatchClipDurationUs)
	}
}

func TestMatchKeyFromQRNonTiebreaker(t *testing.T) {
	got := matchKeyFromQR(qr.FTCEventsQR{Playoff: true, Num: 5, Tiebreaker: 0})
	want := detect.PlayoffMatch(5, 1)
	if got != want {
		t.Errorf("matchKeyFromQR(raw tb=0) = %+v, want %+v", got, want)
	}
}

func TestMatchKeyFromQRFirstTiebreaker(t *testing.T) {
	got := matchKeyFromQR(qr.FTCEventsQR{Playoff: true, Num: 5, Tiebreaker: 1})
	want := detect.PlayoffMatch(5, 2)
	if got != want {
		t.Errorf("matchKeyFromQR(raw tb=1) = %+v, want %+v", got, want)
	}
}

func TestMatchKeyFromQRSecondTiebreaker(t *testing.T) {
	got := matchKeyFromQR(qr.FTCEventsQR{Playoff: true, Num: 5, Tiebreaker: 2})
	want := detect.PlayoffMatch(5, 3)
	if got != want {
		t.Errorf("matchKeyFromQR(raw tb=2) = %+v, want %+v", got, want)
	}
}

func TestMatchKeyFromQRQualification(t *testing.T) {
	got := matchKeyFromQR(qr.FTCEventsQR{Playoff: false, Num: 7})
	want := detect.Qualification(7)
	if got != want {
		t.Errorf("matchKeyFromQR(qualification) = %+v, want %+v", got, want)
	}
}

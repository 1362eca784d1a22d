/*
DESCRIPTION
  coordinator.go is the event-project state machine: it decides which
  timestamps to sample, folds worker results into the match table, and once
  scanning is done, emits clipping requests. Grounded on
  original_source/src/worker.rs's OfflineEventProject, finished out past the
  todo!()s the original leaves in its ClipMatches state.
*/

package coordinator

import (
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/guineawheek/clipcrab/config"
	"github.com/guineawheek/clipcrab/detect"
	"github.com/guineawheek/clipcrab/detect/qr"
	"github.com/guineawheek/clipcrab/project"
)

// TaskKind tags the variant of a Task.
type TaskKind int

const (
	// AnalyzeFrame analyzes the frame at TimeUs for a HUD or results-QR
	// reading.
	AnalyzeFrame TaskKind = iota
	// ClipMatch emits the final clip for Key.
	ClipMatch
	// Done tells a worker to exit its loop.
	Done
)

// Task is a unit of work dispatched to a worker.
type Task struct {
	Kind TaskKind

	// Valid when Kind == AnalyzeFrame.
	TimeUs int64

	// Valid when Kind == ClipMatch.
	Key           detect.MatchKey
	MatchSegment  project.Segment
	ResultSegment *project.Segment
}

func (t Task) String() string {
	switch t.Kind {
	case AnalyzeFrame:
		return fmt.Sprintf("AnalyzeFrame(%d)", t.TimeUs)
	case ClipMatch:
		return fmt.Sprintf("ClipMatch(%s)", t.Key)
	case Done:
		return "Done"
	default:
		return "Task(?)"
	}
}

// taskKey identifies a Task for the in_flight set. Two AnalyzeFrame tasks at
// the same timestamp, or two ClipMatch tasks for the same key, are the same
// unit of work in flight.
type taskKey struct {
	kind TaskKind
	time int64
	key  detect.MatchKey
}

func (t Task) key() taskKey { return taskKey{kind: t.Kind, time: t.TimeUs, key: t.Key} }

// ResultKind tags the variant of a TaskResult.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultMatchDetection
	ResultMatchQR
	ResultClipDone
	ResultError
)

// TaskResult is what a worker reports back for a Task.
type TaskResult struct {
	Kind ResultKind

	Detection detect.MatchDetection // valid when Kind == ResultMatchDetection
	QR        qr.FTCEventsQR        // valid when Kind == ResultMatchQR
	Err       string                // valid when Kind == ResultError
}

// TaskSubmission pairs a completed Task with the TimeUs its result was read
// at and its TaskResult. Workers copy Task.TimeUs into TimeUs, so it is only
// meaningful for AnalyzeFrame submissions; ClipMatch submissions carry zero.
type TaskSubmission struct {
	Task   Task
	TimeUs int64
	Result TaskResult
}

type projectState int

const (
	stateInitialScan projectState = iota
	stateClipMatches
	stateDone
)

// OfflineEventProject is the pull-interface state machine described in
// spec §4.8: InitialScan (1Hz frame analysis) -> ClipMatches (clip
// emission) -> Done.
type OfflineEventProject struct {
	log logging.Logger

	state      projectState
	durationUs int64

	nextTasks []Task
	inFlight  map[taskKey]Task

	matches map[detect.MatchKey]*project.Match
	order   []detect.MatchKey // insertion order, for deterministic iteration

	clipsEmitted []Task // ClipMatch tasks dispatched, for test/inspection
}

// New seeds an OfflineEventProject with one AnalyzeFrame task every
// sampleIntervalUs from startUs up to (not including) durationUs; a
// non-positive sampleIntervalUs falls back to config.SampleIntervalUs (1Hz).
func New(log logging.Logger, startUs, durationUs int64, sampleIntervalUs int64) *OfflineEventProject {
	p := &OfflineEventProject{
		log:        log,
		durationUs: durationUs,
		inFlight:   make(map[taskKey]Task),
		matches:    make(map[detect.MatchKey]*project.Match),
	}
	if sampleIntervalUs <= 0 {
		sampleIntervalUs = config.SampleIntervalUs
	}
	for t := startUs; t < durationUs; t += sampleIntervalUs {
		p.nextTasks = append(p.nextTasks, Task{Kind: AnalyzeFrame, TimeUs: t})
	}
	return p
}

// Next pumps the state machine, returning the next Task to dispatch, or
// false if the coordinator is waiting on in-flight workers (or finished).
func (p *OfflineEventProject) Next() (Task, bool) {
	if len(p.nextTasks) > 0 {
		t := p.nextTasks[0]
		p.nextTasks = p.nextTasks[1:]
		p.inFlight[t.key()] = t
		return t, true
	}
	if len(p.inFlight) > 0 {
		return Task{}, false
	}

	switch p.state {
	case stateInitialScan:
		p.enterClipMatches()
		if len(p.nextTasks) == 0 {
			// Nothing to clip, so ClipMatches is already drained.
			p.state = stateDone
		}
	case stateClipMatches:
		p.state = stateDone
	case stateDone:
	}

	if len(p.nextTasks) > 0 {
		t := p.nextTasks[0]
		p.nextTasks = p.nextTasks[1:]
		p.inFlight[t.key()] = t
		return t, true
	}
	return Task{}, false
}

// Done reports whether the coordinator has finished and Next will never
// again produce a Task.
func (p *OfflineEventProject) Done() bool {
	return p.state == stateDone && len(p.nextTasks) == 0 && len(p.inFlight) == 0
}

// InFlightCount is used by the main loop to log progress while waiting on
// results.
func (p *OfflineEventProject) InFlightCount() int { return len(p.inFlight) }

// WaitingOnResult reports whether the driver loop has to block on a result
// before Next can produce more work: Next only ever returns false while
// in-flight tasks are outstanding, or once there is truly nothing left to
// do, so in-flight count alone distinguishes the two.
func (p *OfflineEventProject) WaitingOnResult() bool {
	return len(p.inFlight) > 0
}

// enterClipMatches computes start/result-screen inference for every match
// in the table and enqueues ClipMatch tasks for those whose start could be
// determined, per spec §4.8's ClipMatches state.
func (p *OfflineEventProject) enterClipMatches() {
	p.state = stateClipMatches
	for _, key := range p.order {
		m := p.matches[key]
		m.CalcStart(p.log)
		resultSeg, hasResult := m.CalcResultScreen()

		if m.StartUs == nil {
			if p.log != nil {
				p.log.Info("no inferred start; skipping clip", "match", key.String(), "has_result_screen", hasResult)
			}
			continue
		}

		matchSeg := project.Segment{StartUs: *m.StartUs, EndUs: *m.StartUs + config.MatchClipDurationUs}
		task := Task{Kind: ClipMatch, Key: key, MatchSegment: matchSeg}
		if hasResult {
			rs := resultSeg
			task.ResultSegment = &rs
		}
		p.nextTasks = append(p.nextTasks, task)
		p.clipsEmitted = append(p.clipsEmitted, task)
	}
}

// ProcessSubmission removes sub.Task from in-flight and folds its result
// into the match table (InitialScan) or clip-emission bookkeeping
// (ClipMatches).
func (p *OfflineEventProject) ProcessSubmission(sub TaskSubmission) {
	delete(p.inFlight, sub.Task.key())

	switch p.state {
	case stateInitialScan:
		p.foldInitialScan(sub)
	case stateClipMatches:
		p.foldClipMatches(sub)
	case stateDone:
		// Spurious late submission after shutdown; nothing to do.
	}
}

func (p *OfflineEventProject) foldInitialScan(sub TaskSubmission) {
	switch sub.Result.Kind {
	case ResultNone:
		return
	case ResultMatchDetection:
		key, err := detect.ParseMatchKey(sub.Result.Detection.Name)
		if err != nil {
			if p.log != nil {
				p.log.Debug("detection name did not parse as a match key", "name", sub.Result.Detection.Name, "error", err.Error())
			}
			return
		}
		p.matchFor(key).AddDetection(sub.TimeUs, sub.Result.Detection)
	case ResultMatchQR:
		key := matchKeyFromQR(sub.Result.QR)
		p.matchFor(key).AddResultsScreen(sub.TimeUs)
	case ResultError:
		// Fatal per spec §7.2: a decode failure at an arbitrary timestamp
		// indicates file corruption that would bias every downstream
		// inference.
		panic(fmt.Sprintf("coordinator: worker reported fatal error for %s: %s", sub.Task, sub.Result.Err))
	}
}

func (p *OfflineEventProject) foldClipMatches(sub TaskSubmission) {
	switch sub.Result.Kind {
	case ResultClipDone:
		if p.log != nil {
			p.log.Info("clip emitted", "match", sub.Task.Key.String())
		}
	case ResultError:
		panic(fmt.Sprintf("coordinator: worker reported fatal error clipping %s: %s", sub.Task.Key, sub.Result.Err))
	}
}

func (p *OfflineEventProject) matchFor(key detect.MatchKey) *project.Match {
	m, ok := p.matches[key]
	if !ok {
		m = project.NewMatch(key)
		p.matches[key] = m
		p.order = append(p.order, key)
	}
	return m
}

// Matches exposes the current match table, keyed by MatchKey, for callers
// that need to inspect results after a run completes (tests, the debug
// plot renderer).
func (p *OfflineEventProject) Matches() map[detect.MatchKey]*project.Match {
	return p.matches
}

// matchKeyFromQR converts a results-QR's raw (unshifted) tiebreaker count
// into detect.MatchKey's shifted convention (see detect.ParseMatchKey's doc
// comment for why the two disagree).
func matchKeyFromQR(q qr.FTCEventsQR) detect.MatchKey {
	if !q.Playoff {
		return detect.Qualification(q.Num)
	}
	tb := q.Tiebreaker
	if tb == 0 {
		tb = 1
	} else {
		tb++
	}
	return detect.PlayoffMatch(q.Num, tb)
}

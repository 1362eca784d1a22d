/*
DESCRIPTION
  model.go provides the per-match accumulator (Match) and the timestamped-
  value and segment types it's built from. Grounded on
  original_source/src/model.rs; WithTime keeps its "order and dedupe solely
  by timestamp" behavior (see spec §9's note on why — and its caveat that a
  compound (timestamp, sequence) key would be the fix if sampling cadence
  ever increases beyond 1Hz).
*/

// Package project owns everything needed to turn raw, noisy per-frame
// detections into one record per match played: when it started, and when
// its results screen should be clipped from.
package project

import (
	"sort"

	"github.com/ausocean/utils/logging"

	"github.com/guineawheek/clipcrab/config"
	"github.com/guineawheek/clipcrab/detect"
)

// WithTime pairs a value with the frame timestamp (microseconds from the
// start of the source) it was read at.
type WithTime[T any] struct {
	FrameTsUs int64
	Value     T
}

// Segment is a non-negative-duration [start,end) span of the source
// recording, in microseconds.
type Segment struct {
	StartUs, EndUs int64
}

// Duration returns the segment's length, clamped to non-negative.
func (s Segment) Duration() int64 {
	if d := s.EndUs - s.StartUs; d > 0 {
		return d
	}
	return 0
}

// timeSet stores WithTime values ordered by timestamp, deduplicating
// entries that land on the same microsecond — the underlying BTreeSet this
// is grounded on compares WithTime solely by frame_ts_us, so a second
// detection at a timestamp already present silently replaces the first.
type timeSet[T any] struct {
	byTs map[int64]T
}

func newTimeSet[T any]() *timeSet[T] { return &timeSet[T]{byTs: make(map[int64]T)} }

func (s *timeSet[T]) insert(ts int64, v T) { s.byTs[ts] = v }

func (s *timeSet[T]) len() int { return len(s.byTs) }

// sorted returns this set's contents ordered ascending by timestamp.
func (s *timeSet[T]) sorted() []WithTime[T] {
	out := make([]WithTime[T], 0, len(s.byTs))
	for ts, v := range s.byTs {
		out = append(out, WithTime[T]{FrameTsUs: ts, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FrameTsUs < out[j].FrameTsUs })
	return out
}

// Match is the per-MatchKey accumulator of detection evidence.
type Match struct {
	Key detect.MatchKey

	beforeDetects *timeSet[detect.MatchDetection] // phase == NotStarted
	duringDetects *timeSet[detect.MatchDetection] // phase in {Autonomous,Transition,Teleop}
	afterDetects  *timeSet[detect.MatchDetection] // phase == Ended

	resultScreenDetects map[int64]struct{}

	StartUs             *int64
	ResultScreenSegment *Segment
}

// NewMatch returns an empty accumulator for key.
func NewMatch(key detect.MatchKey) *Match {
	return &Match{
		Key:                 key,
		beforeDetects:       newTimeSet[detect.MatchDetection](),
		duringDetects:       newTimeSet[detect.MatchDetection](),
		afterDetects:        newTimeSet[detect.MatchDetection](),
		resultScreenDetects: make(map[int64]struct{}),
	}
}

// AddDetection routes a HUD detection into the before/during/after bucket
// its phase determines.
func (m *Match) AddDetection(frameTsUs int64, d detect.MatchDetection) {
	switch d.Phase {
	case detect.PhaseNotStarted:
		m.beforeDetects.insert(frameTsUs, d)
	case detect.PhaseAutonomous, detect.PhaseTransition, detect.PhaseTeleop:
		m.duringDetects.insert(frameTsUs, d)
	case detect.PhaseEnded:
		m.afterDetects.insert(frameTsUs, d)
	}
}

// AddResultsScreen records a timestamp at which this match's results QR was
// decoded.
func (m *Match) AddResultsScreen(tsUs int64) {
	m.resultScreenDetects[tsUs] = struct{}{}
}

// DuringDetectCount reports how many during-match detections have been
// folded in, for diagnostics.
func (m *Match) DuringDetectCount() int { return m.duringDetects.len() }

// Timeline exposes every timestamp folded into m, bucketed the way
// CalcStart/CalcResultScreen see them. It exists for project/plot's
// diagnostic renderer and tests; nothing in the accumulation logic itself
// needs it.
type Timeline struct {
	BeforeUs       []int64
	DuringUs       []int64
	AfterUs        []int64
	ResultScreenUs []int64
}

func (m *Match) Timeline() Timeline {
	collect := func(ts *timeSet[detect.MatchDetection]) []int64 {
		sorted := ts.sorted()
		out := make([]int64, len(sorted))
		for i, wt := range sorted {
			out[i] = wt.FrameTsUs
		}
		return out
	}

	rs := make([]int64, 0, len(m.resultScreenDetects))
	for t := range m.resultScreenDetects {
		rs = append(rs, t)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })

	return Timeline{
		BeforeUs:       collect(m.beforeDetects),
		DuringUs:       collect(m.duringDetects),
		AfterUs:        collect(m.afterDetects),
		ResultScreenUs: rs,
	}
}

// CalcStart infers the match's wall-clock start from during_detects,
// filling StartUs. It logs and leaves StartUs nil if during_detects is
// empty.
func (m *Match) CalcStart(log logging.Logger) {
	during := m.duringDetects.sorted()
	if len(during) == 0 {
		if log != nil {
			log.Warning("match has no during-match detects", "match", m.Key.String())
		}
		return
	}

	estStarts := make([]int64, 0, len(during))
	for _, det := range during {
		var elapsed int64
		switch det.Value.Phase {
		case detect.PhaseAutonomous:
			elapsed = config.AutonomousTotalSeconds - det.Value.Time
		case detect.PhaseTransition:
			elapsed = config.TransitionTotalSeconds - det.Value.Time
		case detect.PhaseTeleop:
			elapsed = config.TeleopTotalSeconds - det.Value.Time
		default:
			panic("project: during_detects contains a non-during phase; this is a bug in Match.AddDetection routing")
		}
		estStarts = append(estStarts, det.FrameTsUs-elapsed*1_000_000)
	}
	sort.Slice(estStarts, func(i, j int) bool { return estStarts[i] < estStarts[j] })

	span := estStarts[len(estStarts)-1] - estStarts[0]
	if span < config.ReplaySpanThresholdUs {
		start := estStarts[len(estStarts)/2]
		m.StartUs = &start
		return
	}

	// A replay is suspected: cluster into groups separated by more than
	// ClusterSeparationUs from their first element.
	clusters := clusterTimes(estStarts, func(v int64, cluster []int64) bool {
		return abs64(v-cluster[0]) > config.ClusterSeparationUs
	})
	if log != nil {
		log.Warning("possible replay detected", "match", m.Key.String(), "clusters", len(clusters))
	}

	allSmall := true
	for _, c := range clusters {
		if len(c) >= config.ReplayClusterMinSize {
			allSmall = false
			break
		}
	}

	var best *int64
	for _, c := range clusters {
		if !allSmall && len(c) < config.ReplayClusterMinSize {
			continue
		}
		median := c[len(c)/2]
		if best == nil || median > *best {
			v := median
			best = &v
		}
	}
	m.StartUs = best
}

// CalcResultScreen clusters result_screen_detects (points within
// ClusterSeparationUs of the cluster's *last* element belong together),
// takes the last cluster with at least ResultScreenMinCluster points, and
// returns the results-screen clipping window it implies.
func (m *Match) CalcResultScreen() (Segment, bool) {
	ts := make([]int64, 0, len(m.resultScreenDetects))
	for t := range m.resultScreenDetects {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	clusters := clusterTimes(ts, func(v int64, cluster []int64) bool {
		return abs64(v-cluster[len(cluster)-1]) > config.ClusterSeparationUs
	})

	var last []int64
	for _, c := range clusters {
		if len(c) >= config.ResultScreenMinCluster {
			last = c
		}
	}
	if last == nil {
		return Segment{}, false
	}

	first, end := last[0], last[len(last)-1]
	trailEnd := first + config.ResultScreenTrailUs
	if alt := end - config.ResultScreenTeardownGap; alt < trailEnd {
		trailEnd = alt
	}
	seg := Segment{
		StartUs: first - config.ResultScreenLeadInUs,
		EndUs:   trailEnd,
	}
	m.ResultScreenSegment = &seg
	return seg, true
}

// clusterTimes partitions a sorted slice of timestamps into clusters,
// starting a new cluster whenever sepCriteria(value, currentCluster) is
// true for the value about to be appended.
func clusterTimes(sorted []int64, sepCriteria func(v int64, cluster []int64) bool) [][]int64 {
	var clusters [][]int64
	var current []int64
	for _, v := range sorted {
		if current == nil {
			current = []int64{v}
			continue
		}
		if sepCriteria(v, current) {
			clusters = append(clusters, current)
			current = []int64{v}
			continue
		}
		current = append(current, v)
	}
	if current != nil {
		clusters = append(clusters, current)
	}
	return clusters
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

/*
DESCRIPTION
  pool.go is the worker pool harness: a fixed number of goroutines, each
  owning a private Seeker and DecodeDetector, pulling Tasks off a channel
  and reporting TaskResults back. Grounded on original_source/src/worker.rs's
  worker loop and on the goroutine/channel idiom revid.go uses for its own
  concurrent pipelines (see e.g. revid.go's use of a done channel and
  sync.WaitGroup to fan work out and collect it back in).
*/

// Package pool drives a bounded set of worker goroutines against an
// OfflineEventProject: it pulls tasks from the coordinator, dispatches them
// to idle workers, and feeds completed TaskSubmissions back in, until the
// coordinator reports it's done.
package pool

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"

	"github.com/guineawheek/clipcrab/detect/qr"
	"github.com/guineawheek/clipcrab/detect/season/s2025"
	"github.com/guineawheek/clipcrab/ingest/seek"
	"github.com/guineawheek/clipcrab/ingest/shell"
	"github.com/guineawheek/clipcrab/project/coordinator"
)

// unboundedQueue relays values from send to recv without ever blocking the
// sender, mirroring the crossbeam_channel::unbounded channels
// original_source/src/main.rs dispatches tasks and results over. The
// coordinator pre-seeds thousands of AnalyzeFrame tasks up front; with a
// plain unbuffered channel, the driver's own dispatch send blocks as soon as
// every worker is busy, and a worker finishing a task can't hand its result
// back because the driver isn't there to receive it — a circular wait.
// Buffering the channel doesn't fix this in general (the backlog can exceed
// any fixed size), so instead a pump goroutine holds the backlog in a slice.
type unboundedQueue[T any] struct {
	send chan<- T
	recv <-chan T
}

func newUnboundedQueue[T any]() unboundedQueue[T] {
	in := make(chan T)
	out := make(chan T)
	go pumpUnboundedQueue(in, out)
	return unboundedQueue[T]{send: in, recv: out}
}

func pumpUnboundedQueue[T any](in chan T, out chan T) {
	var buf []T
	for {
		if len(buf) == 0 {
			v, ok := <-in
			if !ok {
				close(out)
				return
			}
			buf = append(buf, v)
			continue
		}
		select {
		case v, ok := <-in:
			if !ok {
				for _, v := range buf {
					out <- v
				}
				close(out)
				return
			}
			buf = append(buf, v)
		case out <- buf[0]:
			buf = buf[1:]
		}
	}
}

// worker owns the per-goroutine state a Task needs: its own decoder handle
// (not safe to share across goroutines) and its own detector (the season
// detector's OCR engines hold gosseract clients that serialize internally,
// but giving each worker its own avoids contending on that lock across
// workers too).
type worker struct {
	id       int
	seeker   *seek.Seeker
	detector *s2025.DecodeDetector
}

// Pool runs a fixed number of workers against a single source file.
type Pool struct {
	sourceFile string
	outDir     string
	log        logging.Logger

	workers []*worker
}

// New opens numWorkers independent Seekers and DecodeDetectors against
// sourceFile. Close releases all of them.
func New(sourceFile, outDir string, numWorkers int, log logging.Logger) (*Pool, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &Pool{sourceFile: sourceFile, outDir: outDir, log: log}
	for i := 0; i < numWorkers; i++ {
		sk, err := seek.New(sourceFile)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: worker %d: %w", i, err)
		}
		det, err := s2025.New()
		if err != nil {
			sk.Close()
			p.Close()
			return nil, fmt.Errorf("pool: worker %d: %w", i, err)
		}
		p.workers = append(p.workers, &worker{id: i, seeker: sk, detector: det})
	}
	return p, nil
}

// Close releases every worker's Seeker and DecodeDetector.
func (p *Pool) Close() error {
	for _, w := range p.workers {
		if w.detector != nil {
			w.detector.Close()
		}
		if w.seeker != nil {
			w.seeker.Close()
		}
	}
	return nil
}

// Run drives coord to completion: dispatching Tasks to workers and folding
// TaskResults back in, until coord.Done(). It panics if any worker reports a
// fatal error, per spec §7.2's "panic propagated" exit behavior — callers
// running this from main should recover at the top level if they want a
// clean exit code instead of a stack trace.
//
// The dispatch loop mirrors original_source/src/main.rs: when the
// coordinator has no task ready to hand out, it waits on results (logging a
// heartbeat every second it's still waiting) rather than trying to push
// another task, so dispatching a task and draining a result never contend
// for the same goroutine.
func (p *Pool) Run(coord *coordinator.OfflineEventProject) error {
	tasks := newUnboundedQueue[coordinator.Task]()
	results := newUnboundedQueue[coordinator.TaskSubmission]()

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			p.runWorker(w, tasks.recv, results.send)
		}(w)
	}

	for {
		t, ok := coord.Next()
		if ok {
			tasks.send <- t
			continue
		}
		if !coord.WaitingOnResult() {
			break
		}
		select {
		case sub := <-results.recv:
			coord.ProcessSubmission(sub)
		case <-time.After(time.Second):
			if p.log != nil {
				p.log.Info("waiting on in-flight tasks", "count", coord.InFlightCount())
			}
		}
	}

	close(tasks.send)
	wg.Wait()
	close(results.send)
	return nil
}

// runWorker is a single worker's main loop: pull a Task, execute it,
// submit the TaskResult, repeat until tasks closes.
func (p *Pool) runWorker(w *worker, tasks <-chan coordinator.Task, results chan<- coordinator.TaskSubmission) {
	for t := range tasks {
		sub := coordinator.TaskSubmission{Task: t, TimeUs: t.TimeUs}
		switch t.Kind {
		case coordinator.AnalyzeFrame:
			sub.Result = p.analyzeFrame(w, t.TimeUs)
		case coordinator.ClipMatch:
			sub.Result = p.clipMatch(t)
		case coordinator.Done:
			return
		}
		results <- sub
	}
}

// analyzeFrame seeks to tsUs, runs the season detector, and falls back to
// the results-QR detector if the season detector found nothing — matching
// worker.rs's "run season detector, else QR detector" ordering.
func (p *Pool) analyzeFrame(w *worker, tsUs int64) coordinator.TaskResult {
	frame := gocv.NewMat()
	defer frame.Close()

	if err := w.seeker.ExtractFrame(tsUs, &frame); err != nil {
		return coordinator.TaskResult{Kind: coordinator.ResultError, Err: err.Error()}
	}

	if det, ok := w.detector.Detect(frame); ok {
		return coordinator.TaskResult{Kind: coordinator.ResultMatchDetection, Detection: det}
	}
	if q, ok := qr.Detect(frame); ok {
		return coordinator.TaskResult{Kind: coordinator.ResultMatchQR, QR: q}
	}
	return coordinator.TaskResult{Kind: coordinator.ResultNone}
}

// clipMatch shells out to ffmpeg to emit the final clip for t.Key.
func (p *Pool) clipMatch(t coordinator.Task) coordinator.TaskResult {
	pairs := []shell.Pair{{StartUs: t.MatchSegment.StartUs, DurationUs: t.MatchSegment.Duration()}}
	if t.ResultSegment != nil {
		pairs = append(pairs, shell.Pair{StartUs: t.ResultSegment.StartUs, DurationUs: t.ResultSegment.Duration()})
	}

	outFile := filepath.Join(p.outDir, clipFileName(t.Key.String()))
	if err := shell.ClipSegments(p.sourceFile, outFile, pairs); err != nil {
		return coordinator.TaskResult{Kind: coordinator.ResultError, Err: err.Error()}
	}
	return coordinator.TaskResult{Kind: coordinator.ResultClipDone}
}

// clipFileName turns a MatchKey's display string into a filesystem-safe
// "{key}.mkv" name, per spec §6's "{out_dir}/{key}.mkv" contract.
func clipFileName(key string) string {
	return strings.ReplaceAll(key, " ", "_") + ".mkv"
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/styledtext"
)

// preemptCooldown bounds preemption to at most once per window, per
// §4.6's live-lock guard under rapid cursor motion.
const preemptCooldown = 200 * time.Millisecond

const defaultJobTimeoutS = 60

// Config configures a new Engine.
type Config struct {
	Workers      int
	ExePath      string   // path to re-exec for worker subprocesses
	WorkerArgs   []string // extra argv appended when launching a worker, e.g. the worker-mode flag
	CodebaseRoot string
	Log          *applog.Buffer
}

// workerSlot tracks one managed worker subprocess and what it's doing.
type workerSlot struct {
	proc        *workerProc
	generation  int // incremented on respawn; recv goroutines check this to detect staleness
	busy        bool
	preempting  bool
	job         *Job
	startedAt   time.Time
	timeoutTimer *time.Timer
}

// Engine is the Job Engine (§4.6). All scheduling state is owned by a
// single goroutine draining cmds, the same single-threaded-cooperative
// pattern the Presenter's AppLoop uses for its own event multiplexer —
// it keeps queue/worker bookkeeping free of locks without blocking on
// the actual subprocess I/O, which happens in per-worker goroutines.
type Engine struct {
	cfg Config

	cmds    chan func(*Engine)
	results chan domain.Result
	stop    chan struct{}
	done    chan struct{}

	queue       *priorityQueue
	seq         int64
	nextJobID   uint64
	paused      bool
	lastPreempt time.Time
	focusPath   domain.Path
	focusTool   string
	distanceOf  func(path domain.Path, toolName string) int

	workers []*workerSlot
}

// New spawns cfg.Workers worker subprocesses and starts the dispatcher.
// Workers <= 0 defaults to the host CPU count, per §4.6.
func New(cfg Config) (*Engine, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	e := &Engine{
		cfg:     cfg,
		cmds:    make(chan func(*Engine), 64),
		results: make(chan domain.Result, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		queue:   newPriorityQueue(),
	}

	for i := 0; i < cfg.Workers; i++ {
		slot, err := e.spawnSlot()
		if err != nil {
			e.shutdownWorkers()
			return nil, fmt.Errorf("engine: spawn worker %d: %w", i, err)
		}
		e.workers = append(e.workers, slot)
	}

	go e.run()
	return e, nil
}

func (e *Engine) spawnSlot() (*workerSlot, error) {
	proc, err := spawnWorker(e.cfg.ExePath, e.cfg.WorkerArgs)
	if err != nil {
		return nil, err
	}
	slot := &workerSlot{proc: proc}
	e.watchSlot(slot, slot.generation)
	return slot, nil
}

// watchSlot starts the goroutine that blocks reading JobResult frames
// from one worker and feeds them back through cmds. gen pins this
// goroutine to the worker instance alive when it started; after a
// respawn the slot's generation advances and this goroutine's results
// are discarded once it notices (a race window is irrelevant since the
// old proc's pipes are closed on respawn, which unblocks recv with an
// error immediately).
func (e *Engine) watchSlot(slot *workerSlot, gen int) {
	proc := slot.proc
	go func() {
		for {
			result, err := proc.recv()
			if err != nil {
				e.post(func(e *Engine) { e.onWorkerIOError(slot, gen) })
				return
			}
			e.post(func(e *Engine) { e.onJobResult(slot, gen, result) })
		}
	}()
}

func (e *Engine) post(f func(*Engine)) {
	select {
	case e.cmds <- f:
	case <-e.stop:
	}
}

// run is the dispatcher's single goroutine: every mutation to queue or
// worker state happens here.
func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case <-e.stop:
			return
		case cmd := <-e.cmds:
			cmd(e)
			e.dispatch()
		}
	}
}

// Results returns the channel of completed Results, ready to fold into
// the Presenter's model.
func (e *Engine) Results() <-chan domain.Result { return e.results }

// Enqueue submits a job for (path, descriptor) at the given snapshot
// key. Duplicate suppression (§4.6): a no-op if a job for the same path
// and descriptor with an identical snapshot_key is already pending or
// running.
func (e *Engine) Enqueue(path domain.Path, d *domain.ToolDescriptor, key domain.SnapshotKey) {
	e.post(func(e *Engine) {
		if e.hasDuplicate(path, d, key) {
			return
		}
		e.seq++
		e.nextJobID++
		j := &Job{
			Path:        path,
			Descriptor:  d,
			SnapshotKey: key,
			EnqueueSeq:  e.seq,
			jobID:       e.nextJobID,
		}
		e.scoreNewJob(j)
		e.queue.push(j)
	})
}

func (e *Engine) hasDuplicate(path domain.Path, d *domain.ToolDescriptor, key domain.SnapshotKey) bool {
	for _, j := range e.queue.items {
		if j.Path == path && j.Descriptor == d && j.SnapshotKey == key {
			return true
		}
	}
	for _, s := range e.workers {
		if s.busy && s.job.Path == path && s.job.Descriptor == d && s.job.SnapshotKey == key {
			return true
		}
	}
	return false
}

func (e *Engine) scoreNewJob(j *Job) {
	toolName := ""
	if j.Descriptor != nil {
		toolName = j.Descriptor.Name
	}
	switch {
	case j.Path == e.focusPath:
		j.Tier = TierFocus
	case e.focusTool != "" && toolName == e.focusTool:
		j.Tier = TierSameTool
	default:
		j.Tier = TierProximity
		if e.distanceOf != nil {
			j.Distance = e.distanceOf(j.Path, toolName)
		}
	}
}

// SetFocus updates the cursor's (path, tool) for priority scoring and
// re-scores the whole queue, per §4.6's "priority refresh on every
// cursor movement". distanceOf is supplied by the caller, which owns
// the grid geometry the engine itself has no notion of.
func (e *Engine) SetFocus(path domain.Path, toolName string, distanceOf func(path domain.Path, toolName string) int) {
	e.post(func(e *Engine) {
		e.focusPath = path
		e.focusTool = toolName
		e.distanceOf = distanceOf
		e.queue.rescore(path, toolName, distanceOf)
		e.maybePreempt()
	})
}

// Pause stops new dispatches; running jobs finish normally, per §4.6.
func (e *Engine) Pause() { e.post(func(e *Engine) { e.paused = true }) }

// Resume restarts dispatch.
func (e *Engine) Resume() { e.post(func(e *Engine) { e.paused = false }) }

// Close terminates all workers and stops the dispatcher.
func (e *Engine) Close() {
	close(e.stop)
	<-e.done
	e.shutdownWorkers()
	close(e.results)
}

func (e *Engine) shutdownWorkers() {
	for _, s := range e.workers {
		if s == nil || s.proc == nil {
			continue
		}
		s.proc.terminate()
	}
}

// dispatch assigns queued jobs to idle workers while not paused.
func (e *Engine) dispatch() {
	if e.paused {
		return
	}
	for _, s := range e.workers {
		if s.busy || s.preempting {
			continue
		}
		j := e.queue.popTop()
		if j == nil {
			return
		}
		e.assign(s, j)
	}
}

func (e *Engine) assign(s *workerSlot, j *Job) {
	if j.Descriptor != nil && len(j.Descriptor.Argv.Program) == 0 && isSyntheticTool(j.Descriptor.Name) {
		e.runSynthetic(j)
		return
	}

	timeoutS := j.Descriptor.TimeoutS
	if timeoutS <= 0 {
		timeoutS = defaultJobTimeoutS
	}

	spec := domain.JobSpec{
		JobID:              j.jobID,
		Path:               j.Path.String(),
		ToolName:           j.Descriptor.Name,
		Argv:               j.Descriptor.Argv.Build(filepath.Join(e.cfg.CodebaseRoot, j.Path.String()), j.Path.String()),
		TimeoutS:           timeoutS,
		ClassifierKind:     j.Descriptor.ClassifierKind,
		ExitCodeTable:      j.Descriptor.ExitCodeTable,
		StdoutEmptyMeansOk: j.Descriptor.StdoutEmptyMeansOk,
		SnapshotKey:        j.SnapshotKey,
	}

	s.busy = true
	s.job = j
	s.startedAt = time.Now()
	s.timeoutTimer = time.AfterFunc(time.Duration(timeoutS)*time.Second, func() {
		e.post(func(e *Engine) { e.onTimeout(s) })
	})

	if err := s.proc.send(spec); err != nil {
		e.onWorkerIOError(s, s.generation)
	}
}

func isSyntheticTool(name string) bool { return name == "contents" || name == "metadata" }

// runSynthetic handles the "contents"/"metadata" tools directly, without
// occupying a worker subprocess, per SPEC_FULL.md §4.5 (no language
// tooling behind these, so there is nothing worth isolating in a
// subprocess).
func (e *Engine) runSynthetic(j *Job) {
	started := time.Now()
	abs := filepath.Join(e.cfg.CodebaseRoot, j.Path.String())

	var body styledtext.StyledText
	status := domain.Ok
	switch j.Descriptor.Name {
	case "contents":
		data, err := os.ReadFile(abs)
		if err != nil {
			status = domain.Error
			body = styledtext.New(err.Error(), styledtext.Style{})
		} else {
			body = styledtext.ParseANSI(string(data), styledtext.Style{})
		}
	case "metadata":
		info, err := os.Stat(abs)
		if err != nil {
			status = domain.Error
			body = styledtext.New(err.Error(), styledtext.Style{})
		} else {
			body = styledtext.New(fmt.Sprintf("size=%d mode=%s mtime=%s", info.Size(), info.Mode(), info.ModTime()), styledtext.Style{})
		}
	}

	e.results <- domain.Result{
		Path:        j.Path,
		ToolName:    j.Descriptor.Name,
		SnapshotKey: j.SnapshotKey,
		Status:      status,
		Body:        body,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
}

// onJobResult handles a JobResult frame from a worker.
func (e *Engine) onJobResult(s *workerSlot, gen int, r domain.JobResult) {
	if gen != s.generation || !s.busy {
		return // stale: this slot was respawned since the job was assigned
	}
	j := s.job
	e.finishSlot(s)

	e.results <- domain.Result{
		Path:        j.Path,
		ToolName:    j.Descriptor.Name,
		SnapshotKey: j.SnapshotKey,
		Status:      r.Status,
		Body:        styledtext.ParseANSI(string(r.Body), styledtext.Style{}),
		StartedAt:   time.Unix(0, r.StartedAtUnixNS),
		FinishedAt:  time.Unix(0, r.FinishedAtUnixNS),
	}
}

func (e *Engine) finishSlot(s *workerSlot) {
	if s.timeoutTimer != nil {
		s.timeoutTimer.Stop()
	}
	s.busy = false
	s.job = nil
	s.timeoutTimer = nil
}

// onTimeout implements §4.6's timeout protocol: terminate the worker,
// synthesize a TimedOut result, and respawn a fresh worker for the slot.
func (e *Engine) onTimeout(s *workerSlot) {
	if !s.busy {
		return
	}
	j := s.job
	e.finishSlot(s)
	s.preempting = true // reuse the flag: the forthcoming IO error is expected, not a crash
	timeoutS := j.Descriptor.TimeoutS
	if timeoutS <= 0 {
		timeoutS = defaultJobTimeoutS
	}

	go func(slot *workerSlot, proc *workerProc) {
		proc.terminate()
		e.post(func(e *Engine) { e.respawn(slot) })
	}(s, s.proc)

	e.results <- domain.Result{
		Path:        j.Path,
		ToolName:    j.Descriptor.Name,
		SnapshotKey: j.SnapshotKey,
		Status:      domain.TimedOut,
		Body:        styledtext.New(fmt.Sprintf("%s timed out after %ds", j.Descriptor.Name, timeoutS), styledtext.Style{}),
		StartedAt:   s.startedAt,
		FinishedAt:  time.Now(),
	}
}

// onWorkerIOError fires when a worker's stdout pipe closes or errors,
// meaning either the subprocess died unexpectedly, or (if s.preempting)
// we killed it ourselves for preemption or a timeout and this is the
// expected tail of that shutdown.
func (e *Engine) onWorkerIOError(s *workerSlot, gen int) {
	if gen != s.generation {
		return
	}
	if s.preempting {
		return // respawn() already scheduled by the caller that set this flag
	}

	// An unexpected death: retry the job once, then report Error.
	j := s.job
	e.finishSlot(s)
	e.respawnSync(s)

	if j == nil {
		return
	}
	if j.retried {
		e.results <- domain.Result{
			Path:        j.Path,
			ToolName:    j.Descriptor.Name,
			SnapshotKey: j.SnapshotKey,
			Status:      domain.Error,
			Body:        styledtext.New(j.Descriptor.Name+" worker crashed twice", styledtext.Style{}),
			StartedAt:   s.startedAt,
			FinishedAt:  time.Now(),
		}
		return
	}
	j.retried = true
	e.queue.push(j)
}

// respawn replaces a slot's dead/killed process with a fresh one and
// resumes watching it, then tries to dispatch onto it immediately.
func (e *Engine) respawn(s *workerSlot) {
	s.preempting = false
	e.respawnSync(s)
	e.dispatch()
}

func (e *Engine) respawnSync(s *workerSlot) {
	s.generation++
	proc, err := spawnWorker(e.cfg.ExePath, e.cfg.WorkerArgs)
	if err != nil {
		if e.cfg.Log != nil {
			e.cfg.Log.Error("engine: failed to respawn worker: " + err.Error())
		}
		return
	}
	s.proc = proc
	e.watchSlot(s, s.generation)
}

// maybePreempt implements §4.6's preemption rule: if the top of the
// queue is tier 0 and some running job is lower priority, kill the
// lowest-priority running job and give its slot to the focus job, at
// most once per preemptCooldown.
func (e *Engine) maybePreempt() {
	if e.paused {
		return
	}
	top := e.queue.peek()
	if top == nil || top.Tier != TierFocus {
		return
	}
	if time.Since(e.lastPreempt) < preemptCooldown {
		return
	}

	var victim *workerSlot
	for _, s := range e.workers {
		if !s.busy || s.preempting || s.job == nil {
			continue
		}
		if s.job.Path == top.Path && s.job.Descriptor == top.Descriptor {
			continue // already running the very job we'd preempt for
		}
		if s.job.Tier <= TierFocus {
			continue // already at or above focus priority, not worth preempting
		}
		if victim == nil || s.job.Tier > victim.job.Tier {
			victim = s
		}
	}
	if victim == nil {
		return
	}

	e.lastPreempt = time.Now()
	requeued := victim.job
	victim.preempting = true
	e.finishSlot(victim)
	e.queue.push(requeued)

	go func(slot *workerSlot, proc *workerProc) {
		proc.terminate()
		e.post(func(e *Engine) { e.respawn(slot) })
	}(victim, victim.proc)
}

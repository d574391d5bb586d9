package engine

import (
	"bufio"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/wire"
	"golang.org/x/sys/unix"
)

// killGrace is how long terminate() waits for a clean exit after SIGTERM
// before escalating to SIGKILL, per §4.6's timeout protocol.
const killGrace = 2 * time.Second

// workerProc manages one long-lived worker subprocess: the monitor
// binary re-exec'd in worker mode, speaking JobSpec/JobResult frames
// (internal/wire) over its stdin/stdout. Each worker runs in its own
// process group so terminate() can signal the whole tree a tool might
// have forked, not just the immediate child.
type workerProc struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu sync.Mutex
}

// spawnWorker launches exePath with the given extra args (typically the
// worker-mode flag) as a new process group leader.
func spawnWorker(exePath string, args []string) (*workerProc, error) {
	cmd := exec.Command(exePath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &workerProc{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}, nil
}

// send transmits one JobSpec frame to the worker.
func (w *workerProc) send(spec domain.JobSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return wire.WriteFrame(w.stdin, spec)
}

// recv blocks for the worker's next JobResult frame. The caller is
// expected to run this in its own goroutine, since it blocks for as
// long as the tool subprocess the worker is running takes.
func (w *workerProc) recv() (domain.JobResult, error) {
	var r domain.JobResult
	err := wire.ReadFrame(w.stdout, &r)
	return r, err
}

// pgid returns the worker's process group id, or (0, false) if the
// group can't be determined (e.g. already exited).
func (w *workerProc) pgid() (int, bool) {
	pid := w.cmd.Process.Pid
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return 0, false
	}
	return pgid, true
}

// terminate implements §4.6's kill protocol: SIGTERM the process group,
// wait killGrace for a clean exit, then SIGKILL. Safe to call more than
// once; later calls are no-ops once the process has exited.
func (w *workerProc) terminate() {
	waitDone := make(chan struct{})
	go func() {
		_ = w.cmd.Wait()
		close(waitDone)
	}()

	if pgid, ok := w.pgid(); ok {
		_ = unix.Kill(-pgid, unix.SIGTERM)
	} else {
		_ = w.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-waitDone:
		return
	case <-time.After(killGrace):
	}

	if pgid, ok := w.pgid(); ok {
		_ = unix.Kill(-pgid, unix.SIGKILL)
	} else {
		_ = w.cmd.Process.Kill()
	}
	<-waitDone
}

// closed reports whether the underlying process has exited.
func (w *workerProc) closed() bool {
	return w.cmd.ProcessState != nil
}

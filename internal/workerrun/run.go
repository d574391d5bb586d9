// Package workerrun implements the worker-side half of the job engine's
// subprocess protocol (§4.6): the monitor binary, re-exec'd with the
// worker-mode flag, reads domain.JobSpec frames from stdin, runs the
// named analyzer as its own child process, classifies the result, and
// writes a domain.JobResult frame back on stdout.
//
// Running each tool as a fresh child of the worker (rather than inside
// the worker's own goroutines) is what gives the engine's SIGTERM/
// SIGKILL process-group protocol something to act on: killing the
// worker's process group takes the in-flight tool down with it.
package workerrun

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/wire"
)

// defaultTimeout is used when a JobSpec carries a non-positive TimeoutS,
// which should not happen in practice but must not hang the worker
// forever if it does.
const defaultTimeout = 60 * time.Second

// Run is the worker's main loop: it blocks reading frames from r and
// writing results to w until r is exhausted or yields a non-EOF error
// (the parent closed the pipe, most often because the worker is being
// torn down). It returns nil on a clean EOF.
func Run(r io.Reader, w io.Writer) error {
	for {
		var spec domain.JobSpec
		if err := wire.ReadFrame(r, &spec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		result := execute(spec)
		if err := wire.WriteFrame(w, result); err != nil {
			return err
		}
	}
}

// execute runs one JobSpec's argv to completion (or until its deadline)
// and classifies the outcome. A job with an empty Argv is a synthetic
// tool that the engine itself handles and should never reach a worker;
// execute reports it as an error defensively rather than panicking.
func execute(spec domain.JobSpec) domain.JobResult {
	started := nowUnixNS()

	if len(spec.Argv) == 0 {
		return domain.JobResult{
			JobID:            spec.JobID,
			Status:           domain.Error,
			Body:             []byte("workerrun: synthetic tool reached a worker process"),
			StartedAtUnixNS:  started,
			FinishedAtUnixNS: nowUnixNS(),
		}
	}

	timeout := time.Duration(spec.TimeoutS) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	run := domain.ExitRun{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		finished := nowUnixNS()
		return domain.JobResult{
			JobID:            spec.JobID,
			Status:           domain.TimedOut,
			Body:             timeoutBody(spec, stdout.Bytes(), stderr.Bytes()),
			StartedAtUnixNS:  started,
			FinishedAtUnixNS: finished,
		}
	case runErr == nil:
		run.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			run.ExitCode = exitErr.ExitCode()
			run.Crashed = exitErr.ExitCode() < 0 // negative means killed by signal
		} else {
			// Program not found, permission denied, etc: not a classified
			// tool outcome, report as a run error rather than guessing a
			// status out of the exit-code table.
			finished := nowUnixNS()
			return domain.JobResult{
				JobID:            spec.JobID,
				Status:           domain.Error,
				Body:             []byte(runErr.Error()),
				StartedAtUnixNS:  started,
				FinishedAtUnixNS: finished,
			}
		}
	}

	desc := domain.ToolDescriptor{
		ClassifierKind:     spec.ClassifierKind,
		ExitCodeTable:      spec.ExitCodeTable,
		StdoutEmptyMeansOk: spec.StdoutEmptyMeansOk,
	}
	classification := desc.ClassifyExit(run)

	body := stdout.Bytes()
	if len(body) == 0 {
		body = stderr.Bytes()
	} else if stderr.Len() > 0 {
		body = append(append(append([]byte{}, stdout.Bytes()...), '\n'), stderr.Bytes()...)
	}

	return domain.JobResult{
		JobID:            spec.JobID,
		Status:           classification.Status,
		Body:             body,
		StartedAtUnixNS:  started,
		FinishedAtUnixNS: nowUnixNS(),
	}
}

func timeoutBody(spec domain.JobSpec, stdout, stderr []byte) []byte {
	msg := "timed out after " + time.Duration(spec.TimeoutS*int(time.Second)).String()
	if len(stdout) == 0 && len(stderr) == 0 {
		return []byte(msg)
	}
	out := append([]byte(msg+"\n"), stdout...)
	if len(stderr) > 0 {
		out = append(append(out, '\n'), stderr...)
	}
	return out
}

// nowUnixNS is the one place Run touches wall-clock time, kept narrow so
// it reads obviously as timestamping rather than scheduling logic.
func nowUnixNS() int64 { return time.Now().UnixNano() }

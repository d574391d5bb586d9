package workerrun

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/wire"
	"github.com/stretchr/testify/require"
)

// roundTrip runs Run against a pipe fed with specs, collects the
// resulting JobResult frames, then closes the write side so Run returns.
func roundTrip(t *testing.T, specs []domain.JobSpec) []domain.JobResult {
	t.Helper()

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = Run(reqR, respW)
	}()

	go func() {
		for _, s := range specs {
			_ = wire.WriteFrame(reqW, s)
		}
		_ = reqW.Close()
	}()

	var results []domain.JobResult
	for range specs {
		var r domain.JobResult
		require.NoError(t, wire.ReadFrame(respR, &r))
		results = append(results, r)
	}
	respW.Close()
	wg.Wait()
	require.NoError(t, runErr)
	return results
}

func TestRunClassifiesExitCodeSuccess(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:          1,
		Argv:           []string{"true"},
		TimeoutS:       5,
		ClassifierKind: domain.ClassifyExitCode,
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Ok, results[0].Status)
}

func TestRunClassifiesExitCodeFailureAsError(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:          2,
		Argv:           []string{"false"},
		TimeoutS:       5,
		ClassifierKind: domain.ClassifyExitCode,
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Error, results[0].Status)
}

func TestRunClassifiesExitCodeViaTable(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:          3,
		Argv:           []string{"false"},
		TimeoutS:       5,
		ClassifierKind: domain.ClassifyExitCode,
		ExitCodeTable:  map[int]domain.Status{1: domain.Problem},
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Problem, results[0].Status)
}

func TestRunClassifiesStdoutRegexEmptyMeansOk(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:              4,
		Argv:               []string{"printf", ""},
		TimeoutS:           5,
		ClassifierKind:     domain.ClassifyStdoutRegex,
		StdoutEmptyMeansOk: true,
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Ok, results[0].Status)
}

func TestRunClassifiesStdoutRegexNonEmptyMeansProblem(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:              5,
		Argv:               []string{"printf", "diagnostic\n"},
		TimeoutS:           5,
		ClassifierKind:     domain.ClassifyStdoutRegex,
		StdoutEmptyMeansOk: true,
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Problem, results[0].Status)
	require.True(t, bytes.Contains(results[0].Body, []byte("diagnostic")))
}

func TestRunReportsSyntheticJobAsError(t *testing.T) {
	specs := []domain.JobSpec{{JobID: 6}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.Error, results[0].Status)
}

func TestRunTimesOutLongRunningCommand(t *testing.T) {
	specs := []domain.JobSpec{{
		JobID:          7,
		Argv:           []string{"sleep", "5"},
		TimeoutS:       1,
		ClassifierKind: domain.ClassifyExitCode,
	}}
	results := roundTrip(t, specs)
	require.Len(t, results, 1)
	require.Equal(t, domain.TimedOut, results[0].Status)
}

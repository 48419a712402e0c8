package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibexico/pagesim/paging"
)

const classicRefs = "0 1 2 0 1 3 0 1 2 3"

// execute runs the root command with isolated output buffers and no env file
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunPrintsSummaryAndTable(t *testing.T) {
	out, _, err := execute(t, "run", "-p", "lru", "-f", "3", classicRefs)
	require.NoError(t, err)

	assert.Contains(t, out, "Algorithm: LRU\n")
	assert.Contains(t, out, "Sequence: 0 1 2 0 1 3 0 1 2 3\n")
	assert.Contains(t, out, "Number of Page Faults: 6\n")
	assert.Contains(t, out, "ref   | 0 1 2 0 1 3 0 1 2 3\n")
	assert.NotContains(t, out, "\x1b[", "colour is only used on a terminal")
}

func TestRunSplitArguments(t *testing.T) {
	out, _, err := execute(t, "run", "-p", "opt", "0", "1", "2", "0", "1", "3", "0", "1", "2", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of Page Faults: 5\n")
}

func TestRunUsesConfiguredFrames(t *testing.T) {
	out, _, err := execute(t, "run", classicRefs)
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithm: FIFO\n")
	assert.Contains(t, out, "Frame Size: 3\n")
	assert.Contains(t, out, "Number of Page Faults: 8\n")

	t.Setenv("PAGESIM_FRAMES", "4")
	out, _, err = execute(t, "run", "1 2 3 4 1 2 5 1 2 3 4 5")
	require.NoError(t, err)
	assert.Contains(t, out, "Frame Size: 4\n")
	assert.Contains(t, out, "Number of Page Faults: 10\n")
}

func TestRunInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	require.NoError(t, os.WriteFile(path, []byte("0,1,2,0\n1,3,0,1\n2,3\n"), 0644))

	out, _, err := execute(t, "run", "-p", "lru", "-i", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of References: 10\n")
	assert.Contains(t, out, "Number of Page Faults: 6\n")
}

func TestRunRejectsBadInput(t *testing.T) {
	_, _, err := execute(t, "run", "1 x 2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrInvalidReference))

	_, _, err = execute(t, "run", "-f", "0", "1 2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrInvalidCapacity))

	_, _, err = execute(t, "run", "-p", "clock", "1 2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrUnknownPolicy))
}

func TestRunDebugLogging(t *testing.T) {
	_, logs, err := execute(t, "--log-level", "debug", "--log-format", "json", "run", "1 2 1")
	require.NoError(t, err)

	assert.Contains(t, logs, `"run_id":"`)
	assert.Contains(t, logs, `"msg":"simulation finished"`)
	assert.Contains(t, logs, `"msg":"reference"`)
	assert.Contains(t, logs, `"frames":"[1, 2, -]"`)
}

func TestConfigFileLimitsReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagesim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frames": 2, "max_references": 5}`), 0644))

	_, _, err := execute(t, "--config", path, "run", classicRefs)
	require.Error(t, err)
	assert.True(t, paging.IsErrorCode(err, paging.ErrCodeInvalidReference))

	out, _, err := execute(t, "--config", path, "run", "1 2 3")
	require.NoError(t, err)
	assert.Contains(t, out, "Frame Size: 2\n")
}

func TestInvalidEnvFrames(t *testing.T) {
	t.Setenv("PAGESIM_FRAMES", "abc")
	_, _, err := execute(t, "run", "1 2 3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrInvalidCapacity))
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "--log-level", "verbose", "run", "1")
	require.Error(t, err)
	assert.True(t, paging.IsErrorCode(err, paging.ErrCodeInvalidConfig))
}

func TestCompare(t *testing.T) {
	out, _, err := execute(t, "compare", "-f", "3", classicRefs)
	require.NoError(t, err)

	assert.Contains(t, out, "FIFO        8      2     80.00%\n")
	assert.Contains(t, out, "LRU         6      4     60.00%\n")
	assert.Contains(t, out, "OPT         5      5     50.00%  best\n")
	assert.NotContains(t, out, "ref   |")
}

func TestCompareSelectedPoliciesWithTables(t *testing.T) {
	out, _, err := execute(t, "compare", "--policies", "lru,fifo", "--tables", classicRefs)
	require.NoError(t, err)

	assert.Contains(t, out, "Algorithm: LRU\nref   | 0 1 2 0 1 3 0 1 2 3\n")
	assert.Contains(t, out, "Algorithm: FIFO\nref   | 0 1 2 0 1 3 0 1 2 3\n")
	assert.Contains(t, out, "LRU         6      4     60.00%  best\n")
	assert.NotContains(t, out, "OPT")
}

func TestSweepReportsBeladyAnomaly(t *testing.T) {
	out, logs, err := execute(t, "sweep", "-p", "fifo", "--min", "1", "--max", "5", "1 2 3 4 1 2 5 1 2 3 4 5")
	require.NoError(t, err)

	assert.Contains(t, out, "       4     10  anomaly (3 frames: 9 faults)\n")
	assert.Contains(t, out, "Belady anomalies: 1\n")
	assert.Contains(t, logs, "Belady's anomaly detected")

	_, _, err = execute(t, "sweep", "--min", "4", "--max", "2", "1 2")
	require.Error(t, err)
}

func TestSweepRejectsOversizedRange(t *testing.T) {
	_, _, err := execute(t, "sweep", "--min", "1", "--max", "1073741824", "1 2")
	require.Error(t, err)
	assert.True(t, paging.IsErrorCode(err, paging.ErrCodeInvalidRange))
}

func TestSweepNoAnomalyForLRU(t *testing.T) {
	out, logs, err := execute(t, "sweep", "-p", "lru", "--min", "1", "--max", "5", "1 2 3 4 1 2 5 1 2 3 4 5")
	require.NoError(t, err)
	assert.Contains(t, out, "Belady anomalies: 0\n")
	assert.NotContains(t, logs, "Belady's anomaly detected")
}

func TestExportAndShow(t *testing.T) {
	dir := t.TempDir()
	for _, compression := range []string{"none", "lz4", "snappy", "best"} {
		t.Run(compression, func(t *testing.T) {
			path := filepath.Join(dir, compression+".bin")
			out, logs, err := execute(t, "export", "-p", "opt", "-f", "3", "-o", path, "--compression", compression, classicRefs)
			require.NoError(t, err)
			assert.Contains(t, out, "wrote "+path)
			assert.Contains(t, logs, "trace exported")

			out, _, err = execute(t, "show", path)
			require.NoError(t, err)
			assert.Contains(t, out, "Algorithm: OPT\n")
			assert.Contains(t, out, "Number of Page Faults: 5\n")
			assert.Contains(t, out, "ref   | 0 1 2 0 1 3 0 1 2 3\n")
		})
	}
}

func TestShowRejectsCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a trace archive"), 0644))

	_, _, err := execute(t, "show", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, paging.ErrTraceCorrupted))

	_, _, err = execute(t, "show")
	require.Error(t, err)
}

func TestMetricsLoggedOnExit(t *testing.T) {
	_, logs, err := execute(t, "--metrics", "compare", classicRefs)
	require.NoError(t, err)
	assert.Contains(t, logs, "Simulation metrics")

	_, logs, err = execute(t, "compare", classicRefs)
	require.NoError(t, err)
	assert.NotContains(t, logs, "Simulation metrics")
}

package render

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibexico/pagesim/paging"
)

func simulate(t *testing.T, policy paging.Policy, refs string, capacity int) *paging.Trace {
	t.Helper()
	parsed, err := paging.ParseReferenceString(refs)
	require.NoError(t, err)
	trace, err := paging.Simulate(policy, parsed, capacity)
	require.NoError(t, err)
	return trace
}

func TestTablePlain(t *testing.T) {
	trace := simulate(t, paging.PolicyFIFO, "1 2 1 3", 2)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, trace, Options{Width: 80}))

	expected := strings.Join([]string{
		"ref   | 1 2 1 3",
		"F0    | 1 1 1 3",
		"F1    | - 2 2 2",
		"fault | F F   F",
		"evict |       1",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestTableWideCells(t *testing.T) {
	trace := simulate(t, paging.PolicyLRU, "10 7 10", 1)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, trace, Options{Width: 80}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ref   | 10  7 10", lines[0])
	assert.Equal(t, "F0    | 10  7 10", lines[1])
	assert.Equal(t, "fault |  F  F  F", lines[2])
	assert.Equal(t, "evict |    10  7", lines[3])
}

func TestTableWrapsToWidth(t *testing.T) {
	trace := simulate(t, paging.PolicyOPT, "0 1 2 0 1 3 0 1 2 3", 3)

	var buf bytes.Buffer
	// label (5) + " |" leaves 8 columns of width 2 -> 4 references per chunk
	require.NoError(t, Table(&buf, trace, Options{Width: 15}))

	chunks := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n\n")
	require.Len(t, chunks, 3)
	assert.Equal(t, "ref   | 0 1 2 0", strings.Split(chunks[0], "\n")[0])
	assert.Equal(t, "ref   | 1 3 0 1", strings.Split(chunks[1], "\n")[0])
	assert.Equal(t, "ref   | 2 3", strings.Split(chunks[2], "\n")[0])

	for _, c := range chunks {
		assert.Len(t, strings.Split(c, "\n"), 6, "each chunk has ref, 3 frames, fault and evict rows")
	}
}

func TestTableColorHighlightsReplacedCell(t *testing.T) {
	trace := simulate(t, paging.PolicyFIFO, "1 2 3", 2)

	var plain, colored bytes.Buffer
	require.NoError(t, Table(&plain, trace, Options{Width: 80}))
	require.NoError(t, Table(&colored, trace, Options{Width: 80, Color: true}))

	assert.NotContains(t, plain.String(), "\x1b[")
	assert.Contains(t, colored.String(), "\x1b[")
	// red for the cell that received page 3
	assert.Contains(t, colored.String(), "\x1b[31;1m3")
}

func TestTableEmptyTrace(t *testing.T) {
	trace := simulate(t, paging.PolicyLRU, "", 3)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, trace, Options{}))
	assert.Equal(t, "(no references)\n", buf.String())
}

func TestTableZeroCapacity(t *testing.T) {
	trace := simulate(t, paging.PolicyFIFO, "4 4", 0)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, trace, Options{Width: 80}))
	assert.Equal(t, "ref   | 4 4\nfault | F F\nevict |\n", buf.String())
}

func TestDetectWidthNonTerminal(t *testing.T) {
	assert.Equal(t, DefaultWidth, DetectWidth(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, DefaultWidth, DetectWidth(f))
}

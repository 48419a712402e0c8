package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/sibexico/pagesim/paging"
)

// Summary writes the run header: algorithm, sequence, frame size and fault totals
func Summary(w io.Writer, trace *paging.Trace) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Algorithm: %s\n", trace.Policy)
	fmt.Fprintf(&b, "Sequence: %s\n", paging.FormatReferences(trace.References()))
	fmt.Fprintf(&b, "Frame Size: %d\n", trace.Capacity)
	fmt.Fprintf(&b, "Number of References: %d\n", trace.Len())
	fmt.Fprintf(&b, "Number of Page Faults: %d\n", trace.Faults)
	fmt.Fprintf(&b, "Fault Rate: %.2f%%\n", trace.FaultRate()*100)

	_, err := io.WriteString(w, b.String())
	return err
}

// Comparison writes one line per policy and marks the policy with fewest faults
func Comparison(w io.Writer, cmp *paging.Comparison, opts Options) error {
	pal := newPalette(opts.Color)
	best, _ := cmp.Best()

	var b strings.Builder
	fmt.Fprintf(&b, "Frame Size: %d\n", cmp.Capacity)
	fmt.Fprintf(&b, "%-6s %6s %6s %10s\n", "Policy", "Faults", "Hits", "Fault Rate")
	for i, p := range cmp.Policies {
		t := cmp.Traces[i]
		line := fmt.Sprintf("%-6s %6d %6d %9.2f%%", p, t.Faults, t.Hits(), t.FaultRate()*100)
		if p == best {
			line += "  " + pal.best.Sprint("best")
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Sweep writes the fault count per capacity and flags Belady anomalies
func Sweep(w io.Writer, policy paging.Policy, points []paging.SweepPoint, opts Options) error {
	pal := newPalette(opts.Color)
	anomalies := paging.BeladyAnomalies(points)

	flagged := make(map[int]paging.Anomaly, len(anomalies))
	for _, a := range anomalies {
		flagged[a.To.Capacity] = a
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Algorithm: %s\n", policy)
	fmt.Fprintf(&b, "%8s %6s\n", "Frames", "Faults")
	for _, p := range points {
		line := fmt.Sprintf("%8d %6d", p.Capacity, p.Faults)
		if a, ok := flagged[p.Capacity]; ok {
			line += "  " + pal.warning.Sprintf("anomaly (%d frames: %d faults)", a.From.Capacity, a.From.Faults)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Belady anomalies: %d\n", len(anomalies))

	_, err := io.WriteString(w, b.String())
	return err
}

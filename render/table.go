// Package render prints simulation traces as text tables.
//
// Rendering only reads a trace; which cell was written on a fault is taken
// from Step.SlotIndex, and the removed page from Step.Evicted.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/sibexico/pagesim/paging"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 80

// Options controls table output
type Options struct {
	Color bool // highlight references and replaced cells
	Width int  // maximum line width, 0 to detect from the writer
}

type palette struct {
	reference *color.Color
	replaced  *color.Color
	best      *color.Color
	warning   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		reference: color.New(color.FgBlue, color.Bold),
		replaced:  color.New(color.FgRed, color.Bold),
		best:      color.New(color.FgGreen),
		warning:   color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.reference, p.replaced, p.best, p.warning} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// cell is one table entry; text is measured before colouring
type cell struct {
	text  string
	style *color.Color
}

type row struct {
	label string
	cells []cell
}

// Table writes the reference row, one row per frame slot, then fault and eviction rows.
// Columns wrap to fit the line width.
func Table(w io.Writer, trace *paging.Trace, opts Options) error {
	if trace.Len() == 0 {
		_, err := fmt.Fprintln(w, "(no references)")
		return err
	}

	pal := newPalette(opts.Color)
	rows := buildRows(trace, pal)

	labelWidth, cellWidth := 0, 1
	for _, r := range rows {
		labelWidth = max(labelWidth, len(r.label))
		for _, c := range r.cells {
			cellWidth = max(cellWidth, len(c.text))
		}
	}

	width := opts.Width
	if width <= 0 {
		width = DetectWidth(w)
	}
	perChunk := max(1, (width-labelWidth-2)/(cellWidth+1))

	var b strings.Builder
	for start := 0; start < trace.Len(); start += perChunk {
		end := min(start+perChunk, trace.Len())
		if start > 0 {
			b.WriteByte('\n')
		}
		for _, r := range rows {
			var line strings.Builder
			fmt.Fprintf(&line, "%-*s |", labelWidth, r.label)
			for _, c := range r.cells[start:end] {
				pad := strings.Repeat(" ", 1+cellWidth-len(c.text))
				line.WriteString(pad)
				if c.style != nil && c.text != "" {
					line.WriteString(c.style.Sprint(c.text))
				} else {
					line.WriteString(c.text)
				}
			}
			b.WriteString(strings.TrimRight(line.String(), " "))
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func buildRows(trace *paging.Trace, pal palette) []row {
	n := trace.Len()
	refs := row{label: "ref", cells: make([]cell, n)}
	frames := make([]row, trace.Capacity)
	for i := range frames {
		frames[i] = row{label: "F" + strconv.Itoa(i), cells: make([]cell, n)}
	}
	faults := row{label: "fault", cells: make([]cell, n)}
	evicted := row{label: "evict", cells: make([]cell, n)}

	for col, s := range trace.Steps {
		refs.cells[col] = cell{text: strconv.Itoa(int(s.Reference)), style: pal.reference}
		for i, f := range s.Frames {
			c := cell{text: f.String()}
			if s.Fault && i == s.SlotIndex {
				c.style = pal.replaced
			}
			frames[i].cells[col] = c
		}
		if s.Fault {
			faults.cells[col] = cell{text: "F"}
		}
		if s.Evicted.Valid {
			evicted.cells[col] = cell{text: s.Evicted.String(), style: pal.replaced}
		}
	}

	rows := make([]row, 0, len(frames)+3)
	rows = append(rows, refs)
	rows = append(rows, frames...)
	return append(rows, faults, evicted)
}

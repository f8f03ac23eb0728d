package main

import (
	"fmt"
	"io"
	"math"

	"github.com/Lepecin/dlm-dissertation/score"
	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"
)

func newTable(out io.Writer, style string) table.Writer {
	w := table.NewWriter()
	w.SetOutputMirror(out)
	switch style {
	case "bold":
		w.SetStyle(table.StyleBold)
	case "double":
		w.SetStyle(table.StyleDouble)
	case "light":
		w.SetStyle(table.StyleLight)
	case "round":
		w.SetStyle(table.StyleRounded)
	default:
		w.SetStyle(table.StyleDefault)
	}
	return w
}

func cell(v float64) any {
	if math.IsNaN(v) {
		return "NULL"
	}
	return fmt.Sprintf("%.4f", v)
}

// bandCells returns the value and half width of b at time, or blanks.
func bandCells(b *score.Band, time int) (any, any) {
	if b == nil {
		return "", ""
	}
	for i, t := range b.Times {
		if t == time {
			return cell(b.Values[i]), cell(b.HalfWidth[i])
		}
	}
	return "", ""
}

// renderBands writes one row per time with the observation, when there is
// one, and every band holding that time. Bands are given in the order
// evolved, filtered, smoothed, predicted.
func renderBands(out io.Writer, style string, observed []float64, evolved, filtered, smoothed, predicted *score.Band) {
	w := newTable(out, style)
	w.AppendHeader(table.Row{"TIME", "OBSERVED", "EVOLVED", "±", "FILTERED", "±", "SMOOTHED", "±", "PREDICTED", "±"})
	last := len(observed)
	if predicted != nil && len(predicted.Times) > 0 {
		last = max(last, predicted.Times[len(predicted.Times)-1])
	}
	for time := 1; time <= last; time++ {
		row := table.Row{time, ""}
		if time <= len(observed) {
			row[1] = cell(observed[time-1])
		}
		for _, b := range []*score.Band{evolved, filtered, smoothed, predicted} {
			v, h := bandCells(b, time)
			row = append(row, v, h)
		}
		w.AppendRow(row)
	}
	w.Render()
}

// renderMatrix prints title on its own line ahead of the table; go-pretty
// wraps a table title to the table width.
func renderMatrix(out io.Writer, style, title string, m mat.Matrix) {
	fmt.Fprintln(out, title)
	w := newTable(out, style)
	r, c := m.Dims()
	header := table.Row{""}
	for j := 0; j < c; j++ {
		header = append(header, j)
	}
	w.AppendHeader(header)
	for i := 0; i < r; i++ {
		row := table.Row{i}
		for j := 0; j < c; j++ {
			row = append(row, cell(m.At(i, j)))
		}
		w.AppendRow(row)
	}
	w.Render()
}

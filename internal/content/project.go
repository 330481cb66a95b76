package content

import "strings"

// Placeholder tokens for segments with no textual representation.
const (
	graphPlaceholder = "[graph]"
	imagePlaceholder = "[image]"
)

// LatexString flattens a segment list into a single string for
// math-capable consumers (grading prompts, search). Math bodies are
// wrapped in $...$; tables render as tab/newline-delimited cells.
// Projections are lossy and one-directional: empty input yields "",
// not the sentinel.
func LatexString(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Type {
		case KindText:
			b.WriteString(s.Text)
		case KindMath:
			b.WriteString("$")
			b.WriteString(s.Latex)
			b.WriteString("$")
		case KindTable:
			b.WriteString(tableString(s.Rows, true))
		case KindGraph:
			b.WriteString(graphPlaceholder)
		case KindImage:
			b.WriteString("![")
			b.WriteString(s.Alt)
			b.WriteString("](")
			b.WriteString(s.URL)
			b.WriteString(")")
		case KindImageRef:
			b.WriteString(imagePlaceholder)
		}
	}
	return b.String()
}

// PlainText is the delimiter-free projection: math contributes its raw
// LaTeX body, graphs and images contribute bracketed placeholders. Used
// where no math rendering happens downstream.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Type {
		case KindText:
			b.WriteString(s.Text)
		case KindMath:
			b.WriteString(s.Latex)
		case KindTable:
			b.WriteString(tableString(s.Rows, false))
		case KindGraph:
			b.WriteString(graphPlaceholder)
		case KindImage, KindImageRef:
			b.WriteString(imagePlaceholder)
		}
	}
	return b.String()
}

func tableString(rows [][]Cell, delimitMath bool) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteString("\t")
			}
			b.WriteString(cellString(cell, delimitMath))
		}
	}
	return b.String()
}

func cellString(c Cell, delimitMath bool) string {
	var b strings.Builder
	for _, in := range c {
		switch in.Type {
		case KindMath:
			if delimitMath {
				b.WriteString("$")
				b.WriteString(in.Latex)
				b.WriteString("$")
			} else {
				b.WriteString(in.Latex)
			}
		default:
			b.WriteString(in.Text)
		}
	}
	return b.String()
}

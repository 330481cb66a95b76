package content

import (
	"fmt"
	"math"
	"strconv"
)

// NormalizeSegment coerces a loosely-typed candidate (a decoded JSON value,
// a partial client payload) into a fully valid segment. If the type tag is
// unrecognized the result is an empty segment of fallback kind. It never
// fails: anomalies are repaired, not rejected.
func NormalizeSegment(raw any, fallback Kind) Segment {
	m, ok := asMap(raw)
	if !ok {
		return fallbackSegment(fallback)
	}
	switch Kind(asString(m["type"])) {
	case KindText:
		return Segment{Type: KindText, ID: idOr(m["id"]), Text: asString(m["text"])}
	case KindMath:
		return Segment{Type: KindMath, ID: idOr(m["id"]), Latex: asString(m["latex"])}
	case KindTable:
		return normalizeTable(m)
	case KindGraph:
		return normalizeGraph(m)
	case KindImage:
		return Segment{Type: KindImage, ID: idOr(m["id"]), URL: asString(m["url"]), Alt: asString(m["alt"])}
	case KindImageRef:
		return normalizeImageRef(m)
	default:
		return fallbackSegment(fallback)
	}
}

func fallbackSegment(k Kind) Segment {
	if k == KindMath {
		return NewMath("")
	}
	return NewText("")
}

// --- table ---

// normalizeTable enforces a rectangular grid: every row is reconciled to
// the column count of the first row (short rows padded with empty text
// cells, long rows truncated). Malformed or empty input collapses to a
// 1x1 grid holding one empty text segment. Stale colWidths/rowHeights
// that no longer match the grid are dropped; the renderer recomputes.
func normalizeTable(m map[string]any) Segment {
	s := Segment{Type: KindTable, ID: idOr(m["id"])}

	var grid [][]Cell
	if rows, ok := asSlice(m["rows"]); ok {
		for _, rowRaw := range rows {
			cells, _ := asSlice(rowRaw)
			row := make([]Cell, 0, len(cells))
			for _, cellRaw := range cells {
				row = append(row, normalizeCell(cellRaw))
			}
			grid = append(grid, row)
		}
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		s.Rows = [][]Cell{{emptyCell()}}
		return s
	}

	cols := len(grid[0])
	for i := range grid {
		for len(grid[i]) < cols {
			grid[i] = append(grid[i], emptyCell())
		}
		grid[i] = grid[i][:cols]
	}
	s.Rows = grid

	if w, ok := numberSlice(m["colWidths"]); ok && len(w) == cols {
		s.ColWidths = w
	}
	if h, ok := numberSlice(m["rowHeights"]); ok && len(h) == len(grid) {
		s.RowHeights = h
	}
	return s
}

func normalizeCell(raw any) Cell {
	items, ok := asSlice(raw)
	if !ok {
		// tolerate a bare segment object where a list was expected
		if _, isMap := asMap(raw); isMap {
			return Cell{normalizeInline(raw)}
		}
		return emptyCell()
	}
	if len(items) == 0 {
		return emptyCell()
	}
	c := make(Cell, 0, len(items))
	for _, it := range items {
		c = append(c, normalizeInline(it))
	}
	return c
}

// normalizeInline restricts cell contents to text/math. Anything else,
// including nested tables or graphs, flattens to an empty text inline.
func normalizeInline(raw any) Inline {
	m, ok := asMap(raw)
	if !ok {
		return emptyInline()
	}
	switch Kind(asString(m["type"])) {
	case KindMath:
		return Inline{Type: KindMath, ID: idOr(m["id"]), Latex: asString(m["latex"])}
	case KindText:
		return Inline{Type: KindText, ID: idOr(m["id"]), Text: asString(m["text"])}
	default:
		return Inline{Type: KindText, ID: idOr(m["id"])}
	}
}

// --- graph ---

func normalizeGraph(m map[string]any) Segment {
	s := Segment{Type: KindGraph, ID: idOr(m["id"])}
	s.Axes = normalizeAxes(m["axes"])

	// Nonpositive dimensions are unset, not authored values. Width and
	// Height carry omitempty on the shared segment struct, so a zero
	// here would vanish on serialize and re-default on reparse;
	// resolving it now keeps repeated normalization stable.
	width := normalizeNumber(m["width"], defaultGraphWidth)
	if width <= 0 {
		width = defaultGraphWidth
	}
	if width > maxGraphWidth {
		width = maxGraphWidth
	}
	s.Width = width
	height := normalizeNumber(m["height"], defaultGraphHeight)
	if height <= 0 {
		height = defaultGraphHeight
	}
	s.Height = height
	s.Background = asString(m["background"])

	if items, ok := asSlice(m["points"]); ok {
		for _, it := range items {
			pm, _ := asMap(it)
			s.Points = append(s.Points, Point{
				ID:    idOr(pm["id"]),
				X:     normalizeNumber(pm["x"], 0),
				Y:     normalizeNumber(pm["y"], 0),
				Label: asString(pm["label"]),
				Color: asString(pm["color"]),
				Size:  normalizeNumber(pm["size"], defaultPointSize),
			})
		}
	}
	if items, ok := asSlice(m["lines"]); ok {
		for _, it := range items {
			lm, _ := asMap(it)
			s.Lines = append(s.Lines, Line{
				ID:    idOr(lm["id"]),
				From:  normalizeAnchor(lm["from"]),
				To:    normalizeAnchor(lm["to"]),
				Color: asString(lm["color"]),
				Style: asString(lm["style"]),
			})
		}
	}
	if items, ok := asSlice(m["curves"]); ok {
		for _, it := range items {
			cm, _ := asMap(it)
			s.Curves = append(s.Curves, Curve{
				ID:     idOr(cm["id"]),
				From:   normalizeAnchor(cm["from"]),
				To:     normalizeAnchor(cm["to"]),
				Offset: optionalNumber(cm["offset"]),
				Color:  asString(cm["color"]),
			})
		}
	}
	if items, ok := asSlice(m["functions"]); ok {
		for _, it := range items {
			fm, _ := asMap(it)
			s.Functions = append(s.Functions, Function{
				ID:         idOr(fm["id"]),
				Expression: asString(fm["expression"]),
				Color:      asString(fm["color"]),
				DomainMin:  optionalNumber(fm["domainMin"]),
				DomainMax:  optionalNumber(fm["domainMax"]),
				Offset:     optionalNumber(fm["offset"]),
			})
		}
	}
	if items, ok := asSlice(m["areas"]); ok {
		for _, it := range items {
			am, _ := asMap(it)
			s.Areas = append(s.Areas, Area{
				ID:          idOr(am["id"]),
				FunctionID:  asString(am["functionId"]),
				FunctionID2: asString(am["functionId2"]),
				Color:       asString(am["color"]),
				Opacity:     normalizeNumber(am["opacity"], defaultAreaOpacity),
			})
		}
	}
	if items, ok := asSlice(m["texts"]); ok {
		for _, it := range items {
			tm, _ := asMap(it)
			s.Texts = append(s.Texts, TextLabel{
				ID:    idOr(tm["id"]),
				X:     normalizeNumber(tm["x"], 0),
				Y:     normalizeNumber(tm["y"], 0),
				Text:  asString(tm["text"]),
				Color: asString(tm["color"]),
				Size:  normalizeNumber(tm["size"], defaultLabelSize),
			})
		}
	}
	return s
}

// normalizeAxes falls back to [-5,5] on either axis when the stored
// bounds are inverted or degenerate.
func normalizeAxes(raw any) *Axes {
	am, _ := asMap(raw)
	a := &Axes{
		XMin:     normalizeNumber(am["xMin"], -defaultAxisBound),
		XMax:     normalizeNumber(am["xMax"], defaultAxisBound),
		YMin:     normalizeNumber(am["yMin"], -defaultAxisBound),
		YMax:     normalizeNumber(am["yMax"], defaultAxisBound),
		XLabel:   asString(am["xLabel"]),
		YLabel:   asString(am["yLabel"]),
		GridStep: normalizeNumber(am["gridStep"], defaultGridStep),
		ShowGrid: asBool(am["showGrid"], true),
	}
	if a.XMax <= a.XMin {
		a.XMin, a.XMax = -defaultAxisBound, defaultAxisBound
	}
	if a.YMax <= a.YMin {
		a.YMin, a.YMax = -defaultAxisBound, defaultAxisBound
	}
	return a
}

// normalizeAnchor yields a coord anchor unless the input is exactly
// {type:"point", pointId:<string>}.
func normalizeAnchor(raw any) Anchor {
	m, _ := asMap(raw)
	if asString(m["type"]) == "point" {
		if pid, ok := m["pointId"].(string); ok {
			return Anchor{Type: "point", PointID: pid}
		}
	}
	return Anchor{
		Type: "coord",
		X:    normalizeNumber(m["x"], 0),
		Y:    normalizeNumber(m["y"], 0),
	}
}

// --- image_ref ---

func normalizeImageRef(m map[string]any) Segment {
	s := Segment{
		Type:       KindImageRef,
		ID:         idOr(m["id"]),
		PageNumber: int(normalizeNumber(m["pageNumber"], 0)),
		Alt:        asString(m["alt"]),
	}
	bm, _ := asMap(m["boundingBox"])
	s.BoundingBox = &BoundingBox{
		X:      clampPct(normalizeNumber(bm["x"], 0)),
		Y:      clampPct(normalizeNumber(bm["y"], 0)),
		Width:  clampPct(normalizeNumber(bm["width"], 100)),
		Height: clampPct(normalizeNumber(bm["height"], 100)),
	}
	return s
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// --- loose coercion helpers ---

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// asString stringifies nil to "" and any non-string scalar via generic
// conversion. It never fails.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// normalizeNumber coerces v to a finite float64, substituting fallback
// for anything that does not coerce. It never fails.
func normalizeNumber(v any, fallback float64) float64 {
	if f, ok := toFinite(v); ok {
		return f
	}
	return fallback
}

// optionalNumber keeps a value only when it is explicitly numeric.
func optionalNumber(v any) *float64 {
	if f, ok := toFinite(v); ok {
		return &f
	}
	return nil
}

func toFinite(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// idOr keeps a present id (stringified if needed) and mints one only
// when absent, so repeated normalization is identity-preserving.
func idOr(v any) string {
	if s := asString(v); s != "" {
		return s
	}
	return newID()
}

func numberSlice(v any) ([]float64, bool) {
	items, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := toFinite(it)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

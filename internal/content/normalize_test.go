package content

import "testing"

func cellText(text string) []any {
	return []any{map[string]any{"type": "text", "text": text}}
}

func TestNormalizeTableRectangularizesRaggedRows(t *testing.T) {
	raw := map[string]any{
		"type": "table",
		"rows": []any{
			[]any{cellText("a"), cellText("b")},
			[]any{cellText("c")},
			[]any{cellText("d"), cellText("e"), cellText("f")},
		},
	}
	s := NormalizeSegment(raw, KindText)
	if s.Type != KindTable {
		t.Fatalf("got kind %s", s.Type)
	}
	cols := len(s.Rows[0])
	if cols != 2 {
		t.Fatalf("got %d columns, want 2 (first row width)", cols)
	}
	for i, row := range s.Rows {
		if len(row) != cols {
			t.Errorf("row %d has %d cells, want %d", i, len(row), cols)
		}
		for j, cell := range row {
			if len(cell) == 0 {
				t.Errorf("row %d cell %d is empty", i, j)
			}
		}
	}
}

func TestNormalizeTableEmptyCollapsesToOneByOne(t *testing.T) {
	for _, raw := range []map[string]any{
		{"type": "table"},
		{"type": "table", "rows": "not an array"},
		{"type": "table", "rows": []any{}},
		{"type": "table", "rows": []any{[]any{}}},
	} {
		s := NormalizeSegment(raw, KindText)
		if len(s.Rows) != 1 || len(s.Rows[0]) != 1 {
			t.Fatalf("got %dx%d grid, want 1x1", len(s.Rows), len(s.Rows[0]))
		}
		cell := s.Rows[0][0]
		if len(cell) != 1 || cell[0].Type != KindText || cell[0].Text != "" {
			t.Errorf("got cell %+v, want one empty text segment", cell)
		}
	}
}

func TestNormalizeTableDropsStaleLayoutHints(t *testing.T) {
	raw := map[string]any{
		"type": "table",
		"rows": []any{
			[]any{cellText("a"), cellText("b")},
			[]any{cellText("c"), cellText("d")},
		},
		"colWidths":  []any{100.0, 120.0, 80.0}, // stale: 3 widths for 2 cols
		"rowHeights": []any{40.0, 40.0},
	}
	s := NormalizeSegment(raw, KindText)
	if s.ColWidths != nil {
		t.Errorf("stale colWidths kept: %v", s.ColWidths)
	}
	if len(s.RowHeights) != 2 {
		t.Errorf("matching rowHeights dropped: %v", s.RowHeights)
	}
}

func TestNormalizeTableCellRestrictedToTextAndMath(t *testing.T) {
	raw := map[string]any{
		"type": "table",
		"rows": []any{
			[]any{[]any{map[string]any{"type": "graph"}, map[string]any{"type": "math", "latex": "x"}}},
		},
	}
	s := NormalizeSegment(raw, KindText)
	cell := s.Rows[0][0]
	if cell[0].Type != KindText {
		t.Errorf("nested graph should flatten to text, got %s", cell[0].Type)
	}
	if cell[1].Type != KindMath || cell[1].Latex != "x" {
		t.Errorf("math inline mangled: %+v", cell[1])
	}
}

func TestNormalizeGraphInvertedAxesFallBack(t *testing.T) {
	raw := map[string]any{
		"type": "graph",
		"axes": map[string]any{"xMin": 5.0, "xMax": 1.0, "yMin": -3.0, "yMax": 3.0},
	}
	s := NormalizeSegment(raw, KindText)
	if s.Axes.XMin != -5 || s.Axes.XMax != 5 {
		t.Errorf("inverted x axis: got [%v,%v], want [-5,5]", s.Axes.XMin, s.Axes.XMax)
	}
	if s.Axes.YMin != -3 || s.Axes.YMax != 3 {
		t.Errorf("valid y axis changed: [%v,%v]", s.Axes.YMin, s.Axes.YMax)
	}
}

func TestNormalizeGraphDefaults(t *testing.T) {
	s := NormalizeSegment(map[string]any{"type": "graph"}, KindText)
	if s.Axes == nil {
		t.Fatal("axes not populated")
	}
	if s.Axes.XMin != -5 || s.Axes.XMax != 5 || s.Axes.YMin != -5 || s.Axes.YMax != 5 {
		t.Errorf("default axes: %+v", s.Axes)
	}
	if !s.Axes.ShowGrid || s.Axes.GridStep != 1 {
		t.Errorf("grid defaults: %+v", s.Axes)
	}
	if s.Width != defaultGraphWidth || s.Height != defaultGraphHeight {
		t.Errorf("size defaults: %vx%v", s.Width, s.Height)
	}
}

func TestNormalizeGraphWidthClamped(t *testing.T) {
	s := NormalizeSegment(map[string]any{"type": "graph", "width": 5000.0}, KindText)
	if s.Width != maxGraphWidth {
		t.Errorf("got width %v, want clamp at %v", s.Width, maxGraphWidth)
	}
}

func TestNormalizeGraphShapeIDsGenerated(t *testing.T) {
	raw := map[string]any{
		"type":   "graph",
		"points": []any{map[string]any{"x": 1.0, "y": 2.0, "size": "huge"}},
		"lines": []any{map[string]any{
			"from": map[string]any{"type": "point", "pointId": "p1"},
			"to":   map[string]any{"x": 3.0, "y": 4.0},
		}},
	}
	s := NormalizeSegment(raw, KindText)
	if len(s.Points) != 1 || s.Points[0].ID == "" {
		t.Fatalf("point id not generated: %+v", s.Points)
	}
	if s.Points[0].Size != defaultPointSize {
		t.Errorf("bad size not defaulted: %v", s.Points[0].Size)
	}
	l := s.Lines[0]
	if l.From.Type != "point" || l.From.PointID != "p1" {
		t.Errorf("point anchor not preserved: %+v", l.From)
	}
	if l.To.Type != "coord" || l.To.X != 3 || l.To.Y != 4 {
		t.Errorf("coord anchor: %+v", l.To)
	}
}

func TestNormalizeAnchorNonStringPointIDBecomesCoord(t *testing.T) {
	a := normalizeAnchor(map[string]any{"type": "point", "pointId": 7.0})
	if a.Type != "coord" {
		t.Errorf("got %+v, want coord anchor", a)
	}
}

func TestNormalizeSegmentMathFallback(t *testing.T) {
	s := NormalizeSegment("not a segment", KindMath)
	if s.Type != KindMath || s.Latex != "" {
		t.Errorf("got %+v, want empty math segment", s)
	}
}

func TestNormalizeSegmentCoercesScalars(t *testing.T) {
	s := NormalizeSegment(map[string]any{"type": "text", "text": 42.0}, KindText)
	if s.Text != "42" {
		t.Errorf("got %q, want \"42\"", s.Text)
	}
	s = NormalizeSegment(map[string]any{"type": "math", "latex": nil}, KindText)
	if s.Latex != "" {
		t.Errorf("null latex: got %q", s.Latex)
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in       any
		fallback float64
		want     float64
	}{
		{2.5, 0, 2.5},
		{"3.5", 0, 3.5},
		{"abc", 7, 7},
		{nil, 7, 7},
		{true, 7, 7},
	}
	for _, c := range cases {
		if got := normalizeNumber(c.in, c.fallback); got != c.want {
			t.Errorf("normalizeNumber(%v, %v) = %v, want %v", c.in, c.fallback, got, c.want)
		}
	}
}

func TestNormalizeImageRefBoundingBoxClamped(t *testing.T) {
	raw := map[string]any{
		"type":        "image_ref",
		"pageNumber":  2.0,
		"alt":         "diagram",
		"boundingBox": map[string]any{"x": -10.0, "y": 20.0, "width": 150.0, "height": 30.0},
	}
	s := NormalizeSegment(raw, KindText)
	if s.PageNumber != 2 || s.Alt != "diagram" {
		t.Errorf("image_ref fields: %+v", s)
	}
	bb := s.BoundingBox
	if bb.X != 0 || bb.Y != 20 || bb.Width != 100 || bb.Height != 30 {
		t.Errorf("bounding box not clamped: %+v", bb)
	}
}

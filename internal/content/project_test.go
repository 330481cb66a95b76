package content

import "testing"

func TestLatexStringMixedTree(t *testing.T) {
	segs := []Segment{NewText("Solve: "), NewMath("x^2+1")}
	if got := LatexString(segs); got != "Solve: $x^2+1$" {
		t.Errorf("LatexString = %q", got)
	}
	if got := PlainText(segs); got != "Solve: x^2+1" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestProjectionsEmptyInput(t *testing.T) {
	if got := LatexString(nil); got != "" {
		t.Errorf("LatexString(nil) = %q, want empty", got)
	}
	if got := PlainText([]Segment{}); got != "" {
		t.Errorf("PlainText(empty) = %q, want empty", got)
	}
}

func TestProjectionsTable(t *testing.T) {
	table := NormalizeSegment(map[string]any{
		"type": "table",
		"rows": []any{
			[]any{cellText("a"), []any{map[string]any{"type": "math", "latex": "b^2"}}},
			[]any{cellText("c"), cellText("d")},
		},
	}, KindText)

	if got := LatexString([]Segment{table}); got != "a\t$b^2$\nc\td" {
		t.Errorf("LatexString table = %q", got)
	}
	if got := PlainText([]Segment{table}); got != "a\tb^2\nc\td" {
		t.Errorf("PlainText table = %q", got)
	}
}

func TestProjectionsPlaceholders(t *testing.T) {
	graph := NormalizeSegment(map[string]any{"type": "graph"}, KindText)
	img := Segment{Type: KindImage, ID: "i", URL: "https://cdn/x.png", Alt: "plot"}
	ref := NormalizeSegment(map[string]any{"type": "image_ref", "alt": "scan"}, KindText)

	if got := LatexString([]Segment{graph, img, ref}); got != "[graph]![plot](https://cdn/x.png)[image]" {
		t.Errorf("LatexString = %q", got)
	}
	if got := PlainText([]Segment{graph, img, ref}); got != "[graph][image][image]" {
		t.Errorf("PlainText = %q", got)
	}
}

package legacyhtml

import "testing"

func TestToLatexFraction(t *testing.T) {
	in := `<span data-structure="fraction"><span data-part="numerator">1</span><span data-part="denominator">2</span></span>`
	if got := ToLatex(in); got != `$\frac{1}{2}$` {
		t.Errorf("ToLatex = %q", got)
	}
}

func TestToLatexStructures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"sqrt",
			`<span data-structure="sqrt"><span data-part="content">x+1</span></span>`,
			`$\sqrt{x+1}$`,
		},
		{
			"cbrt",
			`<span data-structure="cbrt"><span data-part="content">8</span></span>`,
			`$\sqrt[3]{8}$`,
		},
		{
			"superscript",
			`<span data-structure="superscript"><span data-part="base">x</span><span data-part="exponent">2</span></span>`,
			`$x^{2}$`,
		},
		{
			"subscript",
			`<span data-structure="subscript"><span data-part="base">a</span><span data-part="index">n</span></span>`,
			`$a_{n}$`,
		},
		{
			"sum",
			`<span data-structure="sum"><span data-part="lower">i=1</span><span data-part="upper">n</span><span data-part="content">i</span></span>`,
			`$\sum_{i=1}^{n} i$`,
		},
		{
			"integral",
			`<span data-structure="integral"><span data-part="lower">0</span><span data-part="upper">1</span><span data-part="content">x dx</span></span>`,
			`$\int_{0}^{1} x dx$`,
		},
	}
	for _, c := range cases {
		if got := ToLatex(c.in); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestToLatexNestedStructure(t *testing.T) {
	// fraction whose numerator is itself a fraction: no inner delimiters
	in := `<span data-structure="fraction">` +
		`<span data-part="numerator" data-structure="fraction">` +
		`<span data-part="numerator">1</span><span data-part="denominator">2</span>` +
		`</span>` +
		`<span data-part="denominator">3</span>` +
		`</span>`
	if got := ToLatex(in); got != `$\frac{\frac{1}{2}}{3}$` {
		t.Errorf("nested: got %q", got)
	}
}

func TestToLatexMixedTextAndStructure(t *testing.T) {
	in := `Half is <span data-structure="fraction"><span data-part="numerator">1</span><span data-part="denominator">2</span></span> of one`
	if got := ToLatex(in); got != `Half is $\frac{1}{2}$ of one` {
		t.Errorf("mixed: got %q", got)
	}
}

func TestToLatexUnrecognizedNodesContributeText(t *testing.T) {
	in := `<div><b>bold</b> and <i>italic</i></div>`
	if got := ToLatex(in); got != "bold and italic" {
		t.Errorf("got %q", got)
	}
}

func TestToLatexMissingPartYieldsEmptyOperand(t *testing.T) {
	in := `<span data-structure="fraction"><span data-part="numerator">1</span></span>`
	if got := ToLatex(in); got != `$\frac{1}{}$` {
		t.Errorf("got %q", got)
	}
}

func TestToLatexWhitespaceNormalized(t *testing.T) {
	in := "a   b\n\n c"
	if got := ToLatex(in); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeMathValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already portable", `price is $x^2$`, `price is $x^2$`},
		{"plain modern", "just text", "just text"},
		{
			"legacy markup",
			`<span data-structure="fraction"><span data-part="numerator">1</span><span data-part="denominator">2</span></span>`,
			`$\frac{1}{2}$`,
		},
	}
	for _, c := range cases {
		if got := NormalizeMathValue(c.in); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

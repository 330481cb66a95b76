// Package legacyhtml converts the fixed set of legacy editor markup
// structures into LaTeX. It is a one-time migration adapter: best-effort,
// never failing, feeding NormalizeMathValue output into the content
// normalizer.
package legacyhtml

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Legacy markup discriminators. A structural element carries
// data-structure with one of the six structure names; its operand
// regions carry data-part.
const (
	structureAttr = "data-structure"
	partAttr      = "data-part"
)

const (
	structFraction    = "fraction"
	structSum         = "sum"
	structIntegral    = "integral"
	structSqrt        = "sqrt"
	structCbrt        = "cbrt"
	structSuperscript = "superscript"
	structSubscript   = "subscript"
)

// NormalizeMathValue routes a stored value through the transpiler when it
// looks like legacy markup. Values already containing a literal $ are
// assumed portable and pass through; values matching neither marker pass
// through unchanged (inherited heuristic: such content is assumed modern
// even when it is actually malformed old data).
func NormalizeMathValue(value string) string {
	if strings.Contains(value, "$") {
		return value
	}
	if strings.Contains(value, structureAttr) {
		return ToLatex(value)
	}
	return value
}

// ToLatex transpiles a legacy HTML fragment. Recognized structures become
// $-delimited LaTeX; unrecognized nodes contribute their flattened text.
// On parse failure it degrades to stripping tags; migration must never
// halt a save or load.
func ToLatex(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return collapse(stripTags(fragment))
	}
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return collapse(b.String())
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(cleanText(n.Data))
	case html.ElementNode:
		if name := attrValue(n, structureAttr); name != "" {
			if latex, ok := structureLatex(n, name); ok {
				b.WriteString("$")
				b.WriteString(latex)
				b.WriteString("$")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(b, c)
		}
	}
}

// structureLatex renders one recognized structure without delimiters;
// nesting adds no inner $.
func structureLatex(n *html.Node, name string) (string, bool) {
	switch name {
	case structFraction:
		return "\\frac{" + region(n, "numerator") + "}{" + region(n, "denominator") + "}", true
	case structSqrt:
		return "\\sqrt{" + region(n, "content") + "}", true
	case structCbrt:
		return "\\sqrt[3]{" + region(n, "content") + "}", true
	case structSuperscript:
		return region(n, "base") + "^{" + region(n, "exponent") + "}", true
	case structSubscript:
		return region(n, "base") + "_{" + region(n, "index") + "}", true
	case structSum:
		return "\\sum_{" + region(n, "lower") + "}^{" + region(n, "upper") + "} " + region(n, "content"), true
	case structIntegral:
		return "\\int_{" + region(n, "lower") + "}^{" + region(n, "upper") + "} " + region(n, "content"), true
	}
	return "", false
}

// region serializes the designated operand of a structure. A missing
// part yields an empty operand rather than an error.
func region(n *html.Node, part string) string {
	p := findPart(n, part)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(regionLatex(p))
}

func regionLatex(n *html.Node) string {
	if name := attrValue(n, structureAttr); name != "" {
		if latex, ok := structureLatex(n, name); ok {
			return latex
		}
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(cleanText(c.Data))
		case html.ElementNode:
			b.WriteString(regionLatex(c))
		}
	}
	return b.String()
}

// findPart locates the structure's own operand, not one belonging to a
// nested structure: descent stops at child structures except when the
// nested structure is itself the tagged operand.
func findPart(n *html.Node, part string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if attrValue(c, partAttr) == part {
			return c
		}
		if attrValue(c, structureAttr) != "" {
			continue
		}
		if found := findPart(c, part); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// cleanText replaces non-breaking spaces at the leaf so nested recursive
// calls can defer collapsing to here.
func cleanText(s string) string {
	return strings.ReplaceAll(s, " ", " ")
}

// collapse squeezes runs of whitespace into single spaces and trims.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripTags is the degraded path: drop everything between angle brackets
// and keep the flattened text.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

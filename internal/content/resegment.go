package content

import "strings"

// StringToSegments parses a flat string with inline ($...$) or block
// ($$...$$) math delimiters back into an ordered text/math segment list.
// Delimiter pairs match left-to-right, non-greedy, non-nested; a \$ never
// opens or closes a span. An unmatched opener stays literal text.
//
// When previous segments are supplied, a produced segment reuses the id
// of the first prior segment with matching kind and content, each prior
// id consumed at most once. This is a greedy match-by-equality, not a
// diff: unchanged content keeps its id even when it moved, so the editor
// does not remount pieces the user did not touch.
func StringToSegments(value string, previous []Segment) []Segment {
	if value == "" {
		return sentinel()
	}
	pieces := splitMath(value)
	if len(pieces) == 0 {
		return sentinel()
	}
	pool := newIDPool(previous)
	out := make([]Segment, 0, len(pieces))
	for _, p := range pieces {
		id, ok := pool.take(p.kind, p.body)
		if !ok {
			id = newID()
		}
		if p.kind == KindMath {
			out = append(out, Segment{Type: KindMath, ID: id, Latex: p.body})
		} else {
			out = append(out, Segment{Type: KindText, ID: id, Text: p.body})
		}
	}
	return out
}

type piece struct {
	kind Kind
	body string
}

func splitMath(s string) []piece {
	var out []piece
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			out = append(out, piece{KindText, text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '$' {
			text.WriteString(s[i : i+2])
			i += 2
			continue
		}
		if s[i] != '$' {
			text.WriteByte(s[i])
			i++
			continue
		}
		delim := "$"
		if i+1 < len(s) && s[i+1] == '$' {
			delim = "$$"
		}
		end := findDelim(s, i+len(delim), delim)
		if end < 0 {
			// unmatched opener: keep one literal $ and rescan the rest
			text.WriteByte('$')
			i++
			continue
		}
		flush()
		out = append(out, piece{KindMath, s[i+len(delim) : end]})
		i = end + len(delim)
	}
	flush()
	return out
}

// findDelim locates the first unescaped occurrence of delim at or after
// from. Returns -1 if none.
func findDelim(s string, from int, delim string) int {
	for i := from; i+len(delim) <= len(s); i++ {
		if s[i] == '\\' {
			i++ // skip escaped char
			continue
		}
		if s[i:i+len(delim)] == delim {
			return i
		}
	}
	return -1
}

// idPool hands out prior segment ids keyed by kind and exact content,
// first match wins, each id used once.
type idPool struct {
	ids map[string][]string
}

func newIDPool(previous []Segment) *idPool {
	p := &idPool{ids: make(map[string][]string, len(previous))}
	for _, s := range previous {
		switch s.Type {
		case KindText:
			k := poolKey(KindText, s.Text)
			p.ids[k] = append(p.ids[k], s.ID)
		case KindMath:
			k := poolKey(KindMath, s.Latex)
			p.ids[k] = append(p.ids[k], s.ID)
		}
	}
	return p
}

func (p *idPool) take(kind Kind, body string) (string, bool) {
	k := poolKey(kind, body)
	ids := p.ids[k]
	if len(ids) == 0 {
		return "", false
	}
	id := ids[0]
	p.ids[k] = ids[1:]
	return id, true
}

func poolKey(kind Kind, body string) string {
	return string(kind) + "\x00" + body
}

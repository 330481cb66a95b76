package content

import "encoding/json"

// ParseContent turns whatever a storage column or client payload holds
// into a canonical segment list. Three historical shapes are accepted:
// an already-decoded array of segment-like values, a JSON string encoding
// such an array, and a legacy bare string (one text segment). Anything
// else yields the empty-document sentinel. ParseContent never fails:
// a string that does not decode to an array is legacy plain text, not
// an error.
func ParseContent(raw any) []Segment {
	switch v := raw.(type) {
	case nil:
		return sentinel()
	case []Segment:
		return normalizeTyped(v)
	case []any:
		return normalizeList(v)
	case json.RawMessage:
		return parseString(string(v))
	case []byte:
		return parseString(string(v))
	case string:
		return parseString(v)
	default:
		return sentinel()
	}
}

func parseString(s string) []Segment {
	if s == "" {
		return sentinel()
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		if arr, ok := decoded.([]any); ok {
			return normalizeList(arr)
		}
	}
	// not a segment array: legacy plain text
	return []Segment{NewText(s)}
}

func normalizeList(items []any) []Segment {
	if len(items) == 0 {
		return sentinel()
	}
	out := make([]Segment, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeSegment(it, KindText))
	}
	return out
}

// normalizeTyped re-runs the normalizer over already-typed segments by
// dropping to the untyped boundary. Used so in-memory state gets the
// same repairs as stored data.
func normalizeTyped(segs []Segment) []Segment {
	if len(segs) == 0 {
		return sentinel()
	}
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		out = append(out, renormalize(s))
	}
	return out
}

func renormalize(s Segment) Segment {
	fallback := KindText
	if s.Type == KindMath {
		fallback = KindMath
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return fallbackSegment(fallback)
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return fallbackSegment(fallback)
	}
	return NormalizeSegment(m, fallback)
}

// SerializeContent re-normalizes every segment and emits the canonical
// JSON array string. The write path always re-validates; math segments
// fall back through the math-specific repair so bad data self-heals on
// save.
func SerializeContent(segs []Segment) string {
	norm := normalizeTyped(segs)
	buf, err := json.Marshal(norm)
	if err != nil {
		// segments are plain data; marshal cannot realistically fail,
		// but the contract is to degrade, not to propagate
		buf, _ = json.Marshal(sentinel())
	}
	return string(buf)
}

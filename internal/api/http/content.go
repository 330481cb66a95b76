package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/examsmith/examsmith/internal/content"
	"github.com/examsmith/examsmith/internal/content/legacyhtml"
)

type previewResp struct {
	Segments   []content.Segment `json:"segments"`
	Latex      string            `json:"latex"`
	Plain      string            `json:"plain"`
	Serialized string            `json:"serialized"`
}

// PreviewContentHandler normalizes whatever the editor sends (stored
// JSON, a raw string, a partial segment list) and returns the canonical
// form with both string projections. POST /content/preview
func PreviewContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		segs := content.ParseContent(json.RawMessage(body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(previewResp{
			Segments:   segs,
			Latex:      content.LatexString(segs),
			Plain:      content.PlainText(segs),
			Serialized: content.SerializeContent(segs),
		})
	}
}

// ResegmentHandler applies an edited plain-string value against the
// previously stored segments, reusing ids for unchanged pieces so the
// editor keeps cursor and focus state. POST /content/resegment
func ResegmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value    string          `json:"value"`
			Previous json.RawMessage `json:"previous,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		segs := content.StringToSegments(req.Value, content.ParseContent(req.Previous))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments":   segs,
			"serialized": content.SerializeContent(segs),
		})
	}
}

// TranspileHandler converts legacy editor HTML into LaTeX.
// POST /content/transpile
func TranspileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HTML string `json:"html"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"latex": legacyhtml.ToLatex(req.HTML),
		})
	}
}

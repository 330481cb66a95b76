package http

import (
	"encoding/json"
	"net/http"

	"github.com/examsmith/examsmith/internal/content"
	"github.com/examsmith/examsmith/internal/importer"
	"github.com/examsmith/examsmith/internal/storage"
)

// ResolveImagesHandler swaps image_ref segments for image segments once
// the extraction worker has uploaded the page crops. POST /content/resolve-images
func ResolveImagesHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DocID    string          `json:"doc_id"`
			Segments json.RawMessage `json:"segments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.DocID == "" {
			http.Error(w, "doc_id required", http.StatusBadRequest)
			return
		}
		segs := content.ParseContent(req.Segments)
		resolved := importer.ResolveImageRefs(segs, bs, importer.DefaultKeyFunc(req.DocID))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments": resolved,
			"pending":  importer.Unresolved(resolved),
		})
	}
}

package http

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/examsmith/examsmith/internal/storage"
)

// MountAssets wires blob upload/download under /assets. Uploaded files
// land under uploads/<scope>/ so import crops and user uploads never
// collide.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{scope} with multipart field "file"
	r.Post("/{scope}", func(w http.ResponseWriter, r *http.Request) {
		scope := chi.URLParam(r, "scope")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := path.Base(hdr.Filename)
		if name == "" || name == "." || name == "/" {
			name = "upload.bin"
		}
		key := "uploads/" + scope + "/" + name
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		url, _ := bs.PublicURL(key)
		_ = json.NewEncoder(w).Encode(map[string]string{"key": key, "url": url})
	})

	// GET /assets/* -> the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}

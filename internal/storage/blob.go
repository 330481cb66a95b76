package storage

import "io"

// BlobStore holds binary assets: page images extracted during import,
// student uploads. Keys are opaque slash-separated paths.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	PublicURL(key string) (string, error) // URL a browser can fetch, e.g. /assets/<key>
}

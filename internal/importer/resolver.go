// Package importer adapts externally extracted documents into stored
// exam content. PDF extraction itself happens outside this service; what
// arrives here is a segment tree whose image_ref segments still point at
// page regions instead of real assets.
package importer

import (
	"fmt"

	"github.com/examsmith/examsmith/internal/content"
	"github.com/examsmith/examsmith/internal/storage"
)

// KeyFunc maps an image_ref to the blob key of its extracted crop.
type KeyFunc func(pageNumber int, boundingBox content.BoundingBox) string

// DefaultKeyFunc places crops under imports/<doc>/ by page and region.
func DefaultKeyFunc(docID string) KeyFunc {
	return func(page int, bb content.BoundingBox) string {
		return fmt.Sprintf("imports/%s/page-%d-%d-%d.png", docID, page, int(bb.X), int(bb.Y))
	}
}

// ResolveImageRefs replaces every image_ref with a plain image segment
// whose URL points at the stored crop, preserving the segment id so the
// editor does not remount the node after import completes. A ref whose
// asset cannot be resolved stays an image_ref; the caller decides
// whether to persist or retry.
func ResolveImageRefs(segs []content.Segment, blobs storage.BlobStore, keyFor KeyFunc) []content.Segment {
	out := make([]content.Segment, 0, len(segs))
	for _, s := range segs {
		if s.Type != content.KindImageRef || s.BoundingBox == nil {
			out = append(out, s)
			continue
		}
		url, err := blobs.PublicURL(keyFor(s.PageNumber, *s.BoundingBox))
		if err != nil {
			out = append(out, s)
			continue
		}
		out = append(out, content.Segment{
			Type: content.KindImage,
			ID:   s.ID,
			URL:  url,
			Alt:  s.Alt,
		})
	}
	return out
}

// Unresolved reports whether the tree still carries image_ref segments;
// content is not ready for normal storage until none remain.
func Unresolved(segs []content.Segment) bool {
	for _, s := range segs {
		if s.Type == content.KindImageRef {
			return true
		}
	}
	return false
}

// Package blobstore abstracts the external asset host that keeps manuscript
// files. The backend only ever uploads a local file and later deletes by the
// returned URL; everything else (serving, transformations) happens on the
// host's side.
package blobstore

import (
	"context"
	"strings"
)

// Store is the collaborator contract. Upload returns a durable URL for the
// stored object; Delete is best-effort and derives the object id from that
// URL. Callers bound both with a request-level timeout.
type Store interface {
	Upload(ctx context.Context, localPath, hint string) (string, error)
	Delete(ctx context.Context, url string) error
}

const uploadSegment = "/upload/"

// attachmentMarker forces a download response instead of inline rendering
// when inserted after the upload path segment.
const attachmentMarker = "fl_attachment"

// PublicIDFromURL extracts the storage object id from a stored URL: the last
// path segment with its extension removed. Empty string when the URL has no
// path.
func PublicIDFromURL(url string) string {
	idx := strings.LastIndexByte(url, '/')
	if idx < 0 || idx == len(url)-1 {
		return ""
	}
	last := url[idx+1:]
	if dot := strings.LastIndexByte(last, '.'); dot > 0 {
		last = last[:dot]
	}
	return last
}

// AttachmentURL returns the force-download variant of a stored URL by
// inserting the attachment marker right after the upload segment. URLs that
// already carry the marker, or that have no upload segment, come back
// unchanged.
func AttachmentURL(url string) string {
	if strings.Contains(url, attachmentMarker) {
		return url
	}
	before, after, found := strings.Cut(url, uploadSegment)
	if !found {
		return url
	}
	return before + uploadSegment + attachmentMarker + "/" + after
}

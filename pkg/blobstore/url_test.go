package blobstore

import "testing"

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url, want string
	}{
		{"https://assets.local/jovote/upload/a1b2c3d4-paper.pdf", "a1b2c3d4-paper"},
		{"https://assets.local/jovote/upload/noext", "noext"},
		{"https://assets.local/jovote/upload/archive.tar.gz", "archive.tar"},
		{"no-slashes-here", ""},
		{"https://assets.local/jovote/upload/", ""},
	}
	for _, c := range cases {
		if got := PublicIDFromURL(c.url); got != c.want {
			t.Fatalf("PublicIDFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestAttachmentURL(t *testing.T) {
	in := "https://assets.local/jovote/upload/a1b2-paper.pdf"
	want := "https://assets.local/jovote/upload/fl_attachment/a1b2-paper.pdf"
	got := AttachmentURL(in)
	if got != want {
		t.Fatalf("AttachmentURL = %q, want %q", got, want)
	}
	// Applying it again must not stack markers.
	if again := AttachmentURL(got); again != want {
		t.Fatalf("AttachmentURL not idempotent: %q", again)
	}
	// URLs without an upload segment pass through untouched.
	plain := "https://example.org/files/doc.pdf"
	if got := AttachmentURL(plain); got != plain {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

package journal

import (
	"context"
	"log"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"jovote/models"
)

// FileKind selects which stored document of a journal is wanted.
type FileKind string

const (
	FilePDF  FileKind = "pdf"
	FileDocx FileKind = "docx"
)

var (
	filenameStrip    = regexp.MustCompile(`[^\w \-]`)
	filenameCollapse = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a journal title into a safe attachment filename:
// strips everything but word characters, spaces and hyphens, collapses
// whitespace runs to underscores and truncates to 100 characters.
func SanitizeFilename(title string) string {
	name := filenameStrip.ReplaceAllString(title, "")
	name = filenameCollapse.ReplaceAllString(strings.TrimSpace(name), "_")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "journal"
	}
	return name
}

// DownloadURL resolves the stored location for the requested file kind,
// preferring the blob-store URL over the pre-upload local path. ErrNotFound
// when the journal has nothing stored for that kind.
func DownloadURL(j *models.PublishedJournal, kind FileKind) (string, error) {
	var url string
	switch kind {
	case FileDocx:
		url = j.DocxURL
	default:
		url = j.PdfURL
	}
	if url == "" {
		url = j.ContentFilePath
	}
	if url == "" {
		return "", ErrNotFound
	}
	return url, nil
}

// BumpDownloadCount increments the download counter. Fire-and-forget: a
// failed bump is logged and never surfaces to the download response.
func (s *Service) BumpDownloadCount(ctx context.Context, id uint) {
	err := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("COALESCE(download_count,0) + 1")).Error
	if err != nil {
		log.Printf("warning: download count bump failed for journal %d: %v", id, err)
	}
}

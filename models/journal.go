package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Journal lifecycle statuses. Archiving is tracked separately via IsArchived,
// a published journal can be archived and still count as published.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusAccepted    = "accepted"
	StatusPublished   = "published"
	StatusRejected    = "rejected"
)

// ReviewStatuses are the statuses a journal can hold while in the review queue.
var ReviewStatuses = []string{StatusSubmitted, StatusUnderReview, StatusAccepted}

// PublishedJournal represents one manuscript submission and everything that
// happens to it: review metadata, volume assignment, DOI, stored files and
// download bookkeeping.
type PublishedJournal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string                     `gorm:"size:500;not null" json:"title"`
	Abstract string                     `gorm:"size:5000;not null" json:"abstract"`
	Authors  datatypes.JSONSlice[string] `gorm:"not null" json:"authors"`
	Keywords datatypes.JSONSlice[string] `json:"keywords"`

	// File references. The blob-store URLs are authoritative once upload
	// succeeds; ContentFilePath is the local fallback before that.
	ContentFilePath string `gorm:"size:512" json:"content_file_path,omitempty"`
	PdfURL          string `gorm:"size:512" json:"pdf_url,omitempty"`
	DocxURL         string `gorm:"size:512" json:"docx_url,omitempty"`
	FileSize        int64  `json:"file_size,omitempty"`
	FileType        string `gorm:"size:128" json:"file_type,omitempty"`

	VolumeYear    int    `gorm:"index:idx_volume" json:"volume_year"`
	VolumeQuarter int    `gorm:"index:idx_volume" json:"volume_quarter"`
	Status        string `gorm:"size:32;not null;default:submitted;index" json:"status"`

	SubmissionDate  time.Time  `gorm:"not null;index" json:"submission_date"`
	ReviewNotes     string     `gorm:"size:2000" json:"review_notes,omitempty"`
	DOI             *string    `gorm:"size:255;uniqueIndex" json:"doi,omitempty"`
	PageNumbers     string     `gorm:"size:64" json:"page_numbers,omitempty"`
	IsArchived      bool       `gorm:"default:false;index" json:"is_archived"`
	SubmittedBy     string     `gorm:"size:255" json:"submitted_by,omitempty"`
	ReviewedBy      string     `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewDate      *time.Time `json:"review_date,omitempty"`
	PublicationDate *time.Time `gorm:"index" json:"publication_date,omitempty"`
	ArchivedDate    *time.Time `json:"archived_date,omitempty"`
	DownloadCount   int64      `gorm:"default:0" json:"download_count"`
}

// VolumeDisplay mirrors the public site's "2025 - Quarter 3" label.
func (j *PublishedJournal) VolumeDisplay() string {
	return fmt.Sprintf("%d - Quarter %d", j.VolumeYear, j.VolumeQuarter)
}

// AuthorsDisplay joins the author list for listings and exports.
func (j *PublishedJournal) AuthorsDisplay() string {
	return strings.Join(j.Authors, ", ")
}

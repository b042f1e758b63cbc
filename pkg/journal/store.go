package journal

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"jovote/models"
)

// CreateParams carries every field a submission or administrative insert may
// set. Zero values are filled with defaults (status submitted, submission
// date now, volume derived from the dates present).
type CreateParams struct {
	Title           string
	Abstract        string
	Authors         []string
	Keywords        []string
	Status          string
	SubmittedBy     string
	ContentFilePath string
	PdfURL          string
	DocxURL         string
	FileSize        int64
	FileType        string
	VolumeYear      int
	VolumeQuarter   int
	SubmissionDate  time.Time
	PublicationDate *time.Time
	DOI             string
	PageNumbers     string
	DownloadCount   int64
}

// Create validates and persists a new journal record. Administrative inserts
// may arrive with any initial status, including published, in which case the
// publication side effects run immediately.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.PublishedJournal, error) {
	now := s.Now()
	j := &models.PublishedJournal{
		Title:           strings.TrimSpace(p.Title),
		Abstract:        strings.TrimSpace(p.Abstract),
		Authors:         trimAll(p.Authors),
		Keywords:        trimAll(p.Keywords),
		Status:          p.Status,
		SubmittedBy:     p.SubmittedBy,
		ContentFilePath: p.ContentFilePath,
		PdfURL:          p.PdfURL,
		DocxURL:         p.DocxURL,
		FileSize:        p.FileSize,
		FileType:        p.FileType,
		VolumeYear:      p.VolumeYear,
		VolumeQuarter:   p.VolumeQuarter,
		SubmissionDate:  p.SubmissionDate,
		PublicationDate: p.PublicationDate,
		PageNumbers:     p.PageNumbers,
		DownloadCount:   p.DownloadCount,
	}
	if j.Status == "" {
		j.Status = models.StatusSubmitted
	}
	if j.SubmissionDate.IsZero() {
		j.SubmissionDate = now
	}
	if err := validate(j); err != nil {
		return nil, err
	}
	if p.DOI != "" {
		doi := strings.TrimSpace(p.DOI)
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
			Where("doi = ?", doi).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateDOI
		}
		j.DOI = &doi
	}
	ensureVolume(j, now)
	s.applyPublicationEffects(j, now)
	if err := s.DB.WithContext(ctx).Create(j).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDOI
		}
		return nil, err
	}
	return j, nil
}

// UpdateParams is the review-side patch: nil pointers leave fields untouched.
type UpdateParams struct {
	Status      *string
	ReviewNotes *string
	ReviewedBy  *string
	PageNumbers *string
}

// Update merges the patch into an existing record and re-runs the lifecycle
// side effects. A status write that changes the status stamps the review date.
func (s *Service) Update(ctx context.Context, id uint, p UpdateParams) (*models.PublishedJournal, error) {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if p.Status != nil && *p.Status != j.Status {
		j.Status = *p.Status
		j.ReviewDate = &now
	}
	if p.ReviewNotes != nil {
		j.ReviewNotes = *p.ReviewNotes
	}
	if p.ReviewedBy != nil {
		j.ReviewedBy = *p.ReviewedBy
	}
	if p.PageNumbers != nil {
		j.PageNumbers = *p.PageNumbers
	}
	if err := validate(j); err != nil {
		return nil, err
	}
	ensureVolume(j, now)
	s.applyPublicationEffects(j, now)
	if err := s.DB.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// Delete removes a record and best-effort removes its stored files. Blob or
// local-file failures are logged and never block the record deletion.
func (s *Service) Delete(ctx context.Context, id uint) error {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.cleanupFiles(ctx, j)
	return s.DB.WithContext(ctx).Delete(&models.PublishedJournal{}, j.ID).Error
}

func (s *Service) cleanupFiles(ctx context.Context, j *models.PublishedJournal) {
	if s.Blobs != nil {
		for _, url := range []string{j.PdfURL, j.DocxURL} {
			if url == "" {
				continue
			}
			cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.Blobs.Delete(cctx, url); err != nil {
				log.Printf("warning: blob delete failed for journal %d: %v", j.ID, err)
			}
			cancel()
		}
	}
	if j.ContentFilePath != "" {
		if err := os.Remove(j.ContentFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("warning: local file delete failed for journal %d: %v", j.ID, err)
		}
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "UNIQUE constraint") ||
		strings.Contains(s, "unique constraint")
}

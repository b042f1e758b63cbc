package journal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"jovote/models"
	"jovote/pkg/blobstore"
)

const defaultDOIPrefix = "10.5281/jovote"

// Service owns every mutation and read over the journal corpus. The blob
// store is optional; when nil, file cleanup is skipped.
type Service struct {
	DB        *gorm.DB
	Blobs     blobstore.Store
	DOIPrefix string
	Now       func() time.Time
}

func NewService(db *gorm.DB, blobs blobstore.Store) *Service {
	return &Service{DB: db, Blobs: blobs, DOIPrefix: defaultDOIPrefix, Now: time.Now}
}

// validate enforces the required-field rules shared by create and update.
func validate(j *models.PublishedJournal) error {
	if j.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if len(j.Title) > 500 {
		return &ValidationError{Field: "title", Reason: "exceeds 500 characters"}
	}
	if j.Abstract == "" {
		return &ValidationError{Field: "abstract", Reason: "required"}
	}
	if len(j.Abstract) > 5000 {
		return &ValidationError{Field: "abstract", Reason: "exceeds 5000 characters"}
	}
	if len(j.Authors) == 0 {
		return &ValidationError{Field: "authors", Reason: "at least one author required"}
	}
	switch j.Status {
	case models.StatusSubmitted, models.StatusUnderReview, models.StatusAccepted,
		models.StatusPublished, models.StatusRejected:
	default:
		return &ValidationError{Field: "status", Reason: "unknown status " + j.Status}
	}
	return nil
}

// ensureVolume assigns the volume pair exactly once. Preference order for the
// source date: publication date, then submission date, then now. Existing
// assignments are never recomputed.
func ensureVolume(j *models.PublishedJournal, now time.Time) {
	if j.VolumeYear != 0 && j.VolumeQuarter != 0 {
		return
	}
	source := now
	if j.PublicationDate != nil {
		source = *j.PublicationDate
	} else if !j.SubmissionDate.IsZero() {
		source = j.SubmissionDate
	}
	j.VolumeYear, j.VolumeQuarter = CalculateVolume(source)
}

// applyPublicationEffects stamps the publication date and assigns the DOI the
// first time a journal reaches published. Both are set-once: re-saving a
// published journal changes neither.
func (s *Service) applyPublicationEffects(j *models.PublishedJournal, now time.Time) {
	if j.Status != models.StatusPublished {
		return
	}
	if j.DOI == nil {
		doi := s.generateDOI(j, now)
		j.DOI = &doi
	}
	if j.PublicationDate == nil {
		j.PublicationDate = &now
	}
}

func (s *Service) generateDOI(j *models.PublishedJournal, now time.Time) string {
	prefix := s.DOIPrefix
	if prefix == "" {
		prefix = defaultDOIPrefix
	}
	return fmt.Sprintf("%s.%d.%d.%d", prefix, j.VolumeYear, j.VolumeQuarter, now.UnixMilli())
}

// Publish moves an accepted journal to published. Any other current status
// fails with ErrInvalidTransition and leaves the record untouched.
func (s *Service) Publish(ctx context.Context, id uint, reviewedBy, pageNumbers string) (*models.PublishedJournal, error) {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status != models.StatusAccepted {
		return nil, ErrInvalidTransition
	}
	now := s.Now()
	j.Status = models.StatusPublished
	if reviewedBy != "" {
		j.ReviewedBy = reviewedBy
	}
	if pageNumbers != "" {
		j.PageNumbers = pageNumbers
	}
	ensureVolume(j, now)
	s.applyPublicationEffects(j, now)
	if err := s.DB.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// Archive flags a journal as archived without changing its status. A
// published journal stays published and keeps serving archive listings.
func (s *Service) Archive(ctx context.Context, id uint) (*models.PublishedJournal, error) {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	j.IsArchived = true
	j.ArchivedDate = &now
	if err := s.DB.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

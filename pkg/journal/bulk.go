package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"jovote/models"
)

func validateIDs(ids []uint) error {
	if len(ids) == 0 {
		return &ValidationError{Field: "journal_ids", Reason: "at least one id required"}
	}
	for _, id := range ids {
		if id == 0 {
			return &ValidationError{Field: "journal_ids", Reason: "ids must be positive"}
		}
	}
	return nil
}

// BulkDelete removes every matching record and best-effort removes their
// stored files. Ids that do not resolve are skipped; the returned count is
// the number actually deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	var victims []models.PublishedJournal
	if err := s.DB.WithContext(ctx).Select("id", "pdf_url", "docx_url", "content_file_path").
		Where("id IN ?", ids).Find(&victims).Error; err != nil {
		return 0, err
	}
	for i := range victims {
		s.cleanupFiles(ctx, &victims[i])
	}
	res := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.PublishedJournal{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// BulkArchive sets the archived flag pair on every matching record. Status is
// left alone: archived published journals remain published.
func (s *Service) BulkArchive(ctx context.Context, ids []uint) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"is_archived": true, "archived_date": now})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// BulkPublish marks every matching record published and stamps the
// publication date. Unlike Publish it applies no accepted-status
// precondition; the admin bulk screen has always behaved this way and the
// mismatch is tracked as a known product question rather than silently
// tightened here.
func (s *Service) BulkPublish(ctx context.Context, ids []uint) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": models.StatusPublished, "publication_date": now})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// BulkUpdate applies a generic column patch to every matching record. A
// status change stamps the review date on all affected rows. Returns
// (matched, modified).
func (s *Service) BulkUpdate(ctx context.Context, ids []uint, patch map[string]interface{}) (int64, int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, 0, err
	}
	if len(patch) == 0 {
		return 0, 0, &ValidationError{Field: "update_data", Reason: "required"}
	}
	if _, ok := patch["status"]; ok {
		patch["review_date"] = s.Now()
	}
	var matched int64
	if err := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("id IN ?", ids).Count(&matched).Error; err != nil {
		return 0, 0, err
	}
	res := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("id IN ?", ids).Updates(patch)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	return matched, res.RowsAffected, nil
}

// ExportFilter selects records for CSV export: either an explicit id list or
// the advanced-search criteria.
type ExportFilter struct {
	IDs      []uint
	Criteria SearchCriteria
}

// ExportFilename is the suggested attachment name for a CSV export.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("journals-export-%s.csv", now.Format("2006-01-02"))
}

var csvHeader = []string{
	"Title", "Authors", "Abstract", "Keywords", "Volume Year", "Volume Quarter",
	"Status", "Submitted By", "Created Date", "Published Date",
}

// ExportCSV writes the selected records as CSV. An empty selection still
// writes the header row.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f ExportFilter) error {
	q := s.applyCriteria(ctx, f.Criteria)
	if len(f.IDs) > 0 {
		q = s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).Where("id IN ?", f.IDs)
	}
	var items []models.PublishedJournal
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range items {
		j := &items[i]
		published := ""
		if j.PublicationDate != nil {
			published = j.PublicationDate.Format("2006-01-02")
		}
		row := []string{
			j.Title,
			j.AuthorsDisplay(),
			truncateAbstract(j.Abstract, 100),
			strings.Join(j.Keywords, ", "),
			fmt.Sprintf("%d", j.VolumeYear),
			fmt.Sprintf("%d", j.VolumeQuarter),
			j.Status,
			j.SubmittedBy,
			j.CreatedAt.Format("2006-01-02"),
			published,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func truncateAbstract(s string, n int) string {
	if len(s) <= n {
		return s + "..."
	}
	return s[:n] + "..."
}

package journal

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"jovote/models"
)

const (
	DefaultPageSize      = 10
	DefaultAdminPageSize = 20
	archiveFloorYear     = 2000
)

// Page is the uniform paginated result: 1-indexed page number, total count
// and ceil-derived page count.
type Page struct {
	Items      []models.PublishedJournal `json:"journals"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

func normalizePage(page, size, fallbackSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = fallbackSize
	}
	return page, size
}

func paginate(ctx context.Context, q *gorm.DB, page, size int) (Page, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page{}, err
	}
	var items []models.PublishedJournal
	if err := q.Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return Page{}, err
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page{Items: items, Total: total, Page: page, PageSize: size, TotalPages: totalPages}, nil
}

// textSearch matches title or abstract case-insensitively. Works on both
// postgres and sqlite since it only relies on lower() + LIKE.
func textSearch(q *gorm.DB, term string) *gorm.DB {
	pat := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	return q.Where("lower(title) LIKE ? OR lower(abstract) LIKE ?", pat, pat)
}

// GetByID fetches a single record, mapping missing rows to ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.PublishedJournal, error) {
	if id == 0 {
		return nil, ErrInvalidArgument
	}
	var j models.PublishedJournal
	if err := s.DB.WithContext(ctx).First(&j, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// ListCurrentYear returns the public landing listing: this year's published,
// non-archived journals, optionally narrowed by search term and quarter.
func (s *Service) ListCurrentYear(ctx context.Context, search string, quarter, page, size int) (Page, error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	year, _ := CalculateVolume(s.Now())
	q := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("volume_year = ? AND status = ? AND is_archived = ?", year, models.StatusPublished, false)
	if search != "" {
		q = textSearch(q, search)
	}
	if quarter != 0 {
		q = q.Where("volume_quarter = ?", quarter)
	}
	q = q.Order("volume_quarter asc").Order("publication_date desc")
	return paginate(ctx, q, page, size)
}

// ListArchivedByYear returns archived published journals for one volume year.
func (s *Service) ListArchivedByYear(ctx context.Context, year, quarter, page, size int) (Page, error) {
	currentYear, _ := CalculateVolume(s.Now())
	if year < archiveFloorYear || year > currentYear {
		return Page{}, ErrInvalidArgument
	}
	page, size = normalizePage(page, size, DefaultPageSize)
	q := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("volume_year = ? AND is_archived = ? AND status = ?", year, true, models.StatusPublished)
	if quarter != 0 {
		q = q.Where("volume_quarter = ?", quarter)
	}
	q = q.Order("volume_quarter asc").Order("publication_date desc")
	return paginate(ctx, q, page, size)
}

// ListByVolume returns the published journals of one (year, quarter) volume.
func (s *Service) ListByVolume(ctx context.Context, year, quarter, page, size int) (Page, error) {
	if year == 0 || quarter < 1 || quarter > 4 {
		return Page{}, ErrInvalidArgument
	}
	page, size = normalizePage(page, size, DefaultPageSize)
	q := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Where("volume_year = ? AND volume_quarter = ? AND status = ?", year, quarter, models.StatusPublished).
		Order("publication_date desc")
	return paginate(ctx, q, page, size)
}

// PendingPage is the review queue plus its per-status counters.
type PendingPage struct {
	Page
	StatusCounts map[string]int64 `json:"status_counts"`
}

// ListPendingReview returns the review queue oldest-first. An empty status
// selects everything still in review (submitted, under_review, accepted).
func (s *Service) ListPendingReview(ctx context.Context, status string, page, size int) (PendingPage, error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	q := s.DB.WithContext(ctx).Model(&models.PublishedJournal{})
	if status == "" || status == "all" {
		q = q.Where("status IN ?", models.ReviewStatuses)
	} else {
		q = q.Where("status = ?", status)
	}
	q = q.Order("submission_date asc")
	p, err := paginate(ctx, q, page, size)
	if err != nil {
		return PendingPage{}, err
	}

	counts := map[string]int64{}
	rows, err := s.DB.WithContext(ctx).Model(&models.PublishedJournal{}).
		Select("status, count(*) as n").
		Where("status IN ?", []string{models.StatusSubmitted, models.StatusUnderReview, models.StatusAccepted, models.StatusRejected}).
		Group("status").Rows()
	if err != nil {
		return PendingPage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return PendingPage{}, err
		}
		counts[st] = n
	}
	return PendingPage{Page: p, StatusCounts: counts}, nil
}

// SearchCriteria is the advanced-search filter vocabulary, shared with the
// admin listing and the CSV export.
type SearchCriteria struct {
	Search   string
	Year     int
	Quarter  int
	Author   string
	Keywords []string
	Status   string
	Page     int
	PageSize int
}

func (s *Service) applyCriteria(ctx context.Context, c SearchCriteria) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.PublishedJournal{})
	if c.Search != "" {
		pat := "%" + strings.ToLower(strings.TrimSpace(c.Search)) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(abstract) LIKE ? OR lower(CAST(keywords AS TEXT)) LIKE ?",
			pat, pat, pat)
	}
	if c.Year != 0 {
		q = q.Where("volume_year = ?", c.Year)
	}
	if c.Quarter != 0 {
		q = q.Where("volume_quarter = ?", c.Quarter)
	}
	if c.Author != "" {
		q = q.Where("lower(CAST(authors AS TEXT)) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(c.Author))+"%")
	}
	if len(c.Keywords) > 0 {
		conds := make([]string, 0, len(c.Keywords))
		args := make([]interface{}, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			conds = append(conds, "lower(CAST(keywords AS TEXT)) LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
		if len(conds) > 0 {
			q = q.Where(strings.Join(conds, " OR "), args...)
		}
	}
	if c.Status != "" && c.Status != "all" {
		q = q.Where("status = ?", c.Status)
	}
	return q
}

// AdvancedSearch runs the public search: defaults to published records,
// newest first.
func (s *Service) AdvancedSearch(ctx context.Context, c SearchCriteria) (Page, error) {
	if c.Status == "" {
		c.Status = models.StatusPublished
	}
	page, size := normalizePage(c.Page, c.PageSize, DefaultPageSize)
	q := s.applyCriteria(ctx, c).Order("created_at desc")
	return paginate(ctx, q, page, size)
}

// AdminList is the management listing: same filter vocabulary, all statuses
// unless one is given, larger default page size.
func (s *Service) AdminList(ctx context.Context, c SearchCriteria) (Page, error) {
	page, size := normalizePage(c.Page, c.PageSize, DefaultAdminPageSize)
	q := s.applyCriteria(ctx, c).Order("created_at desc")
	return paginate(ctx, q, page, size)
}

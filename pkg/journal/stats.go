package journal

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"jovote/models"
)

// Overview is the headline block of the statistics endpoint.
type Overview struct {
	TotalJournals       int64 `json:"total_journals"`
	CurrentYearJournals int64 `json:"current_year_journals"`
	TotalSubmissions    int64 `json:"total_submissions"`
	PendingReviews      int64 `json:"pending_reviews"`
	TotalDownloads      int64 `json:"total_downloads"`
	AvgDownloads        int64 `json:"avg_downloads"`
	TotalAuthors        int   `json:"total_authors"`
	CurrentYear         int   `json:"current_year"`
}

// QuarterStat is one quarter's slice of the target year. All four quarters
// are always present, zero-filled when empty.
type QuarterStat struct {
	Quarter      int   `json:"quarter"`
	Count        int64 `json:"count"`
	Downloads    int64 `json:"downloads"`
	AvgDownloads int64 `json:"avg_downloads"`
}

// YearStat is one year of the five-year trend.
type YearStat struct {
	Year          int   `json:"year"`
	Count         int64 `json:"count"`
	Downloads     int64 `json:"downloads"`
	AvgDownloads  int64 `json:"avg_downloads"`
	UniqueAuthors int   `json:"unique_authors"`
}

// TopJournal is a row of the downloads leaderboard.
type TopJournal struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	VolumeYear    int       `json:"volume_year"`
	VolumeQuarter int       `json:"volume_quarter"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusCount pairs a status with its record count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// MonthStat is one calendar month of the target year's publishing activity.
type MonthStat struct {
	Month     int   `json:"month"`
	Count     int64 `json:"count"`
	Downloads int64 `json:"downloads"`
}

// Stats is the full report for one target year.
type Stats struct {
	Overview           Overview         `json:"overview"`
	QuarterlyStats     []QuarterStat    `json:"quarterly_stats"`
	YearlyStats        []YearStat       `json:"yearly_stats"`
	TopJournals        []TopJournal     `json:"top_journals"`
	RecentActivity     map[string]int64 `json:"recent_activity"`
	StatusDistribution []StatusCount    `json:"status_distribution"`
	AvailableYears     []int            `json:"available_years"`
	MonthlyTrends      []MonthStat      `json:"monthly_trends"`
	GeneratedAt        time.Time        `json:"generated_at"`
	RequestedYear      int              `json:"requested_year"`
}

// GetStats aggregates the whole report for targetYear (0 means the current
// year). An empty corpus yields zero-filled structures, never an error.
func (s *Service) GetStats(ctx context.Context, targetYear int) (*Stats, error) {
	now := s.Now()
	if targetYear == 0 {
		targetYear = now.Year()
	}
	db := s.DB.WithContext(ctx)

	st := &Stats{
		RecentActivity: map[string]int64{},
		GeneratedAt:    now,
		RequestedYear:  targetYear,
	}

	// Overview counters.
	if err := db.Model(&models.PublishedJournal{}).
		Where("status = ?", models.StatusPublished).Count(&st.Overview.TotalJournals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PublishedJournal{}).
		Where("status = ? AND volume_year = ?", models.StatusPublished, targetYear).
		Count(&st.Overview.CurrentYearJournals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PublishedJournal{}).Count(&st.Overview.TotalSubmissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PublishedJournal{}).
		Where("status IN ?", []string{models.StatusSubmitted, models.StatusUnderReview}).
		Count(&st.Overview.PendingReviews).Error; err != nil {
		return nil, err
	}

	var dl struct {
		Total int64
		Avg   float64
	}
	if err := db.Model(&models.PublishedJournal{}).
		Select("COALESCE(SUM(COALESCE(download_count,0)),0) as total, COALESCE(AVG(COALESCE(download_count,0)),0) as avg").
		Where("status = ?", models.StatusPublished).Scan(&dl).Error; err != nil {
		return nil, err
	}
	st.Overview.TotalDownloads = dl.Total
	st.Overview.AvgDownloads = int64(math.Round(dl.Avg))
	st.Overview.CurrentYear = targetYear

	// Quarterly breakdown, zero-filled.
	type qRow struct {
		Quarter int
		Count   int64
		Total   int64
		Avg     float64
	}
	var qRows []qRow
	if err := db.Model(&models.PublishedJournal{}).
		Select("volume_quarter as quarter, count(*) as count, COALESCE(SUM(COALESCE(download_count,0)),0) as total, COALESCE(AVG(COALESCE(download_count,0)),0) as avg").
		Where("status = ? AND volume_year = ?", models.StatusPublished, targetYear).
		Group("volume_quarter").Scan(&qRows).Error; err != nil {
		return nil, err
	}
	byQuarter := map[int]qRow{}
	for _, r := range qRows {
		byQuarter[r.Quarter] = r
	}
	for q := 1; q <= 4; q++ {
		r := byQuarter[q]
		st.QuarterlyStats = append(st.QuarterlyStats, QuarterStat{
			Quarter:      q,
			Count:        r.Count,
			Downloads:    r.Total,
			AvgDownloads: int64(math.Round(r.Avg)),
		})
	}

	// Yearly trend: last five volume years, newest first.
	type yRow struct {
		Year  int
		Count int64
		Total int64
		Avg   float64
	}
	var yRows []yRow
	if err := db.Model(&models.PublishedJournal{}).
		Select("volume_year as year, count(*) as count, COALESCE(SUM(COALESCE(download_count,0)),0) as total, COALESCE(AVG(COALESCE(download_count,0)),0) as avg").
		Where("status = ?", models.StatusPublished).
		Group("volume_year").Order("volume_year desc").Limit(5).Scan(&yRows).Error; err != nil {
		return nil, err
	}

	// Author sets and monthly trend need the rows themselves.
	var publishedRows []models.PublishedJournal
	if err := db.Select("id", "authors", "volume_year", "created_at", "download_count").
		Where("status = ?", models.StatusPublished).Find(&publishedRows).Error; err != nil {
		return nil, err
	}
	st.Overview.TotalAuthors = countUniqueAuthors(publishedRows, 0)
	for _, r := range yRows {
		st.YearlyStats = append(st.YearlyStats, YearStat{
			Year:          r.Year,
			Count:         r.Count,
			Downloads:     r.Total,
			AvgDownloads:  int64(math.Round(r.Avg)),
			UniqueAuthors: countUniqueAuthors(publishedRows, r.Year),
		})
	}

	// Top ten by downloads. Natural record order breaks ties.
	var top []models.PublishedJournal
	if err := db.Where("status = ? AND download_count > 0", models.StatusPublished).
		Order("download_count desc").Order("id asc").Limit(10).Find(&top).Error; err != nil {
		return nil, err
	}
	for _, j := range top {
		st.TopJournals = append(st.TopJournals, TopJournal{
			ID:            j.ID,
			Title:         j.Title,
			Authors:       j.Authors,
			VolumeYear:    j.VolumeYear,
			VolumeQuarter: j.VolumeQuarter,
			DownloadCount: j.DownloadCount,
			CreatedAt:     j.CreatedAt,
		})
	}

	// Recent activity: per-status counts over the last 30 days.
	cutoff := now.AddDate(0, 0, -30)
	rows, err := db.Model(&models.PublishedJournal{}).
		Select("status, count(*) as n").
		Where("created_at >= ?", cutoff).Group("status").Rows()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.RecentActivity[status] = n
	}
	rows.Close()

	// Status distribution across everything, largest first.
	var dist []StatusCount
	if err := db.Model(&models.PublishedJournal{}).
		Select("status, count(*) as count").
		Group("status").Order("count desc").Scan(&dist).Error; err != nil {
		return nil, err
	}
	st.StatusDistribution = dist

	// Distinct volume years among published records, newest first.
	var years []int
	if err := db.Model(&models.PublishedJournal{}).
		Where("status = ?", models.StatusPublished).
		Distinct("volume_year").Order("volume_year desc").Pluck("volume_year", &years).Error; err != nil {
		return nil, err
	}
	st.AvailableYears = years

	// Monthly trend grouped in memory so it stays portable across drivers.
	monthly := map[int]*MonthStat{}
	for i := range publishedRows {
		j := &publishedRows[i]
		if j.VolumeYear != targetYear {
			continue
		}
		m := int(j.CreatedAt.Month())
		ms, ok := monthly[m]
		if !ok {
			ms = &MonthStat{Month: m}
			monthly[m] = ms
		}
		ms.Count++
		ms.Downloads += j.DownloadCount
	}
	for m := 1; m <= 12; m++ {
		if ms, ok := monthly[m]; ok {
			st.MonthlyTrends = append(st.MonthlyTrends, *ms)
		}
	}
	sort.Slice(st.MonthlyTrends, func(i, k int) bool { return st.MonthlyTrends[i].Month < st.MonthlyTrends[k].Month })

	return st, nil
}

// countUniqueAuthors deduplicates author names case-insensitively after
// trimming. year 0 means across all rows.
func countUniqueAuthors(rows []models.PublishedJournal, year int) int {
	seen := map[string]struct{}{}
	for i := range rows {
		if year != 0 && rows[i].VolumeYear != year {
			continue
		}
		for _, a := range rows[i].Authors {
			key := strings.ToLower(strings.TrimSpace(a))
			if key == "" {
				continue
			}
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

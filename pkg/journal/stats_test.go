package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jovote/models"
)

func TestGetStatsEmptyCorpus(t *testing.T) {
	s := newTestService(t)
	s.Now = fixedClock(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC))

	st, err := s.GetStats(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2024, st.RequestedYear)
	assert.Zero(t, st.Overview.TotalJournals)
	assert.Zero(t, st.Overview.TotalDownloads)
	assert.Zero(t, st.Overview.TotalAuthors)

	// All four quarters are present even with nothing published.
	require.Len(t, st.QuarterlyStats, 4)
	for i, q := range st.QuarterlyStats {
		assert.Equal(t, i+1, q.Quarter)
		assert.Zero(t, q.Count)
		assert.Zero(t, q.Downloads)
		assert.Zero(t, q.AvgDownloads)
	}

	assert.Empty(t, st.YearlyStats)
	assert.Empty(t, st.TopJournals)
	assert.Empty(t, st.AvailableYears)
	assert.Empty(t, st.MonthlyTrends)
}

func TestGetStatsAggregates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Now = tickingClock(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))

	pub := func(title string, quarter int, downloads int64, authors ...string) {
		mustCreate(t, s, CreateParams{
			Title:         title,
			Authors:       authors,
			Status:        models.StatusPublished,
			VolumeYear:    2024,
			VolumeQuarter: quarter,
			DownloadCount: downloads,
		})
	}
	pub("Popular Paper", 2, 30, "Dr. A")
	pub("Second Paper", 2, 10, " dr. a ", "Dr. B")
	pub("Quiet Paper", 4, 0, "Dr. C")
	mustCreate(t, s, CreateParams{Title: "In the Queue", Authors: []string{"Dr. D"}})

	st, err := s.GetStats(ctx, 2024)
	require.NoError(t, err)

	assert.Equal(t, int64(3), st.Overview.TotalJournals)
	assert.Equal(t, int64(3), st.Overview.CurrentYearJournals)
	assert.Equal(t, int64(4), st.Overview.TotalSubmissions)
	assert.Equal(t, int64(1), st.Overview.PendingReviews)
	assert.Equal(t, int64(40), st.Overview.TotalDownloads)
	// 40 downloads over 3 published records, rounded.
	assert.Equal(t, int64(13), st.Overview.AvgDownloads)
	// Author names dedupe case-insensitively after trimming.
	assert.Equal(t, 3, st.Overview.TotalAuthors)

	require.Len(t, st.QuarterlyStats, 4)
	q2 := st.QuarterlyStats[1]
	assert.Equal(t, int64(2), q2.Count)
	assert.Equal(t, int64(40), q2.Downloads)
	assert.Equal(t, int64(20), q2.AvgDownloads)
	q4 := st.QuarterlyStats[3]
	assert.Equal(t, int64(1), q4.Count)
	assert.Zero(t, q4.Downloads)
	assert.Zero(t, st.QuarterlyStats[0].Count)
	assert.Zero(t, st.QuarterlyStats[2].Count)

	require.Len(t, st.YearlyStats, 1)
	assert.Equal(t, 2024, st.YearlyStats[0].Year)
	assert.Equal(t, int64(3), st.YearlyStats[0].Count)
	assert.Equal(t, 3, st.YearlyStats[0].UniqueAuthors)

	// Leaderboard skips zero-download records and orders by downloads.
	require.Len(t, st.TopJournals, 2)
	assert.Equal(t, "Popular Paper", st.TopJournals[0].Title)
	assert.Equal(t, int64(30), st.TopJournals[0].DownloadCount)
	assert.Equal(t, "Second Paper", st.TopJournals[1].Title)

	assert.Equal(t, []int{2024}, st.AvailableYears)

	var published int64
	for _, sc := range st.StatusDistribution {
		if sc.Status == models.StatusPublished {
			published = sc.Count
		}
	}
	assert.Equal(t, int64(3), published)

	// All seeded records were created just now.
	assert.Equal(t, int64(3), st.RecentActivity[models.StatusPublished])
	assert.Equal(t, int64(1), st.RecentActivity[models.StatusSubmitted])

	var monthlyCount, monthlyDownloads int64
	for _, m := range st.MonthlyTrends {
		monthlyCount += m.Count
		monthlyDownloads += m.Downloads
	}
	assert.Equal(t, int64(3), monthlyCount)
	assert.Equal(t, int64(40), monthlyDownloads)
}

func TestCountUniqueAuthors(t *testing.T) {
	rows := []models.PublishedJournal{
		{VolumeYear: 2024, Authors: []string{"Dr. A"}},
		{VolumeYear: 2024, Authors: []string{" dr. a ", "Dr. B"}},
		{VolumeYear: 2023, Authors: []string{"Dr. C", ""}},
	}
	assert.Equal(t, 3, countUniqueAuthors(rows, 0))
	assert.Equal(t, 2, countUniqueAuthors(rows, 2024))
	assert.Equal(t, 1, countUniqueAuthors(rows, 2023))
	assert.Equal(t, 0, countUniqueAuthors(rows, 2020))
}

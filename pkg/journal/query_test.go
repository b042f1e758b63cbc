package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jovote/models"
)

func TestGetByIDErrors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.GetByID(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.GetByID(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCurrentYear(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Now = tickingClock(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC))

	pub := func(title string, quarter int, archived bool) {
		j := mustCreate(t, s, CreateParams{
			Title:         title,
			Status:        models.StatusPublished,
			VolumeYear:    2024,
			VolumeQuarter: quarter,
		})
		if archived {
			_, err := s.Archive(ctx, j.ID)
			require.NoError(t, err)
		}
	}
	pub("Graph Databases in Practice", 1, false)
	pub("Streaming Joins at Scale", 2, false)
	pub("Withdrawn Volume", 2, true)
	mustCreate(t, s, CreateParams{Title: "Last Year", Status: models.StatusPublished, VolumeYear: 2023, VolumeQuarter: 4})
	mustCreate(t, s, CreateParams{Title: "Not Yet Published", VolumeYear: 2024, VolumeQuarter: 2})

	page, err := s.ListCurrentYear(ctx, "", 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	// Ordered by quarter ascending.
	assert.Equal(t, "Graph Databases in Practice", page.Items[0].Title)
	assert.Equal(t, "Streaming Joins at Scale", page.Items[1].Title)

	page, err = s.ListCurrentYear(ctx, "", 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = s.ListCurrentYear(ctx, "GRAPH", 0, 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Graph Databases in Practice", page.Items[0].Title)
}

func TestListArchivedByYear(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Now = tickingClock(time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC))

	j := mustCreate(t, s, CreateParams{Title: "Archived 2022", Status: models.StatusPublished, VolumeYear: 2022, VolumeQuarter: 3})
	_, err := s.Archive(ctx, j.ID)
	require.NoError(t, err)
	mustCreate(t, s, CreateParams{Title: "Live 2022", Status: models.StatusPublished, VolumeYear: 2022, VolumeQuarter: 3})

	page, err := s.ListArchivedByYear(ctx, 2022, 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Archived 2022", page.Items[0].Title)

	_, err = s.ListArchivedByYear(ctx, 1999, 0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.ListArchivedByYear(ctx, 2030, 0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListByVolume(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Now = tickingClock(time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC))

	mustCreate(t, s, CreateParams{Title: "Q3 Paper", Status: models.StatusPublished, VolumeYear: 2023, VolumeQuarter: 3})
	mustCreate(t, s, CreateParams{Title: "Q4 Paper", Status: models.StatusPublished, VolumeYear: 2023, VolumeQuarter: 4})

	page, err := s.ListByVolume(ctx, 2023, 3, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = s.ListByVolume(ctx, 2023, 5, 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.ListByVolume(ctx, 0, 2, 1, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListPendingReview(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	at := func(day int) time.Time { return time.Date(2024, time.April, day, 0, 0, 0, 0, time.UTC) }
	mustCreate(t, s, CreateParams{Title: "Third In", SubmissionDate: at(20)})
	mustCreate(t, s, CreateParams{Title: "First In", SubmissionDate: at(1)})
	mustCreate(t, s, CreateParams{Title: "Second In", Status: models.StatusUnderReview, SubmissionDate: at(10)})
	mustCreate(t, s, CreateParams{Title: "Turned Down", Status: models.StatusRejected, SubmissionDate: at(5)})
	mustCreate(t, s, CreateParams{Title: "Already Out", Status: models.StatusPublished, SubmissionDate: at(2)})

	page, err := s.ListPendingReview(ctx, "", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 3)
	// Oldest submission first.
	assert.Equal(t, "First In", page.Items[0].Title)
	assert.Equal(t, "Second In", page.Items[1].Title)
	assert.Equal(t, "Third In", page.Items[2].Title)

	assert.Equal(t, int64(2), page.StatusCounts[models.StatusSubmitted])
	assert.Equal(t, int64(1), page.StatusCounts[models.StatusUnderReview])
	assert.Equal(t, int64(1), page.StatusCounts[models.StatusRejected])

	page, err = s.ListPendingReview(ctx, models.StatusUnderReview, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestAdvancedSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	s.Now = tickingClock(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))

	mustCreate(t, s, CreateParams{
		Title:    "Distributed Consensus Protocols",
		Abstract: "Raft and Paxos compared.",
		Authors:  []string{"Dr. Alice Smith"},
		Keywords: []string{"consensus", "raft"},
		Status:   models.StatusPublished,
	})
	mustCreate(t, s, CreateParams{
		Title:    "Vector Search Indexes",
		Abstract: "HNSW in production.",
		Authors:  []string{"Dr. Bob Jones"},
		Keywords: []string{"embeddings"},
		Status:   models.StatusPublished,
	})
	mustCreate(t, s, CreateParams{
		Title:   "Consensus Draft",
		Authors: []string{"Dr. Alice Smith"},
	})

	// Defaults to published only.
	page, err := s.AdvancedSearch(ctx, SearchCriteria{Search: "consensus"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Distributed Consensus Protocols", page.Items[0].Title)

	page, err = s.AdvancedSearch(ctx, SearchCriteria{Author: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	// Keyword list is an OR.
	page, err = s.AdvancedSearch(ctx, SearchCriteria{Keywords: []string{"raft", "embeddings"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	// An explicit status widens the net.
	page, err = s.AdvancedSearch(ctx, SearchCriteria{Search: "consensus", Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestAdminListPagination(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	mustCreate(t, s, CreateParams{Title: "One"})
	mustCreate(t, s, CreateParams{Title: "Two", Status: models.StatusPublished})
	mustCreate(t, s, CreateParams{Title: "Three", Status: models.StatusRejected})

	page, err := s.AdminList(ctx, SearchCriteria{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	page, err = s.AdminList(ctx, SearchCriteria{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	// Out-of-range page numbers normalize to the first page.
	page, err = s.AdminList(ctx, SearchCriteria{Page: -3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 2)
}

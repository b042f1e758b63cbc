package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jovote/models"
)

func TestCreateDefaults(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2024, time.July, 20, 14, 0, 0, 0, time.UTC)
	s.Now = fixedClock(now)

	j, err := s.Create(context.Background(), CreateParams{
		Title:    "  Deep Learning for Protein Folding  ",
		Abstract: "A study.",
		Authors:  []string{" Dr. Alice Smith ", "", "Dr. Bob Jones"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Deep Learning for Protein Folding", j.Title)
	assert.Equal(t, models.StatusSubmitted, j.Status)
	assert.True(t, j.SubmissionDate.Equal(now))
	assert.Equal(t, []string{"Dr. Alice Smith", "Dr. Bob Jones"}, []string(j.Authors))
	assert.Equal(t, 2024, j.VolumeYear)
	assert.Equal(t, 3, j.VolumeQuarter)
	assert.Nil(t, j.DOI)
	assert.Nil(t, j.PublicationDate)
}

func TestCreateValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		p     CreateParams
		field string
	}{
		{"missing title", CreateParams{Abstract: "a", Authors: []string{"x"}}, "title"},
		{"oversized title", CreateParams{Title: strings.Repeat("t", 501), Abstract: "a", Authors: []string{"x"}}, "title"},
		{"missing abstract", CreateParams{Title: "t", Authors: []string{"x"}}, "abstract"},
		{"no authors", CreateParams{Title: "t", Abstract: "a"}, "authors"},
		{"blank authors only", CreateParams{Title: "t", Abstract: "a", Authors: []string{"  "}}, "authors"},
		{"unknown status", CreateParams{Title: "t", Abstract: "a", Authors: []string{"x"}, Status: "in_limbo"}, "status"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.Create(ctx, c.p)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
		})
	}
}

func TestCreateDuplicateDOI(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	mustCreate(t, s, CreateParams{Title: "First", DOI: "10.5281/jovote.2024.1.1"})
	_, err := s.Create(ctx, CreateParams{
		Title:    "Second",
		Abstract: "a",
		Authors:  []string{"x"},
		DOI:      "10.5281/jovote.2024.1.1",
	})
	require.ErrorIs(t, err, ErrDuplicateDOI)
}

func TestCreatePublishedRunsEffects(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	s.Now = fixedClock(now)

	j := mustCreate(t, s, CreateParams{Title: "Admin Insert", Status: models.StatusPublished})
	require.NotNil(t, j.DOI)
	require.NotNil(t, j.PublicationDate)
	assert.True(t, j.PublicationDate.Equal(now))
	assert.Equal(t, 2024, j.VolumeYear)
	assert.Equal(t, 1, j.VolumeQuarter)
}

func TestUpdateStampsReviewDate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	reviewAt := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	s.Now = fixedClock(reviewAt)

	j := mustCreate(t, s, CreateParams{Title: "Reviewable"})
	require.Nil(t, j.ReviewDate)

	status := models.StatusUnderReview
	got, err := s.Update(ctx, j.ID, UpdateParams{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, got.ReviewDate)
	assert.True(t, got.ReviewDate.Equal(reviewAt))

	// An edit that does not change the status keeps the earlier stamp.
	s.Now = fixedClock(reviewAt.Add(48 * time.Hour))
	notes := "needs a stronger methods section"
	got, err = s.Update(ctx, j.ID, UpdateParams{ReviewNotes: &notes})
	require.NoError(t, err)
	require.NotNil(t, got.ReviewDate)
	assert.True(t, got.ReviewDate.Equal(reviewAt))
	assert.Equal(t, notes, got.ReviewNotes)
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestService(t)
	status := models.StatusAccepted
	_, err := s.Update(context.Background(), 9999, UpdateParams{Status: &status})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesRecordAndBlobs(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	store := &recordingStore{}
	s.Blobs = store

	j := mustCreate(t, s, CreateParams{
		Title:   "Doomed",
		PdfURL:  "https://assets.local/jovote/upload/abc-doomed.pdf",
		DocxURL: "https://assets.local/jovote/upload/abc-doomed.docx",
	})
	require.NoError(t, s.Delete(ctx, j.ID))

	_, err := s.GetByID(ctx, j.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.ElementsMatch(t, []string{
		"https://assets.local/jovote/upload/abc-doomed.pdf",
		"https://assets.local/jovote/upload/abc-doomed.docx",
	}, store.deleted)

	require.ErrorIs(t, s.Delete(ctx, 12345), ErrNotFound)
}

func TestValidationErrorMessage(t *testing.T) {
	err := error(&ValidationError{Field: "title", Reason: "required"})
	assert.Equal(t, "validation failed on title: required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

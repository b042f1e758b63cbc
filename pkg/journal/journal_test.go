package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jovote/models"
)

// newTestService opens a private in-memory sqlite database per test. The
// connection pool is pinned to one connection so every query sees the same
// in-memory schema.
func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.PublishedJournal{}))
	return NewService(db, nil)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// tickingClock advances a millisecond per call so every generated DOI suffix
// stays unique within a test.
func tickingClock(start time.Time) func() time.Time {
	var n int64
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Millisecond)
	}
}

// mustCreate fills the required fields a test left blank and persists the
// record.
func mustCreate(t *testing.T, s *Service, p CreateParams) *models.PublishedJournal {
	t.Helper()
	if p.Title == "" {
		p.Title = "Untitled Manuscript"
	}
	if p.Abstract == "" {
		p.Abstract = "An abstract."
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{"Dr. Test Author"}
	}
	j, err := s.Create(context.Background(), p)
	require.NoError(t, err)
	return j
}

// recordingStore remembers which blob URLs were deleted.
type recordingStore struct {
	deleted []string
}

func (r *recordingStore) Upload(ctx context.Context, localPath, hint string) (string, error) {
	return "", nil
}

func (r *recordingStore) Delete(ctx context.Context, url string) error {
	r.deleted = append(r.deleted, url)
	return nil
}

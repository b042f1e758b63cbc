package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps objects on disk under BaseDir and hands out URLs shaped
// like the hosted store's (<BaseURL>/upload/<public-id>.<ext>) so the URL
// helpers behave identically in dev and test environments.
type LocalStore struct {
	BaseDir string
	BaseURL string
}

func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{BaseDir: baseDir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *LocalStore) Upload(ctx context.Context, localPath, hint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(localPath)
	base := strings.TrimSuffix(filepath.Base(localPath), ext)
	if hint != "" {
		base = hint
	}
	publicID := fmt.Sprintf("%s-%s", uuid.NewString()[:8], sanitizeObjectName(base))

	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(l.BaseDir, publicID+ext))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/upload/%s%s", l.BaseURL, publicID, ext), nil
}

func (l *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return fmt.Errorf("cannot derive object id from %q", url)
	}
	matches, err := filepath.Glob(filepath.Join(l.BaseDir, publicID+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeObjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

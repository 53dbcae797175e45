package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps images on disk; the router serves Dir under /images.
type Local struct {
	Dir     string
	BaseURL string
	Folder  string
}

func (l *Local) Upload(ctx context.Context, r io.Reader, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(l.Dir, l.Folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(l.BaseURL, "/") + "/images/" + l.Folder + "/" + name, nil
}

func (l *Local) Destroy(_ context.Context, url string) error {
	id := PublicIDFromURL(l.Folder, url)
	if id == "" || !strings.HasPrefix(url, strings.TrimRight(l.BaseURL, "/")+"/images/") {
		return nil
	}
	base := filepath.Base(url)
	if q := strings.IndexAny(base, "?#"); q >= 0 {
		base = base[:q]
	}
	err := os.Remove(filepath.Join(l.Dir, l.Folder, base))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Package storage hosts profile images.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

type ImageStore interface {
	// Upload stores r under name and returns its public URL.
	Upload(ctx context.Context, r io.Reader, name string) (string, error)
	// Destroy removes the image behind url if this store owns it.
	Destroy(ctx context.Context, url string) error
}

// PublicIDFromURL extracts "<folder>/<file without extension>" from a URL that
// points into folder. It returns "" for URLs outside folder.
func PublicIDFromURL(folder, url string) string {
	marker := "/" + strings.Trim(folder, "/") + "/"
	i := strings.LastIndex(url, marker)
	if i < 0 {
		return ""
	}
	file := url[i+len(marker):]
	if q := strings.IndexAny(file, "?#"); q >= 0 {
		file = file[:q]
	}
	if file == "" || strings.Contains(file, "/") {
		return ""
	}
	file = strings.TrimSuffix(file, path.Ext(file))
	return strings.Trim(folder, "/") + "/" + file
}

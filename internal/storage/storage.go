// Package storage keeps uploaded images and videos on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore saves uploaded files and returns the key they can be retrieved under.
type BlobStore interface {
	Put(ctx context.Context, dir, filename string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision free object key under dir, keeping the original extension.
func NewKey(dir, filename string) string {
	d := time.Now()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%s%s", strings.Trim(dir, "/"), d.Year(), d.Month(), uuid.New(), ext)
}

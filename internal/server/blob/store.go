// Package blob stores note files in an S3-compatible object store and
// fetches externally hosted files for the download relay.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object identifies a stored blob. URL is publicly addressable; ID is the
// store key used for removal and streaming.
type Object struct {
	ID  string
	URL string
}

// Reader is an open blob stream. Size is -1 when unknown.
type Reader struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (*Object, error)
	Remove(ctx context.Context, id string) error
	Open(ctx context.Context, id string) (*Reader, error)
}

// Fetcher opens files that live outside our store.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Reader, error)
}

// NewKey builds a dated, collision-free object key that keeps the original
// file name readable: notes/YYYY/MM/DD/<uuid>-<name>.
func NewKey(name string, now time.Time) string {
	return fmt.Sprintf("notes/%04d/%02d/%02d/%s-%s", now.Year(), now.Month(), now.Day(), uuid.New(), safeName(name))
}

func safeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

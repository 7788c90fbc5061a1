package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/blob"
	"github.com/dmitrijs2005/notehub/internal/server/metrics"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
)

// Download is an open file stream ready to be relayed. Size is -1 when the
// upstream did not announce a length.
type Download struct {
	NoteID      string
	FileName    string
	ContentType string
	Size        int64
	Source      string
	Body        io.ReadCloser
}

const (
	SourceManaged  = "managed"
	SourceExternal = "external"
)

type DownloadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	fetcher     blob.Fetcher
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewDownloadService(db *sql.DB, rm repomanager.RepositoryManager, blobs blob.Store, f blob.Fetcher, m *metrics.Metrics, l logging.Logger) *DownloadService {
	return &DownloadService{
		db:          db,
		repomanager: rm,
		blobs:       blobs,
		fetcher:     f,
		metrics:     m,
		logger:      l.With("module", "download"),
	}
}

// Open resolves the note's file and opens a stream from wherever it lives.
// The caller must close Body.
func (s *DownloadService) Open(ctx context.Context, noteID string) (*Download, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.FileURL == "" {
		return nil, fmt.Errorf("%w: note has no file", common.ErrorNotFound)
	}

	var (
		r      *blob.Reader
		source string
	)
	if note.Managed() {
		source = SourceManaged
		r, err = s.blobs.Open(ctx, note.BlobID)
		s.metrics.RecordBlobOperation("open", err)
	} else {
		source = SourceExternal
		r, err = s.fetcher.Fetch(ctx, note.FileURL)
		s.metrics.RecordBlobOperation("fetch", err)
	}
	if err != nil {
		s.logger.Error(ctx, "open upstream file failed", "note_id", noteID, "source", source, "error", err)
		return nil, upstream(err)
	}

	d := &Download{
		NoteID:      note.ID,
		FileName:    note.FileName,
		ContentType: note.FileType,
		Size:        r.Size,
		Source:      source,
		Body:        r.Body,
	}
	if d.ContentType == "" || d.ContentType == defaultLinkType {
		if r.ContentType != "" {
			d.ContentType = r.ContentType
		}
	}
	if d.ContentType == "" {
		d.ContentType = defaultLinkType
	}
	return d, nil
}

// Package services implements the note lifecycle, engagement, archive and
// download operations on top of the repositories and the blob store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/blob"
	"github.com/dmitrijs2005/notehub/internal/server/metrics"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type CreateNoteInput struct {
	Metadata models.NoteMetadata
	File     *FileUpload
	Link     *FileLink
	// Uploader, when set, must equal the caller.
	Uploader string
}

// UpdateNoteInput is a partial update. Empty metadata fields are left as
// they are; File and Link are mutually exclusive.
type UpdateNoteInput struct {
	Metadata models.NoteMetadata
	File     *FileUpload
	Link     *FileLink
}

// DeleteResult reports a blob that could not be removed while the note
// itself was deleted.
type DeleteResult struct {
	BlobError error
}

// NoteService keeps a note record and its blob consistent. Blob writes
// always happen before the record references them, and old blobs are
// removed only after the record stops referencing them.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewNoteService(db *sql.DB, rm repomanager.RepositoryManager, blobs blob.Store, m *metrics.Metrics, l logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: rm,
		blobs:       blobs,
		metrics:     m,
		logger:      l.With("module", "notes"),
	}
}

func upstream(err error) error {
	if errors.Is(err, common.ErrorUpstreamStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrorUpstreamStorage, err)
}

func (s *NoteService) put(ctx context.Context, f *FileUpload) (*blob.Object, error) {
	name := f.Name
	if name == "" {
		name = defaultUploadName
	}
	obj, err := s.blobs.Put(ctx, name, f.ContentType, f.Data)
	s.metrics.RecordBlobOperation("put", err)
	if err != nil {
		return nil, upstream(err)
	}
	return obj, nil
}

// discard removes a blob no record points at. Failures leave an orphan and
// are only logged.
func (s *NoteService) discard(ctx context.Context, id, reason string) error {
	err := s.blobs.Remove(ctx, id)
	s.metrics.RecordBlobOperation("remove", err)
	if err != nil {
		s.logger.Warn(ctx, "blob left behind", "blob_id", id, "reason", reason, "error", err)
	}
	return err
}

// Create validates everything first, stores the blob, then inserts the
// record. A failed insert removes the fresh blob.
func (s *NoteService) Create(ctx context.Context, caller models.Caller, in CreateNoteInput) (*models.Note, error) {
	if missing := in.Metadata.Missing(); len(missing) > 0 {
		return nil, common.MissingFieldsError(missing)
	}
	if in.Uploader != "" && in.Uploader != caller.ID {
		return nil, fmt.Errorf("%w: uploader must be the authenticated user", common.ErrorForbidden)
	}
	if err := checkSource(in.File, in.Link, true); err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:           uuid.NewString(),
		NoteMetadata: in.Metadata,
		UploaderID:   caller.ID,
	}

	if in.Link != nil {
		ref, err := linkRef(in.Link, defaultUploadName)
		if err != nil {
			return nil, err
		}
		note.FileURL, note.FileName, note.FileType = ref.URL, ref.Name, ref.ContentType
	} else {
		if err := validateUpload(in.File); err != nil {
			return nil, err
		}
		obj, err := s.put(ctx, in.File)
		if err != nil {
			return nil, err
		}
		note.FileURL, note.FileName, note.FileType, note.BlobID = obj.URL, in.File.Name, in.File.ContentType, obj.ID
		if note.FileName == "" {
			note.FileName = defaultUploadName
		}
	}

	if err := s.repomanager.Notes(s.db).Create(ctx, note); err != nil {
		if note.Managed() {
			_ = s.discard(ctx, note.BlobID, "create failed")
		}
		return nil, err
	}

	s.logger.Info(ctx, "note created", "note_id", note.ID, "uploader", caller.ID, "managed", note.Managed())
	return note, nil
}

// owned loads a note and checks that caller uploaded it.
func (s *NoteService) owned(ctx context.Context, caller models.Caller, id string) (*models.Note, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UploaderID != caller.ID {
		return nil, fmt.Errorf("%w: only the uploader may modify this note", common.ErrorForbidden)
	}
	return note, nil
}

// Update applies a partial update. A replacement file is uploaded before the
// record changes; if saving fails the new blob is dropped and the record
// keeps its old reference. The previous managed blob is removed only after
// the save succeeded.
func (s *NoteService) Update(ctx context.Context, caller models.Caller, id string, in UpdateNoteInput) (*models.Note, error) {
	note, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := checkSource(in.File, in.Link, false); err != nil {
		return nil, err
	}

	upd := &models.NoteUpdate{Metadata: in.Metadata}

	switch {
	case in.Link != nil:
		if upd.Blob, err = linkRef(in.Link, defaultLinkName); err != nil {
			return nil, err
		}
	case in.File != nil:
		if err := validateUpload(in.File); err != nil {
			return nil, err
		}
	}

	if upd.Empty() && in.File == nil {
		return s.Get(ctx, id)
	}

	if in.File != nil {
		obj, err := s.put(ctx, in.File)
		if err != nil {
			return nil, err
		}
		upd.Blob = &models.BlobRef{URL: obj.URL, Name: in.File.Name, ContentType: in.File.ContentType, BlobID: obj.ID}
		if upd.Blob.Name == "" {
			upd.Blob.Name = defaultUploadName
		}
	}

	if err := s.repomanager.Notes(s.db).Update(ctx, id, upd); err != nil {
		if upd.Blob != nil && upd.Blob.BlobID != "" {
			_ = s.discard(ctx, upd.Blob.BlobID, "update failed")
		}
		return nil, err
	}

	if upd.Blob != nil && note.Managed() {
		if in.File != nil {
			_ = s.discard(ctx, note.BlobID, "replaced")
		} else {
			s.logger.Info(ctx, "managed blob orphaned by link update", "note_id", id, "blob_id", note.BlobID)
		}
	}

	return s.Get(ctx, id)
}

// Delete removes the managed blob first and then the record. A blob failure
// is reported in the result but does not keep the record alive.
func (s *NoteService) Delete(ctx context.Context, caller models.Caller, id string) (*DeleteResult, error) {
	note, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{}
	if note.Managed() {
		if err := s.discard(ctx, note.BlobID, "note deleted"); err != nil {
			res.BlobError = upstream(err)
		}
	}

	if err := s.repomanager.Notes(s.db).Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "note deleted", "note_id", id, "blob_removed", note.Managed() && res.BlobError == nil)
	return res, nil
}

// Get returns the note with its likes and comments.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repomanager.Notes(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if note.Likes, err = s.repomanager.Likes(s.db).ListByNote(ctx, id); err != nil {
		return nil, err
	}
	if note.Comments, err = s.repomanager.Comments(s.db).ListByNote(ctx, id); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, f models.NoteFilter) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).List(ctx, f)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked bool     `json:"liked"`
	Likes []string `json:"likes"`
}

// EngagementService mutates likes, comments and the download counter.
// Transactional mutations lock the note row first; the download counter is a
// single atomic UPDATE.
type EngagementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewEngagementService(db *sql.DB, rm repomanager.RepositoryManager, l logging.Logger) *EngagementService {
	return &EngagementService{
		db:          db,
		repomanager: rm,
		logger:      l.With("module", "engagement"),
	}
}

// ensureNote locks the note row for the rest of tx.
func (s *EngagementService) ensureNote(ctx context.Context, tx dbx.DBTX, noteID string) (*models.Note, error) {
	return s.repomanager.Notes(tx).GetByIDForUpdate(ctx, noteID)
}

// ToggleLike removes the caller's like if present, otherwise adds it.
func (s *EngagementService) ToggleLike(ctx context.Context, caller models.Caller, noteID string) (*LikeState, error) {
	state := &LikeState{}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ensureNote(ctx, tx, noteID); err != nil {
			return err
		}

		likes := s.repomanager.Likes(tx)
		removed, err := likes.Remove(ctx, noteID, caller.ID)
		if err != nil {
			return err
		}
		if !removed {
			if err := likes.Add(ctx, noteID, caller.ID); err != nil {
				return err
			}
			state.Liked = true
		}

		state.Likes, err = likes.ListByNote(ctx, noteID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// AddComment appends a comment authored by caller.
func (s *EngagementService) AddComment(ctx context.Context, caller models.Caller, noteID, text string) (*models.Comment, error) {
	c := &models.Comment{
		ID:       uuid.NewString(),
		NoteID:   noteID,
		UserID:   caller.ID,
		Username: caller.Username,
		Text:     text,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ensureNote(ctx, tx, noteID); err != nil {
			return err
		}
		return s.repomanager.Comments(tx).Add(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EditComment replaces a comment's text. Only its author may do so.
func (s *EngagementService) EditComment(ctx context.Context, caller models.Caller, noteID, commentID, text string) (*models.Comment, error) {
	var updated *models.Comment

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ensureNote(ctx, tx, noteID); err != nil {
			return err
		}

		comments := s.repomanager.Comments(tx)
		c, err := comments.Get(ctx, noteID, commentID)
		if err != nil {
			return err
		}
		if c.UserID != caller.ID {
			return fmt.Errorf("%w: only the author may edit a comment", common.ErrorForbidden)
		}

		updated, err = comments.UpdateText(ctx, noteID, commentID, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes a comment. The comment's author and the note's
// uploader may delete it; an already-absent comment is not an error.
func (s *EngagementService) DeleteComment(ctx context.Context, caller models.Caller, noteID, commentID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		note, err := s.ensureNote(ctx, tx, noteID)
		if err != nil {
			return err
		}

		comments := s.repomanager.Comments(tx)
		c, err := comments.Get(ctx, noteID, commentID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.UserID != caller.ID && note.UploaderID != caller.ID {
			return fmt.Errorf("%w: only the author or the note owner may delete a comment", common.ErrorForbidden)
		}

		_, err = comments.Delete(ctx, noteID, commentID)
		return err
	})
}

// Comments returns a note's comments in the order they were added.
func (s *EngagementService) Comments(ctx context.Context, noteID string) ([]models.Comment, error) {
	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByNote(ctx, noteID)
}

// IncrementDownload bumps the public download counter by one.
func (s *EngagementService) IncrementDownload(ctx context.Context, noteID string) (int64, error) {
	n, err := s.repomanager.Notes(s.db).IncrementDownloads(ctx, noteID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug(ctx, "download counted", "note_id", noteID, "count", n)
	return n, nil
}

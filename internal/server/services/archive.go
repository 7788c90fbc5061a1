package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/repositories/repomanager"
)

// ArchiveService maintains per-user archive sets. A note's archived flag is
// derived state: true while at least one user has it archived. It is
// recomputed in the same transaction as every membership change, after the
// note row is locked, so concurrent changes to one note apply in turn.
type ArchiveService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewArchiveService(db *sql.DB, rm repomanager.RepositoryManager, l logging.Logger) *ArchiveService {
	return &ArchiveService{
		db:          db,
		repomanager: rm,
		logger:      l.With("module", "archive"),
	}
}

// Archive adds the note to caller's archive. Archiving twice is a no-op
// reported as added=false.
func (s *ArchiveService) Archive(ctx context.Context, caller models.Caller, noteID string) (bool, error) {
	var added bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		notes := s.repomanager.Notes(tx)
		if _, err := notes.GetByIDForUpdate(ctx, noteID); err != nil {
			return err
		}

		var err error
		if added, err = s.repomanager.Archives(tx).Add(ctx, caller.ID, noteID); err != nil {
			return err
		}
		_, err = notes.RefreshArchived(ctx, noteID)
		return err
	})
	if err != nil {
		return false, err
	}

	s.logger.Debug(ctx, "note archived", "note_id", noteID, "user", caller.ID, "added", added)
	return added, nil
}

// Unarchive removes the note from caller's archive; removing an absent
// membership succeeds with removed=false.
func (s *ArchiveService) Unarchive(ctx context.Context, caller models.Caller, noteID string) (bool, error) {
	var removed bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		notes := s.repomanager.Notes(tx)
		if _, err := notes.GetByIDForUpdate(ctx, noteID); err != nil {
			return err
		}

		var err error
		if removed, err = s.repomanager.Archives(tx).Remove(ctx, caller.ID, noteID); err != nil {
			return err
		}
		_, err = notes.RefreshArchived(ctx, noteID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// List resolves caller's archive set to notes, most recently archived first.
func (s *ArchiveService) List(ctx context.Context, caller models.Caller) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).ListArchivedBy(ctx, caller.ID)
}

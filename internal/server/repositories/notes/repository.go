package notes

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

// Repository persists note records. Comments, likes and archive memberships
// live in their own tables and are removed by cascade on Delete.
type Repository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Note, error)
	Update(ctx context.Context, id string, upd *models.NoteUpdate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error)
	ListArchivedBy(ctx context.Context, userID string) ([]*models.Note, error)
	IncrementDownloads(ctx context.Context, id string) (int64, error)
	RefreshArchived(ctx context.Context, id string) (bool, error)
}

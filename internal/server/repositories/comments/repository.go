package comments

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, c *models.Comment) error
	ListByNote(ctx context.Context, noteID string) ([]models.Comment, error)
	Get(ctx context.Context, noteID, commentID string) (*models.Comment, error)
	UpdateText(ctx context.Context, noteID, commentID, text string) (*models.Comment, error)
	Delete(ctx context.Context, noteID, commentID string) (bool, error)
}

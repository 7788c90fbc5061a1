package likes

import "context"

type Repository interface {
	// Remove deletes the like and reports whether one existed.
	Remove(ctx context.Context, noteID, userID string) (bool, error)
	Add(ctx context.Context, noteID, userID string) error
	ListByNote(ctx context.Context, noteID string) ([]string, error)
}

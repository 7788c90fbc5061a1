package archives

import "context"

// Repository holds per-user archive sets. Resolving a set to notes is done
// by notes.Repository.ListArchivedBy.
type Repository interface {
	Add(ctx context.Context, userID, noteID string) (bool, error)
	Remove(ctx context.Context, userID, noteID string) (bool, error)
}

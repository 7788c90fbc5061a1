// Package archives stores which notes each user has archived.
package archives

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add reports whether the note was newly added to the user's set.
func (r *PostgresRepository) Add(ctx context.Context, userID, noteID string) (bool, error) {
	query := `INSERT INTO archived_notes (user_id, note_id) VALUES ($1, $2) ON CONFLICT (user_id, note_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, userID, noteID)
	if err != nil {
		return false, fmt.Errorf("failed to archive note: %w", err)
	}
	return affected(res)
}

// Remove reports whether the note was in the user's set.
func (r *PostgresRepository) Remove(ctx context.Context, userID, noteID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM archived_notes WHERE user_id=$1 AND note_id=$2`, userID, noteID)
	if err != nil {
		return false, fmt.Errorf("failed to unarchive note: %w", err)
	}
	return affected(res)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffected) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

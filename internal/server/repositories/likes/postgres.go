// Package likes stores the per-note like sets.
package likes

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

func (r *PostgresRepository) Remove(ctx context.Context, noteID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM note_likes WHERE note_id=$1 AND user_id=$2`, noteID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// Add is idempotent: a second like by the same user is a no-op.
func (r *PostgresRepository) Add(ctx context.Context, noteID, userID string) error {
	query := `INSERT INTO note_likes (note_id, user_id) VALUES ($1, $2) ON CONFLICT (note_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, noteID, userID); err != nil {
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

// ListByNote returns liker ids in the order the likes were given.
func (r *PostgresRepository) ListByNote(ctx context.Context, noteID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM note_likes WHERE note_id=$1 ORDER BY liked_at, user_id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select likes: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

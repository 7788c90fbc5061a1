// Package comments stores the per-note comment sequences.
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends c to the end of its note's sequence and stamps CommentedAt.
func (r *PostgresRepository) Add(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO note_comments (id, note_id, user_id, username, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING commented_at`

	err := r.db.QueryRowContext(ctx, query, c.ID, c.NoteID, c.UserID, c.Username, c.Text).Scan(&c.CommentedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListByNote returns comments in insertion order.
func (r *PostgresRepository) ListByNote(ctx context.Context, noteID string) ([]models.Comment, error) {
	query := `
		SELECT id, note_id, user_id, username, text, commented_at
		FROM note_comments
		WHERE note_id=$1
		ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	result := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.NoteID, &c.UserID, &c.Username, &c.Text, &c.CommentedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, noteID, commentID string) (*models.Comment, error) {
	query := `
		SELECT id, note_id, user_id, username, text, commented_at
		FROM note_comments
		WHERE note_id=$1 AND id=$2`

	var c models.Comment
	err := r.db.QueryRowContext(ctx, query, noteID, commentID).
		Scan(&c.ID, &c.NoteID, &c.UserID, &c.Username, &c.Text, &c.CommentedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select comment: %w", err)
	}
	return &c, nil
}

// UpdateText replaces the text in place and restamps the comment; it keeps
// its position in the sequence.
func (r *PostgresRepository) UpdateText(ctx context.Context, noteID, commentID, text string) (*models.Comment, error) {
	query := `
		UPDATE note_comments SET text=$3, commented_at=NOW()
		WHERE note_id=$1 AND id=$2
		RETURNING id, note_id, user_id, username, text, commented_at`

	var c models.Comment
	err := r.db.QueryRowContext(ctx, query, noteID, commentID, text).
		Scan(&c.ID, &c.NoteID, &c.UserID, &c.Username, &c.Text, &c.CommentedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &c, nil
}

// Delete reports whether a comment was actually removed.
func (r *PostgresRepository) Delete(ctx context.Context, noteID, commentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM note_comments WHERE note_id=$1 AND id=$2`, noteID, commentID)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// Package notes implements the note record store over PostgreSQL.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/dbx"
	"github.com/dmitrijs2005/notehub/internal/server/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	baseColumns = []string{
		"id", "title", "description", "college_name", "course_name", "batch", "subject_name", "semester",
		"file_url", "file_name", "file_type", "blob_id", "uploader_id", "archived", "download_count",
		"created_at", "updated_at",
	}
)

// columns returns the note columns qualified with alias, followed by the
// like and comment counters.
func columns(alias string) []string {
	out := make([]string, 0, len(baseColumns)+2)
	for _, c := range baseColumns {
		out = append(out, alias+"."+c)
	}
	return append(out,
		fmt.Sprintf("(SELECT COUNT(*) FROM note_likes l WHERE l.note_id = %s.id) AS like_count", alias),
		fmt.Sprintf("(SELECT COUNT(*) FROM note_comments c WHERE c.note_id = %s.id) AS comment_count", alias),
	)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*models.Note, error) {
	n := &models.Note{}
	err := row.Scan(&n.ID, &n.Title, &n.Description, &n.CollegeName, &n.CourseName, &n.Batch, &n.SubjectName, &n.Semester,
		&n.FileURL, &n.FileName, &n.FileType, &n.BlobID, &n.UploaderID, &n.Archived, &n.DownloadCount,
		&n.CreatedAt, &n.UpdatedAt, &n.LikeCount, &n.CommentCount)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a note and fills its server-side timestamps.
func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) error {
	query := `
		INSERT INTO notes (id, title, description, college_name, course_name, batch, subject_name, semester,
			file_url, file_name, file_type, blob_id, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.Title, n.Description, n.CollegeName, n.CourseName, n.Batch, n.SubjectName, n.Semester,
		n.FileURL, n.FileName, n.FileType, n.BlobID, n.UploaderID,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetByID returns the note row with its counters. Missing rows yield
// common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate is GetByID taking a row lock on the note. Inside a
// transaction it serializes writers of the same note until commit.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Note, error) {
	return r.getByID(ctx, id, "FOR UPDATE OF n")
}

func (r *PostgresRepository) getByID(ctx context.Context, id, suffix string) (*models.Note, error) {
	q := psql.Select(columns("n")...).From("notes n").Where(sq.Eq{"n.id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	n, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select note: %w", err)
	}
	return n, nil
}

// Update writes only the fields present in upd. The blob reference columns
// are always written as a group.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd *models.NoteUpdate) error {
	q := psql.Update("notes")

	cols := upd.Metadata.Columns()
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		q = q.Set(k, cols[k])
	}

	if b := upd.Blob; b != nil {
		q = q.Set("file_url", b.URL).
			Set("file_name", b.Name).
			Set("file_type", b.ContentType).
			Set("blob_id", b.BlobID)
	}

	query, args, err := q.Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

// Delete removes the note; dependent rows go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func contains(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

// List returns notes matching filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f models.NoteFilter) ([]*models.Note, error) {
	q := psql.Select(columns("n")...).From("notes n")

	if f.Search != "" {
		pattern := contains(f.Search)
		q = q.Where(sq.Or{
			sq.ILike{"n.title": pattern},
			sq.ILike{"n.description": pattern},
			sq.ILike{"n.subject_name": pattern},
			sq.ILike{"n.college_name": pattern},
			sq.ILike{"n.course_name": pattern},
		})
	}

	for _, fv := range []struct{ col, value string }{
		{"n.subject_name", f.Subject},
		{"n.college_name", f.College},
		{"n.course_name", f.Course},
		{"n.semester", f.Semester},
		{"n.batch", f.Batch},
	} {
		if fv.value != "" {
			q = q.Where(sq.ILike{fv.col: contains(fv.value)})
		}
	}

	if f.Uploader != "" {
		q = q.Where(sq.Eq{"n.uploader_id": f.Uploader})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	q = q.OrderBy("n.created_at DESC", "n.id DESC").Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	return r.query(ctx, q)
}

// ListArchivedBy resolves userID's archive set to notes, most recently
// archived first. Ids without a note row never surface.
func (r *PostgresRepository) ListArchivedBy(ctx context.Context, userID string) ([]*models.Note, error) {
	q := psql.Select(columns("n")...).
		From("archived_notes a").
		Join("notes n ON n.id = a.note_id").
		Where(sq.Eq{"a.user_id": userID}).
		OrderBy("a.archived_at DESC")

	return r.query(ctx, q)
}

func (r *PostgresRepository) query(ctx context.Context, q sq.SelectBuilder) ([]*models.Note, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IncrementDownloads bumps the counter atomically and returns the new value.
func (r *PostgresRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	query := `UPDATE notes SET download_count = download_count + 1 WHERE id=$1 RETURNING download_count`

	var count int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment downloads: %w", err)
	}
	return count, nil
}

// RefreshArchived recomputes the archived flag from archive memberships:
// a note is archived while at least one user has it in their archive set.
func (r *PostgresRepository) RefreshArchived(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notes SET archived = EXISTS (SELECT 1 FROM archived_notes a WHERE a.note_id = notes.id)
		WHERE id=$1
		RETURNING archived`

	var archived bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&archived)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrorNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to refresh archived flag: %w", err)
	}
	return archived, nil
}

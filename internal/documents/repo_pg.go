package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. The ordered top-level comment
// sequence lives in document_comments, ordered by its seq column.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, owner_id, title, category, file_ref, archived, share_link, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var shareLink sql.NullString
	if doc.ShareLink != "" {
		shareLink = sql.NullString{String: doc.ShareLink, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Category,
		doc.FileRef,
		doc.Archived,
		shareLink,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID returns a document with its comment-id sequence in stored order.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, owner_id, title, category, file_ref, archived, share_link, created_at, updated_at
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := r.scanOne(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		return Document{}, err
	}
	doc.CommentIDs, err = r.commentIDs(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetByShareLink returns the document whose share link equals link.
func (r *PGRepo) GetByShareLink(ctx context.Context, link string) (Document, error) {
	if link == "" {
		return Document{}, ErrNotFound
	}
	const query = `
SELECT id, owner_id, title, category, file_ref, archived, share_link, created_at, updated_at
FROM documents
WHERE share_link = $1
LIMIT 1`
	doc, err := r.scanOne(r.DB.QueryRowContext(ctx, query, link))
	if err != nil {
		return Document{}, err
	}
	doc.CommentIDs, err = r.commentIDs(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists documents owned by ownerID, oldest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT id, owner_id, title, category, file_ref, archived, share_link, created_at, updated_at
FROM documents
WHERE owner_id = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// SetShareLink persists the link only if the document has none yet.
func (r *PGRepo) SetShareLink(ctx context.Context, documentID, link string) (bool, error) {
	const query = `
UPDATE documents
SET share_link = $2, updated_at = $3
WHERE id = $1 AND share_link IS NULL`
	res, err := r.DB.ExecContext(ctx, query, documentID, link, time.Now().Unix())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}
	// Either the document is missing or a link already exists.
	if _, err := r.GetByID(ctx, documentID); err != nil {
		return false, err
	}
	return false, nil
}

// SetArchived flips the archived flag.
func (r *PGRepo) SetArchived(ctx context.Context, documentID string, archived bool) error {
	const query = `
UPDATE documents
SET archived = $2, updated_at = $3
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, documentID, archived, time.Now().Unix())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document row. Access rows are left alone; the
// resolver treats grants pointing at a deleted document as not found.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendCommentID appends commentID to the document's top-level sequence.
func (r *PGRepo) AppendCommentID(ctx context.Context, documentID, commentID string) error {
	const query = `
INSERT INTO document_comments (document_id, comment_id)
VALUES ($1, $2)`
	_, err := r.DB.ExecContext(ctx, query, documentID, commentID)
	return err
}

// HasTopLevelComment reports whether commentID is linked to the document.
func (r *PGRepo) HasTopLevelComment(ctx context.Context, documentID, commentID string) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM document_comments WHERE document_id = $1 AND comment_id = $2
)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, documentID, commentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGRepo) commentIDs(ctx context.Context, documentID string) ([]string, error) {
	const query = `
SELECT comment_id
FROM document_comments
WHERE document_id = $1
ORDER BY seq ASC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Document, error) {
	var doc Document
	var shareLink sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Category,
		&doc.FileRef,
		&doc.Archived,
		&shareLink,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if shareLink.Valid {
		doc.ShareLink = shareLink.String
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)

package comments

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. Replies live in a separate
// comment_replies table ordered by insertion.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new comment record without replies.
func (r *PGRepo) Create(ctx context.Context, c Comment) error {
	const query = `
INSERT INTO comments (id, author_id, body, range_start, range_end, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var rangeStart, rangeEnd sql.NullInt64
	if c.TextRange != nil {
		rangeStart = sql.NullInt64{Int64: int64(c.TextRange.Start), Valid: true}
		rangeEnd = sql.NullInt64{Int64: int64(c.TextRange.End), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.AuthorID, c.Body, rangeStart, rangeEnd, c.CreatedAt)
	return err
}

// AppendReply appends a reply to the parent comment.
func (r *PGRepo) AppendReply(ctx context.Context, parentID string, reply Reply) error {
	const exists = `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, exists, parentID).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	const insert = `
INSERT INTO comment_replies (comment_id, author_id, body)
VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, insert, parentID, reply.AuthorID, reply.Body)
	return err
}

// GetMany returns the comments for ids in the given order. Ids with no
// record are skipped.
func (r *PGRepo) GetMany(ctx context.Context, ids []string) ([]Comment, error) {
	out := make([]Comment, 0, len(ids))
	for _, id := range ids {
		c, err := r.getOne(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *PGRepo) getOne(ctx context.Context, id string) (Comment, error) {
	const query = `
SELECT id, author_id, body, range_start, range_end, created_at
FROM comments
WHERE id = $1
LIMIT 1`

	var c Comment
	var rangeStart, rangeEnd sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.AuthorID,
		&c.Body,
		&rangeStart,
		&rangeEnd,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	if rangeStart.Valid && rangeEnd.Valid {
		c.TextRange = &TextRange{Start: int(rangeStart.Int64), End: int(rangeEnd.Int64)}
	}

	c.Replies, err = r.replies(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

func (r *PGRepo) replies(ctx context.Context, commentID string) ([]Reply, error) {
	const query = `
SELECT author_id, body
FROM comment_replies
WHERE comment_id = $1
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reply
	for rows.Next() {
		var reply Reply
		if err := rows.Scan(&reply.AuthorID, &reply.Body); err != nil {
			return nil, err
		}
		out = append(out, reply)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

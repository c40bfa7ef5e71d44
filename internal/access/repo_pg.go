package access

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. The composite primary key on
// (document_id, user_id) is the uniqueness guarantee the resolver and
// invitation manager rely on under concurrent writers.
type PGRepo struct {
	DB *sql.DB
}

// CreateGrant inserts a grant, ignoring the insert when the pair
// already has one.
func (r *PGRepo) CreateGrant(ctx context.Context, grant Grant) (bool, error) {
	const query = `
INSERT INTO granted_access (document_id, user_id, verification_token, token_expires_at, shared_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (document_id, user_id) DO NOTHING`

	var token sql.NullString
	if grant.VerificationToken != "" {
		token = sql.NullString{String: grant.VerificationToken, Valid: true}
	}
	var expires sql.NullInt64
	if grant.TokenExpiresAt != 0 {
		expires = sql.NullInt64{Int64: grant.TokenExpiresAt, Valid: true}
	}

	res, err := r.DB.ExecContext(ctx, query,
		grant.DocumentID,
		grant.UserID,
		token,
		expires,
		grant.SharedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PGRepo) GetGrant(ctx context.Context, documentID, userID string) (Grant, bool, error) {
	const query = `
SELECT document_id, user_id, verification_token, token_expires_at, shared_at
FROM granted_access
WHERE document_id = $1 AND user_id = $2
LIMIT 1`
	return r.scanGrant(r.DB.QueryRowContext(ctx, query, documentID, userID))
}

func (r *PGRepo) GetGrantByToken(ctx context.Context, token string) (Grant, bool, error) {
	if token == "" {
		return Grant{}, false, nil
	}
	const query = `
SELECT document_id, user_id, verification_token, token_expires_at, shared_at
FROM granted_access
WHERE verification_token = $1
LIMIT 1`
	return r.scanGrant(r.DB.QueryRowContext(ctx, query, token))
}

func (r *PGRepo) DeleteGrant(ctx context.Context, documentID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM granted_access WHERE document_id = $1 AND user_id = $2`,
		documentID, userID)
	return err
}

func (r *PGRepo) DocumentIDsSharedWith(ctx context.Context, userID string) ([]string, error) {
	const query = `
SELECT document_id
FROM granted_access
WHERE user_id = $1
ORDER BY shared_at ASC, document_id ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetRevocation(ctx context.Context, documentID, userID string) (Revocation, bool, error) {
	const query = `
SELECT document_id, user_id, revoked_at
FROM revoked_access
WHERE document_id = $1 AND user_id = $2
LIMIT 1`
	var rev Revocation
	err := r.DB.QueryRowContext(ctx, query, documentID, userID).Scan(
		&rev.DocumentID,
		&rev.UserID,
		&rev.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Revocation{}, false, nil
		}
		return Revocation{}, false, err
	}
	return rev, true, nil
}

func (r *PGRepo) UpsertRevocation(ctx context.Context, rev Revocation) error {
	const query = `
INSERT INTO revoked_access (document_id, user_id, revoked_at)
VALUES ($1, $2, $3)
ON CONFLICT (document_id, user_id) DO UPDATE SET revoked_at = EXCLUDED.revoked_at`
	_, err := r.DB.ExecContext(ctx, query, rev.DocumentID, rev.UserID, rev.RevokedAt)
	return err
}

func (r *PGRepo) DeleteRevocation(ctx context.Context, documentID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM revoked_access WHERE document_id = $1 AND user_id = $2`,
		documentID, userID)
	return err
}

func (r *PGRepo) scanGrant(row *sql.Row) (Grant, bool, error) {
	var grant Grant
	var token sql.NullString
	var expires sql.NullInt64
	err := row.Scan(
		&grant.DocumentID,
		&grant.UserID,
		&token,
		&expires,
		&grant.SharedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, false, nil
		}
		return Grant{}, false, err
	}
	if token.Valid {
		grant.VerificationToken = token.String
	}
	if expires.Valid {
		grant.TokenExpiresAt = expires.Int64
	}
	return grant, true, nil
}

var _ Repo = (*PGRepo)(nil)

package access

import "context"

// Repo defines persistence for grant and revocation rows. Rows are
// independent of document lifecycle: a grant may reference a document
// that no longer exists.
type Repo interface {
	// CreateGrant inserts a grant unless one already exists for the
	// (DocumentID, UserID) pair, and reports whether a row was written.
	// The conflict-ignoring insert is what makes concurrent first opens
	// of a share link safe.
	CreateGrant(ctx context.Context, grant Grant) (bool, error)
	GetGrant(ctx context.Context, documentID, userID string) (Grant, bool, error)
	GetGrantByToken(ctx context.Context, token string) (Grant, bool, error)
	DeleteGrant(ctx context.Context, documentID, userID string) error
	DocumentIDsSharedWith(ctx context.Context, userID string) ([]string, error)

	GetRevocation(ctx context.Context, documentID, userID string) (Revocation, bool, error)
	// UpsertRevocation writes or refreshes the revocation for the pair.
	UpsertRevocation(ctx context.Context, rev Revocation) error
	DeleteRevocation(ctx context.Context, documentID, userID string) error
}

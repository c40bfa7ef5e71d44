package comments

import "context"

// Repo stores comment records. Ordering of top-level comments within a
// document is owned by the documents repo; this repo only retrieves
// records in the order of the ids it is given.
type Repo interface {
	Create(ctx context.Context, c Comment) error
	// AppendReply attaches a reply to an existing comment. Returns
	// ErrNotFound when the parent record does not exist.
	AppendReply(ctx context.Context, parentID string, r Reply) error
	// GetMany returns the comments for the given ids in the same
	// order, silently skipping ids with no record.
	GetMany(ctx context.Context, ids []string) ([]Comment, error)
}

package documents

import "context"

// Repo defines persistence operations for documents. Each operation is
// atomic at the single-record level; there are no multi-record
// transactions.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	GetByShareLink(ctx context.Context, link string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	// SetShareLink persists the link only when none is set yet and
	// reports whether this call won. A stored link is never overwritten.
	SetShareLink(ctx context.Context, documentID, link string) (bool, error)
	SetArchived(ctx context.Context, documentID string, archived bool) error
	Delete(ctx context.Context, documentID string) error
	// AppendCommentID appends a comment id to the document's ordered
	// top-level sequence.
	AppendCommentID(ctx context.Context, documentID, commentID string) error
	// HasTopLevelComment reports whether commentID is in the document's
	// top-level sequence.
	HasTopLevelComment(ctx context.Context, documentID, commentID string) (bool, error)
}

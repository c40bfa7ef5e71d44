package documents

// Document is a user-owned document. FileRef is the opaque object-store
// key of the uploaded file; ShareLink is stable once set. CommentIDs is
// the ordered sequence of top-level comment ids (insertion order is
// display order). Timestamps are unix seconds.
type Document struct {
	ID         string
	OwnerID    string
	Title      string
	Category   string
	FileRef    string
	Archived   bool
	ShareLink  string
	CommentIDs []string
	CreatedAt  int64
	UpdatedAt  int64
}

package comments

// TextRange anchors a comment to a span of the document text. Start is
// inclusive and End is exclusive, both character offsets.
type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Reply is a one-level response attached to a top-level comment. It is
// deliberately a distinct, non-recursive type: a reply can never
// receive replies.
type Reply struct {
	AuthorID string
	Body     string
}

// Comment is a stored comment record. Top-level membership and order
// live in the owning document's comment-id sequence, not here; a
// comment created for a reply exists as a record but is never linked
// into any document's sequence.
type Comment struct {
	ID        string
	AuthorID  string
	Body      string
	TextRange *TextRange
	Replies   []Reply
	CreatedAt int64
}

// ThreadReply is a reply hydrated with its author's display name.
type ThreadReply struct {
	AuthorID string `json:"authorId"`
	Author   string `json:"author"`
	Body     string `json:"comment"`
}

// ThreadComment is a top-level comment hydrated for display.
type ThreadComment struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"authorId"`
	Author    string        `json:"author"`
	Body      string        `json:"comment"`
	TextRange *TextRange    `json:"textRange,omitempty"`
	Replies   []ThreadReply `json:"replies"`
}

package access

// Grant records that a user may open a document. At most one grant
// exists per (DocumentID, UserID) pair. VerificationToken is set only
// for explicit invitations; link-based auto-grants carry none.
// TokenExpiresAt is advisory: it is persisted for invitations but not
// enforced on resolve. Timestamps are unix seconds.
type Grant struct {
	DocumentID        string
	UserID            string
	VerificationToken string
	TokenExpiresAt    int64
	SharedAt          int64
}

// Revocation defeats any grant for the same (DocumentID, UserID) pair
// until cleared by a subsequent grant. It is an explicit record, not
// merely the absence of a grant.
type Revocation struct {
	DocumentID string
	UserID     string
	RevokedAt  int64
}

// Decision is the outcome of the ordered access rules for a
// (document, user) pair.
type Decision int

const (
	// DecisionOwner: the user owns the document.
	DecisionOwner Decision = iota
	// DecisionRevoked: a revocation exists for the pair. Checked before
	// any grant so a stale grant row cannot win.
	DecisionRevoked
	// DecisionGranted: a grant exists and no revocation does.
	DecisionGranted
	// DecisionNoGrant: neither ownership nor a grant applies.
	DecisionNoGrant
)

// Allowed reports whether the decision permits access.
func (d Decision) Allowed() bool {
	return d == DecisionOwner || d == DecisionGranted
}

func (d Decision) String() string {
	switch d {
	case DecisionOwner:
		return "owner"
	case DecisionRevoked:
		return "revoked"
	case DecisionGranted:
		return "granted"
	default:
		return "no_grant"
	}
}

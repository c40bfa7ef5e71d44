package access

import (
	"context"
	"errors"
	"time"

	"docshare-backend/internal/comments"
	"docshare-backend/internal/documents"
)

// DocumentSource is the slice of the documents repo the resolver reads.
type DocumentSource interface {
	GetByID(ctx context.Context, documentID string) (documents.Document, error)
	GetByShareLink(ctx context.Context, link string) (documents.Document, error)
}

// ThreadSource hydrates a document's comment thread for resolution
// responses.
type ThreadSource interface {
	List(ctx context.Context, documentID string) ([]comments.ThreadComment, error)
}

// Resolver answers access questions about documents. Rules are ordered:
// ownership wins outright, a revocation defeats any grant, and a grant
// only counts when no revocation stands.
type Resolver struct {
	Docs    DocumentSource
	Repo    Repo
	Threads ThreadSource
	Now     func() time.Time
}

func (r *Resolver) now() int64 {
	if r.Now != nil {
		return r.Now().Unix()
	}
	return time.Now().Unix()
}

// Decide evaluates the access rules for userID against doc, first rule
// that applies wins.
func (r *Resolver) Decide(ctx context.Context, doc documents.Document, userID string) (Decision, error) {
	if doc.OwnerID == userID {
		return DecisionOwner, nil
	}
	if _, revoked, err := r.Repo.GetRevocation(ctx, doc.ID, userID); err != nil {
		return DecisionNoGrant, err
	} else if revoked {
		return DecisionRevoked, nil
	}
	if _, granted, err := r.Repo.GetGrant(ctx, doc.ID, userID); err != nil {
		return DecisionNoGrant, err
	} else if granted {
		return DecisionGranted, nil
	}
	return DecisionNoGrant, nil
}

// CanAccess reports whether userID may read the document. Returns
// documents.ErrNotFound when the document does not exist.
func (r *Resolver) CanAccess(ctx context.Context, documentID, userID string) (bool, error) {
	doc, err := r.Docs.GetByID(ctx, documentID)
	if err != nil {
		return false, err
	}
	decision, err := r.Decide(ctx, doc, userID)
	if err != nil {
		return false, err
	}
	return decision.Allowed(), nil
}

// ResolvedDocument is a shared document opened through a link or token,
// with its comment thread attached.
type ResolvedDocument struct {
	Document documents.Document
	Thread   []comments.ThreadComment
	IsOwner  bool
}

// ResolveLinkOrToken opens a document from an opaque share string. The
// string is tried as a share link first, then as an invitation token;
// the token path additionally requires the grant to belong to userID.
// Opening through either path grants access as a side effect when the
// user has none yet, so later plain reads succeed without the link.
func (r *Resolver) ResolveLinkOrToken(ctx context.Context, userID, linkOrToken string) (ResolvedDocument, error) {
	if linkOrToken == "" || userID == "" {
		return ResolvedDocument{}, ErrInvalidInput
	}

	doc, err := r.Docs.GetByShareLink(ctx, linkOrToken)
	if err != nil {
		if !errors.Is(err, documents.ErrNotFound) {
			return ResolvedDocument{}, err
		}
		doc, err = r.resolveToken(ctx, userID, linkOrToken)
		if err != nil {
			return ResolvedDocument{}, err
		}
	}

	decision, err := r.Decide(ctx, doc, userID)
	if err != nil {
		return ResolvedDocument{}, err
	}
	switch decision {
	case DecisionRevoked:
		return ResolvedDocument{}, ErrForbidden
	case DecisionNoGrant:
		// First visit through the link: record the grant. A concurrent
		// visit may have inserted it already, which is fine.
		grant := Grant{DocumentID: doc.ID, UserID: userID, SharedAt: r.now()}
		if _, err := r.Repo.CreateGrant(ctx, grant); err != nil {
			return ResolvedDocument{}, err
		}
	}

	thread, err := r.Threads.List(ctx, doc.ID)
	if err != nil {
		return ResolvedDocument{}, err
	}
	return ResolvedDocument{
		Document: doc,
		Thread:   thread,
		IsOwner:  decision == DecisionOwner,
	}, nil
}

func (r *Resolver) resolveToken(ctx context.Context, userID, token string) (documents.Document, error) {
	grant, ok, err := r.Repo.GetGrantByToken(ctx, token)
	if err != nil {
		return documents.Document{}, err
	}
	if !ok {
		return documents.Document{}, ErrNotFound
	}
	if grant.UserID != userID {
		return documents.Document{}, ErrForbidden
	}
	doc, err := r.Docs.GetByID(ctx, grant.DocumentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, ErrNotFound
		}
		return documents.Document{}, err
	}
	return doc, nil
}

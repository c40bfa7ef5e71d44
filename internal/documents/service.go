package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshare-backend/internal/shared/storage/object"
)

// AccessDecider reports whether a user may open a document. Implemented
// by the access resolver; declared here to keep the dependency pointing
// one way.
type AccessDecider interface {
	CanAccess(ctx context.Context, documentID, userID string) (bool, error)
}

// SharedLister enumerates document ids a user was granted access to.
type SharedLister interface {
	DocumentIDsSharedWith(ctx context.Context, userID string) ([]string, error)
}

// Service contains business logic for documents.
type Service struct {
	Store  object.ObjectStore
	Repo   Repo
	Access AccessDecider
	Shared SharedLister
}

// ListedDocument is a document row as it appears in a user's listing.
type ListedDocument struct {
	Document
	IsOwner bool
}

// Create stores the uploaded file (if any) in the object store and
// records the document. The file is optional; documents can exist with
// no file attached.
func (s *Service) Create(ctx context.Context, ownerID, title, category, fileName string, file io.Reader) (Document, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(title) == "" {
		return Document{}, ErrInvalidInput
	}

	var fileRef string
	if file != nil {
		key, _, _, err := s.Store.Save(ctx, ownerID, fileName, file)
		if err != nil {
			return Document{}, err
		}
		fileRef = key
	}

	now := time.Now().Unix()
	doc := Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Category:  category,
		FileRef:   fileRef,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ListForUser returns the user's own documents followed by documents
// shared with them, with archived ones filtered out.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]ListedDocument, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	owned, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ListedDocument, 0, len(owned))
	for _, doc := range owned {
		if doc.Archived {
			continue
		}
		out = append(out, ListedDocument{Document: doc, IsOwner: true})
	}

	if s.Shared == nil {
		return out, nil
	}
	sharedIDs, err := s.Shared.DocumentIDsSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range sharedIDs {
		doc, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			// A grant may outlive its document.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if doc.Archived {
			continue
		}
		out = append(out, ListedDocument{Document: doc, IsOwner: false})
	}
	return out, nil
}

// Get returns a single document if userID may open it.
func (s *Service) Get(ctx context.Context, documentID, userID string) (ListedDocument, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return ListedDocument{}, err
	}
	allowed, err := s.Access.CanAccess(ctx, documentID, userID)
	if err != nil {
		return ListedDocument{}, err
	}
	if !allowed {
		return ListedDocument{}, ErrForbidden
	}
	return ListedDocument{Document: doc, IsOwner: doc.OwnerID == userID}, nil
}

// OpenFile streams the stored file of a document the user may open.
func (s *Service) OpenFile(ctx context.Context, documentID, userID string) (io.ReadCloser, error) {
	doc, err := s.Get(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.FileRef == "" {
		return nil, ErrNotFound
	}
	return s.Store.Open(ctx, doc.FileRef)
}

// Archive marks the document archived. Owner only.
func (s *Service) Archive(ctx context.Context, documentID, userID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != userID {
		return Document{}, ErrForbidden
	}
	if err := s.Repo.SetArchived(ctx, documentID, true); err != nil {
		return Document{}, err
	}
	doc.Archived = true
	return doc, nil
}

// Delete removes the document and its stored file. Owner only.
func (s *Service) Delete(ctx context.Context, documentID, userID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != userID {
		return Document{}, ErrForbidden
	}
	if err := s.Repo.Delete(ctx, documentID); err != nil {
		return Document{}, err
	}
	if doc.FileRef != "" {
		// Best effort; the record is already gone.
		_ = s.Store.Delete(ctx, doc.FileRef)
	}
	return doc, nil
}

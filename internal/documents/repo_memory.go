package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (r *MemoryRepo) GetByShareLink(ctx context.Context, link string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if link == "" {
		return Document{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.ShareLink == link {
			return cloneDoc(doc), nil
		}
	}
	return Document{}, ErrNotFound
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			out = append(out, cloneDoc(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) SetShareLink(ctx context.Context, documentID, link string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return false, ErrNotFound
	}
	if doc.ShareLink != "" {
		return false, nil
	}
	doc.ShareLink = link
	r.docs[documentID] = doc
	return true, nil
}

func (r *MemoryRepo) SetArchived(ctx context.Context, documentID string, archived bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.Archived = archived
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[documentID]; !ok {
		return ErrNotFound
	}
	delete(r.docs, documentID)
	return nil
}

func (r *MemoryRepo) AppendCommentID(ctx context.Context, documentID, commentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.CommentIDs = append(doc.CommentIDs, commentID)
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) HasTopLevelComment(ctx context.Context, documentID, commentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return false, ErrNotFound
	}
	for _, id := range doc.CommentIDs {
		if id == commentID {
			return true, nil
		}
	}
	return false, nil
}

func cloneDoc(doc Document) Document {
	out := doc
	out.CommentIDs = append([]string(nil), doc.CommentIDs...)
	return out
}

var _ Repo = (*MemoryRepo)(nil)

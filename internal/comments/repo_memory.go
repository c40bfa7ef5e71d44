package comments

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used by tests and local runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Comment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Comment)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = cloneComment(c)
	return nil
}

func (r *MemoryRepo) AppendReply(ctx context.Context, parentID string, reply Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parent, ok := r.items[parentID]
	if !ok {
		return ErrNotFound
	}
	parent.Replies = append(parent.Replies, reply)
	r.items[parentID] = parent
	return nil
}

func (r *MemoryRepo) GetMany(ctx context.Context, ids []string) ([]Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.items[id]; ok {
			out = append(out, cloneComment(c))
		}
	}
	return out, nil
}

func cloneComment(c Comment) Comment {
	out := c
	if c.TextRange != nil {
		tr := *c.TextRange
		out.TextRange = &tr
	}
	if c.Replies != nil {
		out.Replies = append([]Reply(nil), c.Replies...)
	}
	return out
}

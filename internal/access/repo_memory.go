package access

import (
	"context"
	"sort"
	"sync"
)

type pairKey struct {
	documentID string
	userID     string
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu          sync.RWMutex
	grants      map[pairKey]Grant
	revocations map[pairKey]Revocation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		grants:      make(map[pairKey]Grant),
		revocations: make(map[pairKey]Revocation),
	}
}

func (r *MemoryRepo) CreateGrant(ctx context.Context, grant Grant) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{grant.DocumentID, grant.UserID}
	if _, ok := r.grants[key]; ok {
		return false, nil
	}
	r.grants[key] = grant
	return true, nil
}

func (r *MemoryRepo) GetGrant(ctx context.Context, documentID, userID string) (Grant, bool, error) {
	if err := ctx.Err(); err != nil {
		return Grant{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	grant, ok := r.grants[pairKey{documentID, userID}]
	return grant, ok, nil
}

func (r *MemoryRepo) GetGrantByToken(ctx context.Context, token string) (Grant, bool, error) {
	if err := ctx.Err(); err != nil {
		return Grant{}, false, err
	}
	if token == "" {
		return Grant{}, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, grant := range r.grants {
		if grant.VerificationToken == token {
			return grant, true, nil
		}
	}
	return Grant{}, false, nil
}

func (r *MemoryRepo) DeleteGrant(ctx context.Context, documentID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, pairKey{documentID, userID})
	return nil
}

func (r *MemoryRepo) DocumentIDsSharedWith(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for key := range r.grants {
		if key.userID == userID {
			out = append(out, key.documentID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) GetRevocation(ctx context.Context, documentID, userID string) (Revocation, bool, error) {
	if err := ctx.Err(); err != nil {
		return Revocation{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rev, ok := r.revocations[pairKey{documentID, userID}]
	return rev, ok, nil
}

func (r *MemoryRepo) UpsertRevocation(ctx context.Context, rev Revocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revocations[pairKey{rev.DocumentID, rev.UserID}] = rev
	return nil
}

func (r *MemoryRepo) DeleteRevocation(ctx context.Context, documentID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.revocations, pairKey{documentID, userID})
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

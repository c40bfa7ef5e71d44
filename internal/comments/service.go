package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/users"
)

// DocumentStore is the slice of the documents repo this service needs:
// the ordered top-level comment sequence lives with the document.
type DocumentStore interface {
	GetByID(ctx context.Context, documentID string) (documents.Document, error)
	AppendCommentID(ctx context.Context, documentID, commentID string) error
	HasTopLevelComment(ctx context.Context, documentID, commentID string) (bool, error)
}

// UserSource resolves authors for display.
type UserSource interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

// AccessChecker reports whether a user may read a document.
type AccessChecker interface {
	CanAccess(ctx context.Context, documentID, userID string) (bool, error)
}

// Service manages one-level comment threads on documents.
type Service struct {
	Repo   Repo
	Docs   DocumentStore
	Users  UserSource
	Access AccessChecker
	Now    func() time.Time
}

func (s *Service) now() int64 {
	if s.Now != nil {
		return s.Now().Unix()
	}
	return time.Now().Unix()
}

// Add posts a comment on a document and returns the updated thread. When
// parentID names an existing top-level comment of the document, the text
// is appended to that comment's replies; otherwise a new top-level
// comment is started. A comment record is created in both cases, but
// only the top-level case links it into the document's sequence.
func (s *Service) Add(ctx context.Context, documentID, authorID, body string, textRange *TextRange, parentID string) ([]ThreadComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrInvalidInput
	}
	if textRange != nil && (textRange.Start < 0 || textRange.End < textRange.Start) {
		return nil, ErrInvalidInput
	}

	allowed, err := s.Access.CanAccess(ctx, documentID, authorID)
	if err != nil {
		return nil, mapDocErr(err)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	record := Comment{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		TextRange: textRange,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		return nil, err
	}

	if parentID != "" {
		ok, err := s.Docs.HasTopLevelComment(ctx, documentID, parentID)
		if err != nil {
			return nil, mapDocErr(err)
		}
		if !ok {
			return nil, ErrNotFound
		}
		if err := s.Repo.AppendReply(ctx, parentID, Reply{AuthorID: authorID, Body: body}); err != nil {
			return nil, err
		}
	} else if err := s.Docs.AppendCommentID(ctx, documentID, record.ID); err != nil {
		return nil, mapDocErr(err)
	}

	metrics.IncCommentPosted()
	return s.List(ctx, documentID)
}

// List returns the document's comment thread in stored order, with each
// author's display name resolved.
func (s *Service) List(ctx context.Context, documentID string) ([]ThreadComment, error) {
	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, mapDocErr(err)
	}

	stored, err := s.Repo.GetMany(ctx, doc.CommentIDs)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	out := make([]ThreadComment, 0, len(stored))
	for _, c := range stored {
		tc := ThreadComment{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Author:    s.displayName(ctx, names, c.AuthorID),
			Body:      c.Body,
			TextRange: c.TextRange,
			Replies:   make([]ThreadReply, 0, len(c.Replies)),
		}
		for _, reply := range c.Replies {
			tc.Replies = append(tc.Replies, ThreadReply{
				AuthorID: reply.AuthorID,
				Author:   s.displayName(ctx, names, reply.AuthorID),
				Body:     reply.Body,
			})
		}
		out = append(out, tc)
	}
	return out, nil
}

func (s *Service) displayName(ctx context.Context, cache map[string]string, userID string) string {
	if name, ok := cache[userID]; ok {
		return name
	}
	name := ""
	if user, err := s.Users.GetByID(ctx, userID); err == nil {
		name = user.DisplayName()
	}
	cache[userID] = name
	return name
}

func mapDocErr(err error) error {
	if errors.Is(err, documents.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

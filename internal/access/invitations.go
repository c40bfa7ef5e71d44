package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docshare-backend/internal/documents"
	"docshare-backend/internal/shared/mail"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/users"
)

// invitationTokenTTL is how long an invitation token is stamped valid
// for. The stamp is stored with the grant for auditing; token lookups do
// not reject expired tokens.
const invitationTokenTTL = 24 * time.Hour

// DocumentStore is the slice of the documents repo the invitation
// service writes through.
type DocumentStore interface {
	GetByID(ctx context.Context, documentID string) (documents.Document, error)
	SetShareLink(ctx context.Context, documentID, link string) (bool, error)
}

// UserSource resolves users for invitation emails.
type UserSource interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

// Invitations manages share links, direct grants, and revocations.
type Invitations struct {
	Docs         DocumentStore
	Repo         Repo
	Users        UserSource
	Mailer       mail.Mailer
	ShareBaseURL string
	MailTimeout  time.Duration
	Now          func() time.Time
}

func (s *Invitations) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueShareLink returns the document's share link, minting one on first
// call. The link is set once and never rotated; concurrent callers all
// receive the same link.
func (s *Invitations) IssueShareLink(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return "", mapDocumentErr(err)
	}
	if doc.ShareLink != "" {
		return doc.ShareLink, nil
	}

	link := uuid.NewString()
	won, err := s.Docs.SetShareLink(ctx, documentID, link)
	if err != nil {
		return "", mapDocumentErr(err)
	}
	if won {
		return link, nil
	}
	// Lost the race: another caller set the link first.
	doc, err = s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return "", mapDocumentErr(err)
	}
	return doc.ShareLink, nil
}

// GrantResult reports the outcome of a direct grant. EmailSent is true
// only when an invitation message was actually handed to the mailer; it
// stays false when no mailer is configured.
type GrantResult struct {
	Grant         Grant
	AlreadyShared bool
	EmailSent     bool
}

// Grant shares the document with inviteeID and emails them an invitation
// link. The grant is persisted before the email is sent, so a delivery
// failure returns ErrMailDelivery while access already stands; retrying
// reports AlreadyShared without a second email. Granting clears any
// standing revocation for the pair.
func (s *Invitations) Grant(ctx context.Context, documentID, inviterID, inviteeID string) (GrantResult, error) {
	if inviteeID == "" {
		return GrantResult{}, ErrInvalidInput
	}

	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return GrantResult{}, mapDocumentErr(err)
	}

	if existing, ok, err := s.Repo.GetGrant(ctx, documentID, inviteeID); err != nil {
		return GrantResult{}, err
	} else if ok {
		return GrantResult{Grant: existing, AlreadyShared: true}, nil
	}

	if err := s.Repo.DeleteRevocation(ctx, documentID, inviteeID); err != nil {
		return GrantResult{}, err
	}

	now := s.now()
	grant := Grant{
		DocumentID:        documentID,
		UserID:            inviteeID,
		VerificationToken: uuid.NewString(),
		TokenExpiresAt:    now.Add(invitationTokenTTL).Unix(),
		SharedAt:          now.Unix(),
	}
	created, err := s.Repo.CreateGrant(ctx, grant)
	if err != nil {
		return GrantResult{}, err
	}
	if !created {
		existing, _, err := s.Repo.GetGrant(ctx, documentID, inviteeID)
		if err != nil {
			return GrantResult{}, err
		}
		return GrantResult{Grant: existing, AlreadyShared: true}, nil
	}

	metrics.IncAccessGranted()
	sent, err := s.sendInvitation(ctx, doc, inviterID, inviteeID, grant.VerificationToken)
	if err != nil {
		metrics.IncInviteMailFailed()
		return GrantResult{Grant: grant}, err
	}
	if sent {
		metrics.IncInviteMailSent()
	}
	return GrantResult{Grant: grant, EmailSent: sent}, nil
}

// Revoke withdraws the user's access to the document. The grant row is
// removed and a revocation is recorded so the share link no longer
// re-admits the user. Revoking is idempotent and does not require the
// document to exist.
func (s *Invitations) Revoke(ctx context.Context, documentID, userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.DeleteGrant(ctx, documentID, userID); err != nil {
		return err
	}
	if err := s.Repo.UpsertRevocation(ctx, Revocation{
		DocumentID: documentID,
		UserID:     userID,
		RevokedAt:  s.now().Unix(),
	}); err != nil {
		return err
	}
	metrics.IncAccessRevoked()
	return nil
}

func (s *Invitations) sendInvitation(ctx context.Context, doc documents.Document, inviterID, inviteeID, token string) (bool, error) {
	if s.Mailer == nil {
		return false, nil
	}

	invitee, err := s.Users.GetByID(ctx, inviteeID)
	if err != nil || invitee.Email == "" {
		return false, fmt.Errorf("%w: no address for invited user", ErrMailDelivery)
	}

	sharedBy := "A collaborator"
	if inviter, err := s.Users.GetByID(ctx, inviterID); err == nil {
		if name := inviter.DisplayName(); name != "" {
			sharedBy = name
		}
	}

	body, err := mail.RenderInvitation(mail.InvitationData{
		SharedBy:      sharedBy,
		DocumentTitle: doc.Title,
		InviteURL:     fmt.Sprintf("%s/pdf?token=%s", s.ShareBaseURL, token),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	sendCtx := ctx
	if s.MailTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.MailTimeout)
		defer cancel()
	}
	msg := mail.Message{
		To:       invitee.Email,
		Subject:  fmt.Sprintf("%s shared %q with you", sharedBy, doc.Title),
		HTMLBody: body,
	}
	if err := s.Mailer.Send(sendCtx, msg); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return true, nil
}

func mapDocumentErr(err error) error {
	if errors.Is(err, documents.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

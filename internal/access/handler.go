package access

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/comments"
	"docshare-backend/internal/documents"
	"docshare-backend/internal/shared/metrics"
	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler wires sharing and resolution endpoints to the services.
type Handler struct {
	Invitations *Invitations
	Resolver    *Resolver
}

// NewHandler constructs a Handler.
func NewHandler(invitations *Invitations, resolver *Resolver) *Handler {
	return &Handler{Invitations: invitations, Resolver: resolver}
}

// RegisterRoutes attaches sharing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/share-link", h.issueShareLink)
	rg.POST("/documents/:id/access/grant", h.grant)
	rg.POST("/documents/:id/access/revoke", h.revoke)
	rg.GET("/documents/shared/:link", h.resolve)
}

func (h *Handler) issueShareLink(c *gin.Context) {
	documentID := c.Param("id")

	link, err := h.Invitations.IssueShareLink(c.Request.Context(), documentID)
	if err != nil {
		h.respondError(c, err, "failed to issue share link")
		return
	}
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusOK, gin.H{"shareLink": link})
}

type grantRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) grant(c *gin.Context) {
	documentID := c.Param("id")
	inviterID := middleware.UserIDFromContext(c)

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", nil)
		return
	}

	// A mail failure fails the request even though the grant row is
	// already committed; a retry then reports alreadyShared.
	result, err := h.Invitations.Grant(c.Request.Context(), documentID, inviterID, req.UserID)
	if err != nil {
		h.respondError(c, err, "failed to share document")
		return
	}

	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusOK, gin.H{
		"documentId":     documentID,
		"userId":         req.UserID,
		"alreadyShared":  result.AlreadyShared,
		"emailDelivered": result.EmailSent,
	})
}

type revokeRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) revoke(c *gin.Context) {
	documentID := c.Param("id")

	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", nil)
		return
	}

	if err := h.Invitations.Revoke(c.Request.Context(), documentID, req.UserID); err != nil {
		h.respondError(c, err, "failed to revoke access")
		return
	}
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusOK, gin.H{"documentId": documentID, "userId": req.UserID})
}

type resolveResponse struct {
	Document documents.DocumentResponse `json:"document"`
	Comments []comments.ThreadComment   `json:"comments"`
}

func (h *Handler) resolve(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	link := c.Param("link")

	start := time.Now()
	resolved, err := h.Resolver.ResolveLinkOrToken(c.Request.Context(), userID, link)
	metrics.ObserveResolveDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		h.respondError(c, err, "failed to open shared document")
		return
	}
	metrics.IncSharedResolve()
	c.Set("documentId", resolved.Document.ID)
	respond.JSON(c, http.StatusOK, resolveResponse{
		Document: documents.NewResponse(resolved.Document, resolved.IsOwner),
		Comments: resolved.Thread,
	})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this document", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

package comments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docshare-backend/internal/shared/server/middleware"
	"docshare-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches comment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/comments", h.add)
	rg.GET("/documents/:id/comments", h.list)
}

type addCommentRequest struct {
	Comment   string     `json:"comment"`
	TextRange *TextRange `json:"textRange"`
	ParentID  string     `json:"parentCommentId"`
}

func (h *Handler) add(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	thread, err := h.Svc.Add(c.Request.Context(), documentID, userID, req.Comment, req.TextRange, req.ParentID)
	if err != nil {
		h.respondError(c, err, "failed to add comment")
		return
	}
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusCreated, thread)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	allowed, err := h.Svc.Access.CanAccess(c.Request.Context(), documentID, userID)
	if err != nil {
		h.respondError(c, mapDocErr(err), "failed to list comments")
		return
	}
	if !allowed {
		h.respondError(c, ErrForbidden, "failed to list comments")
		return
	}

	thread, err := h.Svc.List(c.Request.Context(), documentID)
	if err != nil {
		h.respondError(c, err, "failed to list comments")
		return
	}
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusOK, thread)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document or comment not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "you do not have access to this document", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "comment text is required", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

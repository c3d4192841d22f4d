package rest

import (
	"net/http"
	"time"

	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/moderation"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles moderation REST endpoints. Authorization lives
// in the moderation service: the acting user must carry the moderator
// flag, there is no static admin key.
type AdminHandler struct {
	svc *moderation.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *moderation.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// BanUser handles POST /api/admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason    string     `json:"reason" binding:"required,max=255"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.BanUser(c.Request.Context(), moderatorID, userID, req.Reason, req.ExpiresAt); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "banned"})
}

// UnbanUser handles DELETE /api/admin/users/:id/ban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UnbanUser(c.Request.Context(), moderatorID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unbanned"})
}

// SuspendUser handles POST /api/admin/users/:id/suspend.
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Until time.Time `json:"until" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SuspendUser(c.Request.Context(), moderatorID, userID, req.Until); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "suspended"})
}

// UnsuspendUser handles DELETE /api/admin/users/:id/suspend.
func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UnsuspendUser(c.Request.Context(), moderatorID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsuspended"})
}

// ManageUserRole handles PUT /api/admin/users/:id/role.
func (h *AdminHandler) ManageUserRole(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsModerator *bool `json:"is_moderator" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ManageUserRole(c.Request.Context(), moderatorID, userID, *req.IsModerator); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// ResetPassword handles POST /api/admin/users/:id/password.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password" binding:"required,min=4,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), moderatorID, userID, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// DeletePost handles DELETE /api/admin/posts/:id.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), moderatorID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// DeleteComment handles DELETE /api/admin/comments/:id.
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), moderatorID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// DeleteProject handles DELETE /api/admin/projects/:id.
func (h *AdminHandler) DeleteProject(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), moderatorID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// DeleteChat handles DELETE /api/admin/chats/:id.
func (h *AdminHandler) DeleteChat(c *gin.Context) {
	moderatorID := mw.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteChat(c.Request.Context(), moderatorID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

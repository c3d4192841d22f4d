package rest

import (
	"net/http"

	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/social"
	"github.com/gin-gonic/gin"
)

// SocialHandler handles friend graph REST endpoints.
type SocialHandler struct {
	svc *social.Service
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(svc *social.Service) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// ListFriends handles GET /api/social/friends.
func (h *SocialHandler) ListFriends(c *gin.Context) {
	userID := mw.GetUserID(c)
	friends, err := h.svc.ListFriends(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// ListRequests handles GET /api/social/requests.
func (h *SocialHandler) ListRequests(c *gin.Context) {
	userID := mw.GetUserID(c)
	incoming, outgoing, err := h.svc.ListRequests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incoming": incoming, "outgoing": outgoing})
}

// SendFriendRequest handles POST /api/social/requests.
func (h *SocialHandler) SendFriendRequest(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req struct {
		RequesteeID int64 `json:"requestee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.SendFriendRequest(c.Request.Context(), userID, req.RequesteeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": out})
}

// AcceptFriendRequest handles POST /api/social/requests/:id/accept.
func (h *SocialHandler) AcceptFriendRequest(c *gin.Context) {
	userID := mw.GetUserID(c)
	reqID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AcceptFriendRequest(c.Request.Context(), reqID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "accepted"})
}

// RejectFriendRequest handles POST /api/social/requests/:id/reject.
func (h *SocialHandler) RejectFriendRequest(c *gin.Context) {
	userID := mw.GetUserID(c)
	reqID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RejectFriendRequest(c.Request.Context(), reqID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rejected"})
}

// RemoveFriend handles DELETE /api/social/friends/:id.
func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	userID := mw.GetUserID(c)
	friendID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// ListBlocked handles GET /api/social/blocks.
func (h *SocialHandler) ListBlocked(c *gin.Context) {
	userID := mw.GetUserID(c)
	blocked, err := h.svc.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

// BlockUser handles POST /api/social/blocks/:id.
func (h *SocialHandler) BlockUser(c *gin.Context) {
	userID := mw.GetUserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	block, err := h.svc.BlockUser(c.Request.Context(), userID, targetID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": block})
}

// UnblockUser handles DELETE /api/social/blocks/:id.
func (h *SocialHandler) UnblockUser(c *gin.Context) {
	userID := mw.GetUserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UnblockUser(c.Request.Context(), userID, targetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unblocked"})
}

package rest

import (
	"net/http"
	"strconv"

	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/notify"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification REST endpoints.
type NotificationHandler struct {
	svc *notify.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /api/notifications?unread=true&limit=N.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)

	unreadOnly := c.Query("unread") == "true"
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	notifications, err := h.svc.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := mw.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := mw.GetUserID(c)
	n, err := h.svc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

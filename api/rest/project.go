package rest

import (
	"net/http"

	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/project"
	"github.com/gin-gonic/gin"
)

// ProjectHandler handles project and invitation REST endpoints.
type ProjectHandler struct {
	svc *project.Service
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *project.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=64"`
		Description string `json:"description" binding:"max=2048"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), userID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

// Detail handles GET /api/projects/:id.
func (h *ProjectHandler) Detail(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProject(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

// ListMembers handles GET /api/projects/:id/members.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// RemoveMember handles DELETE /api/projects/:id/members/:uid.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID := mw.GetUserID(c)
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "uid")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), userID, projectID, memberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// Leave handles POST /api/projects/:id/leave.
func (h *ProjectHandler) Leave(c *gin.Context) {
	userID := mw.GetUserID(c)
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.LeaveProject(c.Request.Context(), userID, projectID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left"})
}

// Invite handles POST /api/projects/:id/invitations.
func (h *ProjectHandler) Invite(c *gin.Context) {
	userID := mw.GetUserID(c)
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		InvitingID int64 `json:"inviting_id" binding:"required"`
		InvitedID  int64 `json:"invited_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.svc.CreateInvitation(c.Request.Context(), userID, req.InvitingID, req.InvitedID, projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

// ListInvitations handles GET /api/invitations.
func (h *ProjectHandler) ListInvitations(c *gin.Context) {
	userID := mw.GetUserID(c)
	invitations, err := h.svc.ListInvitations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// AcceptInvitation handles POST /api/invitations/:id/accept.
func (h *ProjectHandler) AcceptInvitation(c *gin.Context) {
	userID := mw.GetUserID(c)
	invID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AcceptInvitation(c.Request.Context(), invID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "accepted"})
}

// RejectInvitation handles POST /api/invitations/:id/reject.
func (h *ProjectHandler) RejectInvitation(c *gin.Context) {
	userID := mw.GetUserID(c)
	invID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RejectInvitation(c.Request.Context(), invID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rejected"})
}

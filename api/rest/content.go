package rest

import (
	"net/http"

	"github.com/crewlink/server/content"
	mw "github.com/crewlink/server/middleware"
	"github.com/crewlink/server/ranking"
	"github.com/gin-gonic/gin"
)

// ContentHandler handles post, comment, like, and view REST endpoints.
type ContentHandler struct {
	svc     *content.Service
	ranking *ranking.Service
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(svc *content.Service, rankingSvc *ranking.Service) *ContentHandler {
	return &ContentHandler{svc: svc, ranking: rankingSvc}
}

// CreatePost handles POST /api/projects/:id/posts.
func (h *ContentHandler) CreatePost(c *gin.Context) {
	userID := mw.GetUserID(c)
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required,min=1,max=128"`
		Body  string `json:"body" binding:"max=65536"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), userID, projectID, req.Title, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// ListPosts handles GET /api/projects/:id/posts.
func (h *ContentHandler) ListPosts(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	posts, err := h.svc.ListPosts(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// RecordView handles POST /api/projects/:id/view.
func (h *ContentHandler) RecordView(c *gin.Context) {
	userID := mw.GetUserID(c)
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ranking.RecordView(c.Request.Context(), userID, projectID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "viewed"})
}

// CreateComment handles POST /api/posts/:id/comments.
func (h *ContentHandler) CreateComment(c *gin.Context) {
	userID := mw.GetUserID(c)
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ParentID *int64 `json:"parent_id"`
		Body     string `json:"body" binding:"required,min=1,max=8192"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), userID, postID, req.ParentID, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments handles GET /api/posts/:id/comments.
func (h *ContentHandler) ListComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.svc.ListComments(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Like handles POST /api/posts/:id/like.
func (h *ContentHandler) Like(c *gin.Context) {
	userID := mw.GetUserID(c)
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.LikePost(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err)
		return
	}
	n, err := h.svc.CountLikes(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": n})
}

// Unlike handles DELETE /api/posts/:id/like.
func (h *ContentHandler) Unlike(c *gin.Context) {
	userID := mw.GetUserID(c)
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UnlikePost(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unliked"})
}

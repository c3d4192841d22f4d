package rest

import (
	"net/http"
	"strconv"

	"github.com/crewlink/server/ranking"
	"github.com/gin-gonic/gin"
)

// TrendingHandler handles the public trending REST endpoint.
type TrendingHandler struct {
	svc *ranking.Service
}

// NewTrendingHandler creates a new TrendingHandler.
func NewTrendingHandler(svc *ranking.Service) *TrendingHandler {
	return &TrendingHandler{svc: svc}
}

// Trending handles GET /api/trending?limit=N.
func (h *TrendingHandler) Trending(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	out, err := h.svc.Trending(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": out})
}

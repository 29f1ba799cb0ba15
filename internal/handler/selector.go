package handler

import (
	"net/http"

	"components-api/internal/selector"

	"github.com/gin-gonic/gin"
)

// SelectorHandler drives the dashboard user selector component over HTTP. The
// HTTP layer is the post-debounce edge, so searches run synchronously here.
type SelectorHandler struct {
	newSelector func(dashboardID string) *selector.Selector
}

// NewSelectorHandler creates a new selector handler using the given component
// factory.
func NewSelectorHandler(newSelector func(dashboardID string) *selector.Selector) *SelectorHandler {
	return &SelectorHandler{newSelector: newSelector}
}

type selectUserRequest struct {
	User selector.User `json:"user" binding:"required"`
}

// SearchUsers handles GET /components/dashboard/:dashboardID/users/search requests
func (h *SelectorHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	sel := h.newSelector(c.Param("dashboardID"))
	defer sel.Close()

	users := sel.SearchUsers(c.Request.Context(), query)
	if users == nil {
		users = []selector.User{}
	}

	c.JSON(http.StatusOK, users)
}

// SelectUser handles PUT /components/dashboard/:dashboardID/select requests
func (h *SelectorHandler) SelectUser(c *gin.Context) {
	var req selectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.User.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'user'"})
		return
	}

	sel := h.newSelector(c.Param("dashboardID"))
	defer sel.Close()

	if err := sel.Select(c.Request.Context(), req.User); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "selection service unavailable"})
		return
	}

	c.JSON(http.StatusOK, sel.State())
}

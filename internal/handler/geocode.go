package handler

import (
	"context"
	"net/http"

	"components-api/internal/geocode"

	"github.com/gin-gonic/gin"
)

// GeocodeHandler handles place search requests
type GeocodeHandler struct {
	service SearchService
}

// Service interface for dependency injection
type SearchService interface {
	Search(ctx context.Context, query string) []geocode.Result
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(svc SearchService) *GeocodeHandler {
	return &GeocodeHandler{service: svc}
}

// Geocode handles GET /geocode requests
// @Summary      Search places
// @Description  Resolves a free-text place query to geocoding results. Upstream failures yield an empty list.
// @Param        q  query  string  true  "search query (min 3 characters)"
// @Produce      json
// @Success      200  {array}  geocode.Result
// @Router       /geocode [get]
func (h *GeocodeHandler) Geocode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	results := h.service.Search(c.Request.Context(), query)
	if results == nil {
		results = []geocode.Result{}
	}

	c.JSON(http.StatusOK, results)
}

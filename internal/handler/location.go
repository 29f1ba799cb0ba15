package handler

import (
	"errors"
	"net/http"

	"components-api/internal/location"
	"components-api/internal/models"

	"github.com/gin-gonic/gin"
)

// LocationHandler drives the location search field sessions over HTTP. Each
// endpoint applies one state-machine operation and returns the new snapshot.
type LocationHandler struct {
	sessions SessionManager
}

// SessionManager interface for dependency injection
type SessionManager interface {
	Create(initial models.Location) *location.Session
	Get(id string) (*location.Session, bool)
	Remove(id string) bool
	DismissOthers(id string)
	ScrollState() (locked bool, depth int)
}

// NewLocationHandler creates a new location component handler
func NewLocationHandler(sessions SessionManager) *LocationHandler {
	return &LocationHandler{sessions: sessions}
}

// RegisterRoutes mounts the component routes on the given group.
func (h *LocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateSession)
	rg.GET("/:id", h.GetState)
	rg.PUT("/:id/mode", h.SetMode)
	rg.PUT("/:id/query", h.UpdateQuery)
	rg.PUT("/:id/fields", h.UpdateFields)
	rg.POST("/:id/select", h.SelectResult)
	rg.DELETE("/:id/fields", h.ClearFields)
	rg.DELETE("/:id", h.RemoveSession)
}

type createSessionRequest struct {
	Initial models.Location `json:"initial"`
}

type setModeRequest struct {
	Mode location.Mode `json:"mode" binding:"required"`
}

type updateQueryRequest struct {
	Query string `json:"query"`
}

type selectResultRequest struct {
	Index int `json:"index"`
}

// CreateSession handles POST /components/location requests. The body may seed
// initial field values; an empty body creates a blank session.
func (h *LocationHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	s := h.sessions.Create(req.Initial)
	c.JSON(http.StatusCreated, s.State())
}

// GetState handles GET /components/location/:id requests
func (h *LocationHandler) GetState(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.JSON(http.StatusOK, s.State())
}

// SetMode handles PUT /components/location/:id/mode requests
func (h *LocationHandler) SetMode(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var req setModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'mode'"})
		return
	}

	if err := s.SetMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be 'search' or 'manual'"})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

// UpdateQuery handles PUT /components/location/:id/query requests. Opening a
// dropdown dismisses every other registered component.
func (h *LocationHandler) UpdateQuery(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var req updateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.sessions.DismissOthers(s.ID())
	s.UpdateQuery(req.Query)

	c.JSON(http.StatusOK, s.State())
}

// UpdateFields handles PUT /components/location/:id/fields requests. Fields
// are only editable in manual mode.
func (h *LocationHandler) UpdateFields(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var patch location.FieldPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.UpdateFields(patch); err != nil {
		if errors.Is(err, location.ErrFieldsReadOnly) {
			c.JSON(http.StatusConflict, gin.H{"error": "fields are read-only in search mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field update"})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

// SelectResult handles POST /components/location/:id/select requests
func (h *LocationHandler) SelectResult(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var req selectResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, err := s.SelectResult(req.Index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no result at that index"})
		return
	}

	c.JSON(http.StatusOK, s.State())
}

// ClearFields handles DELETE /components/location/:id/fields requests
func (h *LocationHandler) ClearFields(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	s.ClearFields()
	c.JSON(http.StatusOK, s.State())
}

// RemoveSession handles DELETE /components/location/:id requests
func (h *LocationHandler) RemoveSession(c *gin.Context) {
	if !h.sessions.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ScrollState handles GET /components/scroll requests. The client uses it to
// decide whether page scrolling should be suppressed.
func (h *LocationHandler) ScrollState(c *gin.Context) {
	locked, depth := h.sessions.ScrollState()
	c.JSON(http.StatusOK, gin.H{"locked": locked, "depth": depth})
}

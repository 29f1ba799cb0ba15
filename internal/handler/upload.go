package handler

import (
	"errors"
	"net/http"

	"components-api/internal/uploader"

	"github.com/gin-gonic/gin"
)

// UploadHandler drives the image upload component. Each request gets a fresh
// component instance; the uploaded file is forwarded to the external image
// endpoint and the resulting URL returned.
type UploadHandler struct {
	newUploader func() *uploader.Uploader
}

// NewUploadHandler creates a new upload handler using the given component
// factory.
func NewUploadHandler(newUploader func() *uploader.Uploader) *UploadHandler {
	return &UploadHandler{newUploader: newUploader}
}

// Upload handles POST /components/upload requests
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form file 'image'"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	u := h.newUploader()
	url, err := u.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		state := u.State()
		switch {
		case errors.Is(err, uploader.ErrContentType),
			errors.Is(err, uploader.ErrFileTooLarge),
			errors.Is(err, uploader.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": state.Message, "state": state})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": state.Message, "state": state})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "state": u.State()})
}
